package repository

import (
	"context"
	"fmt"

	"arcade/database"
	"arcade/models"

	"github.com/jackc/pgx/v5"
)

// ItemRepository implements the ItemRepository interface
type ItemRepository struct {
	q queryable
}

// NewItemRepository creates a new item repository
func NewItemRepository(db *database.DB) *ItemRepository {
	return &ItemRepository{q: db.Pool}
}

// newItemRepositoryWithTx creates a new item repository with a transaction
func newItemRepositoryWithTx(tx queryable) *ItemRepository {
	return &ItemRepository{q: tx}
}

const itemColumns = `id, name, description, price, stock, active, item_type, created_at, updated_at`

func scanItem(row pgx.Row) (*models.Item, error) {
	var item models.Item
	err := row.Scan(
		&item.ID,
		&item.Name,
		&item.Description,
		&item.Price,
		&item.Stock,
		&item.Active,
		&item.Type,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// GetByID retrieves an item by ID
func (r *ItemRepository) GetByID(ctx context.Context, id int64) (*models.Item, error) {
	query := fmt.Sprintf(`SELECT %s FROM items WHERE id = $1`, itemColumns)

	item, err := scanItem(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item %d: %w", id, err)
	}

	return item, nil
}

// GetForUpdate retrieves an item with a row lock for the current transaction
func (r *ItemRepository) GetForUpdate(ctx context.Context, id int64) (*models.Item, error) {
	query := fmt.Sprintf(`SELECT %s FROM items WHERE id = $1 FOR UPDATE`, itemColumns)

	item, err := scanItem(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock item %d: %w", id, err)
	}

	return item, nil
}

// GetActive returns all active items
func (r *ItemRepository) GetActive(ctx context.Context) ([]*models.Item, error) {
	query := fmt.Sprintf(`SELECT %s FROM items WHERE active ORDER BY id`, itemColumns)

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get active items: %w", err)
	}
	defer rows.Close()

	var items []*models.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}

	return items, nil
}

// Create creates a new item
func (r *ItemRepository) Create(ctx context.Context, item *models.Item) error {
	query := `
		INSERT INTO items (name, description, price, stock, active, item_type)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query,
		item.Name,
		item.Description,
		item.Price,
		item.Stock,
		item.Active,
		item.Type,
	).Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create item %q: %w", item.Name, err)
	}

	return nil
}

// DecrementStock decrements stock, failing if fewer than quantity remain.
// The conditional update keeps the stock invariant under concurrent purchases.
func (r *ItemRepository) DecrementStock(ctx context.Context, id int64, quantity int64) error {
	query := `
		UPDATE items
		SET stock = stock - $1, updated_at = NOW()
		WHERE id = $2 AND stock >= $1
	`

	result, err := r.q.Exec(ctx, query, quantity, id)
	if err != nil {
		return fmt.Errorf("failed to decrement stock for item %d: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("insufficient stock for item %d", id)
	}

	return nil
}

// GetLootboxRewards returns the weighted reward table for a lootbox item
func (r *ItemRepository) GetLootboxRewards(ctx context.Context, itemID int64) ([]*models.LootboxReward, error) {
	query := `
		SELECT id, item_id, reward_kind, points_amount, reward_item_id, weight
		FROM lootbox_rewards
		WHERE item_id = $1
		ORDER BY id
	`

	rows, err := r.q.Query(ctx, query, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to get lootbox rewards for item %d: %w", itemID, err)
	}
	defer rows.Close()

	var rewards []*models.LootboxReward
	for rows.Next() {
		var reward models.LootboxReward
		err := rows.Scan(
			&reward.ID,
			&reward.ItemID,
			&reward.Kind,
			&reward.PointsAmount,
			&reward.RewardItemID,
			&reward.Weight,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lootbox reward: %w", err)
		}
		rewards = append(rewards, &reward)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate lootbox rewards: %w", err)
	}

	return rewards, nil
}

// AddLootboxReward adds a reward entry to a lootbox item
func (r *ItemRepository) AddLootboxReward(ctx context.Context, reward *models.LootboxReward) error {
	query := `
		INSERT INTO lootbox_rewards (item_id, reward_kind, points_amount, reward_item_id, weight)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := r.q.QueryRow(ctx, query,
		reward.ItemID,
		reward.Kind,
		reward.PointsAmount,
		reward.RewardItemID,
		reward.Weight,
	).Scan(&reward.ID)

	if err != nil {
		return fmt.Errorf("failed to add lootbox reward for item %d: %w", reward.ItemID, err)
	}

	return nil
}
