package repository

import (
	"context"
	"fmt"

	"arcade/database"
	"arcade/models"

	"github.com/jackc/pgx/v5"
)

// PurchaseRepository implements the PurchaseRepository interface
type PurchaseRepository struct {
	q queryable
}

// NewPurchaseRepository creates a new purchase repository
func NewPurchaseRepository(db *database.DB) *PurchaseRepository {
	return &PurchaseRepository{q: db.Pool}
}

// newPurchaseRepositoryWithTx creates a new purchase repository with a transaction
func newPurchaseRepositoryWithTx(tx queryable) *PurchaseRepository {
	return &PurchaseRepository{q: tx}
}

const purchaseColumns = `id, reference, user_id, item_id, quantity, total_price, status, created_at, updated_at`

func scanPurchase(row pgx.Row) (*models.Purchase, error) {
	var purchase models.Purchase
	err := row.Scan(
		&purchase.ID,
		&purchase.Reference,
		&purchase.UserID,
		&purchase.ItemID,
		&purchase.Quantity,
		&purchase.TotalPrice,
		&purchase.Status,
		&purchase.CreatedAt,
		&purchase.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

// Create creates a new purchase record
func (r *PurchaseRepository) Create(ctx context.Context, purchase *models.Purchase) error {
	query := `
		INSERT INTO purchases (reference, user_id, item_id, quantity, total_price, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query,
		purchase.Reference,
		purchase.UserID,
		purchase.ItemID,
		purchase.Quantity,
		purchase.TotalPrice,
		purchase.Status,
	).Scan(&purchase.ID, &purchase.CreatedAt, &purchase.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create purchase for user %d: %w", purchase.UserID, err)
	}

	return nil
}

// GetByID retrieves a purchase by ID
func (r *PurchaseRepository) GetByID(ctx context.Context, id int64) (*models.Purchase, error) {
	query := fmt.Sprintf(`SELECT %s FROM purchases WHERE id = $1`, purchaseColumns)

	purchase, err := scanPurchase(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get purchase %d: %w", id, err)
	}

	return purchase, nil
}

// GetForUpdate retrieves a purchase with a row lock for the current transaction
func (r *PurchaseRepository) GetForUpdate(ctx context.Context, id int64) (*models.Purchase, error) {
	query := fmt.Sprintf(`SELECT %s FROM purchases WHERE id = $1 FOR UPDATE`, purchaseColumns)

	purchase, err := scanPurchase(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock purchase %d: %w", id, err)
	}

	return purchase, nil
}

// UpdateStatus sets a purchase's status
func (r *PurchaseRepository) UpdateStatus(ctx context.Context, id int64, status models.PurchaseStatus) error {
	query := `
		UPDATE purchases
		SET status = $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.q.Exec(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update purchase %d status: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("purchase %d not found", id)
	}

	return nil
}

// GetByUser returns purchases for a user, newest first
func (r *PurchaseRepository) GetByUser(ctx context.Context, userID int64, limit int) ([]*models.Purchase, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM purchases
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, purchaseColumns)

	rows, err := r.q.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get purchases for user %d: %w", userID, err)
	}
	defer rows.Close()

	var purchases []*models.Purchase
	for rows.Next() {
		purchase, err := scanPurchase(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan purchase: %w", err)
		}
		purchases = append(purchases, purchase)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate purchases: %w", err)
	}

	return purchases, nil
}

// CreateOpening records a lootbox opening. The unique constraint on
// purchase_id makes re-opening the same purchase fail.
func (r *PurchaseRepository) CreateOpening(ctx context.Context, opening *models.LootboxOpening) error {
	query := `
		INSERT INTO lootbox_openings (purchase_id, user_id, reward_kind, points_amount, reward_item_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		opening.PurchaseID,
		opening.UserID,
		opening.RewardKind,
		opening.PointsAmount,
		opening.RewardItemID,
	).Scan(&opening.ID, &opening.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create lootbox opening for purchase %d: %w", opening.PurchaseID, err)
	}

	return nil
}

// GetOpeningByPurchase returns the opening for a purchase, or nil
func (r *PurchaseRepository) GetOpeningByPurchase(ctx context.Context, purchaseID int64) (*models.LootboxOpening, error) {
	query := `
		SELECT id, purchase_id, user_id, reward_kind, points_amount, reward_item_id, created_at
		FROM lootbox_openings
		WHERE purchase_id = $1
	`

	var opening models.LootboxOpening
	err := r.q.QueryRow(ctx, query, purchaseID).Scan(
		&opening.ID,
		&opening.PurchaseID,
		&opening.UserID,
		&opening.RewardKind,
		&opening.PointsAmount,
		&opening.RewardItemID,
		&opening.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get opening for purchase %d: %w", purchaseID, err)
	}

	return &opening, nil
}
