package service

import (
	"context"
	"fmt"

	"arcade/events"
	"arcade/models"

	"github.com/google/uuid"
)

type shopService struct {
	uowFactory UnitOfWorkFactory
	rng        Rand
}

// NewShopService creates a new shop service
func NewShopService(uowFactory UnitOfWorkFactory) ShopService {
	return NewShopServiceWithRand(uowFactory, newLockedRand())
}

// NewShopServiceWithRand creates a shop service with an explicit random
// source, used by tests to force lootbox outcomes
func NewShopServiceWithRand(uowFactory UnitOfWorkFactory, rng Rand) ShopService {
	return &shopService{
		uowFactory: uowFactory,
		rng:        rng,
	}
}

// ListItems returns all active shop items
func (s *shopService) ListItems(ctx context.Context) ([]*models.Item, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	items, err := uow.ItemRepository().GetActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}

	return items, nil
}

// CreateItem creates a new shop item
func (s *shopService) CreateItem(ctx context.Context, item *models.Item) error {
	if item.Price < 0 {
		return fmt.Errorf("item price must be non-negative: %w", ErrOutOfRange)
	}
	if item.Type == "" {
		item.Type = models.ItemTypeStandard
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.ItemRepository().Create(ctx, item); err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// AddLootboxReward adds a weighted reward to a lootbox item
func (s *shopService) AddLootboxReward(ctx context.Context, reward *models.LootboxReward) error {
	if reward.Weight <= 0 {
		return fmt.Errorf("reward weight must be positive: %w", ErrOutOfRange)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	item, err := uow.ItemRepository().GetByID(ctx, reward.ItemID)
	if err != nil {
		return fmt.Errorf("failed to get item: %w", err)
	}
	if item == nil {
		return fmt.Errorf("item %d: %w", reward.ItemID, ErrNotFound)
	}
	if item.Type != models.ItemTypeLootbox {
		return fmt.Errorf("item %d is not a lootbox: %w", reward.ItemID, ErrInvalidState)
	}

	if err := uow.ItemRepository().AddLootboxReward(ctx, reward); err != nil {
		return fmt.Errorf("failed to add lootbox reward: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// PurchaseItem buys quantity of an item. Stock decrement, balance debit and
// purchase completion all happen in one transaction; any failure leaves no
// partial writes.
func (s *shopService) PurchaseItem(ctx context.Context, itemID, userID, quantity int64) (*models.Purchase, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive: %w", ErrOutOfRange)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	item, err := uow.ItemRepository().GetForUpdate(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	if item == nil {
		return nil, fmt.Errorf("item %d: %w", itemID, ErrNotFound)
	}
	if !item.Active {
		return nil, fmt.Errorf("item %q is inactive: %w", item.Name, ErrInvalidState)
	}
	if item.Stock < quantity {
		return nil, fmt.Errorf("insufficient stock for %q: have %d, need %d: %w", item.Name, item.Stock, quantity, ErrOutOfRange)
	}

	totalPrice := item.Price * quantity

	purchase := &models.Purchase{
		Reference:  uuid.NewString(),
		UserID:     userID,
		ItemID:     itemID,
		Quantity:   quantity,
		TotalPrice: totalPrice,
		Status:     models.PurchaseStatusPending,
	}
	if err := uow.PurchaseRepository().Create(ctx, purchase); err != nil {
		return nil, fmt.Errorf("failed to create purchase: %w", err)
	}

	if err := uow.ItemRepository().DecrementStock(ctx, itemID, quantity); err != nil {
		return nil, fmt.Errorf("failed to decrement stock: %w", err)
	}

	relatedType := models.RelatedTypePurchase
	if _, err := ApplyBalanceChange(ctx, uow, BalanceChange{
		UserID:      userID,
		PointType:   models.PointTypeRedeemable,
		Amount:      -totalPrice,
		Type:        models.TransactionTypePurchase,
		Description: fmt.Sprintf("purchased %dx %s", quantity, item.Name),
		Metadata: map[string]any{
			"item_id":    item.ID,
			"item_name":  item.Name,
			"quantity":   quantity,
			"unit_price": item.Price,
		},
		RelatedID:   &purchase.ID,
		RelatedType: &relatedType,
	}); err != nil {
		return nil, err
	}

	if err := uow.PurchaseRepository().UpdateStatus(ctx, purchase.ID, models.PurchaseStatusCompleted); err != nil {
		return nil, fmt.Errorf("failed to complete purchase: %w", err)
	}
	purchase.Status = models.PurchaseStatusCompleted

	uow.EventBus().Publish(events.PurchaseCompletedEvent{
		PurchaseID: purchase.ID,
		UserID:     userID,
		ItemID:     itemID,
		Quantity:   quantity,
		TotalPrice: totalPrice,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return purchase, nil
}

// OpenLootbox resolves the reward of a completed lootbox purchase. The draw,
// the opening record and any points credit share one transaction; the unique
// opening per purchase makes a second open fail.
func (s *shopService) OpenLootbox(ctx context.Context, purchaseID, userID int64) (*models.OpeningResult, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	purchase, err := uow.PurchaseRepository().GetForUpdate(ctx, purchaseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get purchase: %w", err)
	}
	if purchase == nil {
		return nil, fmt.Errorf("purchase %d: %w", purchaseID, ErrNotFound)
	}
	if purchase.UserID != userID {
		return nil, fmt.Errorf("purchase %d does not belong to user %d: %w", purchaseID, userID, ErrNotFound)
	}
	if purchase.Status != models.PurchaseStatusCompleted {
		return nil, fmt.Errorf("purchase %d is not completed: %w", purchaseID, ErrInvalidState)
	}

	item, err := uow.ItemRepository().GetByID(ctx, purchase.ItemID)
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	if item == nil || item.Type != models.ItemTypeLootbox {
		return nil, fmt.Errorf("purchase %d is not a lootbox purchase: %w", purchaseID, ErrInvalidState)
	}

	existing, err := uow.PurchaseRepository().GetOpeningByPurchase(ctx, purchaseID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing opening: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("purchase %d already opened: %w", purchaseID, ErrInvalidState)
	}

	rewards, err := uow.ItemRepository().GetLootboxRewards(ctx, item.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get lootbox rewards: %w", err)
	}
	if len(rewards) == 0 {
		return nil, fmt.Errorf("lootbox %q has no rewards configured: %w", item.Name, ErrInvalidState)
	}

	reward := DrawLootboxReward(s.rng, rewards)

	opening := &models.LootboxOpening{
		PurchaseID:   purchaseID,
		UserID:       userID,
		RewardKind:   reward.Kind,
		PointsAmount: reward.PointsAmount,
		RewardItemID: reward.RewardItemID,
	}
	if err := uow.PurchaseRepository().CreateOpening(ctx, opening); err != nil {
		return nil, fmt.Errorf("failed to record opening: %w", err)
	}

	var newBalance int64
	if reward.Kind == models.RewardKindPoints && reward.PointsAmount > 0 {
		relatedType := models.RelatedTypePurchase
		txn, err := ApplyBalanceChange(ctx, uow, BalanceChange{
			UserID:      userID,
			PointType:   models.PointTypeRedeemable,
			Amount:      reward.PointsAmount,
			Type:        models.TransactionTypeLootboxOpen,
			Description: fmt.Sprintf("opened %s", item.Name),
			Metadata: map[string]any{
				"item_id":     item.ID,
				"item_name":   item.Name,
				"purchase_id": purchaseID,
			},
			RelatedID:   &purchaseID,
			RelatedType: &relatedType,
		})
		if err != nil {
			return nil, err
		}
		newBalance = txn.BalanceAfter
	}

	uow.EventBus().Publish(events.LootboxOpenedEvent{
		OpeningID:    opening.ID,
		PurchaseID:   purchaseID,
		UserID:       userID,
		RewardKind:   reward.Kind,
		PointsAmount: reward.PointsAmount,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.OpeningResult{
		Opening:    opening,
		NewBalance: newBalance,
	}, nil
}
