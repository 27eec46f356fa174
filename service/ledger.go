package service

import (
	"context"
	"fmt"

	"arcade/events"
	"arcade/models"
)

// BalanceChange describes one requested balance mutation. Amount is signed:
// positive credits, negative debits.
type BalanceChange struct {
	UserID      int64
	PointType   models.PointType
	Amount      int64
	Type        models.TransactionType
	Description string
	Metadata    map[string]any
	RelatedID   *int64
	RelatedType *models.RelatedType
}

// ApplyBalanceChange is the single entry point for all balance writes.
// It locks the user row, rejects any debit that would drive the balance
// negative, writes the new balance and the ledger entry inside the caller's
// unit of work, and publishes a balance change event for post-commit
// delivery. On error nothing is written.
func ApplyBalanceChange(ctx context.Context, uow UnitOfWork, change BalanceChange) (*models.Transaction, error) {
	user, err := uow.UserRepository().GetForUpdate(ctx, change.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %d: %w", change.UserID, ErrNotFound)
	}

	currentBalance := user.Balance(change.PointType)
	newBalance := currentBalance + change.Amount
	if newBalance < 0 {
		return nil, &InsufficientBalanceError{Have: currentBalance, Need: -change.Amount}
	}

	if err := uow.UserRepository().SetBalance(ctx, change.UserID, change.PointType, newBalance); err != nil {
		return nil, fmt.Errorf("failed to write balance: %w", err)
	}

	txn := &models.Transaction{
		UserID:       change.UserID,
		PointType:    change.PointType,
		Amount:       change.Amount,
		BalanceAfter: newBalance,
		Type:         change.Type,
		Description:  change.Description,
		Metadata:     change.Metadata,
		RelatedID:    change.RelatedID,
		RelatedType:  change.RelatedType,
	}
	if err := uow.TransactionRepository().Record(ctx, txn); err != nil {
		return nil, fmt.Errorf("failed to record transaction: %w", err)
	}

	uow.EventBus().Publish(events.BalanceChangeEvent{
		UserID:          change.UserID,
		PointType:       change.PointType,
		OldBalance:      currentBalance,
		NewBalance:      newBalance,
		TransactionType: change.Type,
		ChangeAmount:    change.Amount,
	})

	return txn, nil
}
