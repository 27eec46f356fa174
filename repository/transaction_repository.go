package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"arcade/database"
	"arcade/models"
)

// TransactionRepository implements the TransactionRepository interface
// over the append-only points ledger
type TransactionRepository struct {
	q queryable
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *database.DB) *TransactionRepository {
	return &TransactionRepository{q: db.Pool}
}

// newTransactionRepositoryWithTx creates a new transaction repository with a transaction
func newTransactionRepositoryWithTx(tx queryable) *TransactionRepository {
	return &TransactionRepository{q: tx}
}

// Record creates a new immutable ledger entry
func (r *TransactionRepository) Record(ctx context.Context, txn *models.Transaction) error {
	metadataJSON, err := json.Marshal(txn.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal transaction metadata: %w", err)
	}

	query := `
		INSERT INTO transactions
		(user_id, point_type, amount, balance_after, transaction_type, description, metadata, related_id, related_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`

	err = r.q.QueryRow(ctx, query,
		txn.UserID,
		txn.PointType,
		txn.Amount,
		txn.BalanceAfter,
		txn.Type,
		txn.Description,
		metadataJSON,
		txn.RelatedID,
		txn.RelatedType,
	).Scan(&txn.ID, &txn.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to record transaction for user %d: %w", txn.UserID, err)
	}

	return nil
}

// GetByUser returns ledger entries for a user, newest first
func (r *TransactionRepository) GetByUser(ctx context.Context, userID int64, pointType *models.PointType, limit int) ([]*models.Transaction, error) {
	query := `
		SELECT id, user_id, point_type, amount, balance_after, transaction_type,
		       description, metadata, related_id, related_type, created_at
		FROM transactions
		WHERE user_id = $1 AND ($2::text IS NULL OR point_type = $2)
		ORDER BY created_at DESC, id DESC
		LIMIT $3
	`

	rows, err := r.q.Query(ctx, query, userID, pointType, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions for user %d: %w", userID, err)
	}
	defer rows.Close()

	var txns []*models.Transaction
	for rows.Next() {
		var txn models.Transaction
		var metadataJSON []byte

		err := rows.Scan(
			&txn.ID,
			&txn.UserID,
			&txn.PointType,
			&txn.Amount,
			&txn.BalanceAfter,
			&txn.Type,
			&txn.Description,
			&metadataJSON,
			&txn.RelatedID,
			&txn.RelatedType,
			&txn.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}

		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &txn.Metadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal transaction metadata: %w", err)
			}
		}

		txns = append(txns, &txn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	return txns, nil
}

// SumByUser returns the sum of all entry amounts for a user's point type.
// By the reconciliation invariant this equals the user's current balance.
func (r *TransactionRepository) SumByUser(ctx context.Context, userID int64, pointType models.PointType) (int64, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE user_id = $1 AND point_type = $2
	`

	var sum int64
	err := r.q.QueryRow(ctx, query, userID, pointType).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("failed to sum transactions for user %d: %w", userID, err)
	}

	return sum, nil
}
