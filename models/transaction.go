package models

import (
	"time"
)

// TransactionType represents the category of a balance change
type TransactionType string

const (
	TransactionTypePurchase        TransactionType = "purchase"
	TransactionTypeLootboxOpen     TransactionType = "lootbox_open"
	TransactionTypeGameWager       TransactionType = "game_wager"
	TransactionTypeGamePayout      TransactionType = "game_payout"
	TransactionTypeRaffleEntry     TransactionType = "raffle_entry"
	TransactionTypeRaffleRefund    TransactionType = "raffle_refund"
	TransactionTypeActivityReward  TransactionType = "activity_reward"
	TransactionTypeArenaReward     TransactionType = "arena_reward"
	TransactionTypeAdminAdjustment TransactionType = "admin_adjustment"
	TransactionTypeInitial         TransactionType = "initial"
)

// RelatedType represents what type of entity the related_id refers to
type RelatedType string

const (
	RelatedTypePurchase    RelatedType = "purchase"
	RelatedTypeGameSession RelatedType = "game_session"
	RelatedTypeRaffle      RelatedType = "raffle"
	RelatedTypeArenaRound  RelatedType = "arena_round"
)

// Transaction represents one immutable entry in the append-only points ledger.
// Amount is signed: positive credits, negative debits.
type Transaction struct {
	ID           int64           `json:"id" db:"id"`
	UserID       int64           `json:"user_id" db:"user_id"`
	PointType    PointType       `json:"point_type" db:"point_type"`
	Amount       int64           `json:"amount" db:"amount"`
	BalanceAfter int64           `json:"balance_after" db:"balance_after"`
	Type         TransactionType `json:"transaction_type" db:"transaction_type"`
	Description  string          `json:"description" db:"description"`
	Metadata     map[string]any  `json:"metadata,omitempty" db:"metadata"`
	RelatedID    *int64          `json:"related_id,omitempty" db:"related_id"`
	RelatedType  *RelatedType    `json:"related_type,omitempty" db:"related_type"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
}
