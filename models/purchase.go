package models

import "time"

// PurchaseStatus represents the lifecycle state of a purchase
type PurchaseStatus string

const (
	PurchaseStatusPending   PurchaseStatus = "pending"
	PurchaseStatusCompleted PurchaseStatus = "completed"
)

// Purchase links a user to an item they bought
type Purchase struct {
	ID         int64          `json:"id" db:"id"`
	Reference  string         `json:"reference" db:"reference"`
	UserID     int64          `json:"user_id" db:"user_id"`
	ItemID     int64          `json:"item_id" db:"item_id"`
	Quantity   int64          `json:"quantity" db:"quantity"`
	TotalPrice int64          `json:"total_price" db:"total_price"`
	Status     PurchaseStatus `json:"status" db:"status"`
	CreatedAt  time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at" db:"updated_at"`
}

// LootboxOpening records the resolved reward of a lootbox purchase.
// At most one opening exists per purchase.
type LootboxOpening struct {
	ID           int64      `json:"id" db:"id"`
	PurchaseID   int64      `json:"purchase_id" db:"purchase_id"`
	UserID       int64      `json:"user_id" db:"user_id"`
	RewardKind   RewardKind `json:"reward_kind" db:"reward_kind"`
	PointsAmount int64      `json:"points_amount" db:"points_amount"`
	RewardItemID *int64     `json:"reward_item_id,omitempty" db:"reward_item_id"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}

// OpeningResult is returned to the caller after a lootbox is opened
type OpeningResult struct {
	Opening    *LootboxOpening `json:"opening"`
	NewBalance int64           `json:"new_balance"`
}
