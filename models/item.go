package models

import "time"

// ItemType categorizes shop items
type ItemType string

const (
	ItemTypeStandard ItemType = "standard"
	ItemTypeLootbox  ItemType = "lootbox"
)

// Item represents a shop item priced in redeemable points
type Item struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Price       int64     `json:"price" db:"price"`
	Stock       int64     `json:"stock" db:"stock"`
	Active      bool      `json:"active" db:"active"`
	Type        ItemType  `json:"item_type" db:"item_type"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// RewardKind distinguishes what a lootbox reward grants
type RewardKind string

const (
	RewardKindPoints RewardKind = "points"
	RewardKindItem   RewardKind = "item"
)

// LootboxReward is one weighted entry in a lootbox item's reward table
type LootboxReward struct {
	ID           int64      `json:"id" db:"id"`
	ItemID       int64      `json:"item_id" db:"item_id"`
	Kind         RewardKind `json:"reward_kind" db:"reward_kind"`
	PointsAmount int64      `json:"points_amount" db:"points_amount"`
	RewardItemID *int64     `json:"reward_item_id,omitempty" db:"reward_item_id"`
	Weight       int64      `json:"weight" db:"weight"`
}
