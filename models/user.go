package models

import (
	"time"
)

// PointType identifies one of a user's independent point balances
type PointType string

const (
	// PointTypeRedeemable is spendable currency
	PointTypeRedeemable PointType = "redeemable"
	// PointTypeSoulBound is non-transferable; never debited by economy operations
	PointTypeSoulBound PointType = "soul_bound"
)

// User represents a platform user with two independent point balances
type User struct {
	ID         int64     `json:"id" db:"id"`
	DiscordID  *int64    `json:"discord_id,omitempty" db:"discord_id"`
	Username   string    `json:"username" db:"username"`
	Redeemable int64     `json:"redeemable_balance" db:"redeemable_balance"`
	SoulBound  int64     `json:"soul_bound_balance" db:"soul_bound_balance"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// Balance returns the balance for the given point type
func (u *User) Balance(pointType PointType) int64 {
	if pointType == PointTypeSoulBound {
		return u.SoulBound
	}
	return u.Redeemable
}
