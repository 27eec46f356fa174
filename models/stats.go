package models

// LeaderboardEntry is one row of the points leaderboard
type LeaderboardEntry struct {
	Rank       int    `json:"rank" db:"-"`
	UserID     int64  `json:"user_id" db:"id"`
	Username   string `json:"username" db:"username"`
	Redeemable int64  `json:"redeemable_balance" db:"redeemable_balance"`
	SoulBound  int64  `json:"soul_bound_balance" db:"soul_bound_balance"`
}
