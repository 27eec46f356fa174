package models

import "time"

// ArenaRoundStatus represents the lifecycle state of an arena round
type ArenaRoundStatus string

const (
	ArenaRoundStatusOpen   ArenaRoundStatus = "open"
	ArenaRoundStatusClosed ArenaRoundStatus = "closed"
)

// ArenaRound is a timer-driven free-entry round; one winner is drawn
// from the participants when the round closes.
type ArenaRound struct {
	ID           int64            `json:"id" db:"id"`
	Status       ArenaRoundStatus `json:"status" db:"status"`
	RewardAmount int64            `json:"reward_amount" db:"reward_amount"`
	StartedAt    time.Time        `json:"started_at" db:"started_at"`
	EndsAt       time.Time        `json:"ends_at" db:"ends_at"`
	WinnerUserID *int64           `json:"winner_user_id,omitempty" db:"winner_user_id"`
	ClosedAt     *time.Time       `json:"closed_at,omitempty" db:"closed_at"`
}

// ArenaParticipant links a user to a round they joined
type ArenaParticipant struct {
	ID       int64     `json:"id" db:"id"`
	RoundID  int64     `json:"round_id" db:"round_id"`
	UserID   int64     `json:"user_id" db:"user_id"`
	JoinedAt time.Time `json:"joined_at" db:"joined_at"`
}
