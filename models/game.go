package models

import "time"

// GameType identifies the kind of game
type GameType string

const (
	GameTypePlinko GameType = "plinko"
)

// RiskLevel adjusts Plinko multipliers
type RiskLevel string

const (
	RiskLevelLow    RiskLevel = "low"
	RiskLevelMedium RiskLevel = "medium"
	RiskLevelHigh   RiskLevel = "high"
)

// GameResult is the outcome of a single play
type GameResult string

const (
	GameResultWin  GameResult = "win"
	GameResultLose GameResult = "lose"
)

// Game represents a playable game with configured bet limits
type Game struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Type      GameType  `json:"game_type" db:"game_type"`
	MinBet    int64     `json:"min_bet" db:"min_bet"`
	MaxBet    int64     `json:"max_bet" db:"max_bet"`
	Active    bool      `json:"active" db:"active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// GameSession records a single play; immutable after creation
type GameSession struct {
	ID         int64      `json:"id" db:"id"`
	GameID     int64      `json:"game_id" db:"game_id"`
	UserID     int64      `json:"user_id" db:"user_id"`
	BetAmount  int64      `json:"bet_amount" db:"bet_amount"`
	RiskLevel  RiskLevel  `json:"risk_level" db:"risk_level"`
	Multiplier float64    `json:"multiplier" db:"multiplier"`
	WinAmount  int64      `json:"win_amount" db:"win_amount"`
	Result     GameResult `json:"result" db:"result"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}

// PlayResult is returned to the caller after a play resolves
type PlayResult struct {
	SessionID  int64      `json:"session_id"`
	Result     GameResult `json:"result"`
	Multiplier float64    `json:"multiplier"`
	WinAmount  int64      `json:"win_amount"`
	NewBalance int64      `json:"new_balance"`
}

// GameStats holds best-effort aggregate counters for a game.
// Updated outside the play's transaction; may lag behind sessions.
type GameStats struct {
	GameID       int64     `json:"game_id" db:"game_id"`
	TotalPlays   int64     `json:"total_plays" db:"total_plays"`
	TotalWagered int64     `json:"total_wagered" db:"total_wagered"`
	TotalWon     int64     `json:"total_won" db:"total_won"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}
