package repository

import (
	"context"
	"fmt"

	"arcade/database"
	"arcade/models"

	"github.com/jackc/pgx/v5"
)

// GameRepository implements the GameRepository interface
type GameRepository struct {
	q queryable
}

// NewGameRepository creates a new game repository
func NewGameRepository(db *database.DB) *GameRepository {
	return &GameRepository{q: db.Pool}
}

// newGameRepositoryWithTx creates a new game repository with a transaction
func newGameRepositoryWithTx(tx queryable) *GameRepository {
	return &GameRepository{q: tx}
}

const gameColumns = `id, name, game_type, min_bet, max_bet, active, created_at`

func scanGame(row pgx.Row) (*models.Game, error) {
	var game models.Game
	err := row.Scan(
		&game.ID,
		&game.Name,
		&game.Type,
		&game.MinBet,
		&game.MaxBet,
		&game.Active,
		&game.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &game, nil
}

// GetByID retrieves a game by ID
func (r *GameRepository) GetByID(ctx context.Context, id int64) (*models.Game, error) {
	query := fmt.Sprintf(`SELECT %s FROM games WHERE id = $1`, gameColumns)

	game, err := scanGame(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game %d: %w", id, err)
	}

	return game, nil
}

// GetActive returns all active games
func (r *GameRepository) GetActive(ctx context.Context) ([]*models.Game, error) {
	query := fmt.Sprintf(`SELECT %s FROM games WHERE active ORDER BY id`, gameColumns)

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get active games: %w", err)
	}
	defer rows.Close()

	var games []*models.Game
	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		games = append(games, game)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate games: %w", err)
	}

	return games, nil
}

// Create creates a new game
func (r *GameRepository) Create(ctx context.Context, game *models.Game) error {
	query := `
		INSERT INTO games (name, game_type, min_bet, max_bet, active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		game.Name,
		game.Type,
		game.MinBet,
		game.MaxBet,
		game.Active,
	).Scan(&game.ID, &game.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create game %q: %w", game.Name, err)
	}

	return nil
}

// CreateSession creates a new game session record
func (r *GameRepository) CreateSession(ctx context.Context, session *models.GameSession) error {
	query := `
		INSERT INTO game_sessions (game_id, user_id, bet_amount, risk_level, multiplier, win_amount, result)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		session.GameID,
		session.UserID,
		session.BetAmount,
		session.RiskLevel,
		session.Multiplier,
		session.WinAmount,
		session.Result,
	).Scan(&session.ID, &session.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create game session for user %d: %w", session.UserID, err)
	}

	return nil
}

// GetSessionsByUser returns sessions for a user, newest first
func (r *GameRepository) GetSessionsByUser(ctx context.Context, userID int64, limit int) ([]*models.GameSession, error) {
	query := `
		SELECT id, game_id, user_id, bet_amount, risk_level, multiplier, win_amount, result, created_at
		FROM game_sessions
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get sessions for user %d: %w", userID, err)
	}
	defer rows.Close()

	var sessions []*models.GameSession
	for rows.Next() {
		var session models.GameSession
		err := rows.Scan(
			&session.ID,
			&session.GameID,
			&session.UserID,
			&session.BetAmount,
			&session.RiskLevel,
			&session.Multiplier,
			&session.WinAmount,
			&session.Result,
			&session.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game session: %w", err)
		}
		sessions = append(sessions, &session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate game sessions: %w", err)
	}

	return sessions, nil
}

// GetStats returns aggregate stats for a game, or nil if none recorded yet
func (r *GameRepository) GetStats(ctx context.Context, gameID int64) (*models.GameStats, error) {
	query := `
		SELECT game_id, total_plays, total_wagered, total_won, updated_at
		FROM game_stats
		WHERE game_id = $1
	`

	var stats models.GameStats
	err := r.q.QueryRow(ctx, query, gameID).Scan(
		&stats.GameID,
		&stats.TotalPlays,
		&stats.TotalWagered,
		&stats.TotalWon,
		&stats.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get stats for game %d: %w", gameID, err)
	}

	return &stats, nil
}

// IncrementStats upserts aggregate counters for a game
func (r *GameRepository) IncrementStats(ctx context.Context, gameID int64, wagered, won int64) error {
	query := `
		INSERT INTO game_stats (game_id, total_plays, total_wagered, total_won, updated_at)
		VALUES ($1, 1, $2, $3, NOW())
		ON CONFLICT (game_id) DO UPDATE SET
			total_plays = game_stats.total_plays + 1,
			total_wagered = game_stats.total_wagered + EXCLUDED.total_wagered,
			total_won = game_stats.total_won + EXCLUDED.total_won,
			updated_at = NOW()
	`

	if _, err := r.q.Exec(ctx, query, gameID, wagered, won); err != nil {
		return fmt.Errorf("failed to increment stats for game %d: %w", gameID, err)
	}

	return nil
}
