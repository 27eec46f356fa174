package repository

import (
	"context"
	"fmt"
	"time"

	"arcade/database"
	"arcade/models"

	"github.com/jackc/pgx/v5"
)

// ArenaRepository implements the ArenaRepository interface
type ArenaRepository struct {
	q queryable
}

// NewArenaRepository creates a new arena repository
func NewArenaRepository(db *database.DB) *ArenaRepository {
	return &ArenaRepository{q: db.Pool}
}

// newArenaRepositoryWithTx creates a new arena repository with a transaction
func newArenaRepositoryWithTx(tx queryable) *ArenaRepository {
	return &ArenaRepository{q: tx}
}

const arenaRoundColumns = `id, status, reward_amount, started_at, ends_at, winner_user_id, closed_at`

func scanArenaRound(row pgx.Row) (*models.ArenaRound, error) {
	var round models.ArenaRound
	err := row.Scan(
		&round.ID,
		&round.Status,
		&round.RewardAmount,
		&round.StartedAt,
		&round.EndsAt,
		&round.WinnerUserID,
		&round.ClosedAt,
	)
	if err != nil {
		return nil, err
	}
	return &round, nil
}

// CreateRound creates a new open round
func (r *ArenaRepository) CreateRound(ctx context.Context, round *models.ArenaRound) error {
	query := `
		INSERT INTO arena_rounds (status, reward_amount, ends_at)
		VALUES ($1, $2, $3)
		RETURNING id, started_at
	`

	err := r.q.QueryRow(ctx, query, round.Status, round.RewardAmount, round.EndsAt).
		Scan(&round.ID, &round.StartedAt)
	if err != nil {
		return fmt.Errorf("failed to create arena round: %w", err)
	}

	return nil
}

// GetOpenRound returns the current open round, or nil
func (r *ArenaRepository) GetOpenRound(ctx context.Context) (*models.ArenaRound, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM arena_rounds
		WHERE status = 'open'
		ORDER BY started_at DESC
		LIMIT 1
	`, arenaRoundColumns)

	round, err := scanArenaRound(r.q.QueryRow(ctx, query))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get open arena round: %w", err)
	}

	return round, nil
}

// GetRoundForUpdate retrieves a round with a row lock for the current transaction
func (r *ArenaRepository) GetRoundForUpdate(ctx context.Context, id int64) (*models.ArenaRound, error) {
	query := fmt.Sprintf(`SELECT %s FROM arena_rounds WHERE id = $1 FOR UPDATE`, arenaRoundColumns)

	round, err := scanArenaRound(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock arena round %d: %w", id, err)
	}

	return round, nil
}

// UpdateRound writes a round's mutable fields
func (r *ArenaRepository) UpdateRound(ctx context.Context, round *models.ArenaRound) error {
	query := `
		UPDATE arena_rounds
		SET status = $1, winner_user_id = $2, closed_at = $3
		WHERE id = $4
	`

	result, err := r.q.Exec(ctx, query, round.Status, round.WinnerUserID, round.ClosedAt, round.ID)
	if err != nil {
		return fmt.Errorf("failed to update arena round %d: %w", round.ID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("arena round %d not found", round.ID)
	}

	return nil
}

// AddParticipant joins a user to a round; the unique constraint rejects
// duplicate joins
func (r *ArenaRepository) AddParticipant(ctx context.Context, roundID, userID int64) error {
	query := `
		INSERT INTO arena_participants (round_id, user_id)
		VALUES ($1, $2)
	`

	if _, err := r.q.Exec(ctx, query, roundID, userID); err != nil {
		return fmt.Errorf("failed to add user %d to arena round %d: %w", userID, roundID, err)
	}

	return nil
}

// GetParticipants returns all participants of a round in join order
func (r *ArenaRepository) GetParticipants(ctx context.Context, roundID int64) ([]*models.ArenaParticipant, error) {
	query := `
		SELECT id, round_id, user_id, joined_at
		FROM arena_participants
		WHERE round_id = $1
		ORDER BY joined_at, id
	`

	rows, err := r.q.Query(ctx, query, roundID)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants for round %d: %w", roundID, err)
	}
	defer rows.Close()

	var participants []*models.ArenaParticipant
	for rows.Next() {
		var participant models.ArenaParticipant
		err := rows.Scan(
			&participant.ID,
			&participant.RoundID,
			&participant.UserID,
			&participant.JoinedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan arena participant: %w", err)
		}
		participants = append(participants, &participant)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate arena participants: %w", err)
	}

	return participants, nil
}

// GetExpiredOpenRounds returns open rounds past their end time
func (r *ArenaRepository) GetExpiredOpenRounds(ctx context.Context, now time.Time) ([]*models.ArenaRound, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM arena_rounds
		WHERE status = 'open' AND ends_at <= $1
		ORDER BY ends_at
	`, arenaRoundColumns)

	rows, err := r.q.Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to get expired arena rounds: %w", err)
	}
	defer rows.Close()

	var rounds []*models.ArenaRound
	for rows.Next() {
		round, err := scanArenaRound(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan arena round: %w", err)
		}
		rounds = append(rounds, round)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate arena rounds: %w", err)
	}

	return rounds, nil
}
