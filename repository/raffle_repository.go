package repository

import (
	"context"
	"fmt"
	"time"

	"arcade/database"
	"arcade/models"

	"github.com/jackc/pgx/v5"
)

// RaffleRepository implements the RaffleRepository interface
type RaffleRepository struct {
	q queryable
}

// NewRaffleRepository creates a new raffle repository
func NewRaffleRepository(db *database.DB) *RaffleRepository {
	return &RaffleRepository{q: db.Pool}
}

// newRaffleRepositoryWithTx creates a new raffle repository with a transaction
func newRaffleRepositoryWithTx(tx queryable) *RaffleRepository {
	return &RaffleRepository{q: tx}
}

const raffleColumns = `id, title, description, ticket_price, max_entries, max_entries_per_user,
	starts_at, ends_at, status, total_tickets_sold, total_participants,
	winner_user_id, winning_ticket_number, drawn_at, created_at, updated_at`

func scanRaffle(row pgx.Row) (*models.Raffle, error) {
	var raffle models.Raffle
	err := row.Scan(
		&raffle.ID,
		&raffle.Title,
		&raffle.Description,
		&raffle.TicketPrice,
		&raffle.MaxEntries,
		&raffle.MaxEntriesPerUser,
		&raffle.StartsAt,
		&raffle.EndsAt,
		&raffle.Status,
		&raffle.TotalTicketsSold,
		&raffle.TotalParticipants,
		&raffle.WinnerUserID,
		&raffle.WinningTicketNumber,
		&raffle.DrawnAt,
		&raffle.CreatedAt,
		&raffle.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &raffle, nil
}

// Create creates a new raffle in draft status
func (r *RaffleRepository) Create(ctx context.Context, raffle *models.Raffle) error {
	query := `
		INSERT INTO raffles (title, description, ticket_price, max_entries, max_entries_per_user, starts_at, ends_at, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, total_tickets_sold, total_participants, created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query,
		raffle.Title,
		raffle.Description,
		raffle.TicketPrice,
		raffle.MaxEntries,
		raffle.MaxEntriesPerUser,
		raffle.StartsAt,
		raffle.EndsAt,
		raffle.Status,
	).Scan(&raffle.ID, &raffle.TotalTicketsSold, &raffle.TotalParticipants, &raffle.CreatedAt, &raffle.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create raffle %q: %w", raffle.Title, err)
	}

	return nil
}

// GetByID retrieves a raffle by ID
func (r *RaffleRepository) GetByID(ctx context.Context, id int64) (*models.Raffle, error) {
	query := fmt.Sprintf(`SELECT %s FROM raffles WHERE id = $1`, raffleColumns)

	raffle, err := scanRaffle(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get raffle %d: %w", id, err)
	}

	return raffle, nil
}

// GetForUpdate retrieves a raffle with a row lock for the current transaction.
// Serializes concurrent entry purchases so ticket numbering stays contiguous.
func (r *RaffleRepository) GetForUpdate(ctx context.Context, id int64) (*models.Raffle, error) {
	query := fmt.Sprintf(`SELECT %s FROM raffles WHERE id = $1 FOR UPDATE`, raffleColumns)

	raffle, err := scanRaffle(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock raffle %d: %w", id, err)
	}

	return raffle, nil
}

// Update writes a raffle's mutable fields
func (r *RaffleRepository) Update(ctx context.Context, raffle *models.Raffle) error {
	query := `
		UPDATE raffles
		SET status = $1, total_tickets_sold = $2, total_participants = $3,
		    winner_user_id = $4, winning_ticket_number = $5, drawn_at = $6, updated_at = NOW()
		WHERE id = $7
	`

	result, err := r.q.Exec(ctx, query,
		raffle.Status,
		raffle.TotalTicketsSold,
		raffle.TotalParticipants,
		raffle.WinnerUserID,
		raffle.WinningTicketNumber,
		raffle.DrawnAt,
		raffle.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update raffle %d: %w", raffle.ID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("raffle %d not found", raffle.ID)
	}

	return nil
}

// GetActive returns all active raffles
func (r *RaffleRepository) GetActive(ctx context.Context) ([]*models.Raffle, error) {
	query := fmt.Sprintf(`SELECT %s FROM raffles WHERE status = 'active' ORDER BY ends_at`, raffleColumns)

	return r.queryRaffles(ctx, query)
}

// GetExpiredActive returns active raffles whose end date has passed
func (r *RaffleRepository) GetExpiredActive(ctx context.Context, now time.Time) ([]*models.Raffle, error) {
	query := fmt.Sprintf(`SELECT %s FROM raffles WHERE status = 'active' AND ends_at <= $1 ORDER BY ends_at`, raffleColumns)

	return r.queryRaffles(ctx, query, now)
}

func (r *RaffleRepository) queryRaffles(ctx context.Context, query string, args ...any) ([]*models.Raffle, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query raffles: %w", err)
	}
	defer rows.Close()

	var raffles []*models.Raffle
	for rows.Next() {
		raffle, err := scanRaffle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan raffle: %w", err)
		}
		raffles = append(raffles, raffle)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate raffles: %w", err)
	}

	return raffles, nil
}

const raffleEntryColumns = `id, raffle_id, user_id, first_ticket_number, ticket_count, purchase_price, refunded, created_at`

func scanRaffleEntry(row pgx.Row) (*models.RaffleEntry, error) {
	var entry models.RaffleEntry
	err := row.Scan(
		&entry.ID,
		&entry.RaffleID,
		&entry.UserID,
		&entry.FirstTicketNumber,
		&entry.TicketCount,
		&entry.PurchasePrice,
		&entry.Refunded,
		&entry.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// CreateEntry creates a new raffle entry
func (r *RaffleRepository) CreateEntry(ctx context.Context, entry *models.RaffleEntry) error {
	query := `
		INSERT INTO raffle_entries (raffle_id, user_id, first_ticket_number, ticket_count, purchase_price)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, refunded, created_at
	`

	err := r.q.QueryRow(ctx, query,
		entry.RaffleID,
		entry.UserID,
		entry.FirstTicketNumber,
		entry.TicketCount,
		entry.PurchasePrice,
	).Scan(&entry.ID, &entry.Refunded, &entry.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create raffle entry for user %d: %w", entry.UserID, err)
	}

	return nil
}

// GetEntries returns all entries for a raffle ordered by ticket number
func (r *RaffleRepository) GetEntries(ctx context.Context, raffleID int64) ([]*models.RaffleEntry, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM raffle_entries
		WHERE raffle_id = $1
		ORDER BY first_ticket_number
	`, raffleEntryColumns)

	return r.queryEntries(ctx, query, raffleID)
}

// CountUserTickets returns how many tickets a user holds in a raffle
func (r *RaffleRepository) CountUserTickets(ctx context.Context, raffleID, userID int64) (int64, error) {
	query := `
		SELECT COALESCE(SUM(ticket_count), 0)
		FROM raffle_entries
		WHERE raffle_id = $1 AND user_id = $2
	`

	var count int64
	err := r.q.QueryRow(ctx, query, raffleID, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count tickets for user %d in raffle %d: %w", userID, raffleID, err)
	}

	return count, nil
}

// GetUnrefundedEntries returns entries not yet refunded, for cancellation
func (r *RaffleRepository) GetUnrefundedEntries(ctx context.Context, raffleID int64) ([]*models.RaffleEntry, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM raffle_entries
		WHERE raffle_id = $1 AND NOT refunded
		ORDER BY id
	`, raffleEntryColumns)

	return r.queryEntries(ctx, query, raffleID)
}

// MarkEntryRefunded flags an entry as refunded
func (r *RaffleRepository) MarkEntryRefunded(ctx context.Context, entryID int64) error {
	query := `
		UPDATE raffle_entries
		SET refunded = TRUE
		WHERE id = $1 AND NOT refunded
	`

	result, err := r.q.Exec(ctx, query, entryID)
	if err != nil {
		return fmt.Errorf("failed to mark entry %d refunded: %w", entryID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("entry %d not found or already refunded", entryID)
	}

	return nil
}

func (r *RaffleRepository) queryEntries(ctx context.Context, query string, args ...any) ([]*models.RaffleEntry, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query raffle entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.RaffleEntry
	for rows.Next() {
		entry, err := scanRaffleEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan raffle entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate raffle entries: %w", err)
	}

	return entries, nil
}
