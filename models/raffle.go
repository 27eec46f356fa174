package models

import "time"

// RaffleStatus represents the lifecycle state of a raffle
type RaffleStatus string

const (
	RaffleStatusDraft     RaffleStatus = "draft"
	RaffleStatusActive    RaffleStatus = "active"
	RaffleStatusEnded     RaffleStatus = "ended"
	RaffleStatusCancelled RaffleStatus = "cancelled"
)

// Raffle represents a ticket raffle with capacity limits
type Raffle struct {
	ID                  int64        `json:"id" db:"id"`
	Title               string       `json:"title" db:"title"`
	Description         string       `json:"description" db:"description"`
	TicketPrice         int64        `json:"ticket_price" db:"ticket_price"`
	MaxEntries          int64        `json:"max_entries" db:"max_entries"`
	MaxEntriesPerUser   *int64       `json:"max_entries_per_user,omitempty" db:"max_entries_per_user"`
	StartsAt            time.Time    `json:"starts_at" db:"starts_at"`
	EndsAt              time.Time    `json:"ends_at" db:"ends_at"`
	Status              RaffleStatus `json:"status" db:"status"`
	TotalTicketsSold    int64        `json:"total_tickets_sold" db:"total_tickets_sold"`
	TotalParticipants   int64        `json:"total_participants" db:"total_participants"`
	WinnerUserID        *int64       `json:"winner_user_id,omitempty" db:"winner_user_id"`
	WinningTicketNumber *int64       `json:"winning_ticket_number,omitempty" db:"winning_ticket_number"`
	DrawnAt             *time.Time   `json:"drawn_at,omitempty" db:"drawn_at"`
	CreatedAt           time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time    `json:"updated_at" db:"updated_at"`
}

// RemainingTickets returns how many tickets can still be sold
func (r *Raffle) RemainingTickets() int64 {
	return r.MaxEntries - r.TotalTicketsSold
}

// IsOpenAt reports whether entries can be purchased at the given time
func (r *Raffle) IsOpenAt(t time.Time) bool {
	return r.Status == RaffleStatusActive && !t.Before(r.StartsAt) && t.Before(r.EndsAt)
}

// RaffleEntry represents one purchase of a contiguous range of tickets.
// Ticket numbers FirstTicketNumber..FirstTicketNumber+TicketCount-1 are
// unique within the raffle and never reused.
type RaffleEntry struct {
	ID                int64     `json:"id" db:"id"`
	RaffleID          int64     `json:"raffle_id" db:"raffle_id"`
	UserID            int64     `json:"user_id" db:"user_id"`
	FirstTicketNumber int64     `json:"first_ticket_number" db:"first_ticket_number"`
	TicketCount       int64     `json:"ticket_count" db:"ticket_count"`
	PurchasePrice     int64     `json:"purchase_price" db:"purchase_price"`
	Refunded          bool      `json:"refunded" db:"refunded"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
}

// TicketNumbers expands the entry's contiguous ticket range
func (e *RaffleEntry) TicketNumbers() []int64 {
	numbers := make([]int64, 0, e.TicketCount)
	for n := e.FirstTicketNumber; n < e.FirstTicketNumber+e.TicketCount; n++ {
		numbers = append(numbers, n)
	}
	return numbers
}

// HoldsTicket reports whether the entry contains the given ticket number
func (e *RaffleEntry) HoldsTicket(number int64) bool {
	return number >= e.FirstTicketNumber && number < e.FirstTicketNumber+e.TicketCount
}

// EntryPurchaseResult is returned to the caller after buying raffle entries
type EntryPurchaseResult struct {
	Entry         *RaffleEntry `json:"entry"`
	TicketNumbers []int64      `json:"ticket_numbers"`
	TotalCost     int64        `json:"total_cost"`
	NewBalance    int64        `json:"new_balance"`
}

// RaffleDrawResult is returned after a winner draw
type RaffleDrawResult struct {
	Raffle              *Raffle `json:"raffle"`
	WinnerUserID        int64   `json:"winner_user_id,omitempty"`
	WinningTicketNumber int64   `json:"winning_ticket_number,omitempty"`
}
