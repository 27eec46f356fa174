package service

import (
	"context"
	"fmt"
	"time"

	"arcade/events"
	"arcade/models"

	log "github.com/sirupsen/logrus"
)

type raffleService struct {
	uowFactory UnitOfWorkFactory
	rng        Rand
	now        func() time.Time
}

// NewRaffleService creates a new raffle service
func NewRaffleService(uowFactory UnitOfWorkFactory) RaffleService {
	return NewRaffleServiceWithRand(uowFactory, newLockedRand())
}

// NewRaffleServiceWithRand creates a raffle service with an explicit random
// source, used by tests to force winner draws
func NewRaffleServiceWithRand(uowFactory UnitOfWorkFactory, rng Rand) RaffleService {
	return &raffleService{
		uowFactory: uowFactory,
		rng:        rng,
		now:        time.Now,
	}
}

// CreateRaffle creates a raffle in draft status
func (s *raffleService) CreateRaffle(ctx context.Context, raffle *models.Raffle) error {
	if raffle.TicketPrice < 0 {
		return fmt.Errorf("ticket price must be non-negative: %w", ErrOutOfRange)
	}
	if raffle.MaxEntries <= 0 {
		return fmt.Errorf("max entries must be positive: %w", ErrOutOfRange)
	}
	if !raffle.EndsAt.After(raffle.StartsAt) {
		return fmt.Errorf("end date must be after start date: %w", ErrOutOfRange)
	}
	raffle.Status = models.RaffleStatusDraft

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.RaffleRepository().Create(ctx, raffle); err != nil {
		return fmt.Errorf("failed to create raffle: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ActivateRaffle transitions a draft raffle to active
func (s *raffleService) ActivateRaffle(ctx context.Context, raffleID int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	raffle, err := uow.RaffleRepository().GetForUpdate(ctx, raffleID)
	if err != nil {
		return fmt.Errorf("failed to get raffle: %w", err)
	}
	if raffle == nil {
		return fmt.Errorf("raffle %d: %w", raffleID, ErrNotFound)
	}
	if raffle.Status != models.RaffleStatusDraft {
		return fmt.Errorf("raffle %d is not a draft: %w", raffleID, ErrInvalidState)
	}

	raffle.Status = models.RaffleStatusActive
	if err := uow.RaffleRepository().Update(ctx, raffle); err != nil {
		return fmt.Errorf("failed to activate raffle: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetRaffle retrieves a raffle by ID
func (s *raffleService) GetRaffle(ctx context.Context, raffleID int64) (*models.Raffle, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	raffle, err := uow.RaffleRepository().GetByID(ctx, raffleID)
	if err != nil {
		return nil, fmt.Errorf("failed to get raffle: %w", err)
	}
	if raffle == nil {
		return nil, fmt.Errorf("raffle %d: %w", raffleID, ErrNotFound)
	}

	return raffle, nil
}

// ListActive returns all active raffles
func (s *raffleService) ListActive(ctx context.Context) ([]*models.Raffle, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	raffles, err := uow.RaffleRepository().GetActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list raffles: %w", err)
	}

	return raffles, nil
}

// PurchaseEntries buys numberOfEntries tickets. The raffle row lock
// serializes concurrent purchases so ticket numbers stay contiguous and
// capacity is never exceeded; the entry, counters and debit commit together.
func (s *raffleService) PurchaseEntries(ctx context.Context, raffleID, userID, numberOfEntries int64) (*models.EntryPurchaseResult, error) {
	if numberOfEntries <= 0 {
		return nil, fmt.Errorf("number of entries must be positive: %w", ErrOutOfRange)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	raffle, err := uow.RaffleRepository().GetForUpdate(ctx, raffleID)
	if err != nil {
		return nil, fmt.Errorf("failed to get raffle: %w", err)
	}
	if raffle == nil {
		return nil, fmt.Errorf("raffle %d: %w", raffleID, ErrNotFound)
	}
	if !raffle.IsOpenAt(s.now()) {
		return nil, fmt.Errorf("raffle %q is not open for entries: %w", raffle.Title, ErrInvalidState)
	}

	if remaining := raffle.RemainingTickets(); remaining < numberOfEntries {
		return nil, fmt.Errorf("only %d tickets remaining: %w", remaining, ErrOutOfRange)
	}

	userTickets, err := uow.RaffleRepository().CountUserTickets(ctx, raffleID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count user tickets: %w", err)
	}
	if limit := raffle.MaxEntriesPerUser; limit != nil && userTickets+numberOfEntries > *limit {
		return nil, fmt.Errorf("per-user limit of %d tickets exceeded: %w", *limit, ErrOutOfRange)
	}

	totalCost := raffle.TicketPrice * numberOfEntries

	entry := &models.RaffleEntry{
		RaffleID:          raffleID,
		UserID:            userID,
		FirstTicketNumber: raffle.TotalTicketsSold + 1,
		TicketCount:       numberOfEntries,
		PurchasePrice:     totalCost,
	}
	if err := uow.RaffleRepository().CreateEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to create raffle entry: %w", err)
	}

	raffle.TotalTicketsSold += numberOfEntries
	if userTickets == 0 {
		raffle.TotalParticipants++
	}
	if err := uow.RaffleRepository().Update(ctx, raffle); err != nil {
		return nil, fmt.Errorf("failed to update raffle counters: %w", err)
	}

	relatedType := models.RelatedTypeRaffle
	txn, err := ApplyBalanceChange(ctx, uow, BalanceChange{
		UserID:      userID,
		PointType:   models.PointTypeRedeemable,
		Amount:      -totalCost,
		Type:        models.TransactionTypeRaffleEntry,
		Description: fmt.Sprintf("%d tickets for %s", numberOfEntries, raffle.Title),
		Metadata: map[string]any{
			"raffle_id":    raffleID,
			"entry_id":     entry.ID,
			"ticket_count": numberOfEntries,
			"ticket_price": raffle.TicketPrice,
		},
		RelatedID:   &raffleID,
		RelatedType: &relatedType,
	})
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.EntryPurchaseResult{
		Entry:         entry,
		TicketNumbers: entry.TicketNumbers(),
		TotalCost:     totalCost,
		NewBalance:    txn.BalanceAfter,
	}, nil
}

// DrawWinner ends a raffle past its end date. The winning ticket is a
// uniform pick in [1, totalSold]; the holding entry is found by scanning
// the contiguous ranges. Re-drawing an ended raffle fails.
func (s *raffleService) DrawWinner(ctx context.Context, raffleID int64) (*models.RaffleDrawResult, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	raffle, err := uow.RaffleRepository().GetForUpdate(ctx, raffleID)
	if err != nil {
		return nil, fmt.Errorf("failed to get raffle: %w", err)
	}
	if raffle == nil {
		return nil, fmt.Errorf("raffle %d: %w", raffleID, ErrNotFound)
	}
	if raffle.Status != models.RaffleStatusActive {
		return nil, fmt.Errorf("raffle %d is not active: %w", raffleID, ErrInvalidState)
	}
	now := s.now()
	if now.Before(raffle.EndsAt) {
		return nil, fmt.Errorf("raffle %d has not ended yet: %w", raffleID, ErrInvalidState)
	}

	raffle.Status = models.RaffleStatusEnded
	raffle.DrawnAt = &now

	// A raffle with no sales ends without a winner
	if raffle.TotalTicketsSold == 0 {
		if err := uow.RaffleRepository().Update(ctx, raffle); err != nil {
			return nil, fmt.Errorf("failed to end raffle: %w", err)
		}
		if err := uow.Commit(); err != nil {
			return nil, fmt.Errorf("failed to commit transaction: %w", err)
		}
		return &models.RaffleDrawResult{Raffle: raffle}, nil
	}

	winningTicket := DrawTicket(s.rng, raffle.TotalTicketsSold)

	entries, err := uow.RaffleRepository().GetEntries(ctx, raffleID)
	if err != nil {
		return nil, fmt.Errorf("failed to get raffle entries: %w", err)
	}

	var winner *models.RaffleEntry
	for _, entry := range entries {
		if entry.HoldsTicket(winningTicket) {
			winner = entry
			break
		}
	}
	if winner == nil {
		return nil, fmt.Errorf("no entry holds ticket %d of raffle %d", winningTicket, raffleID)
	}

	raffle.WinnerUserID = &winner.UserID
	raffle.WinningTicketNumber = &winningTicket
	if err := uow.RaffleRepository().Update(ctx, raffle); err != nil {
		return nil, fmt.Errorf("failed to record raffle winner: %w", err)
	}

	uow.EventBus().Publish(events.RaffleEndedEvent{
		RaffleID:            raffleID,
		WinnerUserID:        winner.UserID,
		WinningTicketNumber: winningTicket,
		TotalTicketsSold:    raffle.TotalTicketsSold,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.RaffleDrawResult{
		Raffle:              raffle,
		WinnerUserID:        winner.UserID,
		WinningTicketNumber: winningTicket,
	}, nil
}

// CancelRaffle cancels a raffle and refunds every entry. The status flip
// commits first; each refund then runs in its own transaction guarded by
// the entry's refunded flag, so a crash mid-cancellation is safely retried
// without double-refunding.
func (s *raffleService) CancelRaffle(ctx context.Context, raffleID int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	raffle, err := uow.RaffleRepository().GetForUpdate(ctx, raffleID)
	if err != nil {
		return fmt.Errorf("failed to get raffle: %w", err)
	}
	if raffle == nil {
		return fmt.Errorf("raffle %d: %w", raffleID, ErrNotFound)
	}
	if raffle.Status == models.RaffleStatusEnded {
		return fmt.Errorf("raffle %d already ended: %w", raffleID, ErrInvalidState)
	}

	// Already-cancelled raffles fall through to the refund loop so a
	// partially refunded cancellation can be resumed
	if raffle.Status != models.RaffleStatusCancelled {
		raffle.Status = models.RaffleStatusCancelled
		if err := uow.RaffleRepository().Update(ctx, raffle); err != nil {
			return fmt.Errorf("failed to cancel raffle: %w", err)
		}
	}
	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	entries, err := s.unrefundedEntries(ctx, raffleID)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if err := s.refundEntry(ctx, raffle, entry); err != nil {
			return fmt.Errorf("failed to refund entry %d: %w", entry.ID, err)
		}
	}

	log.WithFields(log.Fields{
		"raffleID": raffleID,
		"refunds":  len(entries),
	}).Info("Raffle cancelled and refunded")

	return nil
}

func (s *raffleService) unrefundedEntries(ctx context.Context, raffleID int64) ([]*models.RaffleEntry, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	entries, err := uow.RaffleRepository().GetUnrefundedEntries(ctx, raffleID)
	if err != nil {
		return nil, fmt.Errorf("failed to get unrefunded entries: %w", err)
	}

	return entries, nil
}

// refundEntry refunds one entry in its own transaction. Marking the entry
// refunded and crediting the owner commit together, so the refund happens
// exactly once.
func (s *raffleService) refundEntry(ctx context.Context, raffle *models.Raffle, entry *models.RaffleEntry) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.RaffleRepository().MarkEntryRefunded(ctx, entry.ID); err != nil {
		return err
	}

	if entry.PurchasePrice > 0 {
		relatedType := models.RelatedTypeRaffle
		if _, err := ApplyBalanceChange(ctx, uow, BalanceChange{
			UserID:      entry.UserID,
			PointType:   models.PointTypeRedeemable,
			Amount:      entry.PurchasePrice,
			Type:        models.TransactionTypeRaffleRefund,
			Description: fmt.Sprintf("refund for cancelled raffle %s", raffle.Title),
			Metadata: map[string]any{
				"raffle_id": raffle.ID,
				"entry_id":  entry.ID,
			},
			RelatedID:   &raffle.ID,
			RelatedType: &relatedType,
		}); err != nil {
			return err
		}
	}

	return uow.Commit()
}

// CloseExpired draws winners for all active raffles past their end date.
// Called by the scheduler on a fixed cadence.
func (s *raffleService) CloseExpired(ctx context.Context) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	expired, err := uow.RaffleRepository().GetExpiredActive(ctx, s.now())
	uow.Rollback()
	if err != nil {
		return fmt.Errorf("failed to find expired raffles: %w", err)
	}

	for _, raffle := range expired {
		if _, err := s.DrawWinner(ctx, raffle.ID); err != nil {
			log.WithError(err).WithField("raffleID", raffle.ID).Error("Failed to draw winner for expired raffle")
			continue
		}
		log.WithField("raffleID", raffle.ID).Info("Closed expired raffle")
	}

	return nil
}
