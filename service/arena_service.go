package service

import (
	"context"
	"fmt"
	"time"

	"arcade/events"
	"arcade/models"

	log "github.com/sirupsen/logrus"
)

type arenaService struct {
	uowFactory  UnitOfWorkFactory
	rng         Rand
	now         func() time.Time
	roundLength time.Duration
	reward      int64
}

// NewArenaService creates a new arena service
func NewArenaService(uowFactory UnitOfWorkFactory, roundLength time.Duration, reward int64) ArenaService {
	return NewArenaServiceWithRand(uowFactory, roundLength, reward, newLockedRand())
}

// NewArenaServiceWithRand creates an arena service with an explicit random
// source, used by tests to force winner draws
func NewArenaServiceWithRand(uowFactory UnitOfWorkFactory, roundLength time.Duration, reward int64, rng Rand) ArenaService {
	return &arenaService{
		uowFactory:  uowFactory,
		rng:         rng,
		now:         time.Now,
		roundLength: roundLength,
		reward:      reward,
	}
}

// JoinCurrentRound joins the user to the open round, opening a fresh round
// first if none exists. Joining is free and at most once per round; the
// unique constraint on (round, user) rejects a second join.
func (s *arenaService) JoinCurrentRound(ctx context.Context, userID int64) (*models.ArenaRound, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	round, err := uow.ArenaRepository().GetOpenRound(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get open round: %w", err)
	}
	if round == nil {
		round = s.newRound()
		if err := uow.ArenaRepository().CreateRound(ctx, round); err != nil {
			return nil, fmt.Errorf("failed to open round: %w", err)
		}
	}

	if err := uow.ArenaRepository().AddParticipant(ctx, round.ID, userID); err != nil {
		return nil, fmt.Errorf("failed to join round %d: %w", round.ID, err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return round, nil
}

// RotateRounds closes every open round past its end time, paying a uniformly
// drawn winner, then makes sure the next round is open. Called by the
// scheduler on a fixed cadence.
func (s *arenaService) RotateRounds(ctx context.Context) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	expired, err := uow.ArenaRepository().GetExpiredOpenRounds(ctx, s.now())
	uow.Rollback()
	if err != nil {
		return fmt.Errorf("failed to find expired rounds: %w", err)
	}

	for _, round := range expired {
		if err := s.closeRound(ctx, round.ID); err != nil {
			log.WithError(err).WithField("roundID", round.ID).Error("Failed to close arena round")
		}
	}

	return s.ensureOpenRound(ctx)
}

// closeRound closes one round in its own transaction, drawing and paying
// the winner atomically with the status flip. A round nobody joined closes
// without a winner.
func (s *arenaService) closeRound(ctx context.Context, roundID int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	round, err := uow.ArenaRepository().GetRoundForUpdate(ctx, roundID)
	if err != nil {
		return fmt.Errorf("failed to get round: %w", err)
	}
	if round == nil || round.Status != models.ArenaRoundStatusOpen {
		// Another closer got here first
		return nil
	}

	participants, err := uow.ArenaRepository().GetParticipants(ctx, roundID)
	if err != nil {
		return fmt.Errorf("failed to get participants: %w", err)
	}

	now := s.now()
	round.Status = models.ArenaRoundStatusClosed
	round.ClosedAt = &now

	if len(participants) > 0 {
		winner := participants[s.rng.Intn(len(participants))]
		round.WinnerUserID = &winner.UserID

		relatedType := models.RelatedTypeArenaRound
		if _, err := ApplyBalanceChange(ctx, uow, BalanceChange{
			UserID:      winner.UserID,
			PointType:   models.PointTypeRedeemable,
			Amount:      round.RewardAmount,
			Type:        models.TransactionTypeArenaReward,
			Description: fmt.Sprintf("arena round %d winner", roundID),
			Metadata: map[string]any{
				"round_id":     roundID,
				"participants": len(participants),
			},
			RelatedID:   &roundID,
			RelatedType: &relatedType,
		}); err != nil {
			return err
		}
	}

	if err := uow.ArenaRepository().UpdateRound(ctx, round); err != nil {
		return fmt.Errorf("failed to close round: %w", err)
	}

	uow.EventBus().Publish(events.ArenaRoundEndedEvent{
		RoundID:      roundID,
		WinnerUserID: round.WinnerUserID,
		RewardAmount: round.RewardAmount,
		Participants: int64(len(participants)),
	})

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"roundID":      roundID,
		"participants": len(participants),
	}).Info("Arena round closed")

	return nil
}

func (s *arenaService) ensureOpenRound(ctx context.Context) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	round, err := uow.ArenaRepository().GetOpenRound(ctx)
	if err != nil {
		return fmt.Errorf("failed to get open round: %w", err)
	}
	if round != nil {
		return nil
	}

	if err := uow.ArenaRepository().CreateRound(ctx, s.newRound()); err != nil {
		return fmt.Errorf("failed to open round: %w", err)
	}

	return uow.Commit()
}

func (s *arenaService) newRound() *models.ArenaRound {
	now := s.now()
	return &models.ArenaRound{
		Status:       models.ArenaRoundStatusOpen,
		RewardAmount: s.reward,
		StartedAt:    now,
		EndsAt:       now.Add(s.roundLength),
	}
}
