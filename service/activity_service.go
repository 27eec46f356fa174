package service

import (
	"context"
	"fmt"
	"time"

	"arcade/models"

	log "github.com/sirupsen/logrus"
)

// ActivityRewardConfig carries the per-kind reward amounts and cooldowns
type ActivityRewardConfig struct {
	MessageAmount   int64
	MessageCooldown time.Duration
	VoiceAmount     int64
	VoiceCooldown   time.Duration
}

type activityService struct {
	uowFactory  UnitOfWorkFactory
	userService UserService
	cooldowns   CooldownStore
	config      ActivityRewardConfig
}

// NewActivityService creates a new activity reward service
func NewActivityService(uowFactory UnitOfWorkFactory, userService UserService, cooldowns CooldownStore, config ActivityRewardConfig) ActivityService {
	return &activityService{
		uowFactory:  uowFactory,
		userService: userService,
		cooldowns:   cooldowns,
		config:      config,
	}
}

// RewardActivity credits a user for Discord activity. The cooldown key is
// acquired before any money moves; if the store is unreachable the reward
// is denied rather than risk unbounded payouts. Returns a nil transaction
// when the user is on cooldown.
func (s *activityService) RewardActivity(ctx context.Context, discordID int64, username string, kind ActivityKind) (*models.Transaction, error) {
	amount, cooldown, err := s.rewardFor(kind)
	if err != nil {
		return nil, err
	}

	user, err := s.userService.GetOrCreateUser(ctx, discordID, username)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}

	key := fmt.Sprintf("activity:%s:%d", kind, user.ID)
	acquired, err := s.cooldowns.TryAcquire(ctx, key, cooldown)
	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"userID": user.ID,
			"kind":   kind,
		}).Warn("Cooldown store unavailable, denying activity reward")
		return nil, nil
	}
	if !acquired {
		return nil, nil
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	description := fmt.Sprintf("%s activity reward", kind)
	metadata := map[string]any{"kind": string(kind)}

	txn, err := ApplyBalanceChange(ctx, uow, BalanceChange{
		UserID:      user.ID,
		PointType:   models.PointTypeRedeemable,
		Amount:      amount,
		Type:        models.TransactionTypeActivityReward,
		Description: description,
		Metadata:    metadata,
	})
	if err != nil {
		return nil, err
	}

	// Soul-bound points track lifetime activity and mirror the credit
	if _, err := ApplyBalanceChange(ctx, uow, BalanceChange{
		UserID:      user.ID,
		PointType:   models.PointTypeSoulBound,
		Amount:      amount,
		Type:        models.TransactionTypeActivityReward,
		Description: description,
		Metadata:    metadata,
	}); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return txn, nil
}

func (s *activityService) rewardFor(kind ActivityKind) (int64, time.Duration, error) {
	switch kind {
	case ActivityKindMessage:
		return s.config.MessageAmount, s.config.MessageCooldown, nil
	case ActivityKindVoice:
		return s.config.VoiceAmount, s.config.VoiceCooldown, nil
	default:
		return 0, 0, fmt.Errorf("unknown activity kind %q: %w", kind, ErrOutOfRange)
	}
}
