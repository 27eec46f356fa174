package service

import (
	"context"
	"errors"
	"fmt"

	"arcade/events"
	"arcade/models"
)

type userService struct {
	uowFactory      UnitOfWorkFactory
	startingBalance int64
}

// NewUserService creates a new user service. New users are seeded with
// startingBalance redeemable points.
func NewUserService(uowFactory UnitOfWorkFactory, startingBalance int64) UserService {
	return &userService{
		uowFactory:      uowFactory,
		startingBalance: startingBalance,
	}
}

// GetOrCreateUser retrieves a user by Discord ID or creates one with the
// starting balance. Creation is lazy: the first contact from any surface
// (bot event, API call) materializes the user record.
func (s *userService) GetOrCreateUser(ctx context.Context, discordID int64, username string) (*models.User, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	user, err := uow.UserRepository().GetByDiscordID(ctx, discordID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if user != nil {
		return user, nil
	}

	// Database unique constraint on discord_id prevents duplicate users
	user, err = uow.UserRepository().Create(ctx, &discordID, username)
	if err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			// Lost a concurrent first-contact race; the winner's row is
			// committed by the time the blocked insert errors, so read it
			uow.Rollback()
			return s.getExistingUser(ctx, discordID)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if s.startingBalance > 0 {
		txn, err := ApplyBalanceChange(ctx, uow, BalanceChange{
			UserID:      user.ID,
			PointType:   models.PointTypeRedeemable,
			Amount:      s.startingBalance,
			Type:        models.TransactionTypeInitial,
			Description: "starting balance",
			Metadata: map[string]any{
				"username": username,
			},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to record initial balance: %w", err)
		}
		user.Redeemable = txn.BalanceAfter
	}

	uow.EventBus().Publish(events.UserCreatedEvent{
		UserID:         user.ID,
		Username:       username,
		InitialBalance: s.startingBalance,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return user, nil
}

// getExistingUser re-reads a user created by a concurrent GetOrCreateUser
func (s *userService) getExistingUser(ctx context.Context, discordID int64) (*models.User, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByDiscordID(ctx, discordID)
	if err != nil {
		return nil, fmt.Errorf("failed to get existing user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user with discord ID %d: %w", discordID, ErrNotFound)
	}

	return user, nil
}

// GetUser retrieves a user by internal ID
func (s *userService) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %d: %w", userID, ErrNotFound)
	}

	return user, nil
}

// GetTransactionHistory returns ledger entries for a user
func (s *userService) GetTransactionHistory(ctx context.Context, userID int64, pointType *models.PointType, limit int) ([]*models.Transaction, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	txns, err := uow.TransactionRepository().GetByUser(ctx, userID, pointType, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction history: %w", err)
	}

	return txns, nil
}

// AdjustBalance applies an admin adjustment to either point type
func (s *userService) AdjustBalance(ctx context.Context, userID int64, pointType models.PointType, amount int64, reason string) (*models.Transaction, error) {
	if amount == 0 {
		return nil, fmt.Errorf("adjustment amount must be non-zero: %w", ErrOutOfRange)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	txn, err := ApplyBalanceChange(ctx, uow, BalanceChange{
		UserID:      userID,
		PointType:   pointType,
		Amount:      amount,
		Type:        models.TransactionTypeAdminAdjustment,
		Description: reason,
	})
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return txn, nil
}

// GetLeaderboard returns the top users by redeemable balance
func (s *userService) GetLeaderboard(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	entries, err := uow.UserRepository().GetLeaderboard(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}

	return entries, nil
}
