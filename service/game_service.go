package service

import (
	"context"
	"fmt"
	"math"

	"arcade/events"
	"arcade/models"
)

// plinkoMultipliers is the payout per landing slot; the board is symmetric
// with the losing slot in the middle. Rows is one less than the slot count
// so a centered ball can reach every slot.
var plinkoMultipliers = []float64{16, 6, 2, 0.7, 0.2, 0, 0.2, 0.7, 2, 6, 16}

type gameService struct {
	uowFactory UnitOfWorkFactory
	rng        Rand
}

// NewGameService creates a new game service
func NewGameService(uowFactory UnitOfWorkFactory) GameService {
	return NewGameServiceWithRand(uowFactory, newLockedRand())
}

// NewGameServiceWithRand creates a game service with an explicit random
// source, used by tests to force ball paths
func NewGameServiceWithRand(uowFactory UnitOfWorkFactory, rng Rand) GameService {
	return &gameService{
		uowFactory: uowFactory,
		rng:        rng,
	}
}

// CreateGame creates a new game
func (s *gameService) CreateGame(ctx context.Context, game *models.Game) error {
	if game.MinBet <= 0 || game.MaxBet < game.MinBet {
		return fmt.Errorf("bet limits must satisfy 0 < min <= max: %w", ErrOutOfRange)
	}
	if game.Type == "" {
		game.Type = models.GameTypePlinko
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.GameRepository().Create(ctx, game); err != nil {
		return fmt.Errorf("failed to create game: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetGame retrieves a game by ID
func (s *gameService) GetGame(ctx context.Context, gameID int64) (*models.Game, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	game, err := uow.GameRepository().GetByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	if game == nil {
		return nil, fmt.Errorf("game %d: %w", gameID, ErrNotFound)
	}

	return game, nil
}

// ListGames returns all active games
func (s *gameService) ListGames(ctx context.Context) ([]*models.Game, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	games, err := uow.GameRepository().GetActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}

	return games, nil
}

// Play plays one Plinko round. The session record, the wager debit and any
// payout credit share one transaction keyed by the session ID; aggregate
// stats are updated after commit by an event subscriber and may lag.
func (s *gameService) Play(ctx context.Context, gameID, userID, betAmount int64, risk models.RiskLevel) (*models.PlayResult, error) {
	switch risk {
	case models.RiskLevelLow, models.RiskLevelMedium, models.RiskLevelHigh:
	case "":
		risk = models.RiskLevelMedium
	default:
		return nil, fmt.Errorf("unknown risk level %q: %w", risk, ErrOutOfRange)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	game, err := uow.GameRepository().GetByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	if game == nil {
		return nil, fmt.Errorf("game %d: %w", gameID, ErrNotFound)
	}
	if !game.Active {
		return nil, fmt.Errorf("game %q is not active: %w", game.Name, ErrInvalidState)
	}
	if betAmount < game.MinBet || betAmount > game.MaxBet {
		return nil, fmt.Errorf("bet %d outside limits [%d, %d]: %w", betAmount, game.MinBet, game.MaxBet, ErrOutOfRange)
	}

	slotCount := len(plinkoMultipliers)
	slot := PlinkoPath(s.rng, slotCount-1, slotCount)
	multiplier := AdjustMultiplier(plinkoMultipliers[slot], risk)
	winAmount := int64(math.Floor(float64(betAmount) * multiplier))

	result := models.GameResultLose
	if winAmount > 0 {
		result = models.GameResultWin
	}

	session := &models.GameSession{
		GameID:     gameID,
		UserID:     userID,
		BetAmount:  betAmount,
		RiskLevel:  risk,
		Multiplier: multiplier,
		WinAmount:  winAmount,
		Result:     result,
	}
	if err := uow.GameRepository().CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create game session: %w", err)
	}

	relatedType := models.RelatedTypeGameSession

	// The wager always debits; the payout is a separate conditional credit
	// sharing the session reference
	debit, err := ApplyBalanceChange(ctx, uow, BalanceChange{
		UserID:      userID,
		PointType:   models.PointTypeRedeemable,
		Amount:      -betAmount,
		Type:        models.TransactionTypeGameWager,
		Description: fmt.Sprintf("%s wager", game.Name),
		Metadata: map[string]any{
			"game_id":    gameID,
			"risk_level": risk,
		},
		RelatedID:   &session.ID,
		RelatedType: &relatedType,
	})
	if err != nil {
		return nil, err
	}

	newBalance := debit.BalanceAfter
	if winAmount > 0 {
		credit, err := ApplyBalanceChange(ctx, uow, BalanceChange{
			UserID:      userID,
			PointType:   models.PointTypeRedeemable,
			Amount:      winAmount,
			Type:        models.TransactionTypeGamePayout,
			Description: fmt.Sprintf("%s payout (x%.2f)", game.Name, multiplier),
			Metadata: map[string]any{
				"game_id":    gameID,
				"multiplier": multiplier,
			},
			RelatedID:   &session.ID,
			RelatedType: &relatedType,
		})
		if err != nil {
			return nil, err
		}
		newBalance = credit.BalanceAfter
	}

	uow.EventBus().Publish(events.GamePlayedEvent{
		SessionID: session.ID,
		GameID:    gameID,
		UserID:    userID,
		BetAmount: betAmount,
		WinAmount: winAmount,
		Result:    result,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.PlayResult{
		SessionID:  session.ID,
		Result:     result,
		Multiplier: multiplier,
		WinAmount:  winAmount,
		NewBalance: newBalance,
	}, nil
}

// GetStats returns best-effort aggregate stats for a game
func (s *gameService) GetStats(ctx context.Context, gameID int64) (*models.GameStats, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	stats, err := uow.GameRepository().GetStats(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game stats: %w", err)
	}
	if stats == nil {
		stats = &models.GameStats{GameID: gameID}
	}

	return stats, nil
}
