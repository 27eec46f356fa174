package service

import (
	"context"
	"fmt"

	"arcade/events"

	log "github.com/sirupsen/logrus"
)

// RegisterGameStatsUpdater subscribes a best-effort aggregate updater to
// game played events. Stats run outside the play's transaction: a failed
// update is logged and tolerated, never failing the play.
func RegisterGameStatsUpdater(bus *events.Bus, uowFactory UnitOfWorkFactory) {
	bus.Subscribe(events.EventTypeGamePlayed, func(ctx context.Context, event events.Event) {
		played, ok := event.(events.GamePlayedEvent)
		if !ok {
			return
		}

		if err := incrementGameStats(ctx, uowFactory, played); err != nil {
			log.WithError(err).WithFields(log.Fields{
				"gameID":    played.GameID,
				"sessionID": played.SessionID,
			}).Warn("Failed to update game stats")
		}
	})
}

func incrementGameStats(ctx context.Context, uowFactory UnitOfWorkFactory, played events.GamePlayedEvent) error {
	uow := uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.GameRepository().IncrementStats(ctx, played.GameID, played.BetAmount, played.WinAmount); err != nil {
		return err
	}

	return uow.Commit()
}
