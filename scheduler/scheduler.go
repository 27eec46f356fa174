package scheduler

import (
	"context"

	"arcade/service"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// Scheduler drives the timer-based economy jobs: closing expired raffles
// and rotating arena rounds.
type Scheduler struct {
	cron          *cron.Cron
	raffleService service.RaffleService
	arenaService  service.ArenaService
}

// New creates a scheduler wrapping the given services
func New(raffleService service.RaffleService, arenaService service.ArenaService) *Scheduler {
	return &Scheduler{
		cron:          cron.New(),
		raffleService: raffleService,
		arenaService:  arenaService,
	}
}

// Start registers the jobs and starts the cron loop. Jobs run until Stop.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc("*/5 * * * *", func() {
		if err := s.raffleService.CloseExpired(ctx); err != nil {
			log.WithError(err).Error("Failed to close expired raffles")
		}
	}); err != nil {
		return err
	}

	if _, err := s.cron.AddFunc("* * * * *", func() {
		if err := s.arenaService.RotateRounds(ctx); err != nil {
			log.WithError(err).Error("Failed to rotate arena rounds")
		}
	}); err != nil {
		return err
	}

	s.cron.Start()
	log.Info("Scheduler started")
	return nil
}

// Stop halts the cron loop, waiting for running jobs to finish
func (s *Scheduler) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	log.Info("Scheduler stopped")
}
