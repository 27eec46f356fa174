package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"arcade/api"
	"arcade/config"
	"arcade/database"
	"arcade/events"
	"arcade/repository"
	"arcade/scheduler"
	"arcade/service"

	log "github.com/sirupsen/logrus"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Info("Starting arcade server...")

	// Load configuration
	cfg := config.Get()

	// Initialize database connection
	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Initialize Redis for cooldowns
	log.Info("Connecting to Redis...")
	redisClient, err := database.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	// Initialize event bus
	eventBus := events.NewBus()

	// Initialize unit of work factory
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	// Initialize services
	log.Info("Initializing services...")
	userService := service.NewUserService(uowFactory, cfg.StartingBalance)
	shopService := service.NewShopService(uowFactory)
	gameService := service.NewGameService(uowFactory)
	raffleService := service.NewRaffleService(uowFactory)
	arenaService := service.NewArenaService(uowFactory, cfg.ArenaRoundLength, cfg.ArenaReward)

	cooldowns := repository.NewRedisCooldownStore(redisClient)
	activityService := service.NewActivityService(uowFactory, userService, cooldowns, service.ActivityRewardConfig{
		MessageAmount:   cfg.ActivityRewardAmount,
		MessageCooldown: cfg.ActivityCooldown,
		VoiceAmount:     cfg.VoiceRewardAmount,
		VoiceCooldown:   cfg.VoiceCooldown,
	})

	// Game stats update after plays commit, outside the play transaction
	service.RegisterGameStatsUpdater(eventBus, uowFactory)

	// Initialize HTTP API
	server := api.NewServer(userService, shopService, gameService, raffleService, arenaService, activityService, cfg.AdminJWTSecret)
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Start background jobs
	sched := scheduler.New(raffleService, arenaService)
	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	log.WithField("environment", cfg.Environment).Info("Server is running")

	select {
	case err := <-serverErr:
		return fmt.Errorf("HTTP server error: %w", err)
	case <-ctx.Done():
	}

	// Cleanup resources
	log.Info("Shutting down...")
	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("HTTP server shutdown error")
	}

	if err := redisClient.Close(); err != nil {
		log.WithError(err).Warn("Error closing Redis connection")
	}

	log.Info("Closing database connection...")
	db.Close()

	log.Info("Shutdown completed")
	return nil
}
