package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL string

	// Redis configuration (activity reward cooldowns)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// HTTP API configuration
	HTTPAddr       string
	AdminJWTSecret string

	// Economy configuration
	StartingBalance int64

	// Activity reward configuration
	ActivityRewardAmount int64
	ActivityCooldown     time.Duration
	VoiceRewardAmount    int64
	VoiceCooldown        time.Duration

	// Arena configuration
	ArenaRoundLength time.Duration
	ArenaReward      int64

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		HTTPAddr:       ":8080",
		AdminJWTSecret: os.Getenv("ADMIN_JWT_SECRET"),

		// Economy defaults
		StartingBalance: 1000,

		// Activity rewards: small drip with a cooldown per reward kind
		ActivityRewardAmount: 10,
		ActivityCooldown:     time.Minute,
		VoiceRewardAmount:    5,
		VoiceCooldown:        5 * time.Minute,

		// Arena rounds run on a 30 minute cadence
		ArenaRoundLength: 30 * time.Minute,
		ArenaReward:      250,

		Environment: os.Getenv("ENVIRONMENT"),
	}

	// Override defaults if environment variables are set
	if addr := os.Getenv("HTTP_ADDR"); addr != "" {
		config.HTTPAddr = addr
	}
	if balance := os.Getenv("STARTING_BALANCE"); balance != "" {
		if parsed, err := strconv.ParseInt(balance, 10, 64); err == nil {
			config.StartingBalance = parsed
		}
	}
	if amount := os.Getenv("ACTIVITY_REWARD_AMOUNT"); amount != "" {
		if parsed, err := strconv.ParseInt(amount, 10, 64); err == nil {
			config.ActivityRewardAmount = parsed
		}
	}
	if cooldown := os.Getenv("ACTIVITY_COOLDOWN_SECONDS"); cooldown != "" {
		if parsed, err := strconv.Atoi(cooldown); err == nil {
			config.ActivityCooldown = time.Duration(parsed) * time.Second
		}
	}
	if amount := os.Getenv("VOICE_REWARD_AMOUNT"); amount != "" {
		if parsed, err := strconv.ParseInt(amount, 10, 64); err == nil {
			config.VoiceRewardAmount = parsed
		}
	}
	if cooldown := os.Getenv("VOICE_COOLDOWN_SECONDS"); cooldown != "" {
		if parsed, err := strconv.Atoi(cooldown); err == nil {
			config.VoiceCooldown = time.Duration(parsed) * time.Second
		}
	}
	if reward := os.Getenv("ARENA_REWARD"); reward != "" {
		if parsed, err := strconv.ParseInt(reward, 10, 64); err == nil {
			config.ArenaReward = parsed
		}
	}
	if db := os.Getenv("REDIS_DB"); db != "" {
		if parsed, err := strconv.Atoi(db); err == nil {
			config.RedisDB = parsed
		}
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		if config.AdminJWTSecret == "" {
			return nil, fmt.Errorf("ADMIN_JWT_SECRET is required")
		}
	}

	return config, nil
}
