package service

import (
	"context"
	"time"

	"arcade/events"
	"arcade/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// GetByID retrieves a user by their internal ID
	GetByID(ctx context.Context, id int64) (*models.User, error)

	// GetByDiscordID retrieves a user by their Discord ID
	GetByDiscordID(ctx context.Context, discordID int64) (*models.User, error)

	// GetForUpdate retrieves a user with a row lock; only valid inside a unit of work
	GetForUpdate(ctx context.Context, id int64) (*models.User, error)

	// Create creates a new user; discordID may be nil for web-only users
	Create(ctx context.Context, discordID *int64, username string) (*models.User, error)

	// SetBalance writes a user's balance for one point type
	SetBalance(ctx context.Context, id int64, pointType models.PointType, newBalance int64) error

	// GetLeaderboard returns the top users ordered by redeemable balance
	GetLeaderboard(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error)
}

// TransactionRepository defines the interface for the append-only points ledger
type TransactionRepository interface {
	// Record creates a new immutable ledger entry
	Record(ctx context.Context, txn *models.Transaction) error

	// GetByUser returns ledger entries for a user, newest first.
	// pointType may be nil to return both point types.
	GetByUser(ctx context.Context, userID int64, pointType *models.PointType, limit int) ([]*models.Transaction, error)

	// SumByUser returns the sum of all entry amounts for a user's point type
	SumByUser(ctx context.Context, userID int64, pointType models.PointType) (int64, error)
}

// ItemRepository defines the interface for shop item data access
type ItemRepository interface {
	// GetByID retrieves an item by ID
	GetByID(ctx context.Context, id int64) (*models.Item, error)

	// GetForUpdate retrieves an item with a row lock; only valid inside a unit of work
	GetForUpdate(ctx context.Context, id int64) (*models.Item, error)

	// GetActive returns all active items
	GetActive(ctx context.Context) ([]*models.Item, error)

	// Create creates a new item
	Create(ctx context.Context, item *models.Item) error

	// DecrementStock decrements stock, failing if fewer than quantity remain
	DecrementStock(ctx context.Context, id int64, quantity int64) error

	// GetLootboxRewards returns the weighted reward table for a lootbox item
	GetLootboxRewards(ctx context.Context, itemID int64) ([]*models.LootboxReward, error)

	// AddLootboxReward adds a reward entry to a lootbox item
	AddLootboxReward(ctx context.Context, reward *models.LootboxReward) error
}

// PurchaseRepository defines the interface for purchase data access
type PurchaseRepository interface {
	// Create creates a new purchase record
	Create(ctx context.Context, purchase *models.Purchase) error

	// GetByID retrieves a purchase by ID
	GetByID(ctx context.Context, id int64) (*models.Purchase, error)

	// GetForUpdate retrieves a purchase with a row lock; only valid inside a unit of work
	GetForUpdate(ctx context.Context, id int64) (*models.Purchase, error)

	// UpdateStatus sets a purchase's status
	UpdateStatus(ctx context.Context, id int64, status models.PurchaseStatus) error

	// GetByUser returns purchases for a user, newest first
	GetByUser(ctx context.Context, userID int64, limit int) ([]*models.Purchase, error)

	// CreateOpening records a lootbox opening; fails if the purchase was already opened
	CreateOpening(ctx context.Context, opening *models.LootboxOpening) error

	// GetOpeningByPurchase returns the opening for a purchase, or nil
	GetOpeningByPurchase(ctx context.Context, purchaseID int64) (*models.LootboxOpening, error)
}

// GameRepository defines the interface for game data access
type GameRepository interface {
	// GetByID retrieves a game by ID
	GetByID(ctx context.Context, id int64) (*models.Game, error)

	// GetActive returns all active games
	GetActive(ctx context.Context) ([]*models.Game, error)

	// Create creates a new game
	Create(ctx context.Context, game *models.Game) error

	// CreateSession creates a new game session record
	CreateSession(ctx context.Context, session *models.GameSession) error

	// GetSessionsByUser returns sessions for a user, newest first
	GetSessionsByUser(ctx context.Context, userID int64, limit int) ([]*models.GameSession, error)

	// GetStats returns aggregate stats for a game, or nil if none recorded yet
	GetStats(ctx context.Context, gameID int64) (*models.GameStats, error)

	// IncrementStats upserts aggregate counters for a game
	IncrementStats(ctx context.Context, gameID int64, wagered, won int64) error
}

// RaffleRepository defines the interface for raffle data access
type RaffleRepository interface {
	// Create creates a new raffle in draft status
	Create(ctx context.Context, raffle *models.Raffle) error

	// GetByID retrieves a raffle by ID
	GetByID(ctx context.Context, id int64) (*models.Raffle, error)

	// GetForUpdate retrieves a raffle with a row lock; only valid inside a unit of work
	GetForUpdate(ctx context.Context, id int64) (*models.Raffle, error)

	// Update writes a raffle's mutable fields
	Update(ctx context.Context, raffle *models.Raffle) error

	// GetActive returns all active raffles
	GetActive(ctx context.Context) ([]*models.Raffle, error)

	// GetExpiredActive returns active raffles whose end date has passed
	GetExpiredActive(ctx context.Context, now time.Time) ([]*models.Raffle, error)

	// CreateEntry creates a new raffle entry
	CreateEntry(ctx context.Context, entry *models.RaffleEntry) error

	// GetEntries returns all entries for a raffle ordered by ticket number
	GetEntries(ctx context.Context, raffleID int64) ([]*models.RaffleEntry, error)

	// CountUserTickets returns how many tickets a user holds in a raffle
	CountUserTickets(ctx context.Context, raffleID, userID int64) (int64, error)

	// GetUnrefundedEntries returns entries not yet refunded, for cancellation
	GetUnrefundedEntries(ctx context.Context, raffleID int64) ([]*models.RaffleEntry, error)

	// MarkEntryRefunded flags an entry as refunded
	MarkEntryRefunded(ctx context.Context, entryID int64) error
}

// ArenaRepository defines the interface for arena round data access
type ArenaRepository interface {
	// CreateRound creates a new open round
	CreateRound(ctx context.Context, round *models.ArenaRound) error

	// GetOpenRound returns the current open round, or nil
	GetOpenRound(ctx context.Context) (*models.ArenaRound, error)

	// GetRoundForUpdate retrieves a round with a row lock; only valid inside a unit of work
	GetRoundForUpdate(ctx context.Context, id int64) (*models.ArenaRound, error)

	// UpdateRound writes a round's mutable fields
	UpdateRound(ctx context.Context, round *models.ArenaRound) error

	// AddParticipant joins a user to a round; fails on duplicate join
	AddParticipant(ctx context.Context, roundID, userID int64) error

	// GetParticipants returns all participants of a round in join order
	GetParticipants(ctx context.Context, roundID int64) ([]*models.ArenaParticipant, error)

	// GetExpiredOpenRounds returns open rounds past their end time
	GetExpiredOpenRounds(ctx context.Context, now time.Time) ([]*models.ArenaRound, error)
}

// UserService defines the interface for user operations
type UserService interface {
	// GetOrCreateUser retrieves a user by Discord ID or creates one with the starting balance
	GetOrCreateUser(ctx context.Context, discordID int64, username string) (*models.User, error)

	// GetUser retrieves a user by internal ID
	GetUser(ctx context.Context, userID int64) (*models.User, error)

	// GetTransactionHistory returns ledger entries for a user
	GetTransactionHistory(ctx context.Context, userID int64, pointType *models.PointType, limit int) ([]*models.Transaction, error)

	// AdjustBalance applies an admin adjustment to either point type
	AdjustBalance(ctx context.Context, userID int64, pointType models.PointType, amount int64, reason string) (*models.Transaction, error)

	// GetLeaderboard returns the top users by redeemable balance
	GetLeaderboard(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error)
}

// ShopService defines the interface for shop operations
type ShopService interface {
	// ListItems returns all active shop items
	ListItems(ctx context.Context) ([]*models.Item, error)

	// CreateItem creates a new shop item
	CreateItem(ctx context.Context, item *models.Item) error

	// AddLootboxReward adds a weighted reward to a lootbox item
	AddLootboxReward(ctx context.Context, reward *models.LootboxReward) error

	// PurchaseItem buys quantity of an item, debiting the total price
	PurchaseItem(ctx context.Context, itemID, userID, quantity int64) (*models.Purchase, error)

	// OpenLootbox resolves the reward of a completed lootbox purchase
	OpenLootbox(ctx context.Context, purchaseID, userID int64) (*models.OpeningResult, error)
}

// GameService defines the interface for game operations
type GameService interface {
	// CreateGame creates a new game
	CreateGame(ctx context.Context, game *models.Game) error

	// GetGame retrieves a game by ID
	GetGame(ctx context.Context, gameID int64) (*models.Game, error)

	// ListGames returns all active games
	ListGames(ctx context.Context) ([]*models.Game, error)

	// Play plays one Plinko round for the given bet and risk level
	Play(ctx context.Context, gameID, userID, betAmount int64, risk models.RiskLevel) (*models.PlayResult, error)

	// GetStats returns best-effort aggregate stats for a game
	GetStats(ctx context.Context, gameID int64) (*models.GameStats, error)
}

// RaffleService defines the interface for raffle operations
type RaffleService interface {
	// CreateRaffle creates a raffle in draft status
	CreateRaffle(ctx context.Context, raffle *models.Raffle) error

	// ActivateRaffle transitions a draft raffle to active
	ActivateRaffle(ctx context.Context, raffleID int64) error

	// GetRaffle retrieves a raffle by ID
	GetRaffle(ctx context.Context, raffleID int64) (*models.Raffle, error)

	// ListActive returns all active raffles
	ListActive(ctx context.Context) ([]*models.Raffle, error)

	// PurchaseEntries buys numberOfEntries tickets for a user
	PurchaseEntries(ctx context.Context, raffleID, userID, numberOfEntries int64) (*models.EntryPurchaseResult, error)

	// DrawWinner ends a raffle past its end date and records the winner
	DrawWinner(ctx context.Context, raffleID int64) (*models.RaffleDrawResult, error)

	// CancelRaffle cancels a raffle and refunds all entries; safe to retry
	CancelRaffle(ctx context.Context, raffleID int64) error

	// CloseExpired draws winners for all active raffles past their end date
	CloseExpired(ctx context.Context) error
}

// ArenaService defines the interface for arena round operations
type ArenaService interface {
	// JoinCurrentRound joins the user to the open round, opening one if needed
	JoinCurrentRound(ctx context.Context, userID int64) (*models.ArenaRound, error)

	// RotateRounds closes expired rounds, pays the winners, and opens the next round
	RotateRounds(ctx context.Context) error
}

// ActivityKind distinguishes Discord activity reward sources
type ActivityKind string

const (
	ActivityKindMessage ActivityKind = "message"
	ActivityKindVoice   ActivityKind = "voice"
)

// ActivityService defines the interface for Discord activity rewards
type ActivityService interface {
	// RewardActivity credits a user for off-platform activity, subject to a
	// per-user-per-kind cooldown. Returns nil transaction when on cooldown.
	RewardActivity(ctx context.Context, discordID int64, username string, kind ActivityKind) (*models.Transaction, error)
}

// CooldownStore is a keyed TTL store gating repeatable rewards
type CooldownStore interface {
	// TryAcquire sets the key if absent and returns true; returns false if
	// the key is still live
	TryAcquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	UserRepository() UserRepository
	TransactionRepository() TransactionRepository
	ItemRepository() ItemRepository
	PurchaseRepository() PurchaseRepository
	GameRepository() GameRepository
	RaffleRepository() RaffleRepository
	ArenaRepository() ArenaRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	// Create creates a new UnitOfWork instance
	Create() UnitOfWork
}
