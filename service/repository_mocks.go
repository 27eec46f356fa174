package service

import (
	"context"
	"time"

	"arcade/events"
	"arcade/models"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByDiscordID(ctx context.Context, discordID int64) (*models.User, error) {
	args := m.Called(ctx, discordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetForUpdate(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, discordID *int64, username string) (*models.User, error) {
	args := m.Called(ctx, discordID, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) SetBalance(ctx context.Context, id int64, pointType models.PointType, newBalance int64) error {
	args := m.Called(ctx, id, pointType, newBalance)
	return args.Error(0)
}

func (m *MockUserRepository) GetLeaderboard(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LeaderboardEntry), args.Error(1)
}

// MockTransactionRepository is a mock implementation of TransactionRepository
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Record(ctx context.Context, txn *models.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockTransactionRepository) GetByUser(ctx context.Context, userID int64, pointType *models.PointType, limit int) ([]*models.Transaction, error) {
	args := m.Called(ctx, userID, pointType, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) SumByUser(ctx context.Context, userID int64, pointType models.PointType) (int64, error) {
	args := m.Called(ctx, userID, pointType)
	return args.Get(0).(int64), args.Error(1)
}

// MockItemRepository is a mock implementation of ItemRepository
type MockItemRepository struct {
	mock.Mock
}

func (m *MockItemRepository) GetByID(ctx context.Context, id int64) (*models.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Item), args.Error(1)
}

func (m *MockItemRepository) GetForUpdate(ctx context.Context, id int64) (*models.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Item), args.Error(1)
}

func (m *MockItemRepository) GetActive(ctx context.Context) ([]*models.Item, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Item), args.Error(1)
}

func (m *MockItemRepository) Create(ctx context.Context, item *models.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockItemRepository) DecrementStock(ctx context.Context, id int64, quantity int64) error {
	args := m.Called(ctx, id, quantity)
	return args.Error(0)
}

func (m *MockItemRepository) GetLootboxRewards(ctx context.Context, itemID int64) ([]*models.LootboxReward, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LootboxReward), args.Error(1)
}

func (m *MockItemRepository) AddLootboxReward(ctx context.Context, reward *models.LootboxReward) error {
	args := m.Called(ctx, reward)
	return args.Error(0)
}

// MockPurchaseRepository is a mock implementation of PurchaseRepository
type MockPurchaseRepository struct {
	mock.Mock
}

func (m *MockPurchaseRepository) Create(ctx context.Context, purchase *models.Purchase) error {
	args := m.Called(ctx, purchase)
	return args.Error(0)
}

func (m *MockPurchaseRepository) GetByID(ctx context.Context, id int64) (*models.Purchase, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Purchase), args.Error(1)
}

func (m *MockPurchaseRepository) GetForUpdate(ctx context.Context, id int64) (*models.Purchase, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Purchase), args.Error(1)
}

func (m *MockPurchaseRepository) UpdateStatus(ctx context.Context, id int64, status models.PurchaseStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockPurchaseRepository) GetByUser(ctx context.Context, userID int64, limit int) ([]*models.Purchase, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Purchase), args.Error(1)
}

func (m *MockPurchaseRepository) CreateOpening(ctx context.Context, opening *models.LootboxOpening) error {
	args := m.Called(ctx, opening)
	return args.Error(0)
}

func (m *MockPurchaseRepository) GetOpeningByPurchase(ctx context.Context, purchaseID int64) (*models.LootboxOpening, error) {
	args := m.Called(ctx, purchaseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LootboxOpening), args.Error(1)
}

// MockGameRepository is a mock implementation of GameRepository
type MockGameRepository struct {
	mock.Mock
}

func (m *MockGameRepository) GetByID(ctx context.Context, id int64) (*models.Game, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Game), args.Error(1)
}

func (m *MockGameRepository) GetActive(ctx context.Context) ([]*models.Game, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Game), args.Error(1)
}

func (m *MockGameRepository) Create(ctx context.Context, game *models.Game) error {
	args := m.Called(ctx, game)
	return args.Error(0)
}

func (m *MockGameRepository) CreateSession(ctx context.Context, session *models.GameSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockGameRepository) GetSessionsByUser(ctx context.Context, userID int64, limit int) ([]*models.GameSession, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.GameSession), args.Error(1)
}

func (m *MockGameRepository) GetStats(ctx context.Context, gameID int64) (*models.GameStats, error) {
	args := m.Called(ctx, gameID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GameStats), args.Error(1)
}

func (m *MockGameRepository) IncrementStats(ctx context.Context, gameID int64, wagered, won int64) error {
	args := m.Called(ctx, gameID, wagered, won)
	return args.Error(0)
}

// MockRaffleRepository is a mock implementation of RaffleRepository
type MockRaffleRepository struct {
	mock.Mock
}

func (m *MockRaffleRepository) Create(ctx context.Context, raffle *models.Raffle) error {
	args := m.Called(ctx, raffle)
	return args.Error(0)
}

func (m *MockRaffleRepository) GetByID(ctx context.Context, id int64) (*models.Raffle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Raffle), args.Error(1)
}

func (m *MockRaffleRepository) GetForUpdate(ctx context.Context, id int64) (*models.Raffle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Raffle), args.Error(1)
}

func (m *MockRaffleRepository) Update(ctx context.Context, raffle *models.Raffle) error {
	args := m.Called(ctx, raffle)
	return args.Error(0)
}

func (m *MockRaffleRepository) GetActive(ctx context.Context) ([]*models.Raffle, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Raffle), args.Error(1)
}

func (m *MockRaffleRepository) GetExpiredActive(ctx context.Context, now time.Time) ([]*models.Raffle, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Raffle), args.Error(1)
}

func (m *MockRaffleRepository) CreateEntry(ctx context.Context, entry *models.RaffleEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockRaffleRepository) GetEntries(ctx context.Context, raffleID int64) ([]*models.RaffleEntry, error) {
	args := m.Called(ctx, raffleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.RaffleEntry), args.Error(1)
}

func (m *MockRaffleRepository) CountUserTickets(ctx context.Context, raffleID, userID int64) (int64, error) {
	args := m.Called(ctx, raffleID, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRaffleRepository) GetUnrefundedEntries(ctx context.Context, raffleID int64) ([]*models.RaffleEntry, error) {
	args := m.Called(ctx, raffleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.RaffleEntry), args.Error(1)
}

func (m *MockRaffleRepository) MarkEntryRefunded(ctx context.Context, entryID int64) error {
	args := m.Called(ctx, entryID)
	return args.Error(0)
}

// MockArenaRepository is a mock implementation of ArenaRepository
type MockArenaRepository struct {
	mock.Mock
}

func (m *MockArenaRepository) CreateRound(ctx context.Context, round *models.ArenaRound) error {
	args := m.Called(ctx, round)
	return args.Error(0)
}

func (m *MockArenaRepository) GetOpenRound(ctx context.Context) (*models.ArenaRound, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ArenaRound), args.Error(1)
}

func (m *MockArenaRepository) GetRoundForUpdate(ctx context.Context, id int64) (*models.ArenaRound, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ArenaRound), args.Error(1)
}

func (m *MockArenaRepository) UpdateRound(ctx context.Context, round *models.ArenaRound) error {
	args := m.Called(ctx, round)
	return args.Error(0)
}

func (m *MockArenaRepository) AddParticipant(ctx context.Context, roundID, userID int64) error {
	args := m.Called(ctx, roundID, userID)
	return args.Error(0)
}

func (m *MockArenaRepository) GetParticipants(ctx context.Context, roundID int64) ([]*models.ArenaParticipant, error) {
	args := m.Called(ctx, roundID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ArenaParticipant), args.Error(1)
}

func (m *MockArenaRepository) GetExpiredOpenRounds(ctx context.Context, now time.Time) ([]*models.ArenaRound, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ArenaRound), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// MockCooldownStore is a mock implementation of CooldownStore
type MockCooldownStore struct {
	mock.Mock
}

func (m *MockCooldownStore) TryAcquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

// MockUnitOfWork is a mock implementation of UnitOfWork. Tests assemble one
// with SetRepositories and hand it out through a MockUnitOfWorkFactory.
type MockUnitOfWork struct {
	mock.Mock
	userRepo        UserRepository
	transactionRepo TransactionRepository
	itemRepo        ItemRepository
	purchaseRepo    PurchaseRepository
	gameRepo        GameRepository
	raffleRepo      RaffleRepository
	arenaRepo       ArenaRepository
	eventBus        EventPublisher
}

// SetRepositories wires the mock repositories returned by the getters.
// Any argument may be nil if the code under test never asks for it.
func (m *MockUnitOfWork) SetRepositories(
	userRepo UserRepository,
	transactionRepo TransactionRepository,
	itemRepo ItemRepository,
	purchaseRepo PurchaseRepository,
	gameRepo GameRepository,
	raffleRepo RaffleRepository,
	arenaRepo ArenaRepository,
	eventBus EventPublisher,
) {
	m.userRepo = userRepo
	m.transactionRepo = transactionRepo
	m.itemRepo = itemRepo
	m.purchaseRepo = purchaseRepo
	m.gameRepo = gameRepo
	m.raffleRepo = raffleRepo
	m.arenaRepo = arenaRepo
	m.eventBus = eventBus
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) UserRepository() UserRepository {
	return m.userRepo
}

func (m *MockUnitOfWork) TransactionRepository() TransactionRepository {
	return m.transactionRepo
}

func (m *MockUnitOfWork) ItemRepository() ItemRepository {
	return m.itemRepo
}

func (m *MockUnitOfWork) PurchaseRepository() PurchaseRepository {
	return m.purchaseRepo
}

func (m *MockUnitOfWork) GameRepository() GameRepository {
	return m.gameRepo
}

func (m *MockUnitOfWork) RaffleRepository() RaffleRepository {
	return m.raffleRepo
}

func (m *MockUnitOfWork) ArenaRepository() ArenaRepository {
	return m.arenaRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	return m.eventBus
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}

// MockUserService is a mock implementation of UserService
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) GetOrCreateUser(ctx context.Context, discordID int64, username string) (*models.User, error) {
	args := m.Called(ctx, discordID, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) GetTransactionHistory(ctx context.Context, userID int64, pointType *models.PointType, limit int) ([]*models.Transaction, error) {
	args := m.Called(ctx, userID, pointType, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Transaction), args.Error(1)
}

func (m *MockUserService) AdjustBalance(ctx context.Context, userID int64, pointType models.PointType, amount int64, reason string) (*models.Transaction, error) {
	args := m.Called(ctx, userID, pointType, amount, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *MockUserService) GetLeaderboard(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LeaderboardEntry), args.Error(1)
}
