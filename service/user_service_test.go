package service

import (
	"context"
	"fmt"
	"testing"

	"arcade/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUserService_GetOrCreateUser_CreatesWithStartingBalance(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockTxnRepo := new(MockTransactionRepository)
	mockBus := new(MockEventPublisher)
	mockUoW.SetRepositories(mockUserRepo, mockTxnRepo, nil, nil, nil, nil, nil, mockBus)

	service := NewUserService(mockFactory, 1000)

	discordID := int64(123456)
	created := &models.User{ID: 1, DiscordID: &discordID, Username: "testuser"}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetByDiscordID", ctx, discordID).Return(nil, nil)
	mockUserRepo.On("Create", ctx, mock.MatchedBy(func(id *int64) bool {
		return id != nil && *id == discordID
	}), "testuser").Return(created, nil)

	mockUserRepo.On("GetForUpdate", ctx, int64(1)).Return(created, nil)
	mockUserRepo.On("SetBalance", ctx, int64(1), models.PointTypeRedeemable, int64(1000)).Return(nil)
	mockTxnRepo.On("Record", ctx, mock.MatchedBy(func(txn *models.Transaction) bool {
		return txn.Type == models.TransactionTypeInitial && txn.Amount == 1000 && txn.BalanceAfter == 1000
	})).Return(nil)
	mockBus.On("Publish", mock.Anything).Return()

	user, err := service.GetOrCreateUser(ctx, discordID, "testuser")

	require.NoError(t, err)
	assert.Equal(t, int64(1000), user.Redeemable)

	mockUserRepo.AssertExpectations(t)
	mockTxnRepo.AssertExpectations(t)
}

func TestUserService_GetOrCreateUser_ReturnsExisting(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockUoW.SetRepositories(mockUserRepo, nil, nil, nil, nil, nil, nil, nil)

	service := NewUserService(mockFactory, 1000)

	discordID := int64(123456)
	existing := &models.User{ID: 1, DiscordID: &discordID, Username: "testuser", Redeemable: 42}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetByDiscordID", ctx, discordID).Return(existing, nil)

	user, err := service.GetOrCreateUser(ctx, discordID, "testuser")

	require.NoError(t, err)
	assert.Equal(t, int64(42), user.Redeemable)
	mockUserRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestUserService_AdjustBalance_RejectsZeroAmount(t *testing.T) {
	mockFactory := new(MockUnitOfWorkFactory)
	service := NewUserService(mockFactory, 1000)

	_, err := service.AdjustBalance(context.Background(), 1, models.PointTypeRedeemable, 0, "no-op")

	assert.ErrorIs(t, err, ErrOutOfRange)
	mockFactory.AssertNotCalled(t, "Create")
}

func TestUserService_AdjustBalance_Debit(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockTxnRepo := new(MockTransactionRepository)
	mockBus := new(MockEventPublisher)
	mockUoW.SetRepositories(mockUserRepo, mockTxnRepo, nil, nil, nil, nil, nil, mockBus)

	service := NewUserService(mockFactory, 1000)

	user := &models.User{ID: 1, Username: "testuser", Redeemable: 500}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetForUpdate", ctx, int64(1)).Return(user, nil)
	mockUserRepo.On("SetBalance", ctx, int64(1), models.PointTypeRedeemable, int64(300)).Return(nil)
	mockTxnRepo.On("Record", ctx, mock.MatchedBy(func(txn *models.Transaction) bool {
		return txn.Type == models.TransactionTypeAdminAdjustment &&
			txn.Amount == -200 &&
			txn.Description == "contest penalty"
	})).Return(nil)
	mockBus.On("Publish", mock.Anything).Return()

	txn, err := service.AdjustBalance(ctx, 1, models.PointTypeRedeemable, -200, "contest penalty")

	require.NoError(t, err)
	assert.Equal(t, int64(300), txn.BalanceAfter)
}

func TestUserService_GetUser_NotFound(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockUoW.SetRepositories(mockUserRepo, nil, nil, nil, nil, nil, nil, nil)

	service := NewUserService(mockFactory, 1000)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetByID", ctx, int64(99)).Return(nil, nil)

	_, err := service.GetUser(ctx, 99)

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserService_GetOrCreateUser_LosesCreationRace(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockUoW.SetRepositories(mockUserRepo, nil, nil, nil, nil, nil, nil, nil)

	service := NewUserService(mockFactory, 1000)

	discordID := int64(123456)
	winner := &models.User{ID: 1, DiscordID: &discordID, Username: "testuser", Redeemable: 1000}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	// Not visible yet at the first check, but a concurrent creation wins
	// the insert; the re-read after the constraint rejection sees it
	mockUserRepo.On("GetByDiscordID", ctx, discordID).Return(nil, nil).Once()
	mockUserRepo.On("Create", ctx, mock.MatchedBy(func(id *int64) bool {
		return id != nil && *id == discordID
	}), "testuser").Return(nil, fmt.Errorf("user %q: %w", "testuser", ErrAlreadyExists))
	mockUserRepo.On("GetByDiscordID", ctx, discordID).Return(winner, nil).Once()

	user, err := service.GetOrCreateUser(ctx, discordID, "testuser")

	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
	assert.Equal(t, int64(1000), user.Redeemable)
	mockUoW.AssertNotCalled(t, "Commit")
	mockUserRepo.AssertExpectations(t)
}
