package service

import (
	"context"
	"errors"
	"testing"

	"arcade/events"
	"arcade/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestApplyBalanceChange_Credit(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockUserRepo := new(MockUserRepository)
	mockTxnRepo := new(MockTransactionRepository)
	mockBus := new(MockEventPublisher)
	mockUoW.SetRepositories(mockUserRepo, mockTxnRepo, nil, nil, nil, nil, nil, mockBus)

	user := &models.User{ID: 1, Username: "testuser", Redeemable: 250}

	mockUserRepo.On("GetForUpdate", ctx, int64(1)).Return(user, nil)
	mockUserRepo.On("SetBalance", ctx, int64(1), models.PointTypeRedeemable, int64(350)).Return(nil)
	mockTxnRepo.On("Record", ctx, mock.MatchedBy(func(txn *models.Transaction) bool {
		return txn.UserID == 1 &&
			txn.Amount == 100 &&
			txn.BalanceAfter == 350 &&
			txn.Type == models.TransactionTypeActivityReward
	})).Return(nil)
	mockBus.On("Publish", mock.MatchedBy(func(e events.Event) bool {
		change, ok := e.(events.BalanceChangeEvent)
		return ok && change.OldBalance == 250 && change.NewBalance == 350
	})).Return()

	txn, err := ApplyBalanceChange(ctx, mockUoW, BalanceChange{
		UserID:      1,
		PointType:   models.PointTypeRedeemable,
		Amount:      100,
		Type:        models.TransactionTypeActivityReward,
		Description: "message activity reward",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(350), txn.BalanceAfter)

	mockUserRepo.AssertExpectations(t)
	mockTxnRepo.AssertExpectations(t)
	mockBus.AssertExpectations(t)
}

func TestApplyBalanceChange_InsufficientBalance(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockUserRepo := new(MockUserRepository)
	mockTxnRepo := new(MockTransactionRepository)
	mockUoW.SetRepositories(mockUserRepo, mockTxnRepo, nil, nil, nil, nil, nil, nil)

	user := &models.User{ID: 1, Username: "testuser", Redeemable: 50}

	mockUserRepo.On("GetForUpdate", ctx, int64(1)).Return(user, nil)

	txn, err := ApplyBalanceChange(ctx, mockUoW, BalanceChange{
		UserID:    1,
		PointType: models.PointTypeRedeemable,
		Amount:    -100,
		Type:      models.TransactionTypePurchase,
	})

	require.Error(t, err)
	assert.Nil(t, txn)

	var insufficientErr *InsufficientBalanceError
	require.True(t, errors.As(err, &insufficientErr))
	assert.Equal(t, int64(50), insufficientErr.Have)
	assert.Equal(t, int64(100), insufficientErr.Need)

	// Nothing may be written when the guard rejects the debit
	mockUserRepo.AssertNotCalled(t, "SetBalance", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mockTxnRepo.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
}

func TestApplyBalanceChange_ExactSpendToZero(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockUserRepo := new(MockUserRepository)
	mockTxnRepo := new(MockTransactionRepository)
	mockBus := new(MockEventPublisher)
	mockUoW.SetRepositories(mockUserRepo, mockTxnRepo, nil, nil, nil, nil, nil, mockBus)

	user := &models.User{ID: 1, Username: "testuser", Redeemable: 100}

	mockUserRepo.On("GetForUpdate", ctx, int64(1)).Return(user, nil)
	mockUserRepo.On("SetBalance", ctx, int64(1), models.PointTypeRedeemable, int64(0)).Return(nil)
	mockTxnRepo.On("Record", ctx, mock.AnythingOfType("*models.Transaction")).Return(nil)
	mockBus.On("Publish", mock.Anything).Return()

	txn, err := ApplyBalanceChange(ctx, mockUoW, BalanceChange{
		UserID:    1,
		PointType: models.PointTypeRedeemable,
		Amount:    -100,
		Type:      models.TransactionTypePurchase,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(0), txn.BalanceAfter)
}

func TestApplyBalanceChange_SoulBoundUsesOwnBalance(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockUserRepo := new(MockUserRepository)
	mockTxnRepo := new(MockTransactionRepository)
	mockBus := new(MockEventPublisher)
	mockUoW.SetRepositories(mockUserRepo, mockTxnRepo, nil, nil, nil, nil, nil, mockBus)

	// Redeemable balance stays untouched when crediting soul-bound points
	user := &models.User{ID: 1, Username: "testuser", Redeemable: 5, SoulBound: 70}

	mockUserRepo.On("GetForUpdate", ctx, int64(1)).Return(user, nil)
	mockUserRepo.On("SetBalance", ctx, int64(1), models.PointTypeSoulBound, int64(80)).Return(nil)
	mockTxnRepo.On("Record", ctx, mock.MatchedBy(func(txn *models.Transaction) bool {
		return txn.PointType == models.PointTypeSoulBound && txn.BalanceAfter == 80
	})).Return(nil)
	mockBus.On("Publish", mock.Anything).Return()

	txn, err := ApplyBalanceChange(ctx, mockUoW, BalanceChange{
		UserID:    1,
		PointType: models.PointTypeSoulBound,
		Amount:    10,
		Type:      models.TransactionTypeActivityReward,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(80), txn.BalanceAfter)
}

func TestApplyBalanceChange_UserNotFound(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockUserRepo := new(MockUserRepository)
	mockUoW.SetRepositories(mockUserRepo, nil, nil, nil, nil, nil, nil, nil)

	mockUserRepo.On("GetForUpdate", ctx, int64(99)).Return(nil, nil)

	_, err := ApplyBalanceChange(ctx, mockUoW, BalanceChange{
		UserID:    99,
		PointType: models.PointTypeRedeemable,
		Amount:    10,
		Type:      models.TransactionTypeActivityReward,
	})

	assert.ErrorIs(t, err, ErrNotFound)
}
