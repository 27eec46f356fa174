package service

import (
	"context"
	"testing"
	"time"

	"arcade/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var raffleNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func activeRaffle() *models.Raffle {
	return &models.Raffle{
		ID:          5,
		Title:       "Weekly Raffle",
		TicketPrice: 10,
		MaxEntries:  100,
		StartsAt:    raffleNow.Add(-time.Hour),
		EndsAt:      raffleNow.Add(time.Hour),
		Status:      models.RaffleStatusActive,
	}
}

func newRaffleServiceForTest(factory UnitOfWorkFactory, rng Rand) *raffleService {
	svc := NewRaffleServiceWithRand(factory, rng).(*raffleService)
	svc.now = func() time.Time { return raffleNow }
	return svc
}

func TestRaffleService_PurchaseEntries(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockTxnRepo := new(MockTransactionRepository)
	mockRaffleRepo := new(MockRaffleRepository)
	mockBus := new(MockEventPublisher)
	mockUoW.SetRepositories(mockUserRepo, mockTxnRepo, nil, nil, nil, mockRaffleRepo, nil, mockBus)

	service := newRaffleServiceForTest(mockFactory, &fakeRand{})

	raffle := activeRaffle()
	raffle.TotalTicketsSold = 10
	user := &models.User{ID: 1, Username: "testuser", Redeemable: 100}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockRaffleRepo.On("GetForUpdate", ctx, int64(5)).Return(raffle, nil)
	mockRaffleRepo.On("CountUserTickets", ctx, int64(5), int64(1)).Return(int64(0), nil)
	// Tickets 11..15: contiguous range continuing from the last sold ticket
	mockRaffleRepo.On("CreateEntry", ctx, mock.MatchedBy(func(e *models.RaffleEntry) bool {
		return e.RaffleID == 5 &&
			e.UserID == 1 &&
			e.FirstTicketNumber == 11 &&
			e.TicketCount == 5 &&
			e.PurchasePrice == 50
	})).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*models.RaffleEntry).ID = 9
	})
	mockRaffleRepo.On("Update", ctx, mock.MatchedBy(func(r *models.Raffle) bool {
		return r.TotalTicketsSold == 15 && r.TotalParticipants == 1
	})).Return(nil)

	mockUserRepo.On("GetForUpdate", ctx, int64(1)).Return(user, nil)
	mockUserRepo.On("SetBalance", ctx, int64(1), models.PointTypeRedeemable, int64(50)).Return(nil)
	mockTxnRepo.On("Record", ctx, mock.MatchedBy(func(txn *models.Transaction) bool {
		return txn.Amount == -50 && txn.Type == models.TransactionTypeRaffleEntry
	})).Return(nil)
	mockBus.On("Publish", mock.Anything).Return()

	result, err := service.PurchaseEntries(ctx, 5, 1, 5)

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, []int64{11, 12, 13, 14, 15}, result.TicketNumbers)
	assert.Equal(t, int64(50), result.TotalCost)
	assert.Equal(t, int64(50), result.NewBalance)

	mockRaffleRepo.AssertExpectations(t)
	mockUserRepo.AssertExpectations(t)
	mockTxnRepo.AssertExpectations(t)
}

func TestRaffleService_PurchaseEntries_ExceedsCapacity(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockRaffleRepo := new(MockRaffleRepository)
	mockUoW.SetRepositories(nil, nil, nil, nil, nil, mockRaffleRepo, nil, nil)

	service := newRaffleServiceForTest(mockFactory, &fakeRand{})

	raffle := activeRaffle()
	raffle.TotalTicketsSold = 99

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockRaffleRepo.On("GetForUpdate", ctx, int64(5)).Return(raffle, nil)

	_, err := service.PurchaseEntries(ctx, 5, 1, 2)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOutOfRange)
	assert.Contains(t, err.Error(), "only 1 tickets remaining")
	mockRaffleRepo.AssertNotCalled(t, "CreateEntry", mock.Anything, mock.Anything)
}

func TestRaffleService_PurchaseEntries_PerUserCap(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockRaffleRepo := new(MockRaffleRepository)
	mockUoW.SetRepositories(nil, nil, nil, nil, nil, mockRaffleRepo, nil, nil)

	service := newRaffleServiceForTest(mockFactory, &fakeRand{})

	raffle := activeRaffle()
	limit := int64(10)
	raffle.MaxEntriesPerUser = &limit

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockRaffleRepo.On("GetForUpdate", ctx, int64(5)).Return(raffle, nil)
	mockRaffleRepo.On("CountUserTickets", ctx, int64(5), int64(1)).Return(int64(8), nil)

	_, err := service.PurchaseEntries(ctx, 5, 1, 3)

	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestRaffleService_PurchaseEntries_NotOpen(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockRaffleRepo := new(MockRaffleRepository)
	mockUoW.SetRepositories(nil, nil, nil, nil, nil, mockRaffleRepo, nil, nil)

	service := newRaffleServiceForTest(mockFactory, &fakeRand{})

	raffle := activeRaffle()
	raffle.EndsAt = raffleNow.Add(-time.Minute)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockRaffleRepo.On("GetForUpdate", ctx, int64(5)).Return(raffle, nil)

	_, err := service.PurchaseEntries(ctx, 5, 1, 1)

	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestRaffleService_DrawWinner(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockRaffleRepo := new(MockRaffleRepository)
	mockBus := new(MockEventPublisher)
	mockUoW.SetRepositories(nil, nil, nil, nil, nil, mockRaffleRepo, nil, mockBus)

	// Raw draw 14 means ticket 15, held by the second entry (tickets 11-20)
	service := newRaffleServiceForTest(mockFactory, &fakeRand{int63s: []int64{14}})

	raffle := activeRaffle()
	raffle.EndsAt = raffleNow.Add(-time.Minute)
	raffle.TotalTicketsSold = 20
	entries := []*models.RaffleEntry{
		{ID: 1, RaffleID: 5, UserID: 1, FirstTicketNumber: 1, TicketCount: 10},
		{ID: 2, RaffleID: 5, UserID: 2, FirstTicketNumber: 11, TicketCount: 10},
	}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockRaffleRepo.On("GetForUpdate", ctx, int64(5)).Return(raffle, nil)
	mockRaffleRepo.On("GetEntries", ctx, int64(5)).Return(entries, nil)
	mockRaffleRepo.On("Update", ctx, mock.MatchedBy(func(r *models.Raffle) bool {
		return r.Status == models.RaffleStatusEnded &&
			*r.WinnerUserID == 2 &&
			*r.WinningTicketNumber == 15 &&
			r.DrawnAt != nil
	})).Return(nil)
	mockBus.On("Publish", mock.Anything).Return()

	result, err := service.DrawWinner(ctx, 5)

	require.NoError(t, err)
	assert.Equal(t, int64(2), result.WinnerUserID)
	assert.Equal(t, int64(15), result.WinningTicketNumber)

	mockRaffleRepo.AssertExpectations(t)
	mockBus.AssertExpectations(t)
}

func TestRaffleService_DrawWinner_NoTicketsSold(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockRaffleRepo := new(MockRaffleRepository)
	mockUoW.SetRepositories(nil, nil, nil, nil, nil, mockRaffleRepo, nil, nil)

	service := newRaffleServiceForTest(mockFactory, &fakeRand{})

	raffle := activeRaffle()
	raffle.EndsAt = raffleNow.Add(-time.Minute)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockRaffleRepo.On("GetForUpdate", ctx, int64(5)).Return(raffle, nil)
	mockRaffleRepo.On("Update", ctx, mock.MatchedBy(func(r *models.Raffle) bool {
		return r.Status == models.RaffleStatusEnded && r.WinnerUserID == nil
	})).Return(nil)

	result, err := service.DrawWinner(ctx, 5)

	require.NoError(t, err)
	assert.Zero(t, result.WinnerUserID)
	mockRaffleRepo.AssertNotCalled(t, "GetEntries", mock.Anything, mock.Anything)
}

func TestRaffleService_DrawWinner_AlreadyEnded(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockRaffleRepo := new(MockRaffleRepository)
	mockUoW.SetRepositories(nil, nil, nil, nil, nil, mockRaffleRepo, nil, nil)

	service := newRaffleServiceForTest(mockFactory, &fakeRand{})

	raffle := activeRaffle()
	raffle.Status = models.RaffleStatusEnded

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockRaffleRepo.On("GetForUpdate", ctx, int64(5)).Return(raffle, nil)

	_, err := service.DrawWinner(ctx, 5)

	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestRaffleService_DrawWinner_BeforeEndDate(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockRaffleRepo := new(MockRaffleRepository)
	mockUoW.SetRepositories(nil, nil, nil, nil, nil, mockRaffleRepo, nil, nil)

	service := newRaffleServiceForTest(mockFactory, &fakeRand{})

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockRaffleRepo.On("GetForUpdate", ctx, int64(5)).Return(activeRaffle(), nil)

	_, err := service.DrawWinner(ctx, 5)

	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestRaffleService_CancelRaffle_RefundsAllEntries(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockTxnRepo := new(MockTransactionRepository)
	mockRaffleRepo := new(MockRaffleRepository)
	mockBus := new(MockEventPublisher)
	mockUoW.SetRepositories(mockUserRepo, mockTxnRepo, nil, nil, nil, mockRaffleRepo, nil, mockBus)

	service := newRaffleServiceForTest(mockFactory, &fakeRand{})

	raffle := activeRaffle()
	raffle.TotalTicketsSold = 8
	entries := []*models.RaffleEntry{
		{ID: 1, RaffleID: 5, UserID: 1, FirstTicketNumber: 1, TicketCount: 3, PurchasePrice: 30},
		{ID: 2, RaffleID: 5, UserID: 2, FirstTicketNumber: 4, TicketCount: 5, PurchasePrice: 50},
	}
	userOne := &models.User{ID: 1, Username: "one", Redeemable: 0}
	userTwo := &models.User{ID: 2, Username: "two", Redeemable: 10}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockRaffleRepo.On("GetForUpdate", ctx, int64(5)).Return(raffle, nil)
	mockRaffleRepo.On("Update", ctx, mock.MatchedBy(func(r *models.Raffle) bool {
		return r.Status == models.RaffleStatusCancelled
	})).Return(nil)
	mockRaffleRepo.On("GetUnrefundedEntries", ctx, int64(5)).Return(entries, nil)
	mockRaffleRepo.On("MarkEntryRefunded", ctx, int64(1)).Return(nil)
	mockRaffleRepo.On("MarkEntryRefunded", ctx, int64(2)).Return(nil)

	mockUserRepo.On("GetForUpdate", ctx, int64(1)).Return(userOne, nil)
	mockUserRepo.On("SetBalance", ctx, int64(1), models.PointTypeRedeemable, int64(30)).Return(nil)
	mockUserRepo.On("GetForUpdate", ctx, int64(2)).Return(userTwo, nil)
	mockUserRepo.On("SetBalance", ctx, int64(2), models.PointTypeRedeemable, int64(60)).Return(nil)
	mockTxnRepo.On("Record", ctx, mock.MatchedBy(func(txn *models.Transaction) bool {
		return txn.Type == models.TransactionTypeRaffleRefund && txn.Amount > 0
	})).Return(nil)
	mockBus.On("Publish", mock.Anything).Return()

	err := service.CancelRaffle(ctx, 5)

	require.NoError(t, err)
	mockRaffleRepo.AssertExpectations(t)
	mockUserRepo.AssertExpectations(t)
	mockTxnRepo.AssertNumberOfCalls(t, "Record", 2)
}

func TestRaffleService_CancelRaffle_ResumesPartialRefunds(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockTxnRepo := new(MockTransactionRepository)
	mockRaffleRepo := new(MockRaffleRepository)
	mockBus := new(MockEventPublisher)
	mockUoW.SetRepositories(mockUserRepo, mockTxnRepo, nil, nil, nil, mockRaffleRepo, nil, mockBus)

	service := newRaffleServiceForTest(mockFactory, &fakeRand{})

	// Already cancelled with one entry still unrefunded: the retry skips the
	// status write and refunds only what is left
	raffle := activeRaffle()
	raffle.Status = models.RaffleStatusCancelled
	remaining := []*models.RaffleEntry{
		{ID: 2, RaffleID: 5, UserID: 2, FirstTicketNumber: 4, TicketCount: 5, PurchasePrice: 50},
	}
	userTwo := &models.User{ID: 2, Username: "two", Redeemable: 10}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockRaffleRepo.On("GetForUpdate", ctx, int64(5)).Return(raffle, nil)
	mockRaffleRepo.On("GetUnrefundedEntries", ctx, int64(5)).Return(remaining, nil)
	mockRaffleRepo.On("MarkEntryRefunded", ctx, int64(2)).Return(nil)

	mockUserRepo.On("GetForUpdate", ctx, int64(2)).Return(userTwo, nil)
	mockUserRepo.On("SetBalance", ctx, int64(2), models.PointTypeRedeemable, int64(60)).Return(nil)
	mockTxnRepo.On("Record", ctx, mock.Anything).Return(nil)
	mockBus.On("Publish", mock.Anything).Return()

	err := service.CancelRaffle(ctx, 5)

	require.NoError(t, err)
	mockRaffleRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	mockTxnRepo.AssertNumberOfCalls(t, "Record", 1)
}

func TestRaffleService_CancelRaffle_EndedRaffle(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockRaffleRepo := new(MockRaffleRepository)
	mockUoW.SetRepositories(nil, nil, nil, nil, nil, mockRaffleRepo, nil, nil)

	service := newRaffleServiceForTest(mockFactory, &fakeRand{})

	raffle := activeRaffle()
	raffle.Status = models.RaffleStatusEnded

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockRaffleRepo.On("GetForUpdate", ctx, int64(5)).Return(raffle, nil)

	err := service.CancelRaffle(ctx, 5)

	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestRaffleService_CreateRaffle_Validation(t *testing.T) {
	mockFactory := new(MockUnitOfWorkFactory)
	service := newRaffleServiceForTest(mockFactory, &fakeRand{})

	tests := []struct {
		name   string
		raffle *models.Raffle
	}{
		{"negative ticket price", &models.Raffle{TicketPrice: -1, MaxEntries: 10, StartsAt: raffleNow, EndsAt: raffleNow.Add(time.Hour)}},
		{"zero max entries", &models.Raffle{TicketPrice: 10, MaxEntries: 0, StartsAt: raffleNow, EndsAt: raffleNow.Add(time.Hour)}},
		{"end before start", &models.Raffle{TicketPrice: 10, MaxEntries: 10, StartsAt: raffleNow, EndsAt: raffleNow.Add(-time.Hour)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := service.CreateRaffle(context.Background(), tt.raffle)
			assert.ErrorIs(t, err, ErrOutOfRange)
		})
	}

	mockFactory.AssertNotCalled(t, "Create")
}

func TestRaffleService_ActivateRaffle_OnlyFromDraft(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockRaffleRepo := new(MockRaffleRepository)
	mockUoW.SetRepositories(nil, nil, nil, nil, nil, mockRaffleRepo, nil, nil)

	service := newRaffleServiceForTest(mockFactory, &fakeRand{})

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockRaffleRepo.On("GetForUpdate", ctx, int64(5)).Return(activeRaffle(), nil)

	err := service.ActivateRaffle(ctx, 5)

	assert.ErrorIs(t, err, ErrInvalidState)
}
