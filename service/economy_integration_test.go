package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"arcade/events"
	"arcade/models"
	"arcade/repository"
	"arcade/repository/testutil"
	"arcade/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShopPurchase_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	eventBus := events.NewBus()
	uowFactory := repository.NewUnitOfWorkFactory(testDB.DB, eventBus)
	userService := service.NewUserService(uowFactory, 1000)
	shopService := service.NewShopService(uowFactory)

	itemRepo := repository.NewItemRepository(testDB.DB)
	txnRepo := repository.NewTransactionRepository(testDB.DB)

	user, err := userService.GetOrCreateUser(ctx, 111111, "buyer")
	require.NoError(t, err)
	require.Equal(t, int64(1000), user.Redeemable)

	item := testutil.CreateTestItem("Sticker Pack", 150)
	require.NoError(t, itemRepo.Create(ctx, item))

	t.Run("purchase debits balance and decrements stock", func(t *testing.T) {
		purchase, err := shopService.PurchaseItem(ctx, item.ID, user.ID, 2)
		require.NoError(t, err)
		assert.Equal(t, int64(300), purchase.TotalPrice)
		assert.Equal(t, models.PurchaseStatusCompleted, purchase.Status)

		fresh, err := userService.GetUser(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(700), fresh.Redeemable)

		stocked, err := itemRepo.GetByID(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(98), stocked.Stock)
	})

	t.Run("failed purchase leaves no partial state", func(t *testing.T) {
		// 5 * 150 = 750 > 700
		_, err := shopService.PurchaseItem(ctx, item.ID, user.ID, 5)
		var insufficientErr *service.InsufficientBalanceError
		require.ErrorAs(t, err, &insufficientErr)
		assert.Equal(t, int64(700), insufficientErr.Have)
		assert.Equal(t, int64(750), insufficientErr.Need)

		fresh, err := userService.GetUser(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(700), fresh.Redeemable)

		stocked, err := itemRepo.GetByID(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(98), stocked.Stock)
	})

	t.Run("ledger sums to current balance", func(t *testing.T) {
		sum, err := txnRepo.SumByUser(ctx, user.ID, models.PointTypeRedeemable)
		require.NoError(t, err)

		fresh, err := userService.GetUser(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, fresh.Redeemable, sum)
	})
}

func TestRaffleLifecycle_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	eventBus := events.NewBus()
	uowFactory := repository.NewUnitOfWorkFactory(testDB.DB, eventBus)
	userService := service.NewUserService(uowFactory, 1000)
	raffleService := service.NewRaffleService(uowFactory)

	txnRepo := repository.NewTransactionRepository(testDB.DB)
	raffleRepo := repository.NewRaffleRepository(testDB.DB)

	alice, err := userService.GetOrCreateUser(ctx, 222222, "alice")
	require.NoError(t, err)
	bob, err := userService.GetOrCreateUser(ctx, 333333, "bob")
	require.NoError(t, err)

	raffle := testutil.CreateTestRaffle("Monthly Giveaway", 50, 100, time.Now())
	require.NoError(t, raffleService.CreateRaffle(ctx, raffle))
	require.Equal(t, models.RaffleStatusDraft, raffle.Status)
	require.NoError(t, raffleService.ActivateRaffle(ctx, raffle.ID))

	t.Run("entries get contiguous ticket ranges", func(t *testing.T) {
		aliceResult, err := raffleService.PurchaseEntries(ctx, raffle.ID, alice.ID, 3)
		require.NoError(t, err)
		assert.Equal(t, int64(1), aliceResult.Entry.FirstTicketNumber)
		assert.Equal(t, []int64{1, 2, 3}, aliceResult.TicketNumbers)
		assert.Equal(t, int64(150), aliceResult.TotalCost)
		assert.Equal(t, int64(850), aliceResult.NewBalance)

		bobResult, err := raffleService.PurchaseEntries(ctx, raffle.ID, bob.ID, 2)
		require.NoError(t, err)
		assert.Equal(t, int64(4), bobResult.Entry.FirstTicketNumber)
		assert.Equal(t, []int64{4, 5}, bobResult.TicketNumbers)

		sold, err := raffleService.GetRaffle(ctx, raffle.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(5), sold.TotalTicketsSold)
		assert.Equal(t, int64(2), sold.TotalParticipants)
	})

	t.Run("draw picks a sold ticket and ends the raffle", func(t *testing.T) {
		// Push the end date into the past so the draw is allowed
		_, err := testDB.DB.Exec(ctx,
			"UPDATE raffles SET ends_at = NOW() - INTERVAL '1 minute' WHERE id = $1", raffle.ID)
		require.NoError(t, err)

		result, err := raffleService.DrawWinner(ctx, raffle.ID)
		require.NoError(t, err)
		assert.Equal(t, models.RaffleStatusEnded, result.Raffle.Status)
		assert.GreaterOrEqual(t, result.WinningTicketNumber, int64(1))
		assert.LessOrEqual(t, result.WinningTicketNumber, int64(5))
		if result.WinningTicketNumber <= 3 {
			assert.Equal(t, alice.ID, result.WinnerUserID)
		} else {
			assert.Equal(t, bob.ID, result.WinnerUserID)
		}
	})

	t.Run("cancellation refunds every entry exactly once", func(t *testing.T) {
		refundable := testutil.CreateTestRaffle("Cancelled Giveaway", 100, 50, time.Now())
		require.NoError(t, raffleService.CreateRaffle(ctx, refundable))
		require.NoError(t, raffleService.ActivateRaffle(ctx, refundable.ID))

		_, err := raffleService.PurchaseEntries(ctx, refundable.ID, alice.ID, 2)
		require.NoError(t, err)
		_, err = raffleService.PurchaseEntries(ctx, refundable.ID, bob.ID, 1)
		require.NoError(t, err)

		require.NoError(t, raffleService.CancelRaffle(ctx, refundable.ID))

		// Retrying the cancellation must not double-refund
		require.NoError(t, raffleService.CancelRaffle(ctx, refundable.ID))

		entries, err := raffleRepo.GetEntries(ctx, refundable.ID)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		for _, entry := range entries {
			assert.True(t, entry.Refunded)
		}

		for _, user := range []*models.User{alice, bob} {
			fresh, err := userService.GetUser(ctx, user.ID)
			require.NoError(t, err)

			sum, err := txnRepo.SumByUser(ctx, user.ID, models.PointTypeRedeemable)
			require.NoError(t, err)
			assert.Equal(t, fresh.Redeemable, sum)
		}
	})
}

func TestConcurrentDebits_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	eventBus := events.NewBus()
	uowFactory := repository.NewUnitOfWorkFactory(testDB.DB, eventBus)
	userService := service.NewUserService(uowFactory, 500)
	shopService := service.NewShopService(uowFactory)

	itemRepo := repository.NewItemRepository(testDB.DB)
	txnRepo := repository.NewTransactionRepository(testDB.DB)

	user, err := userService.GetOrCreateUser(ctx, 444444, "spender")
	require.NoError(t, err)
	require.Equal(t, int64(500), user.Redeemable)

	item := testutil.CreateTestItem("Arcade Token", 100)
	require.NoError(t, itemRepo.Create(ctx, item))

	// The balance funds 5 of the 8 attempts; the row lock serializes the
	// debits so exactly the affordable subset may commit
	const attempts = 8
	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := shopService.PurchaseItem(ctx, item.ID, user.ID, 1)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var succeeded, insufficient int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case service.IsInsufficientBalance(err):
			insufficient++
		default:
			t.Fatalf("unexpected purchase error: %v", err)
		}
	}
	assert.Equal(t, 5, succeeded)
	assert.Equal(t, 3, insufficient)

	fresh, err := userService.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), fresh.Redeemable)

	stocked, err := itemRepo.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(95), stocked.Stock)

	sum, err := txnRepo.SumByUser(ctx, user.ID, models.PointTypeRedeemable)
	require.NoError(t, err)
	assert.Equal(t, int64(0), sum)
}

func TestConcurrentRaffleEntries_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	eventBus := events.NewBus()
	uowFactory := repository.NewUnitOfWorkFactory(testDB.DB, eventBus)
	userService := service.NewUserService(uowFactory, 1000)
	raffleService := service.NewRaffleService(uowFactory)

	txnRepo := repository.NewTransactionRepository(testDB.DB)
	raffleRepo := repository.NewRaffleRepository(testDB.DB)

	const buyers = 6
	users := make([]*models.User, buyers)
	for i := range users {
		user, err := userService.GetOrCreateUser(ctx, int64(500000+i), fmt.Sprintf("buyer%d", i))
		require.NoError(t, err)
		users[i] = user
	}

	raffle := testutil.CreateTestRaffle("Capacity Race", 10, 10, time.Now())
	require.NoError(t, raffleService.CreateRaffle(ctx, raffle))
	require.NoError(t, raffleService.ActivateRaffle(ctx, raffle.ID))

	// Six buyers each want 3 of the 10 tickets; the raffle row lock
	// serializes the purchases, so three fit and one ticket stays unsold
	var wg sync.WaitGroup
	results := make(chan error, buyers)
	for _, user := range users {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			_, err := raffleService.PurchaseEntries(ctx, raffle.ID, userID, 3)
			results <- err
		}(user.ID)
	}
	wg.Wait()
	close(results)

	var succeeded, rejected int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, service.ErrOutOfRange):
			rejected++
		default:
			t.Fatalf("unexpected entry purchase error: %v", err)
		}
	}
	assert.Equal(t, 3, succeeded)
	assert.Equal(t, 3, rejected)

	sold, err := raffleService.GetRaffle(ctx, raffle.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(9), sold.TotalTicketsSold)
	assert.LessOrEqual(t, sold.TotalTicketsSold, sold.MaxEntries)

	// The assigned ticket numbers must be exactly {1..totalSold}
	entries, err := raffleRepo.GetEntries(ctx, raffle.ID)
	require.NoError(t, err)
	assigned := make(map[int64]bool)
	for _, entry := range entries {
		for n := entry.FirstTicketNumber; n < entry.FirstTicketNumber+entry.TicketCount; n++ {
			assert.False(t, assigned[n], "ticket %d assigned twice", n)
			assigned[n] = true
		}
	}
	require.Len(t, assigned, int(sold.TotalTicketsSold))
	for n := int64(1); n <= sold.TotalTicketsSold; n++ {
		assert.True(t, assigned[n], "ticket %d never assigned", n)
	}

	// Rejected buyers keep their full balance; the ledger reconciles for all
	for _, user := range users {
		fresh, err := userService.GetUser(ctx, user.ID)
		require.NoError(t, err)

		sum, err := txnRepo.SumByUser(ctx, user.ID, models.PointTypeRedeemable)
		require.NoError(t, err)
		assert.Equal(t, fresh.Redeemable, sum)
	}
}
