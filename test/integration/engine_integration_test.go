package integration

import (
	"context"
	"sync"
	"testing"
	"time"

	"gig-market/internal/model"
	"gig-market/internal/notify"
	"gig-market/internal/repository"
	"gig-market/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a settable clock for expiry scenarios.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func TestProgression_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	logger := zerolog.Nop()
	sellerRepo := repository.NewSellerRepository(testDB.Pool, logger)
	svc := service.NewProgressionService(sellerRepo, logger)

	ctx := context.Background()

	t.Run("credit accumulates below threshold", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedLadder(t, testDB.Pool)
		sellerID := SeedSeller(t, testDB.Pool, 100, "Newbie")

		seller, err := svc.CreditXP(ctx, sellerID, 50)
		require.NoError(t, err)
		assert.Equal(t, int64(150), seller.XP)
		assert.Equal(t, "Newbie", seller.LevelName)
	})

	t.Run("threshold crossing advances one level and carries remainder", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedLadder(t, testDB.Pool)
		sellerID := SeedSeller(t, testDB.Pool, 480, "Amateur")

		seller, err := svc.CreditXP(ctx, sellerID, 40)
		require.NoError(t, err)
		assert.Equal(t, int64(20), seller.XP)
		assert.Equal(t, "Highly Rated", seller.LevelName)
	})

	t.Run("terminal level accumulates without advancing", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedLadder(t, testDB.Pool)
		sellerID := SeedSeller(t, testDB.Pool, 5000, "Guru")

		seller, err := svc.CreditXP(ctx, sellerID, 500)
		require.NoError(t, err)
		assert.Equal(t, int64(5500), seller.XP)
		assert.Equal(t, "Guru", seller.LevelName)
	})

	t.Run("concurrent credits all apply exactly once", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedLadder(t, testDB.Pool)
		sellerID := SeedSeller(t, testDB.Pool, 0, "Newbie")

		const workers = 10
		var wg sync.WaitGroup
		errs := make([]error, workers)

		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = svc.CreditXP(ctx, sellerID, 10)
			}(i)
		}
		wg.Wait()

		for i, err := range errs {
			require.NoError(t, err, "worker %d", i)
		}

		progress, err := svc.GetProgress(ctx, sellerID)
		require.NoError(t, err)
		assert.Equal(t, int64(100), progress.XP)
		assert.Equal(t, "Newbie", progress.Level)
	})

	t.Run("unknown seller is rejected", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedLadder(t, testDB.Pool)

		_, err := svc.CreditXP(ctx, uuid.New(), 50)
		assert.ErrorIs(t, err, model.ErrSellerNotFound)
	})
}

func TestCompletion_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	logger := zerolog.Nop()
	orderRepo := repository.NewOrderRepository(testDB.Pool, logger)
	sellerRepo := repository.NewSellerRepository(testDB.Pool, logger)
	notifRepo := repository.NewNotificationRepository(testDB.Pool, logger)
	progression := service.NewProgressionService(sellerRepo, logger)

	clock := &fakeClock{now: time.Now().UTC().Truncate(time.Microsecond)}
	svc := service.NewCompletionService(
		orderRepo, notifRepo, progression, notify.NewNopDispatcher(),
		clock, service.DefaultCompletionConfig(), logger,
	)

	ctx := context.Background()

	t.Run("accept completes order, credits XP and records notification", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedLadder(t, testDB.Pool)
		sellerID := SeedSeller(t, testDB.Pool, 100, "Newbie")
		clientID := uuid.New()
		orderID := SeedOrder(t, testDB.Pool, clientID, sellerID, "ACTIVE")

		opened, err := svc.OpenRequest(ctx, orderID, sellerID)
		require.NoError(t, err)
		assert.Equal(t, clock.Now().Add(72*time.Hour), opened.Expires)

		result, err := svc.ResolveRequest(ctx, opened.RequestID, clientID, model.DecisionAccept)
		require.NoError(t, err)
		assert.Equal(t, model.RequestAccepted, result.Status)
		require.NotNil(t, result.Notify)
		assert.Equal(t, sellerID, result.Notify.RecipientUserID)
		assert.Equal(t, int64(50), result.Notify.Notification.XP)

		order, err := orderRepo.GetOrder(ctx, orderID)
		require.NoError(t, err)
		assert.Equal(t, model.OrderCompleted, order.Status)

		progress, err := progression.GetProgress(ctx, sellerID)
		require.NoError(t, err)
		assert.Equal(t, int64(150), progress.XP)

		notifications, err := notifRepo.ListForRecipient(ctx, sellerID, 10)
		require.NoError(t, err)
		require.Len(t, notifications, 1)
		assert.Equal(t, int64(50), notifications[0].XP)
	})

	t.Run("second open request conflicts while one is pending", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedLadder(t, testDB.Pool)
		sellerID := SeedSeller(t, testDB.Pool, 0, "Newbie")
		orderID := SeedOrder(t, testDB.Pool, uuid.New(), sellerID, "ACTIVE")

		_, err := svc.OpenRequest(ctx, orderID, sellerID)
		require.NoError(t, err)

		_, err = svc.OpenRequest(ctx, orderID, sellerID)
		assert.ErrorIs(t, err, model.ErrRequestOpen)
	})

	t.Run("decline leaves order active and allows a new request", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedLadder(t, testDB.Pool)
		sellerID := SeedSeller(t, testDB.Pool, 0, "Newbie")
		clientID := uuid.New()
		orderID := SeedOrder(t, testDB.Pool, clientID, sellerID, "ACTIVE")

		opened, err := svc.OpenRequest(ctx, orderID, sellerID)
		require.NoError(t, err)

		result, err := svc.ResolveRequest(ctx, opened.RequestID, clientID, model.DecisionDecline)
		require.NoError(t, err)
		assert.Equal(t, model.RequestDeclined, result.Status)

		order, err := orderRepo.GetOrder(ctx, orderID)
		require.NoError(t, err)
		assert.Equal(t, model.OrderActive, order.Status)

		// seller XP untouched on decline
		progress, err := progression.GetProgress(ctx, sellerID)
		require.NoError(t, err)
		assert.Equal(t, int64(0), progress.XP)

		_, err = svc.OpenRequest(ctx, orderID, sellerID)
		require.NoError(t, err)
	})

	t.Run("cancel by seller releases the order", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedLadder(t, testDB.Pool)
		sellerID := SeedSeller(t, testDB.Pool, 0, "Newbie")
		orderID := SeedOrder(t, testDB.Pool, uuid.New(), sellerID, "ACTIVE")

		opened, err := svc.OpenRequest(ctx, orderID, sellerID)
		require.NoError(t, err)

		result, err := svc.ResolveRequest(ctx, opened.RequestID, sellerID, model.DecisionCancel)
		require.NoError(t, err)
		assert.Equal(t, model.RequestCancelled, result.Status)
		assert.Nil(t, result.Notify)

		_, err = svc.OpenRequest(ctx, orderID, sellerID)
		require.NoError(t, err)
	})

	t.Run("exactly one concurrent resolution wins", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedLadder(t, testDB.Pool)
		sellerID := SeedSeller(t, testDB.Pool, 0, "Newbie")
		clientID := uuid.New()
		orderID := SeedOrder(t, testDB.Pool, clientID, sellerID, "ACTIVE")

		opened, err := svc.OpenRequest(ctx, orderID, sellerID)
		require.NoError(t, err)

		const workers = 4
		var wg sync.WaitGroup
		errs := make([]error, workers)

		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = svc.ResolveRequest(ctx, opened.RequestID, clientID, model.DecisionAccept)
			}(i)
		}
		wg.Wait()

		wins := 0
		for _, err := range errs {
			if err == nil {
				wins++
			} else {
				assert.ErrorIs(t, err, model.ErrRequestResolved)
			}
		}
		assert.Equal(t, 1, wins)

		// XP credited exactly once despite the contention.
		progress, err := progression.GetProgress(ctx, sellerID)
		require.NoError(t, err)
		assert.Equal(t, int64(50), progress.XP)
	})

	t.Run("expired request conflicts lazily and the sweep cancels it", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedLadder(t, testDB.Pool)
		sellerID := SeedSeller(t, testDB.Pool, 0, "Newbie")
		clientID := uuid.New()
		orderID := SeedOrder(t, testDB.Pool, clientID, sellerID, "ACTIVE")

		opened, err := svc.OpenRequest(ctx, orderID, sellerID)
		require.NoError(t, err)

		// Step past the window.
		clock.now = clock.now.Add(73 * time.Hour)
		defer func() { clock.now = clock.now.Add(-73 * time.Hour) }()

		_, err = svc.ResolveRequest(ctx, opened.RequestID, clientID, model.DecisionAccept)
		assert.ErrorIs(t, err, model.ErrRequestExpired)

		swept, err := svc.ExpireOpenRequests(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), swept)

		// The sweep frees the order for a new request.
		_, err = svc.OpenRequest(ctx, orderID, sellerID)
		require.NoError(t, err)
	})

	t.Run("non-seller cannot open a request", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedLadder(t, testDB.Pool)
		sellerID := SeedSeller(t, testDB.Pool, 0, "Newbie")
		orderID := SeedOrder(t, testDB.Pool, uuid.New(), sellerID, "ACTIVE")

		_, err := svc.OpenRequest(ctx, orderID, uuid.New())
		assert.ErrorIs(t, err, model.ErrForbidden)
	})

	t.Run("completed order rejects a new request", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedLadder(t, testDB.Pool)
		sellerID := SeedSeller(t, testDB.Pool, 0, "Newbie")
		orderID := SeedOrder(t, testDB.Pool, uuid.New(), sellerID, "COMPLETED")

		_, err := svc.OpenRequest(ctx, orderID, sellerID)
		assert.ErrorIs(t, err, model.ErrOrderNotActive)
	})
}

func TestReview_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	logger := zerolog.Nop()
	reviewRepo := repository.NewReviewRepository(testDB.Pool, logger)
	svc := service.NewReviewService(reviewRepo, service.SystemClock(), logger)

	ctx := context.Background()

	ratings := func(overall float64) model.ReviewRatings {
		return model.ReviewRatings{
			Rating:              overall,
			ServiceAsDescribed:  overall,
			SellerCommunication: overall,
			ServiceDelivery:     overall,
		}
	}

	t.Run("aggregates cover live reviews only", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		postID := uuid.New()
		sellerID := uuid.New()
		reviewerID := uuid.New()

		_, err := svc.RecordReview(ctx, reviewerID, postID, sellerID, ratings(2), "meh")
		require.NoError(t, err)

		// The same reviewer revises: the first review drops out of aggregates.
		_, err = svc.RecordReview(ctx, reviewerID, postID, sellerID, ratings(5), "much better")
		require.NoError(t, err)

		_, err = svc.RecordReview(ctx, uuid.New(), postID, sellerID, ratings(4), "solid")
		require.NoError(t, err)

		summary, err := svc.AggregateRatings(ctx, postID, sellerID)
		require.NoError(t, err)
		assert.Equal(t, 2, summary.ReviewCount)
		assert.InDelta(t, 4.5, summary.Rating, 0.001)
	})

	t.Run("empty pair aggregates to zero", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		summary, err := svc.AggregateRatings(ctx, uuid.New(), uuid.New())
		require.NoError(t, err)
		assert.Equal(t, 0, summary.ReviewCount)
		assert.Equal(t, 0.0, summary.Rating)
	})

	t.Run("histogram buckets by integer part", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		postID := uuid.New()
		sellerID := uuid.New()

		for _, overall := range []float64{4.0, 4.7, 5.0, 3.2} {
			_, err := svc.RecordReview(ctx, uuid.New(), postID, sellerID, ratings(overall), "")
			require.NoError(t, err)
		}

		hist, err := svc.Histogram(ctx, postID, sellerID)
		require.NoError(t, err)
		assert.Equal(t, 1, hist.Three)
		assert.Equal(t, 2, hist.Four)
		assert.Equal(t, 1, hist.Five)
		assert.Equal(t, 4, hist.Total())
	})

	t.Run("helpful votes are idempotent per user", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		postID := uuid.New()
		sellerID := uuid.New()

		reviewID, err := svc.RecordReview(ctx, uuid.New(), postID, sellerID, ratings(5), "")
		require.NoError(t, err)

		voter := uuid.New()
		count, err := svc.MarkHelpful(ctx, reviewID, voter)
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		// Repeat vote from the same user changes nothing.
		count, err = svc.MarkHelpful(ctx, reviewID, voter)
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		count, err = svc.MarkHelpful(ctx, reviewID, uuid.New())
		require.NoError(t, err)
		assert.Equal(t, 2, count)

		count, err = svc.UnmarkHelpful(ctx, reviewID, voter)
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		// Withdrawing again is a no-op.
		count, err = svc.UnmarkHelpful(ctx, reviewID, voter)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})
}
