package service

import (
	"context"
	"time"

	"gig-market/internal/model"
	"gig-market/internal/notify"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Clock supplies the current time. Injected so expiry evaluation is
// deterministic under test.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by the wall clock.
func SystemClock() Clock { return systemClock{} }

// ProgressionService owns the seller XP balance and level. Every write to
// seller_xp/seller_level goes through it.
type ProgressionService interface {
	// CreditXP applies a positive XP delta to the seller in its own
	// transaction, advancing at most one level when the current threshold is
	// reached and carrying the remainder forward.
	CreditXP(ctx context.Context, sellerID uuid.UUID, amount int64) (*model.Seller, error)

	// CreditXPInTx applies the credit inside the caller's transaction so a
	// paired mutation (marking an order completed) commits or rolls back with it.
	CreditXPInTx(ctx context.Context, tx pgx.Tx, sellerID uuid.UUID, amount int64) (*model.Seller, error)

	// GetProgress returns the seller's XP, level and next-level threshold.
	GetProgress(ctx context.Context, sellerID uuid.UUID) (*model.SellerProgress, error)
}

// ResolveResult reports the terminal status reached by a resolution and,
// for transitions that notify the seller, the envelope to hand to delivery.
type ResolveResult struct {
	Status model.RequestStatus `json:"status"`
	Notify *notify.Envelope    `json:"notify,omitempty"`
}

// CompletionService governs the lifecycle of order completion requests.
type CompletionService interface {
	// OpenRequest creates a PENDING completion request for the order on
	// behalf of its seller.
	OpenRequest(ctx context.Context, orderID, sellerID uuid.UUID) (*model.OpenRequestResult, error)

	// ResolveRequest applies a client accept/decline or seller cancel to a
	// PENDING request. Exactly one resolution ever succeeds per request;
	// losers observe a conflict.
	ResolveRequest(ctx context.Context, requestID, actorID uuid.UUID, decision model.Decision) (*ResolveResult, error)

	// ExpireOpenRequests cancels PENDING requests past their expiry. Intended
	// for a periodic external sweep; lazy expiry checks in ResolveRequest are
	// authoritative regardless.
	ExpireOpenRequests(ctx context.Context) (int64, error)
}

// ReviewService maintains review aggregates and helpfulness votes.
type ReviewService interface {
	// RecordReview supersedes the reviewer's prior review for the listing, if
	// any, and inserts the new one.
	RecordReview(ctx context.Context, reviewerID, postID, sellerID uuid.UUID, ratings model.ReviewRatings, body string) (uuid.UUID, error)

	// AggregateRatings computes mean ratings over the pair's live reviews.
	AggregateRatings(ctx context.Context, postID, sellerID uuid.UUID) (*model.RatingSummary, error)

	// CountByStar counts live reviews with rating in [star, star+1).
	CountByStar(ctx context.Context, postID, sellerID uuid.UUID, star int) (int, error)

	// Histogram builds the five-bucket star histogram for the pair.
	Histogram(ctx context.Context, postID, sellerID uuid.UUID) (*model.StarHistogram, error)

	// MarkHelpful records one user's helpfulness vote, idempotently.
	// Returns the review's resulting found-helpful count.
	MarkHelpful(ctx context.Context, reviewID, userID uuid.UUID) (int, error)

	// UnmarkHelpful withdraws one user's helpfulness vote, idempotently.
	// Returns the review's resulting found-helpful count.
	UnmarkHelpful(ctx context.Context, reviewID, userID uuid.UUID) (int, error)
}
