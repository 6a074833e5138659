package repository

import (
	"context"
	"time"

	"gig-market/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// OrderRepository defines data access for orders and their completion requests.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts a new order.
	CreateOrder(ctx context.Context, order *model.Order) error

	// GetOrder retrieves an order by ID. Returns nil when the order does not exist.
	GetOrder(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// GetOrderForUpdate retrieves an order within the transaction, locking the row.
	// Returns nil when the order does not exist.
	GetOrderForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error)

	// UpdateOrderStatus sets the order status within the provided transaction.
	UpdateOrderStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status model.OrderStatus) error

	// CreateCompletionRequest inserts a new completion request within the
	// transaction. A concurrent open request for the same order surfaces as
	// model.ErrRequestOpen via the store's partial unique index.
	CreateCompletionRequest(ctx context.Context, tx pgx.Tx, req *model.CompletionRequest) error

	// GetRequestForUpdate retrieves a completion request within the transaction,
	// locking the row. Returns nil when the request does not exist.
	GetRequestForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.CompletionRequest, error)

	// UpdateRequestStatus sets the request status within the provided transaction.
	UpdateRequestStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status model.RequestStatus) error

	// ExpirePendingRequests cancels every PENDING request whose expiry has
	// passed and returns the number of requests swept.
	ExpirePendingRequests(ctx context.Context, now time.Time) (int64, error)
}

// SellerRepository defines data access for sellers and the level ladder.
type SellerRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// GetSeller retrieves a seller by ID. Returns nil when the seller does not exist.
	GetSeller(ctx context.Context, id uuid.UUID) (*model.Seller, error)

	// GetSellerForUpdate retrieves a seller within the transaction, locking the
	// row so concurrent XP credits serialise. Returns nil when absent.
	GetSellerForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Seller, error)

	// GetLevel retrieves a seller level by name within the transaction.
	// Returns nil when the level does not exist.
	GetLevel(ctx context.Context, tx pgx.Tx, name string) (*model.SellerLevel, error)

	// GetLevelByName retrieves a seller level by name outside any transaction.
	GetLevelByName(ctx context.Context, name string) (*model.SellerLevel, error)

	// UpdateSellerProgress writes the seller's new XP balance and level within
	// the provided transaction.
	UpdateSellerProgress(ctx context.Context, tx pgx.Tx, id uuid.UUID, xp int64, levelName string) error

	// SeedLevels upserts the level ladder. Called once at startup.
	SeedLevels(ctx context.Context, levels []model.SellerLevel) error
}

// ReviewRepository defines data access for reviews and helpful votes.
type ReviewRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// InsertReview inserts a new review within the provided transaction.
	InsertReview(ctx context.Context, tx pgx.Tx, review *model.Review) error

	// SupersedePrior marks the reviewer's live review for the listing as old,
	// returning the number of reviews superseded.
	SupersedePrior(ctx context.Context, tx pgx.Tx, reviewerID, postID uuid.UUID) (int64, error)

	// GetReviewForUpdate retrieves a review within the transaction, locking the
	// row so helpful-count updates serialise. Returns nil when absent.
	GetReviewForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Review, error)

	// InsertHelpfulVote records one user's helpfulness vote. Returns false when
	// the vote already existed.
	InsertHelpfulVote(ctx context.Context, tx pgx.Tx, reviewID, userID uuid.UUID) (bool, error)

	// DeleteHelpfulVote removes one user's helpfulness vote. Returns false when
	// no vote existed.
	DeleteHelpfulVote(ctx context.Context, tx pgx.Tx, reviewID, userID uuid.UUID) (bool, error)

	// AdjustHelpfulCount applies a delta to the review's found-helpful count
	// within the provided transaction.
	AdjustHelpfulCount(ctx context.Context, tx pgx.Tx, reviewID uuid.UUID, delta int) error

	// AggregateRatings computes mean ratings over live reviews of the pair.
	// Zero-valued summary, not an error, when no reviews match.
	AggregateRatings(ctx context.Context, postID, sellerID uuid.UUID) (*model.RatingSummary, error)

	// CountByStar counts live reviews with rating in [star, star+1).
	CountByStar(ctx context.Context, postID, sellerID uuid.UUID, star int) (int, error)
}

// NotificationRepository defines data access for persisted notification records.
type NotificationRepository interface {
	// Insert stores a built notification within the provided transaction.
	Insert(ctx context.Context, tx pgx.Tx, n *model.Notification) error

	// ListForRecipient returns the most recent notifications for a user.
	ListForRecipient(ctx context.Context, recipientID uuid.UUID, limit int) ([]model.Notification, error)
}
