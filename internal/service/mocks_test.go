package service

import (
	"context"
	"time"

	"gig-market/internal/model"
	"gig-market/internal/notify"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/mock"
)

// MockOrderRepository is a mock implementation of repository.OrderRepository.
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if tx, ok := args.Get(0).(pgx.Tx); ok {
		return tx, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) CreateOrder(ctx context.Context, order *model.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) GetOrder(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) GetOrderForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) UpdateOrderStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status model.OrderStatus) error {
	args := m.Called(ctx, tx, id, status)
	return args.Error(0)
}

func (m *MockOrderRepository) CreateCompletionRequest(ctx context.Context, tx pgx.Tx, req *model.CompletionRequest) error {
	args := m.Called(ctx, tx, req)
	return args.Error(0)
}

func (m *MockOrderRepository) GetRequestForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.CompletionRequest, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CompletionRequest), args.Error(1)
}

func (m *MockOrderRepository) UpdateRequestStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status model.RequestStatus) error {
	args := m.Called(ctx, tx, id, status)
	return args.Error(0)
}

func (m *MockOrderRepository) ExpirePendingRequests(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

// MockSellerRepository is a mock implementation of repository.SellerRepository.
type MockSellerRepository struct {
	mock.Mock
}

func (m *MockSellerRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if tx, ok := args.Get(0).(pgx.Tx); ok {
		return tx, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSellerRepository) GetSeller(ctx context.Context, id uuid.UUID) (*model.Seller, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Seller), args.Error(1)
}

func (m *MockSellerRepository) GetSellerForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Seller, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Seller), args.Error(1)
}

func (m *MockSellerRepository) GetLevel(ctx context.Context, tx pgx.Tx, name string) (*model.SellerLevel, error) {
	args := m.Called(ctx, tx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SellerLevel), args.Error(1)
}

func (m *MockSellerRepository) GetLevelByName(ctx context.Context, name string) (*model.SellerLevel, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SellerLevel), args.Error(1)
}

func (m *MockSellerRepository) UpdateSellerProgress(ctx context.Context, tx pgx.Tx, id uuid.UUID, xp int64, levelName string) error {
	args := m.Called(ctx, tx, id, xp, levelName)
	return args.Error(0)
}

func (m *MockSellerRepository) SeedLevels(ctx context.Context, levels []model.SellerLevel) error {
	args := m.Called(ctx, levels)
	return args.Error(0)
}

// MockReviewRepository is a mock implementation of repository.ReviewRepository.
type MockReviewRepository struct {
	mock.Mock
}

func (m *MockReviewRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if tx, ok := args.Get(0).(pgx.Tx); ok {
		return tx, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockReviewRepository) InsertReview(ctx context.Context, tx pgx.Tx, review *model.Review) error {
	args := m.Called(ctx, tx, review)
	return args.Error(0)
}

func (m *MockReviewRepository) SupersedePrior(ctx context.Context, tx pgx.Tx, reviewerID, postID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tx, reviewerID, postID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReviewRepository) GetReviewForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Review, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Review), args.Error(1)
}

func (m *MockReviewRepository) InsertHelpfulVote(ctx context.Context, tx pgx.Tx, reviewID, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, tx, reviewID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockReviewRepository) DeleteHelpfulVote(ctx context.Context, tx pgx.Tx, reviewID, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, tx, reviewID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockReviewRepository) AdjustHelpfulCount(ctx context.Context, tx pgx.Tx, reviewID uuid.UUID, delta int) error {
	args := m.Called(ctx, tx, reviewID, delta)
	return args.Error(0)
}

func (m *MockReviewRepository) AggregateRatings(ctx context.Context, postID, sellerID uuid.UUID) (*model.RatingSummary, error) {
	args := m.Called(ctx, postID, sellerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RatingSummary), args.Error(1)
}

func (m *MockReviewRepository) CountByStar(ctx context.Context, postID, sellerID uuid.UUID, star int) (int, error) {
	args := m.Called(ctx, postID, sellerID, star)
	return args.Int(0), args.Error(1)
}

// MockNotificationRepository is a mock implementation of repository.NotificationRepository.
type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Insert(ctx context.Context, tx pgx.Tx, n *model.Notification) error {
	args := m.Called(ctx, tx, n)
	return args.Error(0)
}

func (m *MockNotificationRepository) ListForRecipient(ctx context.Context, recipientID uuid.UUID, limit int) ([]model.Notification, error) {
	args := m.Called(ctx, recipientID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Notification), args.Error(1)
}

// MockDispatcher is a mock implementation of notify.Dispatcher.
type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Dispatch(ctx context.Context, env notify.Envelope) error {
	args := m.Called(ctx, env)
	return args.Error(0)
}

func (m *MockDispatcher) Close() error {
	args := m.Called()
	return args.Error(0)
}

// fixedClock returns a constant time for deterministic expiry checks.
type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

// MockTx is a minimal mock implementation of pgx.Tx for testing.
type MockTx struct {
	mock.Mock
	committed  bool
	rolledBack bool
}

func (m *MockTx) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	m.committed = true
	return args.Error(0)
}

func (m *MockTx) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	m.rolledBack = true
	return args.Error(0)
}

// Stub methods to satisfy pgx.Tx interface - these are not used in our tests
func (m *MockTx) Begin(ctx context.Context) (pgx.Tx, error) { return nil, nil }
func (m *MockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (m *MockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (m *MockTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (m *MockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (m *MockTx) Exec(ctx context.Context, sql string, arguments ...any) (commandTag pgconn.CommandTag, err error) {
	return
}
func (m *MockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (m *MockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (m *MockTx) Conn() *pgx.Conn                                               { return nil }
