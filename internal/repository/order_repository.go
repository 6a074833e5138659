package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gig-market/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// pgUniqueViolation is the PostgreSQL error code raised when the partial
// unique index on open completion requests rejects a second PENDING row.
const pgUniqueViolation = "23505"

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// CreateOrder inserts a new order.
func (r *orderRepository) CreateOrder(ctx context.Context, order *model.Order) error {
	query := `
		INSERT INTO orders (id, client_id, seller_id, package_id, sub_total, total, status, delivery_end_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.pool.Exec(ctx, query,
		order.ID, order.ClientID, order.SellerID, order.PackageID,
		order.SubTotal, order.Total, order.Status, order.DeliveryEndDate, order.CreatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Msg("order created successfully")

	return nil
}

const orderColumns = `id, client_id, seller_id, package_id, sub_total, total, status, delivery_end_date, created_at`

// scanOrder scans one order row.
func scanOrder(row pgx.Row) (*model.Order, error) {
	var order model.Order
	err := row.Scan(
		&order.ID,
		&order.ClientID,
		&order.SellerID,
		&order.PackageID,
		&order.SubTotal,
		&order.Total,
		&order.Status,
		&order.DeliveryEndDate,
		&order.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrder retrieves an order by its ID.
func (r *orderRepository) GetOrder(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("order_id", id.String()).Msg("order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	return order, nil
}

// GetOrderForUpdate retrieves an order within the transaction, locking the row.
func (r *orderRepository) GetOrderForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 FOR UPDATE`

	order, err := scanOrder(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to lock order row")
		return nil, fmt.Errorf("failed to lock order row: %w", err)
	}

	return order, nil
}

// UpdateOrderStatus sets the order status within the provided transaction.
func (r *orderRepository) UpdateOrderStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status model.OrderStatus) error {
	query := `UPDATE orders SET status = $1 WHERE id = $2`

	tag, err := tx.Exec(ctx, query, status, id)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", id.String()).
			Str("status", string(status)).
			Msg("failed to update order status")
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrOrderNotFound
	}

	r.logger.Debug().
		Str("order_id", id.String()).
		Str("status", string(status)).
		Msg("order status updated")

	return nil
}

// CreateCompletionRequest inserts a new completion request within the transaction.
func (r *orderRepository) CreateCompletionRequest(ctx context.Context, tx pgx.Tx, req *model.CompletionRequest) error {
	query := `
		INSERT INTO completion_requests (id, order_id, initiator_role, status, expires, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := tx.Exec(ctx, query,
		req.ID, req.OrderID, req.InitiatorRole, req.Status, req.Expires, req.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			r.logger.Debug().
				Str("order_id", req.OrderID.String()).
				Msg("open completion request already exists")
			return model.ErrRequestOpen
		}
		r.logger.Error().
			Err(err).
			Str("order_id", req.OrderID.String()).
			Msg("failed to create completion request")
		return fmt.Errorf("failed to create completion request: %w", err)
	}

	r.logger.Debug().
		Str("request_id", req.ID.String()).
		Str("order_id", req.OrderID.String()).
		Msg("completion request created")

	return nil
}

// GetRequestForUpdate retrieves a completion request within the transaction, locking the row.
func (r *orderRepository) GetRequestForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.CompletionRequest, error) {
	query := `
		SELECT id, order_id, initiator_role, status, expires, created_at
		FROM completion_requests
		WHERE id = $1
		FOR UPDATE
	`

	var req model.CompletionRequest
	err := tx.QueryRow(ctx, query, id).Scan(
		&req.ID,
		&req.OrderID,
		&req.InitiatorRole,
		&req.Status,
		&req.Expires,
		&req.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("request_id", id.String()).Msg("failed to lock completion request row")
		return nil, fmt.Errorf("failed to lock completion request row: %w", err)
	}

	return &req, nil
}

// UpdateRequestStatus sets the request status within the provided transaction.
func (r *orderRepository) UpdateRequestStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status model.RequestStatus) error {
	query := `UPDATE completion_requests SET status = $1 WHERE id = $2`

	tag, err := tx.Exec(ctx, query, status, id)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("request_id", id.String()).
			Str("status", string(status)).
			Msg("failed to update completion request status")
		return fmt.Errorf("failed to update completion request status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrRequestNotFound
	}

	return nil
}

// ExpirePendingRequests cancels every PENDING request whose expiry has passed.
func (r *orderRepository) ExpirePendingRequests(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE completion_requests
		SET status = $1
		WHERE status = $2 AND expires < $3
	`

	tag, err := r.pool.Exec(ctx, query, model.RequestCancelled, model.RequestPending, now)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to expire pending completion requests")
		return 0, fmt.Errorf("failed to expire pending completion requests: %w", err)
	}

	swept := tag.RowsAffected()
	if swept > 0 {
		r.logger.Info().Int64("swept", swept).Msg("expired pending completion requests")
	}

	return swept, nil
}
