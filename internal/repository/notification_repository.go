package repository

import (
	"context"
	"fmt"

	"gig-market/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// notificationRepository implements NotificationRepository using PostgreSQL.
type notificationRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewNotificationRepository creates a new PostgreSQL-backed notification repository.
func NewNotificationRepository(pool *pgxpool.Pool, logger zerolog.Logger) NotificationRepository {
	return &notificationRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "notification").Logger(),
	}
}

// Insert stores a built notification within the provided transaction.
func (r *notificationRepository) Insert(ctx context.Context, tx pgx.Tx, n *model.Notification) error {
	query := `
		INSERT INTO notifications (id, recipient_id, title, text, navigate_to, xp, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := tx.Exec(ctx, query,
		n.ID, n.RecipientID, n.Title, n.Text, n.NavigateTo, n.XP, n.CreatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("notification_id", n.ID.String()).
			Str("recipient_id", n.RecipientID.String()).
			Msg("failed to insert notification")
		return fmt.Errorf("failed to insert notification: %w", err)
	}

	return nil
}

// ListForRecipient returns the most recent notifications for a user.
func (r *notificationRepository) ListForRecipient(ctx context.Context, recipientID uuid.UUID, limit int) ([]model.Notification, error) {
	query := `
		SELECT id, recipient_id, title, text, navigate_to, xp, created_at
		FROM notifications
		WHERE recipient_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, recipientID, limit)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("recipient_id", recipientID.String()).
			Msg("failed to query notifications")
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	var notifications []model.Notification
	for rows.Next() {
		var n model.Notification
		err := rows.Scan(&n.ID, &n.RecipientID, &n.Title, &n.Text, &n.NavigateTo, &n.XP, &n.CreatedAt)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan notification row")
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating notification rows")
		return nil, fmt.Errorf("error iterating notifications: %w", err)
	}

	return notifications, nil
}
