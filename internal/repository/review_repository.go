package repository

import (
	"context"
	"errors"
	"fmt"

	"gig-market/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// reviewRepository implements the ReviewRepository interface using PostgreSQL.
type reviewRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewReviewRepository creates a new PostgreSQL-backed review repository.
func NewReviewRepository(pool *pgxpool.Pool, logger zerolog.Logger) ReviewRepository {
	return &reviewRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "review").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *reviewRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// InsertReview inserts a new review within the provided transaction.
func (r *reviewRepository) InsertReview(ctx context.Context, tx pgx.Tx, review *model.Review) error {
	query := `
		INSERT INTO reviews (
			id, post_id, seller_id, reviewer_id,
			rating, service_as_described, seller_communication, service_delivery,
			body, is_old_review, found_helpful_count, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := tx.Exec(ctx, query,
		review.ID, review.PostID, review.SellerID, review.ReviewerID,
		review.Rating, review.ServiceAsDescribed, review.SellerCommunication, review.ServiceDelivery,
		review.Body, review.IsOldReview, review.FoundHelpfulCount, review.CreatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("review_id", review.ID.String()).
			Msg("failed to insert review")
		return fmt.Errorf("failed to insert review: %w", err)
	}

	r.logger.Debug().
		Str("review_id", review.ID.String()).
		Str("post_id", review.PostID.String()).
		Msg("review inserted")

	return nil
}

// SupersedePrior marks the reviewer's live review for the listing as old.
func (r *reviewRepository) SupersedePrior(ctx context.Context, tx pgx.Tx, reviewerID, postID uuid.UUID) (int64, error) {
	query := `
		UPDATE reviews
		SET is_old_review = TRUE
		WHERE reviewer_id = $1 AND post_id = $2 AND is_old_review = FALSE
	`

	tag, err := tx.Exec(ctx, query, reviewerID, postID)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("reviewer_id", reviewerID.String()).
			Str("post_id", postID.String()).
			Msg("failed to supersede prior review")
		return 0, fmt.Errorf("failed to supersede prior review: %w", err)
	}

	return tag.RowsAffected(), nil
}

const reviewColumns = `
	id, post_id, seller_id, reviewer_id,
	rating, service_as_described, seller_communication, service_delivery,
	body, is_old_review, found_helpful_count, created_at
`

// GetReviewForUpdate retrieves a review within the transaction, locking the row.
func (r *reviewRepository) GetReviewForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE id = $1 FOR UPDATE`

	var review model.Review
	err := tx.QueryRow(ctx, query, id).Scan(
		&review.ID, &review.PostID, &review.SellerID, &review.ReviewerID,
		&review.Rating, &review.ServiceAsDescribed, &review.SellerCommunication, &review.ServiceDelivery,
		&review.Body, &review.IsOldReview, &review.FoundHelpfulCount, &review.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("review_id", id.String()).Msg("failed to lock review row")
		return nil, fmt.Errorf("failed to lock review row: %w", err)
	}

	return &review, nil
}

// InsertHelpfulVote records one user's helpfulness vote. The primary key on
// (review_id, user_id) makes a repeated vote a no-op.
func (r *reviewRepository) InsertHelpfulVote(ctx context.Context, tx pgx.Tx, reviewID, userID uuid.UUID) (bool, error) {
	query := `
		INSERT INTO review_helpful_votes (review_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (review_id, user_id) DO NOTHING
	`

	tag, err := tx.Exec(ctx, query, reviewID, userID)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("review_id", reviewID.String()).
			Str("user_id", userID.String()).
			Msg("failed to insert helpful vote")
		return false, fmt.Errorf("failed to insert helpful vote: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// DeleteHelpfulVote removes one user's helpfulness vote.
func (r *reviewRepository) DeleteHelpfulVote(ctx context.Context, tx pgx.Tx, reviewID, userID uuid.UUID) (bool, error) {
	query := `DELETE FROM review_helpful_votes WHERE review_id = $1 AND user_id = $2`

	tag, err := tx.Exec(ctx, query, reviewID, userID)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("review_id", reviewID.String()).
			Str("user_id", userID.String()).
			Msg("failed to delete helpful vote")
		return false, fmt.Errorf("failed to delete helpful vote: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// AdjustHelpfulCount applies a delta to the review's found-helpful count.
func (r *reviewRepository) AdjustHelpfulCount(ctx context.Context, tx pgx.Tx, reviewID uuid.UUID, delta int) error {
	query := `UPDATE reviews SET found_helpful_count = found_helpful_count + $1 WHERE id = $2`

	tag, err := tx.Exec(ctx, query, delta, reviewID)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("review_id", reviewID.String()).
			Int("delta", delta).
			Msg("failed to adjust helpful count")
		return fmt.Errorf("failed to adjust helpful count: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrReviewNotFound
	}

	return nil
}

// AggregateRatings computes mean ratings over live reviews of the pair.
// COALESCE turns the empty-set NULL averages into zeros so the caller never
// sees a division-by-zero artefact.
func (r *reviewRepository) AggregateRatings(ctx context.Context, postID, sellerID uuid.UUID) (*model.RatingSummary, error) {
	query := `
		SELECT
			COUNT(*),
			COALESCE(AVG(rating), 0),
			COALESCE(AVG(service_as_described), 0),
			COALESCE(AVG(seller_communication), 0),
			COALESCE(AVG(service_delivery), 0)
		FROM reviews
		WHERE post_id = $1 AND seller_id = $2 AND is_old_review = FALSE
	`

	var summary model.RatingSummary
	err := r.pool.QueryRow(ctx, query, postID, sellerID).Scan(
		&summary.ReviewCount,
		&summary.Rating,
		&summary.ServiceAsDescribed,
		&summary.SellerCommunication,
		&summary.ServiceDelivery,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("post_id", postID.String()).
			Str("seller_id", sellerID.String()).
			Msg("failed to aggregate ratings")
		return nil, fmt.Errorf("failed to aggregate ratings: %w", err)
	}

	return &summary, nil
}

// CountByStar counts live reviews with rating in [star, star+1).
func (r *reviewRepository) CountByStar(ctx context.Context, postID, sellerID uuid.UUID, star int) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM reviews
		WHERE post_id = $1 AND seller_id = $2 AND is_old_review = FALSE
		  AND rating >= $3 AND rating < $3 + 1
	`

	var count int
	err := r.pool.QueryRow(ctx, query, postID, sellerID, star).Scan(&count)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("post_id", postID.String()).
			Str("seller_id", sellerID.String()).
			Int("star", star).
			Msg("failed to count reviews by star")
		return 0, fmt.Errorf("failed to count reviews by star: %w", err)
	}

	return count, nil
}
