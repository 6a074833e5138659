package service

import (
	"context"
	"fmt"

	"gig-market/internal/model"
	"gig-market/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// reviewService implements ReviewService.
type reviewService struct {
	reviewRepo repository.ReviewRepository
	clock      Clock
	logger     zerolog.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(reviewRepo repository.ReviewRepository, clock Clock, logger zerolog.Logger) ReviewService {
	return &reviewService{
		reviewRepo: reviewRepo,
		clock:      clock,
		logger:     logger.With().Str("service", "review").Logger(),
	}
}

// validRating reports whether a rating lies in the accepted 1..5 range.
func validRating(r float64) bool {
	return r >= 1.0 && r <= 5.0
}

// RecordReview supersedes the reviewer's prior review for the listing, if
// any, and inserts the new one in the same transaction.
func (s *reviewService) RecordReview(ctx context.Context, reviewerID, postID, sellerID uuid.UUID, ratings model.ReviewRatings, body string) (uuid.UUID, error) {
	if !validRating(ratings.Rating) ||
		!validRating(ratings.ServiceAsDescribed) ||
		!validRating(ratings.SellerCommunication) ||
		!validRating(ratings.ServiceDelivery) {
		return uuid.Nil, model.ErrInvalidRating
	}

	tx, err := s.reviewRepo.BeginTx(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to record review: %w", err)
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	var superseded int64
	superseded, err = s.reviewRepo.SupersedePrior(ctx, tx, reviewerID, postID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to record review: %w", err)
	}

	review := &model.Review{
		ID:                  uuid.New(),
		PostID:              postID,
		SellerID:            sellerID,
		ReviewerID:          reviewerID,
		Rating:              ratings.Rating,
		ServiceAsDescribed:  ratings.ServiceAsDescribed,
		SellerCommunication: ratings.SellerCommunication,
		ServiceDelivery:     ratings.ServiceDelivery,
		Body:                body,
		CreatedAt:           s.clock.Now(),
	}

	if err = s.reviewRepo.InsertReview(ctx, tx, review); err != nil {
		return uuid.Nil, fmt.Errorf("failed to record review: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("review_id", review.ID.String()).Msg("failed to commit review")
		return uuid.Nil, fmt.Errorf("failed to record review: %w", err)
	}

	s.logger.Info().
		Str("review_id", review.ID.String()).
		Str("post_id", postID.String()).
		Int64("superseded", superseded).
		Msg("review recorded")

	return review.ID, nil
}

// AggregateRatings computes mean ratings over the pair's live reviews.
func (s *reviewService) AggregateRatings(ctx context.Context, postID, sellerID uuid.UUID) (*model.RatingSummary, error) {
	summary, err := s.reviewRepo.AggregateRatings(ctx, postID, sellerID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate ratings: %w", err)
	}
	return summary, nil
}

// CountByStar counts live reviews with rating in [star, star+1).
func (s *reviewService) CountByStar(ctx context.Context, postID, sellerID uuid.UUID, star int) (int, error) {
	if star < 1 || star > 5 {
		return 0, model.ErrInvalidStar
	}

	count, err := s.reviewRepo.CountByStar(ctx, postID, sellerID, star)
	if err != nil {
		return 0, fmt.Errorf("failed to count reviews by star: %w", err)
	}
	return count, nil
}

// Histogram builds the five-bucket star histogram for the pair.
func (s *reviewService) Histogram(ctx context.Context, postID, sellerID uuid.UUID) (*model.StarHistogram, error) {
	var hist model.StarHistogram
	buckets := []*int{&hist.One, &hist.Two, &hist.Three, &hist.Four, &hist.Five}

	for star := 1; star <= 5; star++ {
		count, err := s.CountByStar(ctx, postID, sellerID, star)
		if err != nil {
			return nil, err
		}
		*buckets[star-1] = count
	}

	return &hist, nil
}

// MarkHelpful records one user's helpfulness vote. A repeat vote from the
// same user leaves the count untouched.
func (s *reviewService) MarkHelpful(ctx context.Context, reviewID, userID uuid.UUID) (int, error) {
	return s.toggleHelpful(ctx, reviewID, userID, true)
}

// UnmarkHelpful withdraws one user's helpfulness vote, idempotently.
func (s *reviewService) UnmarkHelpful(ctx context.Context, reviewID, userID uuid.UUID) (int, error) {
	return s.toggleHelpful(ctx, reviewID, userID, false)
}

func (s *reviewService) toggleHelpful(ctx context.Context, reviewID, userID uuid.UUID, mark bool) (count int, err error) {
	tx, err := s.reviewRepo.BeginTx(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to toggle helpful vote: %w", err)
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	// Lock the review row so vote and count move together.
	review, err := s.reviewRepo.GetReviewForUpdate(ctx, tx, reviewID)
	if err != nil {
		return 0, fmt.Errorf("failed to toggle helpful vote: %w", err)
	}
	if review == nil {
		err = model.ErrReviewNotFound
		return 0, err
	}

	var changed bool
	delta := 0
	if mark {
		changed, err = s.reviewRepo.InsertHelpfulVote(ctx, tx, reviewID, userID)
		delta = 1
	} else {
		changed, err = s.reviewRepo.DeleteHelpfulVote(ctx, tx, reviewID, userID)
		delta = -1
	}
	if err != nil {
		return 0, fmt.Errorf("failed to toggle helpful vote: %w", err)
	}

	count = review.FoundHelpfulCount
	if changed {
		if err = s.reviewRepo.AdjustHelpfulCount(ctx, tx, reviewID, delta); err != nil {
			return 0, fmt.Errorf("failed to toggle helpful vote: %w", err)
		}
		count += delta
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("review_id", reviewID.String()).Msg("failed to commit helpful vote")
		return 0, fmt.Errorf("failed to toggle helpful vote: %w", err)
	}

	s.logger.Debug().
		Str("review_id", reviewID.String()).
		Str("user_id", userID.String()).
		Bool("mark", mark).
		Bool("changed", changed).
		Int("count", count).
		Msg("helpful vote toggled")

	return count, nil
}
