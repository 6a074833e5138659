package service

import (
	"context"
	"fmt"

	"gig-market/internal/model"
	"gig-market/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// progressionService implements ProgressionService.
type progressionService struct {
	sellerRepo repository.SellerRepository
	logger     zerolog.Logger
}

// NewProgressionService creates a new seller progression service.
func NewProgressionService(sellerRepo repository.SellerRepository, logger zerolog.Logger) ProgressionService {
	return &progressionService{
		sellerRepo: sellerRepo,
		logger:     logger.With().Str("service", "progression").Logger(),
	}
}

// CreditXP applies a positive XP delta to the seller in its own transaction.
func (s *progressionService) CreditXP(ctx context.Context, sellerID uuid.UUID, amount int64) (*model.Seller, error) {
	tx, err := s.sellerRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to credit XP: %w", err)
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	var seller *model.Seller
	seller, err = s.CreditXPInTx(ctx, tx, sellerID, amount)
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("seller_id", sellerID.String()).Msg("failed to commit XP credit")
		return nil, fmt.Errorf("failed to credit XP: %w", err)
	}

	return seller, nil
}

// CreditXPInTx applies the credit inside the caller's transaction. The
// seller row is read FOR UPDATE, so concurrent credits to the same seller
// serialise instead of losing an update.
//
// The balance rolls over at most one level per call: a credit large enough
// to cross two thresholds leaves the excess stranded below the next one
// until a later credit arrives. That matches the marketplace's historical
// behaviour and the progress maths the profile UI is built on.
func (s *progressionService) CreditXPInTx(ctx context.Context, tx pgx.Tx, sellerID uuid.UUID, amount int64) (*model.Seller, error) {
	if amount <= 0 {
		return nil, model.ErrInvalidXPAmount
	}

	seller, err := s.sellerRepo.GetSellerForUpdate(ctx, tx, sellerID)
	if err != nil {
		return nil, fmt.Errorf("failed to credit XP: %w", err)
	}
	if seller == nil {
		s.logger.Warn().Str("seller_id", sellerID.String()).Msg("XP credit for unknown seller")
		return nil, model.ErrSellerNotFound
	}

	lvl, err := s.sellerRepo.GetLevel(ctx, tx, seller.LevelName)
	if err != nil {
		return nil, fmt.Errorf("failed to credit XP: %w", err)
	}
	if lvl == nil {
		return nil, model.ErrLevelNotFound
	}

	newXP := seller.XP + amount
	newLevel := seller.LevelName

	// Terminal level has no successor: XP accumulates, no threshold applies.
	if lvl.NextLevel != nil && newXP >= lvl.XPRequired {
		newXP -= lvl.XPRequired
		newLevel = *lvl.NextLevel

		s.logger.Info().
			Str("seller_id", sellerID.String()).
			Str("from_level", seller.LevelName).
			Str("to_level", newLevel).
			Int64("carried_xp", newXP).
			Msg("seller levelled up")
	}

	if err := s.sellerRepo.UpdateSellerProgress(ctx, tx, sellerID, newXP, newLevel); err != nil {
		return nil, fmt.Errorf("failed to credit XP: %w", err)
	}

	s.logger.Debug().
		Str("seller_id", sellerID.String()).
		Int64("amount", amount).
		Int64("new_xp", newXP).
		Str("level", newLevel).
		Msg("XP credited")

	return &model.Seller{ID: sellerID, XP: newXP, LevelName: newLevel}, nil
}

// GetProgress returns the seller's XP, level and next-level threshold.
func (s *progressionService) GetProgress(ctx context.Context, sellerID uuid.UUID) (*model.SellerProgress, error) {
	seller, err := s.sellerRepo.GetSeller(ctx, sellerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get seller progress: %w", err)
	}
	if seller == nil {
		return nil, model.ErrSellerNotFound
	}

	lvl, err := s.sellerRepo.GetLevelByName(ctx, seller.LevelName)
	if err != nil {
		return nil, fmt.Errorf("failed to get seller progress: %w", err)
	}
	if lvl == nil {
		return nil, model.ErrLevelNotFound
	}

	progress := &model.SellerProgress{
		SellerID: seller.ID,
		XP:       seller.XP,
		Level:    seller.LevelName,
	}
	if lvl.NextLevel != nil {
		required := lvl.XPRequired
		progress.XPRequired = &required
		progress.NextLevel = lvl.NextLevel
	}

	return progress, nil
}
