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

// sellerRepository implements the SellerRepository interface using PostgreSQL.
type sellerRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewSellerRepository creates a new PostgreSQL-backed seller repository.
func NewSellerRepository(pool *pgxpool.Pool, logger zerolog.Logger) SellerRepository {
	return &sellerRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "seller").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *sellerRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// GetSeller retrieves a seller by ID.
func (r *sellerRepository) GetSeller(ctx context.Context, id uuid.UUID) (*model.Seller, error) {
	query := `SELECT id, seller_xp, seller_level FROM sellers WHERE id = $1`

	var seller model.Seller
	err := r.pool.QueryRow(ctx, query, id).Scan(&seller.ID, &seller.XP, &seller.LevelName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("seller_id", id.String()).Msg("seller not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("seller_id", id.String()).Msg("failed to query seller")
		return nil, fmt.Errorf("failed to query seller: %w", err)
	}

	return &seller, nil
}

// GetSellerForUpdate retrieves a seller within the transaction, locking the row.
// The lock serialises concurrent XP credits to the same seller.
func (r *sellerRepository) GetSellerForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Seller, error) {
	query := `SELECT id, seller_xp, seller_level FROM sellers WHERE id = $1 FOR UPDATE`

	var seller model.Seller
	err := tx.QueryRow(ctx, query, id).Scan(&seller.ID, &seller.XP, &seller.LevelName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("seller_id", id.String()).Msg("failed to lock seller row")
		return nil, fmt.Errorf("failed to lock seller row: %w", err)
	}

	return &seller, nil
}

const levelColumns = `name, xp_required, next_level`

// scanLevel scans one seller level row.
func scanLevel(row pgx.Row) (*model.SellerLevel, error) {
	var lvl model.SellerLevel
	if err := row.Scan(&lvl.Name, &lvl.XPRequired, &lvl.NextLevel); err != nil {
		return nil, err
	}
	return &lvl, nil
}

// GetLevel retrieves a seller level by name within the transaction.
func (r *sellerRepository) GetLevel(ctx context.Context, tx pgx.Tx, name string) (*model.SellerLevel, error) {
	query := `SELECT ` + levelColumns + ` FROM seller_levels WHERE name = $1`

	lvl, err := scanLevel(tx.QueryRow(ctx, query, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("level", name).Msg("failed to query seller level")
		return nil, fmt.Errorf("failed to query seller level: %w", err)
	}

	return lvl, nil
}

// GetLevelByName retrieves a seller level by name outside any transaction.
func (r *sellerRepository) GetLevelByName(ctx context.Context, name string) (*model.SellerLevel, error) {
	query := `SELECT ` + levelColumns + ` FROM seller_levels WHERE name = $1`

	lvl, err := scanLevel(r.pool.QueryRow(ctx, query, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("level", name).Msg("failed to query seller level")
		return nil, fmt.Errorf("failed to query seller level: %w", err)
	}

	return lvl, nil
}

// UpdateSellerProgress writes the seller's new XP balance and level within the transaction.
func (r *sellerRepository) UpdateSellerProgress(ctx context.Context, tx pgx.Tx, id uuid.UUID, xp int64, levelName string) error {
	query := `UPDATE sellers SET seller_xp = $1, seller_level = $2 WHERE id = $3`

	tag, err := tx.Exec(ctx, query, xp, levelName, id)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("seller_id", id.String()).
			Int64("xp", xp).
			Str("level", levelName).
			Msg("failed to update seller progress")
		return fmt.Errorf("failed to update seller progress: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrSellerNotFound
	}

	r.logger.Debug().
		Str("seller_id", id.String()).
		Int64("xp", xp).
		Str("level", levelName).
		Msg("seller progress updated")

	return nil
}

// SeedLevels upserts the level ladder. Two passes: insert the rows first,
// then wire next_level references, so the self-referencing foreign key is
// satisfiable regardless of ladder order.
func (r *sellerRepository) SeedLevels(ctx context.Context, levels []model.SellerLevel) error {
	tx, err := r.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	insert := `
		INSERT INTO seller_levels (name, xp_required, next_level)
		VALUES ($1, $2, NULL)
		ON CONFLICT (name) DO UPDATE SET xp_required = EXCLUDED.xp_required
	`
	for _, lvl := range levels {
		if _, err := tx.Exec(ctx, insert, lvl.Name, lvl.XPRequired); err != nil {
			r.logger.Error().Err(err).Str("level", lvl.Name).Msg("failed to seed seller level")
			return fmt.Errorf("failed to seed seller level %s: %w", lvl.Name, err)
		}
	}

	link := `UPDATE seller_levels SET next_level = $1 WHERE name = $2`
	for _, lvl := range levels {
		if _, err := tx.Exec(ctx, link, lvl.NextLevel, lvl.Name); err != nil {
			r.logger.Error().Err(err).Str("level", lvl.Name).Msg("failed to link seller level")
			return fmt.Errorf("failed to link seller level %s: %w", lvl.Name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit level seed: %w", err)
	}

	r.logger.Info().Int("levels", len(levels)).Msg("seller level ladder seeded")

	return nil
}
