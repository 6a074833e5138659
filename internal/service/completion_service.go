package service

import (
	"context"
	"fmt"
	"time"

	"gig-market/internal/model"
	"gig-market/internal/notify"
	"gig-market/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// CompletionConfig holds tunables of the completion engine.
type CompletionConfig struct {
	// RequestTTL is the validity window of an open completion request.
	RequestTTL time.Duration

	// XPPerOrder is the XP credited to the seller when a completion is accepted.
	XPPerOrder int64
}

// DefaultCompletionConfig returns the default engine configuration.
func DefaultCompletionConfig() CompletionConfig {
	return CompletionConfig{
		RequestTTL: 72 * time.Hour,
		XPPerOrder: 50,
	}
}

// completionService implements CompletionService.
type completionService struct {
	orderRepo   repository.OrderRepository
	notifRepo   repository.NotificationRepository
	progression ProgressionService
	dispatcher  notify.Dispatcher
	clock       Clock
	cfg         CompletionConfig
	logger      zerolog.Logger
}

// NewCompletionService creates a new order completion service.
func NewCompletionService(
	orderRepo repository.OrderRepository,
	notifRepo repository.NotificationRepository,
	progression ProgressionService,
	dispatcher notify.Dispatcher,
	clock Clock,
	cfg CompletionConfig,
	logger zerolog.Logger,
) CompletionService {
	return &completionService{
		orderRepo:   orderRepo,
		notifRepo:   notifRepo,
		progression: progression,
		dispatcher:  dispatcher,
		clock:       clock,
		cfg:         cfg,
		logger:      logger.With().Str("service", "completion").Logger(),
	}
}

// OpenRequest creates a PENDING completion request for the order.
func (s *completionService) OpenRequest(ctx context.Context, orderID, sellerID uuid.UUID) (*model.OpenRequestResult, error) {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open completion request: %w", err)
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	var order *model.Order
	order, err = s.orderRepo.GetOrderForUpdate(ctx, tx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to open completion request: %w", err)
	}
	if order == nil {
		err = model.ErrOrderNotFound
		return nil, err
	}

	if order.SellerID != sellerID {
		s.logger.Warn().
			Str("order_id", orderID.String()).
			Str("actor_id", sellerID.String()).
			Msg("completion request from non-seller rejected")
		err = model.ErrForbidden
		return nil, err
	}

	if order.Status != model.OrderActive {
		err = model.ErrOrderNotActive
		return nil, err
	}

	now := s.clock.Now()
	req := &model.CompletionRequest{
		ID:            uuid.New(),
		OrderID:       orderID,
		InitiatorRole: model.RoleSeller,
		Status:        model.RequestPending,
		Expires:       now.Add(s.cfg.RequestTTL),
		CreatedAt:     now,
	}

	// The partial unique index on open requests turns a concurrent duplicate
	// into model.ErrRequestOpen here.
	if err = s.orderRepo.CreateCompletionRequest(ctx, tx, req); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to commit completion request")
		return nil, fmt.Errorf("failed to open completion request: %w", err)
	}

	s.logger.Info().
		Str("request_id", req.ID.String()).
		Str("order_id", orderID.String()).
		Time("expires", req.Expires).
		Msg("completion request opened")

	return &model.OpenRequestResult{RequestID: req.ID, Expires: req.Expires}, nil
}

// ResolveRequest applies a client accept/decline or seller cancel to a
// PENDING request. The transition, the order update, the XP credit and the
// notification record commit in one transaction; the loser of a concurrent
// resolution observes a conflict, never a partial apply.
func (s *completionService) ResolveRequest(ctx context.Context, requestID, actorID uuid.UUID, decision model.Decision) (*ResolveResult, error) {
	if _, err := model.ParseDecision(string(decision)); err != nil {
		return nil, err
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve completion request: %w", err)
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	var req *model.CompletionRequest
	req, err = s.orderRepo.GetRequestForUpdate(ctx, tx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve completion request: %w", err)
	}
	if req == nil {
		err = model.ErrRequestNotFound
		return nil, err
	}

	var order *model.Order
	order, err = s.orderRepo.GetOrderForUpdate(ctx, tx, req.OrderID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve completion request: %w", err)
	}
	if order == nil {
		err = model.ErrOrderNotFound
		return nil, err
	}

	// Accept/decline belong to the client, cancel to the seller.
	switch decision {
	case model.DecisionAccept, model.DecisionDecline:
		if actorID != order.ClientID {
			err = model.ErrForbidden
			return nil, err
		}
	case model.DecisionCancel:
		if actorID != order.SellerID {
			err = model.ErrForbidden
			return nil, err
		}
	}

	if req.Status != model.RequestPending {
		s.logger.Debug().
			Str("request_id", requestID.String()).
			Str("status", string(req.Status)).
			Msg("transition on resolved request rejected")
		err = model.ErrRequestResolved
		return nil, err
	}

	now := s.clock.Now()
	if now.After(req.Expires) {
		// Expiry is evaluated lazily against the injected clock; the stored
		// status is tidied by the sweep.
		err = model.ErrRequestExpired
		return nil, err
	}

	var result *ResolveResult
	result, err = s.applyResolution(ctx, tx, req, order, decision, now)
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("request_id", requestID.String()).Msg("failed to commit resolution")
		return nil, fmt.Errorf("failed to resolve completion request: %w", err)
	}

	s.logger.Info().
		Str("request_id", requestID.String()).
		Str("order_id", order.ID.String()).
		Str("status", string(result.Status)).
		Msg("completion request resolved")

	// Delivery is best effort once the transition has committed.
	if result.Notify != nil {
		if dispErr := s.dispatcher.Dispatch(ctx, *result.Notify); dispErr != nil {
			s.logger.Error().
				Err(dispErr).
				Str("recipient_id", result.Notify.RecipientUserID.String()).
				Msg("failed to dispatch notification")
		}
	}

	return result, nil
}

// applyResolution performs the state transition and its side effects inside
// the caller's transaction.
func (s *completionService) applyResolution(
	ctx context.Context,
	tx pgx.Tx,
	req *model.CompletionRequest,
	order *model.Order,
	decision model.Decision,
	now time.Time,
) (*ResolveResult, error) {
	switch decision {
	case model.DecisionAccept:
		if err := s.orderRepo.UpdateRequestStatus(ctx, tx, req.ID, model.RequestAccepted); err != nil {
			return nil, err
		}
		if err := s.orderRepo.UpdateOrderStatus(ctx, tx, order.ID, model.OrderCompleted); err != nil {
			return nil, err
		}
		if _, err := s.progression.CreditXPInTx(ctx, tx, order.SellerID, s.cfg.XPPerOrder); err != nil {
			return nil, err
		}

		record, env := notify.NewOrderCompleted(order, s.cfg.XPPerOrder, now)
		if err := s.notifRepo.Insert(ctx, tx, record); err != nil {
			return nil, err
		}
		return &ResolveResult{Status: model.RequestAccepted, Notify: &env}, nil

	case model.DecisionDecline:
		if err := s.orderRepo.UpdateRequestStatus(ctx, tx, req.ID, model.RequestDeclined); err != nil {
			return nil, err
		}

		record, env := notify.NewRequestDeclined(order, now)
		if err := s.notifRepo.Insert(ctx, tx, record); err != nil {
			return nil, err
		}
		return &ResolveResult{Status: model.RequestDeclined, Notify: &env}, nil

	default: // model.DecisionCancel
		if err := s.orderRepo.UpdateRequestStatus(ctx, tx, req.ID, model.RequestCancelled); err != nil {
			return nil, err
		}
		return &ResolveResult{Status: model.RequestCancelled}, nil
	}
}

// ExpireOpenRequests cancels PENDING requests past their expiry.
func (s *completionService) ExpireOpenRequests(ctx context.Context) (int64, error) {
	return s.orderRepo.ExpirePendingRequests(ctx, s.clock.Now())
}
