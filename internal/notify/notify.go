package notify

import (
	"context"
	"fmt"
	"time"

	"gig-market/internal/model"

	"github.com/google/uuid"
)

// Payload is the notification body handed to the delivery layer.
type Payload struct {
	Title      string `json:"title"`
	Text       string `json:"text"`
	NavigateTo string `json:"navigateTo"`
	XP         int64  `json:"xp"`
}

// Envelope pairs a payload with its recipient. SocketID is set by callers
// that track live connections; the engine itself never resolves sockets.
type Envelope struct {
	RecipientUserID uuid.UUID `json:"recipientUserId"`
	SocketID        *string   `json:"socketId,omitempty"`
	Notification    Payload   `json:"notification"`
}

// Dispatcher hands a built envelope to an external delivery transport.
// Dispatch failures must never fail the state transition that produced the
// envelope; the notification record is already committed by then.
type Dispatcher interface {
	Dispatch(ctx context.Context, env Envelope) error
	Close() error
}

// NewOrderCompleted builds the notification persisted and dispatched to the
// seller when a completion request is accepted.
func NewOrderCompleted(order *model.Order, xp int64, now time.Time) (*model.Notification, Envelope) {
	payload := Payload{
		Title:      "Order completed",
		Text:       fmt.Sprintf("Your completion request was accepted. You earned %d XP.", xp),
		NavigateTo: "/orders/" + order.ID.String(),
		XP:         xp,
	}
	return newNotification(order.SellerID, payload, now), Envelope{
		RecipientUserID: order.SellerID,
		Notification:    payload,
	}
}

// NewRequestDeclined builds the notification persisted and dispatched to the
// seller when the client declines a completion request.
func NewRequestDeclined(order *model.Order, now time.Time) (*model.Notification, Envelope) {
	payload := Payload{
		Title:      "Completion request declined",
		Text:       "The client declined your completion request. The order stays active.",
		NavigateTo: "/orders/" + order.ID.String(),
	}
	return newNotification(order.SellerID, payload, now), Envelope{
		RecipientUserID: order.SellerID,
		Notification:    payload,
	}
}

func newNotification(recipient uuid.UUID, payload Payload, now time.Time) *model.Notification {
	return &model.Notification{
		ID:          uuid.New(),
		RecipientID: recipient,
		Title:       payload.Title,
		Text:        payload.Text,
		NavigateTo:  payload.NavigateTo,
		XP:          payload.XP,
		CreatedAt:   now,
	}
}

// nopDispatcher drops envelopes. Used when no delivery transport is configured.
type nopDispatcher struct{}

// NewNopDispatcher creates a dispatcher that discards every envelope.
func NewNopDispatcher() Dispatcher {
	return nopDispatcher{}
}

func (nopDispatcher) Dispatch(context.Context, Envelope) error { return nil }
func (nopDispatcher) Close() error                             { return nil }
