package model

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus is the lifecycle state of an order.
// Once COMPLETED or CANCELLED the status never reverts.
type OrderStatus string

const (
	OrderActive    OrderStatus = "ACTIVE"
	OrderCompleted OrderStatus = "COMPLETED"
	OrderCancelled OrderStatus = "CANCELLED"
)

// RequestStatus is the lifecycle state of a completion request.
// All states except PENDING are terminal.
type RequestStatus string

const (
	RequestPending  RequestStatus = "PENDING"
	RequestAccepted RequestStatus = "ACCEPTED"
	RequestDeclined RequestStatus = "DECLINED"
	RequestCancelled RequestStatus = "CANCELLED"
)

// Decision is a client or seller action against a pending completion request.
type Decision string

const (
	DecisionAccept  Decision = "ACCEPT"
	DecisionDecline Decision = "DECLINE"
	DecisionCancel  Decision = "CANCEL"
)

// ParseDecision validates a raw decision string.
func ParseDecision(s string) (Decision, error) {
	switch Decision(s) {
	case DecisionAccept, DecisionDecline, DecisionCancel:
		return Decision(s), nil
	default:
		return "", ErrInvalidDecision
	}
}

// Order represents a purchase of one package from one seller by a client.
type Order struct {
	ID              uuid.UUID   `json:"id" db:"id"`
	ClientID        uuid.UUID   `json:"clientId" db:"client_id"`
	SellerID        uuid.UUID   `json:"sellerId" db:"seller_id"`
	PackageID       uuid.UUID   `json:"packageId" db:"package_id"`
	SubTotal        float64     `json:"subTotal" db:"sub_total"`
	Total           float64     `json:"total" db:"total"`
	Status          OrderStatus `json:"status" db:"status"`
	DeliveryEndDate time.Time   `json:"deliveryEndDate" db:"delivery_end_date"`
	CreatedAt       time.Time   `json:"createdAt" db:"created_at"`
}

// CompletionRequest is a seller's proposal to mark an order as fulfilled.
// At most one request per order may be PENDING at a time; expires is set at
// creation and never changes.
type CompletionRequest struct {
	ID            uuid.UUID     `json:"id" db:"id"`
	OrderID       uuid.UUID     `json:"orderId" db:"order_id"`
	InitiatorRole string        `json:"initiatorRole" db:"initiator_role"`
	Status        RequestStatus `json:"status" db:"status"`
	Expires       time.Time     `json:"expires" db:"expires"`
	CreatedAt     time.Time     `json:"createdAt" db:"created_at"`
}

// RoleSeller is the only initiator role the engine currently issues.
const RoleSeller = "SELLER"

// OpenRequestResult is returned when a seller opens a completion request.
type OpenRequestResult struct {
	RequestID uuid.UUID `json:"requestId"`
	Expires   time.Time `json:"expires"`
}
