package model

import "errors"

// ErrorKind classifies a domain error for callers that map failures
// to transport-level responses.
type ErrorKind int

const (
	KindNotFound ErrorKind = iota + 1
	KindForbidden
	KindConflict
	KindValidation
)

// Standard error codes for API responses
const (
	ErrCodeOrderNotFound   = "ORDER_NOT_FOUND"
	ErrCodeRequestNotFound = "REQUEST_NOT_FOUND"
	ErrCodeSellerNotFound  = "SELLER_NOT_FOUND"
	ErrCodeReviewNotFound  = "REVIEW_NOT_FOUND"
	ErrCodeLevelNotFound   = "LEVEL_NOT_FOUND"
	ErrCodeForbidden       = "FORBIDDEN"
	ErrCodeRequestResolved = "REQUEST_ALREADY_RESOLVED"
	ErrCodeRequestExpired  = "REQUEST_EXPIRED"
	ErrCodeRequestOpen     = "REQUEST_ALREADY_OPEN"
	ErrCodeOrderNotActive  = "ORDER_NOT_ACTIVE"
	ErrCodeInvalidXPAmount = "INVALID_XP_AMOUNT"
	ErrCodeInvalidRating   = "INVALID_RATING"
	ErrCodeInvalidStar     = "INVALID_STAR_BUCKET"
	ErrCodeInvalidDecision = "INVALID_DECISION"
	ErrCodeMissingField     = "MISSING_FIELD"
	ErrCodeInvalidJSON      = "INVALID_JSON"
	ErrCodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	ErrCodeInternalError    = "INTERNAL_ERROR"
)

// DomainError is a typed business-logic failure.
type DomainError struct {
	Kind    ErrorKind
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(kind ErrorKind, code, message string) *DomainError {
	return &DomainError{
		Kind:    kind,
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrOrderNotFound   = NewDomainError(KindNotFound, ErrCodeOrderNotFound, "Order not found")
	ErrRequestNotFound = NewDomainError(KindNotFound, ErrCodeRequestNotFound, "Completion request not found")
	ErrSellerNotFound  = NewDomainError(KindNotFound, ErrCodeSellerNotFound, "Seller not found")
	ErrReviewNotFound  = NewDomainError(KindNotFound, ErrCodeReviewNotFound, "Review not found")
	ErrLevelNotFound   = NewDomainError(KindNotFound, ErrCodeLevelNotFound, "Seller level not found")

	ErrForbidden = NewDomainError(KindForbidden, ErrCodeForbidden, "Actor is not authorised for this action")

	ErrRequestResolved = NewDomainError(KindConflict, ErrCodeRequestResolved, "This action is no longer available")
	ErrRequestExpired  = NewDomainError(KindConflict, ErrCodeRequestExpired, "This completion request has expired")
	ErrRequestOpen     = NewDomainError(KindConflict, ErrCodeRequestOpen, "A completion request is already open for this order")
	ErrOrderNotActive  = NewDomainError(KindConflict, ErrCodeOrderNotActive, "Order is not active")

	ErrInvalidXPAmount = NewDomainError(KindValidation, ErrCodeInvalidXPAmount, "XP amount must be greater than zero")
	ErrInvalidRating   = NewDomainError(KindValidation, ErrCodeInvalidRating, "Rating must be between 1 and 5")
	ErrInvalidStar     = NewDomainError(KindValidation, ErrCodeInvalidStar, "Star bucket must be between 1 and 5")
	ErrInvalidDecision = NewDomainError(KindValidation, ErrCodeInvalidDecision, "Decision must be ACCEPT, DECLINE or CANCEL")
)

// isKind reports whether err is a DomainError of the given kind.
func isKind(err error, kind ErrorKind) bool {
	var de *DomainError
	return errors.As(err, &de) && de.Kind == kind
}

// IsNotFound reports whether err is a not-found domain error.
func IsNotFound(err error) bool { return isKind(err, KindNotFound) }

// IsForbidden reports whether err is an authorisation domain error.
func IsForbidden(err error) bool { return isKind(err, KindForbidden) }

// IsConflict reports whether err is a stale-state or concurrency domain error.
func IsConflict(err error) bool { return isKind(err, KindConflict) }

// IsValidation reports whether err is an input-validation domain error.
func IsValidation(err error) bool { return isKind(err, KindValidation) }

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
