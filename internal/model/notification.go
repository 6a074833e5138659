package model

import (
	"time"

	"github.com/google/uuid"
)

// Notification is the persisted record of a payload built for a recipient.
// Delivery is entirely the caller's concern; the engine only constructs
// and stores these.
type Notification struct {
	ID          uuid.UUID `json:"id" db:"id"`
	RecipientID uuid.UUID `json:"recipientId" db:"recipient_id"`
	Title       string    `json:"title" db:"title"`
	Text        string    `json:"text" db:"text"`
	NavigateTo  string    `json:"navigateTo" db:"navigate_to"`
	XP          int64     `json:"xp" db:"xp"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}
