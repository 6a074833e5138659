package model

import "github.com/google/uuid"

// Seller is a user's selling profile. XP accumulates with completed orders
// and rolls over into the next level when a threshold is crossed; outside
// the rollover transaction the balance is always below the current level's
// threshold (unless the seller is at the terminal level).
type Seller struct {
	ID        uuid.UUID `json:"id" db:"id"`
	XP        int64     `json:"xp" db:"seller_xp"`
	LevelName string    `json:"level" db:"seller_level"`
}

// SellerLevel is one tier of the progression ladder. NextLevel is nil for
// the terminal tier, whose threshold is never evaluated.
type SellerLevel struct {
	Name       string  `json:"name" db:"name"`
	XPRequired int64   `json:"xpRequired" db:"xp_required"`
	NextLevel  *string `json:"nextLevel,omitempty" db:"next_level"`
}

// SellerProgress is the read model exposed to the profile UI.
type SellerProgress struct {
	SellerID   uuid.UUID `json:"sellerId"`
	XP         int64     `json:"xp"`
	Level      string    `json:"level"`
	XPRequired *int64    `json:"xpRequired,omitempty"`
	NextLevel  *string   `json:"nextLevel,omitempty"`
}
