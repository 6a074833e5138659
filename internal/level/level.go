package level

import (
	"context"
	"fmt"

	"gig-market/internal/model"
)

// Tier is one rung of the seller progression ladder as defined in the
// ladder file. XPRequired is the threshold to advance *from* this tier;
// the terminal tier carries no threshold.
type Tier struct {
	Name       string `json:"name"`
	XPRequired int64  `json:"xpRequired,omitempty"`
}

// Ladder is an ordered list of tiers, lowest first. The last tier is
// terminal: sellers at it accumulate XP without ever advancing.
type Ladder struct {
	Tiers []Tier `json:"tiers"`
}

// Loader defines the interface for loading a ladder definition file.
type Loader interface {
	// Load reads a JSON ladder file and returns the parsed Ladder.
	Load(ctx context.Context, filePath string) (Ladder, error)
}

// Default returns the compiled-in ladder used when no file is configured.
func Default() Ladder {
	return Ladder{Tiers: []Tier{
		{Name: "Newbie", XPRequired: 250},
		{Name: "Amateur", XPRequired: 500},
		{Name: "Highly Rated", XPRequired: 1000},
		{Name: "Guru"},
	}}
}

// Validate checks the structural invariants of the ladder: at least one
// tier, unique non-empty names, strictly increasing positive thresholds,
// and no threshold on the terminal tier.
func (l Ladder) Validate() error {
	if len(l.Tiers) == 0 {
		return fmt.Errorf("ladder must contain at least one tier")
	}

	seen := make(map[string]bool, len(l.Tiers))
	var prev int64
	for i, tier := range l.Tiers {
		if tier.Name == "" {
			return fmt.Errorf("tier %d: name is required", i)
		}
		if seen[tier.Name] {
			return fmt.Errorf("tier %d: duplicate name %q", i, tier.Name)
		}
		seen[tier.Name] = true

		terminal := i == len(l.Tiers)-1
		if terminal {
			if tier.XPRequired != 0 {
				return fmt.Errorf("terminal tier %q must not carry an XP threshold", tier.Name)
			}
			continue
		}

		if tier.XPRequired <= 0 {
			return fmt.Errorf("tier %q: XP threshold must be positive", tier.Name)
		}
		if tier.XPRequired <= prev {
			return fmt.Errorf("tier %q: XP threshold %d must exceed previous threshold %d",
				tier.Name, tier.XPRequired, prev)
		}
		prev = tier.XPRequired
	}

	return nil
}

// Levels converts the ladder into persistable SellerLevel records with
// next-level references wired up.
func (l Ladder) Levels() []model.SellerLevel {
	levels := make([]model.SellerLevel, len(l.Tiers))
	for i, tier := range l.Tiers {
		levels[i] = model.SellerLevel{
			Name:       tier.Name,
			XPRequired: tier.XPRequired,
		}
		if i < len(l.Tiers)-1 {
			next := l.Tiers[i+1].Name
			levels[i].NextLevel = &next
		}
	}
	return levels
}

// Entry returns the name of the lowest tier, assigned to new sellers.
func (l Ladder) Entry() string {
	return l.Tiers[0].Name
}
