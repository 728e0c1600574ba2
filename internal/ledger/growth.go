package ledger

import (
	"fmt"
	"math"

	"github.com/osse101/PullBot_Go/internal/domain"
)

// Growth is the experience curve between levels
type Growth struct {
	Base   float64
	Factor float64
}

// DefaultGrowth returns the standard curve
func DefaultGrowth() Growth {
	return Growth{Base: DefaultGrowthBase, Factor: DefaultGrowthFactor}
}

// XPToNext returns the experience needed to leave level
func (g Growth) XPToNext(level int) int {
	if level < StartingLevel {
		level = StartingLevel
	}
	return int(math.Floor(g.Base * math.Pow(g.Factor, float64(level-1))))
}

// Validate rejects curves that cannot terminate a cascade
func (g Growth) Validate() error {
	if g.Base < 1 {
		return fmt.Errorf("%w: growth base must be at least 1, got %v", domain.ErrConfigurationDefect, g.Base)
	}
	if g.Factor < 1 {
		return fmt.Errorf("%w: growth factor must be at least 1, got %v", domain.ErrConfigurationDefect, g.Factor)
	}
	return nil
}

// NewState returns a level-1 progression for (userID, character)
func (g Growth) NewState(userID, character string) domain.ProgressionState {
	return domain.ProgressionState{
		UserID:         userID,
		Character:      character,
		Level:          StartingLevel,
		XPToNext:       g.XPToNext(StartingLevel),
		AwardedOneTime: map[string]bool{},
		AwardCounts:    map[string]int{},
	}
}
