package evaluation

import (
	"github.com/seniornav/careplan/backend/internal/domain/entities"
)

// TierDistance returns the number of intensity steps between two tiers.
// Adjacent tiers are distance 1; identical tiers are distance 0.
func TierDistance(a, b entities.CareTier) int {
	d := a.Intensity() - b.Intensity()
	if d < 0 {
		d = -d
	}
	return d
}

// IsSafetyViolation reports whether a chosen tier breaks the memory-care
// safety invariant: a memory-care tier with the gate closed.
func IsSafetyViolation(chosen entities.CareTier, gatePassed bool) bool {
	return chosen.IsMemoryCare() && !gatePassed
}
