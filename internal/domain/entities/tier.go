package entities

import "fmt"

// CareTier represents one of the five canonical care-intensity levels.
type CareTier string

const (
	TierNoCareNeeded         CareTier = "no_care_needed"
	TierInHome               CareTier = "in_home"
	TierAssistedLiving       CareTier = "assisted_living"
	TierMemoryCare           CareTier = "memory_care"
	TierMemoryCareHighAcuity CareTier = "memory_care_high_acuity"
)

// tierIntensity defines the load-bearing ordering of the five tiers.
// Gates only ever remove the top two entries, never reorder.
var tierIntensity = map[CareTier]int{
	TierNoCareNeeded:         0,
	TierInHome:               1,
	TierAssistedLiving:       2,
	TierMemoryCare:           3,
	TierMemoryCareHighAcuity: 4,
}

// AllTiers returns the five canonical tiers in ascending intensity order.
func AllTiers() []CareTier {
	return []CareTier{
		TierNoCareNeeded,
		TierInHome,
		TierAssistedLiving,
		TierMemoryCare,
		TierMemoryCareHighAcuity,
	}
}

// ParseTier validates a raw string against the canonical tier values.
func ParseTier(raw string) (CareTier, error) {
	t := CareTier(raw)
	if !t.IsValid() {
		return "", fmt.Errorf("unknown care tier %q", raw)
	}
	return t, nil
}

// IsValid checks if the tier is one of the five canonical values.
func (t CareTier) IsValid() bool {
	_, ok := tierIntensity[t]
	return ok
}

// Intensity returns the position of the tier in the intensity ordering.
func (t CareTier) Intensity() int {
	return tierIntensity[t]
}

// MoreIntensiveThan reports whether t sits above other in the ordering.
func (t CareTier) MoreIntensiveThan(other CareTier) bool {
	return tierIntensity[t] > tierIntensity[other]
}

// IsMemoryCare reports whether the tier is one of the two memory-care tiers.
func (t CareTier) IsMemoryCare() bool {
	return t == TierMemoryCare || t == TierMemoryCareHighAcuity
}

// TierSet is a subset of the five canonical tiers.
type TierSet map[CareTier]struct{}

// NewTierSet builds a set from the given tiers.
func NewTierSet(tiers ...CareTier) TierSet {
	s := make(TierSet, len(tiers))
	for _, t := range tiers {
		s[t] = struct{}{}
	}
	return s
}

// FullTierSet returns a set containing all five tiers.
func FullTierSet() TierSet {
	return NewTierSet(AllTiers()...)
}

// Contains reports set membership.
func (s TierSet) Contains(t CareTier) bool {
	_, ok := s[t]
	return ok
}

// Remove deletes a tier from the set.
func (s TierSet) Remove(t CareTier) {
	delete(s, t)
}

// Sorted returns the members in ascending intensity order.
func (s TierSet) Sorted() []CareTier {
	out := make([]CareTier, 0, len(s))
	for _, t := range AllTiers() {
		if s.Contains(t) {
			out = append(out, t)
		}
	}
	return out
}
