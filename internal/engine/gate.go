package engine

import (
	"github.com/seniornav/careplan/backend/internal/domain/entities"
)

// CognitiveGate is the hard safety gate in front of the memory-care
// tiers. It passes only when a formal diagnosis is confirmed AND the
// memory-change severity is moderate/severe or at least one risky
// behavior flag is present. No diagnosis means the gate fails
// unconditionally.
type CognitiveGate struct{}

// NewCognitiveGate creates the gate.
func NewCognitiveGate() *CognitiveGate {
	return &CognitiveGate{}
}

// Passes evaluates the gate against answers and derived flags.
func (g *CognitiveGate) Passes(answers entities.AnswerSet, flags entities.FlagSet) bool {
	if answers.String(QDiagnosis) != "confirmed" {
		return false
	}

	severity := answers.String(QMemoryChanges)
	if severity == "moderate" || severity == "severe" {
		return true
	}

	return flags.CountOf(entities.RiskyBehaviorFlags) >= 1
}

// AllowedTiers computes the allowed-tier set for a gate outcome. The
// two memory-care tiers are removed together, so high-acuity can never
// be allowed without standard memory care.
func (g *CognitiveGate) AllowedTiers(gatePassed bool) entities.TierSet {
	allowed := entities.FullTierSet()
	if !gatePassed {
		allowed.Remove(entities.TierMemoryCare)
		allowed.Remove(entities.TierMemoryCareHighAcuity)
	}
	return allowed
}
