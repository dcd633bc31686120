package entities

import "sort"

// Canonical flag identifiers derived from questionnaire answers.
const (
	FlagDiagnosisConfirmed     = "diagnosis_confirmed"
	FlagMemorySeverityModerate = "memory_severity_moderate"
	FlagMemorySeveritySevere   = "memory_severity_severe"
	FlagWandering              = "wandering"
	FlagElopement              = "elopement"
	FlagAggression             = "aggression"
	FlagSevereSundowning       = "severe_sundowning"
	FlagSevereCognitiveRisk    = "severe_cognitive_risk"
	FlagFallsOne               = "falls_one"
	FlagFallsMultiple          = "falls_multiple"
	FlagMobilityAided          = "mobility_aided"
	FlagMobilityWheelchair     = "mobility_wheelchair"
	FlagMobilityBedbound       = "mobility_bedbound"
	FlagMedComplex             = "med_complex"
	FlagIsolationHigh          = "isolation_high"
)

// KnownFlags is the flag vocabulary. Flags arriving from outside the
// engine are validated against it at the boundary.
var KnownFlags = map[string]struct{}{
	FlagDiagnosisConfirmed:     {},
	FlagMemorySeverityModerate: {},
	FlagMemorySeveritySevere:   {},
	FlagWandering:              {},
	FlagElopement:              {},
	FlagAggression:             {},
	FlagSevereSundowning:       {},
	FlagSevereCognitiveRisk:    {},
	FlagFallsOne:               {},
	FlagFallsMultiple:          {},
	FlagMobilityAided:          {},
	FlagMobilityWheelchair:     {},
	FlagMobilityBedbound:       {},
	FlagMedComplex:             {},
	FlagIsolationHigh:          {},
}

// RiskyBehaviorFlags are the behavior flags that can open the
// cognitive/behavioral gate alongside a confirmed diagnosis.
var RiskyBehaviorFlags = []string{
	FlagWandering,
	FlagElopement,
	FlagAggression,
	FlagSevereSundowning,
}

// FlagSet is a set of derived flag identifiers.
type FlagSet map[string]struct{}

// NewFlagSet builds a set from the given flags, dropping anything outside
// the known vocabulary.
func NewFlagSet(flags ...string) FlagSet {
	s := make(FlagSet, len(flags))
	for _, f := range flags {
		if _, ok := KnownFlags[f]; ok {
			s[f] = struct{}{}
		}
	}
	return s
}

// Has reports flag membership.
func (s FlagSet) Has(flag string) bool {
	_, ok := s[flag]
	return ok
}

// Add inserts a flag if it is part of the known vocabulary.
func (s FlagSet) Add(flag string) {
	if _, ok := KnownFlags[flag]; ok {
		s[flag] = struct{}{}
	}
}

// CountOf returns how many of the given flags are present.
func (s FlagSet) CountOf(flags []string) int {
	n := 0
	for _, f := range flags {
		if s.Has(f) {
			n++
		}
	}
	return n
}

// Sorted returns the members in lexical order, for stable logging and
// serialization.
func (s FlagSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for f := range s {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}
