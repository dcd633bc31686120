package engine

import (
	"github.com/seniornav/careplan/backend/internal/domain/entities"
)

// BandClassifier derives the cognition and support-need bands from raw
// answers, independent of the point score.
type BandClassifier struct{}

// NewBandClassifier creates the classifier.
func NewBandClassifier() *BandClassifier {
	return &BandClassifier{}
}

// CognitionBand classifies memory-change severity and risky behaviors.
func (c *BandClassifier) CognitionBand(answers entities.AnswerSet, flags entities.FlagSet) entities.CognitionBand {
	severity := answers.String(QMemoryChanges)
	riskyCount := flags.CountOf(entities.RiskyBehaviorFlags)

	switch {
	case severity == "severe" || riskyCount >= 2:
		return entities.CognitionHigh
	case severity == "moderate" || riskyCount == 1:
		return entities.CognitionModerate
	case severity == "mild":
		return entities.CognitionMild
	default:
		return entities.CognitionNone
	}
}

// SupportBand classifies support need from mobility, ADL deficits,
// falls, and medication complexity.
func (c *BandClassifier) SupportBand(answers entities.AnswerSet, flags entities.FlagSet) entities.SupportBand {
	mobility := answers.String(QMobility)
	badlCount := len(answers.List(QBADLs))
	iadlCount := len(answers.List(QIADLs))
	anyFalls := flags.Has(entities.FlagFallsOne) || flags.Has(entities.FlagFallsMultiple)

	switch {
	case mobility == "wheelchair" || mobility == "bedbound":
		return entities.Support24h
	case badlCount >= 3 && flags.Has(entities.FlagFallsMultiple):
		return entities.Support24h
	case badlCount >= 2:
		return entities.SupportHigh
	case mobility == "cane_or_walker" && anyFalls:
		return entities.SupportHigh
	case iadlCount >= 2 || badlCount >= 1 || flags.Has(entities.FlagMedComplex):
		return entities.SupportModerate
	default:
		return entities.SupportLow
	}
}

// Bands derives the full band summary, including the routing-safe
// support band used for tier-table lookup.
func (c *BandClassifier) Bands(answers entities.AnswerSet, flags entities.FlagSet) entities.BandSummary {
	support := c.SupportBand(answers, flags)
	return entities.BandSummary{
		Cognition:      c.CognitionBand(answers, flags),
		Support:        support,
		RoutingSupport: support.Routing(),
	}
}
