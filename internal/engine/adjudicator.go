package engine

import (
	"fmt"
	"time"

	"github.com/seniornav/careplan/backend/internal/domain/entities"
	"github.com/seniornav/careplan/backend/internal/domain/providers"
	apperrors "github.com/seniornav/careplan/backend/pkg/errors"
)

// Adjudicator reconciles the deterministic tier candidate against the
// LLM-proposed tier. The policy is LLM-optimistic: any allowed LLM tier
// wins, and the deterministic logic is purely a backstop for missing,
// invalid, or out-of-policy LLM output.
type Adjudicator struct{}

// NewAdjudicator creates the adjudicator.
func NewAdjudicator() *Adjudicator {
	return &Adjudicator{}
}

// Decide produces the single decision record for an assessment. advice
// may be nil when the LLM was unavailable or its response was
// discarded.
func (a *Adjudicator) Decide(actx *AssessmentContext, advice *providers.TierAdvice) (*entities.AdjudicationDecision, error) {
	decision := &entities.AdjudicationDecision{
		AssessmentID:      actx.AssessmentID,
		DeterministicTier: actx.DeterministicTier,
		AllowedTiers:      actx.AllowedTiers.Sorted(),
		Bands:             actx.Bands,
		GatePassed:        actx.GatePassed,
		TotalScore:        actx.TotalScore,
		DecidedAt:         time.Now().UTC(),
	}

	if advice != nil {
		tier := advice.Tier
		confidence := advice.Confidence
		decision.LLMTier = &tier
		decision.LLMConfidence = &confidence

		if actx.AllowedTiers.Contains(tier) {
			// Rule 1: the LLM wins whenever it proposes any allowed tier.
			// Confidence is recorded for analytics only.
			decision.ChosenTier = tier
			decision.Source = entities.SourceLLM
			decision.Reason = "llm tier accepted within allowed set"
		} else {
			decision.ChosenTier = actx.DeterministicTier
			decision.Source = entities.SourceFallback
			decision.Reason = fmt.Sprintf("llm tier %s outside allowed set", tier)
		}
	} else {
		// Rule 2: no usable LLM output.
		decision.ChosenTier = actx.DeterministicTier
		decision.Source = entities.SourceFallback
		decision.Reason = "llm advice unavailable"
	}

	// Safety override: a memory-care tier may never survive a failed
	// cognitive gate, regardless of source.
	if decision.ChosenTier.IsMemoryCare() && !actx.GatePassed {
		decision.ChosenTier = entities.TierAssistedLiving
		decision.Source = entities.SourceFallback
		decision.Reason = "memory-care tier downgraded: cognitive gate not passed"
	}

	if !decision.ChosenTier.IsValid() {
		return nil, apperrors.NewInvariantError(
			fmt.Sprintf("non-canonical tier %q reached final decision", decision.ChosenTier),
		)
	}

	return decision, nil
}
