package policy

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/seniornav/careplan/backend/internal/domain/entities"
	"github.com/seniornav/careplan/backend/internal/domain/providers"
	"github.com/seniornav/careplan/backend/internal/engine"
	apperrors "github.com/seniornav/careplan/backend/pkg/errors"
)

// Mediator is the guardrail layer on top of the deterministic engine.
// It re-derives the allowed tiers from the policy gates, computes the
// compound-needs score, applies escalation and preference clamps, then
// consults the LLM under those constraints. It is the canonical
// reconciliation path; the adjudicator's record is kept for
// diagnostics.
type Mediator struct {
	doc     *Document
	advisor providers.TierAdvisor
	logger  *zerolog.Logger
}

// NewMediator creates a mediator. advisor may be nil, in which case
// every decision takes the deterministic path.
func NewMediator(doc *Document, advisor providers.TierAdvisor, logger *zerolog.Logger) *Mediator {
	if doc == nil {
		doc = DefaultDocument()
	}
	return &Mediator{doc: doc, advisor: advisor, logger: logger}
}

// Decide produces the policy decision for an evaluated assessment.
func (m *Mediator) Decide(ctx context.Context, actx *engine.AssessmentContext) (*entities.PolicyDecision, error) {
	decision := &entities.PolicyDecision{
		AssessmentID: actx.AssessmentID,
		DecidedAt:    time.Now().UTC(),
	}

	// Gates are re-derived from flags, independent of the engine's gate.
	mcSatisfied := m.gatesSatisfied(actx.Flags)
	decision.MCGatesSatisfied = mcSatisfied

	allowed := entities.FullTierSet()
	if !mcSatisfied {
		allowed.Remove(entities.TierMemoryCare)
		allowed.Remove(entities.TierMemoryCareHighAcuity)
	}
	decision.AllowedTiers = allowed.Sorted()

	decision.NeedsScore = m.compoundNeeds(actx)

	if note := m.detectUndercount(actx); note != "" {
		decision.AdvisoryNotes = append(decision.AdvisoryNotes, note)
	}

	base := actx.DeterministicTier
	if !allowed.Contains(base) {
		base = highestAllowed(allowed)
	}

	// Escalation may lift a low base tier before the clamp is weighed.
	if escalated, note := m.escalate(actx, base, decision.NeedsScore, allowed); note != "" {
		base = escalated
		decision.AdvisoryNotes = append(decision.AdvisoryNotes, note)
	}

	clampTier, clampApplied := m.evaluateClamp(actx, base, allowed)
	decision.ClampApplied = clampApplied

	effectiveBase := base
	if clampApplied {
		effectiveBase = clampTier
	}
	decision.BaseTier = effectiveBase

	advice := m.consultAdvisor(ctx, actx, allowed, clampTier, clampApplied)

	switch {
	case advice == nil:
		decision.ChosenTier = effectiveBase
		decision.Source = entities.SourceFallback
		if clampApplied {
			decision.Source = entities.SourceClamp
		}

	case clampApplied && advice.Tier.MoreIntensiveThan(clampTier):
		// Clamp enforcement: the stated preference beats the LLM.
		decision.ChosenTier = clampTier
		decision.Source = entities.SourceClamp
		decision.AdvisoryNotes = append(decision.AdvisoryNotes,
			fmt.Sprintf("preference clamp enforced over llm proposal %s", advice.Tier))

	case !allowed.Contains(advice.Tier):
		decision.ChosenTier = effectiveBase
		decision.Source = entities.SourceFallback
		if clampApplied {
			decision.Source = entities.SourceClamp
		}
		decision.AdvisoryNotes = append(decision.AdvisoryNotes,
			fmt.Sprintf("llm tier %s outside allowed set", advice.Tier))

	case advice.Confidence < m.doc.Confidence.MinLLMConfidence:
		decision.ChosenTier = effectiveBase
		decision.Source = entities.SourceFallback
		if clampApplied {
			decision.Source = entities.SourceClamp
		}
		decision.AdvisoryNotes = append(decision.AdvisoryNotes,
			fmt.Sprintf("llm confidence %.2f below minimum %.2f", advice.Confidence, m.doc.Confidence.MinLLMConfidence))

	default:
		decision.ChosenTier = advice.Tier
		decision.Source = entities.SourceLLM
		decision.Confidence = advice.Confidence
		decision.EmpathyScore = advice.EmpathyScore
		decision.Rationale = advice.Rationale
	}

	// A memory-care tier may never survive unsatisfied gates.
	if decision.ChosenTier.IsMemoryCare() && !mcSatisfied {
		decision.ChosenTier = entities.TierAssistedLiving
		decision.Source = entities.SourceFallback
		decision.AdvisoryNotes = append(decision.AdvisoryNotes,
			"memory-care tier downgraded: policy gates not satisfied")
	}

	if !decision.ChosenTier.IsValid() {
		return nil, apperrors.NewInvariantError(
			fmt.Sprintf("non-canonical tier %q reached policy decision", decision.ChosenTier),
		)
	}

	return decision, nil
}

func (m *Mediator) gatesSatisfied(flags entities.FlagSet) bool {
	for _, required := range m.doc.MemoryCareGates.RequiredFlags {
		if !flags.Has(required) {
			return false
		}
	}
	return flags.CountOf(m.doc.MemoryCareGates.QualifyingFlags) >= 1
}

// compoundNeeds computes the weighted needs score, rounded to 1 decimal.
func (m *Mediator) compoundNeeds(actx *engine.AssessmentContext) float64 {
	w := m.doc.NeedsWeights

	badlCount := float64(len(actx.Answers.List(engine.QBADLs)))
	iadlCount := float64(len(actx.Answers.List(engine.QIADLs)))
	chronicCount := float64(len(actx.Answers.List(engine.QChronicConditions)))

	score := badlCount*w.BADL + iadlCount*w.IADL + chronicCount*w.ChronicCondition

	if actx.Flags.Has(entities.FlagMobilityAided) ||
		actx.Flags.Has(entities.FlagMobilityWheelchair) ||
		actx.Flags.Has(entities.FlagMobilityBedbound) {
		score += w.Mobility
	}
	if actx.Flags.Has(entities.FlagFallsMultiple) {
		score += w.Falls
	}
	if actx.Flags.Has(entities.FlagMedComplex) {
		score += w.Medication
	}
	if actx.Flags.Has(entities.FlagIsolationHigh) {
		score += w.Isolation
	}
	if actx.Flags.Has(entities.FlagMemorySeverityModerate) ||
		actx.Flags.Has(entities.FlagMemorySeveritySevere) {
		score += w.Cognition
	}

	if score < 0 {
		score = 0
	}
	return math.Round(score*10) / 10
}

// detectUndercount flags a mismatch between reported need counts and
// reported daily care hours. Returns "" when there is no mismatch.
func (m *Mediator) detectUndercount(actx *engine.AssessmentContext) string {
	needCount := len(actx.Answers.List(engine.QBADLs)) + len(actx.Answers.List(engine.QIADLs))
	if needCount < m.doc.Undercount.NeedThreshold {
		return ""
	}

	hours := actx.Answers.String(engine.QHoursPerDay)
	for _, low := range m.doc.Undercount.LowHourBands {
		if hours == low {
			return fmt.Sprintf(
				"reported care hours (%s) appear low for %d daily-living needs; actual support may be undercounted",
				hours, needCount,
			)
		}
	}
	return ""
}

// escalate lifts a none/in-home base tier to assisted living when the
// needs score, age, and stated preference all qualify. Returns the new
// base and an advisory note, or the original base and "".
func (m *Mediator) escalate(actx *engine.AssessmentContext, base entities.CareTier, needsScore float64, allowed entities.TierSet) (entities.CareTier, string) {
	if base != entities.TierNoCareNeeded && base != entities.TierInHome {
		return base, ""
	}
	if needsScore < m.doc.Escalation.MinNeedsScore {
		return base, ""
	}
	if !allowed.Contains(entities.TierAssistedLiving) {
		return base, ""
	}

	preference := actx.Answers.String(engine.QPreference)
	compatible := false
	for _, p := range m.doc.Escalation.CompatiblePreferences {
		if preference == p {
			compatible = true
			break
		}
	}
	if !compatible {
		return base, ""
	}

	age := actx.Answers.String(engine.QAgeRange)
	qualifies := false
	for _, r := range m.doc.Escalation.QualifyingAgeRanges {
		if age == r {
			qualifies = true
			break
		}
	}
	if !qualifies {
		return base, ""
	}

	return entities.TierAssistedLiving, fmt.Sprintf(
		"escalated %s to %s: compound needs %.1f with qualifying age and preference",
		base, entities.TierAssistedLiving, needsScore,
	)
}

// evaluateClamp applies the stay-home preference clamp unless cognitive
// safety overrides it. The override requires both the severe-cognitive-
// risk flag and memory care remaining in the allowed set.
func (m *Mediator) evaluateClamp(actx *engine.AssessmentContext, base entities.CareTier, allowed entities.TierSet) (entities.CareTier, bool) {
	if actx.Answers.String(engine.QPreference) != m.doc.PreferenceClamp.TriggerPreference {
		return "", false
	}
	if actx.Flags.Has(entities.FlagSevereCognitiveRisk) && allowed.Contains(entities.TierMemoryCare) {
		return "", false
	}

	var target entities.CareTier
	switch {
	case allowed.Contains(entities.TierInHome):
		target = entities.TierInHome
	case allowed.Contains(entities.TierNoCareNeeded):
		target = entities.TierNoCareNeeded
	default:
		return "", false
	}

	if !base.MoreIntensiveThan(target) {
		return "", false
	}
	return target, true
}

// consultAdvisor asks the LLM for a tier under the computed
// constraints. Any failure degrades to nil advice.
func (m *Mediator) consultAdvisor(ctx context.Context, actx *engine.AssessmentContext, allowed entities.TierSet, clampTier entities.CareTier, clampApplied bool) *providers.TierAdvice {
	if m.advisor == nil {
		return nil
	}

	req := &providers.TierAdviceRequest{
		AssessmentID: actx.AssessmentID,
		Answers:      actx.Answers,
		Flags:        actx.Flags,
		Bands:        actx.Bands,
		TotalScore:   actx.TotalScore,
		AllowedTiers: allowed.Sorted(),
	}
	if clampApplied {
		clamp := clampTier
		req.ClampTier = &clamp
	}

	advice, err := m.advisor.RecommendTier(ctx, req)
	if err != nil {
		if m.logger != nil {
			m.logger.Warn().Err(err).
				Str("assessment_id", actx.AssessmentID).
				Msg("tier advisor unavailable, using deterministic path")
		}
		return nil
	}
	return advice
}

func highestAllowed(allowed entities.TierSet) entities.CareTier {
	for _, t := range engine.DeterministicPreference {
		if allowed.Contains(t) {
			return t
		}
	}
	return entities.TierInHome
}
