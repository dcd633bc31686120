package engine

import (
	"testing"

	"github.com/seniornav/careplan/backend/internal/domain/entities"
	"github.com/seniornav/careplan/backend/internal/domain/providers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func evaluated(t *testing.T, answers entities.AnswerSet) *AssessmentContext {
	t.Helper()
	return NewDefaultEngine().Evaluate("test-assessment", answers)
}

func TestAdjudicatorAcceptsAllowedLLMTier(t *testing.T) {
	actx := evaluated(t, entities.AnswerSet{
		QMemoryChanges: "mild",
		QBADLs:         []string{"bathing", "dressing"},
	})

	advice := &providers.TierAdvice{Tier: entities.TierInHome, Confidence: 0.4}
	decision, err := NewAdjudicator().Decide(actx, advice)
	require.NoError(t, err)

	// Low confidence does not matter here: any allowed LLM tier wins.
	assert.Equal(t, entities.TierInHome, decision.ChosenTier)
	assert.Equal(t, entities.SourceLLM, decision.Source)
	require.NotNil(t, decision.LLMConfidence)
	assert.Equal(t, 0.4, *decision.LLMConfidence)
}

func TestAdjudicatorRejectsDisallowedLLMTier(t *testing.T) {
	// No diagnosis, so the memory tiers are out of the allowed set.
	actx := evaluated(t, entities.AnswerSet{
		QMemoryChanges: "severe",
		QBehaviors:     []string{"wandering", "aggression"},
	})
	require.False(t, actx.GatePassed)

	advice := &providers.TierAdvice{Tier: entities.TierMemoryCare, Confidence: 0.95}
	decision, err := NewAdjudicator().Decide(actx, advice)
	require.NoError(t, err)

	assert.Equal(t, actx.DeterministicTier, decision.ChosenTier)
	assert.Equal(t, entities.SourceFallback, decision.Source)
	assert.False(t, decision.ChosenTier.IsMemoryCare())
}

func TestAdjudicatorFallsBackWithoutAdvice(t *testing.T) {
	actx := evaluated(t, entities.AnswerSet{
		QMemoryChanges: "mild",
		QBADLs:         []string{"bathing", "dressing"},
	})

	decision, err := NewAdjudicator().Decide(actx, nil)
	require.NoError(t, err)

	assert.Equal(t, actx.DeterministicTier, decision.ChosenTier)
	assert.Equal(t, entities.SourceFallback, decision.Source)
	assert.Nil(t, decision.LLMTier)
}

func TestAdjudicatorSafetyOverride(t *testing.T) {
	actx := evaluated(t, entities.AnswerSet{QMemoryChanges: "mild"})
	require.False(t, actx.GatePassed)

	// Force a memory-care deterministic candidate to exercise the
	// override directly.
	actx.DeterministicTier = entities.TierMemoryCare

	decision, err := NewAdjudicator().Decide(actx, nil)
	require.NoError(t, err)

	assert.Equal(t, entities.TierAssistedLiving, decision.ChosenTier)
	assert.Equal(t, entities.SourceFallback, decision.Source)
}

func TestEndToEndModerateNeedsScenario(t *testing.T) {
	answers := entities.AnswerSet{
		QMemoryChanges:     "mild",
		QBADLs:             []string{"bathing", "dressing"},
		QFalls:             "one",
		QMobility:          "cane_or_walker",
		QIADLs:             []string{"meal_prep", "finances"},
		QMedManagement:     "complex",
		QHoursPerDay:       "1-3h",
		QSocialContact:     "weekly",
		QChronicConditions: []string{"diabetes"},
	}

	actx := NewDefaultEngine().Evaluate("e2e", answers)

	assert.Equal(t, 18.0, actx.TotalScore)
	assert.Equal(t, entities.CognitionMild, actx.Bands.Cognition)
	assert.Equal(t, entities.SupportHigh, actx.Bands.Support)
	assert.False(t, actx.GatePassed)
	assert.False(t, actx.AllowedTiers.Contains(entities.TierMemoryCare))
	assert.False(t, actx.AllowedTiers.Contains(entities.TierMemoryCareHighAcuity))

	decision, err := NewAdjudicator().Decide(actx, nil)
	require.NoError(t, err)
	assert.Equal(t, entities.TierAssistedLiving, decision.ChosenTier)
	assert.Equal(t, entities.SourceFallback, decision.Source)
}

func TestEvaluateNeverFailsOnMalformedAnswers(t *testing.T) {
	actx := NewDefaultEngine().Evaluate("garbage", entities.AnswerSet{
		QMemoryChanges: 42,
		QBADLs:         map[string]string{"not": "a list"},
		"unknown":      "question",
	})

	assert.Equal(t, 0.0, actx.TotalScore)
	assert.True(t, actx.DeterministicTier.IsValid())
}
