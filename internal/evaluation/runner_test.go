package evaluation

import (
	"context"
	"testing"

	"github.com/seniornav/careplan/backend/internal/domain/entities"
	"github.com/seniornav/careplan/backend/internal/engine"
	"github.com/seniornav/careplan/backend/internal/policy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunnerDeterministicPath(t *testing.T) {
	runner := NewRunner(engine.NewDefaultEngine(), policy.NewMediator(nil, nil, nil))

	goldens := []GoldenAssessment{
		{
			ID: "g-none",
			Answers: entities.AnswerSet{
				engine.QMemoryChanges: "none",
				engine.QFalls:         "none",
				engine.QSocialContact: "daily",
			},
			ExpectedTier: entities.TierNoCareNeeded,
			ExpectGate:   false,
			Difficulty:   "easy",
		},
		{
			ID: "g-moderate",
			Answers: entities.AnswerSet{
				engine.QMemoryChanges:     "mild",
				engine.QBADLs:             []string{"bathing", "dressing"},
				engine.QFalls:             "one",
				engine.QMobility:          "cane_or_walker",
				engine.QIADLs:             []string{"meal_prep", "finances"},
				engine.QMedManagement:     "complex",
				engine.QHoursPerDay:       "1-3h",
				engine.QSocialContact:     "weekly",
				engine.QChronicConditions: []string{"diabetes"},
			},
			ExpectedTier: entities.TierAssistedLiving,
			ExpectGate:   false,
			Difficulty:   "medium",
		},
	}

	summary, err := runner.Run(context.Background(), goldens)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 2, summary.ExactMatches)
	assert.Equal(t, 1.0, summary.ExactMatchRate)
	assert.Equal(t, 1.0, summary.AdjacentRate)
	assert.Zero(t, summary.GateMismatches)
	assert.Zero(t, summary.SafetyViolations)
	assert.Zero(t, summary.AvgTierDistance)

	require.Contains(t, summary.ByDifficulty, "easy")
	require.Contains(t, summary.ByDifficulty, "medium")
	assert.Equal(t, 1.0, summary.ByDifficulty["easy"].ExactMatchRate)
}

func TestRunnerCountsGateMismatch(t *testing.T) {
	runner := NewRunner(engine.NewDefaultEngine(), policy.NewMediator(nil, nil, nil))

	// The label claims the gate opens, but without a confirmed diagnosis
	// it never does.
	goldens := []GoldenAssessment{{
		ID: "g-gate",
		Answers: entities.AnswerSet{
			engine.QMemoryChanges: "severe",
			engine.QBehaviors:     []string{"wandering"},
		},
		ExpectedTier: entities.TierMemoryCare,
		ExpectGate:   true,
		Difficulty:   "hard",
	}}

	summary, err := runner.Run(context.Background(), goldens)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.GateMismatches)
	assert.Zero(t, summary.ExactMatches)
	assert.Zero(t, summary.SafetyViolations)
}

func TestRunnerShippedGoldenSet(t *testing.T) {
	assessments, err := LoadGoldenAssessments("../../config/golden_assessments.json")
	require.NoError(t, err)
	require.NoError(t, ValidateGoldenAssessments(assessments))

	runner := NewRunner(engine.NewDefaultEngine(), policy.NewMediator(nil, nil, nil))
	summary, err := runner.Run(context.Background(), assessments)
	require.NoError(t, err)

	// The shipped set is exactly solvable on the deterministic path.
	assert.Equal(t, len(assessments), summary.Total)
	assert.Equal(t, 1.0, summary.ExactMatchRate)
	assert.Zero(t, summary.GateMismatches)
	assert.Zero(t, summary.SafetyViolations)
}
