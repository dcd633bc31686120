package engine

import (
	"testing"

	"github.com/seniornav/careplan/backend/internal/domain/entities"
	"github.com/stretchr/testify/assert"
)

func TestDeriveFlagsFromOptions(t *testing.T) {
	answers := entities.AnswerSet{
		QMemoryChanges: "moderate",
		QDiagnosis:     "confirmed",
		QMobility:      "cane_or_walker",
		QFalls:         "multiple",
		QMedManagement: "complex",
		QSocialContact: "rarely",
	}

	flags := DeriveFlags(answers, DefaultQuestionTable())

	assert.True(t, flags.Has(entities.FlagMemorySeverityModerate))
	assert.True(t, flags.Has(entities.FlagDiagnosisConfirmed))
	assert.True(t, flags.Has(entities.FlagMobilityAided))
	assert.True(t, flags.Has(entities.FlagFallsMultiple))
	assert.True(t, flags.Has(entities.FlagMedComplex))
	assert.True(t, flags.Has(entities.FlagIsolationHigh))
	assert.False(t, flags.Has(entities.FlagSevereCognitiveRisk))
}

func TestDeriveFlagsIdempotent(t *testing.T) {
	answers := entities.AnswerSet{
		QMemoryChanges: "severe",
		QDiagnosis:     "confirmed",
		QBehaviors:     []string{"wandering", "elopement"},
	}

	first := DeriveFlags(answers, DefaultQuestionTable()).Sorted()
	for i := 0; i < 3; i++ {
		assert.Equal(t, first, DeriveFlags(answers, DefaultQuestionTable()).Sorted())
	}
}

func TestSevereCognitiveRiskDerivation(t *testing.T) {
	table := DefaultQuestionTable()

	// Confirmed diagnosis with severe severity.
	flags := DeriveFlags(entities.AnswerSet{
		QMemoryChanges: "severe",
		QDiagnosis:     "confirmed",
	}, table)
	assert.True(t, flags.Has(entities.FlagSevereCognitiveRisk))

	// Confirmed diagnosis with two risky behaviors.
	flags = DeriveFlags(entities.AnswerSet{
		QMemoryChanges: "mild",
		QDiagnosis:     "confirmed",
		QBehaviors:     []string{"wandering", "aggression"},
	}, table)
	assert.True(t, flags.Has(entities.FlagSevereCognitiveRisk))

	// One risky behavior is not enough.
	flags = DeriveFlags(entities.AnswerSet{
		QMemoryChanges: "mild",
		QDiagnosis:     "confirmed",
		QBehaviors:     []string{"wandering"},
	}, table)
	assert.False(t, flags.Has(entities.FlagSevereCognitiveRisk))

	// Severe symptoms without a confirmed diagnosis never qualify.
	flags = DeriveFlags(entities.AnswerSet{
		QMemoryChanges: "severe",
		QDiagnosis:     "suspected",
		QBehaviors:     []string{"wandering", "aggression"},
	}, table)
	assert.False(t, flags.Has(entities.FlagSevereCognitiveRisk))
}
