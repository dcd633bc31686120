package engine

import (
	"testing"

	"github.com/seniornav/careplan/backend/internal/domain/entities"
	"github.com/stretchr/testify/assert"
)

func TestGateRequiresConfirmedDiagnosis(t *testing.T) {
	gate := NewCognitiveGate()

	// Severe symptoms without a diagnosis never open the gate.
	answers := entities.AnswerSet{
		QMemoryChanges: "severe",
		QDiagnosis:     "suspected",
		QBehaviors:     []string{"wandering", "aggression"},
	}
	flags := DeriveFlags(answers, DefaultQuestionTable())
	assert.False(t, gate.Passes(answers, flags))
}

func TestGateConfirmedWithModerateSeverity(t *testing.T) {
	gate := NewCognitiveGate()

	answers := entities.AnswerSet{
		QMemoryChanges: "moderate",
		QDiagnosis:     "confirmed",
	}
	flags := DeriveFlags(answers, DefaultQuestionTable())
	assert.True(t, gate.Passes(answers, flags))
}

func TestGateConfirmedWithRiskyBehavior(t *testing.T) {
	gate := NewCognitiveGate()

	answers := entities.AnswerSet{
		QMemoryChanges: "mild",
		QDiagnosis:     "confirmed",
		QBehaviors:     []string{"elopement"},
	}
	flags := DeriveFlags(answers, DefaultQuestionTable())
	assert.True(t, gate.Passes(answers, flags))
}

func TestGateConfirmedAlone(t *testing.T) {
	gate := NewCognitiveGate()

	// A confirmed diagnosis with mild severity and no behaviors stays shut.
	answers := entities.AnswerSet{
		QMemoryChanges: "mild",
		QDiagnosis:     "confirmed",
	}
	flags := DeriveFlags(answers, DefaultQuestionTable())
	assert.False(t, gate.Passes(answers, flags))
}

func TestAllowedTiersRemovesMemoryTiersTogether(t *testing.T) {
	gate := NewCognitiveGate()

	blocked := gate.AllowedTiers(false)
	assert.False(t, blocked.Contains(entities.TierMemoryCare))
	assert.False(t, blocked.Contains(entities.TierMemoryCareHighAcuity))
	assert.Equal(t, 3, len(blocked))

	open := gate.AllowedTiers(true)
	assert.Equal(t, 5, len(open))
}
