package evaluation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/seniornav/careplan/backend/internal/domain/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadGoldenAssessments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "golden.json")
	content := `[
  {
    "id": "g-1",
    "description": "no needs",
    "answers": {"memory_changes": "none"},
    "expected_tier": "no_care_needed",
    "expect_gate_open": false,
    "difficulty": "easy"
  }
]`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	assessments, err := LoadGoldenAssessments(path)
	require.NoError(t, err)
	require.Len(t, assessments, 1)
	assert.Equal(t, "g-1", assessments[0].ID)
	assert.Equal(t, entities.TierNoCareNeeded, assessments[0].ExpectedTier)
	assert.NoError(t, ValidateGoldenAssessments(assessments))
}

func TestLoadGoldenAssessmentsRejectsBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "golden.json")
	require.NoError(t, os.WriteFile(path, []byte("{not an array"), 0o644))

	_, err := LoadGoldenAssessments(path)
	assert.Error(t, err)
}

func TestValidateGoldenAssessments(t *testing.T) {
	valid := GoldenAssessment{
		ID:           "g-1",
		Answers:      entities.AnswerSet{"memory_changes": "none"},
		ExpectedTier: entities.TierInHome,
		Difficulty:   "easy",
	}

	cases := []struct {
		name   string
		mutate func(g *GoldenAssessment)
	}{
		{"missing id", func(g *GoldenAssessment) { g.ID = "" }},
		{"missing answers", func(g *GoldenAssessment) { g.Answers = nil }},
		{"invalid tier", func(g *GoldenAssessment) { g.ExpectedTier = "hospital" }},
		{"invalid difficulty", func(g *GoldenAssessment) { g.Difficulty = "impossible" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := valid
			tc.mutate(&g)
			assert.Error(t, ValidateGoldenAssessments([]GoldenAssessment{g}))
		})
	}

	t.Run("duplicate id", func(t *testing.T) {
		assert.Error(t, ValidateGoldenAssessments([]GoldenAssessment{valid, valid}))
	})

	t.Run("valid set", func(t *testing.T) {
		other := valid
		other.ID = "g-2"
		assert.NoError(t, ValidateGoldenAssessments([]GoldenAssessment{valid, other}))
	})
}
