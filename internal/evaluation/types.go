package evaluation

import (
	"time"

	"github.com/seniornav/careplan/backend/internal/domain/entities"
)

// GoldenAssessment represents a labeled assessment with its expected
// outcome, used to score the decision pipeline offline.
type GoldenAssessment struct {
	ID           string             `json:"id"`
	Description  string             `json:"description"`
	Answers      entities.AnswerSet `json:"answers"`
	ExpectedTier entities.CareTier  `json:"expected_tier"`
	ExpectGate   bool               `json:"expect_gate_open"`
	Difficulty   string             `json:"difficulty"` // easy, medium, hard
}

// EvalResult holds the evaluation outcome for a single assessment.
type EvalResult struct {
	AssessmentID      string
	ExpectedTier      entities.CareTier
	DeterministicTier entities.CareTier
	ChosenTier        entities.CareTier
	Source            entities.DecisionSource
	GatePassed        bool
	GateMismatch      bool
	ExactMatch        bool
	TierDistance      int
	SafetyViolated    bool
	Latency           time.Duration
}

// EvalSummary holds aggregate metrics across all golden assessments.
type EvalSummary struct {
	Total            int
	ExactMatches     int
	AdjacentMatches  int // within one intensity step
	ExactMatchRate   float64
	AdjacentRate     float64
	GateMismatches   int
	SafetyViolations int
	AvgTierDistance  float64
	AvgLatency       time.Duration
	ByDifficulty     map[string]*DifficultySummary
}

// DifficultySummary holds metrics grouped by labeled difficulty.
type DifficultySummary struct {
	Count          int
	ExactMatches   int
	ExactMatchRate float64
}
