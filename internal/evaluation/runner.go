package evaluation

import (
	"context"
	"time"

	"github.com/seniornav/careplan/backend/internal/engine"
	"github.com/seniornav/careplan/backend/internal/policy"
)

// Runner scores the decision pipeline against a set of golden
// assessments. The mediator is consulted exactly as in production, so
// running with a nil advisor measures the deterministic path and
// running with a live advisor measures end-to-end behavior.
type Runner struct {
	engine   *engine.Engine
	mediator *policy.Mediator
}

func NewRunner(eng *engine.Engine, mediator *policy.Mediator) *Runner {
	return &Runner{engine: eng, mediator: mediator}
}

func (r *Runner) Run(ctx context.Context, assessments []GoldenAssessment) (*EvalSummary, error) {
	summary := &EvalSummary{
		Total:        len(assessments),
		ByDifficulty: make(map[string]*DifficultySummary),
	}

	for _, golden := range assessments {
		start := time.Now()

		actx := r.engine.Evaluate(golden.ID, golden.Answers)
		decision, err := r.mediator.Decide(ctx, actx)
		if err != nil {
			continue
		}

		result := EvalResult{
			AssessmentID:      golden.ID,
			ExpectedTier:      golden.ExpectedTier,
			DeterministicTier: actx.DeterministicTier,
			ChosenTier:        decision.ChosenTier,
			Source:            decision.Source,
			GatePassed:        actx.GatePassed,
			GateMismatch:      actx.GatePassed != golden.ExpectGate,
			ExactMatch:        decision.ChosenTier == golden.ExpectedTier,
			TierDistance:      TierDistance(decision.ChosenTier, golden.ExpectedTier),
			SafetyViolated:    IsSafetyViolation(decision.ChosenTier, actx.GatePassed),
			Latency:           time.Since(start),
		}

		r.updateSummary(summary, golden, result)
	}

	r.finalizeSummary(summary)
	return summary, nil
}

func (r *Runner) updateSummary(s *EvalSummary, golden GoldenAssessment, res EvalResult) {
	if res.ExactMatch {
		s.ExactMatches++
	}
	if res.TierDistance <= 1 {
		s.AdjacentMatches++
	}
	if res.GateMismatch {
		s.GateMismatches++
	}
	if res.SafetyViolated {
		s.SafetyViolations++
	}
	s.AvgTierDistance += float64(res.TierDistance)
	s.AvgLatency += res.Latency

	byDiff := s.ByDifficulty[golden.Difficulty]
	if byDiff == nil {
		byDiff = &DifficultySummary{}
		s.ByDifficulty[golden.Difficulty] = byDiff
	}
	byDiff.Count++
	if res.ExactMatch {
		byDiff.ExactMatches++
	}
}

func (r *Runner) finalizeSummary(s *EvalSummary) {
	if s.Total > 0 {
		s.ExactMatchRate = float64(s.ExactMatches) / float64(s.Total)
		s.AdjacentRate = float64(s.AdjacentMatches) / float64(s.Total)
		s.AvgTierDistance /= float64(s.Total)
		s.AvgLatency /= time.Duration(s.Total)
	}
	for _, byDiff := range s.ByDifficulty {
		if byDiff.Count > 0 {
			byDiff.ExactMatchRate = float64(byDiff.ExactMatches) / float64(byDiff.Count)
		}
	}
}
