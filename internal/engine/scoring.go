package engine

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/seniornav/careplan/backend/internal/domain/entities"
)

// QuestionScore is the per-question contribution to the total score.
type QuestionScore struct {
	QuestionID string   `json:"question_id"`
	Selected   []string `json:"selected"`
	Points     float64  `json:"points"`
}

// ScoreRange maps an inclusive [Min,Max] point range to a tier.
type ScoreRange struct {
	Min  float64           `json:"min"`
	Max  float64           `json:"max"`
	Tier entities.CareTier `json:"tier"`
}

// ScoreThresholds is the fixed ascending set of point ranges, one per
// tier. A score above the top range clamps to the highest tier.
type ScoreThresholds []ScoreRange

// DefaultScoreThresholds returns the built-in breakpoints:
// 0-8, 9-16, 17-24, 25-39, 40+.
func DefaultScoreThresholds() ScoreThresholds {
	return ScoreThresholds{
		{Min: 0, Max: 8, Tier: entities.TierNoCareNeeded},
		{Min: 9, Max: 16, Tier: entities.TierInHome},
		{Min: 17, Max: 24, Tier: entities.TierAssistedLiving},
		{Min: 25, Max: 39, Tier: entities.TierMemoryCare},
		{Min: 40, Max: -1, Tier: entities.TierMemoryCareHighAcuity},
	}
}

// LoadScoreThresholds reads thresholds from a JSON file and validates
// that the ranges are contiguous, non-overlapping, and cover all five
// tiers in ascending order.
func LoadScoreThresholds(path string) (ScoreThresholds, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read score thresholds: %w", err)
	}
	var thresholds ScoreThresholds
	if err := json.Unmarshal(data, &thresholds); err != nil {
		return nil, fmt.Errorf("failed to parse score thresholds: %w", err)
	}
	if err := thresholds.Validate(); err != nil {
		return nil, err
	}
	return thresholds, nil
}

// Validate checks the structural invariants of the threshold table.
func (t ScoreThresholds) Validate() error {
	if len(t) != len(entities.AllTiers()) {
		return fmt.Errorf("score thresholds must have exactly %d ranges, got %d", len(entities.AllTiers()), len(t))
	}
	for i, r := range t {
		if !r.Tier.IsValid() {
			return fmt.Errorf("score threshold %d has invalid tier %q", i, r.Tier)
		}
		if r.Tier != entities.AllTiers()[i] {
			return fmt.Errorf("score thresholds must ascend through the tier ordering, got %q at position %d", r.Tier, i)
		}
		if i > 0 && r.Min != t[i-1].Max+1 {
			return fmt.Errorf("score thresholds must be contiguous: range %d starts at %v, previous ends at %v", i, r.Min, t[i-1].Max)
		}
	}
	if t[len(t)-1].Max >= 0 {
		return fmt.Errorf("top score range must be open-ended (max = -1)")
	}
	return nil
}

// TierForScore maps a total score to a tier. Scores above the top
// range's minimum clamp to the highest tier.
func (t ScoreThresholds) TierForScore(total float64) entities.CareTier {
	for _, r := range t {
		if r.Max < 0 {
			// Open-ended top range.
			return r.Tier
		}
		if total <= r.Max {
			return r.Tier
		}
	}
	return t[len(t)-1].Tier
}

// Scorer maps answers to a point total via the static question table.
type Scorer struct {
	table      *QuestionTable
	thresholds ScoreThresholds
}

// NewScorer creates a scorer over the given tables.
func NewScorer(table *QuestionTable, thresholds ScoreThresholds) *Scorer {
	return &Scorer{table: table, thresholds: thresholds}
}

// Score sums the option scores for every submitted answer. Unanswered
// and malformed questions contribute zero; unknown options are ignored.
func (s *Scorer) Score(answers entities.AnswerSet) (float64, []QuestionScore) {
	total := 0.0
	breakdown := make([]QuestionScore, 0, len(s.table.Questions))

	for i := range s.table.Questions {
		q := &s.table.Questions[i]
		selected := answers.List(q.ID)
		if len(selected) == 0 {
			continue
		}
		if !q.Multi && len(selected) > 1 {
			// A multi answer to a single-select question degrades to the
			// first option rather than raising.
			selected = selected[:1]
		}

		points := 0.0
		matched := make([]string, 0, len(selected))
		for _, opt := range selected {
			cfg, ok := q.Options[opt]
			if !ok {
				continue
			}
			points += cfg.Score
			matched = append(matched, opt)
		}
		if len(matched) == 0 {
			continue
		}

		total += points
		breakdown = append(breakdown, QuestionScore{
			QuestionID: q.ID,
			Selected:   matched,
			Points:     points,
		})
	}

	return total, breakdown
}

// TierForScore maps a total to a tier using the scorer's thresholds.
func (s *Scorer) TierForScore(total float64) entities.CareTier {
	return s.thresholds.TierForScore(total)
}
