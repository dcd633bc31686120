package evaluation

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadGoldenAssessments reads and parses a golden assessment set from a JSON file.
func LoadGoldenAssessments(path string) ([]GoldenAssessment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read golden assessments file: %w", err)
	}

	var assessments []GoldenAssessment
	if err := json.Unmarshal(data, &assessments); err != nil {
		return nil, fmt.Errorf("failed to parse golden assessments: %w", err)
	}

	return assessments, nil
}

var validDifficulties = map[string]bool{
	"easy":   true,
	"medium": true,
	"hard":   true,
}

// ValidateGoldenAssessments checks that all entries have required fields and valid values.
func ValidateGoldenAssessments(assessments []GoldenAssessment) error {
	seen := make(map[string]struct{}, len(assessments))

	for i, g := range assessments {
		if g.ID == "" {
			return fmt.Errorf("assessment at index %d: missing id", i)
		}
		if _, dup := seen[g.ID]; dup {
			return fmt.Errorf("assessment at index %d: duplicate id %q", i, g.ID)
		}
		seen[g.ID] = struct{}{}

		if len(g.Answers) == 0 {
			return fmt.Errorf("assessment %q: missing answers", g.ID)
		}
		if !g.ExpectedTier.IsValid() {
			return fmt.Errorf("assessment %q: invalid expected tier %q", g.ID, g.ExpectedTier)
		}
		if !validDifficulties[g.Difficulty] {
			return fmt.Errorf("assessment %q: invalid difficulty %q (must be easy/medium/hard)", g.ID, g.Difficulty)
		}
	}

	return nil
}
