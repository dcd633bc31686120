package providers

import (
	"context"
	"errors"

	"github.com/seniornav/careplan/backend/internal/domain/entities"
)

// ErrAdvisorUnavailable is returned when the LLM advisor cannot be
// reached or did not produce usable output. Callers treat it as a
// first-class, expected outcome and take the fallback path.
var ErrAdvisorUnavailable = errors.New("tier advisor unavailable")

// TierAdviceRequest carries the assessment context handed to the LLM.
type TierAdviceRequest struct {
	AssessmentID string
	Answers      entities.AnswerSet
	Flags        entities.FlagSet
	Bands        entities.BandSummary
	TotalScore   float64
	AllowedTiers []entities.CareTier
	// ClampTier, when set, tells the advisor it may not propose a tier
	// more intensive than this one.
	ClampTier *entities.CareTier
}

// TierAdvice is the validated response from the LLM advisor. Tier is
// guaranteed to be one of the five canonical values; responses that do
// not parse are discarded at the client boundary.
type TierAdvice struct {
	Tier         entities.CareTier
	Confidence   float64
	Rationale    string
	EmpathyScore int
}

// TierAdvisor proposes a care tier for an assessment via an external
// LLM. Implementations own their timeout and bounded retry; the core
// logic stays testable against canned advisors.
type TierAdvisor interface {
	RecommendTier(ctx context.Context, req *TierAdviceRequest) (*TierAdvice, error)
}
