package entities

import "time"

// DecisionSource identifies which recommender produced the final tier.
type DecisionSource string

const (
	SourceLLM      DecisionSource = "llm"
	SourceFallback DecisionSource = "fallback"
	SourceClamp    DecisionSource = "clamp"
)

// AdjudicationDecision records the reconciliation of the deterministic
// tier candidate against the LLM-proposed tier. Created once per
// assessment completion and never mutated; a restarted assessment
// supersedes it with a new record.
type AdjudicationDecision struct {
	AssessmentID      string         `json:"assessment_id"`
	ChosenTier        CareTier       `json:"chosen_tier"`
	Source            DecisionSource `json:"source"`
	Reason            string         `json:"reason"`
	DeterministicTier CareTier       `json:"deterministic_tier"`
	LLMTier           *CareTier      `json:"llm_tier,omitempty"`
	LLMConfidence     *float64       `json:"llm_confidence,omitempty"`
	AllowedTiers      []CareTier     `json:"allowed_tiers"`
	Bands             BandSummary    `json:"bands"`
	GatePassed        bool           `json:"gate_passed"`
	TotalScore        float64        `json:"total_score"`
	DecidedAt         time.Time      `json:"decided_at"`
}

// PolicyDecision is the richer record produced by the policy mediator.
// It is independent of AdjudicationDecision; the mediator is the
// canonical reconciliation layer.
type PolicyDecision struct {
	AssessmentID     string         `json:"assessment_id"`
	ChosenTier       CareTier       `json:"chosen_tier"`
	BaseTier         CareTier       `json:"base_tier"`
	Confidence       float64        `json:"confidence"`
	EmpathyScore     int            `json:"empathy_score"`
	Source           DecisionSource `json:"source"`
	ClampApplied     bool           `json:"clamp_applied"`
	MCGatesSatisfied bool           `json:"mc_gates_satisfied"`
	NeedsScore       float64        `json:"needs_score"`
	AllowedTiers     []CareTier     `json:"allowed_tiers"`
	AdvisoryNotes    []string       `json:"advisory_notes,omitempty"`
	Rationale        string         `json:"rationale,omitempty"`
	DecidedAt        time.Time      `json:"decided_at"`
}

// DecisionSnapshot is the append-only persistence form of a completed
// assessment decision, written best-effort per user.
type DecisionSnapshot struct {
	AssessmentID string         `json:"assessment_id"`
	UserID       string         `json:"user_id"`
	Tier         CareTier       `json:"tier"`
	Confidence   float64        `json:"confidence"`
	AllowedTiers []CareTier     `json:"allowed_tiers"`
	Source       DecisionSource `json:"source"`
	Timestamp    time.Time      `json:"timestamp"`
}
