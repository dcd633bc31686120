package entities

import "time"

// AssessmentEventType identifies the kind of assessment lifecycle event.
type AssessmentEventType string

const (
	EventAssessmentCompleted AssessmentEventType = "assessment.completed"
	EventDecisionSuperseded  AssessmentEventType = "assessment.decision_superseded"
)

// AssessmentEvent is published on the event bus when an assessment
// completes, for downstream consumers (advisor prep, analytics).
type AssessmentEvent struct {
	ID           string              `json:"id"`
	Type         AssessmentEventType `json:"type"`
	AssessmentID string              `json:"assessment_id"`
	UserID       string              `json:"user_id"`
	Tier         CareTier            `json:"tier"`
	Source       DecisionSource      `json:"source"`
	OccurredAt   time.Time           `json:"occurred_at"`
}
