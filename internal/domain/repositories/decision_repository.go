package repositories

import (
	"context"

	"github.com/seniornav/careplan/backend/internal/domain/entities"
)

// DecisionRepository persists policy decisions append-only. Records are
// never updated in place; a restarted assessment inserts a new row.
type DecisionRepository interface {
	// Create inserts a decision record.
	Create(ctx context.Context, assessmentID, userID string, decision *entities.PolicyDecision) error

	// GetByAssessment returns the most recent decision for an assessment.
	GetByAssessment(ctx context.Context, assessmentID string) (*entities.PolicyDecision, error)

	// ListByUser returns all decisions recorded for a user, newest first.
	ListByUser(ctx context.Context, userID string, limit int) ([]*entities.PolicyDecision, error)
}
