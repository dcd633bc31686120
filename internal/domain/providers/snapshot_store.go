package providers

import (
	"context"

	"github.com/seniornav/careplan/backend/internal/domain/entities"
)

// SnapshotStore persists completed decision snapshots append-only, one
// stream per user, for offline analysis. Writes are best-effort: a
// failing store must never fail the assessment.
type SnapshotStore interface {
	// Append writes a snapshot to the user's stream.
	Append(ctx context.Context, snapshot *entities.DecisionSnapshot) error

	// List returns all snapshots recorded for a user, oldest first.
	List(ctx context.Context, userID string) ([]*entities.DecisionSnapshot, error)
}
