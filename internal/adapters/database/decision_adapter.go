package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
	"github.com/seniornav/careplan/backend/internal/domain/entities"
	"github.com/seniornav/careplan/backend/internal/domain/repositories"
	"github.com/seniornav/careplan/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/seniornav/careplan/backend/pkg/errors"
)

// DecisionAdapter implements decision persistence in Postgres. Rows are
// append-only; a restarted assessment inserts a fresh record and reads
// return the newest one.
type DecisionAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewDecisionAdapter creates a new decision adapter.
func NewDecisionAdapter(client *postgres.Client) repositories.DecisionRepository {
	return &DecisionAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create inserts a decision record.
func (a *DecisionAdapter) Create(ctx context.Context, assessmentID, userID string, decision *entities.PolicyDecision) error {
	if decision == nil {
		return apperrors.NewInternalError("decision is nil", fmt.Errorf("decision is nil"))
	}

	allowedTiers, err := json.Marshal(decision.AllowedTiers)
	if err != nil {
		return apperrors.NewInternalError("failed to marshal allowed tiers", err)
	}
	notes, err := json.Marshal(decision.AdvisoryNotes)
	if err != nil {
		return apperrors.NewInternalError("failed to marshal advisory notes", err)
	}

	decidedAt := decision.DecidedAt
	if decidedAt.IsZero() {
		decidedAt = time.Now().UTC()
	}

	record := goqu.Record{
		"id":                 uuid.New().String(),
		"assessment_id":      assessmentID,
		"user_id":            userID,
		"chosen_tier":        string(decision.ChosenTier),
		"base_tier":          string(decision.BaseTier),
		"confidence":         decision.Confidence,
		"empathy_score":      decision.EmpathyScore,
		"source":             string(decision.Source),
		"clamp_applied":      decision.ClampApplied,
		"mc_gates_satisfied": decision.MCGatesSatisfied,
		"needs_score":        decision.NeedsScore,
		"allowed_tiers":      string(allowedTiers),
		"advisory_notes":     string(notes),
		"rationale":          sql.NullString{String: decision.Rationale, Valid: decision.Rationale != ""},
		"decided_at":         decidedAt,
	}

	query, args, err := a.db.Insert("care_decisions").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build decision insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create decision", err)
	}

	return nil
}

// GetByAssessment returns the most recent decision for an assessment.
func (a *DecisionAdapter) GetByAssessment(ctx context.Context, assessmentID string) (*entities.PolicyDecision, error) {
	query, args, err := a.db.From("care_decisions").
		Select(decisionColumns()...).
		Where(goqu.C("assessment_id").Eq(assessmentID)).
		Order(goqu.C("decided_at").Desc()).
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build decision query", err)
	}

	row := a.client.DB().QueryRowContext(ctx, query, args...)
	decision, err := scanDecision(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("no decision for assessment %s", assessmentID))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get decision", err)
	}
	return decision, nil
}

// ListByUser returns decisions recorded for a user, newest first.
func (a *DecisionAdapter) ListByUser(ctx context.Context, userID string, limit int) ([]*entities.PolicyDecision, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	query, args, err := a.db.From("care_decisions").
		Select(decisionColumns()...).
		Where(goqu.C("user_id").Eq(userID)).
		Order(goqu.C("decided_at").Desc()).
		Limit(uint(limit)).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build decision list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list decisions", err)
	}
	defer rows.Close()

	var decisions []*entities.PolicyDecision
	for rows.Next() {
		decision, err := scanDecision(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan decision", err)
		}
		decisions = append(decisions, decision)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate decisions", err)
	}

	return decisions, nil
}

func decisionColumns() []interface{} {
	return []interface{}{
		"assessment_id",
		"chosen_tier",
		"base_tier",
		"confidence",
		"empathy_score",
		"source",
		"clamp_applied",
		"mc_gates_satisfied",
		"needs_score",
		"allowed_tiers",
		"advisory_notes",
		"rationale",
		"decided_at",
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDecision(row rowScanner) (*entities.PolicyDecision, error) {
	var (
		decision     entities.PolicyDecision
		chosenTier   string
		baseTier     string
		source       string
		allowedTiers string
		notes        string
		rationale    sql.NullString
	)

	err := row.Scan(
		&decision.AssessmentID,
		&chosenTier,
		&baseTier,
		&decision.Confidence,
		&decision.EmpathyScore,
		&source,
		&decision.ClampApplied,
		&decision.MCGatesSatisfied,
		&decision.NeedsScore,
		&allowedTiers,
		&notes,
		&rationale,
		&decision.DecidedAt,
	)
	if err != nil {
		return nil, err
	}

	decision.ChosenTier = entities.CareTier(chosenTier)
	decision.BaseTier = entities.CareTier(baseTier)
	decision.Source = entities.DecisionSource(source)
	decision.Rationale = rationale.String

	if allowedTiers != "" {
		if err := json.Unmarshal([]byte(allowedTiers), &decision.AllowedTiers); err != nil {
			return nil, fmt.Errorf("failed to unmarshal allowed tiers: %w", err)
		}
	}
	if notes != "" {
		if err := json.Unmarshal([]byte(notes), &decision.AdvisoryNotes); err != nil {
			return nil, fmt.Errorf("failed to unmarshal advisory notes: %w", err)
		}
	}

	return &decision, nil
}
