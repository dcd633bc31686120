package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/seniornav/careplan/backend/internal/domain/entities"
	"github.com/seniornav/careplan/backend/internal/domain/providers"
	"github.com/seniornav/careplan/backend/internal/domain/repositories"
	"github.com/seniornav/careplan/backend/internal/engine"
	"github.com/seniornav/careplan/backend/internal/infrastructure/observability"
	"github.com/seniornav/careplan/backend/internal/policy"
	apperrors "github.com/seniornav/careplan/backend/pkg/errors"
)

// AssessmentResult bundles everything produced by one assessment run.
// The policy decision is the canonical outcome; the adjudication record
// is kept alongside for diagnostics.
type AssessmentResult struct {
	Assessment   *entities.Assessment           `json:"assessment"`
	Decision     *entities.PolicyDecision       `json:"decision"`
	Adjudication *entities.AdjudicationDecision `json:"adjudication"`
	TotalScore   float64                        `json:"total_score"`
	Bands        entities.BandSummary           `json:"bands"`
	GatePassed   bool                           `json:"gate_passed"`
}

// AssessmentService orchestrates the tier decision pipeline: evaluate,
// adjudicate, mediate, persist, publish. Persistence and events are
// best-effort; only the decision itself can fail a submission.
type AssessmentService struct {
	engine      *engine.Engine
	adjudicator *engine.Adjudicator
	mediator    *policy.Mediator
	advisor     providers.TierAdvisor
	repo        repositories.DecisionRepository
	snapshots   providers.SnapshotStore
	events      providers.EventBus
	metrics     *observability.Metrics
	flags       *FeatureFlags
	logger      *zerolog.Logger
}

// NewAssessmentService creates the assessment service. repo, snapshots,
// events, metrics, and advisor may each be nil; the service degrades
// accordingly.
func NewAssessmentService(
	eng *engine.Engine,
	mediator *policy.Mediator,
	advisor providers.TierAdvisor,
	repo repositories.DecisionRepository,
	snapshots providers.SnapshotStore,
	events providers.EventBus,
	metrics *observability.Metrics,
	flags *FeatureFlags,
	logger *zerolog.Logger,
) *AssessmentService {
	if flags == nil {
		flags = NewFeatureFlags()
	}
	return &AssessmentService{
		engine:      eng,
		adjudicator: engine.NewAdjudicator(),
		mediator:    mediator,
		advisor:     advisor,
		repo:        repo,
		snapshots:   snapshots,
		events:      events,
		metrics:     metrics,
		flags:       flags,
		logger:      logger,
	}
}

// Submit runs the full pipeline for one completed assessment.
func (s *AssessmentService) Submit(ctx context.Context, assessment *entities.Assessment) (*AssessmentResult, error) {
	if assessment == nil {
		return nil, apperrors.NewValidationError("assessment is required")
	}
	if len(assessment.Answers) == 0 {
		return nil, apperrors.NewValidationError("assessment has no answers")
	}
	if assessment.UserID == "" {
		return nil, apperrors.NewValidationError("user ID is required")
	}
	if assessment.ID == "" {
		assessment.ID = uuid.New().String()
	}
	if assessment.SubmittedAt.IsZero() {
		assessment.SubmittedAt = time.Now().UTC()
	}

	ctx, span := observability.StartSpan(ctx, "assessment.submit")
	defer span.End()
	start := time.Now()

	actx := s.engine.Evaluate(assessment.ID, assessment.Answers)
	assessment.Flags = actx.Flags.Sorted()

	// The adjudication record consults the advisor under the engine's
	// own allowed set; the mediator re-derives its constraints and
	// consults separately (the advice cache absorbs the duplicate call
	// when the constraints agree).
	var advice *providers.TierAdvice
	if s.advisor != nil && s.flags.TierAdvisorEnabled() {
		result, err := s.advisor.RecommendTier(ctx, &providers.TierAdviceRequest{
			AssessmentID: actx.AssessmentID,
			Answers:      actx.Answers,
			Flags:        actx.Flags,
			Bands:        actx.Bands,
			TotalScore:   actx.TotalScore,
			AllowedTiers: actx.AllowedTiers.Sorted(),
		})
		if err != nil {
			if s.logger != nil {
				s.logger.Warn().Err(err).
					Str("assessment_id", assessment.ID).
					Msg("tier advisor unavailable for adjudication")
			}
		} else {
			advice = result
		}
	}

	adjudication, err := s.adjudicator.Decide(actx, advice)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	decision, err := s.mediator.Decide(ctx, actx)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	s.persist(ctx, assessment, decision)
	s.publish(ctx, assessment, decision)

	if s.metrics != nil {
		observability.RecordDecisionMetric(
			ctx, s.metrics,
			string(decision.ChosenTier), string(decision.Source),
			!actx.GatePassed, decision.ClampApplied,
			time.Since(start),
		)
	}

	if s.logger != nil {
		s.logger.Info().
			Str("assessment_id", assessment.ID).
			Str("tier", string(decision.ChosenTier)).
			Str("source", string(decision.Source)).
			Float64("needs_score", decision.NeedsScore).
			Bool("gate_passed", actx.GatePassed).
			Bool("clamp_applied", decision.ClampApplied).
			Msg("assessment decided")
	}

	return &AssessmentResult{
		Assessment:   assessment,
		Decision:     decision,
		Adjudication: adjudication,
		TotalScore:   actx.TotalScore,
		Bands:        actx.Bands,
		GatePassed:   actx.GatePassed,
	}, nil
}

// GetDecision returns the most recent decision for an assessment.
func (s *AssessmentService) GetDecision(ctx context.Context, assessmentID string) (*entities.PolicyDecision, error) {
	if assessmentID == "" {
		return nil, apperrors.NewValidationError("assessment ID is required")
	}
	if s.repo == nil {
		return nil, apperrors.NewNotFoundError("decision storage is not configured")
	}
	return s.repo.GetByAssessment(ctx, assessmentID)
}

// ListUserDecisions returns a user's decisions, newest first.
func (s *AssessmentService) ListUserDecisions(ctx context.Context, userID string, limit int) ([]*entities.PolicyDecision, error) {
	if userID == "" {
		return nil, apperrors.NewValidationError("user ID is required")
	}
	if s.repo == nil {
		return nil, nil
	}
	return s.repo.ListByUser(ctx, userID, limit)
}

// ListUserSnapshots returns a user's decision snapshots, oldest first.
func (s *AssessmentService) ListUserSnapshots(ctx context.Context, userID string) ([]*entities.DecisionSnapshot, error) {
	if userID == "" {
		return nil, apperrors.NewValidationError("user ID is required")
	}
	if s.snapshots == nil {
		return nil, nil
	}
	return s.snapshots.List(ctx, userID)
}

// persist writes the decision row and the snapshot. Both are
// best-effort; failures are logged and the submission continues.
func (s *AssessmentService) persist(ctx context.Context, assessment *entities.Assessment, decision *entities.PolicyDecision) {
	if s.repo != nil {
		if err := s.repo.Create(ctx, assessment.ID, assessment.UserID, decision); err != nil {
			if s.logger != nil {
				s.logger.Error().Err(err).
					Str("assessment_id", assessment.ID).
					Msg("failed to persist decision")
			}
		}
	}

	if s.snapshots != nil {
		snapshot := &entities.DecisionSnapshot{
			AssessmentID: assessment.ID,
			UserID:       assessment.UserID,
			Tier:         decision.ChosenTier,
			Confidence:   decision.Confidence,
			AllowedTiers: decision.AllowedTiers,
			Source:       decision.Source,
			Timestamp:    decision.DecidedAt,
		}
		if err := s.snapshots.Append(ctx, snapshot); err != nil {
			if s.logger != nil {
				s.logger.Warn().Err(err).
					Str("assessment_id", assessment.ID).
					Msg("failed to append decision snapshot")
			}
		}
	}
}

// publish emits the completion event on the shared and per-user
// channels. Best-effort.
func (s *AssessmentService) publish(ctx context.Context, assessment *entities.Assessment, decision *entities.PolicyDecision) {
	if s.events == nil || !s.flags.EventPublishEnabled() {
		return
	}

	event := &entities.AssessmentEvent{
		ID:           uuid.New().String(),
		Type:         entities.EventAssessmentCompleted,
		AssessmentID: assessment.ID,
		UserID:       assessment.UserID,
		Tier:         decision.ChosenTier,
		Source:       decision.Source,
		OccurredAt:   time.Now().UTC(),
	}

	for _, channel := range []string{
		providers.EventChannelAssessments,
		providers.GetUserChannel(assessment.UserID),
	} {
		if err := s.events.Publish(ctx, channel, event); err != nil {
			if s.logger != nil {
				s.logger.Warn().Err(err).
					Str("channel", channel).
					Msg("failed to publish assessment event")
			}
		}
	}
}
