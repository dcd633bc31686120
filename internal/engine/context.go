package engine

import (
	"github.com/seniornav/careplan/backend/internal/domain/entities"
)

// AssessmentContext holds everything the engine derives from one answer
// snapshot. It is created fresh per assessment, threaded explicitly
// through the pipeline, and never shared across assessments.
type AssessmentContext struct {
	AssessmentID string
	Answers      entities.AnswerSet
	Flags        entities.FlagSet

	TotalScore float64
	Breakdown  []QuestionScore
	ScoreTier  entities.CareTier

	Bands      entities.BandSummary
	MappedTier *entities.CareTier

	GatePassed   bool
	AllowedTiers entities.TierSet

	// DeterministicTier is the candidate the adjudicator falls back to
	// when the LLM is absent or out of policy.
	DeterministicTier entities.CareTier
}

// Engine derives an AssessmentContext from raw answers: scoring, flag
// derivation, gating, band classification, and the tier-table lookup.
type Engine struct {
	table      *QuestionTable
	scorer     *Scorer
	gate       *CognitiveGate
	classifier *BandClassifier
	mapper     *TierMapper
}

// NewEngine wires the engine from its tables.
func NewEngine(table *QuestionTable, thresholds ScoreThresholds, tierTable TierTable) *Engine {
	return &Engine{
		table:      table,
		scorer:     NewScorer(table, thresholds),
		gate:       NewCognitiveGate(),
		classifier: NewBandClassifier(),
		mapper:     NewTierMapper(tierTable),
	}
}

// NewDefaultEngine wires the engine from the built-in tables.
func NewDefaultEngine() *Engine {
	return NewEngine(DefaultQuestionTable(), DefaultScoreThresholds(), DefaultTierTable())
}

// DeterministicPreference is the fixed order used when neither the
// mapped tier nor the score tier is in the allowed set.
var DeterministicPreference = []entities.CareTier{
	entities.TierAssistedLiving,
	entities.TierInHome,
	entities.TierNoCareNeeded,
	entities.TierMemoryCare,
	entities.TierMemoryCareHighAcuity,
}

// Evaluate runs the deterministic half of the pipeline over one answer
// snapshot. Malformed answers degrade to zero contribution; Evaluate
// never fails.
func (e *Engine) Evaluate(assessmentID string, answers entities.AnswerSet) *AssessmentContext {
	flags := DeriveFlags(answers, e.table)

	total, breakdown := e.scorer.Score(answers)
	scoreTier := e.scorer.TierForScore(total)

	gatePassed := e.gate.Passes(answers, flags)
	allowed := e.gate.AllowedTiers(gatePassed)

	bands := e.classifier.Bands(answers, flags)

	actx := &AssessmentContext{
		AssessmentID: assessmentID,
		Answers:      answers,
		Flags:        flags,
		TotalScore:   total,
		Breakdown:    breakdown,
		ScoreTier:    scoreTier,
		Bands:        bands,
		GatePassed:   gatePassed,
		AllowedTiers: allowed,
	}

	if mapped, ok := e.mapper.MapTier(bands.Cognition, bands.RoutingSupport); ok {
		actx.MappedTier = &mapped
	}

	actx.DeterministicTier = e.deterministicTier(actx)
	return actx
}

// deterministicTier picks the deterministic candidate: the mapped tier
// when allowed, else the score tier when allowed, else the highest
// allowed tier by the fixed preference order.
func (e *Engine) deterministicTier(actx *AssessmentContext) entities.CareTier {
	if actx.MappedTier != nil && actx.AllowedTiers.Contains(*actx.MappedTier) {
		return *actx.MappedTier
	}
	if actx.AllowedTiers.Contains(actx.ScoreTier) {
		return actx.ScoreTier
	}
	for _, t := range DeterministicPreference {
		if actx.AllowedTiers.Contains(t) {
			return t
		}
	}
	// The allowed set always retains the bottom three tiers, so this is
	// unreachable; return the safest default regardless.
	return entities.TierInHome
}
