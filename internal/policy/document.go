package policy

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/seniornav/careplan/backend/internal/domain/entities"
)

// Document is the declarative care policy: memory-care gates, compound
// needs weights, undercount detection, escalation, preference clamps,
// and the LLM confidence floor. It is versioned data, not code.
type Document struct {
	Version         int              `yaml:"version"`
	MemoryCareGates GatesConfig      `yaml:"memory_care_gates"`
	NeedsWeights    WeightsConfig    `yaml:"needs_weights"`
	Undercount      UndercountConfig `yaml:"undercount"`
	Escalation      EscalationConfig `yaml:"escalation"`
	PreferenceClamp ClampConfig      `yaml:"preference_clamp"`
	Confidence      ConfidenceConfig `yaml:"confidence"`
}

// GatesConfig lists the flags required to unlock the memory-care tiers.
// All required flags must be present, plus at least one qualifying flag.
type GatesConfig struct {
	RequiredFlags   []string `yaml:"required_flags"`
	QualifyingFlags []string `yaml:"qualifying_flags"`
}

// WeightsConfig holds the per-factor weights of the compound-needs score.
type WeightsConfig struct {
	BADL             float64 `yaml:"badl"`
	IADL             float64 `yaml:"iadl"`
	Mobility         float64 `yaml:"mobility"`
	Falls            float64 `yaml:"falls"`
	Medication       float64 `yaml:"medication"`
	Isolation        float64 `yaml:"isolation"`
	Cognition        float64 `yaml:"cognition"`
	ChronicCondition float64 `yaml:"chronic_condition"`
}

// UndercountConfig drives the self-undercount detector.
type UndercountConfig struct {
	NeedThreshold int      `yaml:"need_threshold"`
	LowHourBands  []string `yaml:"low_hour_bands"`
}

// EscalationConfig drives the escalation rule for low base tiers.
type EscalationConfig struct {
	MinNeedsScore         float64  `yaml:"min_needs_score"`
	QualifyingAgeRanges   []string `yaml:"qualifying_age_ranges"`
	CompatiblePreferences []string `yaml:"compatible_preferences"`
}

// ClampConfig drives the stay-home preference clamp.
type ClampConfig struct {
	TriggerPreference string `yaml:"trigger_preference"`
}

// ConfidenceConfig holds the minimum LLM confidence to accept advice.
type ConfidenceConfig struct {
	MinLLMConfidence float64 `yaml:"min_llm_confidence"`
}

// DefaultDocument returns the built-in minimal policy used when no
// policy file is configured or the configured one fails to load.
func DefaultDocument() *Document {
	return &Document{
		Version: 1,
		MemoryCareGates: GatesConfig{
			RequiredFlags: []string{entities.FlagDiagnosisConfirmed},
			QualifyingFlags: []string{
				entities.FlagMemorySeverityModerate,
				entities.FlagMemorySeveritySevere,
				entities.FlagWandering,
				entities.FlagElopement,
				entities.FlagAggression,
				entities.FlagSevereSundowning,
			},
		},
		NeedsWeights: WeightsConfig{
			BADL:             1.5,
			IADL:             0.75,
			Mobility:         2.0,
			Falls:            1.5,
			Medication:       1.0,
			Isolation:        0.5,
			Cognition:        2.5,
			ChronicCondition: 0.5,
		},
		Undercount: UndercountConfig{
			NeedThreshold: 4,
			LowHourBands:  []string{"<1h", "1-3h"},
		},
		Escalation: EscalationConfig{
			MinNeedsScore:         6.0,
			QualifyingAgeRanges:   []string{"75_84", "85_plus"},
			CompatiblePreferences: []string{"open_to_move", "unsure"},
		},
		PreferenceClamp: ClampConfig{
			TriggerPreference: "strong_stay_home",
		},
		Confidence: ConfidenceConfig{
			MinLLMConfidence: 0.8,
		},
	}
}

// LoadDocument reads a policy document from a YAML file. Missing or
// zero-valued sections fall back to the built-in defaults so a partial
// policy file stays safe.
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy document: %w", err)
	}

	doc := DefaultDocument()
	if err := yaml.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("failed to parse policy document: %w", err)
	}
	doc.applyDefaults()
	return doc, nil
}

// LoadDocumentOrDefault loads the policy document from path, falling
// back to the built-in defaults when the path is empty or the file
// fails to load. A broken policy file must not stop assessments from
// running; the failure is logged loudly instead.
func LoadDocumentOrDefault(path string, logger *zerolog.Logger) *Document {
	if path == "" {
		return DefaultDocument()
	}

	doc, err := LoadDocument(path)
	if err != nil {
		if logger != nil {
			logger.Error().Err(err).
				Str("path", path).
				Msg("failed to load care policy, continuing with built-in defaults")
		}
		return DefaultDocument()
	}
	return doc
}

// applyDefaults backfills zero values left by a sparse document.
func (d *Document) applyDefaults() {
	def := DefaultDocument()
	if len(d.MemoryCareGates.RequiredFlags) == 0 {
		d.MemoryCareGates.RequiredFlags = def.MemoryCareGates.RequiredFlags
	}
	if len(d.MemoryCareGates.QualifyingFlags) == 0 {
		d.MemoryCareGates.QualifyingFlags = def.MemoryCareGates.QualifyingFlags
	}
	if d.Undercount.NeedThreshold <= 0 {
		d.Undercount.NeedThreshold = def.Undercount.NeedThreshold
	}
	if len(d.Undercount.LowHourBands) == 0 {
		d.Undercount.LowHourBands = def.Undercount.LowHourBands
	}
	if d.Escalation.MinNeedsScore <= 0 {
		d.Escalation.MinNeedsScore = def.Escalation.MinNeedsScore
	}
	if len(d.Escalation.QualifyingAgeRanges) == 0 {
		d.Escalation.QualifyingAgeRanges = def.Escalation.QualifyingAgeRanges
	}
	if len(d.Escalation.CompatiblePreferences) == 0 {
		d.Escalation.CompatiblePreferences = def.Escalation.CompatiblePreferences
	}
	if d.PreferenceClamp.TriggerPreference == "" {
		d.PreferenceClamp.TriggerPreference = def.PreferenceClamp.TriggerPreference
	}
	if d.Confidence.MinLLMConfidence <= 0 {
		d.Confidence.MinLLMConfidence = def.Confidence.MinLLMConfidence
	}
}
