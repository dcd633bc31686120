package engine

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/seniornav/careplan/backend/internal/domain/entities"
)

// Question ids used by the guided care plan questionnaire. The scoring
// and flag tables are configuration; these ids are the contract between
// the questionnaire collaborator and the engine.
const (
	QMemoryChanges     = "memory_changes"
	QDiagnosis         = "cognition_diagnosis"
	QBehaviors         = "behaviors"
	QMobility          = "mobility"
	QBADLs             = "badls"
	QIADLs             = "iadls"
	QFalls             = "falls"
	QMedManagement     = "med_management"
	QHoursPerDay       = "hours_per_day"
	QPreference        = "care_preference"
	QAgeRange          = "age_range"
	QSocialContact     = "social_contact"
	QChronicConditions = "chronic_conditions"
)

// QuestionOption holds the score contribution and derived flags for one
// answer option.
type QuestionOption struct {
	Score float64  `json:"score"`
	Flags []string `json:"flags,omitempty"`
}

// Question is one entry of the static question/option/score table.
type Question struct {
	ID      string                    `json:"id"`
	Multi   bool                      `json:"multi"`
	Options map[string]QuestionOption `json:"options"`
}

// QuestionTable is the static question→option→score configuration.
type QuestionTable struct {
	Questions []Question `json:"questions"`

	byID map[string]*Question
}

func (t *QuestionTable) index() {
	t.byID = make(map[string]*Question, len(t.Questions))
	for i := range t.Questions {
		t.byID[t.Questions[i].ID] = &t.Questions[i]
	}
}

// Lookup returns the question config for an id.
func (t *QuestionTable) Lookup(id string) (*Question, bool) {
	q, ok := t.byID[id]
	return q, ok
}

// LoadQuestionTable reads a question table from a JSON file.
func LoadQuestionTable(path string) (*QuestionTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read question table: %w", err)
	}
	var table QuestionTable
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to parse question table: %w", err)
	}
	if len(table.Questions) == 0 {
		return nil, fmt.Errorf("question table is empty")
	}
	table.index()
	return &table, nil
}

// DefaultQuestionTable returns the built-in question/option/score table.
func DefaultQuestionTable() *QuestionTable {
	table := &QuestionTable{
		Questions: []Question{
			{
				ID: QMemoryChanges,
				Options: map[string]QuestionOption{
					"none":     {Score: 0},
					"mild":     {Score: 2},
					"moderate": {Score: 4, Flags: []string{entities.FlagMemorySeverityModerate}},
					"severe":   {Score: 6, Flags: []string{entities.FlagMemorySeveritySevere}},
				},
			},
			{
				ID: QDiagnosis,
				Options: map[string]QuestionOption{
					"none":      {Score: 0},
					"suspected": {Score: 1},
					"confirmed": {Score: 2, Flags: []string{entities.FlagDiagnosisConfirmed}},
				},
			},
			{
				ID:    QBehaviors,
				Multi: true,
				Options: map[string]QuestionOption{
					"none":              {Score: 0},
					"wandering":         {Score: 3, Flags: []string{entities.FlagWandering}},
					"elopement":         {Score: 3, Flags: []string{entities.FlagElopement}},
					"aggression":        {Score: 3, Flags: []string{entities.FlagAggression}},
					"severe_sundowning": {Score: 3, Flags: []string{entities.FlagSevereSundowning}},
				},
			},
			{
				ID: QMobility,
				Options: map[string]QuestionOption{
					"independent":    {Score: 0},
					"cane_or_walker": {Score: 2, Flags: []string{entities.FlagMobilityAided}},
					"wheelchair":     {Score: 4, Flags: []string{entities.FlagMobilityWheelchair}},
					"bedbound":       {Score: 6, Flags: []string{entities.FlagMobilityBedbound}},
				},
			},
			{
				ID:    QBADLs,
				Multi: true,
				Options: map[string]QuestionOption{
					"bathing":      {Score: 2},
					"dressing":     {Score: 2},
					"toileting":    {Score: 2},
					"transferring": {Score: 2},
					"eating":       {Score: 2},
					"continence":   {Score: 2},
				},
			},
			{
				ID:    QIADLs,
				Multi: true,
				Options: map[string]QuestionOption{
					"meal_prep":      {Score: 1},
					"finances":       {Score: 1},
					"medications":    {Score: 1},
					"transportation": {Score: 1},
					"housekeeping":   {Score: 1},
					"shopping":       {Score: 1},
				},
			},
			{
				ID: QFalls,
				Options: map[string]QuestionOption{
					"none":     {Score: 0},
					"one":      {Score: 2, Flags: []string{entities.FlagFallsOne}},
					"multiple": {Score: 4, Flags: []string{entities.FlagFallsMultiple}},
				},
			},
			{
				ID: QMedManagement,
				Options: map[string]QuestionOption{
					"simple":    {Score: 0},
					"some_help": {Score: 1},
					"complex":   {Score: 3, Flags: []string{entities.FlagMedComplex}},
				},
			},
			{
				ID: QHoursPerDay,
				Options: map[string]QuestionOption{
					"<1h":  {Score: 0},
					"1-3h": {Score: 1},
					"4-8h": {Score: 2},
					"24h":  {Score: 4},
				},
			},
			{
				ID: QSocialContact,
				Options: map[string]QuestionOption{
					"daily":  {Score: 0},
					"weekly": {Score: 1},
					"rarely": {Score: 2, Flags: []string{entities.FlagIsolationHigh}},
				},
			},
			{
				ID:    QChronicConditions,
				Multi: true,
				Options: map[string]QuestionOption{
					"diabetes":      {Score: 1},
					"hypertension":  {Score: 1},
					"heart_disease": {Score: 1},
					"copd":          {Score: 1},
					"arthritis":     {Score: 1},
					"parkinsons":    {Score: 1},
				},
			},
			{
				ID: QPreference,
				Options: map[string]QuestionOption{
					"strong_stay_home": {Score: 0},
					"open_to_move":     {Score: 0},
					"unsure":           {Score: 0},
				},
			},
			{
				ID: QAgeRange,
				Options: map[string]QuestionOption{
					"under_65": {Score: 0},
					"65_74":    {Score: 0},
					"75_84":    {Score: 0},
					"85_plus":  {Score: 0},
				},
			},
		},
	}
	table.index()
	return table
}

// DeriveFlags maps answers to the flag set using the option→flag tables,
// then adds computed flags. Derivation is idempotent: the same answers
// always yield the same set.
func DeriveFlags(answers entities.AnswerSet, table *QuestionTable) entities.FlagSet {
	flags := entities.NewFlagSet()
	for i := range table.Questions {
		q := &table.Questions[i]
		for _, selected := range answers.List(q.ID) {
			opt, ok := q.Options[selected]
			if !ok {
				continue
			}
			for _, f := range opt.Flags {
				flags.Add(f)
			}
		}
	}

	// Severe cognitive risk requires a confirmed diagnosis plus either
	// severe memory changes or multiple risky behaviors.
	if flags.Has(entities.FlagDiagnosisConfirmed) {
		if flags.Has(entities.FlagMemorySeveritySevere) ||
			flags.CountOf(entities.RiskyBehaviorFlags) >= 2 {
			flags.Add(entities.FlagSevereCognitiveRisk)
		}
	}

	return flags
}
