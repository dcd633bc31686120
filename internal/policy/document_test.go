package policy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/seniornav/careplan/backend/internal/domain/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultDocument(t *testing.T) {
	doc := DefaultDocument()

	assert.Equal(t, []string{entities.FlagDiagnosisConfirmed}, doc.MemoryCareGates.RequiredFlags)
	assert.NotEmpty(t, doc.MemoryCareGates.QualifyingFlags)
	assert.Equal(t, 0.8, doc.Confidence.MinLLMConfidence)
	assert.Equal(t, "strong_stay_home", doc.PreferenceClamp.TriggerPreference)
	assert.Equal(t, 4, doc.Undercount.NeedThreshold)
	assert.Equal(t, 6.0, doc.Escalation.MinNeedsScore)
}

func TestLoadDocumentBackfillsSparseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	sparse := `
version: 2
confidence:
  min_llm_confidence: 0.9
`
	require.NoError(t, os.WriteFile(path, []byte(sparse), 0o644))

	doc, err := LoadDocument(path)
	require.NoError(t, err)

	assert.Equal(t, 2, doc.Version)
	assert.Equal(t, 0.9, doc.Confidence.MinLLMConfidence)

	// Everything the file omits keeps the built-in values.
	assert.Equal(t, []string{entities.FlagDiagnosisConfirmed}, doc.MemoryCareGates.RequiredFlags)
	assert.Equal(t, "strong_stay_home", doc.PreferenceClamp.TriggerPreference)
	assert.Equal(t, []string{"<1h", "1-3h"}, doc.Undercount.LowHourBands)
}

func TestLoadDocumentRejectsInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: [not: valid"), 0o644))

	_, err := LoadDocument(path)
	assert.Error(t, err)
}

func TestLoadDocumentMissingFile(t *testing.T) {
	_, err := LoadDocument(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadDocumentOrDefaultDegradesOnBrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: [not: valid"), 0o644))

	// A broken policy file never stops the pipeline; the built-in
	// defaults take over.
	doc := LoadDocumentOrDefault(path, nil)
	require.NotNil(t, doc)
	assert.Equal(t, DefaultDocument(), doc)
}

func TestLoadDocumentOrDefaultEmptyPath(t *testing.T) {
	assert.Equal(t, DefaultDocument(), LoadDocumentOrDefault("", nil))
}

func TestLoadDocumentOrDefaultLoadsValidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("confidence:\n  min_llm_confidence: 0.95\n"), 0o644))

	doc := LoadDocumentOrDefault(path, nil)
	assert.Equal(t, 0.95, doc.Confidence.MinLLMConfidence)
}
