package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/seniornav/careplan/backend/internal/domain/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapTier(t *testing.T) {
	mapper := NewTierMapper(DefaultTierTable())

	cases := []struct {
		cognition entities.CognitionBand
		support   entities.SupportBand
		want      entities.CareTier
	}{
		{entities.CognitionNone, entities.SupportLow, entities.TierNoCareNeeded},
		{entities.CognitionNone, entities.SupportHigh, entities.TierAssistedLiving},
		{entities.CognitionMild, entities.SupportModerate, entities.TierInHome},
		{entities.CognitionModerate, entities.SupportHigh, entities.TierMemoryCare},
		{entities.CognitionHigh, entities.SupportLow, entities.TierMemoryCare},
		{entities.CognitionHigh, entities.SupportHigh, entities.TierMemoryCareHighAcuity},
	}

	for _, tc := range cases {
		tier, ok := mapper.MapTier(tc.cognition, tc.support)
		require.True(t, ok, "(%s, %s)", tc.cognition, tc.support)
		assert.Equal(t, tc.want, tier, "(%s, %s)", tc.cognition, tc.support)
	}
}

func TestMapTierMissingEntry(t *testing.T) {
	mapper := NewTierMapper(TierTable{})
	_, ok := mapper.MapTier(entities.CognitionNone, entities.SupportLow)
	assert.False(t, ok)
}

func TestLoadTierTableRejectsUnknownTier(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tier_table.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"none": {"low": "nursing_home"}}`), 0o644))

	_, err := LoadTierTable(path)
	assert.Error(t, err)
}

func TestLoadTierTableRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tier_table.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"none": {"low": "no_care_needed", "high": "assisted_living"}}`), 0o644))

	table, err := LoadTierTable(path)
	require.NoError(t, err)

	tier, ok := NewTierMapper(table).MapTier(entities.CognitionNone, entities.SupportHigh)
	require.True(t, ok)
	assert.Equal(t, entities.TierAssistedLiving, tier)
}
