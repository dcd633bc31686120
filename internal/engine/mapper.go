package engine

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/seniornav/careplan/backend/internal/domain/entities"
)

// TierTable is the (cognition band × routing support band) → tier
// lookup table. The contents are configuration; the engine only owns
// the lookup mechanism and the "no entry" fallback.
type TierTable map[entities.CognitionBand]map[entities.SupportBand]entities.CareTier

// DefaultTierTable returns the built-in mapping.
func DefaultTierTable() TierTable {
	return TierTable{
		entities.CognitionNone: {
			entities.SupportLow:      entities.TierNoCareNeeded,
			entities.SupportModerate: entities.TierInHome,
			entities.SupportHigh:     entities.TierAssistedLiving,
		},
		entities.CognitionMild: {
			entities.SupportLow:      entities.TierInHome,
			entities.SupportModerate: entities.TierInHome,
			entities.SupportHigh:     entities.TierAssistedLiving,
		},
		entities.CognitionModerate: {
			entities.SupportLow:      entities.TierInHome,
			entities.SupportModerate: entities.TierAssistedLiving,
			entities.SupportHigh:     entities.TierMemoryCare,
		},
		entities.CognitionHigh: {
			entities.SupportLow:      entities.TierMemoryCare,
			entities.SupportModerate: entities.TierMemoryCare,
			entities.SupportHigh:     entities.TierMemoryCareHighAcuity,
		},
	}
}

// LoadTierTable reads a tier table from a JSON file and validates every
// entry against the canonical tier values.
func LoadTierTable(path string) (TierTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tier table: %w", err)
	}
	var raw map[entities.CognitionBand]map[entities.SupportBand]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse tier table: %w", err)
	}

	table := make(TierTable, len(raw))
	for cog, row := range raw {
		table[cog] = make(map[entities.SupportBand]entities.CareTier, len(row))
		for support, tierRaw := range row {
			tier, err := entities.ParseTier(tierRaw)
			if err != nil {
				return nil, fmt.Errorf("tier table entry (%s, %s): %w", cog, support, err)
			}
			table[cog][support] = tier
		}
	}
	return table, nil
}

// TierMapper performs the two-key table lookup.
type TierMapper struct {
	table TierTable
}

// NewTierMapper creates a mapper over the given table.
func NewTierMapper(table TierTable) *TierMapper {
	return &TierMapper{table: table}
}

// MapTier looks up the tier for a cognition band and a routing-safe
// support band. The second return value is false when the table has no
// entry for the pair.
func (m *TierMapper) MapTier(cognition entities.CognitionBand, routingSupport entities.SupportBand) (entities.CareTier, bool) {
	row, ok := m.table[cognition]
	if !ok {
		return "", false
	}
	tier, ok := row[routingSupport]
	return tier, ok
}
