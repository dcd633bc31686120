package entities

// CognitionBand is the discretized cognition severity classification,
// derived from raw answers independently of the point score.
type CognitionBand string

const (
	CognitionNone     CognitionBand = "none"
	CognitionMild     CognitionBand = "mild"
	CognitionModerate CognitionBand = "moderate"
	CognitionHigh     CognitionBand = "high"
)

// SupportBand is the discretized support-need classification.
type SupportBand string

const (
	SupportLow      SupportBand = "low"
	SupportModerate SupportBand = "moderate"
	SupportHigh     SupportBand = "high"
	Support24h      SupportBand = "24h"
)

// Routing folds the 24h band into high for tier-table lookup. The raw
// band is retained for diagnostics and must never drive tier selection.
func (b SupportBand) Routing() SupportBand {
	if b == Support24h {
		return SupportHigh
	}
	return b
}

// BandSummary carries the derived bands through a decision record.
type BandSummary struct {
	Cognition      CognitionBand `json:"cognition"`
	Support        SupportBand   `json:"support"`
	RoutingSupport SupportBand   `json:"routing_support"`
}
