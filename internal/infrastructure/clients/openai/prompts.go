package openai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/seniornav/careplan/backend/internal/domain/providers"
)

const tierAdvisorSystemPrompt = `You are a senior-care placement assistant reviewing a completed care assessment. Return ONLY valid JSON with this schema:
{
  "tier": string (exactly one of: no_care_needed, in_home, assisted_living, memory_care, memory_care_high_acuity),
  "confidence": number (0.0-1.0, your confidence in the recommendation),
  "rationale": string (2-3 plain sentences a family member can understand),
  "empathy_score": integer (1-10, how emotionally sensitive the situation is)
}
You MUST pick a tier from the allowed_tiers list in the context. If a clamp_tier is present you may not propose a tier more intensive than it. Never diagnose. Keep language warm and non-alarmist.`

// advisorContext is the JSON document handed to the model as the user
// message.
type advisorContext struct {
	Answers      map[string]interface{} `json:"answers"`
	Flags        []string               `json:"flags"`
	Bands        map[string]string      `json:"bands"`
	TotalScore   float64                `json:"total_score"`
	AllowedTiers []string               `json:"allowed_tiers"`
	ClampTier    *string                `json:"clamp_tier,omitempty"`
}

func buildAdvisorUserPrompt(req *providers.TierAdviceRequest) (string, error) {
	ctx := advisorContext{
		Answers:    req.Answers,
		Flags:      req.Flags.Sorted(),
		TotalScore: req.TotalScore,
		Bands: map[string]string{
			"cognition": string(req.Bands.Cognition),
			"support":   string(req.Bands.Support),
		},
	}
	for _, t := range req.AllowedTiers {
		ctx.AllowedTiers = append(ctx.AllowedTiers, string(t))
	}
	if req.ClampTier != nil {
		clamp := string(*req.ClampTier)
		ctx.ClampTier = &clamp
	}

	data, err := json.Marshal(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to marshal advisor context: %w", err)
	}
	return "Assessment context:\n" + string(data), nil
}

// advicePayload is the raw shape parsed from the model output before
// validation.
type advicePayload struct {
	Tier         string  `json:"tier"`
	Confidence   float64 `json:"confidence"`
	Rationale    string  `json:"rationale"`
	EmpathyScore int     `json:"empathy_score"`
}

func parseAdvicePayload(text string) (*advicePayload, error) {
	cleaned := stripCodeFence(text)
	var payload advicePayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, fmt.Errorf("failed to parse advice payload: %w", err)
	}
	return &payload, nil
}

// stripCodeFence removes Markdown code fences the model sometimes wraps
// around its JSON.
func stripCodeFence(text string) string {
	cleaned := strings.TrimSpace(text)
	if strings.HasPrefix(cleaned, "```json") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimSuffix(cleaned, "```")
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(cleaned, "```")
	}
	return strings.TrimSpace(cleaned)
}
