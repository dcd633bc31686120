package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/seniornav/careplan/backend/internal/domain/entities"
	"github.com/seniornav/careplan/backend/internal/domain/providers"
)

const tierAdviceCacheTTLSeconds = 24 * 60 * 60

// CachingTierAdvisor wraps a TierAdvisor with a cache keyed by the
// answer snapshot and constraints. Identical assessments reuse the
// stored advice instead of paying for another model call.
type CachingTierAdvisor struct {
	inner providers.TierAdvisor
	cache providers.CacheProvider
}

// NewCachingTierAdvisor creates a caching advisor. cache may be nil, in
// which case every call goes to the inner advisor.
func NewCachingTierAdvisor(inner providers.TierAdvisor, cache providers.CacheProvider) *CachingTierAdvisor {
	return &CachingTierAdvisor{inner: inner, cache: cache}
}

// RecommendTier returns cached advice when the same request was seen
// before, otherwise consults the inner advisor and stores the result.
func (a *CachingTierAdvisor) RecommendTier(ctx context.Context, req *providers.TierAdviceRequest) (*providers.TierAdvice, error) {
	if a.inner == nil {
		return nil, providers.ErrAdvisorUnavailable
	}

	key, keyErr := adviceCacheKey(req)
	if a.cache != nil && keyErr == nil {
		if data, err := a.cache.Get(ctx, key); err == nil {
			var cached cachedAdvice
			if err := json.Unmarshal(data, &cached); err == nil && entities.CareTier(cached.Tier).IsValid() {
				return &providers.TierAdvice{
					Tier:         entities.CareTier(cached.Tier),
					Confidence:   cached.Confidence,
					Rationale:    cached.Rationale,
					EmpathyScore: cached.EmpathyScore,
				}, nil
			}
		}
	}

	advice, err := a.inner.RecommendTier(ctx, req)
	if err != nil {
		return nil, err
	}

	if a.cache != nil && keyErr == nil {
		data, err := json.Marshal(cachedAdvice{
			Tier:         string(advice.Tier),
			Confidence:   advice.Confidence,
			Rationale:    advice.Rationale,
			EmpathyScore: advice.EmpathyScore,
		})
		if err == nil {
			// Best-effort; a cache failure never fails the advice call.
			_ = a.cache.Set(ctx, key, data, tierAdviceCacheTTLSeconds)
		}
	}

	return advice, nil
}

type cachedAdvice struct {
	Tier         string  `json:"tier"`
	Confidence   float64 `json:"confidence"`
	Rationale    string  `json:"rationale"`
	EmpathyScore int     `json:"empathy_score"`
}

// adviceCacheKey hashes the answers and constraints. The assessment ID
// is deliberately excluded so identical snapshots share an entry.
func adviceCacheKey(req *providers.TierAdviceRequest) (string, error) {
	payload := struct {
		Answers entities.AnswerSet  `json:"answers"`
		Allowed []entities.CareTier `json:"allowed"`
		Clamp   *entities.CareTier  `json:"clamp,omitempty"`
	}{
		Answers: req.Answers,
		Allowed: req.AllowedTiers,
		Clamp:   req.ClampTier,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to build advice cache key: %w", err)
	}

	sum := sha256.Sum256(data)
	return "tier_advice:" + hex.EncodeToString(sum[:]), nil
}
