package services

import (
	"context"
	"errors"
	"testing"

	"github.com/seniornav/careplan/backend/internal/domain/entities"
	"github.com/seniornav/careplan/backend/internal/domain/providers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingAdvisor struct {
	advice *providers.TierAdvice
	err    error
	calls  int
}

func (a *countingAdvisor) RecommendTier(_ context.Context, _ *providers.TierAdviceRequest) (*providers.TierAdvice, error) {
	a.calls++
	if a.err != nil {
		return nil, a.err
	}
	return a.advice, nil
}

type mapCache struct {
	entries map[string][]byte
	sets    int
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[string][]byte)}
}

func (c *mapCache) Get(_ context.Context, key string) ([]byte, error) {
	data, ok := c.entries[key]
	if !ok {
		return nil, errors.New("cache miss")
	}
	return data, nil
}

func (c *mapCache) Set(_ context.Context, key string, value []byte, _ int) error {
	c.entries[key] = value
	c.sets++
	return nil
}

func (c *mapCache) Delete(_ context.Context, key string) error {
	delete(c.entries, key)
	return nil
}

func (c *mapCache) Exists(_ context.Context, key string) (bool, error) {
	_, ok := c.entries[key]
	return ok, nil
}

func adviceRequest() *providers.TierAdviceRequest {
	return &providers.TierAdviceRequest{
		AssessmentID: "a-1",
		Answers:      entities.AnswerSet{"q1_memory_changes": "mild"},
		TotalScore:   6,
		AllowedTiers: []entities.CareTier{entities.TierNoCareNeeded, entities.TierInHome},
	}
}

func TestCachingAdvisorReusesStoredAdvice(t *testing.T) {
	inner := &countingAdvisor{advice: &providers.TierAdvice{
		Tier:         entities.TierInHome,
		Confidence:   0.85,
		Rationale:    "light daily support fits",
		EmpathyScore: 6,
	}}
	cache := newMapCache()
	advisor := NewCachingTierAdvisor(inner, cache)

	ctx := context.Background()
	first, err := advisor.RecommendTier(ctx, adviceRequest())
	require.NoError(t, err)
	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, 1, cache.sets)

	// A second identical request, even under a new assessment ID, is
	// served from the cache.
	req := adviceRequest()
	req.AssessmentID = "a-2"
	second, err := advisor.RecommendTier(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, first.Tier, second.Tier)
	assert.Equal(t, first.Confidence, second.Confidence)
	assert.Equal(t, first.EmpathyScore, second.EmpathyScore)
}

func TestCachingAdvisorDistinguishesConstraints(t *testing.T) {
	inner := &countingAdvisor{advice: &providers.TierAdvice{
		Tier:       entities.TierInHome,
		Confidence: 0.85,
	}}
	advisor := NewCachingTierAdvisor(inner, newMapCache())

	ctx := context.Background()
	_, err := advisor.RecommendTier(ctx, adviceRequest())
	require.NoError(t, err)

	clamp := entities.TierInHome
	clamped := adviceRequest()
	clamped.ClampTier = &clamp
	_, err = advisor.RecommendTier(ctx, clamped)
	require.NoError(t, err)

	assert.Equal(t, 2, inner.calls)
}

func TestCachingAdvisorDoesNotCacheErrors(t *testing.T) {
	inner := &countingAdvisor{err: providers.ErrAdvisorUnavailable}
	cache := newMapCache()
	advisor := NewCachingTierAdvisor(inner, cache)

	_, err := advisor.RecommendTier(context.Background(), adviceRequest())
	assert.Error(t, err)
	assert.Zero(t, cache.sets)

	_, err = advisor.RecommendTier(context.Background(), adviceRequest())
	assert.Error(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestCachingAdvisorWithoutInner(t *testing.T) {
	advisor := NewCachingTierAdvisor(nil, newMapCache())

	_, err := advisor.RecommendTier(context.Background(), adviceRequest())
	assert.ErrorIs(t, err, providers.ErrAdvisorUnavailable)
}

func TestCachingAdvisorWithoutCache(t *testing.T) {
	inner := &countingAdvisor{advice: &providers.TierAdvice{
		Tier:       entities.TierInHome,
		Confidence: 0.85,
	}}
	advisor := NewCachingTierAdvisor(inner, nil)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		_, err := advisor.RecommendTier(ctx, adviceRequest())
		require.NoError(t, err)
	}
	assert.Equal(t, 2, inner.calls)
}
