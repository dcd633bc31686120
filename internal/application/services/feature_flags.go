package services

import (
	"os"
)

type FeatureFlags struct {
	tierAdvisorEnabled  bool
	adviceCacheEnabled  bool
	eventPublishEnabled bool
}

func NewFeatureFlags() *FeatureFlags {
	advisor := os.Getenv("FEATURE_TIER_ADVISOR") != "false"
	cache := os.Getenv("FEATURE_ADVICE_CACHE") != "false"
	events := os.Getenv("FEATURE_EVENT_PUBLISH") != "false"

	return &FeatureFlags{
		tierAdvisorEnabled:  advisor,
		adviceCacheEnabled:  cache,
		eventPublishEnabled: events,
	}
}

func (f *FeatureFlags) TierAdvisorEnabled() bool {
	return f.tierAdvisorEnabled
}

func (f *FeatureFlags) AdviceCacheEnabled() bool {
	return f.adviceCacheEnabled
}

func (f *FeatureFlags) EventPublishEnabled() bool {
	return f.eventPublishEnabled
}
