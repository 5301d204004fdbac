// Couchwise - On-Device Personalization for Entertainment Content
// Copyright 2026 Ben Meredith (bmeredith)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bmeredith/couchwise

package recommend

import (
	"fmt"

	"github.com/bmeredith/couchwise/recommend/feature"
	"github.com/bmeredith/couchwise/recommend/policy"
)

// Config contains all configuration for one engine instance.
type Config struct {
	// Policy contains the Q-learning hyperparameters.
	Policy policy.Config `json:"policy" koanf:"policy"`

	// Reward tunes the session reward weighting.
	Reward RewardWeights `json:"reward" koanf:"reward"`

	// Encoder contains the feature encoder parameters.
	Encoder feature.Config `json:"encoder" koanf:"encoder"`

	// Compose contains the recommendation blending weights.
	Compose ComposeConfig `json:"compose" koanf:"compose"`

	// CacheCapacity bounds the embedding cache. Default: 128.
	CacheCapacity int `json:"cache_capacity" koanf:"cache_capacity"`

	// MemorySize bounds the replay memory. Default: 1000.
	MemorySize int `json:"memory_size" koanf:"memory_size"`

	// ReplayBatch is the default experience-replay batch size.
	// Default: 32.
	ReplayBatch int `json:"replay_batch" koanf:"replay_batch"`

	// MinPatternSamples is the support a learned pattern needs before it
	// is reported. Default: 3.
	MinPatternSamples int `json:"min_pattern_samples" koanf:"min_pattern_samples"`

	// Seed is the random seed for deterministic behavior. If zero, a
	// fixed default seed is used.
	Seed int64 `json:"seed" koanf:"seed"`
}

// ComposeConfig tunes how the recommendation composer blends its signals.
// The weights are relative and normalized at scoring time.
type ComposeConfig struct {
	// ActionWeight is the weight of alignment between an item and the
	// policy's preferred strategy. Default: 0.4.
	ActionWeight float64 `json:"action_weight" koanf:"action_weight"`

	// SimilarityWeight is the weight of similarity between an item's
	// embedding and the viewer's preference embedding. Default: 0.35.
	SimilarityWeight float64 `json:"similarity_weight" koanf:"similarity_weight"`

	// PriorWeight is the weight of catalog priors (rating, popularity).
	// Default: 0.25.
	PriorWeight float64 `json:"prior_weight" koanf:"prior_weight"`

	// RecentWindow bounds the session history used for context derivation
	// and the preference embedding. Default: 20.
	RecentWindow int `json:"recent_window" koanf:"recent_window"`

	// HighRewardThreshold is the minimum reward for a session to shape
	// the preference embedding. Default: 0.6.
	HighRewardThreshold float64 `json:"high_reward_threshold" koanf:"high_reward_threshold"`
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() *Config {
	return &Config{
		Policy:  policy.DefaultConfig(),
		Reward:  DefaultRewardWeights(),
		Encoder: feature.DefaultConfig(),
		Compose: ComposeConfig{
			ActionWeight:        0.4,
			SimilarityWeight:    0.35,
			PriorWeight:         0.25,
			RecentWindow:        20,
			HighRewardThreshold: 0.6,
		},
		CacheCapacity:     feature.DefaultCacheCapacity,
		MemorySize:        1000,
		ReplayBatch:       32,
		MinPatternSamples: 3,
	}
}

// Validate checks the full configuration.
func (c *Config) Validate() error {
	if err := c.Policy.Validate(); err != nil {
		return fmt.Errorf("policy: %w", err)
	}
	if err := c.Reward.Validate(); err != nil {
		return fmt.Errorf("reward: %w", err)
	}
	if err := c.Encoder.Validate(); err != nil {
		return fmt.Errorf("encoder: %w", err)
	}
	if err := c.Compose.Validate(); err != nil {
		return fmt.Errorf("compose: %w", err)
	}
	if c.CacheCapacity < 0 {
		return fmt.Errorf("cache capacity %d must not be negative", c.CacheCapacity)
	}
	if c.MemorySize < 0 {
		return fmt.Errorf("memory size %d must not be negative", c.MemorySize)
	}
	if c.ReplayBatch < 0 {
		return fmt.Errorf("replay batch %d must not be negative", c.ReplayBatch)
	}
	return nil
}

// Validate checks the composer weights.
func (c ComposeConfig) Validate() error {
	if c.ActionWeight < 0 || c.SimilarityWeight < 0 || c.PriorWeight < 0 {
		return fmt.Errorf("compose weights must be non-negative")
	}
	if c.ActionWeight+c.SimilarityWeight+c.PriorWeight == 0 {
		return fmt.Errorf("compose weights must not all be zero")
	}
	if c.RecentWindow <= 0 {
		return fmt.Errorf("recent window %d must be positive", c.RecentWindow)
	}
	if c.HighRewardThreshold < 0 || c.HighRewardThreshold > 1 {
		return fmt.Errorf("high reward threshold %f outside [0, 1]", c.HighRewardThreshold)
	}
	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}
