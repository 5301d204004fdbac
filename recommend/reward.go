// Couchwise - On-Device Personalization for Entertainment Content
// Copyright 2026 Ben Meredith (bmeredith)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bmeredith/couchwise

package recommend

import (
	"fmt"
	"math"
)

// RewardWeights tunes the contribution of each signal to the session
// reward. The values are relative; CalculateReward normalizes by their
// sum, so they need not add up to 1.
type RewardWeights struct {
	// Completion weights the watch completion rate. Default: 0.5.
	Completion float64 `json:"completion" koanf:"completion"`

	// Rating weights the explicit rating when present. Sessions without a
	// rating renormalize over the remaining signals. Default: 0.3.
	Rating float64 `json:"rating" koanf:"rating"`

	// Engagement weights the implicit engagement signal derived from
	// pause/rewind/fast-forward counters. Default: 0.2.
	Engagement float64 `json:"engagement" koanf:"engagement"`
}

// DefaultRewardWeights returns the default reward weighting.
func DefaultRewardWeights() RewardWeights {
	return RewardWeights{
		Completion: 0.5,
		Rating:     0.3,
		Engagement: 0.2,
	}
}

// Validate checks that weights are non-negative and not all zero.
func (w RewardWeights) Validate() error {
	if w.Completion < 0 || w.Rating < 0 || w.Engagement < 0 {
		return fmt.Errorf("reward weights must be non-negative")
	}
	if w.Completion+w.Rating+w.Engagement == 0 {
		return fmt.Errorf("reward weights must not all be zero")
	}
	return nil
}

// CalculateReward maps a viewing session to a scalar reward in [0, 1].
// It is a pure function of the session and the weighting configuration.
//
// Completion contributes directly; an explicit rating contributes on the
// same normalized scale when present; the engagement component is derived
// from the implicit counters, where rewinds and moderate pausing read as
// interest and heavy fast-forwarding as disengagement. A fast-forward-heavy
// session that was also barely completed is pinned to the low end.
//
//nolint:gocritic // hugeParam: session passed by value for purity
func CalculateReward(s ViewingSession, w RewardWeights) float64 {
	wc, wr, we := w.Completion, w.Rating, w.Engagement
	if wc < 0 || wr < 0 || we < 0 || wc+wr+we == 0 {
		wc, wr, we = DefaultRewardWeights().Completion, DefaultRewardWeights().Rating, DefaultRewardWeights().Engagement
	}

	completion := clamp01(s.CompletionRate)
	engagement := engagementSignal(s, completion)

	var rating float64
	if s.Rating != nil {
		rating = clamp01(*s.Rating / 10.0)
	} else {
		// No explicit rating: drop the term and renormalize.
		wr = 0
	}

	total := wc + wr + we
	if total == 0 {
		return clamp01(completion)
	}

	reward := (wc*completion + wr*rating + we*engagement) / total
	if math.IsNaN(reward) || math.IsInf(reward, 0) {
		return 0
	}
	return clamp01(reward)
}

// engagementSignal derives a [0, 1] engagement estimate from the implicit
// counters.
//
//nolint:gocritic // hugeParam: session passed by value for purity
func engagementSignal(s ViewingSession, completion float64) float64 {
	// Neutral baseline for a session with no interaction at all.
	signal := 0.5

	// Heavy fast-forwarding is skimming, not watching.
	signal -= 0.5 * ratio(s.FastForwards, 10)

	// Rewinding usually means rewatching a moment that landed.
	signal += 0.2 * ratio(s.Rewinds, 5)

	// A couple of pauses is normal viewing; constant pausing is not.
	switch {
	case s.Pauses >= 1 && s.Pauses <= 3:
		signal += 0.1
	case s.Pauses > 6:
		signal -= 0.2
	}

	signal = clamp01(signal)

	// Skimmed and abandoned: pull the signal to the low end.
	if s.FastForwards >= 5 && completion < 0.3 {
		signal = math.Min(signal, 0.1)
	}

	return signal
}

// ratio returns min(n, cap) / cap.
func ratio(n, capN int) float64 {
	if n <= 0 {
		return 0
	}
	if n > capN {
		n = capN
	}
	return float64(n) / float64(capN)
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
