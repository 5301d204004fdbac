// Couchwise - On-Device Personalization for Entertainment Content
// Copyright 2026 Ben Meredith (bmeredith)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bmeredith/couchwise

package profile

import (
	"fmt"
	"math"
	"sort"

	"github.com/bmeredith/couchwise/catalog"
	"github.com/bmeredith/couchwise/recommend/feature"
)

// LearnedPattern is a generalized observation tying a preferred attribute
// to a viewing context, with the supporting sample count and a confidence
// derived from the average reward of its samples.
type LearnedPattern struct {
	// TimeSlot is the context time bucket.
	TimeSlot feature.TimeSlot `json:"time_slot"`

	// DayType is the context day bucket.
	DayType feature.DayType `json:"day_type"`

	// Attribute names the preferred attribute, e.g. "genre:drama" or
	// "type:series".
	Attribute string `json:"attribute"`

	// Samples is the number of observations supporting the pattern.
	Samples int `json:"samples"`

	// TotalReward accumulates the reward over all samples.
	TotalReward float64 `json:"total_reward"`
}

// Confidence is the average reward across the pattern's samples, in [0, 1].
func (p LearnedPattern) Confidence() float64 {
	if p.Samples == 0 {
		return 0
	}
	return p.TotalReward / float64(p.Samples)
}

// key identifies a pattern inside the aggregator.
func (p LearnedPattern) key() string {
	return string(p.TimeSlot) + "|" + string(p.DayType) + "|" + p.Attribute
}

// GenreWeight is one ranked genre in a preference profile.
type GenreWeight struct {
	Genre  string  `json:"genre"`
	Weight float64 `json:"weight"`
}

// TypeWeight is one ranked content type in a preference profile.
type TypeWeight struct {
	Type   catalog.ContentType `json:"type"`
	Weight float64             `json:"weight"`
}

// PreferenceProfile is a derived, recomputable projection of accumulated
// preferences: genres and types ranked by accumulated weight descending,
// ties broken by first-observed order.
type PreferenceProfile struct {
	FavoriteGenres []GenreWeight `json:"favorite_genres"`
	FavoriteTypes  []TypeWeight  `json:"favorite_types"`
}

// Aggregator maintains running reward-weighted counts per genre and per
// content type, and consolidates repeated context/attribute co-occurrences
// into learned patterns. Not internally locked; owned by one engine.
type Aggregator struct {
	genreWeights map[string]float64
	genreOrder   []string

	typeWeights map[catalog.ContentType]float64
	typeOrder   []catalog.ContentType

	patterns map[string]*LearnedPattern

	// minSamples is the support a pattern needs before it is reported.
	minSamples int
}

// MinPatternSamples is the default support threshold for reported patterns.
const MinPatternSamples = 3

// NewAggregator creates an empty aggregator. Non-positive minSamples falls
// back to MinPatternSamples.
func NewAggregator(minSamples int) *Aggregator {
	if minSamples <= 0 {
		minSamples = MinPatternSamples
	}
	return &Aggregator{
		genreWeights: make(map[string]float64),
		typeWeights:  make(map[catalog.ContentType]float64),
		patterns:     make(map[string]*LearnedPattern),
		minSamples:   minSamples,
	}
}

// Observe folds one watched item into the running statistics, weighted by
// the session's reward. Non-finite rewards are discarded.
//
//nolint:gocritic // hugeParam: item passed by value for immutability
func (a *Aggregator) Observe(item catalog.ContentItem, slot feature.TimeSlot, day feature.DayType, reward float64) {
	if math.IsNaN(reward) || math.IsInf(reward, 0) {
		return
	}

	for _, g := range item.Genres {
		if _, seen := a.genreWeights[g]; !seen {
			a.genreOrder = append(a.genreOrder, g)
		}
		a.genreWeights[g] += reward
		a.strengthen(slot, day, "genre:"+g, reward)
	}

	if _, seen := a.typeWeights[item.Type]; !seen {
		a.typeOrder = append(a.typeOrder, item.Type)
	}
	a.typeWeights[item.Type] += reward
	a.strengthen(slot, day, "type:"+string(item.Type), reward)
}

// strengthen creates or reinforces the pattern for one context/attribute
// co-occurrence.
func (a *Aggregator) strengthen(slot feature.TimeSlot, day feature.DayType, attribute string, reward float64) {
	p := LearnedPattern{TimeSlot: slot, DayType: day, Attribute: attribute}
	existing, ok := a.patterns[p.key()]
	if !ok {
		existing = &p
		a.patterns[p.key()] = existing
	}
	existing.Samples++
	existing.TotalReward += reward
}

// Preferences returns the ranked preference projection.
func (a *Aggregator) Preferences() PreferenceProfile {
	genres := make([]GenreWeight, 0, len(a.genreOrder))
	for _, g := range a.genreOrder {
		genres = append(genres, GenreWeight{Genre: g, Weight: a.genreWeights[g]})
	}
	sort.SliceStable(genres, func(i, j int) bool {
		return genres[i].Weight > genres[j].Weight
	})

	types := make([]TypeWeight, 0, len(a.typeOrder))
	for _, t := range a.typeOrder {
		types = append(types, TypeWeight{Type: t, Weight: a.typeWeights[t]})
	}
	sort.SliceStable(types, func(i, j int) bool {
		return types[i].Weight > types[j].Weight
	})

	return PreferenceProfile{FavoriteGenres: genres, FavoriteTypes: types}
}

// Patterns returns learned patterns with at least the configured sample
// support, sorted by confidence descending, ties by attribute then context
// for a stable order.
func (a *Aggregator) Patterns() []LearnedPattern {
	out := make([]LearnedPattern, 0, len(a.patterns))
	for _, p := range a.patterns {
		if p.Samples >= a.minSamples {
			out = append(out, *p)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		ci, cj := out[i].Confidence(), out[j].Confidence()
		if ci != cj {
			return ci > cj
		}
		return out[i].key() < out[j].key()
	})
	return out
}

// PatternCount returns the number of consolidated patterns, including those
// below the reporting threshold.
func (a *Aggregator) PatternCount() int {
	return len(a.patterns)
}

// GenreAffinity returns the accumulated weight for a genre, 0 if unseen.
func (a *Aggregator) GenreAffinity(genre string) float64 {
	return a.genreWeights[genre]
}

// State is the serializable aggregator state.
type State struct {
	GenreWeights map[string]float64              `json:"genre_weights"`
	GenreOrder   []string                        `json:"genre_order"`
	TypeWeights  map[catalog.ContentType]float64 `json:"type_weights"`
	TypeOrder    []catalog.ContentType           `json:"type_order"`
	Patterns     []LearnedPattern                `json:"patterns"`
}

// Export returns a deep copy of the aggregator state for snapshotting.
func (a *Aggregator) Export() State {
	s := State{
		GenreWeights: make(map[string]float64, len(a.genreWeights)),
		GenreOrder:   append([]string(nil), a.genreOrder...),
		TypeWeights:  make(map[catalog.ContentType]float64, len(a.typeWeights)),
		TypeOrder:    append([]catalog.ContentType(nil), a.typeOrder...),
		Patterns:     make([]LearnedPattern, 0, len(a.patterns)),
	}
	for g, w := range a.genreWeights {
		s.GenreWeights[g] = w
	}
	for t, w := range a.typeWeights {
		s.TypeWeights[t] = w
	}
	for _, p := range a.patterns {
		s.Patterns = append(s.Patterns, *p)
	}

	// Map iteration order is random; keep exported patterns stable.
	sort.Slice(s.Patterns, func(i, j int) bool {
		return s.Patterns[i].key() < s.Patterns[j].key()
	})
	return s
}

// Import replaces the aggregator state with a validated copy of s. Weights
// must be finite and every pattern needs a positive sample count; nothing
// is applied on error.
func (a *Aggregator) Import(s State) error {
	genreWeights := make(map[string]float64, len(s.GenreWeights))
	for g, w := range s.GenreWeights {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("non-finite weight for genre %q", g)
		}
		genreWeights[g] = w
	}

	typeWeights := make(map[catalog.ContentType]float64, len(s.TypeWeights))
	for t, w := range s.TypeWeights {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("non-finite weight for type %q", t)
		}
		typeWeights[t] = w
	}

	patterns := make(map[string]*LearnedPattern, len(s.Patterns))
	for i := range s.Patterns {
		p := s.Patterns[i]
		if p.Samples <= 0 {
			return fmt.Errorf("pattern %q has non-positive sample count", p.key())
		}
		if math.IsNaN(p.TotalReward) || math.IsInf(p.TotalReward, 0) {
			return fmt.Errorf("pattern %q has non-finite reward", p.key())
		}
		patterns[p.key()] = &p
	}

	a.genreWeights = genreWeights
	a.genreOrder = append([]string(nil), s.GenreOrder...)
	a.typeWeights = typeWeights
	a.typeOrder = append([]catalog.ContentType(nil), s.TypeOrder...)
	a.patterns = patterns
	return nil
}

// Reset discards all accumulated statistics.
func (a *Aggregator) Reset() {
	a.genreWeights = make(map[string]float64)
	a.genreOrder = nil
	a.typeWeights = make(map[catalog.ContentType]float64)
	a.typeOrder = nil
	a.patterns = make(map[string]*LearnedPattern)
}
