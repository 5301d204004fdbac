// Couchwise - On-Device Personalization for Entertainment Content
// Copyright 2026 Ben Meredith (bmeredith)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bmeredith/couchwise

package feature

import (
	"fmt"
	"hash/fnv"
	"math"
	"strings"

	"github.com/bmeredith/couchwise/catalog"
)

// Vector is a fixed-dimension embedding. Vectors are never mutated after
// creation.
type Vector []float64

// Segment widths of the content embedding layout. Genre and type segments
// are one-hot over the closed vocabularies; people and keyword segments are
// FNV-1a hash buckets over the open ones.
const (
	genreSlots   = 16
	typeSlots    = 8
	numericSlots = 8
	peopleSlots  = 16
	keywordSlots = 16

	// Dimension is the embedding dimension produced by the encoder.
	Dimension = genreSlots + typeSlots + numericSlots + peopleSlots + keywordSlots
)

// Segment offsets within the vector.
const (
	genreOffset   = 0
	typeOffset    = genreOffset + genreSlots
	numericOffset = typeOffset + typeSlots
	peopleOffset  = numericOffset + numericSlots
	keywordOffset = peopleOffset + peopleSlots
)

// Config contains feature encoder parameters.
type Config struct {
	// GenreWeight scales the genre segment before normalization. Genres
	// carry the strongest similarity signal, so they are weighted above
	// the numeric priors. Default: 2.0.
	GenreWeight float64 `json:"genre_weight" koanf:"genre_weight"`

	// RecencyWindow bounds the recent genre/type lists in a context.
	// Default: 5.
	RecencyWindow int `json:"recency_window" koanf:"recency_window"`
}

// DefaultConfig returns the default encoder configuration.
func DefaultConfig() Config {
	return Config{
		GenreWeight:   2.0,
		RecencyWindow: 5,
	}
}

// Validate checks encoder parameters.
func (c Config) Validate() error {
	if c.GenreWeight <= 0 {
		return fmt.Errorf("genre weight %f must be positive", c.GenreWeight)
	}
	if c.RecencyWindow <= 0 {
		return fmt.Errorf("recency window %d must be positive", c.RecencyWindow)
	}
	return nil
}

// Encoder deterministically maps content items to embedding vectors and
// viewing contexts to discretized state keys. It is pure: no randomness,
// no dependency on call order.
type Encoder struct {
	cfg Config
}

// NewEncoder creates an encoder.
func NewEncoder(cfg Config) (*Encoder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid encoder config: %w", err)
	}
	return &Encoder{cfg: cfg}, nil
}

// EncodeContent produces the L2-normalized embedding for a content item.
// An item with no genres, people, or keywords still yields a valid vector
// of the configured dimension with near-zero categorical segments.
//
//nolint:gocritic // hugeParam: item passed by value for immutability
func (e *Encoder) EncodeContent(item catalog.ContentItem) Vector {
	v := make(Vector, Dimension)

	for _, g := range item.Genres {
		if idx := catalog.GenreIndex(g); idx >= 0 && idx < genreSlots {
			v[genreOffset+idx] = e.cfg.GenreWeight
		}
	}

	if idx := catalog.TypeIndex(item.Type); idx >= 0 && idx < typeSlots {
		v[typeOffset+idx] = 1.0
	}

	v[numericOffset+0] = clamp01(item.Rating / 10.0)
	v[numericOffset+1] = clamp01(item.Popularity / 100.0)
	v[numericOffset+2] = clamp01(float64(item.DurationMinutes) / 240.0)
	if item.Year > 0 {
		v[numericOffset+3] = clamp01(float64(item.Year-1970) / 60.0)
	}

	hashInto(v[peopleOffset:peopleOffset+peopleSlots], item.Actors)
	hashInto(v[peopleOffset:peopleOffset+peopleSlots], item.Directors)
	hashInto(v[keywordOffset:keywordOffset+keywordSlots], item.Keywords)

	return Normalize(v)
}

// EncodeContext produces the discretized state key for a viewing context.
// The key indexes the policy's value table, so it must stay compact:
// time slot, day type, most recent genre, and a bucketed completion rate.
func (e *Encoder) EncodeContext(ctx Context) string {
	genre := "none"
	if len(ctx.RecentGenres) > 0 {
		genre = ctx.RecentGenres[0]
	}

	return string(ctx.TimeSlot) + "|" + string(ctx.DayType) +
		"|g:" + genre + "|c:" + completionBucket(ctx.AvgCompletion)
}

// completionBucket discretizes a completion rate into three levels.
func completionBucket(rate float64) string {
	switch {
	case rate >= 0.66:
		return "high"
	case rate >= 0.33:
		return "mid"
	default:
		return "low"
	}
}

// hashInto accumulates FNV-1a hash buckets for an open vocabulary. Values
// accumulate so repeated collaborators strengthen their bucket.
func hashInto(segment []float64, terms []string) {
	for _, term := range terms {
		t := strings.ToLower(strings.TrimSpace(term))
		if t == "" {
			continue
		}
		h := fnv.New32a()
		_, _ = h.Write([]byte(t))
		segment[int(h.Sum32())%len(segment)] += 1.0
	}
}

// Normalize L2-normalizes v in place and returns it. A zero vector is
// returned unchanged: still valid, still NaN-free.
func Normalize(v Vector) Vector {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	if sum == 0 {
		return v
	}

	norm := math.Sqrt(sum)
	for i := range v {
		v[i] /= norm
	}
	return v
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
