// Couchwise - On-Device Personalization for Entertainment Content
// Copyright 2026 Ben Meredith (bmeredith)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bmeredith/couchwise

package feature

import (
	"math"
	"sort"
)

// Match is one ranked similarity result.
type Match struct {
	// ID is the content identifier of the matched vector.
	ID string `json:"id"`

	// Similarity is the cosine similarity to the query, in [-1, 1].
	Similarity float64 `json:"similarity"`
}

// CosineSimilarity returns dot(a,b) / (||a|| * ||b||). Mismatched lengths
// or a zero-norm operand yield 0 rather than an error or NaN.
func CosineSimilarity(a, b Vector) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// BatchSimilarity ranks every vector in corpus against the query and
// returns up to topN matches sorted by similarity descending. Ties keep
// the corpus insertion order (the sort is stable). The inputs are not
// mutated and the corpus map iteration is made deterministic by ranking
// over the supplied id order.
func BatchSimilarity(query Vector, ids []string, corpus map[string]Vector, topN int) []Match {
	if topN <= 0 || len(ids) == 0 {
		return nil
	}

	matches := make([]Match, 0, len(ids))
	for _, id := range ids {
		vec, ok := corpus[id]
		if !ok {
			continue
		}
		matches = append(matches, Match{ID: id, Similarity: CosineSimilarity(query, vec)})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})

	if len(matches) > topN {
		matches = matches[:topN]
	}
	return matches
}
