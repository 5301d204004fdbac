// Couchwise - On-Device Personalization for Entertainment Content
// Copyright 2026 Ben Meredith (bmeredith)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bmeredith/couchwise

// Package feature turns catalog items and viewing contexts into the numeric
// representations the engine learns over.
//
// Three pieces live here:
//
//   - Encoder: a pure, deterministic mapping from a content item to a
//     fixed-dimension L2-normalized embedding vector, and from a viewing
//     context to a discretized state key for the value table.
//   - Cache: a bounded LRU cache of content embeddings, computed lazily
//     through the encoder.
//   - Similarity: cosine similarity and top-N ranking over embeddings.
//
// Determinism matters: identical inputs must produce bit-identical vectors
// regardless of call order, because embeddings are compared across sessions
// and across export/import cycles. The encoder therefore uses fixed slot
// layouts for the closed vocabularies and FNV-1a hashing for the open ones,
// with no randomness anywhere.
package feature
