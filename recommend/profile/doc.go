// Couchwise - On-Device Personalization for Entertainment Content
// Copyright 2026 Ben Meredith (bmeredith)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bmeredith/couchwise

// Package profile aggregates per-viewer preference statistics from observed
// sessions: reward-weighted genre and content-type strengths, plus learned
// patterns that tie a preferred attribute to a viewing context ("drama
// favored on weekend evenings").
//
// The aggregator only ever accumulates; the PreferenceProfile returned by
// Preferences is a pure projection ranked by accumulated weight, with ties
// broken by first-observed order. Patterns are created and strengthened
// here exclusively; external callers never write them directly.
package profile
