// Couchwise - On-Device Personalization for Entertainment Content
// Copyright 2026 Ben Meredith (bmeredith)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bmeredith/couchwise

// Package catalog holds the content catalog consumed by the recommendation
// engine.
//
// The catalog is the one piece of state that may be shared read-only across
// engine instances: it is loaded once at startup, validated into a fixed
// tagged schema, and treated as immutable thereafter. Everything else in the
// system references content by identifier only.
//
// # Validation
//
// Records are validated at the ingestion boundary with struct tags
// (go-playground/validator) plus custom validators for the closed content
// type and genre vocabularies. Dynamically-shaped upstream records never
// reach the feature encoder.
package catalog
