// Couchwise - On-Device Personalization for Entertainment Content
// Copyright 2026 Ben Meredith (bmeredith)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bmeredith/couchwise

// Package recommend implements a single-viewer, on-device personalization
// engine for entertainment content.
//
// The Engine learns from completed viewing sessions with no external
// services: a tabular Q-learning policy picks a recommendation strategy
// per viewing context, a reward estimator turns each session into a
// scalar learning signal, an experience replay buffer lets past sessions
// be re-learned from, and a preference aggregator accumulates genre and
// content-type affinities. Recommendations blend the selected strategy,
// embedding similarity against recent high-reward sessions, and catalog
// priors into a ranked, explained list.
//
// Typical flow:
//
//	eng, err := recommend.NewEngine(cat, recommend.DefaultConfig(), logger)
//	action := eng.SelectAction()
//	// ... viewer watches something ...
//	err = eng.RecordSession(session, action)
//	recs, err := eng.GetRecommendations(10)
//
// All learned state fits in memory and round-trips through ExportModel
// and ImportModel as a versioned JSON snapshot.
package recommend
