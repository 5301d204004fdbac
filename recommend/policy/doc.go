// Couchwise - On-Device Personalization for Entertainment Content
// Copyright 2026 Ben Meredith (bmeredith)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bmeredith/couchwise

// Package policy implements the decision core of the personalization engine:
// a tabular Q-learning policy over a fixed set of recommendation strategies,
// plus the bounded replay memory used for experience replay.
//
// # Q-learning
//
// The policy maintains a value table keyed by (discretized state key, action)
// and updates it with the standard temporal-difference rule:
//
//	Q(s,a) <- Q(s,a) + alpha * (r + gamma * max_a' Q(s',a') - Q(s,a))
//
// Action selection is epsilon-greedy: with probability epsilon an action is
// drawn uniformly at random, otherwise the highest-valued action wins, ties
// broken by declaration order so that exploitation is fully deterministic.
// Epsilon decays multiplicatively after each learning cycle toward a
// configured floor.
//
// # Determinism
//
// The random source is injected at construction. With a fixed seed (or a
// zero exploration rate) the policy's decisions are reproducible, which the
// tests rely on.
//
// # Thread Safety
//
// The policy is not internally synchronized. It is owned by a single engine
// instance and accessed under the engine's single-writer discipline.
package policy
