// Couchwise - On-Device Personalization for Entertainment Content
// Copyright 2026 Ben Meredith (bmeredith)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bmeredith/couchwise

package policy

import "math/rand"

// Transition is one recorded (state, action, reward, next-state) step.
// Transitions are owned by the replay memory until consumed or evicted.
type Transition struct {
	State     string  `json:"state"`
	Action    Action  `json:"action"`
	Reward    float64 `json:"reward"`
	NextState string  `json:"next_state"`
}

// ReplayMemory is a bounded FIFO buffer of past transitions. Storing into a
// full buffer evicts the oldest entry; storing never fails.
type ReplayMemory struct {
	buf      []Transition
	start    int // index of the oldest entry
	size     int
	capacity int
	rng      *rand.Rand
}

// NewReplayMemory creates a replay buffer with the given capacity.
// Non-positive capacities fall back to a default of 1000 entries.
func NewReplayMemory(capacity int, rng *rand.Rand) *ReplayMemory {
	if capacity <= 0 {
		capacity = 1000
	}
	return &ReplayMemory{
		buf:      make([]Transition, capacity),
		capacity: capacity,
		rng:      rng,
	}
}

// Store appends a transition, evicting the oldest entry when full.
func (m *ReplayMemory) Store(t Transition) {
	if m.size < m.capacity {
		m.buf[(m.start+m.size)%m.capacity] = t
		m.size++
		return
	}

	// Full: overwrite the oldest slot and advance the window.
	m.buf[m.start] = t
	m.start = (m.start + 1) % m.capacity
}

// Sample draws batchSize transitions uniformly at random, with replacement.
// Replacement means a request larger than the current occupancy is still
// satisfied. Returns nil when the buffer is empty.
func (m *ReplayMemory) Sample(batchSize int) []Transition {
	if m.size == 0 || batchSize <= 0 {
		return nil
	}

	out := make([]Transition, batchSize)
	for i := range out {
		out[i] = m.buf[(m.start+m.rng.Intn(m.size))%m.capacity]
	}
	return out
}

// Replay feeds batchSize sampled transitions back through the policy's
// update rule and returns the number of updates applied. This extracts
// additional learning signal from rare high-value transitions without
// requiring new sessions.
func (m *ReplayMemory) Replay(p *Policy, batchSize int) int {
	batch := m.Sample(batchSize)
	for _, t := range batch {
		p.UpdateQValue(t.State, t.Action, t.Reward, t.NextState)
	}
	return len(batch)
}

// Len returns the current number of stored transitions.
func (m *ReplayMemory) Len() int {
	return m.size
}

// Cap returns the configured capacity.
func (m *ReplayMemory) Cap() int {
	return m.capacity
}

// Clear discards all stored transitions.
func (m *ReplayMemory) Clear() {
	m.start = 0
	m.size = 0
}
