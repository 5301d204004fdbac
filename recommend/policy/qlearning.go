// Couchwise - On-Device Personalization for Entertainment Content
// Copyright 2026 Ben Meredith (bmeredith)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bmeredith/couchwise

package policy

import (
	"fmt"
	"math"
	"math/rand"
)

// Action is a recommendation strategy the policy can select. The action set
// is closed: it never grows at runtime, and the declaration order below is
// the fixed tie-break priority for greedy selection.
type Action string

const (
	// ActionPreferSimilar favors content similar to recent high-reward viewing.
	ActionPreferSimilar Action = "prefer_similar"
	// ActionPreferTrending favors currently popular content.
	ActionPreferTrending Action = "prefer_trending"
	// ActionPreferNewGenre favors genres outside the viewer's usual rotation.
	ActionPreferNewGenre Action = "prefer_new_genre"
	// ActionPreferTopRated favors highly rated content.
	ActionPreferTopRated Action = "prefer_top_rated"
)

// Actions lists all actions in fixed priority order (first-declared wins ties).
var Actions = []Action{
	ActionPreferSimilar,
	ActionPreferTrending,
	ActionPreferNewGenre,
	ActionPreferTopRated,
}

// Valid reports whether a is a member of the closed action set.
func (a Action) Valid() bool {
	for _, known := range Actions {
		if a == known {
			return true
		}
	}
	return false
}

// Config contains Q-learning hyperparameters.
type Config struct {
	// LearningRate is alpha in (0, 1]: how quickly new rewards overwrite
	// old estimates. Default: 0.1.
	LearningRate float64 `json:"learning_rate" koanf:"learning_rate"`

	// DiscountFactor is gamma in [0, 1): the weight of future rewards.
	// With rewards in [0, 1], Q-values stay bounded by 1/(1-gamma).
	// Default: 0.9.
	DiscountFactor float64 `json:"discount_factor" koanf:"discount_factor"`

	// ExplorationRate is the initial epsilon for epsilon-greedy selection.
	// Default: 0.3.
	ExplorationRate float64 `json:"exploration_rate" koanf:"exploration_rate"`

	// ExplorationDecay is the multiplicative decay applied to epsilon after
	// each learning cycle. Default: 0.995.
	ExplorationDecay float64 `json:"exploration_decay" koanf:"exploration_decay"`

	// ExplorationMin is the floor epsilon never drops below. Default: 0.05.
	ExplorationMin float64 `json:"exploration_min" koanf:"exploration_min"`
}

// DefaultConfig returns the default Q-learning configuration.
func DefaultConfig() Config {
	return Config{
		LearningRate:     0.1,
		DiscountFactor:   0.9,
		ExplorationRate:  0.3,
		ExplorationDecay: 0.995,
		ExplorationMin:   0.05,
	}
}

// Validate checks hyperparameter ranges.
func (c Config) Validate() error {
	if c.LearningRate <= 0 || c.LearningRate > 1 {
		return fmt.Errorf("learning rate %f outside (0, 1]", c.LearningRate)
	}
	if c.DiscountFactor < 0 || c.DiscountFactor >= 1 {
		return fmt.Errorf("discount factor %f outside [0, 1)", c.DiscountFactor)
	}
	if c.ExplorationRate < 0 || c.ExplorationRate > 1 {
		return fmt.Errorf("exploration rate %f outside [0, 1]", c.ExplorationRate)
	}
	if c.ExplorationDecay <= 0 || c.ExplorationDecay > 1 {
		return fmt.Errorf("exploration decay %f outside (0, 1]", c.ExplorationDecay)
	}
	if c.ExplorationMin < 0 || c.ExplorationMin > c.ExplorationRate {
		return fmt.Errorf("exploration min %f outside [0, %f]", c.ExplorationMin, c.ExplorationRate)
	}
	return nil
}

// Policy is a tabular epsilon-greedy Q-learning policy.
type Policy struct {
	cfg     Config
	table   map[string]map[Action]float64
	epsilon float64
	rng     *rand.Rand
}

// New creates a policy with the given configuration and random source.
// The random source drives exploration only; greedy selection is
// deterministic.
func New(cfg Config, rng *rand.Rand) (*Policy, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid policy config: %w", err)
	}
	if rng == nil {
		return nil, fmt.Errorf("policy requires a random source")
	}

	return &Policy{
		cfg:     cfg,
		table:   make(map[string]map[Action]float64),
		epsilon: cfg.ExplorationRate,
		rng:     rng,
	}, nil
}

// SelectAction chooses an action for the given state. With probability
// epsilon it explores uniformly at random; otherwise it returns the
// highest-valued action, ties broken by the fixed action priority order.
func (p *Policy) SelectAction(state string) Action {
	if p.epsilon > 0 && p.rng.Float64() < p.epsilon {
		return Actions[p.rng.Intn(len(Actions))]
	}
	return p.BestAction(state)
}

// BestAction returns the greedy action for a state: maximum table value,
// ties broken by declaration order. Unknown states resolve to the
// first-declared action since all values read as 0.
func (p *Policy) BestAction(state string) Action {
	best := Actions[0]
	bestQ := p.GetQValue(state, best)

	for _, a := range Actions[1:] {
		if q := p.GetQValue(state, a); q > bestQ {
			best, bestQ = a, q
		}
	}
	return best
}

// GetQValue returns the stored value for (state, action), or 0 if absent.
func (p *Policy) GetQValue(state string, a Action) float64 {
	return p.table[state][a]
}

// MaxQValue returns max over actions of Q(state, a), 0 for unknown states.
func (p *Policy) MaxQValue(state string) float64 {
	var best float64
	for _, a := range Actions {
		if q := p.GetQValue(state, a); q > best {
			best = q
		}
	}
	return best
}

// UpdateQValue applies the temporal-difference update for one transition.
// Non-finite inputs are discarded rather than poisoning the table.
func (p *Policy) UpdateQValue(state string, a Action, reward float64, nextState string) {
	if math.IsNaN(reward) || math.IsInf(reward, 0) {
		return
	}

	current := p.GetQValue(state, a)
	target := reward + p.cfg.DiscountFactor*p.MaxQValue(nextState)
	updated := current + p.cfg.LearningRate*(target-current)

	if math.IsNaN(updated) || math.IsInf(updated, 0) {
		return
	}

	row, ok := p.table[state]
	if !ok {
		row = make(map[Action]float64, len(Actions))
		p.table[state] = row
	}
	row[a] = updated
}

// DecayExploration applies one multiplicative decay step to epsilon,
// clamped at the configured floor. Called once per learning cycle.
func (p *Policy) DecayExploration() {
	p.epsilon *= p.cfg.ExplorationDecay
	if p.epsilon < p.cfg.ExplorationMin {
		p.epsilon = p.cfg.ExplorationMin
	}
}

// ExplorationRate returns the current epsilon.
func (p *Policy) ExplorationRate() float64 {
	return p.epsilon
}

// SetExplorationRate overrides epsilon, clamped to [0, 1]. Used when
// restoring from a snapshot and by tests that force pure exploitation.
func (p *Policy) SetExplorationRate(eps float64) {
	if eps < 0 {
		eps = 0
	}
	if eps > 1 {
		eps = 1
	}
	p.epsilon = eps
}

// TableSize returns the number of (state, action) entries.
func (p *Policy) TableSize() int {
	n := 0
	for _, row := range p.table {
		n += len(row)
	}
	return n
}

// Export returns a deep copy of the value table.
func (p *Policy) Export() map[string]map[Action]float64 {
	out := make(map[string]map[Action]float64, len(p.table))
	for state, row := range p.table {
		cp := make(map[Action]float64, len(row))
		for a, q := range row {
			cp[a] = q
		}
		out[state] = cp
	}
	return out
}

// Import replaces the value table with a validated deep copy of the given
// one. Entries with unknown actions or non-finite values are rejected
// before any mutation, so a bad table never partially applies.
func (p *Policy) Import(table map[string]map[Action]float64) error {
	replacement := make(map[string]map[Action]float64, len(table))
	for state, row := range table {
		cp := make(map[Action]float64, len(row))
		for a, q := range row {
			if !a.Valid() {
				return fmt.Errorf("unknown action %q in state %q", a, state)
			}
			if math.IsNaN(q) || math.IsInf(q, 0) {
				return fmt.Errorf("non-finite value for (%q, %q)", state, a)
			}
			cp[a] = q
		}
		replacement[state] = cp
	}

	p.table = replacement
	return nil
}

// Reset discards all learned values and restores the initial epsilon.
func (p *Policy) Reset() {
	p.table = make(map[string]map[Action]float64)
	p.epsilon = p.cfg.ExplorationRate
}
