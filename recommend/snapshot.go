// Couchwise - On-Device Personalization for Entertainment Content
// Copyright 2026 Ben Meredith (bmeredith)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bmeredith/couchwise

package recommend

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	json "github.com/goccy/go-json"

	"github.com/bmeredith/couchwise/recommend/policy"
	"github.com/bmeredith/couchwise/recommend/profile"
)

// SnapshotVersion is the current model snapshot format version. Importing
// a snapshot with a different version fails with ErrSnapshotVersion.
const SnapshotVersion = 1

var (
	// ErrSnapshotInvalid reports a snapshot that is malformed or carries
	// out-of-range values.
	ErrSnapshotInvalid = errors.New("invalid model snapshot")

	// ErrSnapshotVersion reports a snapshot version mismatch.
	ErrSnapshotVersion = errors.New("unsupported snapshot version")
)

// modelSnapshot is the serialized form of all learned engine state. The
// catalog and configuration are deliberately excluded; a snapshot restores
// learning onto whatever catalog the importing engine is bound to.
type modelSnapshot struct {
	Version         int                                  `json:"snapshot_version"`
	ExportedAt      time.Time                            `json:"exported_at"`
	ValueTable      map[string]map[policy.Action]float64 `json:"value_table"`
	ExplorationRate float64                              `json:"exploration_rate"`
	Preferences     profile.State                        `json:"preferences"`
	TotalSessions   int                                  `json:"total_sessions"`
	RewardSum       float64                              `json:"reward_sum"`
	DistinctContent []string                             `json:"distinct_content"`
	ActionSessions  map[policy.Action]int                `json:"action_sessions"`
	ActionRewards   map[policy.Action]float64            `json:"action_rewards"`
}

// ExportModel serializes the engine's learned state to a versioned JSON
// snapshot. The output is self-contained and safe to persist or transfer
// to another engine instance.
func (e *Engine) ExportModel() ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	distinct := make([]string, 0, len(e.distinct))
	for id := range e.distinct {
		distinct = append(distinct, id)
	}
	sort.Strings(distinct)

	snap := modelSnapshot{
		Version:         SnapshotVersion,
		ExportedAt:      e.now().UTC(),
		ValueTable:      e.policy.Export(),
		ExplorationRate: e.policy.ExplorationRate(),
		Preferences:     e.prefs.Export(),
		TotalSessions:   e.totalSessions,
		RewardSum:       e.rewardSum,
		DistinctContent: distinct,
		ActionSessions:  copyActionInts(e.actionSessions),
		ActionRewards:   copyActionFloats(e.actionRewards),
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("marshal model snapshot: %w", err)
	}
	return data, nil
}

// ImportModel restores learned state from a snapshot produced by
// ExportModel. The snapshot is validated in full before any engine state
// is touched; on error the engine is left exactly as it was.
func (e *Engine) ImportModel(data []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var snap modelSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("%w: %v", ErrSnapshotInvalid, err)
	}
	if snap.Version != SnapshotVersion {
		return fmt.Errorf("%w: got %d, want %d", ErrSnapshotVersion, snap.Version, SnapshotVersion)
	}
	if err := validateSnapshot(&snap); err != nil {
		return fmt.Errorf("%w: %v", ErrSnapshotInvalid, err)
	}

	// Stage the aggregator import on a scratch instance so a rejected
	// preference state cannot leave the engine half-updated.
	staged := profile.NewAggregator(e.cfg.MinPatternSamples)
	if err := staged.Import(snap.Preferences); err != nil {
		return fmt.Errorf("%w: %v", ErrSnapshotInvalid, err)
	}
	if err := e.policy.Import(snap.ValueTable); err != nil {
		return fmt.Errorf("%w: %v", ErrSnapshotInvalid, err)
	}

	e.prefs = staged
	e.policy.SetExplorationRate(snap.ExplorationRate)
	e.totalSessions = snap.TotalSessions
	e.rewardSum = snap.RewardSum

	e.distinct = make(map[string]struct{}, len(snap.DistinctContent))
	for _, id := range snap.DistinctContent {
		e.distinct[id] = struct{}{}
	}
	e.actionSessions = copyActionInts(snap.ActionSessions)
	e.actionRewards = copyActionFloats(snap.ActionRewards)

	e.logger.Info().
		Int("states", len(snap.ValueTable)).
		Int("sessions", snap.TotalSessions).
		Time("exported_at", snap.ExportedAt).
		Msg("model snapshot imported")

	return nil
}

// validateSnapshot rejects out-of-range values before import.
func validateSnapshot(snap *modelSnapshot) error {
	if snap.ExplorationRate < 0 || snap.ExplorationRate > 1 ||
		math.IsNaN(snap.ExplorationRate) {
		return fmt.Errorf("exploration rate %v out of range", snap.ExplorationRate)
	}
	if snap.TotalSessions < 0 {
		return fmt.Errorf("negative session count %d", snap.TotalSessions)
	}
	if math.IsNaN(snap.RewardSum) || math.IsInf(snap.RewardSum, 0) {
		return fmt.Errorf("non-finite reward sum")
	}
	for a, n := range snap.ActionSessions {
		if !a.Valid() {
			return fmt.Errorf("unknown action %q in session counts", a)
		}
		if n < 0 {
			return fmt.Errorf("negative session count for action %q", a)
		}
	}
	for a, r := range snap.ActionRewards {
		if !a.Valid() {
			return fmt.Errorf("unknown action %q in reward sums", a)
		}
		if math.IsNaN(r) || math.IsInf(r, 0) {
			return fmt.Errorf("non-finite reward sum for action %q", a)
		}
	}
	return nil
}

func copyActionInts(in map[policy.Action]int) map[policy.Action]int {
	out := make(map[policy.Action]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func copyActionFloats(in map[policy.Action]float64) map[policy.Action]float64 {
	out := make(map[policy.Action]float64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
