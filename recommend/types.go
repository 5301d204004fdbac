// Couchwise - On-Device Personalization for Entertainment Content
// Copyright 2026 Ben Meredith (bmeredith)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bmeredith/couchwise

package recommend

import (
	"time"

	"github.com/google/uuid"

	"github.com/bmeredith/couchwise/recommend/policy"
)

// ViewingSession is one completed or abandoned viewing event, assembled by
// the session-capture collaborator and consumed exactly once by
// RecordSession.
type ViewingSession struct {
	// ID is the unique session identifier.
	ID string `json:"id" validate:"required"`

	// ContentID references the watched catalog item. A session for an
	// unknown ID still contributes to reward and policy updates.
	ContentID string `json:"content_id" validate:"required"`

	// StartTime is when playback began.
	StartTime time.Time `json:"start_time"`

	// EndTime is when playback ended.
	EndTime time.Time `json:"end_time"`

	// WatchDurationMinutes is the total playback time in minutes.
	WatchDurationMinutes int `json:"watch_duration_minutes" validate:"gte=0"`

	// CompletionRate is the fraction of the content watched, in [0, 1].
	CompletionRate float64 `json:"completion_rate" validate:"gte=0,lte=1"`

	// Rating is the optional explicit rating (0-10). Nil means the viewer
	// did not rate the session.
	Rating *float64 `json:"rating,omitempty" validate:"omitempty,gte=0,lte=10"`

	// Implicit engagement counters.
	Pauses        int `json:"pauses" validate:"gte=0"`
	Rewinds       int `json:"rewinds" validate:"gte=0"`
	FastForwards  int `json:"fast_forwards" validate:"gte=0"`
	VolumeChanges int `json:"volume_changes" validate:"gte=0"`

	// Contextual snapshot taken at session start.
	HourOfDay int          `json:"hour_of_day" validate:"gte=0,lte=23"`
	DayOfWeek time.Weekday `json:"day_of_week" validate:"gte=0,lte=6"`
	Weekend   bool         `json:"weekend"`
}

// NewSession creates a session skeleton for a content item with a fresh
// UUID and the contextual snapshot filled from start. The collaborator
// fills in playback measurements before handing it to RecordSession.
func NewSession(contentID string, start time.Time) ViewingSession {
	wd := start.Weekday()
	return ViewingSession{
		ID:        uuid.NewString(),
		ContentID: contentID,
		StartTime: start,
		HourOfDay: start.Hour(),
		DayOfWeek: wd,
		Weekend:   wd == time.Saturday || wd == time.Sunday,
	}
}

// Recommendation is one ranked, explained entry returned to the consumer.
// It always references an identifier present in the active catalog.
type Recommendation struct {
	// ContentID is the recommended catalog item.
	ContentID string `json:"content_id"`

	// Title is the item's display title.
	Title string `json:"title"`

	// Score is the blended recommendation score, higher is better.
	Score float64 `json:"score"`

	// Action is the policy strategy that shaped this recommendation.
	Action policy.Action `json:"action"`

	// Reason is a short human-readable justification keyed to whichever
	// scoring factor dominated.
	Reason string `json:"reason"`

	// Factors is the weighted score breakdown by factor name.
	Factors map[string]float64 `json:"factors,omitempty"`
}

// ActionStat summarizes observed outcomes for one action.
type ActionStat struct {
	// Action is the recommendation strategy.
	Action policy.Action `json:"action"`

	// Sessions is how many recorded sessions took this action.
	Sessions int `json:"sessions"`

	// AverageReward is the mean reward across those sessions.
	AverageReward float64 `json:"average_reward"`
}

// Stats is the engine's observable learning state.
type Stats struct {
	// TotalSessions counts RecordSession calls since creation or import.
	TotalSessions int `json:"total_sessions"`

	// DistinctContent counts unique content IDs observed in sessions.
	DistinctContent int `json:"distinct_content"`

	// ValueTableSize is the number of (state, action) entries learned.
	ValueTableSize int `json:"value_table_size"`

	// ExplorationRate is the policy's current epsilon.
	ExplorationRate float64 `json:"exploration_rate"`

	// AverageReward is the running mean reward over all sessions.
	AverageReward float64 `json:"average_reward"`

	// PatternCount is the number of consolidated learned patterns.
	PatternCount int `json:"pattern_count"`

	// ReplaySize is the current replay memory occupancy.
	ReplaySize int `json:"replay_size"`

	// TopActions ranks actions by average reward, descending.
	TopActions []ActionStat `json:"top_actions"`
}
