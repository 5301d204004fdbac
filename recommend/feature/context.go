// Couchwise - On-Device Personalization for Entertainment Content
// Copyright 2026 Ben Meredith (bmeredith)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bmeredith/couchwise

package feature

import (
	"time"

	"github.com/bmeredith/couchwise/catalog"
)

// TimeSlot buckets the hour of day for context discretization.
type TimeSlot string

const (
	// SlotMorning covers 06:00-11:59.
	SlotMorning TimeSlot = "morning"
	// SlotAfternoon covers 12:00-17:59.
	SlotAfternoon TimeSlot = "afternoon"
	// SlotEvening covers 18:00-21:59.
	SlotEvening TimeSlot = "evening"
	// SlotNight covers 22:00-05:59.
	SlotNight TimeSlot = "night"
)

// SlotForHour maps an hour (0-23) to its time slot.
func SlotForHour(hour int) TimeSlot {
	switch {
	case hour >= 6 && hour < 12:
		return SlotMorning
	case hour >= 12 && hour < 18:
		return SlotAfternoon
	case hour >= 18 && hour < 22:
		return SlotEvening
	default:
		return SlotNight
	}
}

// DayType distinguishes weekdays from weekends.
type DayType string

const (
	// DayWeekday is Monday through Friday.
	DayWeekday DayType = "weekday"
	// DayWeekend is Saturday and Sunday.
	DayWeekend DayType = "weekend"
)

// DayTypeFor maps a weekday to its day type.
func DayTypeFor(d time.Weekday) DayType {
	if d == time.Saturday || d == time.Sunday {
		return DayWeekend
	}
	return DayWeekday
}

// Context is the viewing context at decision time. It is derived fresh on
// each decision from the clock and recent session history; only its
// discretized state key is ever persisted (inside the value table).
type Context struct {
	// TimeSlot is the bucketed hour of day.
	TimeSlot TimeSlot

	// DayType is weekday or weekend.
	DayType DayType

	// RecentGenres lists recently viewed genres, most recent first,
	// bounded by the engine's recency window.
	RecentGenres []string

	// RecentTypes lists recently viewed content types, most recent first.
	RecentTypes []catalog.ContentType

	// AvgCompletion is the rolling average completion rate over the
	// recency window, in [0, 1].
	AvgCompletion float64
}
