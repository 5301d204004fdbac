// Couchwise - On-Device Personalization for Entertainment Content
// Copyright 2026 Ben Meredith (bmeredith)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bmeredith/couchwise

package recommend

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/bmeredith/couchwise/catalog"
	"github.com/bmeredith/couchwise/recommend/policy"
)

// fixedNow pins the viewing context to a Wednesday evening.
var fixedNow = time.Date(2026, 3, 4, 20, 0, 0, 0, time.UTC)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()

	cat := catalog.New(zerolog.Nop())
	err := cat.AddContents([]catalog.ContentItem{
		{ID: "d1", Title: "Quiet Rivers", Type: catalog.TypeMovie,
			Genres: []string{"drama"}, Rating: 8.2, Popularity: 55, DurationMinutes: 120, Year: 2021},
		{ID: "d2", Title: "The Long Shore", Type: catalog.TypeMovie,
			Genres: []string{"drama", "romance"}, Rating: 7.4, Popularity: 48, DurationMinutes: 105, Year: 2018},
		{ID: "h1", Title: "Cellar Door", Type: catalog.TypeMovie,
			Genres: []string{"horror"}, Rating: 6.1, Popularity: 70, DurationMinutes: 95, Year: 2022},
		{ID: "h2", Title: "The Hollow", Type: catalog.TypeMovie,
			Genres: []string{"horror", "thriller"}, Rating: 5.8, Popularity: 62, DurationMinutes: 101, Year: 2020},
		{ID: "n1", Title: "Evening Brief", Type: catalog.TypeNews,
			Genres: nil, Rating: 6.0, Popularity: 30, DurationMinutes: 30, Year: 2026},
	})
	if err != nil {
		t.Fatalf("AddContents() error = %v", err)
	}
	return cat
}

func testEngine(t *testing.T) *Engine {
	t.Helper()

	eng, err := NewEngine(testCatalog(t), DefaultConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	eng.SetClock(func() time.Time { return fixedNow })
	return eng
}

func testSession(contentID string, completion float64) ViewingSession {
	s := NewSession(contentID, fixedNow)
	s.EndTime = fixedNow.Add(90 * time.Minute)
	s.WatchDurationMinutes = int(completion * 100)
	s.CompletionRate = completion
	return s
}

func TestNewEngine(t *testing.T) {
	if _, err := NewEngine(nil, DefaultConfig(), zerolog.Nop()); err == nil {
		t.Error("NewEngine(nil catalog) error = nil, want error")
	}

	bad := DefaultConfig()
	bad.Policy.LearningRate = -1
	if _, err := NewEngine(testCatalog(t), bad, zerolog.Nop()); err == nil {
		t.Error("NewEngine(invalid config) error = nil, want error")
	}

	if _, err := NewEngine(testCatalog(t), nil, zerolog.Nop()); err != nil {
		t.Errorf("NewEngine(nil config) error = %v, want defaults applied", err)
	}
}

func TestRecordSessionUpdatesState(t *testing.T) {
	eng := testEngine(t)
	before := eng.GetStats()

	if err := eng.RecordSession(testSession("d1", 0.9), policy.ActionPreferSimilar); err != nil {
		t.Fatalf("RecordSession() error = %v", err)
	}

	after := eng.GetStats()
	if after.TotalSessions != before.TotalSessions+1 {
		t.Errorf("TotalSessions = %d, want %d", after.TotalSessions, before.TotalSessions+1)
	}
	if after.DistinctContent != 1 {
		t.Errorf("DistinctContent = %d, want 1", after.DistinctContent)
	}
	if after.ValueTableSize == 0 {
		t.Error("ValueTableSize = 0 after a session, want > 0")
	}
	if after.ReplaySize != 1 {
		t.Errorf("ReplaySize = %d, want 1", after.ReplaySize)
	}
	if after.ExplorationRate >= before.ExplorationRate {
		t.Errorf("ExplorationRate = %v, want decayed below %v", after.ExplorationRate, before.ExplorationRate)
	}
	if after.AverageReward <= 0 {
		t.Errorf("AverageReward = %v, want > 0", after.AverageReward)
	}
}

func TestRecordSessionRejectsInvalid(t *testing.T) {
	eng := testEngine(t)

	tests := []struct {
		name    string
		session ViewingSession
		action  policy.Action
	}{
		{
			name: "missing id",
			session: func() ViewingSession {
				s := testSession("d1", 0.5)
				s.ID = ""
				return s
			}(),
			action: policy.ActionPreferSimilar,
		},
		{
			name: "completion above one",
			session: func() ViewingSession {
				s := testSession("d1", 1.5)
				return s
			}(),
			action: policy.ActionPreferSimilar,
		},
		{
			name: "negative pauses",
			session: func() ViewingSession {
				s := testSession("d1", 0.5)
				s.Pauses = -1
				return s
			}(),
			action: policy.ActionPreferSimilar,
		},
		{
			name:    "unknown action",
			session: testSession("d1", 0.5),
			action:  policy.Action("prefer_chaos"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := eng.RecordSession(tt.session, tt.action); err == nil {
				t.Error("RecordSession() error = nil, want rejection")
			}
		})
	}

	if got := eng.GetStats().TotalSessions; got != 0 {
		t.Errorf("TotalSessions = %d after rejected sessions, want 0", got)
	}
}

func TestRecordSessionUnknownContent(t *testing.T) {
	eng := testEngine(t)

	if err := eng.RecordSession(testSession("ghost", 0.9), policy.ActionPreferSimilar); err != nil {
		t.Fatalf("RecordSession() error = %v for unknown content, want nil", err)
	}

	stats := eng.GetStats()
	if stats.TotalSessions != 1 {
		t.Errorf("TotalSessions = %d, want 1", stats.TotalSessions)
	}
	// Policy still learns; preferences do not.
	if stats.ValueTableSize == 0 {
		t.Error("ValueTableSize = 0, want policy update despite unknown content")
	}
	if stats.PatternCount != 0 {
		t.Errorf("PatternCount = %d, want 0 for unknown content", stats.PatternCount)
	}
}

func TestSelectActionReturnsValidAction(t *testing.T) {
	eng := testEngine(t)

	for i := 0; i < 50; i++ {
		if a := eng.SelectAction(); !a.Valid() {
			t.Fatalf("SelectAction() = %q, not in the action set", a)
		}
	}
}

func TestGetRecommendations(t *testing.T) {
	eng := testEngine(t)
	cat := testCatalog(t)

	if _, err := eng.GetRecommendations(0); err == nil {
		t.Error("GetRecommendations(0) error = nil, want error")
	}

	recs, err := eng.GetRecommendations(3)
	if err != nil {
		t.Fatalf("GetRecommendations() error = %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("GetRecommendations(3) returned %d, want 3", len(recs))
	}

	for i, r := range recs {
		if !cat.Contains(r.ContentID) {
			t.Errorf("recommendation %d references unknown content %q", i, r.ContentID)
		}
		if !r.Action.Valid() {
			t.Errorf("recommendation %d has invalid action %q", i, r.Action)
		}
		if r.Reason == "" {
			t.Errorf("recommendation %d has empty reason", i)
		}
		if i > 0 && recs[i-1].Score < r.Score {
			t.Errorf("recommendations not sorted: score[%d]=%v < score[%d]=%v",
				i-1, recs[i-1].Score, i, r.Score)
		}
	}

	// Asking for more than the catalog holds returns everything once.
	all, err := eng.GetRecommendations(100)
	if err != nil {
		t.Fatalf("GetRecommendations() error = %v", err)
	}
	if len(all) != cat.Len() {
		t.Errorf("GetRecommendations(100) returned %d, want %d", len(all), cat.Len())
	}
	seen := make(map[string]bool)
	for _, r := range all {
		if seen[r.ContentID] {
			t.Errorf("duplicate recommendation for %q", r.ContentID)
		}
		seen[r.ContentID] = true
	}
}

func TestEngineLearnsFavoriteGenre(t *testing.T) {
	eng := testEngine(t)

	// A month of evenings: drama watched to the end, horror abandoned.
	for i := 0; i < 30; i++ {
		for id, completion := range map[string]float64{"d1": 0.95, "d2": 0.9} {
			if err := eng.RecordSession(testSession(id, completion), policy.ActionPreferSimilar); err != nil {
				t.Fatalf("RecordSession(%s) error = %v", id, err)
			}
		}
		s := testSession("h1", 0.05)
		s.FastForwards = 8
		if err := eng.RecordSession(s, policy.ActionPreferSimilar); err != nil {
			t.Fatalf("RecordSession(h1) error = %v", err)
		}
	}

	prefs := eng.GetPreferences()
	if len(prefs.FavoriteGenres) == 0 || prefs.FavoriteGenres[0].Genre != "drama" {
		t.Fatalf("FavoriteGenres = %+v, want drama ranked first", prefs.FavoriteGenres)
	}

	recs, err := eng.GetRecommendations(5)
	if err != nil {
		t.Fatalf("GetRecommendations() error = %v", err)
	}
	if top := recs[0].ContentID; top != "d1" && top != "d2" {
		t.Errorf("top recommendation = %q, want a drama title", top)
	}

	if got := eng.GetStats().PatternCount; got == 0 {
		t.Error("PatternCount = 0 after 90 sessions, want learned patterns")
	}
	if patterns := eng.GetPatterns(); len(patterns) == 0 {
		t.Error("GetPatterns() empty after 90 sessions, want supported patterns")
	}
}

func TestExperienceReplay(t *testing.T) {
	eng := testEngine(t)

	if got := eng.ExperienceReplay(10); got != 0 {
		t.Errorf("ExperienceReplay() = %d on empty memory, want 0", got)
	}

	if err := eng.RecordSession(testSession("d1", 0.9), policy.ActionPreferSimilar); err != nil {
		t.Fatalf("RecordSession() error = %v", err)
	}

	if got := eng.ExperienceReplay(10); got != 10 {
		t.Errorf("ExperienceReplay(10) = %d, want 10 (sampling with replacement)", got)
	}

	// Non-positive batch size falls back to the configured default.
	if got := eng.ExperienceReplay(0); got != DefaultConfig().ReplayBatch {
		t.Errorf("ExperienceReplay(0) = %d, want %d", got, DefaultConfig().ReplayBatch)
	}
}

func TestEngineReset(t *testing.T) {
	eng := testEngine(t)

	if err := eng.RecordSession(testSession("d1", 0.9), policy.ActionPreferSimilar); err != nil {
		t.Fatalf("RecordSession() error = %v", err)
	}

	eng.Reset()

	stats := eng.GetStats()
	if stats.TotalSessions != 0 || stats.ValueTableSize != 0 || stats.ReplaySize != 0 ||
		stats.DistinctContent != 0 || stats.PatternCount != 0 {
		t.Errorf("GetStats() after Reset = %+v, want zeroed learning state", stats)
	}
	if stats.ExplorationRate != DefaultConfig().Policy.ExplorationRate {
		t.Errorf("ExplorationRate after Reset = %v, want %v",
			stats.ExplorationRate, DefaultConfig().Policy.ExplorationRate)
	}
}

func TestNewSessionContextSnapshot(t *testing.T) {
	saturday := time.Date(2026, 3, 7, 21, 30, 0, 0, time.UTC)
	s := NewSession("d1", saturday)

	if s.ID == "" {
		t.Error("NewSession() produced empty ID")
	}
	if s.ContentID != "d1" {
		t.Errorf("ContentID = %q, want d1", s.ContentID)
	}
	if s.HourOfDay != 21 {
		t.Errorf("HourOfDay = %d, want 21", s.HourOfDay)
	}
	if s.DayOfWeek != time.Saturday {
		t.Errorf("DayOfWeek = %v, want Saturday", s.DayOfWeek)
	}
	if !s.Weekend {
		t.Error("Weekend = false for a Saturday session")
	}
}
