// Couchwise - On-Device Personalization for Entertainment Content
// Copyright 2026 Ben Meredith (bmeredith)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bmeredith/couchwise

package feature

import (
	"math"
	"testing"
	"time"

	"github.com/bmeredith/couchwise/catalog"
)

func newTestEncoder(t *testing.T) *Encoder {
	t.Helper()
	enc, err := NewEncoder(DefaultConfig())
	if err != nil {
		t.Fatalf("NewEncoder() error = %v", err)
	}
	return enc
}

func vectorNorm(v Vector) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

func TestEncoderConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "defaults", cfg: DefaultConfig(), wantErr: false},
		{name: "zero genre weight", cfg: Config{GenreWeight: 0, RecencyWindow: 5}, wantErr: true},
		{name: "zero recency window", cfg: Config{GenreWeight: 2, RecencyWindow: 0}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEncodeContentDeterministicAndNormalized(t *testing.T) {
	enc := newTestEncoder(t)
	item := catalog.ContentItem{
		ID: "m1", Title: "Edge of the Frontier", Type: catalog.TypeMovie,
		Genres: []string{"action", "western"}, Rating: 8.1, Popularity: 72,
		DurationMinutes: 131, Year: 2019,
		Actors: []string{"Dana Brook"}, Keywords: []string{"revenge"},
	}

	a := enc.EncodeContent(item)
	b := enc.EncodeContent(item)

	if len(a) != Dimension {
		t.Fatalf("EncodeContent() dimension = %d, want %d", len(a), Dimension)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("EncodeContent() not deterministic at index %d: %v vs %v", i, a[i], b[i])
		}
	}
	if norm := vectorNorm(a); math.Abs(norm-1.0) > 1e-9 {
		t.Errorf("EncodeContent() norm = %v, want 1", norm)
	}
}

func TestEncodeContentEmptyItem(t *testing.T) {
	enc := newTestEncoder(t)

	v := enc.EncodeContent(catalog.ContentItem{ID: "bare", Title: "Bare", Type: catalog.TypeNews})
	if len(v) != Dimension {
		t.Fatalf("EncodeContent() dimension = %d, want %d", len(v), Dimension)
	}
	// Type one-hot alone makes the vector non-zero.
	if norm := vectorNorm(v); norm == 0 {
		t.Error("EncodeContent() produced a zero vector for a typed item")
	}
}

func TestGenreSimilarityContrast(t *testing.T) {
	enc := newTestEncoder(t)

	shared1 := enc.EncodeContent(catalog.ContentItem{
		ID: "a", Title: "A", Type: catalog.TypeMovie,
		Genres: []string{"action", "thriller"}, Rating: 7.5, Popularity: 60,
	})
	shared2 := enc.EncodeContent(catalog.ContentItem{
		ID: "b", Title: "B", Type: catalog.TypeMovie,
		Genres: []string{"action", "thriller"}, Rating: 6.8, Popularity: 55,
	})
	disjoint := enc.EncodeContent(catalog.ContentItem{
		ID: "c", Title: "C", Type: catalog.TypeDocumentary,
		Genres: []string{"history", "music"}, Rating: 7.2, Popularity: 20,
	})

	if sim := CosineSimilarity(shared1, shared2); sim <= 0.9 {
		t.Errorf("CosineSimilarity(shared genres) = %v, want > 0.9", sim)
	}
	if sim := CosineSimilarity(shared1, disjoint); sim >= 0.5 {
		t.Errorf("CosineSimilarity(disjoint genres) = %v, want < 0.5", sim)
	}
}

func TestEncodeContext(t *testing.T) {
	enc := newTestEncoder(t)

	tests := []struct {
		name string
		ctx  Context
		want string
	}{
		{
			name: "empty history",
			ctx:  Context{TimeSlot: SlotMorning, DayType: DayWeekday},
			want: "morning|weekday|g:none|c:low",
		},
		{
			name: "recent genre and high completion",
			ctx: Context{
				TimeSlot: SlotEvening, DayType: DayWeekend,
				RecentGenres:  []string{"sci-fi", "drama"},
				AvgCompletion: 0.84,
			},
			want: "evening|weekend|g:sci-fi|c:high",
		},
		{
			name: "mid completion bucket",
			ctx: Context{
				TimeSlot: SlotNight, DayType: DayWeekday,
				RecentGenres:  []string{"comedy"},
				AvgCompletion: 0.5,
			},
			want: "night|weekday|g:comedy|c:mid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := enc.EncodeContext(tt.ctx); got != tt.want {
				t.Errorf("EncodeContext() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSlotForHour(t *testing.T) {
	tests := []struct {
		hour int
		want TimeSlot
	}{
		{0, SlotNight},
		{5, SlotNight},
		{6, SlotMorning},
		{11, SlotMorning},
		{12, SlotAfternoon},
		{17, SlotAfternoon},
		{18, SlotEvening},
		{21, SlotEvening},
		{22, SlotNight},
		{23, SlotNight},
	}

	for _, tt := range tests {
		if got := SlotForHour(tt.hour); got != tt.want {
			t.Errorf("SlotForHour(%d) = %q, want %q", tt.hour, got, tt.want)
		}
	}
}

func TestDayTypeFor(t *testing.T) {
	tests := []struct {
		day  time.Weekday
		want DayType
	}{
		{time.Monday, DayWeekday},
		{time.Friday, DayWeekday},
		{time.Saturday, DayWeekend},
		{time.Sunday, DayWeekend},
	}

	for _, tt := range tests {
		if got := DayTypeFor(tt.day); got != tt.want {
			t.Errorf("DayTypeFor(%v) = %q, want %q", tt.day, got, tt.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	v := Normalize(Vector{3, 4})
	if math.Abs(v[0]-0.6) > 1e-9 || math.Abs(v[1]-0.8) > 1e-9 {
		t.Errorf("Normalize() = %v, want [0.6 0.8]", v)
	}

	zero := Normalize(Vector{0, 0, 0})
	for i, x := range zero {
		if x != 0 {
			t.Errorf("Normalize(zero)[%d] = %v, want 0", i, x)
		}
	}
}
