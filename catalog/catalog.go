// Couchwise - On-Device Personalization for Entertainment Content
// Copyright 2026 Ben Meredith (bmeredith)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bmeredith/couchwise

package catalog

import (
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// ContentType classifies catalog entries into the closed type vocabulary.
type ContentType string

const (
	// TypeMovie is feature-length film content.
	TypeMovie ContentType = "movie"
	// TypeSeries is episodic show content.
	TypeSeries ContentType = "series"
	// TypeDocumentary is non-fiction long-form content.
	TypeDocumentary ContentType = "documentary"
	// TypeSports is live or recorded sports content.
	TypeSports ContentType = "sports"
	// TypeNews is news and current-affairs content.
	TypeNews ContentType = "news"
)

// ContentTypes lists all valid content types in declaration order.
var ContentTypes = []ContentType{
	TypeMovie, TypeSeries, TypeDocumentary, TypeSports, TypeNews,
}

// Genres is the closed genre vocabulary. The feature encoder reserves one
// embedding slot per genre, so the list is fixed at compile time.
var Genres = []string{
	"action", "adventure", "animation", "comedy", "crime", "drama",
	"family", "fantasy", "history", "horror", "music", "mystery",
	"romance", "sci-fi", "thriller", "western",
}

// genreSet is the lookup set derived from Genres.
var genreSet = func() map[string]struct{} {
	s := make(map[string]struct{}, len(Genres))
	for _, g := range Genres {
		s[g] = struct{}{}
	}
	return s
}()

// ValidGenre reports whether g is in the closed genre vocabulary.
func ValidGenre(g string) bool {
	_, ok := genreSet[g]
	return ok
}

// GenreIndex returns the fixed slot index for a genre, or -1 if unknown.
func GenreIndex(g string) int {
	for i, name := range Genres {
		if name == g {
			return i
		}
	}
	return -1
}

// TypeIndex returns the fixed slot index for a content type, or -1 if unknown.
func TypeIndex(t ContentType) int {
	for i, ct := range ContentTypes {
		if ct == t {
			return i
		}
	}
	return -1
}

// ContentItem is a single catalog entry. Items are immutable once loaded;
// the rest of the system references them by ID.
type ContentItem struct {
	// ID is the unique content identifier.
	ID string `json:"id" validate:"required"`

	// Title is the display title.
	Title string `json:"title" validate:"required"`

	// Type is the content type from the closed vocabulary.
	Type ContentType `json:"type" validate:"required,contenttype"`

	// Genres is the set of genres from the closed vocabulary.
	Genres []string `json:"genres" validate:"dive,genre"`

	// Rating is the critic rating (0-10).
	Rating float64 `json:"rating" validate:"gte=0,lte=10"`

	// DurationMinutes is the runtime in minutes.
	DurationMinutes int `json:"duration_minutes" validate:"gte=0"`

	// Popularity is a catalog-supplied popularity score (0-100).
	Popularity float64 `json:"popularity" validate:"gte=0,lte=100"`

	// Year is the release year.
	Year int `json:"year" validate:"gte=0"`

	// Actors is the cast list.
	Actors []string `json:"actors,omitempty"`

	// Directors is the director list.
	Directors []string `json:"directors,omitempty"`

	// Keywords is a free-form descriptive keyword list.
	Keywords []string `json:"keywords,omitempty"`
}

// newValidator builds a validator with the custom closed-vocabulary checks
// registered.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Registration only fails for empty tag names.
	_ = v.RegisterValidation("contenttype", func(fl validator.FieldLevel) bool {
		return TypeIndex(ContentType(fl.Field().String())) >= 0
	})
	_ = v.RegisterValidation("genre", func(fl validator.FieldLevel) bool {
		return ValidGenre(fl.Field().String())
	})

	return v
}

// Catalog is an in-memory content catalog. It is loaded once and safe for
// concurrent read access afterwards.
type Catalog struct {
	mu       sync.RWMutex
	items    map[string]ContentItem
	order    []string
	validate *validator.Validate
	logger   zerolog.Logger
}

// New creates an empty catalog.
func New(logger zerolog.Logger) *Catalog {
	return &Catalog{
		items:    make(map[string]ContentItem),
		validate: newValidator(),
		logger:   logger.With().Str("component", "catalog").Logger(),
	}
}

// AddContents validates and inserts items. The whole batch is validated
// before any item is inserted, so a bad record never partially applies.
// Re-adding an existing ID replaces the stored item.
func (c *Catalog) AddContents(items []ContentItem) error {
	for i := range items {
		if err := c.validate.Struct(&items[i]); err != nil {
			return fmt.Errorf("invalid content item %q: %w", items[i].ID, err)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, item := range items {
		if _, exists := c.items[item.ID]; !exists {
			c.order = append(c.order, item.ID)
		}
		c.items[item.ID] = item
	}

	c.logger.Info().
		Int("added", len(items)).
		Int("total", len(c.items)).
		Msg("catalog updated")

	return nil
}

// Get returns the item for the given ID.
func (c *Catalog) Get(id string) (ContentItem, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, ok := c.items[id]
	return item, ok
}

// Contains reports whether an ID is present.
func (c *Catalog) Contains(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, ok := c.items[id]
	return ok
}

// Items returns a copy of all items in insertion order.
func (c *Catalog) Items() []ContentItem {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]ContentItem, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.items[id])
	}
	return out
}

// Len returns the number of items in the catalog.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
