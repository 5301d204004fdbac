// Couchwise - On-Device Personalization for Entertainment Content
// Copyright 2026 Ben Meredith (bmeredith)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bmeredith/couchwise

package recommend

import (
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/bmeredith/couchwise/catalog"
	"github.com/bmeredith/couchwise/recommend/feature"
	"github.com/bmeredith/couchwise/recommend/policy"
	"github.com/bmeredith/couchwise/recommend/profile"
)

// sessionRecord is the engine's bounded memory of one observed session,
// used for context derivation and the preference embedding.
type sessionRecord struct {
	contentID  string
	genres     []string
	ctype      catalog.ContentType
	completion float64
	reward     float64
	known      bool
}

// Engine is a single-viewer personalization engine. It owns its value
// table, embedding cache, replay memory, and preference aggregator; no
// state is shared across instances except the read-only catalog.
//
// Every operation is a synchronous, terminating computation over in-memory
// state. A per-instance mutex enforces the single-writer discipline, so one
// engine may be driven from multiple goroutines of a host process.
type Engine struct {
	mu sync.Mutex

	cfg    *Config
	logger zerolog.Logger

	catalog *catalog.Catalog
	encoder *feature.Encoder
	cache   *feature.Cache
	policy  *policy.Policy
	memory  *policy.ReplayMemory
	prefs   *profile.Aggregator

	validate *validator.Validate
	now      func() time.Time

	// recent holds observed sessions, most recent first, bounded by
	// Compose.RecentWindow.
	recent []sessionRecord

	totalSessions  int
	rewardSum      float64
	distinct       map[string]struct{}
	actionSessions map[policy.Action]int
	actionRewards  map[policy.Action]float64
}

// NewEngine creates an engine bound to a catalog.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cat *catalog.Catalog, cfg *Config, logger zerolog.Logger) (*Engine, error) {
	if cat == nil {
		return nil, fmt.Errorf("engine requires a catalog")
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	// Use provided seed or default for determinism.
	seed := cfg.Seed
	if seed == 0 {
		seed = 42
	}
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // exploration does not need crypto randomness

	enc, err := feature.NewEncoder(cfg.Encoder)
	if err != nil {
		return nil, err
	}
	pol, err := policy.New(cfg.Policy, rng)
	if err != nil {
		return nil, err
	}

	return &Engine{
		cfg:            cfg,
		logger:         logger.With().Str("component", "engine").Logger(),
		catalog:        cat,
		encoder:        enc,
		cache:          feature.NewCache(cfg.CacheCapacity),
		policy:         pol,
		memory:         policy.NewReplayMemory(cfg.MemorySize, rng),
		prefs:          profile.NewAggregator(cfg.MinPatternSamples),
		validate:       validator.New(validator.WithRequiredStructEnabled()),
		now:            time.Now,
		distinct:       make(map[string]struct{}),
		actionSessions: make(map[policy.Action]int),
		actionRewards:  make(map[policy.Action]float64),
	}, nil
}

// AddContents registers catalog items with the engine's catalog. It is a
// convenience passthrough; hosts that share one catalog across engines can
// load it directly instead.
func (e *Engine) AddContents(items []catalog.ContentItem) error {
	return e.catalog.AddContents(items)
}

// SetClock overrides the engine's time source. Used by tests to pin the
// viewing context.
func (e *Engine) SetClock(now func() time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.now = now
}

// SelectAction picks a recommendation strategy for the current viewing
// context via the epsilon-greedy policy. The caller passes the chosen
// action back through RecordSession once the session completes.
func (e *Engine) SelectAction() policy.Action {
	e.mu.Lock()
	defer e.mu.Unlock()

	t := e.now()
	state := e.encoder.EncodeContext(e.contextFor(feature.SlotForHour(t.Hour()), feature.DayTypeFor(t.Weekday())))
	return e.policy.SelectAction(state)
}

// RecordSession consumes one completed or abandoned viewing session and
// runs a full learning cycle: reward estimation, Q-value update, replay
// storage, preference aggregation, and one exploration decay step.
//
// A session referencing an unknown content ID still drives the reward and
// policy updates; only the similarity/preference attachment is skipped.
//
//nolint:gocritic // hugeParam: session passed by value; consumed exactly once
func (e *Engine) RecordSession(session ViewingSession, actionTaken policy.Action) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.validate.Struct(&session); err != nil {
		return fmt.Errorf("invalid session: %w", err)
	}
	if !actionTaken.Valid() {
		return fmt.Errorf("unknown action %q", actionTaken)
	}

	slot := feature.SlotForHour(session.HourOfDay)
	day := feature.DayWeekday
	if session.Weekend {
		day = feature.DayWeekend
	}

	state := e.encoder.EncodeContext(e.contextFor(slot, day))
	reward := CalculateReward(session, e.cfg.Reward)

	rec := sessionRecord{
		contentID:  session.ContentID,
		completion: clamp01(session.CompletionRate),
		reward:     reward,
	}
	item, known := e.catalog.Get(session.ContentID)
	if known {
		rec.known = true
		rec.genres = item.Genres
		rec.ctype = item.Type
	}
	e.pushRecent(rec)

	nextState := e.encoder.EncodeContext(e.contextFor(slot, day))

	e.policy.UpdateQValue(state, actionTaken, reward, nextState)
	e.memory.Store(policy.Transition{
		State:     state,
		Action:    actionTaken,
		Reward:    reward,
		NextState: nextState,
	})

	if known {
		e.prefs.Observe(item, slot, day, reward)
	} else {
		e.logger.Debug().
			Str("content_id", session.ContentID).
			Msg("session for unknown content; skipping preference attachment")
	}

	e.policy.DecayExploration()

	e.totalSessions++
	e.rewardSum += reward
	e.distinct[session.ContentID] = struct{}{}
	e.actionSessions[actionTaken]++
	e.actionRewards[actionTaken] += reward

	e.logger.Debug().
		Str("session_id", session.ID).
		Str("action", string(actionTaken)).
		Float64("reward", reward).
		Str("state", state).
		Msg("session recorded")

	return nil
}

// ExperienceReplay replays batchSize sampled transitions through the
// policy's update rule and returns the number of updates applied. A
// non-positive batchSize uses the configured default. Sampling is done
// with replacement, so a batch larger than the buffer still succeeds.
func (e *Engine) ExperienceReplay(batchSize int) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	if batchSize <= 0 {
		batchSize = e.cfg.ReplayBatch
	}

	n := e.memory.Replay(e.policy, batchSize)
	if n > 0 {
		e.logger.Debug().Int("updates", n).Msg("experience replay applied")
	}
	return n
}

// GetRecommendations returns up to n ranked, explained recommendations.
// Every returned entry references an identifier present in the catalog.
// Results are sorted by score descending, ties broken by content ID.
func (e *Engine) GetRecommendations(n int) ([]Recommendation, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if n <= 0 {
		return nil, fmt.Errorf("recommendation count %d must be positive", n)
	}

	items := e.catalog.Items()
	if len(items) == 0 {
		return []Recommendation{}, nil
	}

	t := e.now()
	ctx := e.contextFor(feature.SlotForHour(t.Hour()), feature.DayTypeFor(t.Weekday()))
	state := e.encoder.EncodeContext(ctx)
	action := e.policy.BestAction(state)

	prefEmb := e.preferenceEmbedding()
	favorites := e.favoriteGenreSet(3)

	wa, ws, wp := e.cfg.Compose.ActionWeight, e.cfg.Compose.SimilarityWeight, e.cfg.Compose.PriorWeight
	total := wa + ws + wp

	recs := make([]Recommendation, 0, len(items))
	for i := range items {
		item := items[i]
		vec := e.cache.GetOrCompute(item, e.encoder)

		sim := clamp01(feature.CosineSimilarity(vec, prefEmb))
		align := e.actionAlignment(action, item, sim, favorites)
		prior := 0.5*clamp01(item.Rating/10.0) + 0.5*clamp01(item.Popularity/100.0)

		factors := map[string]float64{
			"strategy": wa * align / total,
			"taste":    ws * sim / total,
			"catalog":  wp * prior / total,
		}

		recs = append(recs, Recommendation{
			ContentID: item.ID,
			Title:     item.Title,
			Score:     factors["strategy"] + factors["taste"] + factors["catalog"],
			Action:    action,
			Reason:    reasonFor(action, dominantFactor(factors)),
			Factors:   factors,
		})
	}

	sort.Slice(recs, func(i, j int) bool {
		if recs[i].Score != recs[j].Score {
			return recs[i].Score > recs[j].Score
		}
		return recs[i].ContentID < recs[j].ContentID
	})

	if len(recs) > n {
		recs = recs[:n]
	}

	e.logger.Debug().
		Str("state", state).
		Str("action", string(action)).
		Int("returned", len(recs)).
		Msg("recommendations composed")

	return recs, nil
}

// GetPreferences returns the ranked preference projection.
func (e *Engine) GetPreferences() profile.PreferenceProfile {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.prefs.Preferences()
}

// GetPatterns returns the consolidated learned patterns with sufficient
// sample support.
func (e *Engine) GetPatterns() []profile.LearnedPattern {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.prefs.Patterns()
}

// GetStats returns the engine's observable learning state.
func (e *Engine) GetStats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()

	avg := 0.0
	if e.totalSessions > 0 {
		avg = e.rewardSum / float64(e.totalSessions)
	}

	top := make([]ActionStat, 0, len(policy.Actions))
	for _, a := range policy.Actions {
		sessions := e.actionSessions[a]
		if sessions == 0 {
			continue
		}
		top = append(top, ActionStat{
			Action:        a,
			Sessions:      sessions,
			AverageReward: e.actionRewards[a] / float64(sessions),
		})
	}
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].AverageReward > top[j].AverageReward
	})

	return Stats{
		TotalSessions:   e.totalSessions,
		DistinctContent: len(e.distinct),
		ValueTableSize:  e.policy.TableSize(),
		ExplorationRate: e.policy.ExplorationRate(),
		AverageReward:   avg,
		PatternCount:    e.prefs.PatternCount(),
		ReplaySize:      e.memory.Len(),
		TopActions:      top,
	}
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() *Config {
	return e.cfg.Clone()
}

// Reset discards all learned state while keeping the catalog and
// configuration.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.policy.Reset()
	e.memory.Clear()
	e.prefs.Reset()
	e.cache.Clear()
	e.recent = nil
	e.totalSessions = 0
	e.rewardSum = 0
	e.distinct = make(map[string]struct{})
	e.actionSessions = make(map[policy.Action]int)
	e.actionRewards = make(map[policy.Action]float64)

	e.logger.Info().Msg("engine state reset")
}

// contextFor derives the current viewing context from the given time
// buckets and the bounded session history. Must be called with mu held.
func (e *Engine) contextFor(slot feature.TimeSlot, day feature.DayType) feature.Context {
	window := e.cfg.Encoder.RecencyWindow

	genres := make([]string, 0, window)
	types := make([]catalog.ContentType, 0, window)
	var completion float64

	for _, rec := range e.recent {
		if rec.known && len(genres) < window && len(rec.genres) > 0 {
			genres = append(genres, rec.genres[0])
		}
		if rec.known && len(types) < window {
			types = append(types, rec.ctype)
		}
		completion += rec.completion
	}
	if len(e.recent) > 0 {
		completion /= float64(len(e.recent))
	}

	return feature.Context{
		TimeSlot:      slot,
		DayType:       day,
		RecentGenres:  genres,
		RecentTypes:   types,
		AvgCompletion: completion,
	}
}

// pushRecent prepends a session record, trimming to the recent window.
func (e *Engine) pushRecent(rec sessionRecord) {
	e.recent = append([]sessionRecord{rec}, e.recent...)
	if len(e.recent) > e.cfg.Compose.RecentWindow {
		e.recent = e.recent[:e.cfg.Compose.RecentWindow]
	}
}

// preferenceEmbedding aggregates the embeddings of recent high-reward
// sessions into one taste vector, weighted by reward. Returns a zero
// vector when no qualifying history exists, which reads as "no signal"
// downstream (similarity 0). Must be called with mu held.
func (e *Engine) preferenceEmbedding() feature.Vector {
	agg := make(feature.Vector, feature.Dimension)
	found := false

	for _, rec := range e.recent {
		if !rec.known || rec.reward < e.cfg.Compose.HighRewardThreshold {
			continue
		}
		item, ok := e.catalog.Get(rec.contentID)
		if !ok {
			continue
		}

		vec := e.cache.GetOrCompute(item, e.encoder)
		for i := range agg {
			agg[i] += rec.reward * vec[i]
		}
		found = true
	}

	if !found {
		return agg
	}
	return feature.Normalize(agg)
}

// favoriteGenreSet returns the viewer's top-k genres by accumulated weight.
func (e *Engine) favoriteGenreSet(k int) map[string]struct{} {
	out := make(map[string]struct{}, k)
	for i, gw := range e.prefs.Preferences().FavoriteGenres {
		if i >= k {
			break
		}
		out[gw.Genre] = struct{}{}
	}
	return out
}

// actionAlignment scores how well an item serves the selected strategy,
// in [0, 1].
//
//nolint:gocritic // hugeParam: item passed by value for immutability
func (e *Engine) actionAlignment(action policy.Action, item catalog.ContentItem, prefSim float64, favorites map[string]struct{}) float64 {
	switch action {
	case policy.ActionPreferSimilar:
		return prefSim
	case policy.ActionPreferTrending:
		return clamp01(item.Popularity / 100.0)
	case policy.ActionPreferNewGenre:
		if len(item.Genres) == 0 {
			return 0.5
		}
		overlap := 0
		for _, g := range item.Genres {
			if _, ok := favorites[g]; ok {
				overlap++
			}
		}
		return 1.0 - float64(overlap)/float64(len(item.Genres))
	case policy.ActionPreferTopRated:
		return clamp01(item.Rating / 10.0)
	default:
		return 0
	}
}

// dominantFactor names the factor with the largest weighted contribution.
// Ties resolve in the fixed order strategy, taste, catalog.
func dominantFactor(factors map[string]float64) string {
	dominant := "strategy"
	best := factors["strategy"]
	for _, name := range []string{"taste", "catalog"} {
		if factors[name] > best {
			dominant, best = name, factors[name]
		}
	}
	return dominant
}

// reasonFor builds the human-readable justification for a recommendation.
func reasonFor(action policy.Action, dominant string) string {
	switch dominant {
	case "taste":
		return "Matches your taste profile"
	case "catalog":
		return "Popular and well rated"
	default:
	}

	switch action {
	case policy.ActionPreferSimilar:
		return "Close to what you have been watching"
	case policy.ActionPreferTrending:
		return "Trending with other viewers right now"
	case policy.ActionPreferNewGenre:
		return "A change of pace from your usual genres"
	case policy.ActionPreferTopRated:
		return "Highly rated and worth your time"
	default:
		return "Recommended for you"
	}
}
