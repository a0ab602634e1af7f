// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package matching resolves filtered torrents to (show, episode) pairs. The
// resolution order is a deliberate priority chain: episode-range overrides,
// manual overrides, season-aware fuzzy scoring, season-agnostic fuzzy scoring.
// Naive single-pass fuzzy matching produces false positives for continuing
// series and known-bad titles, which the override links exist to preempt.
package matching

import (
	"strings"

	"github.com/autobrr/anistats/internal/catalog"
	"github.com/autobrr/anistats/internal/domain"
	"github.com/autobrr/anistats/pkg/stringutils"
)

// Config is the immutable matching configuration for one run.
type Config struct {
	Threshold   int
	SeasonBonus int
	Overrides   domain.Overrides
}

// Candidate is one filtered torrent presented to the engine.
type Candidate struct {
	Infohash string
	RawTitle string // parsed release title before normalization
	Season   int    // 0 when the release carries no season number
	Episode  int
}

// Matcher resolves candidates against a catalog index. It holds only
// immutable state and is safe for concurrent use by the worker pool.
type Matcher struct {
	index *catalog.Index
	cfg   Config
}

// NewMatcher creates a matcher over an index and static configuration.
func NewMatcher(index *catalog.Index, cfg Config) *Matcher {
	return &Matcher{index: index, cfg: cfg}
}

type strategyFunc func(c Candidate, normalized string) *domain.Match

// strategies returns the ordered resolution chain; the first link that
// produces a match wins.
func (m *Matcher) strategies() []strategyFunc {
	return []strategyFunc{
		m.episodeRangeOverride,
		m.manualOverride,
		m.seasonAwareFuzzy,
		m.plainFuzzy,
	}
}

// Match resolves a candidate. Exactly one of the results is non-nil.
func (m *Matcher) Match(c Candidate) (*domain.Match, *domain.Unmatched) {
	if strings.TrimSpace(c.RawTitle) == "" {
		return nil, &domain.Unmatched{
			Infohash: c.Infohash,
			Title:    c.RawTitle,
			Reason:   domain.UnmatchedReasonNoTitle,
		}
	}

	normalized := m.cfg.Overrides.Correct(stringutils.Normalize(c.RawTitle))
	if !stringutils.IsInformative(normalized) {
		return nil, &domain.Unmatched{
			Infohash: c.Infohash,
			Title:    c.RawTitle,
			Reason:   domain.UnmatchedReasonUninformative,
		}
	}

	for _, strategy := range m.strategies() {
		if match := strategy(c, normalized); match != nil {
			return match, nil
		}
	}

	// Long native subtitles after " - " tank fuzzy scores; retry on the
	// prefix alone when it still carries enough signal.
	if match := m.prefixFallback(c); match != nil {
		return match, nil
	}

	bestID, bestScore, _ := m.bestCandidate(normalized, 0)
	unmatched := &domain.Unmatched{
		Infohash:  c.Infohash,
		Title:     c.RawTitle,
		Reason:    domain.UnmatchedReasonBelowThreshold,
		BestScore: bestScore,
		BestShow:  bestID,
	}
	if show, ok := m.index.Show(bestID); ok {
		unmatched.BestTitle = show.DisplayTitle()
	}
	return nil, unmatched
}

// episodeRangeOverride binds series whose numbering continues past a catalog
// boundary, skipping fuzzy matching entirely.
func (m *Matcher) episodeRangeOverride(c Candidate, normalized string) *domain.Match {
	showID, ok := m.cfg.Overrides.RangeFor(normalized, c.Episode)
	if !ok {
		return nil
	}
	show, ok := m.index.Show(showID)
	if !ok {
		return nil
	}
	return &domain.Match{
		Infohash:     c.Infohash,
		ShowID:       showID,
		Episode:      c.Episode,
		Method:       domain.MatchMethodEpisodeRange,
		Score:        100,
		MatchedTitle: show.DisplayTitle(),
	}
}

func (m *Matcher) manualOverride(c Candidate, normalized string) *domain.Match {
	showID, ok := m.cfg.Overrides.ManualFor(normalized)
	if !ok {
		return nil
	}
	show, ok := m.index.Show(showID)
	if !ok {
		return nil
	}
	return &domain.Match{
		Infohash:     c.Infohash,
		ShowID:       showID,
		Episode:      c.Episode,
		Method:       domain.MatchMethodManualOverride,
		Score:        100,
		MatchedTitle: show.DisplayTitle(),
	}
}

// seasonAwareFuzzy scores with a bonus for catalog entries whose own titles
// encode the candidate's parsed season ordinal. Only applicable when the
// release carried a season number.
func (m *Matcher) seasonAwareFuzzy(c Candidate, normalized string) *domain.Match {
	if c.Season == 0 {
		return nil
	}

	bestID, bestScore, bonusApplied := m.bestCandidate(normalized, c.Season)
	if bestID == 0 || bestScore < float64(m.cfg.Threshold) {
		return nil
	}

	match := m.fuzzyMatch(c, bestID, bestScore, domain.MatchMethodFuzzy)
	if bonusApplied {
		match.Method = domain.MatchMethodSeasonAware
		season := c.Season
		match.SeasonMatched = &season
	}
	return match
}

// plainFuzzy is the season-agnostic fallback over the full catalog.
func (m *Matcher) plainFuzzy(c Candidate, normalized string) *domain.Match {
	bestID, bestScore, _ := m.bestCandidate(normalized, 0)
	if bestID == 0 || bestScore < float64(m.cfg.Threshold) {
		return nil
	}
	return m.fuzzyMatch(c, bestID, bestScore, domain.MatchMethodFuzzy)
}

func (m *Matcher) fuzzyMatch(c Candidate, showID int, score float64, method domain.MatchMethod) *domain.Match {
	show, _ := m.index.Show(showID)
	return &domain.Match{
		Infohash:     c.Infohash,
		ShowID:       showID,
		Episode:      c.Episode,
		Method:       method,
		Score:        score,
		MatchedTitle: show.DisplayTitle(),
	}
}

// bestCandidate scans every indexed variant and returns the best-scoring show.
// Shows are visited in ascending id order and replaced only on a strictly
// greater score, so equal-score ties deterministically resolve to the lowest
// show id. season == 0 disables the bonus.
func (m *Matcher) bestCandidate(normalized string, season int) (bestID int, bestScore float64, bonusApplied bool) {
	for _, id := range m.index.IDs() {
		bonus := 0.0
		if season > 0 && m.index.SeasonOrdinal(id) == season {
			bonus = float64(m.cfg.SeasonBonus)
		}

		for _, variant := range m.index.Variants(id) {
			score := Similarity(normalized, variant) + bonus
			if score > bestScore {
				bestID = id
				bestScore = score
				bonusApplied = bonus > 0
			}
		}
	}
	return bestID, bestScore, bonusApplied
}

// prefixFallback retries overrides and plain fuzzy scoring on the part of the
// raw title before " - ", which commonly separates the series name from a
// long translated subtitle.
func (m *Matcher) prefixFallback(c Candidate) *domain.Match {
	idx := strings.Index(c.RawTitle, " - ")
	if idx < 0 {
		return nil
	}

	prefix := stringutils.Normalize(c.RawTitle[:idx])
	if !stringutils.IsInformative(prefix) || len(prefix) < 4 {
		return nil
	}

	if match := m.manualOverride(c, prefix); match != nil {
		return match
	}
	return m.plainFuzzy(c, prefix)
}
