// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package domain

// EpisodeRangeOverride binds a normalized title plus an inclusive episode
// interval directly to a show. Used for series whose release numbering runs
// past a catalog season boundary (continuous numbering across seasons).
type EpisodeRangeOverride struct {
	Title      string `toml:"title"`
	MinEpisode int    `toml:"min_episode"`
	MaxEpisode int    `toml:"max_episode"`
	ShowID     int    `toml:"show_id"`
}

// Overrides is the static matching-correction configuration. Keys are
// normalized titles (see stringutils.Normalize); values reference catalog show
// ids. Immutable for the run.
type Overrides struct {
	// Manual maps a normalized torrent title to a show id for titles known to
	// score below threshold or to be ambiguous.
	Manual map[string]int `toml:"manual"`

	// EpisodeRanges is consulted before any other strategy.
	EpisodeRanges []EpisodeRangeOverride `toml:"episode_range"`

	// Corrections fixes systematic upstream parse errors before matching,
	// mapping a wrongly parsed normalized title to the intended one.
	Corrections map[string]string `toml:"corrections"`
}

// RangeFor returns the show id configured for (normalized title, episode), or
// false when no interval covers it.
func (o Overrides) RangeFor(title string, episode int) (int, bool) {
	for _, r := range o.EpisodeRanges {
		if r.Title == title && episode >= r.MinEpisode && episode <= r.MaxEpisode {
			return r.ShowID, true
		}
	}
	return 0, false
}

// ManualFor returns the manually configured show id for a normalized title.
func (o Overrides) ManualFor(title string) (int, bool) {
	id, ok := o.Manual[title]
	return id, ok
}

// Correct applies a configured title correction, returning the input unchanged
// when none applies.
func (o Overrides) Correct(title string) string {
	if corrected, ok := o.Corrections[title]; ok {
		return corrected
	}
	return title
}
