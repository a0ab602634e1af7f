// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package matching

import (
	"math"
	"time"

	"github.com/autobrr/anistats/internal/domain"
)

// Filter rejection reasons, recorded in the diagnostics report.
const (
	RejectParseFailed  = "parse_failed"
	RejectRemake       = "remake"
	RejectBeforeWindow = "before_window"
	RejectBatch        = "batch"
	RejectNoEpisode    = "no_episode"
	RejectFractional   = "fractional_episode"
)

// Filter excludes torrents that cannot be safely attributed to a single
// episode. It runs before matching so season batches never pollute per-episode
// download counts. Pure and stateless aside from the window start.
type Filter struct {
	windowStart time.Time
}

// NewFilter creates a filter. A zero windowStart disables the publish-time
// lower bound.
func NewFilter(windowStart time.Time) *Filter {
	return &Filter{windowStart: windowStart.UTC()}
}

// Accept reports whether the torrent may enter matching, returning the
// rejection reason otherwise.
func (f *Filter) Accept(t *domain.Torrent) (bool, string) {
	if t.Status == domain.TorrentStatusParseFailed {
		return false, RejectParseFailed
	}
	if t.Remake {
		return false, RejectRemake
	}
	if !f.windowStart.IsZero() && t.PubDate.Before(f.windowStart) {
		return false, RejectBeforeWindow
	}
	if len(t.Episodes) > 0 {
		return false, RejectBatch
	}
	if t.Episode == nil {
		return false, RejectNoEpisode
	}
	if *t.Episode != math.Trunc(*t.Episode) {
		// Recaps and specials published as e.g. 5.5 belong to no catalog episode.
		return false, RejectFractional
	}
	return true, ""
}

// EpisodeNumber returns the integral episode number of an accepted torrent.
func EpisodeNumber(t *domain.Torrent) int {
	return int(*t.Episode)
}
