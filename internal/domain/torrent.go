// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package domain holds the value types shared across the engine: raw input
// records, match results and run configuration.
package domain

import "time"

// Torrent statuses as written by the crawler.
const (
	TorrentStatusActive      = "active"
	TorrentStatusDead        = "dead"
	TorrentStatusParseFailed = "parse_failed"
)

// Torrent is one published release identified by its content hash. Produced by
// the external crawler; read-only inside the engine.
type Torrent struct {
	Infohash string
	Filename string
	PubDate  time.Time
	Trusted  bool
	Remake   bool
	Status   string

	// Parsed metadata from the upstream release-name parser. All optional;
	// a multi-episode release carries Episodes instead of Episode.
	Title    *string
	Episode  *float64
	Episodes []int
	Season   *int
}

// Snapshot is one observation of a torrent's absolute completed-download
// counter. Snapshots are ordered by timestamp per torrent but the counter is
// not guaranteed monotonic.
type Snapshot struct {
	Infohash  string
	Timestamp time.Time
	Seeders   int
	Leechers  int
	Downloads int
}

// MatchMethod identifies which strategy in the resolution chain produced a match.
type MatchMethod string

const (
	MatchMethodEpisodeRange   MatchMethod = "episode_range"
	MatchMethodManualOverride MatchMethod = "manual_override"
	MatchMethodSeasonAware    MatchMethod = "season_aware"
	MatchMethodFuzzy          MatchMethod = "fuzzy"
)

// Match binds a torrent to a (show, episode) pair. At most one Match exists
// per infohash in a run.
type Match struct {
	Infohash     string
	ShowID       int
	Episode      int
	Method       MatchMethod
	Score        float64
	MatchedTitle string

	// SeasonMatched is set when the season-aware strategy applied its bonus.
	SeasonMatched *int
}

// Unmatched reasons recorded for diagnostics.
const (
	UnmatchedReasonNoTitle        = "no_title"
	UnmatchedReasonUninformative  = "uninformative_title"
	UnmatchedReasonBelowThreshold = "below_threshold"
)

// Unmatched records a torrent the engine could not attribute, with the best
// fuzzy candidate retained for threshold/override tuning.
type Unmatched struct {
	Infohash  string
	Title     string
	Reason    string
	BestScore float64
	BestShow  int
	BestTitle string
}
