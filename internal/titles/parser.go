// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package titles recovers release metadata for torrents the upstream crawler
// failed to parse, so they still get a chance at matching instead of being
// dropped outright.
package titles

import "github.com/moistari/rls"

// Parsed is the subset of release information the engine consumes.
type Parsed struct {
	Title      string
	Season     int // 0 when the release name encodes no season
	Episode    int // 0 when the release name encodes no episode
	Group      string
	Resolution string
}

// Parse parses a release name. It never fails; an unrecognizable name yields
// zero values and the caller decides whether that is usable.
func Parse(name string) Parsed {
	release := rls.ParseString(name)

	return Parsed{
		Title:      release.Title,
		Season:     release.Series,
		Episode:    release.Episode,
		Group:      release.Group,
		Resolution: release.Resolution,
	}
}
