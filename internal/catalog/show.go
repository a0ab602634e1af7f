// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package catalog fetches season show metadata from the remote catalog service
// and builds the immutable in-memory index the match engine runs against.
package catalog

import "time"

// Show statuses as reported by the catalog service.
const (
	StatusReleasing      = "RELEASING"
	StatusFinished       = "FINISHED"
	StatusNotYetReleased = "NOT_YET_RELEASED"
)

// Airing is one entry of a show's airing schedule.
type Airing struct {
	Episode  int
	AiringAt time.Time
}

// Show is one catalog entry (a series season). Immutable for the run.
type Show struct {
	ID           int
	TitleRomaji  string
	TitleEnglish string // empty when the catalog has no english title
	Synonyms     []string
	Episodes     *int
	Status       string
	Format       string
	Schedule     []Airing
}

// DisplayTitle returns the romaji title, falling back to english.
func (s *Show) DisplayTitle() string {
	if s.TitleRomaji != "" {
		return s.TitleRomaji
	}
	return s.TitleEnglish
}

// LastAiring returns the latest scheduled air time, or false when the catalog
// supplied no schedule.
func (s *Show) LastAiring() (time.Time, bool) {
	var last time.Time
	for _, a := range s.Schedule {
		if a.AiringAt.After(last) {
			last = a.AiringAt
		}
	}
	return last, !last.IsZero()
}
