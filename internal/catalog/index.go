// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package catalog

import (
	"regexp"
	"sort"
	"strconv"

	"github.com/autobrr/anistats/pkg/stringutils"
)

// Season ordinal forms found in catalog titles, matched against the
// normalized title: "2nd season", "season 3", "3rd cour" style suffixes are
// not covered on purpose; only explicit season wording counts.
var seasonOrdinalPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(\d{1,2})(?:st|nd|rd|th) season\b`),
	regexp.MustCompile(`\bseason (\d{1,2})\b`),
}

// Index is the read-only structure matching runs against: show lookup by id,
// normalized informative title variants per show and the season ordinal each
// show's own titles encode. Built once at construction, many readers after,
// no locking required.
type Index struct {
	shows         map[int]*Show
	variants      map[int][]string
	seasonOrdinal map[int]int
	ids           []int
}

// NewIndex builds the index over validated catalog entries.
func NewIndex(shows []Show) *Index {
	idx := &Index{
		shows:         make(map[int]*Show, len(shows)),
		variants:      make(map[int][]string, len(shows)),
		seasonOrdinal: make(map[int]int, len(shows)),
	}

	for i := range shows {
		show := &shows[i]
		if _, dup := idx.shows[show.ID]; dup {
			continue
		}
		idx.shows[show.ID] = show
		idx.ids = append(idx.ids, show.ID)
		idx.variants[show.ID] = buildVariants(show)
		idx.seasonOrdinal[show.ID] = detectSeasonOrdinal(show)
	}

	sort.Ints(idx.ids)
	return idx
}

// buildVariants collects the deduplicated, normalized, informative title
// variants of a show. Sorted so iteration order is deterministic.
func buildVariants(show *Show) []string {
	set := make(map[string]bool)

	add := func(title string) {
		normalized := stringutils.Normalize(title)
		if stringutils.IsInformative(normalized) {
			set[normalized] = true
		}
	}

	add(show.TitleRomaji)
	add(show.TitleEnglish)
	for _, synonym := range show.Synonyms {
		add(synonym)
	}

	variants := make([]string, 0, len(set))
	for v := range set {
		variants = append(variants, v)
	}
	sort.Strings(variants)
	return variants
}

// detectSeasonOrdinal parses the season number a show's own titles encode.
// Returns 0 when none is found; a first season usually carries no marker.
func detectSeasonOrdinal(show *Show) int {
	for _, title := range []string{show.TitleRomaji, show.TitleEnglish} {
		normalized := stringutils.Normalize(title)
		for _, pattern := range seasonOrdinalPatterns {
			if m := pattern.FindStringSubmatch(normalized); m != nil {
				if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
					return n
				}
			}
		}
	}
	return 0
}

// Show returns the entry for id.
func (i *Index) Show(id int) (*Show, bool) {
	s, ok := i.shows[id]
	return s, ok
}

// IDs returns all show ids in ascending order.
func (i *Index) IDs() []int {
	return i.ids
}

// Variants returns the normalized title variants for a show.
func (i *Index) Variants(id int) []string {
	return i.variants[id]
}

// SeasonOrdinal returns the season number encoded in the show's titles, or 0.
func (i *Index) SeasonOrdinal(id int) int {
	return i.seasonOrdinal[id]
}

// Len returns the number of indexed shows.
func (i *Index) Len() int {
	return len(i.ids)
}
