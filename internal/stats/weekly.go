// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package stats

import (
	"sort"

	"github.com/autobrr/anistats/internal/catalog"
	"github.com/autobrr/anistats/internal/domain"
)

// RankEntry is one show's position within one ISO week.
type RankEntry struct {
	Week      ISOWeek
	ShowID    int
	Downloads int
	Rank      int

	// RankChange is the signed change versus the preceding week; nil means
	// the show was absent the week before ("new").
	RankChange *int

	// DownloadsChangePct is the percentage change versus the preceding week;
	// nil when there is no prior data or the prior value was zero.
	DownloadsChangePct *float64
}

// RankerConfig holds the static weekly-ranking configuration.
type RankerConfig struct {
	// PostAiringBufferWeeks keeps a finished show ranked for this many weeks
	// past its last known air week before dropping it, keeping charts focused
	// on current content.
	PostAiringBufferWeeks int
}

// Ranker buckets increments into ISO weeks per show and ranks shows within
// each week.
type Ranker struct {
	index *catalog.Index
	cfg   RankerConfig
}

// NewRanker creates a ranker over the run's catalog index.
func NewRanker(index *catalog.Index, cfg RankerConfig) *Ranker {
	return &Ranker{index: index, cfg: cfg}
}

// Rank sums increments per (show, ISO week) across all matched episodes and
// torrents, then assigns a dense 1..N rank within each week: downloads
// descending, show id ascending on ties — no shared ranks. Entries are
// returned in chronological week order, rank ascending.
func (r *Ranker) Rank(matches []domain.Match, increments map[string][]Increment) []RankEntry {
	showByHash := make(map[string]int, len(matches))
	for _, m := range matches {
		showByHash[m.Infohash] = m.ShowID
	}

	weekly := make(map[ISOWeek]map[int]int)
	for infohash, incs := range increments {
		showID, ok := showByHash[infohash]
		if !ok {
			continue
		}
		for _, inc := range incs {
			week := ISOWeekOf(inc.Timestamp)
			if weekly[week] == nil {
				weekly[week] = make(map[int]int)
			}
			weekly[week][showID] += inc.Value
		}
	}

	cutoffs := r.cutoffWeeks(weekly)

	weeks := make([]ISOWeek, 0, len(weekly))
	for week := range weekly {
		weeks = append(weeks, week)
	}
	sort.Slice(weeks, func(i, j int) bool { return weeks[i].Before(weeks[j]) })

	var entries []RankEntry
	prevRanks := make(map[int]int)
	prevDownloads := make(map[int]int)
	var prevWeek *ISOWeek

	for _, week := range weeks {
		type total struct {
			showID    int
			downloads int
		}
		totals := make([]total, 0, len(weekly[week]))
		for showID, downloads := range weekly[week] {
			if cutoff, ok := cutoffs[showID]; ok && cutoff.Before(week) {
				continue
			}
			totals = append(totals, total{showID: showID, downloads: downloads})
		}
		sort.Slice(totals, func(i, j int) bool {
			if totals[i].downloads != totals[j].downloads {
				return totals[i].downloads > totals[j].downloads
			}
			return totals[i].showID < totals[j].showID
		})

		// Ranks carry over only from the immediately preceding ISO week.
		carryOver := prevWeek != nil && *prevWeek == week.Prev()

		ranks := make(map[int]int, len(totals))
		downloads := make(map[int]int, len(totals))

		for i, t := range totals {
			rank := i + 1
			entry := RankEntry{
				Week:      week,
				ShowID:    t.showID,
				Downloads: t.downloads,
				Rank:      rank,
			}

			if carryOver {
				if prev, ok := prevRanks[t.showID]; ok {
					change := prev - rank // positive = climbed
					entry.RankChange = &change
				}
				if prev, ok := prevDownloads[t.showID]; ok && prev > 0 {
					pct := 100 * float64(t.downloads-prev) / float64(prev)
					entry.DownloadsChangePct = &pct
				}
			}

			entries = append(entries, entry)
			ranks[t.showID] = rank
			downloads[t.showID] = t.downloads
		}

		prevRanks = ranks
		prevDownloads = downloads
		w := week
		prevWeek = &w
	}

	return entries
}

// cutoffWeeks computes, per finished show, the last week it may appear in:
// last known air week plus the configured buffer. Shows without a schedule
// fall back to their last observed download week, which never cuts them off.
func (r *Ranker) cutoffWeeks(weekly map[ISOWeek]map[int]int) map[int]ISOWeek {
	lastObserved := make(map[int]ISOWeek)
	for week, shows := range weekly {
		for showID := range shows {
			if last, ok := lastObserved[showID]; !ok || last.Before(week) {
				lastObserved[showID] = week
			}
		}
	}

	cutoffs := make(map[int]ISOWeek)
	for showID, lastWeek := range lastObserved {
		show, ok := r.index.Show(showID)
		if !ok || show.Status != catalog.StatusFinished {
			continue
		}

		airWeek := lastWeek
		if last, ok := show.LastAiring(); ok {
			airWeek = ISOWeekOf(last)
		}

		cutoff := airWeek
		for i := 0; i < r.cfg.PostAiringBufferWeeks; i++ {
			cutoff = ISOWeekOf(cutoff.Monday().AddDate(0, 0, 7))
		}
		cutoffs[showID] = cutoff
	}

	return cutoffs
}
