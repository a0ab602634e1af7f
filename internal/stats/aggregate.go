// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package stats

import (
	"sort"
	"time"

	"github.com/autobrr/anistats/internal/domain"
)

// SeriesRow is one point of an episode's download series: all matched
// releases of the episode summed into a single UTC calendar day.
type SeriesRow struct {
	ShowID                int
	Episode               int
	Day                   time.Time // UTC midnight
	DownloadsDaily        int
	DownloadsCumulative   int
	DaysSinceFirstRelease int
}

type episodeKey struct {
	showID  int
	episode int
}

// Aggregate folds increments into per (show, episode, day) series.
// DownloadsCumulative is the running chronological sum of the validated
// increments, never of raw absolute counts. DaysSinceFirstRelease re-bases
// each episode's timeline to the day of the earliest publish time among its
// matched torrents, so episodes are comparable regardless of air date.
//
// pubdates must contain the publish time of every matched infohash.
// Implemented as a deterministic fold over sorted keys; input order does not
// affect the result.
func Aggregate(matches []domain.Match, pubdates map[string]time.Time, increments map[string][]Increment) []SeriesRow {
	byHash := make(map[string]episodeKey, len(matches))
	firstRelease := make(map[episodeKey]time.Time)

	for _, m := range matches {
		key := episodeKey{showID: m.ShowID, episode: m.Episode}
		byHash[m.Infohash] = key

		pub, ok := pubdates[m.Infohash]
		if !ok {
			continue
		}
		if first, ok := firstRelease[key]; !ok || pub.Before(first) {
			firstRelease[key] = pub
		}
	}

	daily := make(map[episodeKey]map[time.Time]int)
	for infohash, incs := range increments {
		key, ok := byHash[infohash]
		if !ok {
			continue
		}
		days := daily[key]
		if days == nil {
			days = make(map[time.Time]int)
			daily[key] = days
		}
		for _, inc := range incs {
			days[dayOf(inc.Timestamp)] += inc.Value
		}
	}

	keys := make([]episodeKey, 0, len(daily))
	for key := range daily {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].showID != keys[j].showID {
			return keys[i].showID < keys[j].showID
		}
		return keys[i].episode < keys[j].episode
	})

	var rows []SeriesRow
	for _, key := range keys {
		days := make([]time.Time, 0, len(daily[key]))
		for day := range daily[key] {
			days = append(days, day)
		}
		sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

		origin := dayOf(firstRelease[key])
		cumulative := 0
		for _, day := range days {
			cumulative += daily[key][day]
			rows = append(rows, SeriesRow{
				ShowID:                key.showID,
				Episode:               key.episode,
				Day:                   day,
				DownloadsDaily:        daily[key][day],
				DownloadsCumulative:   cumulative,
				DaysSinceFirstRelease: int(day.Sub(origin).Hours() / 24),
			})
		}
	}

	return rows
}

// dayOf truncates a timestamp to its UTC calendar day.
func dayOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
