// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autobrr/anistats/internal/domain"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAggregateCompetingReleasesSameDay(t *testing.T) {
	// Two releases of the same episode (different groups/resolutions) with
	// same-day increases of 100 and 50 must aggregate into one 150 daily row.
	matches := []domain.Match{
		{Infohash: "groupx-1080p", ShowID: 1, Episode: 1},
		{Infohash: "groupy-720p", ShowID: 1, Episode: 1},
	}
	pub := time.Date(2025, 10, 6, 14, 0, 0, 0, time.UTC)
	pubdates := map[string]time.Time{
		"groupx-1080p": pub,
		"groupy-720p":  pub.Add(30 * time.Minute),
	}
	increments := map[string][]Increment{
		"groupx-1080p": {{Infohash: "groupx-1080p", Timestamp: pub.Add(2 * time.Hour), Value: 100}},
		"groupy-720p":  {{Infohash: "groupy-720p", Timestamp: pub.Add(3 * time.Hour), Value: 50}},
	}

	rows := Aggregate(matches, pubdates, increments)

	require.Len(t, rows, 1)
	assert.Equal(t, 1, rows[0].ShowID)
	assert.Equal(t, 1, rows[0].Episode)
	assert.Equal(t, day(2025, 10, 6), rows[0].Day)
	assert.Equal(t, 150, rows[0].DownloadsDaily)
	assert.Equal(t, 150, rows[0].DownloadsCumulative)
	assert.Equal(t, 0, rows[0].DaysSinceFirstRelease)
}

func TestAggregateCumulativeAndTimeline(t *testing.T) {
	matches := []domain.Match{{Infohash: "t1", ShowID: 7, Episode: 3}}
	pub := time.Date(2025, 10, 6, 20, 0, 0, 0, time.UTC)
	pubdates := map[string]time.Time{"t1": pub}
	increments := map[string][]Increment{
		"t1": {
			{Infohash: "t1", Timestamp: pub.Add(time.Hour), Value: 40},
			{Infohash: "t1", Timestamp: pub.Add(26 * time.Hour), Value: 25},
			{Infohash: "t1", Timestamp: pub.Add(28 * time.Hour), Value: 5},
			{Infohash: "t1", Timestamp: pub.Add(75 * time.Hour), Value: 10},
		},
	}

	rows := Aggregate(matches, pubdates, increments)

	require.Len(t, rows, 3)
	assert.Equal(t, []int{40, 30, 10}, []int{rows[0].DownloadsDaily, rows[1].DownloadsDaily, rows[2].DownloadsDaily})
	assert.Equal(t, []int{40, 70, 80}, []int{rows[0].DownloadsCumulative, rows[1].DownloadsCumulative, rows[2].DownloadsCumulative})
	assert.Equal(t, []int{0, 1, 3}, []int{rows[0].DaysSinceFirstRelease, rows[1].DaysSinceFirstRelease, rows[2].DaysSinceFirstRelease})

	// Sum of dailies equals the final cumulative.
	sum := 0
	for _, r := range rows {
		sum += r.DownloadsDaily
	}
	assert.Equal(t, rows[len(rows)-1].DownloadsCumulative, sum)
}

func TestAggregateFirstReleaseAcrossTorrents(t *testing.T) {
	// days_since_first_release is based on the earliest publish time among
	// all torrents matched to the episode, even when the earliest torrent
	// has no increments itself.
	matches := []domain.Match{
		{Infohash: "early", ShowID: 2, Episode: 1},
		{Infohash: "late", ShowID: 2, Episode: 1},
	}
	pubdates := map[string]time.Time{
		"early": time.Date(2025, 10, 6, 1, 0, 0, 0, time.UTC),
		"late":  time.Date(2025, 10, 8, 1, 0, 0, 0, time.UTC),
	}
	increments := map[string][]Increment{
		"late": {{Infohash: "late", Timestamp: time.Date(2025, 10, 8, 9, 0, 0, 0, time.UTC), Value: 20}},
	}

	rows := Aggregate(matches, pubdates, increments)

	require.Len(t, rows, 1)
	assert.Equal(t, 2, rows[0].DaysSinceFirstRelease)
}

func TestAggregateSortedAndDeterministic(t *testing.T) {
	matches := []domain.Match{
		{Infohash: "b", ShowID: 9, Episode: 2},
		{Infohash: "a", ShowID: 9, Episode: 1},
		{Infohash: "c", ShowID: 3, Episode: 5},
	}
	pub := time.Date(2025, 10, 6, 0, 30, 0, 0, time.UTC)
	pubdates := map[string]time.Time{"a": pub, "b": pub, "c": pub}
	increments := map[string][]Increment{
		"a": {{Infohash: "a", Timestamp: pub.Add(time.Hour), Value: 1}},
		"b": {{Infohash: "b", Timestamp: pub.Add(time.Hour), Value: 2}},
		"c": {{Infohash: "c", Timestamp: pub.Add(time.Hour), Value: 3}},
	}

	first := Aggregate(matches, pubdates, increments)
	require.Len(t, first, 3)
	assert.Equal(t, 3, first[0].ShowID)
	assert.Equal(t, 9, first[1].ShowID)
	assert.Equal(t, 1, first[1].Episode)
	assert.Equal(t, 2, first[2].Episode)

	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Aggregate(matches, pubdates, increments))
	}
}

func TestAggregateIgnoresUnmatchedIncrements(t *testing.T) {
	matches := []domain.Match{{Infohash: "known", ShowID: 1, Episode: 1}}
	pub := time.Date(2025, 10, 6, 0, 0, 0, 0, time.UTC)
	pubdates := map[string]time.Time{"known": pub}
	increments := map[string][]Increment{
		"known":   {{Infohash: "known", Timestamp: pub.Add(time.Hour), Value: 10}},
		"unknown": {{Infohash: "unknown", Timestamp: pub.Add(time.Hour), Value: 999}},
	}

	rows := Aggregate(matches, pubdates, increments)
	require.Len(t, rows, 1)
	assert.Equal(t, 10, rows[0].DownloadsDaily)
}
