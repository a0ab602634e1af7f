// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestISOWeekOf(t *testing.T) {
	tests := []struct {
		name string
		at   time.Time
		want ISOWeek
	}{
		{
			name: "mid season monday",
			at:   time.Date(2025, 9, 29, 12, 0, 0, 0, time.UTC),
			want: ISOWeek{Year: 2025, Week: 40},
		},
		{
			name: "sunday belongs to same iso week as preceding monday",
			at:   time.Date(2025, 10, 5, 23, 59, 59, 0, time.UTC),
			want: ISOWeek{Year: 2025, Week: 40},
		},
		{
			name: "january 1st can fall in previous iso year",
			at:   time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC),
			want: ISOWeek{Year: 2026, Week: 53},
		},
		{
			name: "late december can fall in next iso year",
			at:   time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC),
			want: ISOWeek{Year: 2025, Week: 1},
		},
		{
			name: "non utc input evaluated in utc",
			at:   time.Date(2025, 10, 6, 1, 0, 0, 0, time.FixedZone("JST", 9*3600)),
			want: ISOWeek{Year: 2025, Week: 40},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ISOWeekOf(tt.at))
		})
	}
}

func TestISOWeekString(t *testing.T) {
	assert.Equal(t, "2025-W40", ISOWeek{Year: 2025, Week: 40}.String())
	assert.Equal(t, "2026-W01", ISOWeek{Year: 2026, Week: 1}.String())
}

func TestISOWeekMonday(t *testing.T) {
	assert.Equal(t, time.Date(2025, 9, 29, 0, 0, 0, 0, time.UTC), ISOWeek{Year: 2025, Week: 40}.Monday())
	assert.Equal(t, time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC), ISOWeek{Year: 2025, Week: 1}.Monday())

	// Round trip: the Monday of any week is inside that week.
	for week := 1; week <= 52; week++ {
		w := ISOWeek{Year: 2025, Week: week}
		assert.Equal(t, w, ISOWeekOf(w.Monday()))
	}
}

func TestISOWeekPrev(t *testing.T) {
	assert.Equal(t, ISOWeek{Year: 2025, Week: 39}, ISOWeek{Year: 2025, Week: 40}.Prev())
	// Year boundary, including a 53-week ISO year.
	assert.Equal(t, ISOWeek{Year: 2024, Week: 52}, ISOWeek{Year: 2025, Week: 1}.Prev())
	assert.Equal(t, ISOWeek{Year: 2026, Week: 53}, ISOWeek{Year: 2027, Week: 1}.Prev())
}

func TestISOWeekBefore(t *testing.T) {
	assert.True(t, ISOWeek{Year: 2025, Week: 40}.Before(ISOWeek{Year: 2025, Week: 41}))
	assert.True(t, ISOWeek{Year: 2024, Week: 52}.Before(ISOWeek{Year: 2025, Week: 1}))
	assert.False(t, ISOWeek{Year: 2025, Week: 41}.Before(ISOWeek{Year: 2025, Week: 40}))
	assert.False(t, ISOWeek{Year: 2025, Week: 40}.Before(ISOWeek{Year: 2025, Week: 40}))
}

func TestWeeksBetween(t *testing.T) {
	assert.Equal(t, 0, WeeksBetween(ISOWeek{Year: 2025, Week: 40}, ISOWeek{Year: 2025, Week: 40}))
	assert.Equal(t, 4, WeeksBetween(ISOWeek{Year: 2025, Week: 40}, ISOWeek{Year: 2025, Week: 44}))
	assert.Equal(t, -2, WeeksBetween(ISOWeek{Year: 2025, Week: 2}, ISOWeek{Year: 2024, Week: 52}))
}
