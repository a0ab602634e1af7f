// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package stats

import (
	"fmt"
	"time"
)

// ISOWeek identifies a Monday-start calendar week by ISO-8601 year and week
// number. Note the ISO year can differ from the calendar year around
// January 1st.
type ISOWeek struct {
	Year int
	Week int
}

// ISOWeekOf returns the ISO week containing t (evaluated in UTC).
func ISOWeekOf(t time.Time) ISOWeek {
	year, week := t.UTC().ISOWeek()
	return ISOWeek{Year: year, Week: week}
}

// String formats the week as e.g. "2025-W40".
func (w ISOWeek) String() string {
	return fmt.Sprintf("%d-W%02d", w.Year, w.Week)
}

// Monday returns the UTC midnight of the week's Monday. ISO week 1 is the
// week containing January 4th.
func (w ISOWeek) Monday() time.Time {
	jan4 := time.Date(w.Year, time.January, 4, 0, 0, 0, 0, time.UTC)
	weekday := int(jan4.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday
	}
	week1Monday := jan4.AddDate(0, 0, 1-weekday)
	return week1Monday.AddDate(0, 0, (w.Week-1)*7)
}

// Prev returns the preceding ISO week.
func (w ISOWeek) Prev() ISOWeek {
	return ISOWeekOf(w.Monday().AddDate(0, 0, -7))
}

// Before reports whether w precedes other.
func (w ISOWeek) Before(other ISOWeek) bool {
	if w.Year != other.Year {
		return w.Year < other.Year
	}
	return w.Week < other.Week
}

// WeeksBetween returns the signed number of weeks from a to b.
func WeeksBetween(a, b ISOWeek) int {
	return int(b.Monday().Sub(a.Monday()).Hours() / (24 * 7))
}
