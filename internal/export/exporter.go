// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package export writes the engine's output artifacts: per-episode download
// series, weekly rankings and a diagnostics report for override tuning.
package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/autobrr/anistats/internal/catalog"
	"github.com/autobrr/anistats/internal/domain"
	"github.com/autobrr/anistats/internal/stats"
)

const (
	episodesFile    = "episodes.json"
	rankingsFile    = "rankings.json"
	diagnosticsFile = "diagnostics.json"
)

// Exporter serializes run results into the output directory. Every artifact
// is written atomically (temp file + rename) so a failed run never leaves a
// partial file behind.
type Exporter struct {
	dir   string
	index *catalog.Index
}

func NewExporter(dir string, index *catalog.Index) *Exporter {
	return &Exporter{dir: dir, index: index}
}

type episodeRow struct {
	ShowID                int    `json:"show_id"`
	Episode               int    `json:"episode"`
	Day                   string `json:"day"`
	DownloadsDaily        int    `json:"downloads_daily"`
	DownloadsCumulative   int    `json:"downloads_cumulative"`
	DaysSinceFirstRelease int    `json:"days_since_first_release"`
	Title                 string `json:"title"`
}

// WriteEpisodes writes episodes.json: the full per-episode daily series,
// sorted by show, episode, day.
func (e *Exporter) WriteEpisodes(rows []stats.SeriesRow) error {
	out := make([]episodeRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, episodeRow{
			ShowID:                r.ShowID,
			Episode:               r.Episode,
			Day:                   r.Day.Format("2006-01-02"),
			DownloadsDaily:        r.DownloadsDaily,
			DownloadsCumulative:   r.DownloadsCumulative,
			DaysSinceFirstRelease: r.DaysSinceFirstRelease,
			Title:                 e.title(r.ShowID),
		})
	}

	if err := e.writeJSON(episodesFile, out); err != nil {
		return err
	}

	log.Info().Int("rows", len(out)).Msg("export: wrote episode series")
	return nil
}

type rankingEntry struct {
	ShowID             int      `json:"show_id"`
	Rank               int      `json:"rank"`
	RankChange         *int     `json:"rank_change"`
	Downloads          int      `json:"downloads"`
	DownloadsChangePct *float64 `json:"downloads_change_pct"`
	Title              string   `json:"title"`
}

type weekRanking struct {
	Week      string         `json:"week"`
	WeekStart string         `json:"week_start"`
	Entries   []rankingEntry `json:"entries"`
}

// WriteRankings writes rankings.json: one object per ISO week in
// chronological order, entries sorted by rank. A null rank_change marks a
// show absent from the preceding week.
func (e *Exporter) WriteRankings(entries []stats.RankEntry) error {
	var weeks []weekRanking
	byWeek := make(map[stats.ISOWeek]int)

	for _, entry := range entries {
		idx, ok := byWeek[entry.Week]
		if !ok {
			weeks = append(weeks, weekRanking{
				Week:      entry.Week.String(),
				WeekStart: entry.Week.Monday().Format("2006-01-02"),
			})
			idx = len(weeks) - 1
			byWeek[entry.Week] = idx
		}
		weeks[idx].Entries = append(weeks[idx].Entries, rankingEntry{
			ShowID:             entry.ShowID,
			Rank:               entry.Rank,
			RankChange:         entry.RankChange,
			Downloads:          entry.Downloads,
			DownloadsChangePct: entry.DownloadsChangePct,
			Title:              e.title(entry.ShowID),
		})
	}

	if weeks == nil {
		weeks = []weekRanking{}
	}

	if err := e.writeJSON(rankingsFile, weeks); err != nil {
		return err
	}

	log.Info().Int("weeks", len(weeks)).Msg("export: wrote weekly rankings")
	return nil
}

// Diagnostics collects everything the run could not attribute, for threshold
// and override tuning.
type Diagnostics struct {
	Unmatched []domain.Unmatched

	// LostDownloads is the summed increments per unmatched infohash: what the
	// series would have gained had the torrent matched.
	LostDownloads map[string]int

	MethodCounts    map[domain.MatchMethod]int
	RejectionCounts map[string]int
}

type unmatchedRow struct {
	Infohash      string  `json:"infohash"`
	Title         string  `json:"title"`
	Reason        string  `json:"reason"`
	BestScore     float64 `json:"best_score"`
	BestShowID    int     `json:"best_show_id"`
	BestTitle     string  `json:"best_title"`
	LostDownloads int     `json:"estimated_lost_downloads"`
}

type diagnosticsReport struct {
	MatchMethods     map[string]int `json:"match_methods"`
	FilterRejections map[string]int `json:"filter_rejections"`
	Unmatched        []unmatchedRow `json:"unmatched"`
}

// WriteDiagnostics writes diagnostics.json. Unmatched torrents are sorted by
// estimated lost downloads descending so the most impactful gaps come first.
func (e *Exporter) WriteDiagnostics(d Diagnostics) error {
	rows := make([]unmatchedRow, 0, len(d.Unmatched))
	for _, u := range d.Unmatched {
		rows = append(rows, unmatchedRow{
			Infohash:      u.Infohash,
			Title:         u.Title,
			Reason:        u.Reason,
			BestScore:     u.BestScore,
			BestShowID:    u.BestShow,
			BestTitle:     u.BestTitle,
			LostDownloads: d.LostDownloads[u.Infohash],
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].LostDownloads != rows[j].LostDownloads {
			return rows[i].LostDownloads > rows[j].LostDownloads
		}
		return rows[i].Infohash < rows[j].Infohash
	})

	methods := make(map[string]int, len(d.MethodCounts))
	for method, count := range d.MethodCounts {
		methods[string(method)] = count
	}
	rejections := d.RejectionCounts
	if rejections == nil {
		rejections = map[string]int{}
	}

	report := diagnosticsReport{
		MatchMethods:     methods,
		FilterRejections: rejections,
		Unmatched:        rows,
	}

	if err := e.writeJSON(diagnosticsFile, report); err != nil {
		return err
	}

	log.Info().Int("unmatched", len(rows)).Msg("export: wrote diagnostics")
	return nil
}

// writeJSON marshals v into dir/name via a temp file in the same directory,
// renaming over the target only after a successful write.
func (e *Exporter) writeJSON(name string, v any) error {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return errors.Wrapf(err, "create output directory %q", e.dir)
	}

	tmp, err := os.CreateTemp(e.dir, name+".tmp-*")
	if err != nil {
		return errors.Wrapf(err, "create temp file for %q", name)
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return errors.Wrapf(err, "encode %q", name)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "close temp file for %q", name)
	}

	target := filepath.Join(e.dir, name)
	if err := os.Rename(tmp.Name(), target); err != nil {
		return errors.Wrapf(err, "rename %q into place", name)
	}
	return nil
}

func (e *Exporter) title(showID int) string {
	if show, ok := e.index.Show(showID); ok {
		return show.DisplayTitle()
	}
	return ""
}
