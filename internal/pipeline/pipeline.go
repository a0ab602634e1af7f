// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package pipeline orchestrates one batch run: load crawler data, fetch the
// catalog, match, aggregate and export. A run is a pure function of its
// inputs; re-running over unchanged inputs reproduces identical artifacts.
package pipeline

import (
	"context"
	"runtime"
	"sort"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/autobrr/anistats/internal/catalog"
	"github.com/autobrr/anistats/internal/database"
	"github.com/autobrr/anistats/internal/domain"
	"github.com/autobrr/anistats/internal/export"
	"github.com/autobrr/anistats/internal/matching"
	"github.com/autobrr/anistats/internal/stats"
	"github.com/autobrr/anistats/internal/titles"
)

// Pipeline wires the engine components together for a single run.
type Pipeline struct {
	cfg       *domain.Config
	overrides domain.Overrides
	dbPath    string
	outputDir string
}

func New(cfg *domain.Config, overrides domain.Overrides, dbPath, outputDir string) *Pipeline {
	return &Pipeline{cfg: cfg, overrides: overrides, dbPath: dbPath, outputDir: outputDir}
}

// Result summarizes a completed run.
type Result struct {
	Torrents  int
	Matched   int
	Unmatched int
	Rejected  int
	Anomalies int
	Shows     int
}

// Run executes the full batch: load -> filter -> match -> deltas ->
// aggregate -> rank -> export. The catalog fetch is the only network I/O and
// happens up front; its failure aborts the run.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	log.Info().Msg("pipeline: starting run")

	shows, err := catalog.NewClient(p.cfg.CatalogURL).FetchSeasons(ctx, p.cfg.Seasons)
	if err != nil {
		return nil, errors.Wrap(err, "fetch catalog")
	}
	index := catalog.NewIndex(shows)
	log.Info().Int("shows", index.Len()).Msg("pipeline: catalog loaded")

	db, err := database.Open(p.dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "open crawler database")
	}
	defer db.Close()

	torrents, err := db.ListTorrents(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load torrents")
	}
	snapshots, err := db.ListSnapshots(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load snapshots")
	}

	candidates, rejections := p.filter(torrents)

	matches, unmatched, err := p.match(ctx, index, candidates)
	if err != nil {
		return nil, errors.Wrap(err, "match torrents")
	}
	log.Info().
		Int("matched", len(matches)).
		Int("unmatched", len(unmatched)).
		Msg("pipeline: matching complete")

	increments, anomalies := p.deltas(snapshots)

	pubdates := make(map[string]time.Time, len(torrents))
	for _, t := range torrents {
		pubdates[t.Infohash] = t.PubDate
	}

	series := stats.Aggregate(matches, pubdates, increments)

	ranker := stats.NewRanker(index, stats.RankerConfig{
		PostAiringBufferWeeks: p.cfg.PostAiringBufferWeeks,
	})
	rankings := ranker.Rank(matches, increments)

	if err := p.export(index, series, rankings, matches, unmatched, increments, rejections); err != nil {
		return nil, err
	}

	rejected := 0
	for _, n := range rejections {
		rejected += n
	}

	result := &Result{
		Torrents:  len(torrents),
		Matched:   len(matches),
		Unmatched: len(unmatched),
		Rejected:  rejected,
		Anomalies: anomalies,
		Shows:     index.Len(),
	}
	log.Info().
		Int("torrents", result.Torrents).
		Int("matched", result.Matched).
		Int("anomalies", result.Anomalies).
		Msg("pipeline: run complete")
	return result, nil
}

// filter builds match candidates from the raw torrent rows. Torrents the
// upstream parser gave up on get one more chance through the local release
// parser before being rejected.
func (p *Pipeline) filter(torrents []domain.Torrent) ([]matching.Candidate, map[string]int) {
	filter := matching.NewFilter(p.cfg.WindowStart())
	rejections := make(map[string]int)

	var candidates []matching.Candidate
	for i := range torrents {
		t := &torrents[i]

		if t.Status == domain.TorrentStatusParseFailed {
			p.reparse(t)
		}

		ok, reason := filter.Accept(t)
		if !ok {
			rejections[reason]++
			continue
		}

		season := 0
		if t.Season != nil {
			season = *t.Season
		}
		title := ""
		if t.Title != nil {
			title = *t.Title
		}
		candidates = append(candidates, matching.Candidate{
			Infohash: t.Infohash,
			RawTitle: title,
			Season:   season,
			Episode:  matching.EpisodeNumber(t),
		})
	}

	log.Info().
		Int("candidates", len(candidates)).
		Interface("rejections", rejections).
		Msg("pipeline: filtered torrents")
	return candidates, rejections
}

// reparse runs the local release parser over a torrent the crawler failed to
// parse, promoting it to active when it recovers a usable title and episode.
func (p *Pipeline) reparse(t *domain.Torrent) {
	parsed := titles.Parse(t.Filename)
	if parsed.Title == "" || parsed.Episode == 0 {
		return
	}

	t.Status = domain.TorrentStatusActive
	t.Title = &parsed.Title
	ep := float64(parsed.Episode)
	t.Episode = &ep
	if parsed.Season != 0 {
		season := parsed.Season
		t.Season = &season
	}
	log.Debug().Str("infohash", t.Infohash).Str("title", parsed.Title).Msg("pipeline: recovered release metadata")
}

// match fans candidates out over a worker pool. Workers write to per-worker
// slices; results are merged and sorted afterwards so the outcome does not
// depend on scheduling.
func (p *Pipeline) match(ctx context.Context, index *catalog.Index, candidates []matching.Candidate) ([]domain.Match, []domain.Unmatched, error) {
	matcher := matching.NewMatcher(index, matching.Config{
		Threshold:   p.cfg.FuzzyThreshold,
		SeasonBonus: p.cfg.SeasonBonus,
		Overrides:   p.overrides,
	})

	workers := p.cfg.MatchWorkers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(candidates) && len(candidates) > 0 {
		workers = len(candidates)
	}

	matchesPer := make([][]domain.Match, workers)
	unmatchedPer := make([][]domain.Unmatched, workers)

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			for i := w; i < len(candidates); i += workers {
				if err := ctx.Err(); err != nil {
					return err
				}
				match, miss := matcher.Match(candidates[i])
				if match != nil {
					matchesPer[w] = append(matchesPer[w], *match)
				} else {
					unmatchedPer[w] = append(unmatchedPer[w], *miss)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var matches []domain.Match
	var unmatched []domain.Unmatched
	for w := 0; w < workers; w++ {
		matches = append(matches, matchesPer[w]...)
		unmatched = append(unmatched, unmatchedPer[w]...)
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Infohash < matches[j].Infohash })
	sort.Slice(unmatched, func(i, j int) bool { return unmatched[i].Infohash < unmatched[j].Infohash })

	return matches, unmatched, nil
}

func (p *Pipeline) deltas(snapshots map[string][]domain.Snapshot) (map[string][]stats.Increment, int) {
	calc := stats.NewDeltaCalculator(stats.DeltaConfig{
		ResetPolicy:       p.cfg.ResetPolicy,
		RebaselineDropPct: p.cfg.RebaselineDropPct,
	})

	increments := make(map[string][]stats.Increment, len(snapshots))
	anomalies := 0
	for infohash, snaps := range snapshots {
		incs, n := calc.Deltas(snaps)
		anomalies += n
		if len(incs) > 0 {
			increments[infohash] = incs
		}
	}

	if anomalies > 0 {
		log.Warn().Int("anomalies", anomalies).Msg("pipeline: decreasing download counters observed")
	}
	return increments, anomalies
}

func (p *Pipeline) export(
	index *catalog.Index,
	series []stats.SeriesRow,
	rankings []stats.RankEntry,
	matches []domain.Match,
	unmatched []domain.Unmatched,
	increments map[string][]stats.Increment,
	rejections map[string]int,
) error {
	exporter := export.NewExporter(p.outputDir, index)

	if err := exporter.WriteEpisodes(series); err != nil {
		return errors.Wrap(err, "export episode series")
	}
	if err := exporter.WriteRankings(rankings); err != nil {
		return errors.Wrap(err, "export rankings")
	}

	lost := make(map[string]int, len(unmatched))
	for _, u := range unmatched {
		total := 0
		for _, inc := range increments[u.Infohash] {
			total += inc.Value
		}
		lost[u.Infohash] = total
	}
	methods := make(map[domain.MatchMethod]int)
	for _, m := range matches {
		methods[m.Method]++
	}

	if err := exporter.WriteDiagnostics(export.Diagnostics{
		Unmatched:       unmatched,
		LostDownloads:   lost,
		MethodCounts:    methods,
		RejectionCounts: rejections,
	}); err != nil {
		return errors.Wrap(err, "export diagnostics")
	}
	return nil
}
