// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/autobrr/anistats/internal/domain"
)

// ListTorrents returns every torrent row, ordered by infohash. Rows with an
// unparseable pubdate are skipped and logged rather than failing the run.
func (db *DB) ListTorrents(ctx context.Context) ([]domain.Torrent, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT infohash, filename, pubdate, trusted, remake, status, title, episode, episodes, season
		FROM torrents
		ORDER BY infohash`)
	if err != nil {
		return nil, fmt.Errorf("query torrents: %w", err)
	}
	defer rows.Close()

	var torrents []domain.Torrent
	var skipped int

	for rows.Next() {
		var (
			t        domain.Torrent
			pubdate  string
			trusted  int
			remake   int
			title    sql.NullString
			episode  sql.NullFloat64
			episodes sql.NullString
			season   sql.NullInt64
		)
		if err := rows.Scan(&t.Infohash, &t.Filename, &pubdate, &trusted, &remake, &t.Status,
			&title, &episode, &episodes, &season); err != nil {
			return nil, fmt.Errorf("scan torrent row: %w", err)
		}

		t.PubDate, err = parseTime(pubdate)
		if err != nil {
			log.Warn().Str("infohash", t.Infohash).Str("pubdate", pubdate).Msg("database: skipping torrent with bad pubdate")
			skipped++
			continue
		}

		t.Trusted = trusted != 0
		t.Remake = remake != 0
		if title.Valid {
			t.Title = &title.String
		}
		if episode.Valid {
			t.Episode = &episode.Float64
		}
		if season.Valid {
			s := int(season.Int64)
			t.Season = &s
		}
		if episodes.Valid && episodes.String != "" {
			if err := json.Unmarshal([]byte(episodes.String), &t.Episodes); err != nil {
				log.Warn().Str("infohash", t.Infohash).Str("episodes", episodes.String).Msg("database: ignoring bad episodes list")
			}
		}

		torrents = append(torrents, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate torrents: %w", err)
	}

	log.Info().Int("torrents", len(torrents)).Int("skipped", skipped).Msg("database: loaded torrents")
	return torrents, nil
}
