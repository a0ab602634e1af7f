// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package database

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/autobrr/anistats/internal/domain"
)

// ListSnapshots returns every download-counter observation grouped by
// infohash, each group in ascending timestamp order.
func (db *DB) ListSnapshots(ctx context.Context) (map[string][]domain.Snapshot, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT infohash, timestamp, seeders, leechers, downloads
		FROM stats
		ORDER BY infohash, timestamp`)
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	defer rows.Close()

	snapshots := make(map[string][]domain.Snapshot)
	var total, skipped int

	for rows.Next() {
		var (
			s  domain.Snapshot
			ts string
		)
		if err := rows.Scan(&s.Infohash, &ts, &s.Seeders, &s.Leechers, &s.Downloads); err != nil {
			return nil, fmt.Errorf("scan stats row: %w", err)
		}

		s.Timestamp, err = parseTime(ts)
		if err != nil {
			log.Warn().Str("infohash", s.Infohash).Str("timestamp", ts).Msg("database: skipping snapshot with bad timestamp")
			skipped++
			continue
		}

		snapshots[s.Infohash] = append(snapshots[s.Infohash], s)
		total++
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stats: %w", err)
	}

	log.Info().Int("snapshots", total).Int("torrents", len(snapshots)).Int("skipped", skipped).Msg("database: loaded snapshots")
	return snapshots, nil
}
