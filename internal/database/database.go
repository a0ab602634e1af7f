// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package database reads the crawler's SQLite database: the torrents table
// and their download-counter snapshots. The engine never writes to it.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

const (
	busyTimeoutMillis = 5000
	setupTimeout      = 10 * time.Second
)

type DB struct {
	conn *sql.DB
}

// Open opens the crawler database at path. The connection is put into
// query-only mode since the engine treats the crawler's data as immutable
// input; the crawler may still be appending to it concurrently.
func Open(path string) (*DB, error) {
	log.Info().Msgf("database: opening %s", path)

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database at %s: %w", path, err)
	}

	// A single connection is enough for sequential batch reads and keeps
	// snapshot iteration consistent.
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), setupTimeout)
	defer cancel()

	pragmas := []string{
		fmt.Sprintf("PRAGMA busy_timeout = %d", busyTimeoutMillis),
		"PRAGMA query_only = ON",
	}
	for _, pragma := range pragmas {
		if _, err := conn.ExecContext(ctx, pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, err)
		}
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping database at %s: %w", path, err)
	}

	return &DB{conn: conn}, nil
}

// Conn exposes the underlying handle, mainly for test fixtures.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

func (db *DB) Close() error {
	log.Debug().Msg("database: closing")
	return db.conn.Close()
}

// parseTime accepts the timestamp formats the crawler has written over time.
func parseTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
