// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package testdb builds throwaway crawler databases for tests: the torrents
// and stats tables as the crawler writes them.
package testdb

import (
	"database/sql"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE torrents (
	infohash TEXT PRIMARY KEY,
	filename TEXT NOT NULL,
	pubdate TEXT NOT NULL,
	trusted INTEGER NOT NULL DEFAULT 0,
	remake INTEGER NOT NULL DEFAULT 0,
	status TEXT NOT NULL DEFAULT 'active',
	title TEXT,
	episode REAL,
	episodes TEXT,
	season INTEGER
);

CREATE TABLE stats (
	infohash TEXT NOT NULL,
	timestamp TEXT NOT NULL,
	seeders INTEGER NOT NULL DEFAULT 0,
	leechers INTEGER NOT NULL DEFAULT 0,
	downloads INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (infohash, timestamp)
);

CREATE INDEX idx_stats_infohash ON stats (infohash);
`

// Builder populates a crawler database file and hands out its path once the
// writing connection is closed.
type Builder struct {
	t    *testing.T
	path string
	conn *sql.DB
}

// New creates an empty crawler database under the test's temp directory.
func New(t *testing.T) *Builder {
	t.Helper()

	path := filepath.Join(t.TempDir(), "crawler.db")
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if _, err := conn.Exec(schema); err != nil {
		t.Fatalf("create crawler schema: %v", err)
	}

	b := &Builder{t: t, path: path, conn: conn}
	t.Cleanup(func() { conn.Close() })
	return b
}

// Torrent describes one torrents row. Zero-valued optional fields become
// SQL NULLs.
type Torrent struct {
	Infohash string
	Filename string
	PubDate  time.Time
	Trusted  bool
	Remake   bool
	Status   string
	Title    string
	Episode  float64
	Episodes []int
	Season   int
}

func (b *Builder) AddTorrent(tr Torrent) *Builder {
	b.t.Helper()

	if tr.Status == "" {
		tr.Status = "active"
	}

	var title, episodes any
	var episode, season any
	if tr.Title != "" {
		title = tr.Title
	}
	if tr.Episode != 0 {
		episode = tr.Episode
	}
	if tr.Season != 0 {
		season = tr.Season
	}
	if len(tr.Episodes) > 0 {
		data, err := json.Marshal(tr.Episodes)
		if err != nil {
			b.t.Fatalf("marshal episodes: %v", err)
		}
		episodes = string(data)
	}

	_, err := b.conn.Exec(`
		INSERT INTO torrents (infohash, filename, pubdate, trusted, remake, status, title, episode, episodes, season)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tr.Infohash, tr.Filename, tr.PubDate.UTC().Format(time.RFC3339),
		boolInt(tr.Trusted), boolInt(tr.Remake), tr.Status, title, episode, episodes, season)
	if err != nil {
		b.t.Fatalf("insert torrent %s: %v", tr.Infohash, err)
	}
	return b
}

func (b *Builder) AddSnapshot(infohash string, at time.Time, seeders, leechers, downloads int) *Builder {
	b.t.Helper()

	_, err := b.conn.Exec(`
		INSERT INTO stats (infohash, timestamp, seeders, leechers, downloads)
		VALUES (?, ?, ?, ?, ?)`,
		infohash, at.UTC().Format(time.RFC3339), seeders, leechers, downloads)
	if err != nil {
		b.t.Fatalf("insert snapshot %s@%s: %v", infohash, at, err)
	}
	return b
}

// Exec runs arbitrary SQL, for rows the typed helpers cannot express.
func (b *Builder) Exec(query string, args ...any) *Builder {
	b.t.Helper()

	if _, err := b.conn.Exec(query, args...); err != nil {
		b.t.Fatalf("exec %q: %v", query, err)
	}
	return b
}

// Path closes the writing connection and returns the database file path,
// ready to be opened by the engine.
func (b *Builder) Path() string {
	b.t.Helper()

	if err := b.conn.Close(); err != nil {
		b.t.Fatalf("close test database: %v", err)
	}
	return b.path
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
