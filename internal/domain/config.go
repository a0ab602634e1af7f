// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package domain

import (
	"fmt"
	"strings"
	"time"
)

// Delta reset policies (see DeltaConfig.ResetPolicy).
const (
	ResetPolicyClamp      = "clamp"
	ResetPolicyRebaseline = "rebaseline"
)

// SeasonConfig identifies one catalog season to track.
type SeasonConfig struct {
	Name   string `toml:"name" mapstructure:"name"`
	Season string `toml:"season" mapstructure:"season"` // WINTER, SPRING, SUMMER, FALL
	Year   int    `toml:"year" mapstructure:"year"`
}

// Config represents the application configuration.
type Config struct {
	Version string

	LogLevel      string `toml:"logLevel" mapstructure:"logLevel"`
	LogPath       string `toml:"logPath" mapstructure:"logPath"`
	LogMaxSize    int    `toml:"logMaxSize" mapstructure:"logMaxSize"`
	LogMaxBackups int    `toml:"logMaxBackups" mapstructure:"logMaxBackups"`

	// DatabasePath points at the crawler-produced SQLite database. The engine
	// opens it read-only.
	DatabasePath string `toml:"databasePath" mapstructure:"databasePath"`

	// OutputDir receives the exported artifacts.
	OutputDir string `toml:"outputDir" mapstructure:"outputDir"`

	// OverridesPath is an optional TOML file with manual overrides,
	// episode-range overrides and title corrections.
	OverridesPath string `toml:"overridesPath" mapstructure:"overridesPath"`

	CatalogURL string         `toml:"catalogUrl" mapstructure:"catalogUrl"`
	Seasons    []SeasonConfig `toml:"seasons" mapstructure:"seasons"`

	// TrackingWindowStart (YYYY-MM-DD, UTC) excludes torrents published before
	// the tracking window.
	TrackingWindowStart string `toml:"trackingWindowStart" mapstructure:"trackingWindowStart"`

	// FuzzyThreshold is the minimum accepted similarity score (0-100).
	FuzzyThreshold int `toml:"fuzzyThreshold" mapstructure:"fuzzyThreshold"`

	// SeasonBonus is added to the similarity score when the torrent's parsed
	// season matches the catalog entry's season ordinal.
	SeasonBonus int `toml:"seasonBonus" mapstructure:"seasonBonus"`

	// PostAiringBufferWeeks keeps a finished show in the weekly rankings for
	// this many weeks past its last air week before dropping it.
	PostAiringBufferWeeks int `toml:"postAiringBufferWeeks" mapstructure:"postAiringBufferWeeks"`

	// ResetPolicy controls how decreasing download counters are treated:
	// "clamp" ignores the drop, "rebaseline" treats a large drop as a counter
	// reset and keeps crediting growth from the new baseline.
	ResetPolicy       string  `toml:"resetPolicy" mapstructure:"resetPolicy"`
	RebaselineDropPct float64 `toml:"rebaselineDropPct" mapstructure:"rebaselineDropPct"`

	// MatchWorkers sizes the matching worker pool. 0 selects GOMAXPROCS.
	MatchWorkers int `toml:"matchWorkers" mapstructure:"matchWorkers"`
}

// Defaults returns the configuration written on first run.
func Defaults() Config {
	return Config{
		LogLevel:              "INFO",
		LogMaxSize:            50,
		LogMaxBackups:         3,
		DatabasePath:          "anistats.db",
		OutputDir:             "output",
		CatalogURL:            "https://graphql.anilist.co",
		FuzzyThreshold:        85,
		SeasonBonus:           10,
		PostAiringBufferWeeks: 4,
		ResetPolicy:           ResetPolicyClamp,
		RebaselineDropPct:     0.5,
	}
}

// Validate checks the configuration for values the engine cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DatabasePath) == "" {
		return fmt.Errorf("databasePath is required")
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		return fmt.Errorf("outputDir is required")
	}
	if strings.TrimSpace(c.CatalogURL) == "" {
		return fmt.Errorf("catalogUrl is required")
	}
	if len(c.Seasons) == 0 {
		return fmt.Errorf("at least one tracking season is required")
	}
	for _, s := range c.Seasons {
		switch s.Season {
		case "WINTER", "SPRING", "SUMMER", "FALL":
		default:
			return fmt.Errorf("season %q: invalid season %q", s.Name, s.Season)
		}
		if s.Year < 2000 {
			return fmt.Errorf("season %q: invalid year %d", s.Name, s.Year)
		}
	}
	if c.FuzzyThreshold < 1 || c.FuzzyThreshold > 100 {
		return fmt.Errorf("fuzzyThreshold must be in 1..100, got %d", c.FuzzyThreshold)
	}
	if c.SeasonBonus < 0 {
		return fmt.Errorf("seasonBonus must not be negative")
	}
	if c.PostAiringBufferWeeks < 0 {
		return fmt.Errorf("postAiringBufferWeeks must not be negative")
	}
	switch c.ResetPolicy {
	case ResetPolicyClamp, ResetPolicyRebaseline:
	default:
		return fmt.Errorf("resetPolicy must be %q or %q, got %q", ResetPolicyClamp, ResetPolicyRebaseline, c.ResetPolicy)
	}
	if c.ResetPolicy == ResetPolicyRebaseline && (c.RebaselineDropPct <= 0 || c.RebaselineDropPct >= 1) {
		return fmt.Errorf("rebaselineDropPct must be in (0, 1), got %v", c.RebaselineDropPct)
	}
	if c.TrackingWindowStart != "" {
		if _, err := time.Parse("2006-01-02", c.TrackingWindowStart); err != nil {
			return fmt.Errorf("invalid trackingWindowStart %q: %w", c.TrackingWindowStart, err)
		}
	}
	return nil
}

// WindowStart parses TrackingWindowStart. The zero time means no lower bound.
func (c *Config) WindowStart() time.Time {
	if c.TrackingWindowStart == "" {
		return time.Time{}
	}
	t, err := time.Parse("2006-01-02", c.TrackingWindowStart)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
