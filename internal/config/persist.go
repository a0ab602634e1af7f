// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const defaultConfigTemplate = `# config.toml - Auto-generated on first run

# Crawler SQLite database (read-only input)
# Default: "anistats.db" (next to this file)
databasePath = "anistats.db"

# Directory receiving the exported JSON artifacts
# Default: "output" (next to this file)
outputDir = "output"

# Matching overrides file (manual overrides, episode ranges, title corrections)
# Optional
#overridesPath = "overrides.toml"

# Catalog GraphQL endpoint
catalogUrl = "https://graphql.anilist.co"

# Seasons to track. Season is one of WINTER, SPRING, SUMMER, FALL.
[[seasons]]
name = "Fall 2025"
season = "FALL"
year = 2025

# Only count torrents published on or after this UTC date (YYYY-MM-DD)
# Optional
#trackingWindowStart = "2025-09-29"

# Minimum accepted title-similarity score (1-100)
# Default: 85
#fuzzyThreshold = 85

# Score bonus when the parsed season matches the catalog entry
# Default: 10
#seasonBonus = 10

# Weeks a finished show stays ranked past its last air week
# Default: 4
#postAiringBufferWeeks = 4

# Treatment of decreasing download counters: "clamp" or "rebaseline"
# Default: "clamp"
#resetPolicy = "clamp"

# Drop fraction (0-1) treated as a counter reset under "rebaseline"
# Default: 0.5
#rebaselineDropPct = 0.5

# Matching worker pool size (0 = number of CPUs)
# Default: 0
#matchWorkers = 0

# Log file path
# If not defined, logs to stdout
# Optional
#logPath = "log/anistats.log"

# Maximum log file size in megabytes before rotation
# Default: 50
#logMaxSize = 50

# Number of rotated log files to retain (0 keeps all)
# Default: 3
#logMaxBackups = 3

# Log level
# Default: "INFO"
# Options: "ERROR", "DEBUG", "INFO", "WARN", "TRACE"
logLevel = "INFO"
`

func (c *AppConfig) writeDefaultConfig(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultConfigTemplate), 0o644); err != nil {
		return fmt.Errorf("write default config %s: %w", path, err)
	}
	return nil
}
