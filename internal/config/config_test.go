// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalConfig = `
databasePath = "crawler.db"
outputDir = "out"
catalogUrl = "https://graphql.anilist.co"

[[seasons]]
name = "Fall 2025"
season = "FALL"
year = 2025
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNewAppliesDefaults(t *testing.T) {
	cfg, err := New(writeConfig(t, minimalConfig), "test")
	require.NoError(t, err)

	assert.Equal(t, "INFO", cfg.Config.LogLevel)
	assert.Equal(t, 85, cfg.Config.FuzzyThreshold)
	assert.Equal(t, 10, cfg.Config.SeasonBonus)
	assert.Equal(t, 4, cfg.Config.PostAiringBufferWeeks)
	assert.Equal(t, "clamp", cfg.Config.ResetPolicy)
	require.Len(t, cfg.Config.Seasons, 1)
	assert.Equal(t, "FALL", cfg.Config.Seasons[0].Season)
	assert.Equal(t, 2025, cfg.Config.Seasons[0].Year)
}

func TestNewResolvesRelativePaths(t *testing.T) {
	path := writeConfig(t, minimalConfig)
	cfg, err := New(path, "test")
	require.NoError(t, err)

	dir := filepath.Dir(path)
	assert.Equal(t, filepath.Join(dir, "crawler.db"), cfg.GetDatabasePath())
	assert.Equal(t, filepath.Join(dir, "out"), cfg.GetOutputDir())
}

func TestNewEnvOverridesConfigFile(t *testing.T) {
	t.Setenv("ANISTATS__DATABASE_PATH", "/env/crawler.db")
	t.Setenv("ANISTATS__FUZZY_THRESHOLD", "90")

	cfg, err := New(writeConfig(t, minimalConfig), "test")
	require.NoError(t, err)

	assert.Equal(t, "/env/crawler.db", cfg.GetDatabasePath())
	assert.Equal(t, 90, cfg.Config.FuzzyThreshold)
}

func TestNewWritesDefaultConfigOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg, err := New(path, "test")
	require.NoError(t, err)
	require.Len(t, cfg.Config.Seasons, 1)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "databasePath")
	assert.Contains(t, string(data), "[[seasons]]")
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "bad season",
			content: `
databasePath = "crawler.db"
outputDir = "out"
catalogUrl = "https://graphql.anilist.co"

[[seasons]]
name = "x"
season = "AUTUMN"
year = 2025
`,
		},
		{
			name:    "no seasons",
			content: `databasePath = "crawler.db"` + "\n" + `outputDir = "out"`,
		},
		{
			name: "bad reset policy",
			content: minimalConfig + `
resetPolicy = "ignore"
`,
		},
		{
			name: "bad tracking window",
			content: minimalConfig + `
trackingWindowStart = "29.09.2025"
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(writeConfig(t, tt.content), "test")
			assert.Error(t, err)
		})
	}
}

func TestLoadOverrides(t *testing.T) {
	dir := t.TempDir()
	overridesPath := filepath.Join(dir, "overrides.toml")
	require.NoError(t, os.WriteFile(overridesPath, []byte(`
[manual]
"kusuriya no hitorigoto" = 210

[corrections]
"oshi no" = "oshi no ko"

[[episode_range]]
title = "kusuriya no hitorigoto"
min_episode = 25
max_episode = 48
show_id = 211
`), 0o644))

	configPath := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(configPath, []byte(minimalConfig+`
overridesPath = "overrides.toml"
`), 0o644))

	cfg, err := New(configPath, "test")
	require.NoError(t, err)

	overrides, err := cfg.LoadOverrides()
	require.NoError(t, err)

	id, ok := overrides.ManualFor("kusuriya no hitorigoto")
	require.True(t, ok)
	assert.Equal(t, 210, id)

	assert.Equal(t, "oshi no ko", overrides.Correct("oshi no"))

	id, ok = overrides.RangeFor("kusuriya no hitorigoto", 30)
	require.True(t, ok)
	assert.Equal(t, 211, id)
}

func TestLoadOverridesMissingFileConfigured(t *testing.T) {
	cfg, err := New(writeConfig(t, minimalConfig+`
overridesPath = "nope.toml"
`), "test")
	require.NoError(t, err)

	_, err = cfg.LoadOverrides()
	assert.Error(t, err)
}

func TestLoadOverridesUnconfigured(t *testing.T) {
	cfg, err := New(writeConfig(t, minimalConfig), "test")
	require.NoError(t, err)

	overrides, err := cfg.LoadOverrides()
	require.NoError(t, err)
	assert.Empty(t, overrides.Manual)
	assert.Empty(t, overrides.EpisodeRanges)
}
