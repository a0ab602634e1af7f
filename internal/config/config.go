// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package config loads the engine configuration from a TOML file, with
// environment-variable overrides, and the optional matching-overrides file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/autobrr/anistats/internal/domain"
)

// envBindings maps viper keys to their environment variables. Environment
// values take precedence over the config file.
var envBindings = map[string]string{
	"logLevel":              "ANISTATS__LOG_LEVEL",
	"logPath":               "ANISTATS__LOG_PATH",
	"logMaxSize":            "ANISTATS__LOG_MAX_SIZE",
	"logMaxBackups":         "ANISTATS__LOG_MAX_BACKUPS",
	"databasePath":          "ANISTATS__DATABASE_PATH",
	"outputDir":             "ANISTATS__OUTPUT_DIR",
	"overridesPath":         "ANISTATS__OVERRIDES_PATH",
	"catalogUrl":            "ANISTATS__CATALOG_URL",
	"trackingWindowStart":   "ANISTATS__TRACKING_WINDOW_START",
	"fuzzyThreshold":        "ANISTATS__FUZZY_THRESHOLD",
	"seasonBonus":           "ANISTATS__SEASON_BONUS",
	"postAiringBufferWeeks": "ANISTATS__POST_AIRING_BUFFER_WEEKS",
	"resetPolicy":           "ANISTATS__RESET_POLICY",
	"rebaselineDropPct":     "ANISTATS__REBASELINE_DROP_PCT",
	"matchWorkers":          "ANISTATS__MATCH_WORKERS",
}

// AppConfig wraps the loaded configuration together with the path it was
// loaded from, so relative paths inside it can be resolved against it.
type AppConfig struct {
	Config *domain.Config

	viper      *viper.Viper
	configPath string
}

// New loads the configuration. An empty configPath selects
// $XDG_CONFIG_HOME/anistats/config.toml (or the OS equivalent). A missing
// config file is created from the annotated default template.
func New(configPath string, version string) (*AppConfig, error) {
	c := &AppConfig{
		Config: &domain.Config{Version: version},
		viper:  viper.New(),
	}

	if err := c.load(configPath); err != nil {
		return nil, err
	}

	if err := c.Config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return c, nil
}

func (c *AppConfig) load(configPath string) error {
	c.viper.SetConfigType("toml")

	defaults := domain.Defaults()
	c.viper.SetDefault("logLevel", defaults.LogLevel)
	c.viper.SetDefault("logMaxSize", defaults.LogMaxSize)
	c.viper.SetDefault("logMaxBackups", defaults.LogMaxBackups)
	c.viper.SetDefault("databasePath", defaults.DatabasePath)
	c.viper.SetDefault("outputDir", defaults.OutputDir)
	c.viper.SetDefault("catalogUrl", defaults.CatalogURL)
	c.viper.SetDefault("fuzzyThreshold", defaults.FuzzyThreshold)
	c.viper.SetDefault("seasonBonus", defaults.SeasonBonus)
	c.viper.SetDefault("postAiringBufferWeeks", defaults.PostAiringBufferWeeks)
	c.viper.SetDefault("resetPolicy", defaults.ResetPolicy)
	c.viper.SetDefault("rebaselineDropPct", defaults.RebaselineDropPct)

	for key, env := range envBindings {
		if err := c.viper.BindEnv(key, env); err != nil {
			return fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	if configPath != "" {
		info, err := os.Stat(configPath)
		if err == nil && info.IsDir() {
			configPath = filepath.Join(configPath, "config.toml")
		}
	} else {
		configPath = filepath.Join(getDefaultConfigDir(), "config.toml")
	}
	c.configPath = configPath

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := c.writeDefaultConfig(configPath); err != nil {
			return err
		}
		log.Info().Msgf("config: wrote default configuration to %s", configPath)
	}

	c.viper.SetConfigFile(configPath)
	if err := c.viper.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", configPath, err)
	}

	if err := c.viper.Unmarshal(c.Config); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}

	return nil
}

// ConfigPath returns the path of the loaded config file.
func (c *AppConfig) ConfigPath() string {
	return c.configPath
}

// resolvePath resolves a possibly relative path against the config file's
// directory, matching how most deployments lay files out next to the config.
func (c *AppConfig) resolvePath(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(filepath.Dir(c.configPath), path)
}

// GetDatabasePath returns the crawler database path, resolved against the
// config file directory when relative.
func (c *AppConfig) GetDatabasePath() string {
	return c.resolvePath(c.Config.DatabasePath)
}

// GetOutputDir returns the export directory, resolved against the config
// file directory when relative.
func (c *AppConfig) GetOutputDir() string {
	return c.resolvePath(c.Config.OutputDir)
}

// LoadOverrides reads the matching-overrides TOML file. A configured but
// missing file is an error; no configured file yields empty overrides.
func (c *AppConfig) LoadOverrides() (domain.Overrides, error) {
	var overrides domain.Overrides
	path := c.resolvePath(c.Config.OverridesPath)
	if path == "" {
		return overrides, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return overrides, fmt.Errorf("read overrides %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &overrides); err != nil {
		return overrides, fmt.Errorf("parse overrides %s: %w", path, err)
	}

	log.Debug().
		Int("manual", len(overrides.Manual)).
		Int("episodeRanges", len(overrides.EpisodeRanges)).
		Int("corrections", len(overrides.Corrections)).
		Msgf("config: loaded overrides from %s", path)
	return overrides, nil
}

func getDefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		// Containers commonly mount the config volume directly at
		// XDG_CONFIG_HOME; use it as-is when it already holds a config.
		if _, err := os.Stat(filepath.Join(xdg, "config.toml")); err == nil {
			return xdg
		}
		if strings.Count(filepath.Clean(xdg), string(os.PathSeparator)) == 1 {
			return xdg
		}
		return filepath.Join(xdg, "anistats")
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(dir, "anistats")
}
