// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/autobrr/anistats/internal/buildinfo"
	"github.com/autobrr/anistats/internal/config"
	"github.com/autobrr/anistats/internal/logger"
	"github.com/autobrr/anistats/internal/pipeline"
)

func RunRunCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one full batch computation",
		Long: `Run loads the crawler database and the season catalog, matches torrents
to shows, rebuilds the per-episode download series and the weekly rankings
from scratch, and writes the JSON artifacts to the output directory.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.New(configPath, buildinfo.Version)
			if err != nil {
				return err
			}

			logger.Init(cfg.Config)
			log.Info().Msgf("anistats %s starting", buildinfo.Version)

			overrides, err := cfg.LoadOverrides()
			if err != nil {
				return err
			}

			p := pipeline.New(cfg.Config, overrides, cfg.GetDatabasePath(), cfg.GetOutputDir())
			result, err := p.Run(cmd.Context())
			if err != nil {
				return err
			}

			cmd.Printf("Run complete: %d torrents, %d matched, %d unmatched, %d rejected\n",
				result.Torrents, result.Matched, result.Unmatched, result.Rejected)
			cmd.Printf("Catalog: %d shows. Counter anomalies: %d\n", result.Shows, result.Anomalies)
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to config file or directory")

	return cmd
}
