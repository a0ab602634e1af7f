// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"github.com/spf13/cobra"

	"github.com/autobrr/anistats/internal/buildinfo"
	"github.com/autobrr/anistats/internal/catalog"
	"github.com/autobrr/anistats/internal/config"
	"github.com/autobrr/anistats/internal/logger"
)

func RunCatalogCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Fetch and print the configured season catalog",
		Long: `Catalog fetches the configured seasons and prints each show's id, title
variants and detected season ordinal. Useful when writing manual overrides:
the printed normalized variants are exactly what matching compares against.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.New(configPath, buildinfo.Version)
			if err != nil {
				return err
			}

			logger.Init(cfg.Config)

			shows, err := catalog.NewClient(cfg.Config.CatalogURL).FetchSeasons(cmd.Context(), cfg.Config.Seasons)
			if err != nil {
				return err
			}
			index := catalog.NewIndex(shows)

			for _, id := range index.IDs() {
				show, _ := index.Show(id)
				cmd.Printf("%d  %s (%s)\n", id, show.DisplayTitle(), show.Status)
				if ordinal := index.SeasonOrdinal(id); ordinal > 0 {
					cmd.Printf("    season ordinal: %d\n", ordinal)
				}
				for _, variant := range index.Variants(id) {
					cmd.Printf("    %s\n", variant)
				}
			}
			cmd.Printf("%d shows\n", index.Len())
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to config file or directory")

	return cmd
}
