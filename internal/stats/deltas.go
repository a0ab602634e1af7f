// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package stats turns per-torrent counter snapshots into validated increments
// and folds them into per-episode series and weekly rankings. Everything here
// is a deterministic fold over sorted inputs; re-running over identical input
// yields identical output.
package stats

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/autobrr/anistats/internal/domain"
)

// Increment is one validated, non-negative download increment between two
// consecutive snapshots of a torrent.
type Increment struct {
	Infohash  string
	Timestamp time.Time
	Value     int
}

// DeltaConfig controls how decreasing absolute counters are treated.
type DeltaConfig struct {
	// ResetPolicy: domain.ResetPolicyClamp turns any decrease into a zero
	// increment; domain.ResetPolicyRebaseline treats a drop larger than
	// RebaselineDropPct of the previous value as a counter reset and credits
	// the new value as growth since the reset.
	ResetPolicy       string
	RebaselineDropPct float64
}

// DeltaCalculator converts absolute snapshot series into increments. The
// first snapshot of a torrent contributes nothing: there is no baseline to
// diff against.
type DeltaCalculator struct {
	cfg DeltaConfig
}

// NewDeltaCalculator creates a calculator with the given reset policy.
func NewDeltaCalculator(cfg DeltaConfig) *DeltaCalculator {
	if cfg.ResetPolicy == "" {
		cfg.ResetPolicy = domain.ResetPolicyClamp
	}
	return &DeltaCalculator{cfg: cfg}
}

// Deltas computes increments for one torrent's snapshots, which must be
// ordered by timestamp. The second return value counts decreasing raw deltas
// (tracker glitches, resets, swarm re-identification); a decrease never
// contributes a negative increment.
func (d *DeltaCalculator) Deltas(snapshots []domain.Snapshot) ([]Increment, int) {
	if len(snapshots) < 2 {
		return nil, 0
	}

	increments := make([]Increment, 0, len(snapshots)-1)
	anomalies := 0

	prev := snapshots[0].Downloads
	for _, snap := range snapshots[1:] {
		value := snap.Downloads - prev

		if value < 0 {
			anomalies++
			log.Debug().
				Str("infohash", snap.Infohash).
				Int("prev", prev).
				Int("curr", snap.Downloads).
				Msg("stats: decreasing download counter")

			if d.cfg.ResetPolicy == domain.ResetPolicyRebaseline &&
				float64(prev-snap.Downloads) > d.cfg.RebaselineDropPct*float64(prev) {
				// Counter restarted near zero; the new value is downloads
				// accumulated since the reset.
				value = snap.Downloads
			} else {
				value = 0
			}
		}

		increments = append(increments, Increment{
			Infohash:  snap.Infohash,
			Timestamp: snap.Timestamp.UTC(),
			Value:     value,
		})
		prev = snap.Downloads
	}

	return increments, anomalies
}
