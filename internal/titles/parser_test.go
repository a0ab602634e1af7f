// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package titles

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSceneRelease(t *testing.T) {
	parsed := Parse("Frieren.Beyond.Journeys.End.S01E05.1080p.WEB.x264-GROUP")

	assert.Equal(t, 1, parsed.Season)
	assert.Equal(t, 5, parsed.Episode)
	assert.NotEmpty(t, parsed.Title)
}

func TestParseUnrecognizable(t *testing.T) {
	parsed := Parse("")

	assert.Empty(t, parsed.Title)
	assert.Zero(t, parsed.Episode)
	assert.Zero(t, parsed.Season)
}
