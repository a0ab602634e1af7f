// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want func(t *testing.T, score float64)
	}{
		{
			name: "identical",
			a:    "sousou no frieren", b: "sousou no frieren",
			want: func(t *testing.T, score float64) { assert.Equal(t, 100.0, score) },
		},
		{
			name: "word_order_ignored",
			a:    "spy x family", b: "family x spy",
			want: func(t *testing.T, score float64) { assert.Equal(t, 100.0, score) },
		},
		{
			name: "close_titles_score_high",
			a:    "jigokuraku", b: "jigokuraku 2nd season",
			want: func(t *testing.T, score float64) {
				assert.Greater(t, score, 40.0)
				assert.Less(t, score, 100.0)
			},
		},
		{
			name: "unrelated_titles_score_low",
			a:    "sousou no frieren", b: "one piece",
			want: func(t *testing.T, score float64) { assert.Less(t, score, 40.0) },
		},
		{
			name: "both_empty",
			a:    "", b: "",
			want: func(t *testing.T, score float64) { assert.Equal(t, 0.0, score) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.want(t, Similarity(tt.a, tt.b))
		})
	}
}

func TestSimilaritySymmetric(t *testing.T) {
	pairs := [][2]string{
		{"kusuriya no hitorigoto", "kusuriya no hitorigoto 2nd season"},
		{"86 eighty six", "86"},
	}
	for _, p := range pairs {
		assert.Equal(t, Similarity(p[0], p[1]), Similarity(p[1], p[0]))
	}
}
