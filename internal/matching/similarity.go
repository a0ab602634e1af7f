// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package matching

import (
	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/autobrr/anistats/pkg/stringutils"
)

// Similarity scores two normalized titles on a 0-100 scale using Levenshtein
// distance over token-sorted keys, so word order never affects the score.
// Character-identical normalized titles always score exactly 100.
func Similarity(a, b string) float64 {
	keyA := stringutils.TokenSortKey(a)
	keyB := stringutils.TokenSortKey(b)

	if keyA == keyB {
		if keyA == "" {
			return 0
		}
		return 100
	}

	longest := len([]rune(keyA))
	if l := len([]rune(keyB)); l > longest {
		longest = l
	}

	distance := fuzzy.LevenshteinDistance(keyA, keyB)
	return 100 * (1 - float64(distance)/float64(longest))
}
