// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package stringutils provides title normalization helpers shared by the
// catalog index and the match engine. Torrent titles and catalog titles must
// go through the same normalization so comparisons are meaningful.
package stringutils

import (
	"sort"
	"strings"
)

// Normalize canonicalizes a free-text title for comparison: lowercase, strip
// everything outside [a-z0-9 ], collapse runs of whitespace, trim. It is pure
// and total; any input yields a (possibly empty) key.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	lastSpace := true // leading whitespace is dropped
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastSpace = false
		default:
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		}
	}

	return strings.TrimRight(b.String(), " ")
}

// IsInformative reports whether a normalized title carries enough signal for
// fuzzy matching. Degenerate keys like "2" or "" score perfect against equally
// degenerate catalog synonyms, so they are excluded from scoring entirely.
func IsInformative(normalized string) bool {
	if len(normalized) < 3 {
		return false
	}
	for _, r := range normalized {
		if r >= 'a' && r <= 'z' {
			return true
		}
	}
	return false
}

// TokenSortKey splits a normalized title into tokens, sorts them and rejoins.
// Comparing token-sort keys makes similarity insensitive to word order, which
// release groups shuffle freely.
func TokenSortKey(normalized string) string {
	tokens := strings.Fields(normalized)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}
