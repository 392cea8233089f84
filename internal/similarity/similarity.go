// Package similarity provides the string comparison primitives used by
// duplicate detection. Every function is pure and returns an integer
// similarity percentage in the range 0-100 unless stated otherwise.
//
// Inputs are case-folded and trimmed internally, so callers pass raw values.
// An empty value on either side carries no information and scores 0.
package similarity

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/antzucaro/matchr"
)

// prepare folds case and trims surrounding whitespace
func prepare(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Levenshtein returns the edit-distance similarity of a and b:
// 100 * (maxLen - distance) / maxLen, rounded.
func Levenshtein(a, b string) int {
	a, b = prepare(a), prepare(b)
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 100
	}

	maxLen := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > maxLen {
		maxLen = n
	}

	distance := levenshtein.ComputeDistance(a, b)
	return percent(float64(maxLen-distance) / float64(maxLen))
}

// JaroWinkler returns the Jaro-Winkler similarity of a and b. Common prefixes
// of up to four characters raise the score, which suits short personal names.
//
// Strings whose match window floor(max(len)/2)-1 is negative cannot be
// aligned and score 0.
func JaroWinkler(a, b string) int {
	a, b = prepare(a), prepare(b)
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 100
	}

	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	longest := la
	if lb > longest {
		longest = lb
	}
	if longest/2-1 < 0 {
		return 0
	}

	// matching is greedy left to right, fix the order so the result is symmetric
	if a > b {
		a, b = b, a
	}
	return percent(matchr.JaroWinkler(a, b, false))
}

func percent(ratio float64) int {
	if ratio <= 0 {
		return 0
	}
	if ratio >= 1 {
		return 100
	}
	return int(math.Round(ratio * 100))
}
