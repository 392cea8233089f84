// Package format renders match results for people: colors, labels, scores
// and relative timestamps.
package format

import (
	"fmt"
	"time"

	"github.com/fatih/color"

	"github.com/talentflow/dedupe/internal/match"
)

// ConfidenceColor returns the UI color name for a confidence tier
func ConfidenceColor(c match.Confidence) string {
	switch c {
	case match.ConfidenceHigh:
		return "red"
	case match.ConfidenceMedium:
		return "yellow"
	default:
		return "blue"
	}
}

// ConfidenceLabel returns the display label for a confidence tier
func ConfidenceLabel(c match.Confidence) string {
	switch c {
	case match.ConfidenceHigh:
		return "High Confidence"
	case match.ConfidenceMedium:
		return "Medium Confidence"
	default:
		return "Low Confidence"
	}
}

// FormatScore renders a 0-100 score as a percentage
func FormatScore(score int) string {
	return fmt.Sprintf("%d%%", score)
}

// FormatRelativeTime describes t relative to now ("3 hours ago"). Times
// more than 30 days back, or in the future, are shown as a date.
func FormatRelativeTime(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < 0:
		return t.Format("Jan 2, 2006")
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return plural(int(d/time.Minute), "minute")
	case d < 24*time.Hour:
		return plural(int(d/time.Hour), "hour")
	case d < 30*24*time.Hour:
		return plural(int(d/(24*time.Hour)), "day")
	}
	return t.Format("Jan 2, 2006")
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

var badgeColors = map[match.Confidence]*color.Color{
	match.ConfidenceHigh:   color.New(color.FgRed, color.Bold),
	match.ConfidenceMedium: color.New(color.FgYellow),
	match.ConfidenceLow:    color.New(color.FgBlue),
}

// ConfidenceBadge renders "[High Confidence 95%]" for a terminal, colored
// unless color output is disabled
func ConfidenceBadge(c match.Confidence, score int) string {
	text := fmt.Sprintf("[%s %s]", ConfidenceLabel(c), FormatScore(score))
	if col, ok := badgeColors[c]; ok {
		return col.Sprint(text)
	}
	return text
}
