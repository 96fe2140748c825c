// Package textutil shapes article text for list cards.
package textutil

import (
	"fmt"
	"strings"
	"time"
)

// DefaultMaxWords is the card description budget.
const DefaultMaxWords = 200

// TruncateWords cuts text to maxWords words and appends "..." when
// anything was cut. Text at or under the budget is returned unchanged.
func TruncateWords(text string, maxWords int) string {
	if text == "" {
		return ""
	}

	words := strings.Fields(text)
	if len(words) <= maxWords {
		return text
	}

	return strings.Join(words[:maxWords], " ") + "..."
}

// RelativeTime renders how long ago t was, relative to now: "Just now"
// under an hour, hours under a day, days under a week, then a calendar
// date.
func RelativeTime(t, now time.Time) string {
	diff := now.Sub(t)
	hours := int(diff.Hours())
	days := int(diff.Hours() / 24)

	switch {
	case hours < 1:
		return "Just now"
	case hours < 24:
		return fmt.Sprintf("%d %s ago", hours, plural("hour", hours))
	case days < 7:
		return fmt.Sprintf("%d %s ago", days, plural("day", days))
	default:
		return t.Format("Jan 2, 2006")
	}
}

func plural(unit string, n int) string {
	if n == 1 {
		return unit
	}
	return unit + "s"
}
