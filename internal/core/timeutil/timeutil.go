// Package timeutil provides wall-clock time string arithmetic for the
// weekly schedule. All functions are pure; malformed input degrades to
// zero values and is logged, never returned as an error.
package timeutil

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const minutesPerDay = 24 * 60

// ToMinutes parses an "HH:MM" string into minutes since midnight.
// Malformed input logs a warning and returns 0.
func ToMinutes(s string) int {
	hh, mm, ok := splitClock(s)
	if !ok {
		log.Warn().Str("cmp", "timeutil").Str("value", s).Msg("malformed time string")
		return 0
	}
	return hh*60 + mm
}

// ParseClock parses an "HH:MM" string into minutes since midnight and
// reports whether the input was well formed. Unlike ToMinutes, callers
// can distinguish a genuine midnight from garbage input, and unpadded
// hours ("9:30") are accepted.
func ParseClock(s string) (int, bool) {
	hh, mm, ok := splitClock(s)
	if !ok {
		return 0, false
	}
	return hh*60 + mm, true
}

// FromMinutes renders minutes-since-midnight as a zero-padded "HH:MM"
// string. Negative input clamps to "00:00".
func FromMinutes(m int) string {
	if m < 0 {
		m = 0
	}
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// Span returns the number of minutes between two "HH:MM" strings. When
// end sorts before start the interval is treated as crossing midnight.
func Span(start, end string) int {
	s := ToMinutes(start)
	e := ToMinutes(end)
	if e < s {
		return minutesPerDay - s + e
	}
	return e - s
}

// FormatDuration renders a second count for display. Compact form is
// "1h 30m", verbose form is "1 hour 30 minutes". Zero or negative input
// yields "0m" / "0 minutes".
func FormatDuration(seconds int, compact bool) string {
	if seconds <= 0 {
		if compact {
			return "0m"
		}
		return "0 minutes"
	}

	hours := seconds / 3600
	minutes := (seconds % 3600) / 60

	if compact {
		switch {
		case hours > 0 && minutes > 0:
			return fmt.Sprintf("%dh %dm", hours, minutes)
		case hours > 0:
			return fmt.Sprintf("%dh", hours)
		default:
			return fmt.Sprintf("%dm", minutes)
		}
	}

	var parts []string
	if hours > 0 {
		parts = append(parts, plural(hours, "hour"))
	}
	if minutes > 0 || hours == 0 {
		parts = append(parts, plural(minutes, "minute"))
	}
	return strings.Join(parts, " ")
}

// InPast reports whether the given date ("YYYY-MM-DD") and time of day
// ("HH:MM") lie before now. Malformed dates are never in the past.
func InPast(date, hhmm string, now time.Time) bool {
	at, ok := onDate(date, hhmm, now.Location())
	if !ok {
		return false
	}
	return at.Before(now)
}

// WindowActive reports whether now falls inside the [start, end) window
// on the given date. Dates other than today are never active.
func WindowActive(date, start, end string, now time.Time) bool {
	if date != now.Format("2006-01-02") {
		return false
	}
	minute := now.Hour()*60 + now.Minute()
	return minute >= ToMinutes(start) && minute < ToMinutes(end)
}

// onDate combines a calendar date with a time of day in the given location.
func onDate(date, hhmm string, loc *time.Location) (time.Time, bool) {
	d, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		log.Warn().Str("cmp", "timeutil").Str("value", date).Msg("malformed date string")
		return time.Time{}, false
	}
	m := ToMinutes(hhmm)
	return d.Add(time.Duration(m) * time.Minute), true
}

func splitClock(s string) (hh, mm int, ok bool) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, false
	}
	hh, err := strconv.Atoi(parts[0])
	if err != nil || hh < 0 || hh > 23 {
		return 0, 0, false
	}
	mm, err = strconv.Atoi(parts[1])
	if err != nil || mm < 0 || mm > 59 {
		return 0, 0, false
	}
	return hh, mm, true
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
