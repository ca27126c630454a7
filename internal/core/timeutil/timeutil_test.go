package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestToMinutes(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int
	}{
		{"midnight", "00:00", 0},
		{"morning", "09:30", 570},
		{"end of day", "23:59", 1439},
		{"zero padded", "07:05", 425},
		{"malformed no colon", "0930", 0},
		{"malformed empty", "", 0},
		{"malformed letters", "ab:cd", 0},
		{"hour out of range", "25:00", 0},
		{"minute out of range", "10:75", 0},
		{"negative hour", "-1:30", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToMinutes(tt.in))
		})
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		want   int
		wantOK bool
	}{
		{"midnight", "00:00", 0, true},
		{"unpadded midnight", "0:00", 0, true},
		{"unpadded hour", "9:30", 570, true},
		{"end of day", "23:59", 1439, true},
		{"no colon", "0930", 0, false},
		{"empty", "", 0, false},
		{"hour out of range", "24:00", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseClock(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromMinutes(t *testing.T) {
	tests := []struct {
		name string
		in   int
		want string
	}{
		{"zero", 0, "00:00"},
		{"morning", 570, "09:30"},
		{"single digit parts", 425, "07:05"},
		{"end of day", 1439, "23:59"},
		{"negative clamps", -30, "00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FromMinutes(tt.in))
		})
	}
}

func TestRoundTrip(t *testing.T) {
	for _, s := range []string{"00:00", "00:01", "09:30", "12:00", "23:59"} {
		assert.Equal(t, s, FromMinutes(ToMinutes(s)))
	}
}

func TestSpan(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
		want       int
	}{
		{"work day", "09:00", "17:00", 480},
		{"same time", "10:00", "10:00", 0},
		{"one minute", "10:00", "10:01", 1},
		{"crosses midnight", "23:00", "01:00", 120},
		{"full wrap", "00:01", "00:00", 1439},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Span(tt.start, tt.end))
		})
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name    string
		seconds int
		compact bool
		want    string
	}{
		{"zero compact", 0, true, "0m"},
		{"zero verbose", 0, false, "0 minutes"},
		{"negative verbose", -60, false, "0 minutes"},
		{"minutes only compact", 1800, true, "30m"},
		{"hours and minutes compact", 5400, true, "1h 30m"},
		{"exact hours compact", 7200, true, "2h"},
		{"hours and minutes verbose", 5400, false, "1 hour 30 minutes"},
		{"plural hours verbose", 7800, false, "2 hours 10 minutes"},
		{"single minute verbose", 60, false, "1 minute"},
		{"sub-minute verbose", 30, false, "0 minutes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDuration(tt.seconds, tt.compact))
		})
	}
}

func TestInPast(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		date string
		hhmm string
		want bool
	}{
		{"earlier today", "2026-03-10", "09:00", true},
		{"later today", "2026-03-10", "15:00", false},
		{"yesterday", "2026-03-09", "23:00", true},
		{"tomorrow", "2026-03-11", "01:00", false},
		{"malformed date", "not-a-date", "09:00", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InPast(tt.date, tt.hhmm, now))
		})
	}
}

func TestWindowActive(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 30, 0, 0, time.UTC)

	tests := []struct {
		name       string
		date       string
		start, end string
		want       bool
	}{
		{"inside window", "2026-03-10", "12:00", "13:00", true},
		{"at start boundary", "2026-03-10", "12:30", "13:00", true},
		{"at end boundary", "2026-03-10", "12:00", "12:30", false},
		{"before window", "2026-03-10", "13:00", "14:00", false},
		{"wrong date", "2026-03-11", "12:00", "13:00", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WindowActive(tt.date, tt.start, tt.end, now))
		})
	}
}
