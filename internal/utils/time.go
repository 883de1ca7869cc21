package utils

import (
	"fmt"
	"strings"
	"time"
)

const (
	layoutDate     = "2006-01-02"
	layoutClock    = "15:04"
	layoutDateTime = "2006-01-02 15:04:05"
)

// NowUTC returns current time in UTC.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// ParseDate parses YYYY-MM-DD in local timezone.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(layoutDate, strings.TrimSpace(s), time.Local)
}

// ParseClock validates an HH:MM string and returns it normalized.
func ParseClock(s string) (string, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse(layoutClock, s)
	if err != nil {
		return "", fmt.Errorf("invalid time %q, want HH:MM", s)
	}
	return t.Format(layoutClock), nil
}

// CombineDateClock builds a local timestamp out of a trip's date and HH:MM.
func CombineDateClock(date, clock string) (time.Time, error) {
	return time.ParseInLocation(layoutDate+" "+layoutClock,
		strings.TrimSpace(date)+" "+strings.TrimSpace(clock), time.Local)
}

// MinutesSince returns whole wall-clock minutes elapsed from t to now.
func MinutesSince(t, now time.Time) int {
	return int(now.Sub(t).Minutes())
}

// FormatDateTime formats time to "YYYY-MM-DD HH:MM:SS" in local timezone.
func FormatDateTime(t time.Time) string {
	return t.In(time.Local).Format(layoutDateTime)
}
