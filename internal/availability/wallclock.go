// Package availability implements the timezone-aware interval algebra used
// to compute bookable slots: weekly recurring rules are expanded into
// absolute intervals over a date window, busy intervals are subtracted, and
// the remaining windows are cut into fixed-duration candidate slots.
//
// Everything in this package is pure. All inputs are passed by value, all
// results are freshly allocated, and no function does I/O, so callers may
// invoke it concurrently without coordination.
package availability

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

var (
	// ErrInvalidHourMinute is returned for strings that are not a
	// zero-padded 24-hour "HH:MM" time.
	ErrInvalidHourMinute = errors.New("invalid HH:MM time")
	// ErrClockOutOfRange is returned when a time of day falls outside
	// [00:00, 24:00). It is distinct from ErrInvalidHourMinute: the value is
	// well-formed but names an impossible clock reading.
	ErrClockOutOfRange = errors.New("time of day out of range")
)

var hourMinuteRE = regexp.MustCompile(`^([01][0-9]|2[0-3]):([0-5][0-9])$`)

// IsValidHourMinute reports whether s is a zero-padded 24-hour "HH:MM" time.
func IsValidHourMinute(s string) bool {
	return hourMinuteRE.MatchString(s)
}

// ParseHourMinute converts a "HH:MM" string to the elapsed time since local
// midnight. It never panics; malformed input yields ErrInvalidHourMinute.
func ParseHourMinute(s string) (time.Duration, error) {
	m := hourMinuteRE.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidHourMinute, s)
	}
	h := time.Duration(digits2(m[1]))
	min := time.Duration(digits2(m[2]))
	return h*time.Hour + min*time.Minute, nil
}

// FormatHourMinute renders a time since local midnight as "HH:MM".
// Values outside [0, 24h) yield ErrClockOutOfRange.
func FormatHourMinute(d time.Duration) (string, error) {
	if d < 0 || d >= 24*time.Hour {
		return "", fmt.Errorf("%w: %s", ErrClockOutOfRange, d)
	}
	h := int(d / time.Hour)
	min := int(d % time.Hour / time.Minute)
	return fmt.Sprintf("%02d:%02d", h, min), nil
}

// digits2 converts a two-digit ASCII string already vetted by the regexp.
func digits2(s string) int {
	return int(s[0]-'0')*10 + int(s[1]-'0')
}
