package availability

import (
	"errors"
	"fmt"
	"time"
)

// Weekday is the tag used in stored weekly rules ("SUN" through "SAT").
type Weekday string

const (
	Sunday    Weekday = "SUN"
	Monday    Weekday = "MON"
	Tuesday   Weekday = "TUE"
	Wednesday Weekday = "WED"
	Thursday  Weekday = "THU"
	Friday    Weekday = "FRI"
	Saturday  Weekday = "SAT"
)

// Indexed by time.Weekday (Sunday == 0).
var weekdays = [7]Weekday{Sunday, Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}

var ErrUnknownWeekday = errors.New("unknown weekday")

// ParseWeekday validates a weekday tag from client or stored data.
func ParseWeekday(s string) (Weekday, error) {
	d := Weekday(s)
	if !d.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownWeekday, s)
	}
	return d, nil
}

func (d Weekday) Valid() bool {
	for _, w := range weekdays {
		if d == w {
			return true
		}
	}
	return false
}

// weekdayOf maps the calendar weekday of t (in t's location) to its tag.
func weekdayOf(t time.Time) Weekday {
	return weekdays[int(t.Weekday())]
}
