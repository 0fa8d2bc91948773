package availability

import (
	"fmt"
	"time"
)

// localDateTimeLayout is the wall-clock form accepted by ToInstant:
// a date plus an "HH:MM" clock reading, no zone designator.
const localDateTimeLayout = "2006-01-02T15:04"

// ToInstant interprets localDateTime ("YYYY-MM-DDTHH:MM") as a wall-clock
// reading inside the named zone and returns the absolute instant.
func ToInstant(localDateTime, zone string) (time.Time, error) {
	loc, err := LoadZone(zone)
	if err != nil {
		return time.Time{}, err
	}
	naive, err := time.Parse(localDateTimeLayout, localDateTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidHourMinute, localDateTime)
	}
	return ZonedInstant(naive, loc), nil
}

// ZonedInstant converts naive, a wall-clock reading carried as a UTC value,
// into the absolute instant at which a clock in loc shows that reading.
//
// The UTC offset of loc is itself a function of the (unknown) absolute
// instant, so near a DST transition a single offset lookup can be wrong by
// an hour. The offset is therefore resolved twice: first at the naive
// instant, then again at the candidate corrected by the first offset, and
// the refined offset is the one applied.
func ZonedInstant(naive time.Time, loc *time.Location) time.Time {
	_, first := naive.In(loc).Zone()
	candidate := naive.Add(-time.Duration(first) * time.Second)
	_, refined := candidate.In(loc).Zone()
	return naive.Add(-time.Duration(refined) * time.Second)
}
