package availability

import "fmt"

// WeeklyRange is one recurring availability window: a weekday plus a
// start/end time of day in the owner's zone. Ranges for the same weekday may
// overlap; the model does not deduplicate them.
type WeeklyRange struct {
	Weekday   Weekday `json:"weekDay"`
	StartTime string  `json:"startTime"`
	EndTime   string  `json:"endTime"`
}

// Validate checks the range at the settings boundary: both endpoints must be
// valid "HH:MM" times and the end must be strictly after the start.
func (r WeeklyRange) Validate() error {
	if !r.Weekday.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownWeekday, string(r.Weekday))
	}
	start, err := ParseHourMinute(r.StartTime)
	if err != nil {
		return err
	}
	end, err := ParseHourMinute(r.EndTime)
	if err != nil {
		return err
	}
	if end <= start {
		return fmt.Errorf("range end %q is not after start %q", r.EndTime, r.StartTime)
	}
	return nil
}

// GroupByWeekday partitions ranges by weekday. Every weekday is present in
// the result, empty days included, so callers can render a full week without
// checking for missing keys.
func GroupByWeekday(ranges []WeeklyRange) map[Weekday][]WeeklyRange {
	m := make(map[Weekday][]WeeklyRange, len(weekdays))
	for _, d := range weekdays {
		m[d] = []WeeklyRange{}
	}
	for _, r := range ranges {
		m[r.Weekday] = append(m[r.Weekday], r)
	}
	return m
}
