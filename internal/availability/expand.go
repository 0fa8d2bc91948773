package availability

import "time"

const day = 24 * time.Hour

// expandMargin is how far past each window edge the date walk extends. An
// occurrence on a local date can land up to a day away in UTC terms once the
// zone offset is applied, so the walk starts 2 days early and ends 2 days
// late to be safe on both sides.
const expandMargin = 2 * day

// Expand instantiates the weekly rules on every calendar date around the
// window and returns the occurrences that overlap [windowStart, windowEnd],
// clipped to the window edges. Dates are walked sequentially, so the result
// is in ascending date order without re-sorting.
//
// Rules are validated at the settings boundary before they are stored; a
// rule that fails to parse here expands to nothing. An occurrence that clips
// down to a zero-length interval is not availability and is dropped.
func Expand(windowStart, windowEnd time.Time, rules []WeeklyRange, loc *time.Location) []Interval {
	byDay := GroupByWeekday(rules)
	walkEnd := windowEnd.Add(expandMargin)
	var out []Interval
	for d := windowStart.Add(-expandMargin); d.Before(walkEnd); d = d.Add(day) {
		date := d.UTC()
		for _, rule := range byDay[weekdayOf(date)] {
			occ, ok := occurrenceOn(date, rule, loc)
			if !ok || !occ.End.After(windowStart) || !occ.Start.Before(windowEnd) {
				continue
			}
			if occ.Start.Before(windowStart) {
				occ.Start = windowStart
			}
			if windowEnd.Before(occ.End) {
				occ.End = windowEnd
			}
			if occ.End.After(occ.Start) {
				out = append(out, occ)
			}
		}
	}
	return out
}

// occurrenceOn instantiates rule on the UTC calendar date of d, converting
// the rule's wall-clock endpoints to absolute instants in loc.
func occurrenceOn(d time.Time, rule WeeklyRange, loc *time.Location) (Interval, bool) {
	start, err := ParseHourMinute(rule.StartTime)
	if err != nil {
		return Interval{}, false
	}
	end, err := ParseHourMinute(rule.EndTime)
	if err != nil {
		return Interval{}, false
	}
	midnight := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	return Interval{
		Start: ZonedInstant(midnight.Add(start), loc),
		End:   ZonedInstant(midnight.Add(end), loc),
	}, true
}
