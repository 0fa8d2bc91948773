package availability

import "time"

// AvailableRanges expands the weekly rules over [start, end] in the owner's
// zone and removes the busy intervals. The result is the owner's raw free
// time, not yet cut into slots.
func AvailableRanges(start, end time.Time, rules []WeeklyRange, loc *time.Location, busy []Interval) []Interval {
	return SubtractAllFromAll(Expand(start, end, rules, loc), busy)
}

// BookableSlots generates the fixed-duration candidates offered to a
// visitor: each available window at least one meeting long is stepped into
// candidates, and only candidates fully contained in the availability are
// kept.
func BookableSlots(available []Interval, duration, step time.Duration) []Interval {
	longEnough := LongEnough(duration)
	var out []Interval
	for _, window := range available {
		if !longEnough(window) {
			continue
		}
		out = append(out, FilterContained(Slots(window, duration, step), available)...)
	}
	return out
}
