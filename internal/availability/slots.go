package availability

import "time"

// Slots cuts window into fixed-length candidates of the given duration,
// advancing the start by step, stopping before a candidate would overrun
// the window end.
func Slots(window Interval, duration, step time.Duration) []Interval {
	if duration <= 0 || step <= 0 {
		return nil
	}
	var out []Interval
	for t := window.Start; !t.Add(duration).After(window.End); t = t.Add(step) {
		out = append(out, Interval{Start: t, End: t.Add(duration)})
	}
	return out
}

// FilterContained keeps the candidates that lie entirely inside at least one
// available interval.
func FilterContained(candidates, available []Interval) []Interval {
	var out []Interval
	for _, c := range candidates {
		for _, a := range available {
			if c.Within(a) {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

// LongEnough returns a predicate for intervals that can fit a meeting of
// the given duration. Used to drop availability windows shorter than one
// meeting before slot generation.
func LongEnough(duration time.Duration) func(Interval) bool {
	return func(iv Interval) bool {
		return iv.Duration() >= duration
	}
}
