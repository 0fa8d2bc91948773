package availability

import "time"

// DateKey formats t as the "YYYY-MM-DD" calendar date in loc. Keys are for
// presentation grouping only; all computation stays on absolute instants.
func DateKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}

// GroupByLocalDate buckets intervals under the local date of their start in
// the viewer's zone. An interval that runs past local midnight is listed
// under the end date as well, so cross-midnight slots are visible from
// either day. The end is exclusive, so an interval finishing exactly at
// midnight stays on its start date.
func GroupByLocalDate(intervals []Interval, loc *time.Location) map[string][]Interval {
	m := make(map[string][]Interval)
	for _, iv := range intervals {
		startKey := DateKey(iv.Start, loc)
		m[startKey] = append(m[startKey], iv)
		endKey := DateKey(iv.End.Add(-time.Nanosecond), loc)
		if endKey != startKey {
			m[endKey] = append(m[endKey], iv)
		}
	}
	return m
}
