package availability

import (
	"testing"
	"time"
)

func mustZone(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := LoadZone(name)
	if err != nil {
		t.Fatalf("LoadZone(%q) failed: %v", name, err)
	}
	return loc
}

func utc(value string) time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic(err)
	}
	return t
}

func TestExpandSingleWeek(t *testing.T) {
	london := mustZone(t, "Europe/London")
	rules := []WeeklyRange{{Weekday: Monday, StartTime: "09:00", EndTime: "17:00"}}

	// 2022-05-02 is a Monday; London is on BST (+1).
	got := Expand(utc("2022-05-02T00:00:00Z"), utc("2022-05-09T00:00:00Z"), rules, london)
	if len(got) != 1 {
		t.Fatalf("expected 1 occurrence, got %d: %v", len(got), got)
	}
	if !got[0].Start.Equal(utc("2022-05-02T08:00:00Z")) || !got[0].End.Equal(utc("2022-05-02T16:00:00Z")) {
		t.Fatalf("unexpected occurrence %v", got[0])
	}
}

func TestExpandClipsToWindow(t *testing.T) {
	london := mustZone(t, "Europe/London")
	rules := []WeeklyRange{{Weekday: Monday, StartTime: "09:00", EndTime: "17:00"}}

	got := Expand(utc("2022-05-02T10:00:00Z"), utc("2022-05-02T12:00:00Z"), rules, london)
	if len(got) != 1 {
		t.Fatalf("expected 1 clipped occurrence, got %d", len(got))
	}
	if !got[0].Start.Equal(utc("2022-05-02T10:00:00Z")) || !got[0].End.Equal(utc("2022-05-02T12:00:00Z")) {
		t.Fatalf("occurrence not clipped to window: %v", got[0])
	}
}

func TestExpandExcludesBoundaryTouch(t *testing.T) {
	london := mustZone(t, "Europe/London")
	rules := []WeeklyRange{{Weekday: Monday, StartTime: "09:00", EndTime: "17:00"}}

	// Window begins exactly when the Monday occurrence ends.
	got := Expand(utc("2022-05-02T16:00:00Z"), utc("2022-05-03T00:00:00Z"), rules, london)
	if len(got) != 0 {
		t.Fatalf("boundary-touching occurrence should be excluded, got %v", got)
	}
}

// A Sydney Monday morning is still Sunday in UTC terms; the walk margin has
// to pick it up even when the window edge sits between the two.
func TestExpandCrossesUTCDayBoundary(t *testing.T) {
	sydney := mustZone(t, "Australia/Sydney")
	rules := []WeeklyRange{{Weekday: Monday, StartTime: "09:00", EndTime: "17:00"}}

	// Monday 2022-11-07 09:00 AEDT == Sunday 2022-11-06 22:00Z.
	got := Expand(utc("2022-11-06T00:00:00Z"), utc("2022-11-07T08:00:00Z"), rules, sydney)
	if len(got) != 1 {
		t.Fatalf("expected 1 occurrence, got %d: %v", len(got), got)
	}
	if !got[0].Start.Equal(utc("2022-11-06T22:00:00Z")) {
		t.Fatalf("expected start 2022-11-06T22:00:00Z, got %s", got[0].Start.Format(time.RFC3339))
	}
	if !got[0].End.Equal(utc("2022-11-07T06:00:00Z")) {
		t.Fatalf("expected end 2022-11-07T06:00:00Z, got %s", got[0].End.Format(time.RFC3339))
	}
}

func TestExpandAscendingOrder(t *testing.T) {
	ny := mustZone(t, "America/New_York")
	rules := []WeeklyRange{
		{Weekday: Monday, StartTime: "09:00", EndTime: "12:00"},
		{Weekday: Wednesday, StartTime: "14:00", EndTime: "16:00"},
	}
	got := Expand(utc("2022-05-01T00:00:00Z"), utc("2022-05-15T00:00:00Z"), rules, ny)
	if len(got) != 4 {
		t.Fatalf("expected 4 occurrences over two weeks, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Start.Before(got[i-1].Start) {
			t.Fatalf("occurrences out of order at %d: %v", i, got)
		}
	}
}

func TestExpandSkipsMalformedRule(t *testing.T) {
	london := mustZone(t, "Europe/London")
	rules := []WeeklyRange{
		{Weekday: Monday, StartTime: "bogus", EndTime: "17:00"},
		{Weekday: Monday, StartTime: "09:00", EndTime: "10:00"},
	}
	got := Expand(utc("2022-05-02T00:00:00Z"), utc("2022-05-03T00:00:00Z"), rules, london)
	if len(got) != 1 {
		t.Fatalf("malformed rule should expand to nothing, got %v", got)
	}
}

func TestGroupByWeekdayKeepsEmptyDays(t *testing.T) {
	m := GroupByWeekday([]WeeklyRange{
		{Weekday: Monday, StartTime: "09:00", EndTime: "17:00"},
		{Weekday: Monday, StartTime: "18:00", EndTime: "19:00"},
	})
	if len(m) != 7 {
		t.Fatalf("expected all 7 weekday buckets, got %d", len(m))
	}
	if len(m[Monday]) != 2 {
		t.Fatalf("expected 2 Monday ranges, got %d", len(m[Monday]))
	}
	for _, d := range []Weekday{Sunday, Tuesday, Wednesday, Thursday, Friday, Saturday} {
		ranges, ok := m[d]
		if !ok {
			t.Fatalf("missing bucket for %s", d)
		}
		if len(ranges) != 0 {
			t.Fatalf("expected empty bucket for %s, got %v", d, ranges)
		}
	}
}
