package availability

import (
	"testing"
	"time"
)

func TestGroupByLocalDate(t *testing.T) {
	london := mustZone(t, "Europe/London")
	ivs := []Interval{
		{Start: utc("2022-05-02T08:00:00Z"), End: utc("2022-05-02T08:30:00Z")},
		{Start: utc("2022-05-02T15:30:00Z"), End: utc("2022-05-02T16:00:00Z")},
		{Start: utc("2022-05-03T08:00:00Z"), End: utc("2022-05-03T08:30:00Z")},
	}
	m := GroupByLocalDate(ivs, london)
	if len(m) != 2 {
		t.Fatalf("expected 2 date buckets, got %d: %v", len(m), m)
	}
	if len(m["2022-05-02"]) != 2 || len(m["2022-05-03"]) != 1 {
		t.Fatalf("unexpected buckets: %v", m)
	}
}

func TestGroupByLocalDateViewerZone(t *testing.T) {
	// 23:00Z is already the next day in Sydney.
	sydney := mustZone(t, "Australia/Sydney")
	ivs := []Interval{{Start: utc("2022-05-02T23:00:00Z"), End: utc("2022-05-02T23:30:00Z")}}
	m := GroupByLocalDate(ivs, sydney)
	if len(m["2022-05-03"]) != 1 {
		t.Fatalf("expected bucket under the viewer-local date, got %v", m)
	}
}

func TestGroupByLocalDateCrossMidnight(t *testing.T) {
	london := mustZone(t, "Europe/London")
	// 23:30 to 00:30 local on a BST night.
	iv := Interval{Start: utc("2022-05-02T22:30:00Z"), End: utc("2022-05-02T23:30:00Z")}
	m := GroupByLocalDate([]Interval{iv}, london)
	if len(m["2022-05-02"]) != 1 || len(m["2022-05-03"]) != 1 {
		t.Fatalf("cross-midnight slot should appear under both dates, got %v", m)
	}
}

func TestGroupByLocalDateMidnightEndExclusive(t *testing.T) {
	london := mustZone(t, "Europe/London")
	// Ends exactly at local midnight; it does not occupy the next day.
	iv := Interval{Start: utc("2022-05-02T22:30:00Z"), End: utc("2022-05-02T23:00:00Z")}
	m := GroupByLocalDate([]Interval{iv}, london)
	if len(m) != 1 || len(m["2022-05-02"]) != 1 {
		t.Fatalf("midnight-ending slot should stay on its start date, got %v", m)
	}
}

func TestDateKey(t *testing.T) {
	london := mustZone(t, "Europe/London")
	if got := DateKey(utc("2022-05-02T23:30:00Z"), london); got != "2022-05-03" {
		t.Fatalf("DateKey = %q, want 2022-05-03", got)
	}
	if got := DateKey(utc("2022-05-02T12:00:00Z"), time.UTC); got != "2022-05-02" {
		t.Fatalf("DateKey = %q, want 2022-05-02", got)
	}
}
