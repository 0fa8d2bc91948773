package availability

import (
	"testing"
	"time"
)

// One Monday 09:00-17:00 in London, a week-long window and no busy time:
// exactly 16 half-hour slots, 09:00 local through 16:30 local.
func TestBookableSlotsFullMonday(t *testing.T) {
	london := mustZone(t, "Europe/London")
	rules := []WeeklyRange{{Weekday: Monday, StartTime: "09:00", EndTime: "17:00"}}

	available := AvailableRanges(utc("2022-05-02T00:00:00Z"), utc("2022-05-09T00:00:00Z"), rules, london, nil)
	slots := BookableSlots(available, 30*time.Minute, 30*time.Minute)

	if len(slots) != 16 {
		t.Fatalf("expected 16 slots, got %d", len(slots))
	}
	// 09:00 local is 08:00Z during BST.
	if !slots[0].Start.Equal(utc("2022-05-02T08:00:00Z")) {
		t.Fatalf("first slot should start 09:00 local, got %s", slots[0].Start.Format(time.RFC3339))
	}
	if !slots[15].Start.Equal(utc("2022-05-02T15:30:00Z")) {
		t.Fatalf("last slot should start 16:30 local, got %s", slots[15].Start.Format(time.RFC3339))
	}
	for _, s := range slots {
		if s.Duration() != 30*time.Minute {
			t.Fatalf("slot %v is not 30 minutes", s)
		}
	}
}

// A 12:00-13:00 local busy interval knocks out the 12:00 and 12:30 slots and
// leaves the rest untouched.
func TestBookableSlotsWithBusyInterval(t *testing.T) {
	london := mustZone(t, "Europe/London")
	rules := []WeeklyRange{{Weekday: Monday, StartTime: "09:00", EndTime: "17:00"}}
	busy := []Interval{{Start: utc("2022-05-02T11:00:00Z"), End: utc("2022-05-02T12:00:00Z")}}

	available := AvailableRanges(utc("2022-05-02T00:00:00Z"), utc("2022-05-09T00:00:00Z"), rules, london, busy)
	slots := BookableSlots(available, 30*time.Minute, 30*time.Minute)

	if len(slots) != 14 {
		t.Fatalf("expected 14 slots, got %d", len(slots))
	}
	for _, s := range slots {
		if s.Start.Equal(utc("2022-05-02T11:00:00Z")) || s.Start.Equal(utc("2022-05-02T11:30:00Z")) {
			t.Fatalf("busy slot %s should be gone", s.Start.Format(time.RFC3339))
		}
	}
}

// Windows shorter than one meeting are filtered before slot generation.
func TestBookableSlotsSkipsShortWindows(t *testing.T) {
	london := mustZone(t, "Europe/London")
	rules := []WeeklyRange{{Weekday: Monday, StartTime: "09:00", EndTime: "17:00"}}
	// Leave only 15 minutes free at the head of the day.
	busy := []Interval{{Start: utc("2022-05-02T08:15:00Z"), End: utc("2022-05-02T16:00:00Z")}}

	available := AvailableRanges(utc("2022-05-02T00:00:00Z"), utc("2022-05-09T00:00:00Z"), rules, london, busy)
	slots := BookableSlots(available, 30*time.Minute, 30*time.Minute)
	if len(slots) != 0 {
		t.Fatalf("expected no slots in a 15-minute window, got %v", slots)
	}
}

func TestAvailableRangesSubtractsAcrossDays(t *testing.T) {
	london := mustZone(t, "Europe/London")
	rules := []WeeklyRange{
		{Weekday: Monday, StartTime: "09:00", EndTime: "12:00"},
		{Weekday: Tuesday, StartTime: "09:00", EndTime: "12:00"},
	}
	busy := []Interval{
		{Start: utc("2022-05-02T08:00:00Z"), End: utc("2022-05-02T11:00:00Z")},
		{Start: utc("2022-05-03T09:00:00Z"), End: utc("2022-05-03T09:30:00Z")},
	}

	// Monday (08:00Z-11:00Z during BST) is fully busy; Tuesday splits in two.
	got := AvailableRanges(utc("2022-05-02T00:00:00Z"), utc("2022-05-04T00:00:00Z"), rules, london, busy)
	want := []Interval{
		{Start: utc("2022-05-03T08:00:00Z"), End: utc("2022-05-03T09:00:00Z")},
		{Start: utc("2022-05-03T09:30:00Z"), End: utc("2022-05-03T11:00:00Z")},
	}
	if !sameIntervals(got, want) {
		t.Fatalf("AvailableRanges = %v, want %v", got, want)
	}
}
