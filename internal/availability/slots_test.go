package availability

import (
	"testing"
	"time"
)

func TestSlotsBoundary(t *testing.T) {
	window := at(0, 60)
	got := Slots(window, 30*time.Minute, 30*time.Minute)
	if !sameIntervals(got, []Interval{at(0, 30), at(30, 60)}) {
		t.Fatalf("60min window should yield exactly two 30min slots, got %v", got)
	}

	// The trailing 15 minutes cannot fit a meeting and are dropped.
	got = Slots(at(0, 45), 30*time.Minute, 30*time.Minute)
	if !sameIntervals(got, []Interval{at(0, 30)}) {
		t.Fatalf("45min window should yield one slot, got %v", got)
	}

	if got := Slots(at(0, 20), 30*time.Minute, 30*time.Minute); len(got) != 0 {
		t.Fatalf("window shorter than duration should yield no slots, got %v", got)
	}
	if got := Slots(at(0, 0), 30*time.Minute, 30*time.Minute); len(got) != 0 {
		t.Fatalf("zero-length window should yield no slots, got %v", got)
	}
}

func TestSlotsStepSmallerThanDuration(t *testing.T) {
	got := Slots(at(0, 60), 30*time.Minute, 15*time.Minute)
	want := []Interval{at(0, 30), at(15, 45), at(30, 60)}
	if !sameIntervals(got, want) {
		t.Fatalf("Slots = %v, want %v", got, want)
	}
}

func TestSlotsRejectsNonPositiveInputs(t *testing.T) {
	if got := Slots(at(0, 60), 0, 30*time.Minute); got != nil {
		t.Fatalf("zero duration should yield nil, got %v", got)
	}
	if got := Slots(at(0, 60), 30*time.Minute, -time.Minute); got != nil {
		t.Fatalf("negative step should yield nil, got %v", got)
	}
}

func TestFilterContained(t *testing.T) {
	available := []Interval{at(0, 60), at(120, 180)}
	candidates := []Interval{at(0, 30), at(40, 70), at(130, 160), at(170, 200)}
	got := FilterContained(candidates, available)
	want := []Interval{at(0, 30), at(130, 160)}
	if !sameIntervals(got, want) {
		t.Fatalf("FilterContained = %v, want %v", got, want)
	}
}

func TestLongEnough(t *testing.T) {
	pred := LongEnough(30 * time.Minute)
	if !pred(at(0, 30)) || !pred(at(0, 45)) {
		t.Fatal("intervals of at least the duration should pass")
	}
	if pred(at(0, 29)) {
		t.Fatal("shorter interval should not pass")
	}
}
