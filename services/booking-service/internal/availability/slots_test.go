package availability

import (
	"testing"
	"time"
)

func at(hour, min int) time.Time {
	return time.Date(2026, 9, 10, hour, min, 0, 0, time.UTC)
}

func TestConflictsBufferAfterExistingOnly(t *testing.T) {
	busy := []Interval{{Start: at(10, 0), End: at(12, 0)}}
	buffer := 20 * time.Minute

	// Starting exactly at the busy end is still blocked by the buffer.
	if !Conflicts(at(12, 0), at(14, 0), buffer, busy) {
		t.Fatal("expected conflict for start inside the post-appointment buffer")
	}
	// First clean start is busy end + buffer.
	if Conflicts(at(12, 20), at(14, 20), buffer, busy) {
		t.Fatal("expected no conflict once the buffer has elapsed")
	}
	// No buffer is reserved before the existing appointment.
	if Conflicts(at(8, 0), at(10, 0), buffer, busy) {
		t.Fatal("expected no conflict for a slot ending exactly at the busy start")
	}
	if !Conflicts(at(8, 0), at(10, 1), buffer, busy) {
		t.Fatal("expected conflict for a slot overlapping the busy start")
	}
}

func TestConflictsContainment(t *testing.T) {
	busy := []Interval{{Start: at(10, 0), End: at(10, 30)}}
	if !Conflicts(at(9, 0), at(12, 0), 0, busy) {
		t.Fatal("expected conflict when candidate fully contains a busy interval")
	}
	if !Conflicts(at(10, 5), at(10, 10), 0, busy) {
		t.Fatal("expected conflict when candidate sits inside a busy interval")
	}
}

func TestSlotsEnumeration(t *testing.T) {
	windowStart, windowEnd := at(8, 0), at(12, 0)
	slots := Slots(windowStart, windowEnd, 90*time.Minute, 30*time.Minute, 0, nil, time.Time{})

	// 08:00..10:30 starts, stepping 30m, last slot ends exactly at 12:00.
	if len(slots) != 6 {
		t.Fatalf("expected 6 slots, got %d", len(slots))
	}
	if !slots[0].Start.Equal(at(8, 0)) {
		t.Fatalf("first slot should start at window open, got %v", slots[0].Start)
	}
	last := slots[len(slots)-1]
	if !last.Start.Equal(at(10, 30)) || !last.End.Equal(at(12, 0)) {
		t.Fatalf("last slot should be 10:30-12:00, got %v-%v", last.Start, last.End)
	}
	for i := 1; i < len(slots); i++ {
		if !slots[i].Start.After(slots[i-1].Start) {
			t.Fatal("slots must be strictly chronological")
		}
	}
}

func TestSlotsSkipConflictsAndLeadTime(t *testing.T) {
	windowStart, windowEnd := at(8, 0), at(22, 0)
	busy := []Interval{{Start: at(10, 0), End: at(12, 0)}}
	earliest := at(9, 15)

	slots := Slots(windowStart, windowEnd, 2*time.Hour, 30*time.Minute, 20*time.Minute, busy, earliest)

	for _, s := range slots {
		if s.Start.Before(earliest) {
			t.Fatalf("slot %v starts before the earliest bookable time", s.Start)
		}
		if Conflicts(s.Start, s.End, 20*time.Minute, busy) {
			t.Fatalf("slot %v-%v conflicts with the busy set", s.Start, s.End)
		}
	}
	// 09:30 survives the lead cutoff but collides with the 10:00 booking.
	for _, s := range slots {
		if s.Start.Equal(at(9, 30)) {
			t.Fatal("09:30 slot should have been dropped as conflicting")
		}
	}
	// 12:30 is the first post-buffer grid start (12:20 is off-grid).
	if len(slots) == 0 || !slots[0].Start.Equal(at(12, 30)) {
		t.Fatalf("expected first open slot at 12:30, got %+v", slots)
	}
}

func TestSlotsWindowTooSmall(t *testing.T) {
	if got := Slots(at(8, 0), at(9, 0), 2*time.Hour, 30*time.Minute, 0, nil, time.Time{}); got != nil {
		t.Fatalf("expected nil for a window shorter than the duration, got %v", got)
	}
	if got := Slots(at(8, 0), at(12, 0), 0, 30*time.Minute, 0, nil, time.Time{}); got != nil {
		t.Fatalf("expected nil for non-positive duration, got %v", got)
	}
}
