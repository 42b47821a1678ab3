package booking

import (
	"testing"
	"time"

	"github.com/Michael-Aga/shirel-beauty/services/booking-service/internal/model"
)

func TestCancellationPenalty(t *testing.T) {
	now := time.Date(2026, 9, 10, 12, 0, 0, 0, time.UTC)

	// 10 hours of notice: half price.
	if got := CancellationPenalty(200, now.Add(10*time.Hour), now); got != 100 {
		t.Fatalf("expected 100, got %d", got)
	}
	// 30 hours of notice: free.
	if got := CancellationPenalty(200, now.Add(30*time.Hour), now); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
	// Exactly 24 hours is outside the penalty window.
	if got := CancellationPenalty(200, now.Add(24*time.Hour), now); got != 0 {
		t.Fatalf("expected 0 at exactly 24h, got %d", got)
	}
	// Odd prices round down.
	if got := CancellationPenalty(155, now.Add(time.Hour), now); got != 77 {
		t.Fatalf("expected floor(155/2)=77, got %d", got)
	}
	// Already-started appointments still fall in the window.
	if got := CancellationPenalty(300, now.Add(-time.Hour), now); got != 150 {
		t.Fatalf("expected 150, got %d", got)
	}
}

func TestCheckService(t *testing.T) {
	if err := CheckService(nil); err == nil || err.Reason != ReasonNotFound {
		t.Fatalf("nil service: got %v", err)
	}
	if err := CheckService(&model.Service{Active: false}); err == nil || err.Reason != ReasonInactiveService {
		t.Fatalf("inactive service: got %v", err)
	}
	if err := CheckService(&model.Service{Active: true}); err != nil {
		t.Fatalf("active service should pass: %v", err)
	}
}

func TestCheckLeadTime(t *testing.T) {
	now := time.Date(2026, 9, 10, 12, 0, 0, 0, time.UTC)
	lead := 30 * time.Minute

	if err := CheckLeadTime(now.Add(29*time.Minute), now, lead); err == nil || err.Reason != ReasonLeadTime {
		t.Fatalf("short notice: got %v", err)
	}
	// Exactly now + lead is bookable.
	if err := CheckLeadTime(now.Add(30*time.Minute), now, lead); err != nil {
		t.Fatalf("boundary start should pass: %v", err)
	}
	if err := CheckLeadTime(now.Add(time.Hour), now, lead); err != nil {
		t.Fatalf("future start should pass: %v", err)
	}
}

func TestCheckWindow(t *testing.T) {
	loc := time.UTC
	windowStart := time.Date(2026, 9, 10, 8, 0, 0, 0, loc)
	windowEnd := time.Date(2026, 9, 10, 22, 0, 0, 0, loc)

	if err := CheckWindow(windowStart, windowStart.Add(time.Hour), windowStart, windowEnd, false); err == nil || err.Reason != ReasonDayClosed {
		t.Fatalf("closed day: got %v", err)
	}
	if err := CheckWindow(windowStart.Add(-time.Minute), windowStart.Add(time.Hour), windowStart, windowEnd, true); err == nil || err.Reason != ReasonOutsideHours {
		t.Fatalf("start before open: got %v", err)
	}
	if err := CheckWindow(windowEnd.Add(-time.Hour), windowEnd.Add(time.Minute), windowStart, windowEnd, true); err == nil || err.Reason != ReasonOutsideHours {
		t.Fatalf("end after close: got %v", err)
	}
	// Ending exactly at close is allowed.
	if err := CheckWindow(windowEnd.Add(-2*time.Hour), windowEnd, windowStart, windowEnd, true); err != nil {
		t.Fatalf("flush-to-close appointment should pass: %v", err)
	}
}

func TestStatusTransitions(t *testing.T) {
	confirmed := &model.Appointment{Status: model.StatusConfirmed}
	cancelled := &model.Appointment{Status: model.StatusCancelled}

	if err := CheckCancellable(confirmed); err != nil {
		t.Fatalf("confirmed should be cancellable: %v", err)
	}
	if err := CheckCancellable(cancelled); err == nil || err.Reason != ReasonInvalidState {
		t.Fatalf("cancelled appointment must not cancel again: got %v", err)
	}
	if err := CheckCancellable(nil); err == nil || err.Reason != ReasonNotFound {
		t.Fatalf("nil appointment: got %v", err)
	}

	if err := CheckReschedulable(confirmed); err != nil {
		t.Fatalf("confirmed should be reschedulable: %v", err)
	}
	if err := CheckReschedulable(cancelled); err == nil || err.Reason != ReasonInvalidState {
		t.Fatalf("cancelled appointment must not move: got %v", err)
	}
}
