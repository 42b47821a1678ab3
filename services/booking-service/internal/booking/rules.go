// Package booking holds the appointment lifecycle rules: the validation
// chain shared by create and reschedule, the cancellation penalty, and the
// status transitions. The rules are pure; the handlers run them inside a
// storage transaction.
package booking

import (
	"time"

	"github.com/Michael-Aga/shirel-beauty/services/booking-service/internal/model"
)

// PenaltyWindow is the notice below which cancelling costs half the price.
const PenaltyWindow = 24 * time.Hour

// CancellationPenalty returns the fee due for cancelling at now. Less than
// 24 hours of notice costs floor(price/2); otherwise nothing. The amount is
// informational only, no charge happens here.
func CancellationPenalty(price int, start, now time.Time) int {
	if start.Sub(now) < PenaltyWindow {
		return price / 2
	}
	return 0
}

// CheckService rejects bookings against missing or deactivated services.
func CheckService(svc *model.Service) *Error {
	if svc == nil {
		return Errorf(ReasonNotFound, "service not found")
	}
	if !svc.Active {
		return Errorf(ReasonInactiveService, "service is not active")
	}
	return nil
}

// CheckLeadTime rejects starts earlier than now + lead.
func CheckLeadTime(start, now time.Time, lead time.Duration) *Error {
	if start.Before(now.Add(lead)) {
		return Errorf(ReasonLeadTime, "must book at least %d minutes in advance", int(lead.Minutes()))
	}
	return nil
}

// CheckWindow requires the whole appointment to fit inside the resolved
// working window. open == false means a closed day.
func CheckWindow(start, end, windowStart, windowEnd time.Time, open bool) *Error {
	if !open {
		return Errorf(ReasonDayClosed, "day is closed")
	}
	if start.Before(windowStart) || end.After(windowEnd) {
		return Errorf(ReasonOutsideHours, "outside working hours")
	}
	return nil
}

// CheckCancellable guards the confirmed -> cancelled transition. There is no
// transition out of cancelled.
func CheckCancellable(appt *model.Appointment) *Error {
	if appt == nil {
		return Errorf(ReasonNotFound, "appointment not found")
	}
	if appt.Status != model.StatusConfirmed {
		return Errorf(ReasonInvalidState, "only confirmed appointments can be cancelled")
	}
	return nil
}

// CheckReschedulable guards moving an appointment; only confirmed ones move.
func CheckReschedulable(appt *model.Appointment) *Error {
	if appt == nil {
		return Errorf(ReasonNotFound, "appointment not found")
	}
	if appt.Status != model.StatusConfirmed {
		return Errorf(ReasonInvalidState, "only confirmed appointments can be rescheduled")
	}
	return nil
}
