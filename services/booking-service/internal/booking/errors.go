package booking

import "fmt"

// Reason is the machine-readable failure code surfaced to clients so they
// can distinguish "fix your input" from "pick another slot".
type Reason string

const (
	ReasonInvalidInput    Reason = "invalid_input"
	ReasonNotFound        Reason = "not_found"
	ReasonInactiveService Reason = "inactive_service"
	ReasonLeadTime        Reason = "lead_time"
	ReasonDayClosed       Reason = "day_closed"
	ReasonOutsideHours    Reason = "outside_hours"
	ReasonSlotConflict    Reason = "slot_conflict"
	ReasonInvalidState    Reason = "invalid_state"
)

type Error struct {
	Reason  Reason
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Reason, e.Message)
}

func Errorf(reason Reason, format string, args ...any) *Error {
	return &Error{Reason: reason, Message: fmt.Sprintf(format, args...)}
}
