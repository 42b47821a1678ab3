package model

import "time"

const (
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

// Service is a catalog entry. Rows are immutable once referenced by
// appointments except for the active flag.
type Service struct {
	ID          string
	Name        string
	DurationMin int
	Price       int
	Active      bool
}

func (s Service) Duration() time.Duration {
	return time.Duration(s.DurationMin) * time.Minute
}

// DayOverride replaces the default working window for one local calendar
// date. A closed day has no window; an open one carries minutes past local
// midnight.
type DayOverride struct {
	ID       string
	Date     string // YYYY-MM-DD, local calendar day
	IsClosed bool
	OpenMin  int
	CloseMin int
}

// Appointment start/end are always stored in UTC; end = start + service
// duration at the time of creation or reschedule.
type Appointment struct {
	ID             string
	ServiceID      string
	ClientName     string
	ClientPhone    string
	StartUTC       time.Time
	EndUTC         time.Time
	Status         string
	ReminderSentAt *time.Time
	CreatedAt      time.Time
}
