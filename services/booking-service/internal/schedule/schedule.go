// Package schedule resolves working windows and localizes client-supplied
// times. Appointments are stored in UTC; everything user-facing is
// interpreted in one configured business timezone.
package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Default working window when no override exists for a date.
const (
	DefaultOpenMin  = 8 * 60  // 08:00
	DefaultCloseMin = 22 * 60 // 22:00
)

const DateLayout = "2006-01-02"

// Config carries the scheduling knobs shared by availability and booking.
type Config struct {
	Location *time.Location
	Lead     time.Duration // minimum notice before a bookable start
	Buffer   time.Duration // mandatory gap after each appointment
	SlotStep time.Duration // slot grid granularity
}

// TimeOfDay is minutes past local midnight.
type TimeOfDay int

// ParseTimeOfDay parses "HH:MM".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, fmt.Errorf("time must be HH:MM, got %q", s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("time must be HH:MM, got %q", s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 || len(mm) != 2 {
		return 0, fmt.Errorf("time must be HH:MM, got %q", s)
	}
	return TimeOfDay(h*60 + m), nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// On places the time of day onto a date in the given location.
func (t TimeOfDay) On(date time.Time, loc *time.Location) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), int(t)/60, int(t)%60, 0, 0, loc)
}

// Override is the per-date exception consulted by ResolveWindow. A nil
// *Override means "no exception for this date".
type Override struct {
	IsClosed bool
	OpenMin  int
	CloseMin int
}

// ResolveWindow returns the effective local working window for a date.
// open == false means the day has no availability at all (closed override
// or an override with a degenerate window).
func ResolveWindow(date time.Time, ov *Override, loc *time.Location) (start, end time.Time, open bool) {
	openMin, closeMin := DefaultOpenMin, DefaultCloseMin
	if ov != nil {
		if ov.IsClosed {
			return time.Time{}, time.Time{}, false
		}
		openMin, closeMin = ov.OpenMin, ov.CloseMin
	}
	if closeMin <= openMin {
		return time.Time{}, time.Time{}, false
	}
	start = TimeOfDay(openMin).On(date, loc)
	end = TimeOfDay(closeMin).On(date, loc)
	return start, end, true
}

// ParseDate parses a YYYY-MM-DD local calendar date.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(s), loc)
}

// ParseClientTime parses a client-supplied start timestamp. RFC3339 input
// keeps its offset and is converted to the business zone; input without a
// timezone annotation is interpreted as business-local time. This fallback
// is a deliberate contract, not an accident: the mobile app sends naive
// local timestamps.
func ParseClientTime(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.In(loc), nil
	}
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02T15:04"} {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse time %q", raw)
}

// LocalDayUTC returns the half-open UTC interval [start, end) covering the
// local calendar day that contains date.
func LocalDayUTC(date time.Time, loc *time.Location) (time.Time, time.Time) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc)
	return dayStart.UTC(), dayStart.AddDate(0, 0, 1).UTC()
}

// MonthBounds returns the first and last date of a "YYYY-MM" month.
func MonthBounds(month string, loc *time.Location) (time.Time, time.Time, error) {
	first, err := time.ParseInLocation("2006-01", strings.TrimSpace(month), loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("month must be YYYY-MM, got %q", month)
	}
	last := first.AddDate(0, 1, -1)
	return first, last, nil
}
