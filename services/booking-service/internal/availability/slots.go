// Package availability holds the conflict rule and slot enumeration for a
// single-provider booking line. Appointments for different services never
// conflict with each other; callers pass per-service busy sets.
package availability

import "time"

type Interval struct {
	Start time.Time
	End   time.Time
}

// Conflicts reports whether a candidate [start, end) overlaps any busy
// interval once the mandatory buffer after each busy interval is applied.
// The buffer extends each existing appointment's end only; nothing is
// reserved before an appointment starts.
func Conflicts(start, end time.Time, buffer time.Duration, busy []Interval) bool {
	for _, b := range busy {
		if start.Before(b.End.Add(buffer)) && end.After(b.Start) {
			return true
		}
	}
	return false
}

// Slots enumerates bookable intervals of the given duration inside
// [windowStart, windowEnd], stepping the cursor by step. Candidates that
// start before earliest (now + lead time) or that conflict with the busy
// set are dropped. The result is chronological and duplicate-free by
// construction; a window too small for one occurrence yields nil.
func Slots(windowStart, windowEnd time.Time, duration, step, buffer time.Duration, busy []Interval, earliest time.Time) []Interval {
	if duration <= 0 || step <= 0 {
		return nil
	}
	if windowStart.Add(duration).After(windowEnd) {
		return nil
	}

	var slots []Interval
	for cursor := windowStart; !cursor.Add(duration).After(windowEnd); cursor = cursor.Add(step) {
		if cursor.Before(earliest) {
			continue
		}
		end := cursor.Add(duration)
		if Conflicts(cursor, end, buffer, busy) {
			continue
		}
		slots = append(slots, Interval{Start: cursor, End: end})
	}
	return slots
}
