package schedule

import (
	"testing"
	"time"
)

func testLocation(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Jerusalem")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return loc
}

func TestParseTimeOfDay(t *testing.T) {
	cases := []struct {
		in      string
		want    TimeOfDay
		wantErr bool
	}{
		{"08:00", 480, false},
		{"22:00", 1320, false},
		{"00:00", 0, false},
		{"23:59", 1439, false},
		{"24:00", 0, true},
		{"12:60", 0, true},
		{"9:5", 0, true},
		{"noon", 0, true},
		{"", 0, true},
	}
	for _, tc := range cases {
		got, err := ParseTimeOfDay(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("ParseTimeOfDay(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseTimeOfDay(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseTimeOfDay(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestTimeOfDayString(t *testing.T) {
	if got := TimeOfDay(480).String(); got != "08:00" {
		t.Fatalf("got %q", got)
	}
	if got := TimeOfDay(1439).String(); got != "23:59" {
		t.Fatalf("got %q", got)
	}
}

func TestResolveWindowDefault(t *testing.T) {
	loc := testLocation(t)
	date := time.Date(2026, 9, 10, 0, 0, 0, 0, loc)

	start, end, open := ResolveWindow(date, nil, loc)
	if !open {
		t.Fatal("default day should be open")
	}
	if start.Hour() != 8 || start.Minute() != 0 {
		t.Fatalf("default open should be 08:00, got %v", start)
	}
	if end.Hour() != 22 || end.Minute() != 0 {
		t.Fatalf("default close should be 22:00, got %v", end)
	}
}

func TestResolveWindowOverride(t *testing.T) {
	loc := testLocation(t)
	date := time.Date(2026, 9, 10, 0, 0, 0, 0, loc)

	start, end, open := ResolveWindow(date, &Override{OpenMin: 600, CloseMin: 840}, loc)
	if !open {
		t.Fatal("override day should be open")
	}
	if start.Hour() != 10 || end.Hour() != 14 {
		t.Fatalf("expected 10:00-14:00, got %v-%v", start, end)
	}

	if _, _, open := ResolveWindow(date, &Override{IsClosed: true}, loc); open {
		t.Fatal("closed override should yield no window")
	}
	if _, _, open := ResolveWindow(date, &Override{OpenMin: 840, CloseMin: 600}, loc); open {
		t.Fatal("inverted window should yield no availability")
	}
	if _, _, open := ResolveWindow(date, &Override{OpenMin: 600, CloseMin: 600}, loc); open {
		t.Fatal("zero-length window should yield no availability")
	}
}

func TestParseClientTimeNaiveIsLocal(t *testing.T) {
	loc := testLocation(t)

	got, err := ParseClientTime("2026-09-10T14:30:00", loc)
	if err != nil {
		t.Fatalf("ParseClientTime: %v", err)
	}
	want := time.Date(2026, 9, 10, 14, 30, 0, 0, loc)
	if !got.Equal(want) {
		t.Fatalf("naive timestamp should be business-local, got %v want %v", got, want)
	}

	got, err = ParseClientTime("2026-09-10T14:30", loc)
	if err != nil {
		t.Fatalf("ParseClientTime short form: %v", err)
	}
	if !got.Equal(want) {
		t.Fatalf("short naive form mismatch: got %v", got)
	}
}

func TestParseClientTimeRFC3339KeepsInstant(t *testing.T) {
	loc := testLocation(t)

	got, err := ParseClientTime("2026-09-10T11:30:00Z", loc)
	if err != nil {
		t.Fatalf("ParseClientTime: %v", err)
	}
	// 11:30 UTC is 14:30 in Jerusalem during IDT.
	want := time.Date(2026, 9, 10, 14, 30, 0, 0, loc)
	if !got.Equal(want) {
		t.Fatalf("got %v want %v", got, want)
	}

	if _, err := ParseClientTime("tomorrow noon", loc); err == nil {
		t.Fatal("expected error for unparseable input")
	}
}

func TestLocalDayUTC(t *testing.T) {
	loc := testLocation(t)
	date := time.Date(2026, 9, 10, 15, 42, 0, 0, loc)

	from, to := LocalDayUTC(date, loc)
	if to.Sub(from) != 24*time.Hour {
		t.Fatalf("expected a 24h interval, got %v", to.Sub(from))
	}
	// Jerusalem midnight is 21:00 UTC the previous evening during IDT.
	if from.Hour() != 21 || from.Day() != 9 {
		t.Fatalf("unexpected UTC day start: %v", from)
	}
}

func TestMonthBounds(t *testing.T) {
	loc := testLocation(t)

	first, last, err := MonthBounds("2026-02", loc)
	if err != nil {
		t.Fatalf("MonthBounds: %v", err)
	}
	if first.Day() != 1 || first.Month() != time.February {
		t.Fatalf("unexpected first day: %v", first)
	}
	if last.Day() != 28 || last.Month() != time.February {
		t.Fatalf("unexpected last day: %v", last)
	}

	if _, _, err := MonthBounds("2026-2", loc); err == nil {
		t.Fatal("expected error for non-padded month")
	}
	if _, _, err := MonthBounds("Feb 2026", loc); err == nil {
		t.Fatal("expected error for freeform month")
	}
}
