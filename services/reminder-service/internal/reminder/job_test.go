package reminder

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/Michael-Aga/shirel-beauty/services/reminder-service/internal/notify"
)

// The fakes must keep satisfying the interfaces the job wires at runtime.
var (
	_ notify.Sender        = (*fakeSender)(nil)
	_ notify.OwnerNotifier = (*fakeOwner)(nil)
	_ Store                = (*fakeStore)(nil)
)

type fakeStore struct {
	due    []Reminder
	dueErr error
	sent   []string
	failed []string
}

func (s *fakeStore) DueReminders(_ context.Context, _, _ time.Time) ([]Reminder, error) {
	return s.due, s.dueErr
}

func (s *fakeStore) MarkSent(_ context.Context, id string, _ time.Time) error {
	s.sent = append(s.sent, id)
	return nil
}

func (s *fakeStore) MarkFailed(_ context.Context, id string, _ string) error {
	s.failed = append(s.failed, id)
	return nil
}

type fakeSender struct {
	failFor map[string]error
	sent    []string
	bodies  []string
}

func (f *fakeSender) ProviderID() string { return "fake" }

func (f *fakeSender) Send(_ context.Context, to string, body string) error {
	if err, ok := f.failFor[to]; ok {
		return err
	}
	f.sent = append(f.sent, to)
	f.bodies = append(f.bodies, body)
	return nil
}

type fakeOwner struct {
	messages []string
}

func (f *fakeOwner) Notify(_ context.Context, text string) error {
	f.messages = append(f.messages, text)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func jerusalem(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Jerusalem")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return loc
}

func TestRunSendsAndMarks(t *testing.T) {
	loc := jerusalem(t)
	start := time.Date(2026, 9, 11, 14, 30, 0, 0, loc)
	store := &fakeStore{due: []Reminder{
		{AppointmentID: "a1", ServiceName: "Eyelashes", ClientName: "Dana", ClientPhone: "0541234567", StartUTC: start.UTC()},
	}}
	sender := &fakeSender{}
	owner := &fakeOwner{}

	job := New(store, sender, owner, testLogger(), loc, 19)
	summary, err := job.Run(context.Background(), start)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Sent != 1 || summary.Failed != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if len(sender.sent) != 1 || sender.sent[0] != "+972541234567" {
		t.Fatalf("expected one normalized send, got %v", sender.sent)
	}
	if !strings.Contains(sender.bodies[0], "Dana") || !strings.Contains(sender.bodies[0], "14:30") {
		t.Fatalf("message should carry name and local time: %q", sender.bodies[0])
	}
	if len(store.sent) != 1 || store.sent[0] != "a1" {
		t.Fatalf("expected a1 marked sent, got %v", store.sent)
	}
	if len(owner.messages) != 1 {
		t.Fatalf("expected one owner summary, got %v", owner.messages)
	}
}

func TestRunToleratesPerMessageFailures(t *testing.T) {
	loc := jerusalem(t)
	day := time.Date(2026, 9, 11, 0, 0, 0, 0, loc)
	store := &fakeStore{due: []Reminder{
		{AppointmentID: "a1", ClientName: "A", ClientPhone: "0541111111", StartUTC: day.Add(10 * time.Hour).UTC()},
		{AppointmentID: "a2", ClientName: "B", ClientPhone: "0542222222", StartUTC: day.Add(12 * time.Hour).UTC()},
		{AppointmentID: "a3", ClientName: "C", ClientPhone: "0543333333", StartUTC: day.Add(14 * time.Hour).UTC()},
	}}
	sender := &fakeSender{failFor: map[string]error{
		"+972542222222": errors.New("gateway timeout"),
	}}
	owner := &fakeOwner{}

	job := New(store, sender, owner, testLogger(), loc, 19)
	summary, err := job.Run(context.Background(), day)
	if err != nil {
		t.Fatalf("Run should not abort on a single failure: %v", err)
	}
	if summary.Sent != 2 || summary.Failed != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if len(store.failed) != 1 || store.failed[0] != "a2" {
		t.Fatalf("expected only a2 marked failed, got %v", store.failed)
	}
	if len(store.sent) != 2 {
		t.Fatalf("expected the other two marked sent, got %v", store.sent)
	}
}

func TestRunRejectsBadPhones(t *testing.T) {
	loc := jerusalem(t)
	day := time.Date(2026, 9, 11, 0, 0, 0, 0, loc)
	store := &fakeStore{due: []Reminder{
		{AppointmentID: "a1", ClientName: "A", ClientPhone: "not-a-phone", StartUTC: day.Add(10 * time.Hour).UTC()},
	}}
	sender := &fakeSender{}

	job := New(store, sender, &fakeOwner{}, testLogger(), loc, 19)
	summary, err := job.Run(context.Background(), day)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Failed != 1 || summary.Sent != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if len(sender.sent) != 0 {
		t.Fatal("nothing should have been sent")
	}
}

func TestRunPropagatesStoreError(t *testing.T) {
	loc := jerusalem(t)
	store := &fakeStore{dueErr: errors.New("db down")}

	job := New(store, &fakeSender{}, &fakeOwner{}, testLogger(), loc, 19)
	if _, err := job.Run(context.Background(), time.Now()); err == nil {
		t.Fatal("expected error when the store is unavailable")
	}
}

func TestNextFire(t *testing.T) {
	loc := jerusalem(t)
	morning := time.Date(2026, 9, 10, 8, 0, 0, 0, loc)
	evening := time.Date(2026, 9, 10, 20, 0, 0, 0, loc)

	job := New(&fakeStore{}, &fakeSender{}, &fakeOwner{}, testLogger(), loc, 19,
		WithClock(func() time.Time { return morning }))
	if fire := job.nextFire(); fire.Day() != 10 || fire.Hour() != 19 {
		t.Fatalf("expected same-day 19:00, got %v", fire)
	}

	job = New(&fakeStore{}, &fakeSender{}, &fakeOwner{}, testLogger(), loc, 19,
		WithClock(func() time.Time { return evening }))
	if fire := job.nextFire(); fire.Day() != 11 || fire.Hour() != 19 {
		t.Fatalf("expected next-day 19:00, got %v", fire)
	}
}
