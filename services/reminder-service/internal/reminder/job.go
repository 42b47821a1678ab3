package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Michael-Aga/shirel-beauty/services/reminder-service/internal/notify"
)

// Reminder is one confirmed appointment that still needs its day-before
// message.
type Reminder struct {
	AppointmentID string
	ServiceName   string
	ClientName    string
	ClientPhone   string
	StartUTC      time.Time
}

// Store is the persistence surface the job needs. MarkSent stamps
// reminder_sent_at so a rerun for the same day skips already-notified rows.
type Store interface {
	DueReminders(ctx context.Context, fromUTC, toUTC time.Time) ([]Reminder, error)
	MarkSent(ctx context.Context, appointmentID string, at time.Time) error
	MarkFailed(ctx context.Context, appointmentID string, reason string) error
}

type Job struct {
	store  Store
	sender notify.Sender
	owner  notify.OwnerNotifier
	logger *slog.Logger
	loc    *time.Location
	hour   int
	now    func() time.Time
}

type Option func(*Job)

func WithClock(now func() time.Time) Option {
	return func(j *Job) { j.now = now }
}

func New(store Store, sender notify.Sender, owner notify.OwnerNotifier, logger *slog.Logger, loc *time.Location, hour int, opts ...Option) *Job {
	j := &Job{
		store:  store,
		sender: sender,
		owner:  owner,
		logger: logger,
		loc:    loc,
		hour:   hour,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Summary reports one run's outcome.
type Summary struct {
	Date   string
	Sent   int
	Failed int
}

// Run sends reminders for every unreminded confirmed appointment on the
// given local calendar day. A single delivery failure never aborts the run;
// the row is marked failed and the loop continues.
func (j *Job) Run(ctx context.Context, date time.Time) (Summary, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, j.loc)
	dayEnd := dayStart.AddDate(0, 0, 1)
	summary := Summary{Date: dayStart.Format("2006-01-02")}

	due, err := j.store.DueReminders(ctx, dayStart.UTC(), dayEnd.UTC())
	if err != nil {
		return summary, fmt.Errorf("load due reminders: %w", err)
	}

	for _, rem := range due {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}

		to, err := notify.NormalizePhone(rem.ClientPhone)
		if err != nil {
			j.logger.Error("bad client phone", "appointment_id", rem.AppointmentID, "err", err)
			j.markFailed(ctx, rem.AppointmentID, "invalid phone: "+err.Error())
			summary.Failed++
			continue
		}

		body := fmt.Sprintf("Hi %s! Reminder: %s tomorrow at %s at Shirel Beauty. See you!",
			rem.ClientName, rem.ServiceName, rem.StartUTC.In(j.loc).Format("15:04"))

		if err := j.sender.Send(ctx, to, body); err != nil {
			j.logger.Error("reminder send failed",
				"appointment_id", rem.AppointmentID, "provider", j.sender.ProviderID(), "err", err)
			j.markFailed(ctx, rem.AppointmentID, err.Error())
			summary.Failed++
			continue
		}

		if err := j.store.MarkSent(ctx, rem.AppointmentID, j.now()); err != nil {
			// Delivered but unmarked: a rerun would resend. Log loudly and count
			// it as sent rather than retrying the SMS.
			j.logger.Error("mark sent failed", "appointment_id", rem.AppointmentID, "err", err)
		}
		summary.Sent++
	}

	j.logger.Info("reminder run finished", "date", summary.Date, "sent", summary.Sent, "failed", summary.Failed)
	j.notifyOwner(ctx, summary)
	return summary, nil
}

// RunDaily blocks until ctx is done, firing Run once per local day at the
// configured hour for the following day's appointments.
func (j *Job) RunDaily(ctx context.Context) {
	for {
		next := j.nextFire()
		j.logger.Info("next reminder run scheduled", "at", next.Format(time.RFC3339))

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		tomorrow := j.now().In(j.loc).AddDate(0, 0, 1)
		if _, err := j.Run(ctx, tomorrow); err != nil && ctx.Err() == nil {
			j.logger.Error("reminder run failed", "err", err)
		}
	}
}

func (j *Job) nextFire() time.Time {
	now := j.now().In(j.loc)
	fire := time.Date(now.Year(), now.Month(), now.Day(), j.hour, 0, 0, 0, j.loc)
	if !fire.After(now) {
		fire = fire.AddDate(0, 0, 1)
	}
	return fire
}

func (j *Job) markFailed(ctx context.Context, appointmentID string, reason string) {
	if err := j.store.MarkFailed(ctx, appointmentID, reason); err != nil {
		j.logger.Error("mark failed failed", "appointment_id", appointmentID, "err", err)
	}
}

func (j *Job) notifyOwner(ctx context.Context, s Summary) {
	text := fmt.Sprintf("Reminders for %s: %d sent, %d failed", s.Date, s.Sent, s.Failed)
	if err := j.owner.Notify(ctx, text); err != nil {
		j.logger.Error("owner summary failed", "err", err)
	}
}
