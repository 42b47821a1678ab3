package storage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Michael-Aga/shirel-beauty/libs/db"
	"github.com/Michael-Aga/shirel-beauty/libs/outbox"
	"github.com/Michael-Aga/shirel-beauty/services/reminder-service/internal/reminder"
)

// ReminderStore reads due appointments and records reminder outcomes,
// emitting notification events through the shared outbox.
type ReminderStore struct {
	pool   *db.Pool
	outbox *outbox.Repository
}

func NewReminderStore(pool *db.Pool, outboxRepo *outbox.Repository) *ReminderStore {
	return &ReminderStore{pool: pool, outbox: outboxRepo}
}

func (s *ReminderStore) DueReminders(ctx context.Context, fromUTC, toUTC time.Time) ([]reminder.Reminder, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT a.id, svc.name, a.client_name, a.client_phone, a.start_utc
		FROM appointments a
		JOIN services svc ON svc.id = a.service_id
		WHERE a.status = 'confirmed'
		  AND a.reminder_sent_at IS NULL
		  AND a.start_utc >= $1 AND a.start_utc < $2
		ORDER BY a.start_utc
	`, fromUTC, toUTC)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var due []reminder.Reminder
	for rows.Next() {
		var r reminder.Reminder
		if err := rows.Scan(&r.AppointmentID, &r.ServiceName, &r.ClientName, &r.ClientPhone, &r.StartUTC); err != nil {
			return nil, err
		}
		due = append(due, r)
	}
	return due, rows.Err()
}

func (s *ReminderStore) MarkSent(ctx context.Context, appointmentID string, at time.Time) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
		UPDATE appointments SET reminder_sent_at = $2 WHERE id = $1
	`, appointmentID, at.UTC()); err != nil {
		return err
	}
	if err := s.insertEvent(ctx, tx, "notification.reminder.sent.v1", appointmentID, map[string]any{
		"appointment_id": appointmentID,
		"sent_at":        at.UTC().Format(time.RFC3339),
	}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// MarkFailed leaves reminder_sent_at NULL so the next run retries delivery.
func (s *ReminderStore) MarkFailed(ctx context.Context, appointmentID string, reason string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := s.insertEvent(ctx, tx, "notification.reminder.failed.v1", appointmentID, map[string]any{
		"appointment_id": appointmentID,
		"reason":         reason,
	}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *ReminderStore) insertEvent(ctx context.Context, tx pgx.Tx, eventType string, appointmentID string, fields map[string]any) error {
	payload, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	return s.outbox.Insert(ctx, tx, outbox.Event{
		AggregateType: "appointment",
		AggregateID:   appointmentID,
		EventType:     eventType,
		Payload:       payload,
	})
}
