package storage

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Michael-Aga/shirel-beauty/services/booking-service/internal/availability"
	"github.com/Michael-Aga/shirel-beauty/services/booking-service/internal/model"
)

const appointmentColumns = `
	id, service_id, client_name, client_phone, start_utc, end_utc, status, reminder_sent_at, created_at`

func scanAppointment(row pgx.Row) (model.Appointment, error) {
	var a model.Appointment
	err := row.Scan(&a.ID, &a.ServiceID, &a.ClientName, &a.ClientPhone,
		&a.StartUTC, &a.EndUTC, &a.Status, &a.ReminderSentAt, &a.CreatedAt)
	return a, err
}

// LockServiceLine serializes slot-mutating work per service for the
// duration of the transaction, so conflict-check-then-write is atomic with
// respect to concurrent writers on the same booking line.
func (r *Repository) LockServiceLine(ctx context.Context, tx pgx.Tx, serviceID string) error {
	_, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, serviceID)
	return err
}

// CountConflicts counts confirmed same-service appointments whose interval,
// extended by the post-appointment buffer, overlaps the candidate. The
// buffer applies only after existing appointments. excludeID keeps a
// rescheduled appointment from conflicting with itself.
func (r *Repository) CountConflicts(ctx context.Context, tx pgx.Tx, serviceID string, startUTC, endUTC time.Time, buffer time.Duration, excludeID string) (int, error) {
	var count int
	err := tx.QueryRow(ctx, `
		SELECT count(*)
		FROM appointments
		WHERE service_id = $1
			AND status = 'confirmed'
			AND id::text <> $5
			AND start_utc < $3
			AND end_utc + make_interval(mins => $4) > $2
	`, serviceID, startUTC, endUTC, int(buffer.Minutes()), excludeID).Scan(&count)
	return count, err
}

func (r *Repository) InsertAppointment(ctx context.Context, tx pgx.Tx, appt model.Appointment) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO appointments (id, service_id, client_name, client_phone, start_utc, end_utc, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, appt.ID, appt.ServiceID, appt.ClientName, appt.ClientPhone, appt.StartUTC, appt.EndUTC, appt.Status)
	return err
}

func (r *Repository) GetAppointmentForUpdate(ctx context.Context, tx pgx.Tx, id string) (model.Appointment, error) {
	return scanAppointment(tx.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1
		FOR UPDATE
	`, id))
}

func (r *Repository) CancelAppointment(ctx context.Context, tx pgx.Tx, id string) error {
	_, err := tx.Exec(ctx, `
		UPDATE appointments
		SET status = 'cancelled'
		WHERE id = $1
	`, id)
	return err
}

func (r *Repository) UpdateAppointmentTimes(ctx context.Context, tx pgx.Tx, id string, startUTC, endUTC time.Time) error {
	_, err := tx.Exec(ctx, `
		UPDATE appointments
		SET start_utc = $2, end_utc = $3
		WHERE id = $1
	`, id, startUTC, endUTC)
	return err
}

// BusyIntervals returns the confirmed same-service intervals overlapping
// [fromUTC, toUTC), ordered by start. Cancelled appointments never block.
func (r *Repository) BusyIntervals(ctx context.Context, serviceID string, fromUTC, toUTC time.Time, excludeID string) ([]availability.Interval, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT start_utc, end_utc
		FROM appointments
		WHERE service_id = $1
			AND status = 'confirmed'
			AND id::text <> $4
			AND start_utc < $3
			AND end_utc > $2
		ORDER BY start_utc
	`, serviceID, fromUTC, toUTC, excludeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var busy []availability.Interval
	for rows.Next() {
		var iv availability.Interval
		if err := rows.Scan(&iv.Start, &iv.End); err != nil {
			return nil, err
		}
		busy = append(busy, iv)
	}
	return busy, rows.Err()
}

// ListAppointments lists appointments ordered by start, optionally limited
// to starts within [fromUTC, toUTC).
func (r *Repository) ListAppointments(ctx context.Context, fromUTC, toUTC *time.Time) ([]model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments`
	args := []any{}
	if fromUTC != nil && toUTC != nil {
		query += ` WHERE start_utc >= $1 AND start_utc < $2`
		args = append(args, *fromUTC, *toUTC)
	}
	query += ` ORDER BY start_utc`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var appts []model.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		appts = append(appts, a)
	}
	return appts, rows.Err()
}

// DeleteAppointments bulk-clears appointments, optionally only those
// starting within [fromUTC, toUTC). Dev escape hatch, not a normal flow.
func (r *Repository) DeleteAppointments(ctx context.Context, fromUTC, toUTC *time.Time) (int64, error) {
	if fromUTC != nil && toUTC != nil {
		tag, err := r.pool.Exec(ctx, `
			DELETE FROM appointments WHERE start_utc >= $1 AND start_utc < $2
		`, *fromUTC, *toUTC)
		return tag.RowsAffected(), err
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM appointments`)
	return tag.RowsAffected(), err
}
