package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Michael-Aga/shirel-beauty/libs/outbox"
	"github.com/Michael-Aga/shirel-beauty/services/booking-service/internal/booking"
	"github.com/Michael-Aga/shirel-beauty/services/booking-service/internal/model"
	"github.com/Michael-Aga/shirel-beauty/services/booking-service/internal/schedule"
	"github.com/Michael-Aga/shirel-beauty/services/booking-service/internal/storage"
)

type createAppointmentRequest struct {
	ServiceID   string `json:"service_id"`
	Start       string `json:"start"`
	ClientName  string `json:"client_name"`
	ClientPhone string `json:"client_phone"`
}

type cancelAppointmentRequest struct {
	AppointmentID string `json:"appointment_id"`
}

type cancelAppointmentResponse struct {
	Appointment appointmentItem `json:"appointment"`
	PenaltyDue  int             `json:"penalty_due"`
}

type rescheduleAppointmentRequest struct {
	AppointmentID string `json:"appointment_id"`
	NewStart      string `json:"new_start"`
}

// Appointments routes list and create on one path; the two state
// transitions live on /cancel and /reschedule.
func (h *Handler) Appointments(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listAppointments(w, r)
	case http.MethodPost:
		h.createAppointment(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) listAppointments(w http.ResponseWriter, r *http.Request) {
	var fromUTC, toUTC *time.Time
	if dateStr := strings.TrimSpace(r.URL.Query().Get("date")); dateStr != "" {
		date, err := schedule.ParseDate(dateStr, h.cfg.Location)
		if err != nil {
			writeInvalid(w, "date must be YYYY-MM-DD")
			return
		}
		from, to := schedule.LocalDayUTC(date, h.cfg.Location)
		fromUTC, toUTC = &from, &to
	}

	appts, err := h.repo.ListAppointments(r.Context(), fromUTC, toUTC)
	if err != nil {
		h.logger.Error("list appointments failed", "err", err)
		http.Error(w, "failed to list appointments", http.StatusInternalServerError)
		return
	}

	items := make([]appointmentItem, 0, len(appts))
	for _, a := range appts {
		items = append(items, toAppointmentItem(a))
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) createAppointment(w http.ResponseWriter, r *http.Request) {
	var req createAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalid(w, "invalid json body")
		return
	}
	req.ServiceID = strings.TrimSpace(req.ServiceID)
	req.ClientName = strings.TrimSpace(req.ClientName)
	req.ClientPhone = strings.TrimSpace(req.ClientPhone)
	if req.ServiceID == "" || req.ClientName == "" || req.ClientPhone == "" || req.Start == "" {
		writeInvalid(w, "service_id, start, client_name and client_phone are required")
		return
	}
	if uuid.Validate(req.ServiceID) != nil {
		writeBookingError(w, booking.Errorf(booking.ReasonNotFound, "service not found"))
		return
	}

	ctx := r.Context()
	svc, err := h.repo.GetService(ctx, req.ServiceID)
	if err != nil {
		if storage.IsNotFound(err) {
			writeBookingError(w, booking.Errorf(booking.ReasonNotFound, "service not found"))
			return
		}
		h.logger.Error("load service failed", "err", err)
		http.Error(w, "failed to load service", http.StatusInternalServerError)
		return
	}
	if bErr := booking.CheckService(&svc); bErr != nil {
		writeBookingError(w, bErr)
		return
	}

	start, err := schedule.ParseClientTime(req.Start, h.cfg.Location)
	if err != nil {
		writeInvalid(w, "invalid start time")
		return
	}
	end := start.Add(svc.Duration())

	bErr, err := h.validateSlot(r, start, end)
	if err != nil {
		h.logger.Error("load working hours failed", "err", err)
		http.Error(w, "failed to load working hours", http.StatusInternalServerError)
		return
	}
	if bErr != nil {
		writeBookingError(w, bErr)
		return
	}

	appt := model.Appointment{
		ID:          uuid.NewString(),
		ServiceID:   svc.ID,
		ClientName:  req.ClientName,
		ClientPhone: req.ClientPhone,
		StartUTC:    start.UTC(),
		EndUTC:      end.UTC(),
		Status:      model.StatusConfirmed,
	}

	tx, err := h.repo.Begin(ctx)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Conflict check and insert are atomic under the per-service lock, so
	// two callers cannot both observe a free slot and both insert.
	if bErr := h.checkConflictLocked(ctx, tx, svc.ID, appt.StartUTC, appt.EndUTC, ""); bErr != nil {
		writeBookingError(w, bErr)
		return
	}
	if err := h.repo.InsertAppointment(ctx, tx, appt); err != nil {
		h.logger.Error("insert appointment failed", "err", err)
		http.Error(w, "failed to create appointment", http.StatusInternalServerError)
		return
	}
	if err := h.emitAppointmentEvent(ctx, tx, "booking.appointment.booked.v1", appt, nil); err != nil {
		http.Error(w, "failed to write outbox event", http.StatusInternalServerError)
		return
	}
	if err := tx.Commit(ctx); err != nil {
		http.Error(w, "failed to commit", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, toAppointmentItem(appt))
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req cancelAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalid(w, "invalid json body")
		return
	}
	req.AppointmentID = strings.TrimSpace(req.AppointmentID)
	if req.AppointmentID == "" {
		writeInvalid(w, "appointment_id is required")
		return
	}
	if uuid.Validate(req.AppointmentID) != nil {
		writeBookingError(w, booking.Errorf(booking.ReasonNotFound, "appointment not found"))
		return
	}

	ctx := r.Context()
	tx, err := h.repo.Begin(ctx)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	appt, err := h.repo.GetAppointmentForUpdate(ctx, tx, req.AppointmentID)
	if err != nil {
		if storage.IsNotFound(err) {
			writeBookingError(w, booking.Errorf(booking.ReasonNotFound, "appointment not found"))
			return
		}
		h.logger.Error("load appointment failed", "err", err)
		http.Error(w, "failed to load appointment", http.StatusInternalServerError)
		return
	}
	if bErr := booking.CheckCancellable(&appt); bErr != nil {
		writeBookingError(w, bErr)
		return
	}

	svc, err := h.repo.GetService(ctx, appt.ServiceID)
	if err != nil {
		h.logger.Error("load service failed", "err", err)
		http.Error(w, "failed to load service", http.StatusInternalServerError)
		return
	}
	penalty := booking.CancellationPenalty(svc.Price, appt.StartUTC, h.now())

	if err := h.repo.CancelAppointment(ctx, tx, appt.ID); err != nil {
		h.logger.Error("cancel appointment failed", "err", err)
		http.Error(w, "failed to cancel appointment", http.StatusInternalServerError)
		return
	}
	appt.Status = model.StatusCancelled

	if err := h.emitAppointmentEvent(ctx, tx, "booking.appointment.cancelled.v1", appt, map[string]any{
		"penalty_due": penalty,
	}); err != nil {
		http.Error(w, "failed to write outbox event", http.StatusInternalServerError)
		return
	}
	if err := tx.Commit(ctx); err != nil {
		http.Error(w, "failed to commit", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, cancelAppointmentResponse{
		Appointment: toAppointmentItem(appt),
		PenaltyDue:  penalty,
	})
}

func (h *Handler) Reschedule(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req rescheduleAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalid(w, "invalid json body")
		return
	}
	req.AppointmentID = strings.TrimSpace(req.AppointmentID)
	if req.AppointmentID == "" || strings.TrimSpace(req.NewStart) == "" {
		writeInvalid(w, "appointment_id and new_start are required")
		return
	}
	if uuid.Validate(req.AppointmentID) != nil {
		writeBookingError(w, booking.Errorf(booking.ReasonNotFound, "appointment not found"))
		return
	}

	newStart, err := schedule.ParseClientTime(req.NewStart, h.cfg.Location)
	if err != nil {
		writeInvalid(w, "invalid new_start time")
		return
	}

	ctx := r.Context()
	tx, err := h.repo.Begin(ctx)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	appt, err := h.repo.GetAppointmentForUpdate(ctx, tx, req.AppointmentID)
	if err != nil {
		if storage.IsNotFound(err) {
			writeBookingError(w, booking.Errorf(booking.ReasonNotFound, "appointment not found"))
			return
		}
		h.logger.Error("load appointment failed", "err", err)
		http.Error(w, "failed to load appointment", http.StatusInternalServerError)
		return
	}
	if bErr := booking.CheckReschedulable(&appt); bErr != nil {
		writeBookingError(w, bErr)
		return
	}

	svc, err := h.repo.GetService(ctx, appt.ServiceID)
	if err != nil {
		h.logger.Error("load service failed", "err", err)
		http.Error(w, "failed to load service", http.StatusInternalServerError)
		return
	}
	if bErr := booking.CheckService(&svc); bErr != nil {
		writeBookingError(w, bErr)
		return
	}

	newEnd := newStart.Add(svc.Duration())
	bErr, err := h.validateSlot(r, newStart, newEnd)
	if err != nil {
		h.logger.Error("load working hours failed", "err", err)
		http.Error(w, "failed to load working hours", http.StatusInternalServerError)
		return
	}
	if bErr != nil {
		writeBookingError(w, bErr)
		return
	}

	// The moved appointment is excluded from its own conflict set, so
	// rescheduling to the current time succeeds.
	if bErr := h.checkConflictLocked(ctx, tx, svc.ID, newStart.UTC(), newEnd.UTC(), appt.ID); bErr != nil {
		writeBookingError(w, bErr)
		return
	}
	if err := h.repo.UpdateAppointmentTimes(ctx, tx, appt.ID, newStart.UTC(), newEnd.UTC()); err != nil {
		h.logger.Error("update appointment failed", "err", err)
		http.Error(w, "failed to reschedule appointment", http.StatusInternalServerError)
		return
	}
	prevStart := appt.StartUTC
	appt.StartUTC = newStart.UTC()
	appt.EndUTC = newEnd.UTC()

	if err := h.emitAppointmentEvent(ctx, tx, "booking.appointment.rescheduled.v1", appt, map[string]any{
		"previous_start": prevStart.UTC().Format(time.RFC3339),
	}); err != nil {
		http.Error(w, "failed to write outbox event", http.StatusInternalServerError)
		return
	}
	if err := tx.Commit(ctx); err != nil {
		http.Error(w, "failed to commit", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, toAppointmentItem(appt))
}

// DevClearAppointments bulk-deletes appointments, optionally one local day.
// Disabled unless DEV_ENDPOINTS_ENABLED is set; never part of normal flows.
func (h *Handler) DevClearAppointments(w http.ResponseWriter, r *http.Request) {
	if !h.devEnabled {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodDelete {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var fromUTC, toUTC *time.Time
	if dateStr := strings.TrimSpace(r.URL.Query().Get("date")); dateStr != "" {
		date, err := schedule.ParseDate(dateStr, h.cfg.Location)
		if err != nil {
			writeInvalid(w, "date must be YYYY-MM-DD")
			return
		}
		from, to := schedule.LocalDayUTC(date, h.cfg.Location)
		fromUTC, toUTC = &from, &to
	}

	deleted, err := h.repo.DeleteAppointments(r.Context(), fromUTC, toUTC)
	if err != nil {
		h.logger.Error("bulk delete failed", "err", err)
		http.Error(w, "failed to delete appointments", http.StatusInternalServerError)
		return
	}
	h.logger.Info("appointments cleared", "deleted", deleted)
	w.WriteHeader(http.StatusNoContent)
}

// validateSlot runs the shared lead-time and working-window checks for a
// localized start/end pair.
func (h *Handler) validateSlot(r *http.Request, start, end time.Time) (*booking.Error, error) {
	startLocal := start.In(h.cfg.Location)

	if bErr := booking.CheckLeadTime(startLocal, h.now().In(h.cfg.Location), h.cfg.Lead); bErr != nil {
		return bErr, nil
	}

	ov, err := h.overrideForDate(r, startLocal)
	if err != nil {
		return nil, err
	}
	windowStart, windowEnd, open := schedule.ResolveWindow(startLocal, ov, h.cfg.Location)
	return booking.CheckWindow(startLocal, end.In(h.cfg.Location), windowStart, windowEnd, open), nil
}

func (h *Handler) checkConflictLocked(ctx context.Context, tx pgx.Tx, serviceID string, startUTC, endUTC time.Time, excludeID string) *booking.Error {
	if err := h.repo.LockServiceLine(ctx, tx, serviceID); err != nil {
		h.logger.Error("service lock failed", "err", err)
		return booking.Errorf(booking.ReasonSlotConflict, "slot is unavailable")
	}
	conflicts, err := h.repo.CountConflicts(ctx, tx, serviceID, startUTC, endUTC, h.cfg.Buffer, excludeID)
	if err != nil {
		h.logger.Error("conflict check failed", "err", err)
		return booking.Errorf(booking.ReasonSlotConflict, "slot is unavailable")
	}
	if conflicts > 0 {
		return booking.Errorf(booking.ReasonSlotConflict, "this time is already booked, please pick another slot")
	}
	return nil
}

func (h *Handler) emitAppointmentEvent(ctx context.Context, tx pgx.Tx, eventType string, appt model.Appointment, extra map[string]any) error {
	fields := map[string]any{
		"appointment_id": appt.ID,
		"service_id":     appt.ServiceID,
		"client_name":    appt.ClientName,
		"client_phone":   appt.ClientPhone,
		"start":          appt.StartUTC.UTC().Format(time.RFC3339),
		"end":            appt.EndUTC.UTC().Format(time.RFC3339),
		"status":         appt.Status,
	}
	for k, v := range extra {
		fields[k] = v
	}
	payload, err := json.Marshal(fields)
	if err != nil {
		h.logger.Error("build event payload failed", "err", err)
		return err
	}
	if err := h.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "appointment",
		AggregateID:   appt.ID,
		EventType:     eventType,
		Payload:       payload,
	}); err != nil {
		h.logger.Error("outbox insert failed", "err", err)
		return err
	}
	return nil
}
