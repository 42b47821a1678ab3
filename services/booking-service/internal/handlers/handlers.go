package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/Michael-Aga/shirel-beauty/libs/outbox"
	"github.com/Michael-Aga/shirel-beauty/services/booking-service/internal/booking"
	"github.com/Michael-Aga/shirel-beauty/services/booking-service/internal/model"
	"github.com/Michael-Aga/shirel-beauty/services/booking-service/internal/schedule"
	"github.com/Michael-Aga/shirel-beauty/services/booking-service/internal/storage"
)

type Handler struct {
	repo       *storage.Repository
	outboxRepo *outbox.Repository
	logger     *slog.Logger
	cfg        schedule.Config
	now        func() time.Time
	devEnabled bool
}

type Option func(*Handler)

// WithClock overrides the handler clock, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) { h.now = now }
}

func WithDevEndpoints(enabled bool) Option {
	return func(h *Handler) { h.devEnabled = enabled }
}

func New(repo *storage.Repository, outboxRepo *outbox.Repository, logger *slog.Logger, cfg schedule.Config, opts ...Option) *Handler {
	h := &Handler{
		repo:       repo,
		outboxRepo: outboxRepo,
		logger:     logger,
		cfg:        cfg,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

type errorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "failed to build response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// writeBookingError maps the booking error taxonomy onto HTTP statuses.
// Conflict-class reasons get 409 so clients can offer "pick another slot".
func writeBookingError(w http.ResponseWriter, err *booking.Error) {
	status := http.StatusBadRequest
	switch err.Reason {
	case booking.ReasonNotFound, booking.ReasonInactiveService:
		status = http.StatusNotFound
	case booking.ReasonLeadTime:
		status = http.StatusUnprocessableEntity
	case booking.ReasonDayClosed, booking.ReasonOutsideHours, booking.ReasonSlotConflict, booking.ReasonInvalidState:
		status = http.StatusConflict
	}
	writeJSON(w, status, errorResponse{Error: err.Message, Reason: string(err.Reason)})
}

func writeInvalid(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg, Reason: string(booking.ReasonInvalidInput)})
}

type appointmentItem struct {
	AppointmentID string `json:"appointment_id"`
	ServiceID     string `json:"service_id"`
	ClientName    string `json:"client_name"`
	ClientPhone   string `json:"client_phone"`
	Start         string `json:"start"`
	End           string `json:"end"`
	Status        string `json:"status"`
	CreatedAt     string `json:"created_at"`
}

func toAppointmentItem(a model.Appointment) appointmentItem {
	return appointmentItem{
		AppointmentID: a.ID,
		ServiceID:     a.ServiceID,
		ClientName:    a.ClientName,
		ClientPhone:   a.ClientPhone,
		Start:         a.StartUTC.UTC().Format(time.RFC3339),
		End:           a.EndUTC.UTC().Format(time.RFC3339),
		Status:        a.Status,
		CreatedAt:     a.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// overrideForDate loads the day override for a local date, mapping "no row"
// to nil so schedule.ResolveWindow falls back to the default window.
func (h *Handler) overrideForDate(r *http.Request, localDate time.Time) (*schedule.Override, error) {
	ov, err := h.repo.GetOverride(r.Context(), localDate.Format(schedule.DateLayout))
	if err != nil {
		if storage.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &schedule.Override{IsClosed: ov.IsClosed, OpenMin: ov.OpenMin, CloseMin: ov.CloseMin}, nil
}
