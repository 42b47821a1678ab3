package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Michael-Aga/shirel-beauty/services/booking-service/internal/availability"
	"github.com/Michael-Aga/shirel-beauty/services/booking-service/internal/booking"
	"github.com/Michael-Aga/shirel-beauty/services/booking-service/internal/schedule"
	"github.com/Michael-Aga/shirel-beauty/services/booking-service/internal/storage"
)

type slotItem struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Label string `json:"label"`
}

type availabilityResponse struct {
	Slots []slotItem `json:"slots"`
}

// Availability returns the bookable slots for one service on one local day,
// chronologically ordered. Closed days and windows too small for the
// service duration yield an empty list.
func (h *Handler) Availability(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	serviceID := strings.TrimSpace(r.URL.Query().Get("service_id"))
	dateStr := strings.TrimSpace(r.URL.Query().Get("date"))
	if serviceID == "" || dateStr == "" {
		writeInvalid(w, "service_id and date are required")
		return
	}
	if uuid.Validate(serviceID) != nil {
		writeBookingError(w, booking.Errorf(booking.ReasonNotFound, "service not found"))
		return
	}

	svc, err := h.repo.GetService(r.Context(), serviceID)
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

	date, err := schedule.ParseDate(dateStr, h.cfg.Location)
	if err != nil {
		writeInvalid(w, "date must be YYYY-MM-DD")
		return
	}

	ov, err := h.overrideForDate(r, date)
	if err != nil {
		h.logger.Error("load override failed", "err", err)
		http.Error(w, "failed to load working hours", http.StatusInternalServerError)
		return
	}

	resp := availabilityResponse{Slots: []slotItem{}}
	windowStart, windowEnd, open := schedule.ResolveWindow(date, ov, h.cfg.Location)
	if !open {
		writeJSON(w, http.StatusOK, resp)
		return
	}

	// Fetch one buffer length before the window so an appointment ending
	// just before opening still blocks the first slots.
	busy, err := h.repo.BusyIntervals(r.Context(),
		svc.ID, windowStart.Add(-h.cfg.Buffer).UTC(), windowEnd.UTC(), "")
	if err != nil {
		h.logger.Error("load busy intervals failed", "err", err)
		http.Error(w, "failed to load appointments", http.StatusInternalServerError)
		return
	}

	earliest := h.now().In(h.cfg.Location).Add(h.cfg.Lead)
	slots := availability.Slots(windowStart, windowEnd, svc.Duration(), h.cfg.SlotStep, h.cfg.Buffer, busy, earliest)
	for _, s := range slots {
		local := s.Start.In(h.cfg.Location)
		resp.Slots = append(resp.Slots, slotItem{
			Start: local.Format(time.RFC3339),
			End:   s.End.In(h.cfg.Location).Format(time.RFC3339),
			Label: local.Format("15:04"),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
