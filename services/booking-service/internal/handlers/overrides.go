package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Michael-Aga/shirel-beauty/services/booking-service/internal/booking"
	"github.com/Michael-Aga/shirel-beauty/services/booking-service/internal/model"
	"github.com/Michael-Aga/shirel-beauty/services/booking-service/internal/schedule"
	"github.com/Michael-Aga/shirel-beauty/services/booking-service/internal/storage"
)

type overrideItem struct {
	Date      string  `json:"date"`
	IsClosed  bool    `json:"is_closed"`
	StartTime *string `json:"start_time"`
	EndTime   *string `json:"end_time"`
}

type upsertOverrideRequest struct {
	Date      string `json:"date"`
	IsClosed  bool   `json:"is_closed"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

func toOverrideItem(ov model.DayOverride) overrideItem {
	item := overrideItem{Date: ov.Date, IsClosed: ov.IsClosed}
	if !ov.IsClosed {
		start := schedule.TimeOfDay(ov.OpenMin).String()
		end := schedule.TimeOfDay(ov.CloseMin).String()
		item.StartTime = &start
		item.EndTime = &end
	}
	return item
}

// Overrides manages per-day working hour exceptions: list a month, upsert a
// day, or remove a day back to the default window.
func (h *Handler) Overrides(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listOverrides(w, r)
	case http.MethodPut:
		h.upsertOverride(w, r)
	case http.MethodDelete:
		h.deleteOverride(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) listOverrides(w http.ResponseWriter, r *http.Request) {
	month := strings.TrimSpace(r.URL.Query().Get("month"))
	if month == "" {
		writeInvalid(w, "month is required, format YYYY-MM")
		return
	}
	from, to, err := schedule.MonthBounds(month, h.cfg.Location)
	if err != nil {
		writeInvalid(w, "month must be YYYY-MM")
		return
	}

	overrides, err := h.repo.ListOverrides(r.Context(),
		from.Format(schedule.DateLayout), to.Format(schedule.DateLayout))
	if err != nil {
		h.logger.Error("list overrides failed", "err", err)
		http.Error(w, "failed to list overrides", http.StatusInternalServerError)
		return
	}

	items := make([]overrideItem, 0, len(overrides))
	for _, ov := range overrides {
		items = append(items, toOverrideItem(ov))
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) upsertOverride(w http.ResponseWriter, r *http.Request) {
	var req upsertOverrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalid(w, "invalid json body")
		return
	}
	req.Date = strings.TrimSpace(req.Date)
	if _, err := schedule.ParseDate(req.Date, h.cfg.Location); err != nil {
		writeInvalid(w, "date must be YYYY-MM-DD")
		return
	}

	ov := model.DayOverride{Date: req.Date, IsClosed: req.IsClosed}
	if !req.IsClosed {
		open, err := schedule.ParseTimeOfDay(req.StartTime)
		if err != nil {
			writeInvalid(w, "start_time must be HH:MM")
			return
		}
		closeAt, err := schedule.ParseTimeOfDay(req.EndTime)
		if err != nil {
			writeInvalid(w, "end_time must be HH:MM")
			return
		}
		if closeAt <= open {
			writeInvalid(w, "end_time must be after start_time")
			return
		}
		ov.OpenMin = int(open)
		ov.CloseMin = int(closeAt)
	}

	saved, err := h.repo.UpsertOverride(r.Context(), ov)
	if err != nil {
		h.logger.Error("upsert override failed", "err", err, "date", req.Date)
		http.Error(w, "failed to save override", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, toOverrideItem(saved))
}

func (h *Handler) deleteOverride(w http.ResponseWriter, r *http.Request) {
	date := strings.TrimSpace(r.URL.Query().Get("date"))
	if _, err := schedule.ParseDate(date, h.cfg.Location); err != nil {
		writeInvalid(w, "date must be YYYY-MM-DD")
		return
	}

	if err := h.repo.DeleteOverride(r.Context(), date); err != nil {
		if storage.IsNotFound(err) {
			writeBookingError(w, booking.Errorf(booking.ReasonNotFound, "no override for this date"))
			return
		}
		h.logger.Error("delete override failed", "err", err, "date", date)
		http.Error(w, "failed to delete override", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
