package handlers

import (
	"net/http"

	"github.com/Michael-Aga/shirel-beauty/services/booking-service/internal/model"
)

type serviceItem struct {
	ServiceID   string `json:"service_id"`
	Name        string `json:"name"`
	DurationMin int    `json:"duration_min"`
	Price       int    `json:"price"`
	Active      bool   `json:"active"`
}

func (h *Handler) Services(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	services, err := h.repo.ListActiveServices(r.Context())
	if err != nil {
		h.logger.Error("list services failed", "err", err)
		http.Error(w, "failed to list services", http.StatusInternalServerError)
		return
	}

	items := make([]serviceItem, 0, len(services))
	for _, s := range services {
		items = append(items, toServiceItem(s))
	}
	writeJSON(w, http.StatusOK, items)
}

func toServiceItem(s model.Service) serviceItem {
	return serviceItem{
		ServiceID:   s.ID,
		Name:        s.Name,
		DurationMin: s.DurationMin,
		Price:       s.Price,
		Active:      s.Active,
	}
}
