// ABOUTME: HTTP handler for the health endpoint
// ABOUTME: Reports the configured scheduler and catalog size

package handlers

import (
	"net/http"

	"github.com/markalston/hived-validator/models"
)

// Health returns API health status. It does not contact the scheduler.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := models.HealthResponse{
		Status:         "ok",
		HivedScheduler: "not_configured",
		ResourceUnits:  len(h.units),
	}
	if h.cfg != nil && h.cfg.HivedSchedulerURL != "" {
		resp.HivedScheduler = h.cfg.HivedSchedulerURL
	}
	if len(h.units) == 0 {
		resp.Status = "degraded"
	}

	h.writeJSON(w, http.StatusOK, resp)
}
