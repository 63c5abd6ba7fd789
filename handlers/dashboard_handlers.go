package handlers

import (
	"net/http"
)

// GetDashboard returns aggregate statistics over all reports.
// GET /api/v1/dashboard
func (a *API) GetDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := a.Store.Stats(r.Context())
	if err != nil {
		http.Error(w, "Failed to compute statistics", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
