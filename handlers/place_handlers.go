package handlers

import (
	"net/http"
	"strconv"
)

// SearchPlaces proxies a free-text place search.
// GET /api/v1/places?q=
func (a *API) SearchPlaces(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		http.Error(w, "q parameter required", http.StatusBadRequest)
		return
	}

	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	places, err := a.Places.Search(r.Context(), query, limit)
	if err != nil {
		http.Error(w, "Place search failed", http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"places": places,
		"count":  len(places),
	})
}
