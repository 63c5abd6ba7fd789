package handlers

import (
	"encoding/json"
	"net/http"
	"time"
)

// LiveReports serves the in-memory collection kept current by the
// realtime subscriber: the full load at startup merged with every insert
// notification since, newest first.
// GET /api/v1/reports/live
func (a *API) LiveReports(w http.ResponseWriter, r *http.Request) {
	reports := a.Live.Snapshot()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"reports": reports,
		"count":   len(reports),
	})
}

// StreamReports pushes realtime report notifications via Server-Sent
// Events. Each connected client gets every "new_report" and
// "photos_updated" notification until it disconnects.
// GET /api/v1/reports/stream
func (a *API) StreamReports(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	// Set headers for SSE
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := a.Hub.Register()
	defer a.Hub.Unregister(ch)

	w.Write([]byte("data: {\"type\":\"connected\"}\n\n"))
	flusher.Flush()

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case n, open := <-ch:
			if !open {
				return
			}
			payload, err := json.Marshal(n)
			if err != nil {
				continue
			}
			w.Write([]byte("data: "))
			w.Write(payload)
			w.Write([]byte("\n\n"))
			flusher.Flush()
		case <-ticker.C:
			// Send heartbeat
			w.Write([]byte("data: {\"type\":\"heartbeat\"}\n\n"))
			flusher.Flush()
		case <-r.Context().Done():
			// Client disconnected
			return
		}
	}
}
