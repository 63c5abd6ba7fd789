package realtime

import (
	"sync"

	"github.com/google/uuid"

	"github.com/eccleston-labs/lfg-hackathon/models"
)

// Notification is one message pushed to a streaming client.
type Notification struct {
	Type     string               `json:"type"` // "new_report" or "photos_updated"
	Report   *models.Report       `json:"report,omitempty"`
	ReportID uuid.UUID            `json:"report_id,omitempty"`
	Photos   []models.ReportPhoto `json:"photos,omitempty"`
}

// Hub fans notifications out to streaming subscribers (SSE clients). A
// slow client's buffer overflowing drops messages for that client only.
type Hub struct {
	mu      sync.Mutex
	clients map[chan Notification]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[chan Notification]struct{})}
}

// Register adds a streaming client and returns its channel.
func (h *Hub) Register() chan Notification {
	ch := make(chan Notification, 16)
	h.mu.Lock()
	h.clients[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

// Unregister removes a client and closes its channel.
func (h *Hub) Unregister(ch chan Notification) {
	h.mu.Lock()
	if _, ok := h.clients[ch]; ok {
		delete(h.clients, ch)
		close(ch)
	}
	h.mu.Unlock()
}

// HandleNewReport implements Handler.
func (h *Hub) HandleNewReport(report models.Report) {
	h.broadcast(Notification{Type: "new_report", Report: &report})
}

// HandlePhotosUpdated implements Handler.
func (h *Hub) HandlePhotosUpdated(reportID uuid.UUID, photos []models.ReportPhoto) {
	h.broadcast(Notification{Type: "photos_updated", ReportID: reportID, Photos: photos})
}

func (h *Hub) broadcast(n Notification) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.clients {
		select {
		case ch <- n:
		default:
		}
	}
}
