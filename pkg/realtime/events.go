// Package realtime consumes insert change events for reports and photos
// and fans enriched notifications out to live consumers.
package realtime

import (
	"context"

	"github.com/google/uuid"

	"github.com/eccleston-labs/lfg-hackathon/models"
)

// Channel names for the change-event stream. One channel per table.
const (
	ChannelReportInsert = "reports.insert"
	ChannelPhotoInsert  = "report_photos.insert"
)

// Event is one change-event delivered on the stream. Only INSERT events
// are produced; the payload carries row identity, consumers re-fetch the
// rest.
type Event struct {
	Channel  string    `json:"channel"`
	ID       uuid.UUID `json:"id"`
	ReportID uuid.UUID `json:"report_id,omitempty"`
}

// Publisher pushes change events onto the stream after a successful
// insert.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// EventSource delivers change events from the stream. Delivery order
// follows the underlying stream; no deduplication is performed.
type EventSource interface {
	Subscribe(ctx context.Context, channels ...string) (<-chan Event, error)
	Close() error
}

// DataSource fetches current rows to enrich an event before notifying
// consumers.
type DataSource interface {
	GetReport(ctx context.Context, id uuid.UUID) (*models.Report, error)
	PhotosByReport(ctx context.Context, reportID uuid.UUID) ([]models.ReportPhoto, error)
}

// Handler receives enriched notifications.
type Handler interface {
	// HandleNewReport delivers a newly inserted report together with its
	// current photo set (possibly empty).
	HandleNewReport(report models.Report)
	// HandlePhotosUpdated delivers the complete photo set for a report
	// after a photo insert. Consumers replace their list wholesale, so a
	// redelivered event is a no-op.
	HandlePhotosUpdated(reportID uuid.UUID, photos []models.ReportPhoto)
}
