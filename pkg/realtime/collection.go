package realtime

import (
	"sync"

	"github.com/google/uuid"

	"github.com/eccleston-labs/lfg-hackathon/models"
)

// Collection is the live in-memory report set, newest first. It keys by
// report id and merges on insert, so a client's own submission arriving
// again over the stream never produces a duplicate entry.
type Collection struct {
	mu      sync.RWMutex
	order   []uuid.UUID
	reports map[uuid.UUID]models.Report
}

// NewCollection creates an empty collection.
func NewCollection() *Collection {
	return &Collection{reports: make(map[uuid.UUID]models.Report)}
}

// Replace swaps in a full load. Input order is preserved and assumed
// newest-first.
func (c *Collection) Replace(reports []models.Report) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order = c.order[:0]
	c.reports = make(map[uuid.UUID]models.Report, len(reports))
	for _, r := range reports {
		c.order = append(c.order, r.ID)
		c.reports[r.ID] = r
	}
}

// HandleNewReport implements Handler. A report already present is updated
// in place; a new one is prepended, preserving newest-first order by
// construction.
func (c *Collection) HandleNewReport(report models.Report) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.reports[report.ID]; !ok {
		c.order = append([]uuid.UUID{report.ID}, c.order...)
	}
	c.reports[report.ID] = report
}

// HandlePhotosUpdated implements Handler. The photo list is replaced
// wholesale, never appended, so replaying the same notification leaves
// the list unchanged.
func (c *Collection) HandlePhotosUpdated(reportID uuid.UUID, photos []models.ReportPhoto) {
	c.mu.Lock()
	defer c.mu.Unlock()
	report, ok := c.reports[reportID]
	if !ok {
		return
	}
	report.Photos = photos
	c.reports[reportID] = report
}

// Snapshot returns the reports newest first.
func (c *Collection) Snapshot() []models.Report {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Report, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.reports[id])
	}
	return out
}

// Get returns one report by id.
func (c *Collection) Get(id uuid.UUID) (models.Report, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.reports[id]
	return r, ok
}

// Len returns the number of reports held.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}
