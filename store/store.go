// Package store is the persistence client for reports and their photos:
// Postgres rows via gorm, photo binaries via object storage, and change
// events published after every successful insert.
package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/eccleston-labs/lfg-hackathon/models"
	"github.com/eccleston-labs/lfg-hackathon/pkg/realtime"
)

// ErrSummarySet is returned when a summary back-fill targets a report
// whose summary was already written. The summary field transitions
// exactly once.
var ErrSummarySet = errors.New("report summary already set")

// Store issues queries against the backing database and object storage.
type Store struct {
	db      *gorm.DB
	objects ObjectStore
	events  realtime.Publisher
}

// New creates a Store. events may be nil when no change stream is wired
// (tests, one-off tooling).
func New(db *gorm.DB, objects ObjectStore, events realtime.Publisher) *Store {
	return &Store{db: db, objects: objects, events: events}
}

// CreateReport inserts a fully-validated report and publishes its insert
// event. The persisted record, including the generated id, is written
// back into report.
func (s *Store) CreateReport(ctx context.Context, report *models.Report) error {
	if strings.TrimSpace(report.RawText) == "" {
		return errors.New("report description must not be empty")
	}
	if report.ID == uuid.Nil {
		report.ID = uuid.New()
	}
	if report.Status == "" {
		report.Status = "submitted"
	}

	if err := s.db.WithContext(ctx).Create(report).Error; err != nil {
		return fmt.Errorf("create report: %w", err)
	}

	s.publish(ctx, realtime.Event{Channel: realtime.ChannelReportInsert, ID: report.ID})
	return nil
}

// GetReport fetches one report by id, photos not included.
func (s *Store) GetReport(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	var report models.Report
	if err := s.db.WithContext(ctx).First(&report, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

// ListReports returns all reports, newest first, without photos.
func (s *Store) ListReports(ctx context.Context) ([]models.Report, error) {
	var reports []models.Report
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&reports).Error; err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return reports, nil
}

// AllPhotos returns every photo row; callers join against reports by
// report id.
func (s *Store) AllPhotos(ctx context.Context) ([]models.ReportPhoto, error) {
	var photos []models.ReportPhoto
	if err := s.db.WithContext(ctx).Order("uploaded_at ASC").Find(&photos).Error; err != nil {
		return nil, fmt.Errorf("list photos: %w", err)
	}
	return photos, nil
}

// PhotosByReport returns a report's photos in upload (display) order.
func (s *Store) PhotosByReport(ctx context.Context, reportID uuid.UUID) ([]models.ReportPhoto, error) {
	var photos []models.ReportPhoto
	if err := s.db.WithContext(ctx).Where("report_id = ?", reportID).
		Order("uploaded_at ASC").Find(&photos).Error; err != nil {
		return nil, fmt.Errorf("photos for report %s: %w", reportID, err)
	}
	return photos, nil
}

// ListReportsWithPhotos loads all reports newest first and attaches each
// report's photos, joined client-side by report id.
func (s *Store) ListReportsWithPhotos(ctx context.Context) ([]models.Report, error) {
	reports, err := s.ListReports(ctx)
	if err != nil {
		return nil, err
	}

	photos, err := s.AllPhotos(ctx)
	if err != nil {
		// Continue without photos rather than failing the whole load.
		log.Printf("store: loading photos: %v", err)
		return reports, nil
	}

	byReport := make(map[uuid.UUID][]models.ReportPhoto)
	for _, p := range photos {
		byReport[p.ReportID] = append(byReport[p.ReportID], p)
	}
	for i := range reports {
		reports[i].Photos = byReport[reports[i].ID]
	}
	return reports, nil
}

// UpdateSummary back-fills the AI summary exactly once. A second write to
// the same report returns ErrSummarySet.
func (s *Store) UpdateSummary(ctx context.Context, id uuid.UUID, summary string) error {
	res := s.db.WithContext(ctx).Model(&models.Report{}).
		Where("id = ? AND ai_summary IS NULL", id).
		Update("ai_summary", summary)
	if res.Error != nil {
		return fmt.Errorf("update summary: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		var count int64
		s.db.WithContext(ctx).Model(&models.Report{}).Where("id = ?", id).Count(&count)
		if count == 0 {
			return gorm.ErrRecordNotFound
		}
		return ErrSummarySet
	}
	return nil
}

// PhotoUpload is one photo submitted for attachment.
type PhotoUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// AttachPhotos uploads each photo's bytes to object storage and records a
// row against the report. Uploads run sequentially per file. A row-insert
// failing after a successful byte upload leaves the stored object
// orphaned; that is reported as a warning, not an error, because the
// report itself is already saved.
func (s *Store) AttachPhotos(ctx context.Context, reportID uuid.UUID, uploads []PhotoUpload) ([]models.ReportPhoto, []string, error) {
	var attached []models.ReportPhoto
	var warnings []string

	for _, up := range uploads {
		objectPath := photoPath(up.Filename)

		url, err := s.objects.Put(ctx, objectPath, up.Data, up.ContentType)
		if err != nil {
			return attached, warnings, fmt.Errorf("upload %s: %w", up.Filename, err)
		}

		photo := models.ReportPhoto{
			ID:         uuid.New(),
			ReportID:   reportID,
			FilePath:   url,
			UploadedAt: time.Now().UTC(),
		}
		if err := s.db.WithContext(ctx).Create(&photo).Error; err != nil {
			log.Printf("store: photo row insert for %s failed, object %s orphaned: %v", reportID, objectPath, err)
			warnings = append(warnings, fmt.Sprintf("photo %s failed to attach", up.Filename))
			continue
		}

		attached = append(attached, photo)
		s.publish(ctx, realtime.Event{Channel: realtime.ChannelPhotoInsert, ID: photo.ID, ReportID: reportID})
	}

	return attached, warnings, nil
}

// photoPath builds a collision-resistant storage path,
// reports/<timestamp>-<random>.<ext>.
func photoPath(filename string) string {
	ext := strings.TrimPrefix(path.Ext(filename), ".")
	if ext == "" {
		ext = "jpg"
	}
	return fmt.Sprintf("reports/%d-%s.%s", time.Now().UnixMilli(), uuid.NewString()[:8], ext)
}

func (s *Store) publish(ctx context.Context, event realtime.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, event); err != nil {
		// The row is committed; a missed event only delays live clients
		// until their next full load.
		log.Printf("store: publish %s: %v", event.Channel, err)
	}
}
