package realtime

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/eccleston-labs/lfg-hackathon/models"
)

// fakeSource replays a fixed slice of events.
type fakeSource struct {
	events  []Event
	failSub bool
}

func (f *fakeSource) Subscribe(ctx context.Context, _ ...string) (<-chan Event, error) {
	if f.failSub {
		return nil, errors.New("stream unavailable")
	}
	ch := make(chan Event, len(f.events))
	for _, e := range f.events {
		ch <- e
	}
	close(ch)
	return ch, nil
}

func (f *fakeSource) Close() error { return nil }

// fakeData serves canned rows for enrichment fetches.
type fakeData struct {
	reports map[uuid.UUID]models.Report
	photos  map[uuid.UUID][]models.ReportPhoto
}

func (f *fakeData) GetReport(_ context.Context, id uuid.UUID) (*models.Report, error) {
	r, ok := f.reports[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return &r, nil
}

func (f *fakeData) PhotosByReport(_ context.Context, reportID uuid.UUID) ([]models.ReportPhoto, error) {
	return f.photos[reportID], nil
}

// recorder captures notifications and signals when all expected ones
// arrived.
type recorder struct {
	reports      []models.Report
	photoUpdates []uuid.UUID
	expected     int
	done         chan struct{}
}

func newRecorder(expected int) *recorder {
	return &recorder{expected: expected, done: make(chan struct{})}
}

func (r *recorder) HandleNewReport(report models.Report) {
	r.reports = append(r.reports, report)
	r.check()
}

func (r *recorder) HandlePhotosUpdated(reportID uuid.UUID, _ []models.ReportPhoto) {
	r.photoUpdates = append(r.photoUpdates, reportID)
	r.check()
}

func (r *recorder) check() {
	if len(r.reports)+len(r.photoUpdates) == r.expected {
		close(r.done)
	}
}

func (r *recorder) wait(t *testing.T) {
	t.Helper()
	select {
	case <-r.done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for notifications")
	}
}

func TestSubscriberEnrichesReportInsert(t *testing.T) {
	reportID := uuid.New()
	data := &fakeData{
		reports: map[uuid.UUID]models.Report{
			reportID: {ID: reportID, RawText: "a theft"},
		},
		photos: map[uuid.UUID][]models.ReportPhoto{
			reportID: {{ID: uuid.New(), ReportID: reportID}},
		},
	}
	source := &fakeSource{events: []Event{
		{Channel: ChannelReportInsert, ID: reportID},
	}}
	rec := newRecorder(1)

	sub := NewSubscriber(source, data, rec)
	if err := sub.Subscribe(context.Background()); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	rec.wait(t)
	sub.Disconnect()

	if len(rec.reports) != 1 {
		t.Fatalf("got %d report notifications, want 1", len(rec.reports))
	}
	got := rec.reports[0]
	if got.ID != reportID || got.RawText != "a theft" {
		t.Errorf("report = %+v, want enriched row", got)
	}
	if len(got.Photos) != 1 {
		t.Errorf("photos = %d, want the current photo set attached", len(got.Photos))
	}
}

func TestSubscriberPhotoInsertRefetchesPhotoSet(t *testing.T) {
	reportID := uuid.New()
	photoID := uuid.New()
	data := &fakeData{
		reports: map[uuid.UUID]models.Report{},
		photos: map[uuid.UUID][]models.ReportPhoto{
			reportID: {{ID: photoID, ReportID: reportID}},
		},
	}
	source := &fakeSource{events: []Event{
		{Channel: ChannelPhotoInsert, ID: photoID, ReportID: reportID},
	}}
	rec := newRecorder(1)

	sub := NewSubscriber(source, data, rec)
	if err := sub.Subscribe(context.Background()); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	rec.wait(t)
	sub.Disconnect()

	if len(rec.photoUpdates) != 1 || rec.photoUpdates[0] != reportID {
		t.Errorf("photo updates = %v, want exactly one for %s", rec.photoUpdates, reportID)
	}
}

func TestSubscriberDropsEventWhenFetchFails(t *testing.T) {
	// Report row not present in the data source: the event is dropped and
	// later events still flow.
	knownID := uuid.New()
	data := &fakeData{
		reports: map[uuid.UUID]models.Report{
			knownID: {ID: knownID, RawText: "known"},
		},
		photos: map[uuid.UUID][]models.ReportPhoto{},
	}
	source := &fakeSource{events: []Event{
		{Channel: ChannelReportInsert, ID: uuid.New()},
		{Channel: ChannelReportInsert, ID: knownID},
	}}
	rec := newRecorder(1)

	sub := NewSubscriber(source, data, rec)
	if err := sub.Subscribe(context.Background()); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	rec.wait(t)
	sub.Disconnect()

	if len(rec.reports) != 1 || rec.reports[0].ID != knownID {
		t.Errorf("reports = %v, want only the known row", rec.reports)
	}
}

func TestSubscriberStateTransitions(t *testing.T) {
	sub := NewSubscriber(&fakeSource{}, &fakeData{})
	if got := sub.State(); got != StateUnsubscribed {
		t.Fatalf("initial state = %q", got)
	}

	if err := sub.Subscribe(context.Background()); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if got := sub.State(); got != StateSubscribed {
		t.Errorf("state after subscribe = %q", got)
	}

	if err := sub.Subscribe(context.Background()); err == nil {
		t.Error("second Subscribe succeeded, want error")
	}

	sub.Disconnect()
	if got := sub.State(); got != StateUnsubscribed {
		t.Errorf("state after disconnect = %q", got)
	}
}

// idleSource hands out a channel that never closes and never delivers,
// the shape of a live subscription with no traffic.
type idleSource struct {
	ch chan Event
}

func (s *idleSource) Subscribe(_ context.Context, _ ...string) (<-chan Event, error) {
	return s.ch, nil
}

func (s *idleSource) Close() error { return nil }

func TestSubscriberDisconnectReturnsOnIdleStream(t *testing.T) {
	sub := NewSubscriber(&idleSource{ch: make(chan Event)}, &fakeData{})
	if err := sub.Subscribe(context.Background()); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	done := make(chan struct{})
	go func() {
		sub.Disconnect()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Disconnect did not return while the stream was idle")
	}
	if got := sub.State(); got != StateUnsubscribed {
		t.Errorf("state = %q, want unsubscribed", got)
	}
}

func TestSubscriberFailedConnectStaysUnsubscribed(t *testing.T) {
	sub := NewSubscriber(&fakeSource{failSub: true}, &fakeData{})
	if err := sub.Subscribe(context.Background()); err == nil {
		t.Fatal("expected connect error")
	}
	if got := sub.State(); got != StateUnsubscribed {
		t.Errorf("state = %q, want unsubscribed after failed connect", got)
	}
}
