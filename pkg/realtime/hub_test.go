package realtime

import (
	"testing"

	"github.com/google/uuid"

	"github.com/eccleston-labs/lfg-hackathon/models"
)

func TestHubBroadcastReachesAllClients(t *testing.T) {
	hub := NewHub()
	a := hub.Register()
	b := hub.Register()

	report := models.Report{ID: uuid.New(), RawText: "a theft"}
	hub.HandleNewReport(report)

	for _, ch := range []chan Notification{a, b} {
		select {
		case n := <-ch:
			if n.Type != "new_report" {
				t.Errorf("type = %q, want new_report", n.Type)
			}
			if n.Report == nil || n.Report.ID != report.ID {
				t.Errorf("notification report = %+v, want %s", n.Report, report.ID)
			}
		default:
			t.Fatal("client did not receive the broadcast")
		}
	}
}

func TestHubPhotosUpdatedNotification(t *testing.T) {
	hub := NewHub()
	ch := hub.Register()

	reportID := uuid.New()
	photos := []models.ReportPhoto{{ID: uuid.New(), ReportID: reportID}}
	hub.HandlePhotosUpdated(reportID, photos)

	select {
	case n := <-ch:
		if n.Type != "photos_updated" || n.ReportID != reportID {
			t.Errorf("notification = %+v, want photos_updated for %s", n, reportID)
		}
		if len(n.Photos) != 1 {
			t.Errorf("photos = %d, want 1", len(n.Photos))
		}
	default:
		t.Fatal("client did not receive the broadcast")
	}
}

func TestHubUnregisterClosesChannel(t *testing.T) {
	hub := NewHub()
	ch := hub.Register()
	hub.Unregister(ch)

	if _, open := <-ch; open {
		t.Error("channel still open after unregister")
	}

	// A second unregister of the same channel is a no-op, not a double
	// close.
	hub.Unregister(ch)

	// Broadcasts after unregister must not reach the removed client.
	hub.HandleNewReport(models.Report{ID: uuid.New()})
}

func TestHubDropsWhenClientBufferFull(t *testing.T) {
	hub := NewHub()
	slow := hub.Register()

	// One more broadcast than the client buffer holds; the overflow is
	// dropped for that client instead of blocking the hub.
	for i := 0; i < cap(slow)+1; i++ {
		hub.HandleNewReport(models.Report{ID: uuid.New()})
	}

	if got := len(slow); got != cap(slow) {
		t.Errorf("buffered = %d, want full buffer of %d", got, cap(slow))
	}
}
