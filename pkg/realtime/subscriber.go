package realtime

import (
	"context"
	"errors"
	"log"
	"sync"
)

// Subscription states.
const (
	StateUnsubscribed = "unsubscribed"
	StateConnecting   = "connecting"
	StateSubscribed   = "subscribed"
)

// Subscriber consumes the change-event stream, enriches each event with a
// fetch of the current related rows, and notifies registered handlers.
type Subscriber struct {
	source EventSource
	data   DataSource

	mu       sync.Mutex
	state    string
	cancel   context.CancelFunc
	done     chan struct{}
	handlers []Handler
}

// NewSubscriber wires an event source to a data source. Handlers receive
// notifications in registration order on the subscriber goroutine.
func NewSubscriber(source EventSource, data DataSource, handlers ...Handler) *Subscriber {
	return &Subscriber{
		source:   source,
		data:     data,
		state:    StateUnsubscribed,
		handlers: handlers,
	}
}

// State reports the current subscription state.
func (s *Subscriber) State() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe connects to the stream and starts dispatching. A failed
// connect returns the error and leaves the subscriber unsubscribed.
func (s *Subscriber) Subscribe(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateUnsubscribed {
		s.mu.Unlock()
		return errors.New("already subscribed")
	}
	s.state = StateConnecting
	s.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	events, err := s.source.Subscribe(runCtx, ChannelReportInsert, ChannelPhotoInsert)
	if err != nil {
		cancel()
		s.mu.Lock()
		s.state = StateUnsubscribed
		s.mu.Unlock()
		return err
	}

	done := make(chan struct{})
	s.mu.Lock()
	s.state = StateSubscribed
	s.cancel = cancel
	s.done = done
	s.mu.Unlock()

	go func() {
		defer close(done)
		for {
			select {
			case event, open := <-events:
				if !open {
					return
				}
				s.dispatch(runCtx, event)
			case <-runCtx.Done():
				// The source's channel may stay open on an idle stream;
				// cancellation alone must end the loop.
				return
			}
		}
	}()
	return nil
}

// Disconnect stops further notifications and returns the subscriber to
// the unsubscribed state. An enrichment fetch already in flight completes
// before the dispatch loop exits.
func (s *Subscriber) Disconnect() {
	s.mu.Lock()
	if s.state == StateUnsubscribed {
		s.mu.Unlock()
		return
	}
	cancel := s.cancel
	done := s.done
	s.state = StateUnsubscribed
	s.cancel = nil
	s.done = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// dispatch enriches one event and notifies all handlers. Enrichment
// failures drop the event; the stream itself is not retried.
func (s *Subscriber) dispatch(ctx context.Context, event Event) {
	switch event.Channel {
	case ChannelReportInsert:
		report, err := s.data.GetReport(ctx, event.ID)
		if err != nil {
			log.Printf("realtime: fetch report %s: %v", event.ID, err)
			return
		}
		photos, err := s.data.PhotosByReport(ctx, report.ID)
		if err != nil {
			log.Printf("realtime: fetch photos for report %s: %v", report.ID, err)
			photos = nil
		}
		report.Photos = photos
		for _, h := range s.handlers {
			h.HandleNewReport(*report)
		}

	case ChannelPhotoInsert:
		photos, err := s.data.PhotosByReport(ctx, event.ReportID)
		if err != nil {
			log.Printf("realtime: fetch photos for report %s: %v", event.ReportID, err)
			return
		}
		for _, h := range s.handlers {
			h.HandlePhotosUpdated(event.ReportID, photos)
		}

	default:
		log.Printf("realtime: ignoring event on unknown channel %q", event.Channel)
	}
}
