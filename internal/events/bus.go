package events

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Subscriber receives an ordered stream of SyncProgress values through a
// buffered channel. A slow subscriber drops events rather than blocking
// the publisher, per the teacher's SSE-fanout precedent.
type Subscriber struct {
	id     string
	ch     chan SyncProgress
	mu     sync.Mutex
	closed bool
}

func newSubscriber(bufferSize int) *Subscriber {
	return &Subscriber{id: uuid.New().String(), ch: make(chan SyncProgress, bufferSize)}
}

// ID returns the subscriber's opaque identifier.
func (s *Subscriber) ID() string { return s.id }

// C returns the channel to read progress events from.
func (s *Subscriber) C() <-chan SyncProgress { return s.ch }

func (s *Subscriber) send(p SyncProgress, logger *slog.Logger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- p:
	default:
		logger.Warn("events: subscriber channel full, dropping progress event", "subscriber_id", s.id, "phase", p.Phase)
	}
}

func (s *Subscriber) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}

// Bus fans SyncProgress values out to every current subscriber.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string]*Subscriber
	logger      *slog.Logger
}

// NewBus constructs an empty Bus.
func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{subscribers: make(map[string]*Subscriber), logger: logger}
}

// Subscribe registers a new Subscriber with the given channel buffer size.
func (b *Bus) Subscribe(bufferSize int) *Subscriber {
	sub := newSubscriber(bufferSize)
	b.mu.Lock()
	b.subscribers[sub.id] = sub
	b.mu.Unlock()
	return sub
}

// Unsubscribe removes and closes a Subscriber.
func (b *Bus) Unsubscribe(sub *Subscriber) {
	b.mu.Lock()
	delete(b.subscribers, sub.id)
	b.mu.Unlock()
	sub.close()
}

// Publish broadcasts p to every current subscriber.
func (b *Bus) Publish(p SyncProgress) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subscribers {
		sub.send(p, b.logger)
	}
}

// Count returns the number of active subscribers.
func (b *Bus) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
