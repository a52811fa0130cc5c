// Package notify fans new-submission events out to connected dashboards.
package notify

import (
	"context"
	"sync"

	"cv-screening-backend/internal/domain"
	"cv-screening-backend/pkg/logger"
)

const defaultBuffer = 16

// Hub delivers events to in-process subscribers. A subscriber that stops
// reading loses events instead of blocking the publisher.
type Hub struct {
	mu     sync.RWMutex
	subs   map[chan domain.NewCVEvent]struct{}
	buffer int
}

func NewHub() *Hub {
	return &Hub{subs: make(map[chan domain.NewCVEvent]struct{}), buffer: defaultBuffer}
}

// Subscribe registers a listener. The returned func unsubscribes and closes
// the channel; calling it more than once is safe.
func (h *Hub) Subscribe() (<-chan domain.NewCVEvent, func()) {
	ch := make(chan domain.NewCVEvent, h.buffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
}

// Subscribers returns the number of live subscribers.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Publish implements domain.Notifier.
func (h *Hub) Publish(_ context.Context, event domain.NewCVEvent) error {
	h.broadcast(event)
	return nil
}

func (h *Hub) broadcast(event domain.NewCVEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs {
		select {
		case ch <- event:
		default:
			logger.Log.Warn("Dropping event for slow subscriber", "event", domain.EventNewCVUploaded, "cv_id", event.Data.ID)
		}
	}
}
