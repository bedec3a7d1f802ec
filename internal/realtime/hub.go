// Package realtime fans out database change events to connected clients.
package realtime

import (
	"sync"

	"go.uber.org/zap"

	"github.com/vlinky/vlinky/internal/models"
)

// subscriberBuffer is how many events a slow subscriber may lag behind
// before new events are dropped for it.
const subscriberBuffer = 16

// Filter selects which events a subscriber receives. A nil Filter
// accepts everything.
type Filter func(models.ChangeEvent) bool

// ForUser accepts events for rows owned by userID.
func ForUser(userID string) Filter {
	return func(e models.ChangeEvent) bool { return e.UserID == userID }
}

// Hub delivers published events to every matching subscription.
type Hub struct {
	mu   sync.RWMutex
	subs map[*Subscription]struct{}
	log  *zap.Logger
}

// NewHub creates an empty Hub.
func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{subs: make(map[*Subscription]struct{}), log: log}
}

// Subscription is a live feed of events. Close it when done.
type Subscription struct {
	// C receives matching events. It is closed by Close.
	C <-chan models.ChangeEvent

	ch     chan models.ChangeEvent
	filter Filter
	hub    *Hub
	once   sync.Once
}

// Subscribe registers a new subscription.
func (h *Hub) Subscribe(filter Filter) *Subscription {
	ch := make(chan models.ChangeEvent, subscriberBuffer)
	s := &Subscription{C: ch, ch: ch, filter: filter, hub: h}

	h.mu.Lock()
	h.subs[s] = struct{}{}
	h.mu.Unlock()
	return s
}

// Close unregisters the subscription. It is safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		delete(s.hub.subs, s)
		close(s.ch)
		s.hub.mu.Unlock()
	})
}

// Publish sends e to every matching subscriber without blocking.
func (h *Hub) Publish(e models.ChangeEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for s := range h.subs {
		if s.filter != nil && !s.filter(e) {
			continue
		}
		select {
		case s.ch <- e:
		default:
			h.log.Warn("dropping change event for slow subscriber",
				zap.String("table", e.Table),
				zap.String("id", e.ID),
			)
		}
	}
}

// Len returns the number of open subscriptions.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
