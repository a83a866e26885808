package notify

import (
	"context"
	"sync"

	"github.com/custodia-labs/lessonscout/internal/core/domain"
	"github.com/custodia-labs/lessonscout/internal/core/ports/driven"
	"github.com/custodia-labs/lessonscout/internal/logger"
)

// DefaultBuffer is the per-subscriber channel capacity.
const DefaultBuffer = 64

var hubLog = logger.With("notify")

// Ensure Hub implements both sides of the realtime port.
var (
	_ driven.Notifier   = (*Hub)(nil)
	_ driven.Subscriber = (*Hub)(nil)
)

type subscription struct {
	ch chan domain.Notification
}

// Hub delivers notifications to in-process subscribers of a session.
// Publish never blocks: a subscriber whose buffer is full is disconnected
// and its channel closed, so it can resubscribe and rebuild from a snapshot.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[*subscription]struct{}
	buffer int
	closed bool
}

// NewHub creates a hub. A non-positive buffer uses DefaultBuffer.
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Hub{
		subs:   make(map[string]map[*subscription]struct{}),
		buffer: buffer,
	}
}

// Publish sends n to every subscriber of its session.
func (h *Hub) Publish(_ context.Context, n domain.Notification) error {
	var slow []*subscription

	h.mu.RLock()
	for s := range h.subs[n.SessionID] {
		select {
		case s.ch <- n:
		default:
			slow = append(slow, s)
		}
	}
	h.mu.RUnlock()

	for _, s := range slow {
		hubLog.Warn("subscriber for session %s too slow, disconnecting", n.SessionID)
		h.remove(n.SessionID, s)
	}
	return nil
}

// Subscribe registers a subscriber for a session. The subscription ends
// when cancel is called or ctx is done.
func (h *Hub) Subscribe(ctx context.Context, sessionID string) (<-chan domain.Notification, func(), error) {
	s := &subscription{ch: make(chan domain.Notification, h.buffer)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(s.ch)
		return s.ch, func() {}, nil
	}
	if h.subs[sessionID] == nil {
		h.subs[sessionID] = make(map[*subscription]struct{})
	}
	h.subs[sessionID][s] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() { h.remove(sessionID, s) })
	}
	stop := context.AfterFunc(ctx, cancel)

	return s.ch, func() {
		stop()
		cancel()
	}, nil
}

// SubscriberCount returns the number of live subscribers for a session.
func (h *Hub) SubscriberCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[sessionID])
}

// Close disconnects every subscriber. Later subscriptions receive a closed channel.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for id, set := range h.subs {
		for s := range set {
			close(s.ch)
		}
		delete(h.subs, id)
	}
}

// remove drops and closes a subscription. Channels are only closed while
// holding the write lock, and sends happen under the read lock.
func (h *Hub) remove(sessionID string, s *subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.subs[sessionID]
	if !ok {
		return
	}
	if _, ok := set[s]; !ok {
		return
	}
	delete(set, s)
	close(s.ch)
	if len(set) == 0 {
		delete(h.subs, sessionID)
	}
}
