package realtime

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/almasmith/mercer-library/internal/logging"
)

// DefaultBufferSize is the per-subscriber queue length used when NewHub
// gets a non-positive size.
const DefaultBufferSize = 32

// Event is one notification queued for a subscriber.
type Event struct {
	Name    string
	Payload any
}

// Hub is an in-process fan-out of events to per-user subscribers.
type Hub struct {
	mu         sync.RWMutex
	groups     map[string]map[uint64]chan Event
	nextID     uint64
	bufferSize int
	closed     bool
}

func NewHub(bufferSize int) *Hub {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &Hub{
		groups:     make(map[string]map[uint64]chan Event),
		bufferSize: bufferSize,
	}
}

// Subscription receives the events of one user until Close is called.
type Subscription struct {
	C     <-chan Event
	hub   *Hub
	group string
	id    uint64
	once  sync.Once
}

// Subscribe joins the user's group. The returned channel is closed when the
// subscription or the hub is closed.
func (h *Hub) Subscribe(userID uint) *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, h.bufferSize)
	group := Group(userID)
	h.nextID++
	sub := &Subscription{C: ch, hub: h, group: group, id: h.nextID}

	if h.closed {
		close(ch)
		return sub
	}
	if h.groups[group] == nil {
		h.groups[group] = make(map[uint64]chan Event)
	}
	h.groups[group][sub.id] = ch
	return sub
}

// Close leaves the group. It is safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.unsubscribe(s.group, s.id)
	})
}

func (h *Hub) unsubscribe(group string, id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members := h.groups[group]
	ch, ok := members[id]
	if !ok {
		return
	}
	delete(members, id)
	if len(members) == 0 {
		delete(h.groups, group)
	}
	close(ch)
}

// Notify queues the event for every subscriber of the user. A subscriber
// whose buffer is full misses the event.
func (h *Hub) Notify(userID uint, name string, payload any) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	group := Group(userID)
	for id, ch := range h.groups[group] {
		select {
		case ch <- Event{Name: name, Payload: payload}:
		default:
			logging.Logger.WithFields(logrus.Fields{
				"group":      group,
				"subscriber": id,
				"event":      name,
			}).Warn("Realtime buffer full, dropping event")
		}
	}
}

// Subscribers returns the number of open subscriptions for the user.
func (h *Hub) Subscribers(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[Group(userID)])
}

// Close ends every subscription. Later subscriptions are closed on arrival.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for group, members := range h.groups {
		for _, ch := range members {
			close(ch)
		}
		delete(h.groups, group)
	}
	h.closed = true
}
