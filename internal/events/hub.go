// Package events is the gateway's downstream-notification extension point.
//
// The handler publishes a MessageReceived event for every first-seen
// delivery; duplicate deliveries never reach the hub. Subscribers (storage
// pipelines, analyzers, forwarders) attach here without the handler knowing
// about them.
package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pigeonhq/pigeon/internal/twilio"
)

// TypeMessageReceived marks a first-seen inbound SMS delivery.
const TypeMessageReceived = "message.received"

// Event wraps an inbound message with delivery metadata. ReceiptID is
// assigned by the gateway per accepted delivery, distinct from the
// provider's MessageSID which repeats across retries.
type Event struct {
	ReceiptID string
	Type      string
	At        time.Time
	Message   twilio.InboundMessage
}

// Hub is an in-memory pub/sub with a small ring buffer for late subscribers.
type Hub struct {
	mu    sync.Mutex
	ring  []Event
	start int
	size  int

	subs      map[int]chan Event
	nextSubID int
}

// NewHub creates a hub retaining up to capacity recent events.
func NewHub(capacity int) *Hub {
	if capacity <= 0 {
		capacity = 100
	}
	return &Hub{
		ring: make([]Event, capacity),
		subs: make(map[int]chan Event),
	}
}

// Publish delivers a message event to all subscribers and returns the
// assigned receipt ID. Slow subscribers are skipped rather than blocking
// the request path.
func (h *Hub) Publish(eventType string, msg twilio.InboundMessage) string {
	ev := Event{
		ReceiptID: uuid.NewString(),
		Type:      eventType,
		At:        time.Now().UTC(),
		Message:   msg,
	}

	h.mu.Lock()
	h.pushLocked(ev)
	for _, ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	h.mu.Unlock()

	return ev.ReceiptID
}

// Subscribe registers a consumer. The returned cancel func detaches it and
// closes the channel.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextSubID
	h.nextSubID++
	ch := make(chan Event, 128)
	h.subs[id] = ch

	cancel := func() {
		h.mu.Lock()
		if c, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(c)
		}
		h.mu.Unlock()
	}

	return ch, cancel
}

// Recent returns the buffered events, oldest-first.
func (h *Hub) Recent() []Event {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]Event, 0, h.size)
	for i := 0; i < h.size; i++ {
		out = append(out, h.ring[(h.start+i)%len(h.ring)])
	}
	return out
}

func (h *Hub) pushLocked(ev Event) {
	capacity := len(h.ring)
	if capacity == 0 {
		return
	}

	if h.size < capacity {
		h.ring[(h.start+h.size)%capacity] = ev
		h.size++
		return
	}

	// Overwrite oldest.
	h.ring[h.start] = ev
	h.start = (h.start + 1) % capacity
}
