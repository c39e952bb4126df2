// Package realtime delivers live events to subscribers of a topic. Topics are
// per user ("user:<id>") or per candidate thread ("candidate:<id>").
package realtime

import (
	"sync"
	"time"
)

const bufferSize = 16

// Event is a live event. Type becomes the SSE event name; Data is any
// JSON-serialisable body.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// Broker is what producers and stream handlers depend on.
type Broker interface {
	Publish(topic string, ev Event)
	Subscribe(topic string) *Subscription
}

func UserTopic(userID string) string           { return "user:" + userID }
func CandidateTopic(candidateID string) string { return "candidate:" + candidateID }

// Subscription is one consumer of a topic. Close is idempotent and must be
// called when the consumer goes away.
type Subscription struct {
	topic  string
	events chan Event
	errs   chan error
	done   chan struct{}
	once   sync.Once
	hub    *Hub
}

func (s *Subscription) Events() <-chan Event  { return s.events }
func (s *Subscription) Errors() <-chan error  { return s.errs }
func (s *Subscription) Done() <-chan struct{} { return s.done }

// Send delivers ev unless the subscription is closed or its buffer is full.
func (s *Subscription) Send(ev Event) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.events <- ev:
		return true
	default:
		return false
	}
}

// SendWait is Send for events that must not be dropped: it waits up to d
// for buffer space.
func (s *Subscription) SendWait(ev Event, d time.Duration) bool {
	if s.Send(ev) {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-s.done:
		return false
	case s.events <- ev:
		return true
	case <-t.C:
		return false
	}
}

// Fail reports a non-fatal error to the consumer. The subscription stays open.
func (s *Subscription) Fail(err error) {
	select {
	case <-s.done:
	case s.errs <- err:
	default:
	}
}

func (s *Subscription) Close() {
	s.once.Do(func() {
		if s.hub != nil {
			s.hub.remove(s)
		}
		close(s.done)
	})
}

// Hub keeps in-process subscribers grouped by topic.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[*Subscription]struct{}
}

func NewHub() *Hub {
	return &Hub{subscribers: make(map[string]map[*Subscription]struct{})}
}

func (h *Hub) Subscribe(topic string) *Subscription {
	s := &Subscription{
		topic:  topic,
		events: make(chan Event, bufferSize),
		errs:   make(chan error, 1),
		done:   make(chan struct{}),
		hub:    h,
	}
	h.mu.Lock()
	set, ok := h.subscribers[topic]
	if !ok {
		set = make(map[*Subscription]struct{})
		h.subscribers[topic] = set
	}
	set[s] = struct{}{}
	h.mu.Unlock()
	return s
}

// Publish sends ev to every subscriber of topic. Slow consumers are skipped
// so producers never block.
func (h *Hub) Publish(topic string, ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.subscribers[topic] {
		s.Send(ev)
	}
}

// remove drops s and forgets the topic once its last subscriber is gone.
func (h *Hub) remove(s *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.subscribers[s.topic]
	if !ok {
		return
	}
	delete(set, s)
	if len(set) == 0 {
		delete(h.subscribers, s.topic)
	}
}
