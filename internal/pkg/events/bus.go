// internal/pkg/events/bus.go
package events

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Topic identifies a class of domain events
type Topic string

const (
	TopicCartChanged     Topic = "cart.changed"
	TopicWishlistChanged Topic = "wishlist.changed"
	TopicBalanceChanged  Topic = "balance.changed"
	TopicProfileChanged  Topic = "profile.changed"
	TopicUserRegistered  Topic = "user.registered"
	TopicOrderPlaced     Topic = "order.placed"
	TopicOrderStatus     Topic = "order.status_changed"
)

// Event carries a topic and its payload to subscribers
type Event struct {
	Topic   Topic
	UserID  uint
	Payload interface{}
}

// Handler processes a published event
type Handler func(Event)

// Bus is the in-process publish/subscribe interface components depend on
// instead of any global namespace
type Bus interface {
	Publish(event Event)
	Subscribe(topic Topic, handler Handler) (unsubscribe func())
}

// MemoryBus is a synchronous in-process Bus implementation
type MemoryBus struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[Topic]map[int]Handler
	logger   *logrus.Logger
}

// NewMemoryBus creates a new in-process event bus
func NewMemoryBus(logger *logrus.Logger) *MemoryBus {
	if logger == nil {
		logger = logrus.New()
	}
	return &MemoryBus{
		handlers: make(map[Topic]map[int]Handler),
		logger:   logger,
	}
}

// Publish delivers the event to every subscriber of its topic. Delivery is
// synchronous; a panicking handler must not take down the publisher.
func (b *MemoryBus) Publish(event Event) {
	b.mu.RLock()
	subs := make([]Handler, 0, len(b.handlers[event.Topic]))
	for _, h := range b.handlers[event.Topic] {
		subs = append(subs, h)
	}
	b.mu.RUnlock()

	for _, handler := range subs {
		b.dispatch(event, handler)
	}
}

func (b *MemoryBus) dispatch(event Event, handler Handler) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.WithFields(logrus.Fields{
				"topic": event.Topic,
				"panic": r,
			}).Error("Event handler panicked")
		}
	}()
	handler(event)
}

// Subscribe registers a handler for a topic and returns a function that
// removes the subscription
func (b *MemoryBus) Subscribe(topic Topic, handler Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.handlers[topic] == nil {
		b.handlers[topic] = make(map[int]Handler)
	}
	id := b.nextID
	b.nextID++
	b.handlers[topic][id] = handler

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.handlers[topic], id)
	}
}
