package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemoryBus_PublishSubscribe(t *testing.T) {
	bus := NewMemoryBus(nil)

	var got []Event
	bus.Subscribe(TopicCartChanged, func(e Event) {
		got = append(got, e)
	})

	bus.Publish(Event{Topic: TopicCartChanged, UserID: 7})
	bus.Publish(Event{Topic: TopicBalanceChanged, UserID: 7})

	assert.Len(t, got, 1)
	assert.Equal(t, TopicCartChanged, got[0].Topic)
	assert.Equal(t, uint(7), got[0].UserID)
}

func TestMemoryBus_Unsubscribe(t *testing.T) {
	bus := NewMemoryBus(nil)

	count := 0
	unsubscribe := bus.Subscribe(TopicWishlistChanged, func(Event) { count++ })

	bus.Publish(Event{Topic: TopicWishlistChanged})
	unsubscribe()
	bus.Publish(Event{Topic: TopicWishlistChanged})

	assert.Equal(t, 1, count)
}

func TestMemoryBus_PanickingHandlerDoesNotBlockOthers(t *testing.T) {
	bus := NewMemoryBus(nil)

	delivered := false
	bus.Subscribe(TopicProfileChanged, func(Event) { panic("boom") })
	bus.Subscribe(TopicProfileChanged, func(Event) { delivered = true })

	assert.NotPanics(t, func() {
		bus.Publish(Event{Topic: TopicProfileChanged})
	})
	assert.True(t, delivered)
}
