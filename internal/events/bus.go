// Package events fans schema change notifications out to interested views.
package events

import (
	"sync"
	"time"
)

// Kind names the registry operation that produced an event.
type Kind string

const (
	AttributeAdded     Kind = "attribute.added"
	AttributeEdited    Kind = "attribute.edited"
	AttributeDeleted   Kind = "attribute.deleted"
	ContentTypeCreated Kind = "contentType.created"
	ContentTypeUpdated Kind = "contentType.updated"
	ContentTypeDeleted Kind = "contentType.deleted"
	ComponentCreated   Kind = "component.created"
	ComponentUpdated   Kind = "component.updated"
	ComponentRenamed   Kind = "component.renamed"
	ComponentDeleted   Kind = "component.deleted"
	DynamicZoneChanged Kind = "dynamiczone.changed"
	RegistryReloaded   Kind = "registry.reloaded"
)

// Topic groups events for subscription. AllTopics receives everything.
type Topic string

const (
	TopicContentType Topic = "contentType"
	TopicComponent   Topic = "component"
	AllTopics        Topic = "*"
)

// SchemaEvent describes one committed change.
type SchemaEvent struct {
	Kind      Kind
	Topic     Topic
	UID       string
	Attribute string
	Timestamp time.Time
}

// Bus manages event distribution for registry changes
type Bus struct {
	subscribers map[Topic][]chan<- SchemaEvent
	mu          sync.RWMutex
	dropped     int
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		subscribers: make(map[Topic][]chan<- SchemaEvent),
	}
}

// Subscribe registers ch for events on topic
func (b *Bus) Subscribe(topic Topic, ch chan<- SchemaEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.subscribers[topic] = append(b.subscribers[topic], ch)
}

// Unsubscribe removes ch from topic
func (b *Bus) Unsubscribe(topic Topic, ch chan<- SchemaEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subscribers := b.subscribers[topic]
	for i, sub := range subscribers {
		if sub == ch {
			subscribers[i] = subscribers[len(subscribers)-1]
			b.subscribers[topic] = subscribers[:len(subscribers)-1]
			break
		}
	}

	if len(b.subscribers[topic]) == 0 {
		delete(b.subscribers, topic)
	}
}

// Publish sends an event to the topic's subscribers and to AllTopics subscribers.
// Delivery never blocks; full channels miss the event.
func (b *Bus) Publish(event SchemaEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	deliver := func(subs []chan<- SchemaEvent) {
		for _, ch := range subs {
			select {
			case ch <- event:
			default:
				b.dropped++
			}
		}
	}

	deliver(b.subscribers[event.Topic])
	if event.Topic != AllTopics {
		deliver(b.subscribers[AllTopics])
	}
}

// SubscriberCount returns the number of subscribers for topic
func (b *Bus) SubscriberCount(topic Topic) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.subscribers[topic])
}

// Dropped returns how many deliveries were skipped because a subscriber was full
func (b *Bus) Dropped() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.dropped
}

// Clear removes all subscribers and closes their channels
func (b *Bus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, subscribers := range b.subscribers {
		for _, ch := range subscribers {
			close(ch)
		}
	}

	b.subscribers = make(map[Topic][]chan<- SchemaEvent)
}
