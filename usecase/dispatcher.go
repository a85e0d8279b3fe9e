package usecase

import (
	"context"
	"sync"
)

// Topics published by the engines.
const (
	TopicSessionChanged   = "session.changed"
	TopicCartChanged      = "cart.changed"
	TopicCatalogRefreshed = "catalog.refreshed"
)

// Observer receives the new state published on a topic.
type Observer func(ctx context.Context, payload interface{})

// Publisher is the side of the dispatcher the engines depend on.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload interface{})
}

type subscription struct {
	id       uint64
	observer Observer
}

// Dispatcher fans published state out to registered observers synchronously,
// in subscription order.
type Dispatcher struct {
	observers map[string][]subscription
	nextID    uint64
	mu        sync.RWMutex
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		observers: make(map[string][]subscription),
	}
}

// Subscribe registers observer on topic and returns a func that removes it.
func (d *Dispatcher) Subscribe(topic string, observer Observer) func() {
	if observer == nil {
		return func() {}
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	id := d.nextID
	d.observers[topic] = append(d.observers[topic], subscription{id: id, observer: observer})

	var once sync.Once
	return func() {
		once.Do(func() { d.unsubscribe(topic, id) })
	}
}

// Publish delivers payload to every observer of topic. Observers run outside
// the dispatcher lock, so they may subscribe or unsubscribe.
func (d *Dispatcher) Publish(ctx context.Context, topic string, payload interface{}) {
	if d == nil {
		return
	}
	d.mu.RLock()
	subs := append([]subscription(nil), d.observers[topic]...)
	d.mu.RUnlock()

	for _, sub := range subs {
		sub.observer(ctx, payload)
	}
}

func (d *Dispatcher) unsubscribe(topic string, id uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	subs := d.observers[topic]
	for i, sub := range subs {
		if sub.id == id {
			d.observers[topic] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(d.observers[topic]) == 0 {
		delete(d.observers, topic)
	}
}

var _ Publisher = (*Dispatcher)(nil)
