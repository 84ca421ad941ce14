package live

import "sync"

type Handler func(Event)

type Subscription struct {
	name EventName
	id   uint64
}

type Subscriber interface {
	Subscribe(name EventName, fn Handler) Subscription
	Unsubscribe(sub Subscription)
}

type listener struct {
	id uint64
	fn Handler
}

// Bus is a synchronous publish/subscribe channel. Events published while no
// handler is subscribed are dropped.
type Bus struct {
	mu        sync.RWMutex
	nextID    uint64
	listeners map[EventName][]listener
}

func NewBus() *Bus {
	return &Bus{listeners: make(map[EventName][]listener)}
}

func (b *Bus) Subscribe(name EventName, fn Handler) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	b.listeners[name] = append(b.listeners[name], listener{id: b.nextID, fn: fn})
	return Subscription{name: name, id: b.nextID}
}

func (b *Bus) Unsubscribe(sub Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ls := b.listeners[sub.name]
	for i, l := range ls {
		if l.id == sub.id {
			b.listeners[sub.name] = append(ls[:i:i], ls[i+1:]...)
			break
		}
	}
	if len(b.listeners[sub.name]) == 0 {
		delete(b.listeners, sub.name)
	}
}

func (b *Bus) Publish(ev Event) {
	b.mu.RLock()
	ls := b.listeners[ev.Name()]
	b.mu.RUnlock()

	for _, l := range ls {
		l.fn(ev)
	}
}

func (b *Bus) ListenerCount(name EventName) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners[name])
}

func On[E Event](s Subscriber, fn func(E)) Subscription {
	var zero E
	return s.Subscribe(zero.Name(), func(ev Event) {
		if e, ok := ev.(E); ok {
			fn(e)
		}
	})
}
