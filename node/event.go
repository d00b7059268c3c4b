package node

import (
	"sync"
	"time"
)

type EventKind int

const (
	// EventMessage carries an envelope read from stdin.
	EventMessage EventKind = iota
	// EventInjected carries a value injected by the handler's own background work.
	EventInjected
	// EventEOF is the terminal event; nothing follows it.
	EventEOF
)

// String returns the string representation of EventKind.
func (k EventKind) String() string {
	switch k {
	case EventMessage:
		return "MESSAGE"
	case EventInjected:
		return "INJECTED"
	case EventEOF:
		return "EOF"
	default:
		return "UNKNOWN"
	}
}

type Event struct {
	Kind     EventKind
	Message  Message
	Injected any
}

// Injector lets a handler feed its own events into the node's event stream.
// Inject reports false once the dispatch loop has stopped consuming.
type Injector interface {
	Inject(payload any) bool
}

// Queue is the unbounded multi-producer, single-consumer event stream. Each
// producer's events come out in the order it sent them; no order is imposed
// between producers.
type Queue struct {
	mu     sync.Mutex
	events []Event
	closed bool
	ready  chan struct{}
}

func NewQueue() *Queue {
	return &Queue{ready: make(chan struct{}, 1)}
}

// Send enqueues ev. It never blocks and returns false once the queue is closed.
func (q *Queue) Send(ev Event) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.events = append(q.events, ev)
	q.mu.Unlock()

	select {
	case q.ready <- struct{}{}:
	default:
	}
	return true
}

func (q *Queue) Inject(payload any) bool {
	return q.Send(Event{Kind: EventInjected, Injected: payload})
}

// Recv blocks until an event is available. Only the consumer may call it.
func (q *Queue) Recv() Event {
	for {
		q.mu.Lock()
		if len(q.events) > 0 {
			ev := q.events[0]
			q.events[0] = Event{}
			q.events = q.events[1:]
			q.mu.Unlock()
			return ev
		}
		q.mu.Unlock()
		<-q.ready
	}
}

// Close is called by the consumer when it stops receiving. Pending events
// are dropped and every later Send fails.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.events = nil
}

// Tick injects payload every interval until the injector stops accepting.
func Tick(inj Injector, interval time.Duration, payload any) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for range ticker.C {
			if !inj.Inject(payload) {
				return
			}
		}
	}()
}
