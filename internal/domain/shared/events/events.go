package events

import (
	"slices"
	"time"
)

// DomainEvent is a fact recorded by an aggregate. AggregateID doubles as the
// broker partition key.
type DomainEvent interface {
	EventName() string
	AggregateID() string
	OccurredAt() time.Time
}

// EventRecorder buffers events on an aggregate until a handler drains them
// into the outbox. The zero value is ready to use.
type EventRecorder struct {
	pending []DomainEvent
}

func (r *EventRecorder) Record(event DomainEvent) {
	if event != nil {
		r.pending = append(r.pending, event)
	}
}

func (r *EventRecorder) PendingEvents() []DomainEvent {
	return slices.Clone(r.pending)
}

func (r *EventRecorder) ClearEvents() {
	r.pending = nil
}

func (r *EventRecorder) Drain() []DomainEvent {
	out := r.pending
	r.pending = nil
	return out
}
