package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"tradeboard/internal/domain/shared/events"
)

// EventRecord is an encoded domain event waiting to be published.
type EventRecord struct {
	ID         string
	Name       string
	Payload    []byte
	OccurredAt time.Time
	Aggregate  string
	Headers    map[string]string
}

// Outbox collects records during a command. Flush runs after the handler
// succeeded; stores writing inside the unit of work treat it as a no-op.
type Outbox interface {
	Add(ctx context.Context, record EventRecord) error
	Flush(ctx context.Context) error
}

type EventEncoder interface {
	Encode(ev events.DomainEvent) (EventRecord, error)
}

type JSONEventEncoder struct {
	IDGenerator func() string
}

func (e JSONEventEncoder) Encode(ev events.DomainEvent) (EventRecord, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return EventRecord{}, fmt.Errorf("outbox: encode %s: %w", ev.EventName(), err)
	}
	idGen := e.IDGenerator
	if idGen == nil {
		idGen = uuid.NewString
	}
	return EventRecord{
		ID:         idGen(),
		Name:       ev.EventName(),
		Payload:    payload,
		OccurredAt: ev.OccurredAt().UTC(),
		Aggregate:  ev.AggregateID(),
		Headers:    map[string]string{},
	}, nil
}

type batchKey struct{}

var batchSeq atomic.Uint64

// WithBatch tags ctx with a fresh batch id. Outboxes that buffer in process
// group the records of one command by it so Flush and Discard never touch
// another command's records.
func WithBatch(ctx context.Context) context.Context {
	return context.WithValue(ctx, batchKey{}, batchSeq.Add(1))
}

// BatchFromContext returns the batch id of ctx, or 0 outside any batch.
func BatchFromContext(ctx context.Context) uint64 {
	id, _ := ctx.Value(batchKey{}).(uint64)
	return id
}

type headersKey struct{}

// WithHeaders attaches propagation headers (request id, traceparent) that
// every record added under ctx will carry.
func WithHeaders(ctx context.Context, headers map[string]string) context.Context {
	merged := maps.Clone(HeadersFromContext(ctx))
	if merged == nil {
		merged = make(map[string]string, len(headers))
	}
	for k, v := range headers {
		if v != "" {
			merged[k] = v
		}
	}
	return context.WithValue(ctx, headersKey{}, merged)
}

func HeadersFromContext(ctx context.Context) map[string]string {
	h, _ := ctx.Value(headersKey{}).(map[string]string)
	return h
}

// RecordDomainEvents encodes evs in order and adds them to box.
func RecordDomainEvents(ctx context.Context, box Outbox, encoder EventEncoder, evs []events.DomainEvent) error {
	if box == nil || len(evs) == 0 {
		return nil
	}
	if encoder == nil {
		encoder = JSONEventEncoder{}
	}
	propagated := HeadersFromContext(ctx)
	for _, ev := range evs {
		rec, err := encoder.Encode(ev)
		if err != nil {
			return err
		}
		if rec.Headers == nil {
			rec.Headers = make(map[string]string, len(propagated))
		}
		for k, v := range propagated {
			if _, set := rec.Headers[k]; !set {
				rec.Headers[k] = v
			}
		}
		if err := box.Add(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}
