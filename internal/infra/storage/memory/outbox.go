package memory

import (
	"context"
	"log/slog"
	"sync"

	appoutbox "tradeboard/internal/app/outbox"
)

// Outbox buffers records per command batch and, on flush, logs them and
// keeps them as published. There is no broker behind it.
type Outbox struct {
	mu        sync.Mutex
	pending   map[uint64][]appoutbox.EventRecord
	published []appoutbox.EventRecord
	logger    *slog.Logger
}

func NewOutbox(logger *slog.Logger) *Outbox {
	if logger == nil {
		logger = slog.Default()
	}
	return &Outbox{pending: make(map[uint64][]appoutbox.EventRecord), logger: logger}
}

func (o *Outbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	batch := appoutbox.BatchFromContext(ctx)
	o.mu.Lock()
	defer o.mu.Unlock()
	o.pending[batch] = append(o.pending[batch], record)
	return nil
}

// Flush publishes the records of the batch bound to ctx.
func (o *Outbox) Flush(ctx context.Context) error {
	batch := appoutbox.BatchFromContext(ctx)
	o.mu.Lock()
	defer o.mu.Unlock()
	records := o.pending[batch]
	delete(o.pending, batch)
	for _, rec := range records {
		o.logger.DebugContext(ctx, "event published",
			slog.String("event", rec.Name),
			slog.String("aggregate_id", rec.Aggregate),
			slog.String("event_id", rec.ID))
	}
	o.published = append(o.published, records...)
	return nil
}

// Discard drops the unflushed records of the batch bound to ctx.
func (o *Outbox) Discard(ctx context.Context) {
	batch := appoutbox.BatchFromContext(ctx)
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.pending, batch)
}

// Published returns the names of flushed events in order.
func (o *Outbox) Published() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]string, len(o.published))
	for i, rec := range o.published {
		out[i] = rec.Name
	}
	return out
}

var _ appoutbox.Outbox = (*Outbox)(nil)
