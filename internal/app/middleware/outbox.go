package middleware

import (
	"context"

	"tradeboard/internal/app/commands"
	"tradeboard/internal/app/outbox"
)

// discarder is implemented by outboxes that buffer outside the unit of work
// and must drop records of a failed command.
type discarder interface {
	Discard(ctx context.Context)
}

// OutboxFlush gives every command its own outbox batch. Placed outside
// Transaction it flushes only after the unit of work committed and discards
// the batch when the command or its commit failed.
func OutboxFlush(box outbox.Outbox) CommandMiddleware {
	if box == nil {
		panic("middleware: outbox required")
	}
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			ctx = outbox.WithBatch(ctx)
			res, err := next.Dispatch(ctx, cmd)
			if err != nil {
				if d, ok := box.(discarder); ok {
					d.Discard(ctx)
				}
				return nil, err
			}
			if err := box.Flush(ctx); err != nil {
				return nil, err
			}
			return res, nil
		})
	}
}
