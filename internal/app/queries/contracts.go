package queries

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrHandlerNotFound = errors.New("queries: handler not found")
	ErrInvalidQuery    = errors.New("queries: invalid query for handler")
	ErrResultType      = errors.New("queries: result type mismatch")
	ErrNilBus          = errors.New("queries: nil bus")
)

type (
	// Query is a read request routed by Key. Handlers never mutate state.
	Query interface {
		Key() string
	}

	Handler[Q Query, R any] interface {
		Handle(ctx context.Context, query Q) (R, error)
	}

	Bus interface {
		Ask(ctx context.Context, query Query) (any, error)
	}
)

type HandlerFunc[Q Query, R any] func(ctx context.Context, query Q) (R, error)

func (f HandlerFunc[Q, R]) Handle(ctx context.Context, query Q) (R, error) { return f(ctx, query) }

// Ask runs query through bus and narrows the result to R.
func Ask[Q Query, R any](ctx context.Context, bus Bus, query Q) (R, error) {
	var zero R
	if bus == nil {
		return zero, ErrNilBus
	}
	res, err := bus.Ask(ctx, query)
	switch value, ok := res.(R); {
	case err != nil, res == nil:
		return zero, err
	case !ok:
		return zero, fmt.Errorf("%w: %s returned %T, want %T", ErrResultType, query.Key(), res, zero)
	default:
		return value, nil
	}
}
