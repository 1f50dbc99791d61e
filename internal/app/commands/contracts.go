package commands

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrHandlerNotFound = errors.New("commands: handler not found")
	ErrInvalidCommand  = errors.New("commands: invalid command for handler")
	ErrResultType      = errors.New("commands: result type mismatch")
	ErrNilBus          = errors.New("commands: nil bus")
)

type (
	// Command is a write intent. Its Key routes it to exactly one handler.
	Command interface {
		Key() string
	}

	Handler[C Command, R any] interface {
		Handle(ctx context.Context, cmd C) (R, error)
	}

	// Bus is implemented by InMemoryBus and by every middleware wrapper.
	Bus interface {
		Dispatch(ctx context.Context, cmd Command) (any, error)
	}
)

// HandlerFunc lets a method value such as h.Open register as a Handler.
type HandlerFunc[C Command, R any] func(ctx context.Context, cmd C) (R, error)

func (f HandlerFunc[C, R]) Handle(ctx context.Context, cmd C) (R, error) { return f(ctx, cmd) }

// Dispatch sends cmd through bus and narrows the untyped result to R. A nil
// result yields the zero R.
func Dispatch[C Command, R any](ctx context.Context, bus Bus, cmd C) (R, error) {
	if bus == nil {
		var zero R
		return zero, ErrNilBus
	}
	res, err := bus.Dispatch(ctx, cmd)
	return narrow[R](cmd.Key(), res, err)
}

func narrow[R any](key string, res any, err error) (R, error) {
	var zero R
	if err != nil || res == nil {
		return zero, err
	}
	if value, ok := res.(R); ok {
		return value, nil
	}
	return zero, fmt.Errorf("%w: %s returned %T, want %T", ErrResultType, key, res, zero)
}
