package middleware

import (
	"context"
	"errors"
	"fmt"

	"tradeboard/internal/app/commands"
	"tradeboard/internal/app/uow"
)

// ReadOnlyCommand lets a command ask for a read-only unit of work.
type ReadOnlyCommand interface {
	ReadOnly() bool
}

type TxOptionsProvider func(cmd commands.Command) uow.TxOptions

// DefaultTxOptions honours ReadOnlyCommand and otherwise opens a writable unit.
func DefaultTxOptions(cmd commands.Command) uow.TxOptions {
	if ro, ok := cmd.(ReadOnlyCommand); ok {
		return uow.TxOptions{ReadOnly: ro.ReadOnly()}
	}
	return uow.TxOptions{}
}

// Transaction runs every command inside one unit of work, committed only
// when the handler succeeds. Handlers join it through uow.FromContext.
func Transaction(factory uow.UoWFactory, optsProvider TxOptionsProvider) CommandMiddleware {
	if factory == nil {
		panic("middleware: uow factory required")
	}
	if optsProvider == nil {
		optsProvider = DefaultTxOptions
	}
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (res any, err error) {
			if _, joined := uow.FromContext(ctx); joined {
				return next.Dispatch(ctx, cmd)
			}
			unit, err := factory.Begin(ctx, optsProvider(cmd))
			if err != nil {
				return nil, fmt.Errorf("begin unit of work: %w", err)
			}
			execCtx := uow.Bind(ctx, unit)
			done := false
			defer func() {
				if done {
					return
				}
				if rbErr := unit.Rollback(execCtx); rbErr != nil && err != nil {
					err = errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
				}
			}()

			res, err = next.Dispatch(execCtx, cmd)
			if err != nil {
				return nil, err
			}
			done = true
			if err := unit.Commit(execCtx); err != nil {
				return nil, fmt.Errorf("commit unit of work: %w", err)
			}
			uow.RunCommitted(execCtx)
			return res, nil
		})
	}
}
