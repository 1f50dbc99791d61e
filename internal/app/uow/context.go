package uow

import (
	"context"
	"errors"
)

var (
	ErrUnitOfWorkMissing = errors.New("uow: unit of work missing from context")
	// ErrCommitConflict marks a commit rejected because a concurrent writer
	// touched the same documents. Retrying the command may succeed.
	ErrCommitConflict = errors.New("uow: commit conflicted with a concurrent writer")
)

// ContextInjector is implemented by units that must ride along in ctx for
// their repositories to join the transaction (Mongo sessions).
type ContextInjector interface {
	InjectContext(ctx context.Context) context.Context
}

type ctxKey struct{}

// Bind returns ctx carrying unit and an empty after-commit hook list, after
// letting the unit inject its own transport state.
func Bind(ctx context.Context, unit UnitOfWork) context.Context {
	if injector, ok := unit.(ContextInjector); ok {
		ctx = injector.InjectContext(ctx)
	}
	ctx = context.WithValue(ctx, hooksKey{}, &commitHooks{})
	return context.WithValue(ctx, ctxKey{}, unit)
}

func FromContext(ctx context.Context) (UnitOfWork, bool) {
	unit, ok := ctx.Value(ctxKey{}).(UnitOfWork)
	return unit, ok && unit != nil
}
