package uow

import (
	"context"
	"sync"
)

type hooksKey struct{}

type commitHooks struct {
	mu  sync.Mutex
	fns []func(context.Context)
}

// AfterCommit defers fn until the unit bound to ctx has committed. Hooks of a
// unit that rolls back never run. Without a bound unit fn runs immediately.
func AfterCommit(ctx context.Context, fn func(context.Context)) {
	if fn == nil {
		return
	}
	hooks, ok := ctx.Value(hooksKey{}).(*commitHooks)
	if !ok {
		fn(ctx)
		return
	}
	hooks.mu.Lock()
	hooks.fns = append(hooks.fns, fn)
	hooks.mu.Unlock()
}

// RunCommitted drains and runs the hooks registered under ctx in order. Call
// it only after Commit returned nil.
func RunCommitted(ctx context.Context) {
	hooks, ok := ctx.Value(hooksKey{}).(*commitHooks)
	if !ok {
		return
	}
	hooks.mu.Lock()
	fns := hooks.fns
	hooks.fns = nil
	hooks.mu.Unlock()
	for _, fn := range fns {
		fn(ctx)
	}
}
