package middleware

import (
	"context"

	"tradeboard/internal/app/commands"
	"tradeboard/internal/app/queries"
)

type (
	CommandMiddleware func(next commands.Bus) commands.Bus
	QueryMiddleware   func(next queries.Bus) queries.Bus
)

// ChainCommands wraps base so that mws[0] sees a command first. Nil entries
// are skipped.
func ChainCommands(base commands.Bus, mws ...CommandMiddleware) commands.Bus {
	return chain(base, mws)
}

func ChainQueries(base queries.Bus, mws ...QueryMiddleware) queries.Bus {
	return chain(base, mws)
}

func chain[B any, M ~func(B) B](base B, stages []M) B {
	for i := range stages {
		if wrap := (func(B) B)(stages[len(stages)-1-i]); wrap != nil {
			base = wrap(base)
		}
	}
	return base
}

// commandFunc and queryFunc adapt closures to the bus interfaces.
type (
	commandFunc func(ctx context.Context, cmd commands.Command) (any, error)
	queryFunc   func(ctx context.Context, query queries.Query) (any, error)
)

func (f commandFunc) Dispatch(ctx context.Context, cmd commands.Command) (any, error) {
	return f(ctx, cmd)
}

func (f queryFunc) Ask(ctx context.Context, query queries.Query) (any, error) {
	return f(ctx, query)
}
