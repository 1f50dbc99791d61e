package middleware_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradeboard/internal/app/commands"
	"tradeboard/internal/app/middleware"
	appoutbox "tradeboard/internal/app/outbox"
	"tradeboard/internal/app/uow"
	"tradeboard/internal/infra/storage/memory"
)

type noteCmd struct{ name string }

func (c noteCmd) Key() string { return "test.note" }

// notifier records an event and schedules a side effect for after commit.
type notifier struct {
	box      *memory.Outbox
	notified []string
}

func (n *notifier) Handle(ctx context.Context, cmd noteCmd) (string, error) {
	if _, ok := uow.FromContext(ctx); !ok {
		return "", uow.ErrUnitOfWorkMissing
	}
	if err := n.box.Add(ctx, appoutbox.EventRecord{ID: cmd.name, Name: cmd.name}); err != nil {
		return "", err
	}
	uow.AfterCommit(ctx, func(context.Context) { n.notified = append(n.notified, cmd.name) })
	return cmd.name, nil
}

type commitFailUnit struct {
	uow.UnitOfWork
	err error
}

func (u commitFailUnit) Commit(context.Context) error { return u.err }

type commitFailFactory struct {
	memory.Factory
	err error
}

func (f commitFailFactory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	unit, err := f.Factory.Begin(ctx, opts)
	if err != nil {
		return nil, err
	}
	return commitFailUnit{UnitOfWork: unit, err: f.err}, nil
}

func noteBus(factory uow.UoWFactory, h *notifier) commands.Bus {
	bus := commands.NewInMemoryBus()
	commands.RegisterHandler[noteCmd, string](bus, "test.note", h)
	return middleware.ChainCommands(bus,
		middleware.OutboxFlush(h.box),
		middleware.Transaction(factory, nil),
	)
}

func TestTransactionRunsHooksAndFlushesAfterCommit(t *testing.T) {
	h := &notifier{box: memory.NewOutbox(nil)}
	bus := noteBus(memory.NewFactory(), h)

	got, err := commands.Dispatch[noteCmd, string](context.Background(), bus, noteCmd{name: "note.created"})
	require.NoError(t, err)
	assert.Equal(t, "note.created", got)
	assert.Equal(t, []string{"note.created"}, h.notified)
	assert.Equal(t, []string{"note.created"}, h.box.Published())
}

func TestFailedCommitSkipsHooksAndDiscardsEvents(t *testing.T) {
	commitErr := errors.New("write conflict")
	h := &notifier{box: memory.NewOutbox(nil)}
	bus := noteBus(commitFailFactory{Factory: memory.NewFactory(), err: commitErr}, h)

	_, err := commands.Dispatch[noteCmd, string](context.Background(), bus, noteCmd{name: "note.created"})
	require.ErrorIs(t, err, commitErr)
	assert.Contains(t, err.Error(), "commit unit of work")
	assert.Empty(t, h.notified)
	assert.Empty(t, h.box.Published())

	ok := &notifier{box: h.box}
	_, err = commands.Dispatch[noteCmd, string](context.Background(), noteBus(memory.NewFactory(), ok), noteCmd{name: "note.kept"})
	require.NoError(t, err)
	assert.Equal(t, []string{"note.kept"}, h.box.Published(), "the failed batch never leaks into a later flush")
}
