package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradeboard/internal/app/middleware"
	appoutbox "tradeboard/internal/app/outbox"
	domainavailability "tradeboard/internal/domain/availability"
	"tradeboard/internal/domain/shared/daterange"
	domaintransactions "tradeboard/internal/domain/transactions"
)

func TestCalendarRepositoryDetectsStaleWrites(t *testing.T) {
	repo := NewCalendarRepository()
	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, domainavailability.NewCalendar("ann-1")))

	a, err := repo.Calendar(ctx, "ann-1")
	require.NoError(t, err)
	b, err := repo.Calendar(ctx, "ann-1")
	require.NoError(t, err)

	a.Available.Add(daterange.MustParse("2024-06-01"))
	require.NoError(t, repo.Save(ctx, a))
	assert.ErrorIs(t, repo.Save(ctx, b), domainavailability.ErrConcurrentUpdate)
}

func TestCalendarRepositoryReturnsCopies(t *testing.T) {
	repo := NewCalendarRepository()
	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, domainavailability.NewCalendar("ann-1")))

	cal, err := repo.Calendar(ctx, "ann-1")
	require.NoError(t, err)
	cal.Available.Add(daterange.MustParse("2024-06-01"))

	again, err := repo.Calendar(ctx, "ann-1")
	require.NoError(t, err)
	assert.Empty(t, again.Available)
}

func TestTransactionListOrdering(t *testing.T) {
	repo := NewTransactionRepository()
	ctx := context.Background()
	at := time.Date(2024, 5, 20, 9, 0, 0, 0, time.UTC)
	for _, tx := range []*domaintransactions.Transaction{
		{ID: "a", SellerID: "s", BuyerID: "b", CreatedAt: at},
		{ID: "c", SellerID: "s", BuyerID: "x", CreatedAt: at.Add(time.Hour)},
		{ID: "b", SellerID: "s", BuyerID: "b", CreatedAt: at},
		{ID: "d", SellerID: "other", BuyerID: "x", CreatedAt: at},
	} {
		require.NoError(t, repo.Save(ctx, tx))
	}

	list, err := repo.ListByParty(ctx, "s")
	require.NoError(t, err)
	ids := make([]domaintransactions.ID, len(list))
	for i, tx := range list {
		ids[i] = tx.ID
	}
	assert.Equal(t, []domaintransactions.ID{"c", "b", "a"}, ids)

	none, err := repo.ListByParty(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestIdempotencyStoreExpires(t *testing.T) {
	store := NewIdempotencyStore(time.Minute)
	now := time.Date(2024, 5, 20, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, middlewareRecord("k", now)))
	_, found, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)

	now = now.Add(2 * time.Minute)
	_, found, err = store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestOutboxDiscardDropsPending(t *testing.T) {
	box := NewOutbox(nil)
	ctx := context.Background()
	require.NoError(t, box.Add(ctx, outboxRecord("calendar.range_reserved")))
	box.Discard(ctx)
	require.NoError(t, box.Add(ctx, outboxRecord("transaction.created")))
	require.NoError(t, box.Flush(ctx))
	assert.Equal(t, []string{"transaction.created"}, box.Published())
}

func TestOutboxBatchesAreIsolated(t *testing.T) {
	box := NewOutbox(nil)
	failing := appoutbox.WithBatch(context.Background())
	inFlight := appoutbox.WithBatch(context.Background())

	require.NoError(t, box.Add(inFlight, outboxRecord("transaction.created")))
	require.NoError(t, box.Add(failing, outboxRecord("calendar.range_reserved")))
	box.Discard(failing)
	require.NoError(t, box.Flush(inFlight))

	assert.Equal(t, []string{"transaction.created"}, box.Published())
	require.NoError(t, box.Flush(failing))
	assert.Equal(t, []string{"transaction.created"}, box.Published())
}

func middlewareRecord(key string, at time.Time) middleware.IdempotencyRecord {
	return middleware.IdempotencyRecord{Key: key, Payload: []byte(`{}`), OccurredAt: at}
}

func outboxRecord(name string) appoutbox.EventRecord {
	return appoutbox.EventRecord{ID: name, Name: name, Aggregate: "ann-1", Payload: []byte(`{}`)}
}
