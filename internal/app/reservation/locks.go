package reservation

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"tradeboard/internal/domain/announcements"
)

var ErrBusy = errors.New("reservation: announcement is busy, retry later")

// Locks hands out one exclusive slot per announcement. Entries are dropped
// once no caller holds or waits for them.
type Locks struct {
	mu      sync.Mutex
	entries map[announcements.ID]*lockEntry
}

type lockEntry struct {
	sem  *semaphore.Weighted
	refs int
}

func NewLocks() *Locks {
	return &Locks{entries: make(map[announcements.ID]*lockEntry)}
}

// Acquire waits at most wait for the announcement's slot. It returns ErrBusy
// when the wait elapses and ctx.Err() when the caller gives up first. A
// non-positive wait blocks until ctx is done.
func (l *Locks) Acquire(ctx context.Context, id announcements.ID, wait time.Duration) (func(), error) {
	entry := l.ref(id)

	acquireCtx := ctx
	cancel := func() {}
	if wait > 0 {
		acquireCtx, cancel = context.WithTimeout(ctx, wait)
	}
	err := entry.sem.Acquire(acquireCtx, 1)
	cancel()
	if err != nil {
		l.unref(id)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, ErrBusy
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			entry.sem.Release(1)
			l.unref(id)
		})
	}, nil
}

// Len reports how many announcements currently have a live entry.
func (l *Locks) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

func (l *Locks) ref(id announcements.ID) *lockEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry, ok := l.entries[id]
	if !ok {
		entry = &lockEntry{sem: semaphore.NewWeighted(1)}
		l.entries[id] = entry
	}
	entry.refs++
	return entry
}

func (l *Locks) unref(id announcements.ID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry, ok := l.entries[id]
	if !ok {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(l.entries, id)
	}
}
