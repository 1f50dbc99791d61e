package reservation

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocksExcludePerAnnouncement(t *testing.T) {
	locks := NewLocks()

	release, err := locks.Acquire(context.Background(), "a", time.Second)
	require.NoError(t, err)

	_, err = locks.Acquire(context.Background(), "a", 10*time.Millisecond)
	assert.ErrorIs(t, err, ErrBusy)

	other, err := locks.Acquire(context.Background(), "b", 10*time.Millisecond)
	require.NoError(t, err)
	other()

	release()
	release()
	assert.Zero(t, locks.Len())
}

func TestLocksHandOffToWaiter(t *testing.T) {
	locks := NewLocks()
	release, err := locks.Acquire(context.Background(), "a", time.Second)
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(1)
	var waitErr error
	go func() {
		defer wg.Done()
		next, err := locks.Acquire(context.Background(), "a", time.Second)
		waitErr = err
		if err == nil {
			next()
		}
	}()

	time.Sleep(20 * time.Millisecond)
	release()
	wg.Wait()
	assert.NoError(t, waitErr)
	assert.Zero(t, locks.Len())
}
