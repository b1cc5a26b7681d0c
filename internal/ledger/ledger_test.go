package ledger

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequence(t *testing.T) {
	seq := NewSequence()

	assert.Equal(t, uint64(0), seq.Current(), "fresh sequence has assigned nothing")
	assert.Equal(t, uint64(1), seq.Next(), "ids start at 1, 0 is reserved")
	assert.Equal(t, uint64(2), seq.Next())
	assert.Equal(t, uint64(2), seq.Current())
}

func TestSequence_ConcurrentNextIsUnique(t *testing.T) {
	seq := NewSequence()
	const n = 200

	var wg sync.WaitGroup
	ids := make(chan uint64, n)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids <- seq.Next()
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[uint64]bool, n)
	for id := range ids {
		require.False(t, seen[id], "id %d assigned twice", id)
		seen[id] = true
	}
	assert.Equal(t, uint64(n), seq.Current())
}

func TestTx_SerializesReadModifyWrite(t *testing.T) {
	tx := NewTx()
	const n = 100

	// A deliberately racy counter: without serialization the lost-update
	// pattern below drops increments.
	counter := 0
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = tx.RunInTx(context.Background(), func(context.Context) error {
				v := counter
				counter = v + 1
				return nil
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, n, counter)
}

func TestTx_RejectsCancelledContext(t *testing.T) {
	tx := NewTx()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := tx.RunInTx(ctx, func(context.Context) error {
		t.Fatal("callback must not run for a cancelled context")
		return nil
	})
	require.Error(t, err)
}

func TestTx_PropagatesCallbackError(t *testing.T) {
	tx := NewTx()

	sentinelErr := assert.AnError
	err := tx.RunInTx(context.Background(), func(context.Context) error {
		return sentinelErr
	})
	require.ErrorIs(t, err, sentinelErr)
}
