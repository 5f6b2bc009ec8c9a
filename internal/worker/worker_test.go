package worker

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSpawnAndJoinReturnsTaskStatus(t *testing.T) {
	t.Parallel()

	rt := NewRuntime()

	ok, err := rt.Spawn("ok", func() int { return StatusOK })
	assert.NoError(t, err)
	assert.Equal(t, StatusOK, ok.Join())

	failed, err := rt.Spawn("failed", func() int { return StatusFailed })
	assert.NoError(t, err)
	assert.Equal(t, StatusFailed, failed.Join())
}

func TestSpawnNilTask(t *testing.T) {
	t.Parallel()

	rt := NewRuntime()
	h, err := rt.Spawn("nil", nil)
	assert.Nil(t, h)
	assert.ErrorIs(t, err, ErrNilTask)
}

func TestWorkerIDsAreUnique(t *testing.T) {
	t.Parallel()

	rt := NewRuntime()
	seen := make(map[uint64]bool)
	for i := 0; i < 100; i++ {
		h, err := rt.Spawn("w", func() int { return StatusOK })
		assert.NoError(t, err)
		assert.False(t, seen[h.ID()], "duplicate worker ID %d", h.ID())
		seen[h.ID()] = true
		h.Join()
	}
}

func TestIDAssignedBeforeTaskRuns(t *testing.T) {
	t.Parallel()

	rt := NewRuntime()
	block := make(chan struct{})
	h, err := rt.Spawn("blocked", func() int {
		<-block
		return StatusOK
	})
	assert.NoError(t, err)
	assert.NotZero(t, h.ID())

	close(block)
	assert.Equal(t, StatusOK, h.Join())
}

func TestPanickingTaskIsContained(t *testing.T) {
	t.Parallel()

	rt := NewRuntime()
	h, err := rt.Spawn("panics", func() int {
		panic("worker blew up")
	})
	assert.NoError(t, err)
	assert.Equal(t, StatusPanicked, h.Join())
}

func TestJoinIsIdempotent(t *testing.T) {
	t.Parallel()

	rt := NewRuntime()
	h, err := rt.Spawn("twice", func() int { return StatusFailed })
	assert.NoError(t, err)
	assert.Equal(t, StatusFailed, h.Join())
	assert.Equal(t, StatusFailed, h.Join())
}

func TestWorkersRunConcurrently(t *testing.T) {
	t.Parallel()

	rt := NewRuntime()

	const n = 8
	var mu sync.Mutex
	running := 0
	peak := 0
	release := make(chan struct{})

	handles := make([]*Handle, n)
	for i := 0; i < n; i++ {
		h, err := rt.Spawn("concurrent", func() int {
			mu.Lock()
			running++
			if running > peak {
				peak = running
			}
			mu.Unlock()

			<-release

			mu.Lock()
			running--
			mu.Unlock()
			return StatusOK
		})
		assert.NoError(t, err)
		handles[i] = h
	}

	// Give every worker a moment to reach the barrier.
	deadline := time.After(2 * time.Second)
	for {
		mu.Lock()
		p := peak
		mu.Unlock()
		if p == n {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("only %d of %d workers running concurrently", p, n)
		case <-time.After(5 * time.Millisecond):
		}
	}

	close(release)
	for _, h := range handles {
		assert.Equal(t, StatusOK, h.Join())
	}
}
