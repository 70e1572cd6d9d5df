package cleanup

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDestroyer fails the first failures calls for every asset.
type fakeDestroyer struct {
	mu        sync.Mutex
	failures  int
	calls     map[string]int
	destroyed []string
	block     chan struct{}
}

func newFakeDestroyer(failures int) *fakeDestroyer {
	return &fakeDestroyer{failures: failures, calls: make(map[string]int)}
}

func (f *fakeDestroyer) Destroy(ctx context.Context, assetID string) error {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[assetID]++
	if f.failures < 0 || f.calls[assetID] <= f.failures {
		return errors.New("media host unavailable")
	}
	f.destroyed = append(f.destroyed, assetID)
	return nil
}

func (f *fakeDestroyer) Destroyed() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.destroyed...)
}

func testOptions() Options {
	return Options{
		Workers:         2,
		QueueSize:       8,
		MaxElapsedTime:  200 * time.Millisecond,
		InitialInterval: 5 * time.Millisecond,
		AttemptTimeout:  time.Second,
	}
}

func drain(t *testing.T, w *Worker) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.True(t, w.DrainUntil(ctx), "drain timeout")
}

func TestWorker_DeletesByAssetID(t *testing.T) {
	// GIVEN
	destroyer := newFakeDestroyer(0)
	w := NewWorker(destroyer, testOptions())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)
	defer w.Stop()

	// WHEN
	ok := w.Enqueue("https://res.cloudinary.com/demo/image/upload/v1/abc123.jpg")

	// THEN
	require.True(t, ok)
	drain(t, w)
	assert.Equal(t, []string{"abc123"}, destroyer.Destroyed())
	assert.Empty(t, w.DeadLetters())
}

func TestWorker_RetriesTransientFailures(t *testing.T) {
	destroyer := newFakeDestroyer(2)
	w := NewWorker(destroyer, testOptions())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)
	defer w.Stop()

	require.True(t, w.Enqueue("retry.png"))
	drain(t, w)

	assert.Equal(t, []string{"retry"}, destroyer.Destroyed())
	assert.Empty(t, w.DeadLetters())
}

func TestWorker_DeadLettersPermanentFailures(t *testing.T) {
	destroyer := newFakeDestroyer(-1)
	w := NewWorker(destroyer, testOptions())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)
	defer w.Stop()

	require.True(t, w.Enqueue("https://host/products/broken.jpg"))
	drain(t, w)

	failed := w.DeadLetters()
	require.Len(t, failed, 1)
	assert.Equal(t, "broken", failed[0].AssetID)
	assert.Equal(t, "https://host/products/broken.jpg", failed[0].ImageURL)
	assert.GreaterOrEqual(t, failed[0].Attempts, 2)
	assert.Contains(t, failed[0].Error, "media host unavailable")
}

func TestWorker_SkipsURLWithoutAssetID(t *testing.T) {
	w := NewWorker(newFakeDestroyer(0), testOptions())

	assert.False(t, w.Enqueue("https://host/products/"))
	assert.Zero(t, w.Pending())
	assert.Empty(t, w.DeadLetters())
}

func TestWorker_QueueFullGoesToDeadLetters(t *testing.T) {
	destroyer := newFakeDestroyer(0)
	opts := testOptions()
	opts.QueueSize = 1
	w := NewWorker(destroyer, opts)

	// not started: the single slot fills up
	require.True(t, w.Enqueue("first.jpg"))
	assert.False(t, w.Enqueue("second.jpg"))

	failed := w.DeadLetters()
	require.Len(t, failed, 1)
	assert.Equal(t, "second", failed[0].AssetID)
	assert.Equal(t, "cleanup queue full", failed[0].Error)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)
	drain(t, w)
	w.Stop()
	assert.Equal(t, []string{"first"}, destroyer.Destroyed())
}

func TestWorker_StopDrainsQueueAndClosesIntake(t *testing.T) {
	destroyer := newFakeDestroyer(0)
	destroyer.block = make(chan struct{})
	w := NewWorker(destroyer, testOptions())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)

	require.True(t, w.Enqueue("a.jpg"))
	require.True(t, w.Enqueue("b.jpg"))
	close(destroyer.block)
	w.Stop()

	assert.ElementsMatch(t, []string{"a", "b"}, destroyer.Destroyed())
	assert.False(t, w.Enqueue("late.jpg"))
	require.Len(t, w.DeadLetters(), 1)
	assert.Equal(t, "cleanup intake closed", w.DeadLetters()[0].Error)

	// second Stop is a no-op
	w.Stop()
}
