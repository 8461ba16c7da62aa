package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type calls struct {
	mu    sync.Mutex
	paths []string
}

func (c *calls) handle(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paths = append(c.paths, path)
}

func (c *calls) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.paths)
}

func start(t *testing.T, path string, h Handler, opts ...Option) (*Watcher, context.CancelFunc, chan error) {
	t.Helper()
	w, err := New(path, h, opts...)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return w, cancel, done
}

func TestBurstIsDebounced(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mapping.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o644))

	c := &calls{}
	w, _, _ := start(t, path, c.handle, WithDebounce(100*time.Millisecond))

	for i := range 5 {
		require.NoError(t, os.WriteFile(path, []byte{'{', '}', byte('0' + i)}, 0o644))
		time.Sleep(5 * time.Millisecond)
	}

	require.Eventually(t, func() bool { return c.count() == 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, 1, c.count())
	assert.Equal(t, w.Path(), c.paths[0])
	assert.GreaterOrEqual(t, w.Events(), int64(1))
	assert.Equal(t, int64(1), w.Reloads())
}

func TestOtherFilesAreIgnored(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mapping.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o644))

	c := &calls{}
	w, _, _ := start(t, path, c.handle, WithDebounce(10*time.Millisecond))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte(`{}`), 0o644))
	time.Sleep(100 * time.Millisecond)
	assert.Zero(t, c.count())
	assert.Zero(t, w.Events())
}

func TestRenameOverIsSeen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mapping.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o644))

	c := &calls{}
	start(t, path, c.handle, WithDebounce(10*time.Millisecond))

	tmp := filepath.Join(dir, ".mapping.json.swp")
	require.NoError(t, os.WriteFile(tmp, []byte(`{"a":1}`), 0o644))
	require.NoError(t, os.Rename(tmp, path))

	require.Eventually(t, func() bool { return c.count() == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestRunStopsAndCannotRestart(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mapping.json")

	w, err := New(path, func(string) {})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, w.Run(ctx), context.Canceled)
	assert.ErrorIs(t, w.Run(context.Background()), ErrWatcherClosed)
}

func TestMissingDirectory(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "nope", "mapping.json"), func(string) {})
	assert.Error(t, err)
}

func TestCloseBeforeRun(t *testing.T) {
	w, err := New(filepath.Join(t.TempDir(), "mapping.json"), func(string) {})
	require.NoError(t, err)
	w.Close()
	w.Close()
	assert.ErrorIs(t, w.Run(context.Background()), ErrWatcherClosed)
}
