// Package watcher reloads a file when it changes on disk.
//
// The parent directory is watched rather than the file itself, so editors
// that save by renaming a temporary file over the original are seen too.
// Bursts of events within the debounce window produce one callback.
package watcher

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDebounce is the quiet period before a change is reported.
const DefaultDebounce = 200 * time.Millisecond

// ErrWatcherClosed is returned by Run on a watcher that already ran.
var ErrWatcherClosed = errors.New("watcher is closed")

// Handler is called with the watched path after it changes. Calls never
// overlap.
type Handler func(path string)

// Watcher monitors one file.
type Watcher struct {
	path     string
	handler  Handler
	debounce time.Duration
	log      zerolog.Logger

	fsw *fsnotify.Watcher

	mu      sync.Mutex
	timer   *time.Timer
	closed  bool
	calls   sync.WaitGroup
	running sync.Mutex
	once    sync.Once

	events  atomic.Int64
	reloads atomic.Int64
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the debounce duration for rapid changes.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d >= 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the watcher logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(w *Watcher) {
		w.log = logger
	}
}

// New watches path, calling handler after each settled change.
func New(path string, handler Handler, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		path:     abs,
		handler:  handler,
		debounce: DefaultDebounce,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.log = w.log.With().Str("component", "watcher").Str("path", abs).Logger()

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	w.fsw = fsw
	return w, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Run delivers changes until ctx is done. Pending callbacks are cancelled
// and running ones are waited for before it returns.
func (w *Watcher) Run(ctx context.Context) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrWatcherClosed
	}
	w.mu.Unlock()
	defer w.close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn().Err(err).Msg("watch error")
		}
	}
}

// Events counts the relevant file events seen.
func (w *Watcher) Events() int64 {
	return w.events.Load()
}

// Reloads counts handler calls.
func (w *Watcher) Reloads() int64 {
	return w.reloads.Load()
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	if filepath.Clean(ev.Name) != w.path {
		return
	}
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return
	}
	w.events.Add(1)
	w.log.Debug().Str("op", ev.Op.String()).Msg("file event")

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if w.timer != nil {
		w.timer.Reset(w.debounce)
		return
	}
	w.timer = time.AfterFunc(w.debounce, w.fire)
}

func (w *Watcher) fire() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.timer = nil
	w.calls.Add(1)
	w.mu.Unlock()
	defer w.calls.Done()

	w.running.Lock()
	defer w.running.Unlock()
	w.reloads.Add(1)
	w.handler(w.path)
}

// Close stops watching without running. A running Run returns.
func (w *Watcher) Close() {
	w.close()
}

func (w *Watcher) close() {
	w.once.Do(w.shutdown)
}

func (w *Watcher) shutdown() {
	w.mu.Lock()
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.mu.Unlock()
	w.calls.Wait()
	if err := w.fsw.Close(); err != nil {
		w.log.Warn().Err(err).Msg("close watcher")
	}
}
