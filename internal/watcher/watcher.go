// Package watcher re-runs a callback when watched files change.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is the quiet period after the last event before the
// callback runs.
const DefaultDebounce = 500 * time.Millisecond

// ErrNoPaths is returned by New when there is nothing to watch.
var ErrNoPaths = errors.New("watcher: no paths to watch")

// ChangeFunc receives the changed files, sorted. It runs on the watch
// goroutine, so events arriving meanwhile are handled after it returns.
type ChangeFunc func(ctx context.Context, changed []string)

// Watcher watches files for changes.
type Watcher struct {
	files    map[string]struct{} // absolute, cleaned
	dirs     []string
	onChange ChangeFunc
	debounce time.Duration
	logger   *zap.Logger

	ready     chan struct{}
	readyOnce sync.Once
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the debounce duration. Zero or negative keeps the default.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger. A nil logger disables logging.
func WithLogger(l *zap.Logger) Option {
	return func(w *Watcher) {
		if l == nil {
			l = zap.NewNop()
		}
		w.logger = l
	}
}

// New creates a watcher for paths. The parent directories are watched
// rather than the files, so editors that replace a file on save are seen.
func New(paths []string, onChange ChangeFunc, opts ...Option) (*Watcher, error) {
	if len(paths) == 0 {
		return nil, ErrNoPaths
	}

	w := &Watcher{
		files:    make(map[string]struct{}, len(paths)),
		onChange: onChange,
		debounce: DefaultDebounce,
		logger:   zap.NewNop(),
		ready:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	dirs := make(map[string]struct{})
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("watcher: resolving %s: %w", p, err)
		}
		w.files[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	w.dirs = slices.Sorted(maps.Keys(dirs))

	return w, nil
}

// Files returns the watched files, sorted.
func (w *Watcher) Files() []string {
	return slices.Sorted(maps.Keys(w.files))
}

// Ready is closed once every directory is being watched.
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// Watch blocks until ctx is cancelled or the underlying watcher fails.
// It returns ctx.Err() on cancellation.
func (w *Watcher) Watch(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watcher: %w", err)
	}
	defer fsw.Close()

	for _, dir := range w.dirs {
		if err := fsw.Add(dir); err != nil {
			return fmt.Errorf("watcher: watching %s: %w", dir, err)
		}
	}
	w.logger.Info("watching for changes",
		zap.Strings("files", w.Files()),
		zap.Duration("debounce", w.debounce))
	w.readyOnce.Do(func() { close(w.ready) })

	var (
		pending = make(map[string]struct{})
		timer   = time.NewTimer(w.debounce)
		fire    <-chan time.Time // nil while nothing is pending
	)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			name := filepath.Clean(event.Name)
			if _, watched := w.files[name]; !watched {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.logger.Debug("file event", zap.String("file", name), zap.Stringer("op", event.Op))
			pending[name] = struct{}{}
			timer.Reset(w.debounce)
			fire = timer.C

		case <-fire:
			fire = nil
			changed := slices.Sorted(maps.Keys(pending))
			clear(pending)
			w.logger.Info("files changed", zap.Strings("files", changed))
			if w.onChange != nil {
				w.onChange(ctx, changed)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", zap.Error(err))

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
