// Package watch reports changes to a fixed set of files.
//
// Watching uses fsnotify on the files' parent directories, which survives
// editors that save by renaming a temporary file over the original. When
// notifications are unavailable the watcher falls back to polling
// modification times.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Watcher calls back when any of its files is written, created or replaced.
type Watcher struct {
	files    []string
	interval time.Duration
	debounce time.Duration
	polling  bool
	logger   zerolog.Logger
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithInterval sets the polling interval used by the fallback.
func WithInterval(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.interval = d
		}
	}
}

// WithDebounce sets how long to wait for further events before reporting
// a batch of changes.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d >= 0 {
			w.debounce = d
		}
	}
}

// WithPolling forces the polling implementation.
func WithPolling() Option {
	return func(w *Watcher) {
		w.polling = true
	}
}

// WithLogger sets the logger for watcher errors.
func WithLogger(logger zerolog.Logger) Option {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// New creates a watcher for the given files. Paths are made absolute.
func New(files []string, opts ...Option) (*Watcher, error) {
	if len(files) == 0 {
		return nil, errors.New("watch: no files given")
	}

	w := &Watcher{
		interval: 500 * time.Millisecond,
		debounce: 100 * time.Millisecond,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}

	seen := make(map[string]bool, len(files))
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", f, err)
		}
		if !seen[abs] {
			seen[abs] = true
			w.files = append(w.files, abs)
		}
	}
	sort.Strings(w.files)

	return w, nil
}

// Files returns the absolute paths being watched.
func (w *Watcher) Files() []string {
	return append([]string(nil), w.files...)
}

// Run blocks until ctx is cancelled, calling fn with the sorted absolute
// paths that changed since the previous call. fn runs on the watcher's
// goroutine; events arriving meanwhile are batched into the next call.
func (w *Watcher) Run(ctx context.Context, fn func(changed []string)) error {
	if w.polling {
		return w.poll(ctx, fn)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.logger.Warn().Err(err).Msg("file notifications unavailable, polling")
		return w.poll(ctx, fn)
	}
	defer watcher.Close()

	for _, dir := range w.dirs() {
		if err := watcher.Add(dir); err != nil {
			w.logger.Warn().Err(err).Str("dir", dir).Msg("cannot watch directory, polling")
			return w.poll(ctx, fn)
		}
	}

	return w.notify(ctx, watcher, fn)
}

func (w *Watcher) dirs() []string {
	seen := make(map[string]bool)
	var dirs []string
	for _, f := range w.files {
		dir := filepath.Dir(f)
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

// notify consumes fsnotify events, debouncing them into batches.
func (w *Watcher) notify(ctx context.Context, watcher *fsnotify.Watcher, fn func([]string)) error {
	watched := make(map[string]bool, len(w.files))
	for _, f := range w.files {
		watched[f] = true
	}

	pending := make(map[string]bool)
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			name := filepath.Clean(event.Name)
			if !watched[name] {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			pending[name] = true
			fire = time.After(w.debounce)

		case <-fire:
			fire = nil
			fn(drain(pending))

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn().Err(err).Msg("watch error")
		}
	}
}

type fileState struct {
	exists  bool
	size    int64
	modTime time.Time
}

func (s fileState) differs(o fileState) bool {
	return s.exists != o.exists || s.size != o.size || !s.modTime.Equal(o.modTime)
}

func (w *Watcher) snapshot() map[string]fileState {
	states := make(map[string]fileState, len(w.files))
	for _, f := range w.files {
		info, err := os.Stat(f)
		if err != nil {
			states[f] = fileState{}
			continue
		}
		states[f] = fileState{exists: true, size: info.Size(), modTime: info.ModTime()}
	}
	return states
}

// poll compares file states on every tick.
func (w *Watcher) poll(ctx context.Context, fn func([]string)) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	last := w.snapshot()
	for {
		select {
		case <-ctx.Done():
			return nil

		case <-ticker.C:
			current := w.snapshot()
			pending := make(map[string]bool)
			for f, state := range current {
				if state.exists && state.differs(last[f]) {
					pending[f] = true
				}
			}
			last = current
			if len(pending) > 0 {
				fn(drain(pending))
			}
		}
	}
}

// drain returns the sorted keys of pending and empties it.
func drain(pending map[string]bool) []string {
	changed := make([]string, 0, len(pending))
	for f := range pending {
		changed = append(changed, f)
		delete(pending, f)
	}
	sort.Strings(changed)
	return changed
}
