// Package watch reports changes to persisted collection files using fsnotify.
//
// Stores replace their files atomically by renaming a temp file over the
// target, so the watcher observes the parent directory rather than the file
// itself and filters events by base name.
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/vecdocs/internal/core/ports/driven"
	"github.com/custodia-labs/vecdocs/internal/logger"
)

// Ensure Watcher implements the interface.
var _ driven.ChangeWatcher = (*Watcher)(nil)

// DefaultDebounce coalesces bursts of events from a single save.
const DefaultDebounce = 100 * time.Millisecond

// Watcher watches a directory for changes to a set of files.
type Watcher struct {
	dir      string
	names    map[string]struct{}
	debounce time.Duration

	fsw       *fsnotify.Watcher
	closeOnce sync.Once
}

// New creates a watcher on dir for the given base names.
// With no names, every file in dir is watched.
func New(dir string, names ...string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}

	return &Watcher{
		dir:      dir,
		names:    set,
		debounce: DefaultDebounce,
		fsw:      fsw,
	}, nil
}

// SetDebounce changes the quiet period before onChange fires.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.debounce = d
}

// Watch calls onChange once per burst of relevant events until ctx is
// cancelled or the watcher is closed.
func (w *Watcher) Watch(ctx context.Context, onChange func()) error {
	logger.Debug("Watching %s for collection changes", w.dir)

	var (
		timer   *time.Timer
		pending <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			logger.Debug("Collection change: %s %s", event.Op, event.Name)
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			pending = timer.C

		case <-pending:
			pending = nil
			onChange()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				logger.Warn("Watcher queue overflowed, assuming collection changed")
				onChange()
				continue
			}
			logger.Warn("Watcher error: %v", err)
		}
	}
}

// relevant reports whether event may have changed a watched file.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	if len(w.names) == 0 {
		return true
	}
	_, ok := w.names[filepath.Base(event.Name)]
	return ok
}

// Close stops watching. It is safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		err = w.fsw.Close()
	})
	return err
}
