package snapshot

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// Watcher notifies a consumer whenever the published document changes on
// disk, so it can re-load instead of polling. It watches the containing
// directory rather than the file itself: the writer truncates and rewrites
// the file, and some platforms drop a watch on the inode across that.
type Watcher struct {
	watcher    *fsnotify.Watcher
	path       string
	debounce   time.Duration
	lastChange time.Time
	mu         sync.Mutex
	logger     *logrus.Entry
	onChange   func(path string)
}

// NewWatcher creates a watcher for the given document path. The debounce
// window collapses the burst of events a single overwrite produces;
// values <= 0 fall back to 100ms. onChange is invoked with the document
// path after each (debounced) change.
func NewWatcher(path string, debounceMs int, logger *logrus.Entry, onChange func(string)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, err
	}

	if debounceMs <= 0 {
		debounceMs = 100
	}

	return &Watcher{
		watcher:  fw,
		path:     path,
		debounce: time.Duration(debounceMs) * time.Millisecond,
		logger:   logger,
		onChange: onChange,
	}, nil
}

// Start blocks, delivering change notifications until the context is
// cancelled.
func (w *Watcher) Start(ctx context.Context) {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			w.handleChange()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Errorf("Watcher error: %v", err)
		case <-ctx.Done():
			w.watcher.Close()
			return
		}
	}
}

// handleChange fires the callback unless the event falls inside the
// debounce window of the previous one.
func (w *Watcher) handleChange() {
	w.mu.Lock()
	elapsed := time.Since(w.lastChange)
	if elapsed < w.debounce {
		w.mu.Unlock()
		w.logger.Debugf("Debounced state change (only %v since last)", elapsed)
		return
	}
	w.lastChange = time.Now()
	w.mu.Unlock()

	w.logger.WithField("path", w.path).Debug("State document changed")
	if w.onChange != nil {
		w.onChange(w.path)
	}
}

// Close stops the watcher and releases its resources.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
