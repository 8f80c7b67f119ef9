// Package watcher reloads the settings pipeline when the authored settings
// file changes on disk.
//
// Editors replace files with write+rename, so the watcher monitors the
// containing directory and filters to the target file. Rapid change bursts
// are debounced into one reload.
package watcher

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// ReloadFunc is called once per debounced change to the settings file.
type ReloadFunc func(path string)

// Watcher monitors a single settings file.
type Watcher struct {
	path     string
	reload   ReloadFunc
	debounce time.Duration
	log      zerolog.Logger

	fsw      *fsnotify.Watcher
	mu       sync.Mutex
	timer    *time.Timer
	closed   bool
	closeCh  chan struct{}
	closedWg sync.WaitGroup
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before a reload fires.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// New creates a watcher for one settings file. Watching does not start
// until Start is called.
func New(path string, reload ReloadFunc, log zerolog.Logger, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		path:     abs,
		reload:   reload,
		debounce: 150 * time.Millisecond,
		log:      log,
		closeCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start begins watching the settings file's directory.
func (w *Watcher) Start() error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		_ = fsw.Close()
		return err
	}

	w.fsw = fsw
	w.closedWg.Add(1)
	go w.loop()
	return nil
}

// Close stops watching. Safe to call more than once, and before Start.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
	}
	close(w.closeCh)
	w.mu.Unlock()

	// fsw is only set once Start has run.
	if w.fsw == nil {
		return nil
	}
	err := w.fsw.Close()
	w.closedWg.Wait()
	return err
}

// loop consumes fsnotify events until Close.
func (w *Watcher) loop() {
	defer w.closedWg.Done()

	for {
		select {
		case <-w.closeCh:
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.schedule()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn().Err(err).Str("path", w.path).Msg("settings watch error")
		}
	}
}

// schedule arms the debounce timer, restarting it on each new event.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		w.log.Debug().Str("path", w.path).Msg("settings file changed, reloading")
		w.reload(w.path)
	})
}
