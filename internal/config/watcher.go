package config

import (
	"errors"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// WatchEvent carries a reloaded config or the error that prevented it.
type WatchEvent struct {
	Config *Config
	Err    error
}

// Watcher reloads the config file whenever it is written.
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher
	events  chan WatchEvent
	done    chan struct{}
	mu      sync.Mutex
	running bool
	stopped bool
}

// NewWatcher creates a Watcher for the config file at path. The file's
// directory must exist; the file itself need not.
func NewWatcher(path string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		path:    filepath.Clean(path),
		watcher: fsw,
		events:  make(chan WatchEvent, 4),
		done:    make(chan struct{}),
	}, nil
}

// Start begins watching. Editors often replace files by rename, so the
// directory is watched rather than the file. If the directory cannot be
// watched the Watcher is released and Events is closed.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return errors.New("watcher stopped")
	}
	if w.running {
		return errors.New("watcher already running")
	}

	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		w.releaseLocked()
		return err
	}
	w.running = true
	go w.processEvents()
	return nil
}

// Stop stops watching and closes Events. It is safe to call more than once.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	if !w.running {
		w.releaseLocked()
		return
	}
	w.running = false
	w.stopped = true
	close(w.done)
	w.watcher.Close()
}

// releaseLocked closes a watcher whose event loop never started.
func (w *Watcher) releaseLocked() {
	w.stopped = true
	w.watcher.Close()
	close(w.events)
}

// Events returns the channel of reload results.
func (w *Watcher) Events() <-chan WatchEvent {
	return w.events
}

func (w *Watcher) processEvents() {
	defer close(w.events)
	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				cfg, err := Load(w.path)
				w.send(WatchEvent{Config: cfg, Err: err})
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.send(WatchEvent{Err: err})
		}
	}
}

func (w *Watcher) send(ev WatchEvent) {
	select {
	case w.events <- ev:
	case <-w.done:
	}
}
