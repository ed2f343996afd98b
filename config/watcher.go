package config

import (
	"log/slog"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// ConfigChanged is published whenever the watched file changes and
// reparses successfully. A failed reparse is logged and the previous
// Document remains current — the watcher never hands a caller a partial
// or invalid document.
type ConfigChanged struct {
	Document *Document
}

// Watcher reloads a config file on change. This is a loader-level
// convenience only: the core client never reloads a live connection's
// launch parameters on its own.
type Watcher struct {
	watcher *fsnotify.Watcher
	events  chan ConfigChanged

	mu     sync.Mutex
	closed bool
}

// Watch starts watching path for changes, reparsing and publishing a
// ConfigChanged event on every successful write.
func Watch(path string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(path); err != nil {
		_ = fw.Close()
		return nil, err
	}

	w := &Watcher{
		watcher: fw,
		events:  make(chan ConfigChanged, 8),
	}
	go w.run(path)
	return w, nil
}

func (w *Watcher) run(path string) {
	defer close(w.events)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			doc, err := Load(path)
			if err != nil {
				slog.Warn("config reload failed, keeping previous configuration", "path", path, "error", err)
				continue
			}
			select {
			case w.events <- ConfigChanged{Document: doc}:
			default:
				slog.Warn("config change event dropped, subscriber too slow", "path", path)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("config watcher error", "error", err)
		}
	}
}

// Events returns the channel of successfully reloaded documents.
func (w *Watcher) Events() <-chan ConfigChanged {
	return w.events
}

// Close stops watching. Idempotent.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	return w.watcher.Close()
}
