package store

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"cuefm/logger"
)

// ChangeEvent reports that a logical document was rewritten on disk.
type ChangeEvent struct {
	// Document is the base filename, e.g. "manifest.json".
	Document string
}

// Watcher observes the data directory and reports document rewrites,
// including those made by other processes sharing the directory. Temp files
// from in-flight atomic writes are ignored; the rename that commits a write
// is what surfaces here.
type Watcher struct {
	fsw    *fsnotify.Watcher
	events chan ChangeEvent
}

// NewWatcher starts watching dataDir. documents lists the base filenames to
// report; everything else in the directory is ignored.
func NewWatcher(dataDir string, documents []string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(dataDir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", dataDir, err)
	}

	known := make(map[string]struct{}, len(documents))
	for _, d := range documents {
		known[d] = struct{}{}
	}

	w := &Watcher{fsw: fsw, events: make(chan ChangeEvent, 16)}
	go w.run(known)
	return w, nil
}

// Events returns the change stream. The channel closes when the watcher
// stops.
func (w *Watcher) Events() <-chan ChangeEvent { return w.events }

// Close stops watching and closes the event channel.
func (w *Watcher) Close() error { return w.fsw.Close() }

func (w *Watcher) run(known map[string]struct{}) {
	defer close(w.events)
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Rename) {
				continue
			}
			name := filepath.Base(ev.Name)
			if strings.HasSuffix(name, ".tmp") {
				continue
			}
			if _, ok := known[name]; !ok {
				continue
			}
			select {
			case w.events <- ChangeEvent{Document: name}:
			default:
				// Slow consumer: drop rather than block the watch loop. A
				// missed event only delays a UI refresh.
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logger.Warn("[Store] Watcher error", logger.ErrorField(err))
		}
	}
}

// WatchInto forwards change events to fn until ctx is done. Convenience for
// wiring the watcher to the live hub.
func (w *Watcher) WatchInto(ctx context.Context, fn func(ChangeEvent)) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.events:
			if !ok {
				return
			}
			fn(ev)
		}
	}
}
