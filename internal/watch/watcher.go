// Package watch monitors evidence tables for edits so a ranking run can be
// repeated automatically while an analyst iterates on input data.
package watch

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Change reports that a watched input table was written to or replaced.
type Change struct {
	File string // absolute path of the table
}

// Watcher debounces filesystem events on a fixed set of input tables.
// Editors and downloaders often write a table in several bursts; a single
// Change is emitted per file once the bursts settle.
type Watcher struct {
	Changes <-chan Change

	files   map[string]bool // keyed by cleaned absolute path
	changes chan Change
	done    chan struct{}
	watcher *fsnotify.Watcher
}

const debounce = 250 * time.Millisecond

// NewWatcher creates a watcher over the given table paths. Empty paths are
// ignored; the parent directory of each file is registered so atomic
// rename-into-place saves are seen.
func NewWatcher(paths ...string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ch := make(chan Change, 16)
	w := &Watcher{
		Changes: ch,
		files:   make(map[string]bool),
		changes: ch,
		done:    make(chan struct{}),
		watcher: fw,
	}
	for _, p := range paths {
		if p == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			fw.Close()
			return nil, err
		}
		w.files[abs] = true
	}
	return w, nil
}

// Start registers the watch directories and begins delivering changes.
func (w *Watcher) Start() error {
	dirs := make(map[string]bool)
	for f := range w.files {
		dirs[filepath.Dir(f)] = true
	}
	for d := range dirs {
		if err := w.watcher.Add(d); err != nil {
			return err
		}
	}

	go w.loop()
	return nil
}

// Stop closes the watcher and the Changes channel.
func (w *Watcher) Stop() {
	w.watcher.Close()
	<-w.done
	close(w.changes)
}

func (w *Watcher) loop() {
	defer close(w.done)

	pending := make(map[string]time.Time)
	ticker := time.NewTicker(debounce)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				for file := range pending {
					w.changes <- Change{File: file}
				}
				return
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil || !w.files[abs] {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				pending[abs] = time.Now()
			}

		case _, ok := <-ticker.C:
			if !ok {
				return
			}
			now := time.Now()
			for file, t := range pending {
				if now.Sub(t) >= debounce {
					w.changes <- Change{File: file}
					delete(pending, file)
				}
			}

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// Watch errors are non-fatal; the next event still arrives.
		}
	}
}
