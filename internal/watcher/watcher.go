package watcher

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is the coalescing window named in the watcher design:
// 500ms of quiet before a batch of changes is handed to the handler.
const DefaultDebounce = 500

// skipDirs mirrors the scanner's builtin ignore list; directories here are
// never watched, so editor/VCS/build-tool churn inside them never triggers
// a re-analyze.
var skipDirs = map[string]bool{
	".git": true, ".svn": true, ".hg": true,
	"node_modules": true, "vendor": true, "__pycache__": true,
	".idea": true, ".vscode": true, ".knowcode": true,
	"dist": true, "build": true,
}

// Handler processes one coalesced batch of filesystem events.
type Handler func(batch []Event)

// Watcher observes root for filesystem changes and dispatches coalesced
// batches to a Handler. It never blocks a concurrent query: events flow
// through the debouncer on their own goroutine, and Handler implementations
// are responsible for keeping their own index mutations atomic at the
// chunk-id granularity (add-then-swap, remove-after-swap).
type Watcher struct {
	root    string
	fsw     *fsnotify.Watcher
	debounc *BatchDebouncer
	log     *zap.Logger
	done    chan struct{}
}

// New builds a Watcher rooted at root. debounceMS <= 0 uses DefaultDebounce.
func New(root string, debounceMS int, handler Handler, log *zap.Logger) (*Watcher, error) {
	if debounceMS <= 0 {
		debounceMS = DefaultDebounce
	}
	if log == nil {
		log = zap.NewNop()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		root: root,
		fsw:  fsw,
		log:  log,
		done: make(chan struct{}),
	}
	w.debounc = NewBatchDebouncer(msToDuration(debounceMS), func(batch []Event) {
		if handler != nil {
			handler(batch)
		}
	})

	if err := w.addTree(root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Run consumes fsnotify events until Close is called. Intended to be run
// in its own goroutine.
func (w *Watcher) Run() {
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleFSEvent(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("watcher error", zap.Error(err))
		case <-w.done:
			return
		}
	}
}

// Close stops watching and flushes any pending debounced batch.
func (w *Watcher) Close() error {
	close(w.done)
	w.debounc.Flush()
	return w.fsw.Close()
}

func (w *Watcher) handleFSEvent(ev fsnotify.Event) {
	base := filepath.Base(ev.Name)
	if skipDirs[base] || strings.HasPrefix(base, ".") {
		return
	}

	if ev.Has(fsnotify.Create) {
		if info, err := fileInfo(ev.Name); err == nil && info.IsDir() {
			if err := w.addTree(ev.Name); err != nil {
				w.log.Warn("watch new directory failed", zap.String("path", ev.Name), zap.Error(err))
			}
			return
		}
		w.debounc.Add(Event{Type: EventCreate, Path: ev.Name})
		return
	}
	if ev.Has(fsnotify.Write) {
		w.debounc.Add(Event{Type: EventWrite, Path: ev.Name})
		return
	}
	if ev.Has(fsnotify.Remove) {
		w.debounc.Add(Event{Type: EventRemove, Path: ev.Name})
		return
	}
	if ev.Has(fsnotify.Rename) {
		w.debounc.Add(Event{Type: EventRename, Path: ev.Name})
	}
}

// addTree registers fsnotify watches on root and every subdirectory not in
// skipDirs, since fsnotify watches are non-recursive per platform.
func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if d.Name() != filepath.Base(root) && skipDirs[d.Name()] {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}
