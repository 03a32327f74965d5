// Package watcher monitors settings files for live reload.
//
// It wraps fsnotify and coalesces bursts of filesystem events per path,
// so an editor's save dance (truncate, write, rename) produces one event.
package watcher

import (
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ErrWatcherClosed is returned when registering files on a closed watcher.
var ErrWatcherClosed = errors.New("watcher is closed")

// Op is the kind of change observed on a watched file.
type Op int

const (
	// OpWrite indicates the file content changed.
	OpWrite Op = iota

	// OpCreate indicates the file appeared.
	OpCreate

	// OpRemove indicates the file was deleted or renamed away.
	OpRemove
)

// String returns the operation name.
func (op Op) String() string {
	switch op {
	case OpWrite:
		return "write"
	case OpCreate:
		return "create"
	case OpRemove:
		return "remove"
	default:
		return "unknown"
	}
}

// Event is one coalesced file change.
type Event struct {
	Path string
	Op   Op
	Time time.Time
}

// Handler is called with each coalesced event.
type Handler func(Event)

// Watcher watches individual settings files.
//
// fsnotify watches the containing directories; events are filtered down
// to the registered files. Watching a file that does not exist yet is
// supported: a create event fires when it appears.
type Watcher struct {
	mu       sync.RWMutex
	fsw      *fsnotify.Watcher
	files    map[string]bool // watched file -> true
	dirs     map[string]int  // watched dir -> refcount
	handlers []Handler

	debounce  time.Duration
	pendingMu sync.Mutex
	pending   map[string]Event

	done   chan struct{}
	wg     sync.WaitGroup
	closed bool
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the coalescing window for rapid changes.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// New creates a watcher and starts its event loop.
func New(opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsw:      fsw,
		files:    make(map[string]bool),
		dirs:     make(map[string]int),
		pending:  make(map[string]Event),
		debounce: 100 * time.Millisecond,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	w.wg.Add(2)
	go w.eventLoop()
	go w.flushLoop()
	return w, nil
}

// Watch registers a file for change events.
func (w *Watcher) Watch(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWatcherClosed
	}
	if w.files[abs] {
		return nil
	}

	dir := filepath.Dir(abs)
	if w.dirs[dir] == 0 {
		if err := w.fsw.Add(dir); err != nil {
			return err
		}
	}
	w.dirs[dir]++
	w.files[abs] = true
	return nil
}

// Unwatch removes a file registration.
func (w *Watcher) Unwatch(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.files[abs] {
		return nil
	}
	delete(w.files, abs)

	dir := filepath.Dir(abs)
	w.dirs[dir]--
	if w.dirs[dir] <= 0 {
		delete(w.dirs, dir)
		_ = w.fsw.Remove(dir)
	}
	return nil
}

// OnChange registers a handler for coalesced events.
func (w *Watcher) OnChange(h Handler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers = append(w.handlers, h)
}

// Close stops the watcher. Safe to call more than once.
func (w *Watcher) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	w.mu.Unlock()

	close(w.done)
	_ = w.fsw.Close()
	w.wg.Wait()
}

func (w *Watcher) eventLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleRaw(ev)
		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			// Watch errors degrade to "no events"; the store falls
			// back to its last loaded data.
		}
	}
}

func (w *Watcher) handleRaw(ev fsnotify.Event) {
	abs, err := filepath.Abs(ev.Name)
	if err != nil {
		return
	}

	w.mu.RLock()
	tracked := w.files[abs]
	w.mu.RUnlock()
	if !tracked {
		return
	}

	var op Op
	switch {
	case ev.Op.Has(fsnotify.Create):
		op = OpCreate
	case ev.Op.Has(fsnotify.Write):
		op = OpWrite
	case ev.Op.Has(fsnotify.Remove), ev.Op.Has(fsnotify.Rename):
		op = OpRemove
	default:
		return
	}

	w.queue(Event{Path: abs, Op: op, Time: time.Now()})
}

// queue coalesces events per path: remove beats everything, create beats
// write, and the newest time always wins.
func (w *Watcher) queue(ev Event) {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()

	existing, ok := w.pending[ev.Path]
	if !ok {
		w.pending[ev.Path] = ev
		return
	}

	switch {
	case ev.Op == OpRemove:
		w.pending[ev.Path] = ev
	case existing.Op == OpRemove && ev.Op == OpCreate:
		// Deleted then recreated within one window: report a write.
		w.pending[ev.Path] = Event{Path: ev.Path, Op: OpWrite, Time: ev.Time}
	case existing.Op == OpCreate:
		existing.Time = ev.Time
		w.pending[ev.Path] = existing
	default:
		w.pending[ev.Path] = ev
	}
}

func (w *Watcher) flushLoop() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			w.flushStable()
		}
	}
}

func (w *Watcher) flushStable() {
	threshold := time.Now().Add(-w.debounce)

	w.pendingMu.Lock()
	var ready []Event
	for path, ev := range w.pending {
		if ev.Time.Before(threshold) {
			ready = append(ready, ev)
			delete(w.pending, path)
		}
	}
	w.pendingMu.Unlock()

	if len(ready) == 0 {
		return
	}

	w.mu.RLock()
	handlers := make([]Handler, len(w.handlers))
	copy(handlers, w.handlers)
	w.mu.RUnlock()

	for _, ev := range ready {
		for _, h := range handlers {
			safeCall(h, ev)
		}
	}
}

// safeCall invokes a handler with panic recovery so one bad handler
// cannot kill the watcher goroutine.
func safeCall(h Handler, ev Event) {
	defer func() { _ = recover() }()
	h(ev)
}
