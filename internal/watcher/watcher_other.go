//go:build !darwin

package watcher

import (
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/lumipallolabs/walletmap/internal/logging"
)

// Watcher watches files using fsnotify (inotify, kqueue or
// ReadDirectoryChangesW)
type Watcher struct {
	fsw     *fsnotify.Watcher
	targets targetSet
	eventCh chan Event
	done    chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
	closed  bool
}

func New() (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		fsw:     fsw,
		targets: newTargetSet(),
		eventCh: make(chan Event, 100),
		done:    make(chan struct{}),
	}, nil
}

func (w *Watcher) Events() <-chan Event {
	return w.eventCh
}

// Add watches a file. Must be called before Start.
func (w *Watcher) Add(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, dir, isNew, err := w.targets.add(path)
	if err != nil {
		return err
	}
	if !isNew {
		return nil
	}
	return w.fsw.Add(dir)
}

func (w *Watcher) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started || w.closed {
		return
	}
	w.started = true
	w.wg.Add(1)
	go w.run()
}

func (w *Watcher) run() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logging.Debug.Printf("watcher error: %v", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	w.mu.Lock()
	watched := w.targets.has(event.Name)
	w.mu.Unlock()
	if !watched {
		return
	}

	var typ EventType
	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		typ = EventDeleted
	case event.Has(fsnotify.Create):
		typ = EventCreated
	case event.Has(fsnotify.Write):
		typ = EventModified
	default:
		return
	}

	select {
	case w.eventCh <- Event{Type: typ, Path: event.Name}:
	default:
	}
}

func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	close(w.done)
	err := w.fsw.Close()
	w.wg.Wait()
	close(w.eventCh)
	return err
}
