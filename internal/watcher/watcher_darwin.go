//go:build darwin

package watcher

import (
	"errors"
	"sync"
	"time"

	"github.com/fsnotify/fsevents"
)

// Watcher watches files using macOS FSEvents
type Watcher struct {
	stream  *fsevents.EventStream
	targets targetSet
	paths   []string
	eventCh chan Event
	done    chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	closed  bool
}

func New() (*Watcher, error) {
	return &Watcher{
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
	if w.stream != nil {
		return errors.New("watcher already started")
	}
	_, dir, isNew, err := w.targets.add(path)
	if err != nil {
		return err
	}
	if isNew {
		w.paths = append(w.paths, dir)
	}
	return nil
}

func (w *Watcher) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.paths) == 0 || w.stream != nil {
		return
	}

	w.stream = &fsevents.EventStream{
		Paths:   w.paths,
		Latency: 200 * time.Millisecond,
		Flags:   fsevents.FileEvents | fsevents.WatchRoot,
	}
	w.stream.Start()
	w.wg.Add(1)
	go w.run()
}

func (w *Watcher) run() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return
		case events, ok := <-w.stream.Events:
			if !ok {
				return
			}
			for _, event := range events {
				w.handleEvent(event)
			}
		}
	}
}

func (w *Watcher) handleEvent(event fsevents.Event) {
	path := event.Path
	if len(path) > 0 && path[0] != '/' {
		path = "/" + path
	}
	w.mu.Lock()
	watched := w.targets.has(path)
	w.mu.Unlock()
	if !watched {
		return
	}

	var typ EventType
	switch {
	case event.Flags&fsevents.ItemRemoved != 0:
		typ = EventDeleted
	case event.Flags&fsevents.ItemCreated != 0, event.Flags&fsevents.ItemRenamed != 0:
		// Rename-replace saves show up as a rename onto the target
		typ = EventCreated
	case event.Flags&(fsevents.ItemModified|fsevents.ItemInodeMetaMod) != 0:
		typ = EventModified
	default:
		return
	}

	select {
	case w.eventCh <- Event{Type: typ, Path: path}:
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
	stream := w.stream
	w.mu.Unlock()

	close(w.done)
	if stream != nil {
		stream.Stop()
	}
	w.wg.Wait()
	close(w.eventCh)
	return nil
}
