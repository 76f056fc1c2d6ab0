package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lumipallolabs/walletmap/internal/logging"
	"github.com/lumipallolabs/walletmap/internal/model"
	"github.com/lumipallolabs/walletmap/internal/watcher"
)

// DefaultDebounce coalesces the burst of events an editor save produces
const DefaultDebounce = 150 * time.Millisecond

// Controller owns the tree loaded from one file, without UI dependencies
type Controller struct {
	mu sync.RWMutex

	path     string
	root     *model.Node
	phase    Phase
	loadedAt time.Time
	loads    int
	err      error

	watcher  *watcher.Watcher
	Debounce time.Duration
}

// NewController creates a controller for the tree document at path
func NewController(path string) *Controller {
	return &Controller{
		path:     path,
		Debounce: DefaultDebounce,
	}
}

// Path returns the watched document path
func (c *Controller) Path() string {
	return c.path
}

// Root returns the most recently loaded tree
func (c *Controller) Root() *model.Node {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.root
}

// State returns a read-only snapshot of the current state
func (c *Controller) State() AppState {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return AppState{
		Path:     c.path,
		Root:     c.root,
		Phase:    c.phase,
		LoadedAt: c.loadedAt,
		Loads:    c.loads,
		Watching: c.watcher != nil,
		Err:      c.err,
	}
}

// Load reads the document. Each successful load installs a new tree
// pointer, which is what render.Chart keys its memo on. On failure the
// previous tree is kept.
func (c *Controller) Load() (*model.Node, error) {
	c.mu.Lock()
	c.phase = PhaseLoading
	c.mu.Unlock()

	root, err := model.Load(c.path)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.phase = PhaseFailed
		c.err = fmt.Errorf("load %s: %w", c.path, err)
		logging.Debug.Printf("[Controller] %v", c.err)
		return nil, c.err
	}

	c.root = root
	c.phase = PhaseLoaded
	c.loadedAt = time.Now()
	c.loads++
	c.err = nil
	logging.Debug.Printf("[Controller] loaded %s (%d leaves)", c.path, len(model.Leaves(root)))
	return root, nil
}

// Watch starts watching the document and reloads it on change. The returned
// channel is closed when ctx is done or the watcher stops.
func (c *Controller) Watch(ctx context.Context) (<-chan Event, error) {
	c.mu.Lock()
	if c.watcher != nil {
		_ = c.watcher.Stop()
	}

	w, err := watcher.New()
	if err != nil {
		c.mu.Unlock()
		return nil, err
	}
	if err := w.Add(c.path); err != nil {
		c.mu.Unlock()
		_ = w.Stop()
		return nil, err
	}
	c.watcher = w
	debounce := c.Debounce
	c.mu.Unlock()

	w.Start()
	logging.Debug.Printf("[Controller] watching %s", c.path)

	eventCh := make(chan Event, 16)
	go c.watchLoop(ctx, w, debounce, eventCh)
	return eventCh, nil
}

// watchLoop debounces filesystem events and reloads the document
func (c *Controller) watchLoop(ctx context.Context, w *watcher.Watcher, debounce time.Duration, eventCh chan Event) {
	defer close(eventCh)
	defer c.stopWatcher(w)

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	pending := false

	send := func(ev Event) bool {
		select {
		case eventCh <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-w.Events():
			if !ok {
				return
			}
			logging.Debug.Printf("[Controller] %s %s", ev.Type, ev.Path)
			if ev.Type == watcher.EventDeleted {
				if !send(FileRemovedEvent{Path: ev.Path}) {
					return
				}
				continue
			}
			if pending && !timer.Stop() {
				<-timer.C
			}
			timer.Reset(debounce)
			pending = true

		case <-timer.C:
			pending = false
			prev := c.Root()
			root, err := c.Load()
			var out Event = TreeLoadedEvent{Path: c.path, Root: root, Reload: true, Changes: model.Diff(prev, root)}
			if err != nil {
				out = ErrorEvent{Err: err}
			}
			if !send(out) {
				return
			}
		}
	}
}

func (c *Controller) stopWatcher(w *watcher.Watcher) {
	_ = w.Stop()
	c.mu.Lock()
	if c.watcher == w {
		c.watcher = nil
	}
	c.mu.Unlock()
}

// Stop cleans up resources
func (c *Controller) Stop() {
	c.mu.Lock()
	w := c.watcher
	c.watcher = nil
	c.mu.Unlock()

	if w != nil {
		_ = w.Stop()
	}
}
