package handlers

import (
	"sync"

	"github.com/lumipallolabs/walletmap/internal/model"
	"github.com/lumipallolabs/walletmap/internal/render"
	"github.com/lumipallolabs/walletmap/internal/store"
)

// chartEntry pairs a snapshot tree with its chart. The tree pointer stays
// fixed for the entry's lifetime so the chart's memo stays valid.
type chartEntry struct {
	tree  *model.Node
	chart *render.Chart
}

// ChartCache keeps one chart per stored snapshot
type ChartCache struct {
	store *store.SnapshotStore
	opts  render.Options

	mu      sync.Mutex
	entries map[string]*chartEntry
}

// NewChartCache creates a cache that loads snapshots from s on demand
func NewChartCache(s *store.SnapshotStore, opts render.Options) *ChartCache {
	return &ChartCache{
		store:   s,
		opts:    opts,
		entries: make(map[string]*chartEntry),
	}
}

// Get returns the tree and chart for a snapshot, loading it on first use
func (c *ChartCache) Get(name string) (*model.Node, *render.Chart, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[name]; ok {
		return e.tree, e.chart, nil
	}

	tree, err := c.store.Get(name)
	if err != nil {
		return nil, nil, err
	}
	e := &chartEntry{tree: tree, chart: render.NewChart(c.opts)}
	c.entries[name] = e
	return e.tree, e.chart, nil
}

// Drop forgets a snapshot after it was replaced or deleted
func (c *ChartCache) Drop(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, name)
}
