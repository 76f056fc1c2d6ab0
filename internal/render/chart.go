package render

import (
	"encoding/json"
	"io"
	"sync"

	"github.com/lumipallolabs/walletmap/internal/explorer"
	"github.com/lumipallolabs/walletmap/internal/layout"
	"github.com/lumipallolabs/walletmap/internal/logging"
	"github.com/lumipallolabs/walletmap/internal/model"
)

// Options configures a Chart
type Options struct {
	Threshold          float64
	PruneEmptyBranches bool
	Padding            float64
	Tile               layout.Tile
	Registry           *explorer.Registry
}

// DefaultOptions returns threshold 10, padding 4, binary tiling, pruned
// empty branches and the default explorer registry
func DefaultOptions() Options {
	return Options{
		Threshold:          model.DefaultThreshold,
		PruneEmptyBranches: true,
		Padding:            layout.DefaultPadding,
		Tile:               layout.Binary,
		Registry:           explorer.NewRegistry(),
	}
}

// Props are the per-render inputs
type Props struct {
	Width  float64
	Height float64
	Data   *model.Node
	// VisibleTokens is carried for callers but does not affect rendering
	VisibleTokens map[string]bool
}

// Stats counts how often the memoized steps actually ran
type Stats struct {
	HierarchyBuilds int
	LayoutRuns      int
}

// Chart renders treemaps and memoizes the hierarchy (keyed on the data
// pointer) and the layout (keyed on hierarchy, width and height). Callers
// that change a tree must pass a new pointer or call Invalidate.
type Chart struct {
	opts Options

	mu         sync.Mutex
	built      bool
	data       *model.Node
	hierarchy  *layout.Node
	layoutFrom *layout.Node
	width      float64
	height     float64
	positioned *layout.Node
	stats      Stats
}

// NewChart creates a chart with the given options
func NewChart(opts Options) *Chart {
	if opts.Registry == nil {
		opts.Registry = explorer.NewRegistry()
	}
	if opts.Tile == nil {
		opts.Tile = layout.Binary
	}
	return &Chart{opts: opts}
}

// Options returns the chart options
func (c *Chart) Options() Options {
	return c.opts
}

// Stats returns the memoization counters
func (c *Chart) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Invalidate drops the memoized hierarchy and layout
func (c *Chart) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.built = false
	c.data = nil
	c.hierarchy = nil
	c.layoutFrom = nil
	c.positioned = nil
}

// Scene computes the drawable scene for props
func (c *Chart) Scene(p Props) Scene {
	if logging.Enabled() {
		if raw, err := json.Marshal(p.Data); err == nil {
			logging.Render.Printf("render %gx%g data=%s", p.Width, p.Height, raw)
		}
		if len(p.VisibleTokens) > 0 {
			logging.Render.Printf("visible tokens supplied (%d entries), not applied", len(p.VisibleTokens))
		}
	}

	root := c.layout(p)
	return buildScene(root, p.Width, p.Height, c.opts.Threshold, c.opts.Registry)
}

// Render writes the SVG for props to w
func (c *Chart) Render(w io.Writer, p Props) error {
	return WriteSVG(w, c.Scene(p))
}

// Leaves returns the leaves that Render would draw
func (c *Chart) Leaves(p Props) []Leaf {
	return c.Scene(p).Leaves
}

// Positioned returns the laid-out hierarchy for props (nil without data)
func (c *Chart) Positioned(p Props) *layout.Node {
	return c.layout(p)
}

func (c *Chart) layout(p Props) *layout.Node {
	c.mu.Lock()
	defer c.mu.Unlock()

	if p.Data == nil {
		return nil
	}

	if !c.built || c.data != p.Data {
		filtered := model.Filter(p.Data, model.FilterOptions{
			Threshold:          c.opts.Threshold,
			PruneEmptyBranches: c.opts.PruneEmptyBranches,
		})
		c.built = true
		c.data = p.Data
		c.hierarchy = layout.Hierarchy(filtered)
		c.stats.HierarchyBuilds++
		cacheLookups.WithLabelValues("hierarchy", "miss").Inc()
	} else {
		cacheLookups.WithLabelValues("hierarchy", "hit").Inc()
	}

	if c.hierarchy == nil {
		return nil
	}

	if c.positioned == nil || c.layoutFrom != c.hierarchy || c.width != p.Width || c.height != p.Height {
		tm := layout.Treemap{
			Width:   p.Width,
			Height:  p.Height,
			Padding: c.opts.Padding,
			Tile:    c.opts.Tile,
		}
		c.positioned = tm.Layout(c.hierarchy)
		c.layoutFrom = c.hierarchy
		c.width, c.height = p.Width, p.Height
		c.stats.LayoutRuns++
		cacheLookups.WithLabelValues("layout", "miss").Inc()
	} else {
		cacheLookups.WithLabelValues("layout", "hit").Inc()
	}
	return c.positioned
}
