package layout

import "fmt"

// DefaultPadding is the gap in pixels between nested and sibling rectangles
const DefaultPadding = 4

// Tile divides the rectangle (x0,y0)-(x1,y1) among parent's children
type Tile func(parent *Node, x0, y0, x1, y1 float64)

// TileByName resolves a tiling method from configuration
func TileByName(name string) (Tile, error) {
	switch name {
	case "", "binary":
		return Binary, nil
	case "squarify":
		return Squarify, nil
	default:
		return nil, fmt.Errorf("unknown tile method %q", name)
	}
}

// Treemap lays out a hierarchy inside a Width x Height rectangle
type Treemap struct {
	Width   float64
	Height  float64
	Padding float64 // applied between siblings and inside every branch
	Tile    Tile
}

// Layout returns a positioned copy of h. The input hierarchy is not modified.
func (t Treemap) Layout(h *Node) *Node {
	if h == nil {
		return nil
	}
	tile := t.Tile
	if tile == nil {
		tile = Binary
	}

	root := h.Copy()
	root.X0, root.Y0 = 0, 0
	root.X1, root.Y1 = t.Width, t.Height

	inner := t.Padding / 2
	root.Each(func(n *Node) {
		// Inner padding is split between the two neighbours of every gap
		p := inner
		if n.Depth == 0 {
			p = 0
		}
		x0, y0, x1, y1 := n.X0+p, n.Y0+p, n.X1-p, n.Y1-p
		x0, x1 = collapse(x0, x1)
		y0, y1 = collapse(y0, y1)
		n.X0, n.Y0, n.X1, n.Y1 = x0, y0, x1, y1

		if n.IsLeaf() {
			return
		}
		outer := t.Padding - inner
		x0, x1 = collapse(x0+outer, x1-outer)
		y0, y1 = collapse(y0+outer, y1-outer)
		tile(n, x0, y0, x1, y1)
	})
	return root
}

// collapse folds an inverted interval onto its midpoint
func collapse(lo, hi float64) (float64, float64) {
	if hi < lo {
		mid := (lo + hi) / 2
		return mid, mid
	}
	return lo, hi
}
