package layout

import (
	"math"

	"github.com/jeffwilliams/squarify"
)

// treemapItem wraps a hierarchy node for the squarify algorithm
type treemapItem struct {
	node     *Node
	size     float64
	children []*treemapItem
}

// Size implements squarify.TreeSizer
func (t *treemapItem) Size() float64 {
	return t.size
}

// NumChildren implements squarify.TreeSizer
func (t *treemapItem) NumChildren() int {
	return len(t.children)
}

// Child implements squarify.TreeSizer
func (t *treemapItem) Child(i int) squarify.TreeSizer {
	return t.children[i]
}

// Squarify tiles children into rectangles with aspect ratios close to 1.
// Zero-value children get an empty rectangle at the bottom-right corner;
// if every child is zero the binary tiling fallback applies.
func Squarify(parent *Node, x0, y0, x1, y1 float64) {
	if len(parent.Children) == 0 {
		return
	}

	root := &treemapItem{node: parent}
	for _, child := range parent.Children {
		// Park every child at the far corner; squarify overwrites the visible ones
		child.X0, child.Y0, child.X1, child.Y1 = x1, y1, x1, y1
		if child.Value <= 0 {
			continue
		}
		root.children = append(root.children, &treemapItem{node: child, size: child.Value})
		root.size += child.Value
	}

	if root.size == 0 || x1 <= x0 || y1 <= y0 {
		Binary(parent, x0, y0, x1, y1)
		return
	}

	rect := squarify.Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
	blocks, metas := squarify.Squarify(root, rect, squarify.Options{
		MaxDepth: 1,
		Sort:     true,
	})

	// Only depth-0 blocks are direct children of root
	for i, block := range blocks {
		if i >= len(metas) || metas[i].Depth != 0 {
			continue
		}
		item, ok := block.TreeSizer.(*treemapItem)
		if !ok || item.node == nil {
			continue
		}
		if math.IsNaN(block.W) || math.IsNaN(block.H) {
			continue
		}
		n := item.node
		n.X0 = clamp(block.X, x0, x1)
		n.Y0 = clamp(block.Y, y0, y1)
		n.X1 = clamp(block.X+block.W, x0, x1)
		n.Y1 = clamp(block.Y+block.H, y0, y1)
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
