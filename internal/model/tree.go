package model

import "sort"

// DefaultThreshold is the minimum leaf value kept by Filter and drawn by the renderer
const DefaultThreshold = 10

// FilterOptions controls Filter
type FilterOptions struct {
	Threshold float64
	// PruneEmptyBranches drops non-root branches left without children.
	// When false, branches are kept even if every leaf below them was removed.
	PruneEmptyBranches bool
}

// Filter returns a filtered copy of the tree. Leaves with a value below the
// threshold are removed; the input tree is left untouched. Filter returns nil
// only when n itself is a leaf below the threshold.
func Filter(n *Node, opts FilterOptions) *Node {
	if n == nil {
		return nil
	}
	return filter(n, opts, true)
}

func filter(n *Node, opts FilterOptions, isRoot bool) *Node {
	if n.IsLeaf() && n.Value < opts.Threshold {
		return nil
	}

	out := *n
	out.Children = nil
	if n.Children != nil {
		out.Children = make([]*Node, 0, len(n.Children))
		for _, child := range n.Children {
			if child == nil {
				continue
			}
			if kept := filter(child, opts, false); kept != nil {
				out.Children = append(out.Children, kept)
			}
		}
		if opts.PruneEmptyBranches && !isRoot && !n.IsLeaf() && len(out.Children) == 0 {
			return nil
		}
	}
	return &out
}

// Leaves returns all leaf-tagged nodes in depth-first order
func Leaves(n *Node) []*Node {
	var out []*Node
	Walk(n, func(node *Node, _ int) {
		if node.IsLeaf() {
			out = append(out, node)
		}
	})
	return out
}

// Walk visits every node in pre-order with its depth (root = 0)
func Walk(n *Node, fn func(node *Node, depth int)) {
	walk(n, 0, fn)
}

func walk(n *Node, depth int, fn func(*Node, int)) {
	if n == nil {
		return
	}
	fn(n, depth)
	for _, child := range n.Children {
		walk(child, depth+1, fn)
	}
}

// SortByValue sorts nodes by total value descending, then by label ascending
func SortByValue(nodes []*Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		vi, vj := nodes[i].TotalValue(), nodes[j].TotalValue()
		if vi != vj {
			return vi > vj
		}
		return nodes[i].Label() < nodes[j].Label()
	})
}
