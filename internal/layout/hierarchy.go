// Package layout computes treemap geometry for a value tree.
//
// A hierarchy mirrors the data tree with summed values; Treemap assigns every
// hierarchy node a rectangle in pixel space.
package layout

import "github.com/lumipallolabs/walletmap/internal/model"

// Node is a hierarchy node, positioned once passed through Treemap.Layout
type Node struct {
	Data     *model.Node
	Value    float64 // sum of descendant leaf values (after Sum)
	Depth    int
	Parent   *Node
	Children []*Node

	X0, Y0, X1, Y1 float64
}

// Hierarchy builds a hierarchy for the data tree and sums its values.
// Data nodes with an empty children list become hierarchy leaves.
func Hierarchy(root *model.Node) *Node {
	if root == nil {
		return nil
	}
	h := build(root, nil, 0)
	h.Sum()
	return h
}

func build(data *model.Node, parent *Node, depth int) *Node {
	n := &Node{Data: data, Parent: parent, Depth: depth}
	if len(data.Children) > 0 {
		n.Children = make([]*Node, 0, len(data.Children))
		for _, child := range data.Children {
			if child == nil {
				continue
			}
			n.Children = append(n.Children, build(child, n, depth+1))
		}
	}
	return n
}

// Sum recomputes Value for the subtree. A leaf takes its data value; a branch
// takes the sum of its children and ignores any value of its own.
func (n *Node) Sum() float64 {
	if n.IsLeaf() {
		n.Value = n.Data.Value
		return n.Value
	}
	total := 0.0
	for _, child := range n.Children {
		total += child.Sum()
	}
	n.Value = total
	return total
}

// IsLeaf reports whether the hierarchy node has no children
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// Width returns the horizontal extent of the node's rectangle
func (n *Node) Width() float64 { return n.X1 - n.X0 }

// Height returns the vertical extent of the node's rectangle
func (n *Node) Height() float64 { return n.Y1 - n.Y0 }

// Area returns the rectangle area
func (n *Node) Area() float64 { return n.Width() * n.Height() }

// Each visits the subtree in pre-order
func (n *Node) Each(fn func(*Node)) {
	fn(n)
	for _, child := range n.Children {
		child.Each(fn)
	}
}

// Leaves returns the hierarchy leaves in pre-order
func (n *Node) Leaves() []*Node {
	var out []*Node
	n.Each(func(node *Node) {
		if node.IsLeaf() {
			out = append(out, node)
		}
	})
	return out
}

// Ancestors returns the node followed by its parents up to the root
func (n *Node) Ancestors() []*Node {
	var out []*Node
	for a := n; a != nil; a = a.Parent {
		out = append(out, a)
	}
	return out
}

// Copy returns a structural copy sharing Data pointers
func (n *Node) Copy() *Node {
	return copyNode(n, nil)
}

func copyNode(n *Node, parent *Node) *Node {
	c := *n
	c.Parent = parent
	if n.Children != nil {
		c.Children = make([]*Node, len(n.Children))
		for i, child := range n.Children {
			c.Children[i] = copyNode(child, &c)
		}
	}
	return &c
}
