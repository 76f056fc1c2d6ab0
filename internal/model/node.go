package model

// Node types. Only TypeLeaf carries meaning for filtering and rendering;
// the other values are informational.
const (
	TypeRoot  = "root"
	TypeChain = "chain"
	TypeLeaf  = "leaf"
)

// Node represents one entry of the value tree: the root, a chain group or
// a wallet leaf
type Node struct {
	Type     string  `json:"type" yaml:"type"`
	Name     string  `json:"name,omitempty" yaml:"name,omitempty"`
	Value    float64 `json:"value,omitempty" yaml:"value,omitempty"` // absent values count as 0
	Children []*Node `json:"children,omitempty" yaml:"children,omitempty"`

	// Leaf fields
	Chain   string `json:"chain,omitempty" yaml:"chain,omitempty"`
	Address string `json:"address,omitempty" yaml:"address,omitempty"` // hex without the 0x prefix
	LogoURL string `json:"logoUrl,omitempty" yaml:"logoUrl,omitempty"`
}

// IsLeaf reports whether the node is tagged as a leaf
func (n *Node) IsLeaf() bool {
	return n != nil && n.Type == TypeLeaf
}

// TotalValue returns the node's own value plus the values of all descendants
func (n *Node) TotalValue() float64 {
	if n == nil {
		return 0
	}
	total := n.Value
	for _, child := range n.Children {
		total += child.TotalValue()
	}
	return total
}

// Label returns a display name: Name, else Address, else Chain, else Type
func (n *Node) Label() string {
	switch {
	case n.Name != "":
		return n.Name
	case n.Address != "":
		return n.Address
	case n.Chain != "":
		return n.Chain
	default:
		return n.Type
	}
}

// Clone returns a deep copy of the subtree
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := *n
	if n.Children != nil {
		c.Children = make([]*Node, len(n.Children))
		for i, child := range n.Children {
			c.Children[i] = child.Clone()
		}
	}
	return &c
}
