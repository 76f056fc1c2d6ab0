package model

import (
	"strings"
	"testing"
)

func sampleTree() *Node {
	return &Node{
		Type: TypeRoot,
		Children: []*Node{
			{
				Type: TypeChain,
				Name: "Ethereum",
				Children: []*Node{
					{Type: TypeLeaf, Value: 5, Chain: "Ethereum", Address: "aaa"},
					{Type: TypeLeaf, Value: 40, Chain: "Ethereum", Address: "ccc"},
				},
			},
			{
				Type: TypeChain,
				Name: "Polygon",
				Children: []*Node{
					{Type: TypeLeaf, Value: 2, Chain: "Polygon", Address: "ddd"},
				},
			},
		},
	}
}

func TestNodeTotalValue(t *testing.T) {
	root := sampleTree()

	if got := root.TotalValue(); got != 47 {
		t.Errorf("expected 47, got %v", got)
	}
	if got := root.Children[0].TotalValue(); got != 45 {
		t.Errorf("expected 45, got %v", got)
	}
}

func TestFilterDropsSmallLeaves(t *testing.T) {
	root := sampleTree()

	filtered := Filter(root, FilterOptions{Threshold: DefaultThreshold})

	leaves := Leaves(filtered)
	if len(leaves) != 1 {
		t.Fatalf("expected 1 leaf, got %d", len(leaves))
	}
	if leaves[0].Address != "ccc" {
		t.Errorf("expected leaf ccc, got %s", leaves[0].Address)
	}
	for _, leaf := range leaves {
		if leaf.Value < DefaultThreshold {
			t.Errorf("leaf %s below threshold survived", leaf.Address)
		}
	}
}

func TestFilterDoesNotMutateInput(t *testing.T) {
	root := sampleTree()

	_ = Filter(root, FilterOptions{Threshold: DefaultThreshold, PruneEmptyBranches: true})

	if len(root.Children) != 2 {
		t.Errorf("input root lost children: %d", len(root.Children))
	}
	if len(root.Children[0].Children) != 2 {
		t.Errorf("input branch lost children: %d", len(root.Children[0].Children))
	}
}

func TestFilterKeepsEmptyBranchesByDefault(t *testing.T) {
	root := sampleTree()

	filtered := Filter(root, FilterOptions{Threshold: DefaultThreshold})

	if len(filtered.Children) != 2 {
		t.Fatalf("expected both chain branches kept, got %d", len(filtered.Children))
	}
	polygon := filtered.Children[1]
	if polygon.Children == nil || len(polygon.Children) != 0 {
		t.Errorf("expected empty (non-nil) children for Polygon, got %v", polygon.Children)
	}
}

func TestFilterPrunesEmptyBranches(t *testing.T) {
	root := sampleTree()

	filtered := Filter(root, FilterOptions{Threshold: DefaultThreshold, PruneEmptyBranches: true})

	if len(filtered.Children) != 1 {
		t.Fatalf("expected 1 chain branch, got %d", len(filtered.Children))
	}
	if filtered.Children[0].Name != "Ethereum" {
		t.Errorf("expected Ethereum to survive, got %s", filtered.Children[0].Name)
	}
}

func TestFilterAllBelowThreshold(t *testing.T) {
	root := &Node{
		Type: TypeRoot,
		Children: []*Node{
			{Type: TypeLeaf, Value: 1},
			{Type: TypeLeaf, Value: 9.99},
		},
	}

	filtered := Filter(root, FilterOptions{Threshold: DefaultThreshold, PruneEmptyBranches: true})
	if filtered == nil {
		t.Fatal("root must never be dropped")
	}
	if len(filtered.Children) != 0 {
		t.Errorf("expected no children, got %d", len(filtered.Children))
	}
}

func TestFilterRootLeaf(t *testing.T) {
	if got := Filter(&Node{Type: TypeLeaf, Value: 3}, FilterOptions{Threshold: 10}); got != nil {
		t.Errorf("expected nil for a small root leaf, got %+v", got)
	}
	if got := Filter(&Node{Type: TypeLeaf, Value: 10}, FilterOptions{Threshold: 10}); got == nil {
		t.Error("leaf at exactly the threshold must be kept")
	}
}

func TestCloneIsDeep(t *testing.T) {
	root := sampleTree()
	clone := root.Clone()

	clone.Children[0].Children[0].Value = 999
	if root.Children[0].Children[0].Value != 5 {
		t.Error("clone shares leaves with the original")
	}
}

func TestSortByValue(t *testing.T) {
	nodes := []*Node{
		{Name: "small", Value: 100},
		{Name: "large", Value: 1000},
		{Name: "medium", Value: 500},
	}

	SortByValue(nodes)

	if nodes[0].Name != "large" {
		t.Errorf("expected 'large' first, got %s", nodes[0].Name)
	}
	if nodes[2].Name != "small" {
		t.Errorf("expected 'small' last, got %s", nodes[2].Name)
	}
}

func TestDecodeJSON(t *testing.T) {
	doc := `{"type":"root","children":[
		{"type":"leaf","value":5,"chain":"Ethereum","address":"aaa"},
		{"type":"leaf","value":50,"chain":"Polygon","address":"bbb","logoUrl":"https://x/y.png"}]}`

	root, err := Decode(strings.NewReader(doc), FormatJSON)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(root.Children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(root.Children))
	}
	if root.Children[1].LogoURL != "https://x/y.png" {
		t.Errorf("logoUrl not decoded: %q", root.Children[1].LogoURL)
	}
}

func TestDecodeYAML(t *testing.T) {
	doc := `
type: root
children:
  - type: chain
    name: Ethereum
    children:
      - type: leaf
        value: 12.5
        chain: Ethereum
        address: abc
`
	root, err := Decode(strings.NewReader(doc), FormatYAML)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	leaves := Leaves(root)
	if len(leaves) != 1 || leaves[0].Value != 12.5 {
		t.Errorf("unexpected leaves: %+v", leaves)
	}
	if root.Children[0].Value != 0 {
		t.Errorf("absent value should be 0, got %v", root.Children[0].Value)
	}
}

func TestFormatForPath(t *testing.T) {
	if f, err := FormatForPath("a/b.YML"); err != nil || f != FormatYAML {
		t.Errorf("expected yaml, got %q (%v)", f, err)
	}
	if _, err := FormatForPath("tree.txt"); err == nil {
		t.Error("expected error for .txt")
	}
}
