// Package render turns a value tree into treemap SVG markup.
package render

import (
	"github.com/lumipallolabs/walletmap/internal/explorer"
	"github.com/lumipallolabs/walletmap/internal/layout"
	"github.com/lumipallolabs/walletmap/internal/logging"
)

// Rect is a rectangle in pixel space
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func rectOf(n *layout.Node) Rect {
	return Rect{X: n.X0, Y: n.Y0, Width: n.Width(), Height: n.Height()}
}

// Group is the outline drawn around one top-level chain
type Group struct {
	Rect
	Chain string `json:"chain"`
}

// Leaf is one drawn wallet: background, logo and explorer link
type Leaf struct {
	Rect
	Chain      string  `json:"chain"`
	Address    string  `json:"address"`
	LogoURL    string  `json:"logoUrl"`
	Value      float64 `json:"value"`
	Href       string  `json:"href,omitempty"`
	KnownChain bool    `json:"knownChain"`
}

// Scene holds everything the SVG writer draws
type Scene struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Groups []Group `json:"groups"`
	Leaves []Leaf  `json:"leaves"`
}

// buildScene maps a positioned hierarchy onto drawable primitives
func buildScene(root *layout.Node, width, height, threshold float64, registry *explorer.Registry) Scene {
	scene := Scene{Width: width, Height: height, Groups: []Group{}, Leaves: []Leaf{}}
	if root == nil {
		return scene
	}

	for _, chain := range root.Children {
		scene.Groups = append(scene.Groups, Group{Rect: rectOf(chain), Chain: chain.Data.Label()})
	}

	for _, node := range root.Leaves() {
		if !node.Data.IsLeaf() || node.Value < threshold {
			continue
		}
		data := node.Data
		link := registry.Resolve(data.Chain, data.Address)
		if !link.Known {
			logging.Render.Printf("chain %q has no explorer entry, using fallback %q", data.Chain, registry.Fallback)
		}
		if logging.Enabled() && !explorer.ValidateAddress(data.Address) {
			logging.Render.Printf("address %q on %q is not a hex EVM address", data.Address, data.Chain)
		}
		scene.Leaves = append(scene.Leaves, Leaf{
			Rect:       rectOf(node),
			Chain:      data.Chain,
			Address:    data.Address,
			LogoURL:    data.LogoURL,
			Value:      node.Value,
			Href:       link.Href,
			KnownChain: link.Known,
		})
	}
	return scene
}
