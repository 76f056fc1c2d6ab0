package render

import (
	"bytes"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumipallolabs/walletmap/internal/explorer"
	"github.com/lumipallolabs/walletmap/internal/model"
)

func leaf(value float64, chain, address string) *model.Node {
	return &model.Node{Type: model.TypeLeaf, Value: value, Chain: chain, Address: address, LogoURL: "https://logos/" + address + ".png"}
}

func TestScenarioSmallLeafDropped(t *testing.T) {
	data := &model.Node{Type: model.TypeRoot, Children: []*model.Node{
		leaf(5, "Ethereum", "aaa"),
		leaf(50, "Polygon", "bbb"),
	}}
	chart := NewChart(DefaultOptions())

	leaves := chart.Leaves(Props{Width: 500, Height: 500, Data: data})

	require.Len(t, leaves, 1)
	assert.Equal(t, "bbb", leaves[0].Address)
	assert.Equal(t, "https://polygonscan.com/address/0xbbb", leaves[0].Href)
}

func TestScenarioAllLeavesBelowThreshold(t *testing.T) {
	data := &model.Node{Type: model.TypeRoot, Children: []*model.Node{
		{Type: model.TypeChain, Name: "Ethereum", Children: []*model.Node{leaf(1, "Ethereum", "a")}},
		{Type: model.TypeChain, Name: "Polygon", Children: []*model.Node{leaf(9, "Polygon", "b")}},
	}}

	for _, prune := range []bool{false, true} {
		opts := DefaultOptions()
		opts.PruneEmptyBranches = prune
		chart := NewChart(opts)

		var buf bytes.Buffer
		require.NoError(t, chart.Render(&buf, Props{Width: 300, Height: 200, Data: data}))

		scene := chart.Scene(Props{Width: 300, Height: 200, Data: data})
		assert.Empty(t, scene.Leaves, "prune=%v", prune)
		assert.NotContains(t, buf.String(), `class="leaf"`, "prune=%v", prune)
		if prune {
			assert.Empty(t, scene.Groups)
		} else {
			assert.Len(t, scene.Groups, 2)
		}
	}
}

func TestScenarioBranchWithoutValueSumsChildren(t *testing.T) {
	data := &model.Node{Type: model.TypeRoot, Children: []*model.Node{
		{Type: model.TypeChain, Name: "Ethereum", Children: []*model.Node{
			leaf(20, "Ethereum", "a"), leaf(30, "Ethereum", "b"),
		}},
	}}
	chart := NewChart(DefaultOptions())

	root := chart.Positioned(Props{Width: 200, Height: 200, Data: data})

	require.NotNil(t, root)
	assert.Equal(t, 50.0, root.Children[0].Value)
}

func TestEveryQualifyingLeafRendersOnce(t *testing.T) {
	data := &model.Node{Type: model.TypeRoot, Children: []*model.Node{
		{Type: model.TypeChain, Name: "Ethereum", Children: []*model.Node{
			leaf(10, "Ethereum", "a"), leaf(11, "Ethereum", "b"), leaf(9.9, "Ethereum", "c"),
		}},
		{Type: model.TypeChain, Name: "Polygon", Children: []*model.Node{
			leaf(100, "Polygon", "d"),
		}},
	}}
	chart := NewChart(DefaultOptions())

	leaves := chart.Leaves(Props{Width: 400, Height: 300, Data: data})

	seen := map[string]int{}
	for _, l := range leaves {
		seen[l.Address]++
	}
	assert.Equal(t, map[string]int{"a": 1, "b": 1, "d": 1}, seen)
}

func TestLinksByChain(t *testing.T) {
	data := &model.Node{Type: model.TypeRoot, Children: []*model.Node{
		leaf(20, "Ethereum", "e1"),
		leaf(20, "Polygon", "p1"),
		leaf(20, "", "m1"),
		leaf(20, "Base", "b1"),
	}}
	chart := NewChart(DefaultOptions())

	for _, l := range chart.Leaves(Props{Width: 400, Height: 400, Data: data}) {
		if l.Chain == "Ethereum" {
			assert.True(t, strings.HasPrefix(l.Href, "https://etherscan.io/address/0x"), l.Href)
		} else {
			assert.True(t, strings.HasPrefix(l.Href, "https://polygonscan.com/address/0x"), l.Href)
		}
	}
}

func TestUnknownChainWithoutFallbackHasNoLink(t *testing.T) {
	opts := DefaultOptions()
	opts.Registry = explorer.NewRegistry()
	opts.Registry.Fallback = ""
	chart := NewChart(opts)
	data := &model.Node{Type: model.TypeRoot, Children: []*model.Node{leaf(20, "Base", "b1")}}

	var buf bytes.Buffer
	require.NoError(t, chart.Render(&buf, Props{Width: 100, Height: 100, Data: data}))

	out := buf.String()
	assert.Contains(t, out, `<g class="leaf" data-address="b1">`)
	assert.NotContains(t, out, "<a ")
}

func TestMemoizationSkipsUnchangedInputs(t *testing.T) {
	data := &model.Node{Type: model.TypeRoot, Children: []*model.Node{leaf(20, "Ethereum", "a")}}
	chart := NewChart(DefaultOptions())
	props := Props{Width: 300, Height: 300, Data: data}

	chart.Scene(props)
	chart.Scene(props)
	assert.Equal(t, Stats{HierarchyBuilds: 1, LayoutRuns: 1}, chart.Stats())

	props.Width = 400
	chart.Scene(props)
	assert.Equal(t, Stats{HierarchyBuilds: 1, LayoutRuns: 2}, chart.Stats())

	props.Data = data.Clone()
	chart.Scene(props)
	assert.Equal(t, Stats{HierarchyBuilds: 2, LayoutRuns: 3}, chart.Stats())

	chart.Invalidate()
	chart.Scene(props)
	assert.Equal(t, Stats{HierarchyBuilds: 3, LayoutRuns: 4}, chart.Stats())
}

func TestRenderDoesNotMutateInput(t *testing.T) {
	data := &model.Node{Type: model.TypeRoot, Children: []*model.Node{
		leaf(5, "Ethereum", "aaa"), leaf(50, "Polygon", "bbb"),
	}}

	NewChart(DefaultOptions()).Scene(Props{Width: 100, Height: 100, Data: data})

	assert.Len(t, data.Children, 2)
}

func TestVisibleTokensIgnored(t *testing.T) {
	data := &model.Node{Type: model.TypeRoot, Children: []*model.Node{leaf(50, "Polygon", "bbb")}}
	chart := NewChart(DefaultOptions())

	leaves := chart.Leaves(Props{Width: 100, Height: 100, Data: data, VisibleTokens: map[string]bool{"bbb": false}})

	assert.Len(t, leaves, 1)
}

func TestRenderSVGMarkup(t *testing.T) {
	data := &model.Node{Type: model.TypeRoot, Children: []*model.Node{
		{Type: model.TypeChain, Name: "Ethereum", Children: []*model.Node{leaf(50, "Ethereum", "abc")}},
	}}
	chart := NewChart(DefaultOptions())

	var buf bytes.Buffer
	require.NoError(t, chart.Render(&buf, Props{Width: 500, Height: 250, Data: data}))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, `<svg xmlns="http://www.w3.org/2000/svg" width="500" height="250"`), out)
	assert.Contains(t, out, `<rect class="chain" data-chain="Ethereum" x="4" y="4" width="492" height="242" rx="20" ry="20" fill="none" stroke="white" stroke-width="1" opacity="0.1"/>`)
	assert.Contains(t, out, `href="https://etherscan.io/address/0xabc" target="_blank" rel="noopener noreferrer"`)
	assert.Contains(t, out, `<rect class="leaf-bg" x="8" y="8" width="484" height="234" rx="10" ry="10"`)
	assert.Contains(t, out, `href="https://logos/abc.png"`)
	assert.Contains(t, out, `preserveAspectRatio="xMidYMid meet"`)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), "</svg>"))
}

func TestRenderNilData(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewChart(DefaultOptions()).Render(&buf, Props{Width: 10, Height: 10}))
	assert.Contains(t, buf.String(), "<svg")
	assert.NotContains(t, buf.String(), "<rect")
}

func TestFormatNum(t *testing.T) {
	assert.Equal(t, "100", formatNum(100))
	assert.Equal(t, "10.5", formatNum(10.5))
	assert.Equal(t, "0.33", formatNum(1.0/3))
	assert.Equal(t, "0", formatNum(-0.0001))
}

// 1x1 transparent PNG
const pngBase64 = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

func TestInlineLogos(t *testing.T) {
	dir := t.TempDir()
	png, err := base64.StdEncoding.DecodeString(pngBase64)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "eth.png"), png, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not an image"), 0644))

	data := &model.Node{Type: model.TypeRoot, Children: []*model.Node{
		{Type: model.TypeLeaf, Value: 20, LogoURL: "eth.png"},
		{Type: model.TypeLeaf, Value: 20, LogoURL: "notes.txt"},
		{Type: model.TypeLeaf, Value: 20, LogoURL: "https://remote/logo.png"},
		{Type: model.TypeLeaf, Value: 20, LogoURL: "missing.png"},
	}}

	out := InlineLogos(data, dir)

	assert.Equal(t, "data:image/png;base64,"+pngBase64, out.Children[0].LogoURL)
	assert.Equal(t, "notes.txt", out.Children[1].LogoURL)
	assert.Equal(t, "https://remote/logo.png", out.Children[2].LogoURL)
	assert.Equal(t, "missing.png", out.Children[3].LogoURL)
	assert.Equal(t, "eth.png", data.Children[0].LogoURL, "input must not change")

	var buf bytes.Buffer
	require.NoError(t, NewChart(DefaultOptions()).Render(&buf, Props{Width: 100, Height: 100, Data: out}))
	assert.Contains(t, buf.String(), `href="data:image/png;base64,`)
}

func TestInlineLogosStaysInDir(t *testing.T) {
	base := t.TempDir()
	dir := filepath.Join(base, "logos")
	require.NoError(t, os.Mkdir(dir, 0755))
	png, err := base64.StdEncoding.DecodeString(pngBase64)
	require.NoError(t, err)
	secret := filepath.Join(base, "secret.png")
	require.NoError(t, os.WriteFile(secret, png, 0644))

	refs := []string{"../secret.png", "sub/../../secret.png", filepath.ToSlash(secret)}
	if err := os.Symlink(secret, filepath.Join(dir, "link.png")); err == nil {
		refs = append(refs, "link.png")
	}

	data := &model.Node{Type: model.TypeRoot}
	for _, ref := range refs {
		data.Children = append(data.Children, &model.Node{Type: model.TypeLeaf, Value: 20, LogoURL: ref})
	}

	out := InlineLogos(data, dir)

	for i, ref := range refs {
		assert.Equal(t, ref, out.Children[i].LogoURL, "file outside the logo directory was inlined")
	}
}

func TestInlineLogosMissingDir(t *testing.T) {
	data := &model.Node{Type: model.TypeRoot, Children: []*model.Node{
		{Type: model.TypeLeaf, Value: 20, LogoURL: "eth.png"},
	}}

	out := InlineLogos(data, filepath.Join(t.TempDir(), "absent"))

	assert.Equal(t, "eth.png", out.Children[0].LogoURL)
	assert.NotSame(t, data, out)
}
