package tui

import (
	"math"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lumipallolabs/walletmap/internal/model"
	"github.com/lumipallolabs/walletmap/internal/render"
)

// Block is a drawn leaf in terminal cells
type Block struct {
	Leaf          render.Leaf
	X, Y          int
	Width, Height int
}

// Key identifies the block's wallet across reloads
func (b Block) Key() string {
	return b.Leaf.Chain + "/" + b.Leaf.Address
}

const (
	// The chart lays out in virtual pixels; one terminal cell is roughly
	// twice as tall as it is wide
	cellWidth  = 8
	cellHeight = 16

	treemapBorderH = 2 // margin for rightmost block borders
	treemapBorderV = 0
)

// TreemapPanel displays the chart's layout on a character grid
type TreemapPanel struct {
	chart    *render.Chart
	data     *model.Node
	blocks   []Block
	hidden   int // leaves whose rectangle rounds away at this size
	selected string
	width    int
	height   int

	// Render cache
	cachedView     string
	cacheValid     bool
	cachedSelected string
}

// NewTreemapPanel creates a new treemap panel that lays out through chart
func NewTreemapPanel(chart *render.Chart) TreemapPanel {
	return TreemapPanel{chart: chart}
}

// SetData sets the tree to display. The selection is kept when the same
// wallet is still drawn.
func (t *TreemapPanel) SetData(root *model.Node) {
	t.data = root
	t.layout()
	if t.selectedBlock() == nil {
		t.SelectFirst()
	}
}

// SetSize sets the panel dimensions
func (t *TreemapPanel) SetSize(w, h int) {
	if t.width != w || t.height != h {
		t.width = w
		t.height = h
		t.layout()
		if t.selectedBlock() == nil {
			t.SelectFirst()
		}
	}
}

// Blocks returns the drawn blocks
func (t TreemapPanel) Blocks() []Block {
	return t.blocks
}

// Hidden returns how many qualifying leaves are too small to draw
func (t TreemapPanel) Hidden() int {
	return t.hidden
}

// Selected returns the selected block, or nil
func (t TreemapPanel) Selected() *Block {
	return t.selectedBlock()
}

func (t TreemapPanel) selectedBlock() *Block {
	for i := range t.blocks {
		if t.blocks[i].Key() == t.selected {
			return &t.blocks[i]
		}
	}
	return nil
}

// SelectFirst selects the largest drawn wallet
func (t *TreemapPanel) SelectFirst() {
	t.selected = ""
	best := -1.0
	for i := range t.blocks {
		if t.blocks[i].Leaf.Value > best {
			best = t.blocks[i].Leaf.Value
			t.selected = t.blocks[i].Key()
		}
	}
}

// MoveToBlock moves selection to an adjacent block
func (t *TreemapPanel) MoveToBlock(dx, dy int) {
	if len(t.blocks) == 0 {
		return
	}

	current := t.selectedBlock()
	if current == nil {
		t.SelectFirst()
		return
	}

	cx := current.X + current.Width/2
	cy := current.Y + current.Height/2

	var bestBlock *Block
	bestDist := -1

	for i := range t.blocks {
		block := &t.blocks[i]
		if block.Key() == t.selected {
			continue
		}

		bx := block.X + block.Width/2
		by := block.Y + block.Height/2

		if dx > 0 && bx <= cx {
			continue
		}
		if dx < 0 && bx >= cx {
			continue
		}
		if dy > 0 && by <= cy {
			continue
		}
		if dy < 0 && by >= cy {
			continue
		}

		dist := abs(bx-cx) + abs(by-cy)

		if bestDist < 0 || dist < bestDist {
			bestDist = dist
			bestBlock = block
		}
	}

	if bestBlock != nil {
		t.selected = bestBlock.Key()
	}
}

// contentSize returns the drawable area in cells
func (t TreemapPanel) contentSize() (int, int) {
	contentW := t.width - treemapBorderH
	contentH := t.height - treemapBorderV
	if contentW < 1 {
		contentW = 1
	}
	if contentH < 1 {
		contentH = 1
	}
	return contentW, contentH
}

// layout asks the chart for the scene at the panel's virtual pixel size and
// snaps each leaf rectangle to the cell grid
func (t *TreemapPanel) layout() {
	t.blocks = nil
	t.hidden = 0
	t.cacheValid = false

	if t.chart == nil || t.data == nil || t.width <= 2 || t.height <= 2 {
		return
	}

	contentW, contentH := t.contentSize()
	scene := t.chart.Scene(render.Props{
		Width:  float64(contentW * cellWidth),
		Height: float64(contentH * cellHeight),
		Data:   t.data,
	})

	for _, leaf := range scene.Leaves {
		// Round both edges so adjacent blocks share boundaries
		x := int(math.Round(leaf.X / cellWidth))
		y := int(math.Round(leaf.Y / cellHeight))
		endX := int(math.Round((leaf.X + leaf.Width) / cellWidth))
		endY := int(math.Round((leaf.Y + leaf.Height) / cellHeight))

		if endX > contentW {
			endX = contentW
		}
		if endY > contentH {
			endY = contentH
		}
		w := endX - x
		h := endY - y
		if w < 1 || h < 1 {
			t.hidden++
			continue
		}

		t.blocks = append(t.blocks, Block{
			Leaf:   leaf,
			X:      x,
			Y:      y,
			Width:  w,
			Height: h,
		})
	}
}

// View renders the treemap
func (t *TreemapPanel) View() string {
	if t.data == nil {
		return DimStyle.Render("No data")
	}

	if t.cacheValid && t.cachedSelected == t.selected {
		return t.cachedView
	}

	_, contentH := t.contentSize()

	type renderedBlock struct {
		block Block
		lines []string
	}

	var rendered []renderedBlock
	for _, block := range t.blocks {
		lines := strings.Split(t.renderBlock(block), "\n")
		rendered = append(rendered, renderedBlock{block, lines})
	}

	type blockSegment struct {
		x     int
		width int
		line  string
	}

	var outputLines []string
	for y := 0; y < contentH; y++ {
		var segments []blockSegment
		for _, rb := range rendered {
			lineIdx := y - rb.block.Y
			if lineIdx >= 0 && lineIdx < len(rb.lines) && lineIdx < rb.block.Height {
				segments = append(segments, blockSegment{
					x:     rb.block.X,
					width: rb.block.Width,
					line:  rb.lines[lineIdx],
				})
			}
		}

		sort.Slice(segments, func(i, j int) bool {
			return segments[i].x < segments[j].x
		})

		var lineBuilder strings.Builder
		currentX := 0
		for _, seg := range segments {
			// Rounding can leave a one-cell overlap; the left block wins
			if seg.x < currentX {
				continue
			}
			if seg.x > currentX {
				lineBuilder.WriteString(strings.Repeat(" ", seg.x-currentX))
			}
			lineBuilder.WriteString(seg.line)
			currentX = seg.x + seg.width
		}
		outputLines = append(outputLines, lineBuilder.String())
	}

	content := strings.Join(outputLines, "\n")
	style := lipgloss.NewStyle().Height(t.height).MaxHeight(t.height)

	t.cachedView = style.Render(content)
	t.cacheValid = true
	t.cachedSelected = t.selected

	return t.cachedView
}

// renderBlock renders one wallet with a border tinted by its chain
func (t TreemapPanel) renderBlock(block Block) string {
	fgColor := lipgloss.Color("#A0A0A0")
	borderColor := ChainColor(block.Leaf.Chain)

	isSelected := block.Key() == t.selected
	if isSelected {
		fgColor = lipgloss.Color("#FFFFFF")
		borderColor = ColorPrimary
	}

	innerW := block.Width - 2
	innerH := block.Height - 2
	if innerW < 0 {
		innerW = 0
	}
	if innerH < 0 {
		innerH = 0
	}

	var text string
	if innerH > 0 && innerW > 0 {
		text = shortAddress(block.Leaf.Address, innerW)
		if innerH > 1 {
			text += "\n" + FormatValue(block.Leaf.Value)
		}
		if innerH > 2 && block.Leaf.Chain != "" {
			text += "\n" + block.Leaf.Chain
		}
	}

	blockStyle := lipgloss.NewStyle().
		Width(innerW).
		Height(innerH).
		MaxWidth(block.Width).
		MaxHeight(block.Height).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Foreground(fgColor)

	if block.Width < 2 || block.Height < 2 {
		// Too small for a border: fill the cells instead
		return lipgloss.NewStyle().
			Background(borderColor).
			Render(strings.TrimSuffix(strings.Repeat(strings.Repeat(" ", block.Width)+"\n", block.Height), "\n"))
	}

	if isSelected {
		blockStyle = blockStyle.Bold(true)
	}

	return blockStyle.Render(text)
}

// abs returns the absolute value of x
func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
