package handlers

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lumipallolabs/walletmap/internal/render"
)

// RenderHandler renders trees posted in the request body
type RenderHandler struct {
	opts    render.Options
	size    Size
	logoDir string
}

// NewRenderHandler creates a new RenderHandler. Local logo references are
// inlined from logoDir when it is set.
func NewRenderHandler(opts render.Options, size Size, logoDir string) *RenderHandler {
	return &RenderHandler{opts: opts, size: size, logoDir: logoDir}
}

// Render returns the SVG for the posted tree
// POST /api/v1/render?width=&height=
func (h *RenderHandler) Render(c *gin.Context) {
	width, height, err := canvasSize(c, h.size)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tree, err := readTree(c)
	if err != nil {
		treeError(c, err)
		return
	}
	if h.logoDir != "" {
		tree = render.InlineLogos(tree, h.logoDir)
	}

	var buf bytes.Buffer
	chart := render.NewChart(h.opts)
	if err := chart.Render(&buf, render.Props{Width: width, Height: height, Data: tree}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Data(http.StatusOK, "image/svg+xml", buf.Bytes())
}
