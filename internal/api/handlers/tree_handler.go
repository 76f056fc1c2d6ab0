package handlers

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lumipallolabs/walletmap/internal/logging"
	"github.com/lumipallolabs/walletmap/internal/model"
	"github.com/lumipallolabs/walletmap/internal/render"
	"github.com/lumipallolabs/walletmap/internal/store"
)

// TreeHandler handles stored snapshot requests
type TreeHandler struct {
	store   *store.SnapshotStore
	charts  *ChartCache
	size    Size
	logoDir string
}

// NewTreeHandler creates a new TreeHandler
func NewTreeHandler(s *store.SnapshotStore, charts *ChartCache, size Size, logoDir string) *TreeHandler {
	return &TreeHandler{store: s, charts: charts, size: size, logoDir: logoDir}
}

// List returns the metadata of every stored snapshot
// GET /api/v1/trees
func (h *TreeHandler) List(c *gin.Context) {
	metas, err := h.store.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"trees": metas})
}

// Get returns a stored tree
// GET /api/v1/trees/:name
func (h *TreeHandler) Get(c *gin.Context) {
	tree, _, ok := h.load(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, tree)
}

// Put stores the tree in the request body
// PUT /api/v1/trees/:name
func (h *TreeHandler) Put(c *gin.Context) {
	name := c.Param("name")
	if err := store.ValidateName(name); err != nil {
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

	meta, err := h.store.Save(name, tree)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	h.charts.Drop(name)
	logging.Server.Printf("saved snapshot %s (%d leaves)", name, meta.Leaves)

	c.JSON(http.StatusOK, meta)
}

// Delete removes a stored tree
// DELETE /api/v1/trees/:name
func (h *TreeHandler) Delete(c *gin.Context) {
	name := c.Param("name")
	if err := store.ValidateName(name); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.store.Delete(name); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Tree not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	h.charts.Drop(name)

	c.Status(http.StatusNoContent)
}

// SVG renders a stored tree
// GET /api/v1/trees/:name/svg?width=&height=
func (h *TreeHandler) SVG(c *gin.Context) {
	props, chart, ok := h.props(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := chart.Render(&buf, props); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/svg+xml", buf.Bytes())
}

// Leaves returns the drawn leaves of a stored tree with their links and
// rectangles
// GET /api/v1/trees/:name/leaves?width=&height=
func (h *TreeHandler) Leaves(c *gin.Context) {
	props, chart, ok := h.props(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, chart.Scene(props))
}

// Diff lists the wallets that changed from the base snapshot to this one
// GET /api/v1/trees/:name/diff/:base
func (h *TreeHandler) Diff(c *gin.Context) {
	tree, _, ok := h.load(c)
	if !ok {
		return
	}

	base := c.Param("base")
	if err := store.ValidateName(base); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	prev, err := h.store.Get(base)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Base tree not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	changes := model.Diff(prev, tree)
	if changes == nil {
		changes = []model.Change{}
	}
	c.JSON(http.StatusOK, gin.H{
		"base":    base,
		"name":    c.Param("name"),
		"summary": model.SummarizeChanges(changes),
		"changes": changes,
	})
}

// props resolves the snapshot and canvas size for a render request
func (h *TreeHandler) props(c *gin.Context) (render.Props, *render.Chart, bool) {
	width, height, err := canvasSize(c, h.size)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return render.Props{}, nil, false
	}
	tree, chart, ok := h.load(c)
	if !ok {
		return render.Props{}, nil, false
	}
	return render.Props{Width: width, Height: height, Data: tree}, chart, true
}

// load fetches the snapshot named in the path, writing the error response
// when it cannot
func (h *TreeHandler) load(c *gin.Context) (*model.Node, *render.Chart, bool) {
	name := c.Param("name")
	if err := store.ValidateName(name); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, nil, false
	}

	tree, chart, err := h.charts.Get(name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Tree not found"})
			return nil, nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, nil, false
	}
	return tree, chart, true
}
