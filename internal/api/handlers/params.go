package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"

	"github.com/lumipallolabs/walletmap/internal/config"
	"github.com/lumipallolabs/walletmap/internal/model"
)

// MaxBodySize caps uploaded tree documents
const MaxBodySize = 10 << 20

// errUnsupportedMedia marks bodies that are not text documents
var errUnsupportedMedia = errors.New("tree documents must be JSON or YAML text")

// Size is the default canvas used when a request omits width or height
type Size struct {
	Width  float64
	Height float64
}

// canvasSize reads width and height from the query string
func canvasSize(c *gin.Context, def Size) (float64, float64, error) {
	width, err := floatQuery(c, "width", def.Width)
	if err != nil {
		return 0, 0, err
	}
	height, err := floatQuery(c, "height", def.Height)
	if err != nil {
		return 0, 0, err
	}
	if err := config.ValidateSize(width, height); err != nil {
		return 0, 0, err
	}
	return width, height, nil
}

func floatQuery(c *gin.Context, key string, def float64) (float64, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", key, raw)
	}
	return v, nil
}

// readTree decodes the request body as a tree document. YAML is selected by
// a yaml content type or ?format=yaml; everything else is parsed as JSON.
func readTree(c *gin.Context) (*model.Node, error) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, MaxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, errors.New("empty body")
	}
	if !isText(mimetype.Detect(body)) {
		return nil, errUnsupportedMedia
	}

	format := model.FormatJSON
	if c.Query("format") == "yaml" || strings.Contains(c.ContentType(), "yaml") {
		format = model.FormatYAML
	}
	return model.Decode(bytes.NewReader(body), format)
}

// isText reports whether a sniffed type is plain text or derives from it
// (JSON does)
func isText(mtype *mimetype.MIME) bool {
	for m := mtype; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}

// treeError maps a body decoding error onto a status code
func treeError(c *gin.Context, err error) {
	status := http.StatusBadRequest
	var maxErr *http.MaxBytesError
	switch {
	case errors.Is(err, errUnsupportedMedia):
		status = http.StatusUnsupportedMediaType
	case errors.As(err, &maxErr):
		status = http.StatusRequestEntityTooLarge
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
