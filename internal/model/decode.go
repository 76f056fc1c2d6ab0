package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format identifies a tree document encoding
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ErrUnknownFormat is returned for file extensions that are not tree documents
var ErrUnknownFormat = errors.New("unknown tree document format")

// FormatForPath picks the document format from a file extension
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}

// Decode parses a tree document from r
func Decode(r io.Reader, format Format) (*Node, error) {
	var root Node
	switch format {
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&root); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	case FormatJSON, "":
		if err := json.NewDecoder(r).Decode(&root); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
	return &root, nil
}

// Load reads a tree document from disk. Files without a known extension are
// parsed as JSON.
func Load(path string) (*Node, error) {
	format, err := FormatForPath(path)
	if err != nil {
		format = FormatJSON
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer file.Close()

	return Decode(file, format)
}
