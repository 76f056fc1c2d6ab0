// Package scanner finds tree documents in a directory.
package scanner

import (
	"context"

	"github.com/lumipallolabs/walletmap/internal/model"
)

// Progress reports scanning progress
type Progress struct {
	FilesScanned   int64
	DocumentsFound int64
	CurrentPath    string
}

// Document is one tree file found by a scan
type Document struct {
	Name string // file name without extension
	Path string
	Tree *model.Node
}

// Scanner defines the interface for document discovery
type Scanner interface {
	// Scan walks root and returns every parsable tree document, sorted by path
	Scan(ctx context.Context, root string) ([]Document, error)

	// Progress returns a channel that receives progress updates
	Progress() <-chan Progress
}
