package scanner

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/charlievieth/fastwalk"

	"github.com/lumipallolabs/walletmap/internal/logging"
	"github.com/lumipallolabs/walletmap/internal/model"
)

// Walker implements parallel document discovery
type Walker struct {
	workers    int
	progressCh chan Progress
	progress   Progress
}

// NewWalker creates a new parallel walker. A Walker scans once; its
// progress channel is closed when Scan returns.
func NewWalker(workers int) *Walker {
	if workers < 1 {
		workers = 8
	}
	return &Walker{
		workers:    workers,
		progressCh: make(chan Progress, 100),
	}
}

// Progress returns the progress channel
func (w *Walker) Progress() <-chan Progress {
	return w.progressCh
}

// Scan walks root using fastwalk and parses every .json, .yaml and .yml
// file. Files that fail to parse are skipped with a warning. Hidden
// directories are not entered.
func (w *Walker) Scan(ctx context.Context, root string) ([]Document, error) {
	defer close(w.progressCh)

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	rootInfo := getPlatformRootInfo(absRoot)

	docCh := make(chan Document, 64)
	var docs []Document
	var collectWg sync.WaitGroup

	collectWg.Add(1)
	go func() {
		defer collectWg.Done()
		for d := range docCh {
			docs = append(docs, d)
		}
	}()

	var seen sync.Map

	conf := &fastwalk.Config{
		Follow:     false,
		NumWorkers: w.workers,
	}

	walkErr := fastwalk.Walk(conf, absRoot, func(path string, d fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			return nil // Skip entries with errors
		}
		if path == absRoot {
			return nil
		}

		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") || shouldSkipDir(d, rootInfo, &seen) {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		if _, err := model.FormatForPath(path); err != nil {
			return nil
		}
		scanned := atomic.AddInt64(&w.progress.FilesScanned, 1)

		tree, err := model.Load(path)
		if err != nil {
			logging.Warn.Printf("skipping %s: %v", path, err)
			return nil
		}

		found := atomic.AddInt64(&w.progress.DocumentsFound, 1)
		w.report(Progress{FilesScanned: scanned, DocumentsFound: found, CurrentPath: path})

		docCh <- Document{
			Name: strings.TrimSuffix(d.Name(), filepath.Ext(d.Name())),
			Path: path,
			Tree: tree,
		}
		return nil
	})

	close(docCh)
	collectWg.Wait()

	if walkErr != nil {
		return nil, walkErr
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].Path < docs[j].Path })
	return docs, nil
}

// report publishes progress without blocking the walk
func (w *Walker) report(p Progress) {
	select {
	case w.progressCh <- p:
	default:
	}
}

// Ensure Walker implements Scanner
var _ Scanner = (*Walker)(nil)
