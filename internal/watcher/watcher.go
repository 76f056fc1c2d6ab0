// Package watcher reports changes to individual files.
//
// Watchers observe the directory that holds each file so that editors which
// save by writing a temporary file and renaming it over the original are
// still seen as modifications.
package watcher

import "path/filepath"

// EventType represents the type of filesystem event
type EventType int

const (
	EventDeleted EventType = iota
	EventCreated
	EventModified
)

func (t EventType) String() string {
	switch t {
	case EventDeleted:
		return "deleted"
	case EventCreated:
		return "created"
	case EventModified:
		return "modified"
	default:
		return "unknown"
	}
}

// Event represents a filesystem change event
type Event struct {
	Type EventType
	Path string
}

// targetSet tracks the watched files and their directories
type targetSet struct {
	files map[string]bool
	dirs  map[string]bool
}

func newTargetSet() targetSet {
	return targetSet{files: make(map[string]bool), dirs: make(map[string]bool)}
}

// add registers path and returns its cleaned absolute form and whether its
// directory was new
func (s targetSet) add(path string) (string, string, bool, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", "", false, err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	dir := filepath.Dir(abs)
	s.files[abs] = true
	if s.dirs[dir] {
		return abs, dir, false, nil
	}
	s.dirs[dir] = true
	return abs, dir, true, nil
}

func (s targetSet) has(path string) bool {
	return s.files[filepath.Clean(path)]
}
