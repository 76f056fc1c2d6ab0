package core

import (
	"time"

	"github.com/lumipallolabs/walletmap/internal/model"
)

// Phase represents the load state of the tree file
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseLoaded
	PhaseFailed
)

// String returns a human-readable phase name
func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "Loading"
	case PhaseLoaded:
		return "Loaded"
	case PhaseFailed:
		return "Failed"
	default:
		return ""
	}
}

// AppState holds the controller state (read-only view)
type AppState struct {
	Path     string
	Root     *model.Node
	Phase    Phase
	LoadedAt time.Time
	Loads    int
	Watching bool
	Err      error
}

// Leaves returns the number of leaves in the current tree
func (s AppState) Leaves() int {
	return len(model.Leaves(s.Root))
}
