package core

import "github.com/lumipallolabs/walletmap/internal/model"

// Event represents a state change from the controller
type Event interface {
	isEvent()
}

// TreeLoadedEvent is emitted after the tree file was (re)loaded
type TreeLoadedEvent struct {
	Path   string
	Root   *model.Node
	Reload bool // true when triggered by a file change
	// Changes lists the wallets that differ from the previously loaded tree
	Changes []model.Change
}

func (TreeLoadedEvent) isEvent() {}

// FileRemovedEvent is emitted when the watched file disappears. The last
// loaded tree stays current.
type FileRemovedEvent struct {
	Path string
}

func (FileRemovedEvent) isEvent() {}

// ErrorEvent is emitted when an error occurs
type ErrorEvent struct {
	Err error
}

func (ErrorEvent) isEvent() {}
