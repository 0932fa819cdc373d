package ports

import (
	"context"
	"iter"
)

// WatchOp represents the type of file system operation.
type WatchOp uint8

const (
	// OpCreate indicates a file or directory was created.
	OpCreate WatchOp = iota
	// OpWrite indicates a file was modified.
	OpWrite
	// OpRemove indicates a file or directory was removed.
	OpRemove
	// OpRename indicates a file or directory was renamed.
	OpRename
)

// String returns the operation name.
func (op WatchOp) String() string {
	switch op {
	case OpCreate:
		return "create"
	case OpWrite:
		return "write"
	case OpRemove:
		return "remove"
	case OpRename:
		return "rename"
	default:
		return "unknown"
	}
}

// WatchEvent represents a file system event from the watcher.
type WatchEvent struct {
	// Path is the absolute path of the file or directory that changed.
	Path string
	// Operation is the type of change that occurred.
	Operation WatchOp
}

// WatchOptions configures a watch session.
type WatchOptions struct {
	// Roots are the directories watched recursively.
	Roots []string
	// Ignore holds glob patterns matched against path segments, paths
	// relative to a root, or absolute paths to skip.
	Ignore []string
	// Extensions limits reported file events to these extensions. Empty
	// means every file.
	Extensions []string
}

// Watcher defines the interface for watching file system changes.
//
//go:generate mockgen -source=watcher.go -destination=mocks/mock_watcher.go -package=mocks
type Watcher interface {
	// Start begins watching every root recursively.
	// It returns an error if the watcher fails to start.
	Start(ctx context.Context, opts WatchOptions) error
	// Stop stops the watcher and releases all resources.
	Stop() error
	// Events returns an iterator of file system events whose content
	// actually changed.
	Events() iter.Seq[WatchEvent]
}
