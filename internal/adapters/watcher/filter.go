package watcher

import (
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cespare/xxhash/v2"
	"go.trai.ch/justrun/internal/core/ports"
	"go.trai.ch/zerr"
)

// ChangeFilter drops events for ignored paths, unwatched extensions and
// writes that leave file content unchanged.
type ChangeFilter struct {
	roots      []string
	ignore     []string
	extensions []string

	mu     sync.Mutex
	hashes map[string]uint64
}

// NewChangeFilter creates a filter for the given watch options.
func NewChangeFilter(opts ports.WatchOptions) *ChangeFilter {
	f := &ChangeFilter{
		extensions: slices.Clone(opts.Extensions),
		hashes:     make(map[string]uint64),
	}
	for _, root := range opts.Roots {
		f.roots = append(f.roots, filepath.Clean(root))
	}
	for _, pattern := range opts.Ignore {
		f.ignore = append(f.ignore, filepath.ToSlash(pattern))
	}
	return f
}

// Ignored reports whether path matches an ignore pattern. Absolute patterns
// match the path and everything beneath it, patterns without a slash match
// any single path segment, and all others match the path relative to a root.
func (f *ChangeFilter) Ignored(path string) bool {
	slashPath := filepath.ToSlash(filepath.Clean(path))

	for _, pattern := range f.ignore {
		if strings.HasPrefix(pattern, "/") || filepath.IsAbs(filepath.FromSlash(pattern)) {
			if slashPath == pattern || strings.HasPrefix(slashPath, strings.TrimSuffix(pattern, "/")+"/") {
				return true
			}
		}
	}

	for _, root := range f.roots {
		rel, err := filepath.Rel(root, path)
		if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		rel = filepath.ToSlash(rel)
		segments := strings.Split(rel, "/")

		for _, pattern := range f.ignore {
			if strings.Contains(pattern, "/") {
				if ok, _ := doublestar.Match(pattern, rel); ok {
					return true
				}
				continue
			}
			for _, seg := range segments {
				if ok, _ := doublestar.Match(pattern, seg); ok {
					return true
				}
			}
		}
	}
	return false
}

// Watched reports whether path has one of the watched extensions.
func (f *ChangeFilter) Watched(path string) bool {
	return len(f.extensions) == 0 || slices.Contains(f.extensions, filepath.Ext(path))
}

// Prime records the current content hash of path without reporting it.
func (f *ChangeFilter) Prime(path string) {
	if f.Ignored(path) || !f.Watched(path) {
		return
	}
	sum, err := hashFile(path)
	if err != nil {
		return
	}
	f.mu.Lock()
	f.hashes[path] = sum
	f.mu.Unlock()
}

// Accept reports whether ev describes a real change.
func (f *ChangeFilter) Accept(ev ports.WatchEvent) bool {
	if f.Ignored(ev.Path) || !f.Watched(ev.Path) {
		return false
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	switch ev.Operation {
	case ports.OpRemove, ports.OpRename:
		delete(f.hashes, ev.Path)
		return true
	case ports.OpCreate, ports.OpWrite:
		sum, err := hashFile(ev.Path)
		if err != nil {
			// The file is gone or unreadable: report it like a removal.
			delete(f.hashes, ev.Path)
			return true
		}
		if prev, ok := f.hashes[ev.Path]; ok && prev == sum {
			return false
		}
		f.hashes[ev.Path] = sum
		return true
	default:
		return false
	}
}

func hashFile(path string) (uint64, error) {
	file, err := os.Open(path) //nolint:gosec // Path comes from the file watcher
	if err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to open file"), "path", path)
	}
	defer file.Close() //nolint:errcheck // Best effort close in defer

	info, err := file.Stat()
	if err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to stat file"), "path", path)
	}
	if info.IsDir() {
		return 0, zerr.With(zerr.New("path is a directory"), "path", path)
	}

	hasher := xxhash.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to hash file content"), "path", path)
	}
	return hasher.Sum64(), nil
}
