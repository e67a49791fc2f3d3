package mirror

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// Entry is one mirror found in the shadow tree.
type Entry struct {
	Slot   string `json:"slot"`
	Target string `json:"target"`
	// Dangling is set when the target no longer exists.
	Dangling bool `json:"dangling"`
}

// Walk visits every symlink under root in lexical order. Directories are
// descended into and anything else is skipped. A missing root is an empty
// tree.
func Walk(root string, fn func(Entry) error) error {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root && errors.Is(err, fs.ErrNotExist) {
				return fs.SkipAll
			}
			return &Error{Op: OpWalk, Path: path, Err: err}
		}
		if d.Type()&fs.ModeSymlink == 0 {
			return nil
		}

		target, err := os.Readlink(path)
		if err != nil {
			return &Error{Op: OpWalk, Path: path, Err: err}
		}
		_, statErr := os.Stat(path)
		return fn(Entry{
			Slot:     path,
			Target:   target,
			Dangling: errors.Is(statErr, fs.ErrNotExist),
		})
	})
	return err
}

// List collects the mirrors under root whose target matches any of the
// doublestar patterns. No patterns means everything.
func List(root string, patterns ...string) ([]Entry, error) {
	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, doublestar.ErrBadPattern)
		}
	}

	var entries []Entry
	err := Walk(root, func(e Entry) error {
		if matchAny(patterns, e.Target) {
			entries = append(entries, e)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func matchAny(patterns []string, path string) bool {
	if len(patterns) == 0 {
		return true
	}
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, path); ok {
			return true
		}
	}
	return false
}
