// Package mirror manages the shadow tree: a directory in which every audited
// file is represented by a symlink at root/<absolute path> pointing back at
// the real file. The tree is append-only; nothing here removes a mirror.
package mirror

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Slot returns the location of the mirror for abs under root.
func Slot(root, abs string) (string, error) {
	if !filepath.IsAbs(abs) || filepath.Clean(abs) != abs {
		return "", ErrInvalidPath
	}
	return filepath.Join(root, strings.TrimLeft(abs, string(filepath.Separator))), nil
}

// IsMirrored reports whether anything occupies the mirror slot for abs.
// Dangling symlinks count; only existence is checked.
func IsMirrored(root, abs string) (bool, error) {
	slot, err := Slot(root, abs)
	if err != nil {
		return false, err
	}

	_, err = os.Lstat(slot)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, &Error{Op: OpStat, Path: slot, Err: err}
	}
}

// Create makes the parent directories of the mirror slot for abs and places a
// symlink to abs there. An occupied slot is left as is and ErrAlreadyMirrored
// is returned.
func Create(root, abs string) error {
	slot, err := Slot(root, abs)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(slot), 0o755); err != nil {
		return &Error{Op: OpMkdir, Path: filepath.Dir(slot), Err: err}
	}

	if err := os.Symlink(abs, slot); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return &Error{Op: OpSymlink, Path: slot, Err: ErrAlreadyMirrored}
		}
		return &Error{Op: OpSymlink, Path: slot, Err: err}
	}

	slog.Debug("mirror created", "slot", slot, "target", abs)
	return nil
}
