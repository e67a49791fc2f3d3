// Package reconcile decides, per target file, whether a privileged edit
// warrants a mirror in the shadow tree. Records are classified before the
// edit and reconciled after it.
package reconcile

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/sudovim/sudovim/internal/mirror"
	"github.com/sudovim/sudovim/internal/xxhash"
)

type Reconciler struct {
	root   string
	logger *slog.Logger

	// buf is reset and refilled for every file that gets hashed.
	buf bytes.Buffer
}

// NewReconciler returns a Reconciler mirroring into the shadow tree at root.
// A nil logger means slog.Default().
func NewReconciler(root string, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{root: root, logger: logger}
}

// Classify inspects input before the edit. A missing path is StateNew, a
// mirrored path is StateExisting and anything else is StateTracked with a
// snapshot of its contents.
func (r *Reconciler) Classify(input string) (*Record, error) {
	rec := &Record{Input: input}

	path, err := canonicalize(input)
	if errors.Is(err, fs.ErrNotExist) {
		rec.State = StateNew
		r.logger.Debug("classify", "input", input, "state", rec.State)
		return rec, nil
	}
	if err != nil {
		return nil, err
	}
	rec.Path = path

	mirrored, err := mirror.IsMirrored(r.root, path)
	if err != nil {
		return nil, err
	}
	if mirrored {
		rec.State = StateExisting
		r.logger.Debug("classify", "path", path, "state", rec.State)
		return rec, nil
	}

	snap, err := r.snapshot(path)
	if err != nil {
		return nil, err
	}
	rec.State = StateTracked
	rec.Snapshot = &snap
	r.logger.Debug("classify", "path", path, "state", rec.State,
		"size", humanize.Bytes(uint64(snap.Size)), "digest", fmt.Sprintf("%016x", snap.Digest))
	return rec, nil
}

// Reconcile compares rec against the filesystem after the edit and creates a
// mirror when the file is new or changed.
func (r *Reconciler) Reconcile(rec *Record) (Outcome, error) {
	switch rec.State {
	case StateExisting:
		return AlreadyMirrored, nil

	case StateNew:
		path, err := canonicalize(rec.Input)
		if errors.Is(err, fs.ErrNotExist) {
			return NotCreated, nil
		}
		if err != nil {
			return NotCreated, err
		}
		rec.Path = path

		// A slot can be taken by the dangling mirror of an earlier deletion.
		mirrored, err := mirror.IsMirrored(r.root, path)
		if err != nil {
			return NotCreated, err
		}
		if mirrored {
			r.logger.Debug("reconcile", "path", path, "outcome", AlreadyMirrored)
			return AlreadyMirrored, nil
		}
		return r.mirror(rec, "new file")

	case StateTracked:
		snap, err := r.snapshot(rec.Path)
		if errors.Is(err, fs.ErrNotExist) {
			// Deleted by the edit. The dangling mirror records the removal.
			return r.mirror(rec, "removed")
		}
		if err != nil {
			return Unmodified, err
		}
		if snap.Equal(*rec.Snapshot) {
			r.logger.Debug("reconcile", "path", rec.Path, "outcome", Unmodified)
			return Unmodified, nil
		}
		return r.mirror(rec, "modified")

	default:
		return NotCreated, fmt.Errorf("record %q: unknown state %d", rec.Input, rec.State)
	}
}

func (r *Reconciler) mirror(rec *Record, reason string) (Outcome, error) {
	if err := mirror.Create(r.root, rec.Path); err != nil {
		return NotCreated, err
	}
	r.logger.Info("mirrored", "path", rec.Path, "reason", reason)
	return Mirrored, nil
}

func (r *Reconciler) snapshot(path string) (Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return Snapshot{}, err
	}
	defer f.Close()

	r.buf.Reset()
	if _, err := r.buf.ReadFrom(f); err != nil {
		return Snapshot{}, fmt.Errorf("read %s: %w", path, err)
	}

	return Snapshot{
		Size:   int64(r.buf.Len()),
		Digest: xxhash.Sum64(r.buf.Bytes()),
	}, nil
}

// canonicalize returns the absolute path of p with symlinks resolved. The
// error wraps fs.ErrNotExist when p does not exist.
func canonicalize(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", p, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", p, err)
	}
	return resolved, nil
}
