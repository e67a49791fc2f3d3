// Package session drives one privileged editing run: snapshot every target,
// hand them to the editor, then reconcile each against the shadow tree.
package session

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"
	"github.com/sudovim/sudovim/internal/reconcile"
)

var ErrNoPaths = errors.New("no paths to edit")

// Result is the outcome for one input path. Err is set when the path could
// not be classified or reconciled; Record is nil if classification failed,
// in which case the path was not handed to the editor either.
type Result struct {
	Input   string
	Record  *reconcile.Record
	Outcome reconcile.Outcome
	Err     error
	// DuplicateOf is the earlier input naming the same file. Duplicates are
	// neither edited nor reconciled.
	DuplicateOf string
}

// Edited reports whether the path was opened in the editor.
func (r *Result) Edited() bool {
	return r.Record != nil && r.DuplicateOf == ""
}

type Report struct {
	ID      string
	Results []Result
}

// Failed reports whether any path ended with an error.
func (r *Report) Failed() bool {
	for _, res := range r.Results {
		if res.Err != nil {
			return true
		}
	}
	return false
}

// Count returns how many paths finished with outcome o and no error.
func (r *Report) Count(o reconcile.Outcome) int {
	n := 0
	for _, res := range r.Results {
		if res.Err == nil && res.Edited() && res.Outcome == o {
			n++
		}
	}
	return n
}

type Session struct {
	root   string
	editor Editor
	logger *slog.Logger
}

func New(root string, editor Editor) *Session {
	return &Session{
		root:   root,
		editor: editor,
		logger: slog.Default(),
	}
}

// Run classifies inputs in order, runs the editor once and reconciles every
// classified record in the same order. Per-path failures land in the report.
// Paths that fail classification are kept out of the editor, and inputs that
// name an already seen file (through a symlink or another spelling) are
// recorded as duplicates of it.
//
// The returned error is the editor's; reconciliation still happens when the
// editor fails, since it may have written files first. A context cancelled
// before the editor starts ends the run with only classification results.
func (s *Session) Run(ctx context.Context, inputs []string) (*Report, error) {
	if len(inputs) == 0 {
		return nil, ErrNoPaths
	}

	report := &Report{ID: uuid.NewString()}
	logger := s.logger.With("session", report.ID)
	rec := reconcile.NewReconciler(s.root, logger)

	firstInput := make(map[string]string, len(inputs))
	seen := mapset.NewThreadUnsafeSet[string]()
	edit := make([]string, 0, len(inputs))

	report.Results = make([]Result, len(inputs))
	for i, input := range inputs {
		res := &report.Results[i]
		res.Input = input
		res.Record, res.Err = rec.Classify(input)
		if res.Err != nil {
			logger.Error("classify failed, not editing", "input", input, "error", res.Err)
			continue
		}

		key := identity(res.Record)
		if !seen.Add(key) {
			res.DuplicateOf = firstInput[key]
			logger.Debug("duplicate", "input", input, "of", res.DuplicateOf)
			continue
		}
		firstInput[key] = input
		edit = append(edit, input)
	}

	if err := ctx.Err(); err != nil {
		// interrupted before the editor started; nothing can have changed
		return report, err
	}
	if len(edit) == 0 {
		logger.Warn("nothing to edit")
		return report, nil
	}

	logger.Info("editing", "paths", len(edit), "root", s.root)
	editErr := s.editor.Edit(edit)
	if editErr != nil {
		logger.Error("editor exited with error", "error", editErr)
	}

	for i := range report.Results {
		res := &report.Results[i]
		if !res.Edited() {
			continue
		}
		res.Outcome, res.Err = rec.Reconcile(res.Record)
		if res.Err != nil {
			logger.Error("reconcile", "input", res.Input, "error", res.Err)
			continue
		}
		logger.Debug("reconcile", "input", res.Input, "state", res.Record.State, "outcome", res.Outcome)
	}

	return report, editErr
}

// identity is the key two inputs share when they name the same file: the
// canonical path, or the absolute path for files that do not exist yet.
func identity(r *reconcile.Record) string {
	if r.Path != "" {
		return r.Path
	}
	if abs, err := filepath.Abs(r.Input); err == nil {
		return abs
	}
	return r.Input
}
