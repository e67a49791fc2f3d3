package mirror

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPath is returned when a path handed to the mirror is not
	// absolute and clean. Callers must canonicalize first.
	ErrInvalidPath = errors.New("path is not absolute and canonical")

	// ErrAlreadyMirrored is returned by Create when the mirror slot is taken.
	ErrAlreadyMirrored = errors.New("path already mirrored")
)

// Error carries the operation and path of a failed filesystem call.
type Error struct {
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("mirror %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

const (
	OpStat    = "stat"
	OpMkdir   = "mkdir"
	OpSymlink = "symlink"
	OpWalk    = "walk"
)
