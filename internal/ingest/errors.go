package ingest

import (
	"errors"
	"fmt"
)

var (
	ErrNotPDF = errors.New("not a pdf file")
	ErrNoText = errors.New("no extractable text")
)

// Error describes a failed ingestion step for one file.
type Error struct {
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("ingest %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Recover converts a panic raised inside a third-party parser into an Error
// stored in *errp. Use as a deferred call.
func Recover(op, path string, errp *error) {
	if r := recover(); r != nil {
		*errp = &Error{Op: op, Path: path, Err: fmt.Errorf("parser panic: %v", r)}
	}
}
