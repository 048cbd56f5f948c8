package sheetpm

import (
	"errors"
	"fmt"
)

var (
	// ErrSheetNotFound indicates the referenced sheet id does not exist.
	ErrSheetNotFound = errors.New("sheet not found")
	// ErrLastSheet indicates an attempt to delete the only remaining sheet.
	ErrLastSheet = errors.New("cannot delete the last sheet: the workbook must have at least one sheet")
	// ErrNoActiveSheet indicates a cell or structure edit without an active sheet.
	ErrNoActiveSheet = errors.New("no active sheet")
	// ErrInvalidName indicates an empty sheet name.
	ErrInvalidName = errors.New("sheet name must not be empty")
	// ErrBlobNotFound is returned by a BlobStore when nothing has been saved yet.
	ErrBlobNotFound = errors.New("blob not found")
)

// PersistError represents a failure to write the workbook blob.
// The in-memory edit that triggered the write has been applied.
type PersistError struct {
	Op  string
	Err error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist workbook after %s: %v", e.Op, e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}
