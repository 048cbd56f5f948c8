// Package codec converts workbook sheets to and from xlsx containers.
package codec

import (
	"errors"
	"fmt"
)

// ErrInvalidFormat indicates the input is not a valid spreadsheet container.
var ErrInvalidFormat = errors.New("file is not a valid spreadsheet container")

// ErrEmptyWorkbook indicates an export was requested for a workbook without sheets.
var ErrEmptyWorkbook = errors.New("workbook has no sheets to export")

// Options configures import and export behavior.
type Options struct {
	// Password opens encrypted containers on import and encrypts on export.
	Password string
	// InferNumbers writes numeric-looking cells as numbers on export.
	// Off by default so text round-trips byte for byte.
	InferNumbers bool
	// PrintArea defines each exported sheet's print area as its used range.
	PrintArea bool
}

// Table is one named sheet of rows as found in a container.
// Rows may be ragged.
type Table struct {
	Name string
	Rows [][]string
	// PrintArea is the sheet's print area ("A1:D10"), "" when none is defined.
	PrintArea string
}

// CodecError represents a failure while reading or writing one sheet.
type CodecError struct {
	SheetName string
	Op        string // "read", "write"
	Err       error
}

func (e *CodecError) Error() string {
	if e.SheetName == "" {
		return fmt.Sprintf("%s workbook: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s sheet %q: %v", e.Op, e.SheetName, e.Err)
}

func (e *CodecError) Unwrap() error {
	return e.Err
}

// NewCodecError creates a new CodecError.
func NewCodecError(sheetName, op string, err error) *CodecError {
	return &CodecError{
		SheetName: sheetName,
		Op:        op,
		Err:       err,
	}
}
