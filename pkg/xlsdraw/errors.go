package xlsdraw

import (
	"errors"
	"fmt"
)

// ErrFileNotFound indicates the input file does not exist.
var ErrFileNotFound = errors.New("file not found")

// ErrInvalidFormat indicates the input is not a readable BIFF8 compound file.
var ErrInvalidFormat = errors.New("invalid xls format")

// ErrNoWorkbookStream indicates a compound file without a Workbook stream.
var ErrNoWorkbookStream = errors.New("no Workbook stream")

// InspectError represents an error while inspecting one part of a workbook.
type InspectError struct {
	Sheet     string
	Component string // "group", "drawing", "verify", "properties"
	Err       error
}

func (e *InspectError) Error() string {
	if e.Sheet == "" {
		return fmt.Sprintf("inspect error (%s): %v", e.Component, e.Err)
	}
	return fmt.Sprintf("inspect error in sheet %q (%s): %v", e.Sheet, e.Component, e.Err)
}

func (e *InspectError) Unwrap() error {
	return e.Err
}

// NewInspectError creates a new InspectError.
func NewInspectError(sheet, component string, err error) *InspectError {
	return &InspectError{
		Sheet:     sheet,
		Component: component,
		Err:       err,
	}
}
