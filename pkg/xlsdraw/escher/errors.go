package escher

import (
	"errors"
	"fmt"
)

// ErrTruncatedHeader indicates fewer than HeaderSize bytes remain where a record header is expected.
var ErrTruncatedHeader = errors.New("truncated record header")

// ErrStructuralMismatch indicates bytes that do not form the expected record structure.
var ErrStructuralMismatch = errors.New("structural mismatch")

// ErrShortPayload indicates an atom payload too small for its typed view.
var ErrShortPayload = errors.New("atom payload too short")

// OffsetError reports a decode failure at a byte offset.
type OffsetError struct {
	Offset int
	Err    error
}

func (e *OffsetError) Error() string {
	return fmt.Sprintf("escher: at offset %d: %v", e.Offset, e.Err)
}

func (e *OffsetError) Unwrap() error {
	return e.Err
}
