package drawing

import "errors"

// ErrUnknownDrawing indicates a drawing group id with no registered drawing.
var ErrUnknownDrawing = errors.New("unknown drawing group")

// ErrDuplicateDrawing indicates a drawing group id that is already registered.
var ErrDuplicateDrawing = errors.New("drawing group already registered")

// ErrIDSpaceExhausted indicates no drawing group id or shape id is left to hand out.
var ErrIDSpaceExhausted = errors.New("identifier space exhausted")

// ErrInconsistentState indicates loaded bookkeeping that violates the allocator invariants.
var ErrInconsistentState = errors.New("inconsistent drawing group state")
