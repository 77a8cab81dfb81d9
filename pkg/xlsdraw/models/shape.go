package models

// ShapeInfo represents one shape of a sheet drawing.
type ShapeInfo struct {
	// ID is the document-wide shape identifier.
	ID uint32 `json:"id"`
	// Type is the shape type from the Sp record instance.
	Type uint16 `json:"type"`
	// Flags lists the names of the Sp flags that are set.
	Flags []string `json:"flags,omitempty"`
	// Anchor is the cell range of the ClientAnchor record (nil for child shapes).
	Anchor *CellRange `json:"anchor,omitempty"`
	// Descriptors lists the host records (OBJ, TXO, CONTINUE) attached to the shape.
	Descriptors []string `json:"descriptors,omitempty"`
}
