package models

// SheetDrawing represents the drawing of a single sheet.
type SheetDrawing struct {
	// Index is the zero-based position of the sheet substream.
	Index int `json:"index"`
	// Name is the sheet name from the BOUNDSHEET record (empty if unknown).
	Name string `json:"name,omitempty"`
	// DrawingID is the drawing id from the Dg record.
	DrawingID uint16 `json:"drawing_id"`
	// LastShapeID is the last shape id recorded in the Dg record.
	LastShapeID int32 `json:"last_shape_id"`
	// Shapes lists the shapes of the drawing in document order.
	Shapes []ShapeInfo `json:"shapes,omitempty"`
	// TailRecords is the number of NOTE records stored after the shapes.
	TailRecords int `json:"tail_records"`
	// PayloadSize is the size of the reassembled Escher payload in bytes.
	PayloadSize int `json:"payload_size"`
	// Records is the number of host records the drawing span occupies.
	Records int `json:"records"`
	// Verify holds the re-serialization check (nil unless requested).
	Verify *VerifyResult `json:"verify,omitempty"`
	// Error is set when the drawing could not be parsed.
	Error string `json:"error,omitempty"`
}
