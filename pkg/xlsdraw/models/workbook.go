// Package models defines the report structures produced by an inspection.
package models

// WorkbookDrawings represents the drawing layer of one workbook.
type WorkbookDrawings struct {
	// BookName is the workbook file name (no path).
	BookName string `json:"book_name"`
	// Properties holds the SummaryInformation properties that carry a value.
	Properties map[string]string `json:"properties,omitempty"`
	// Group summarizes the workbook drawing group (nil when the workbook has none).
	Group *DrawingGroupInfo `json:"group,omitempty"`
	// Sheets lists the sheets that carry a drawing, in stream order.
	Sheets []SheetDrawing `json:"sheets"`
}

// ShapeCount returns the number of shapes across all sheets.
func (w *WorkbookDrawings) ShapeCount() int {
	n := 0
	for _, s := range w.Sheets {
		n += len(s.Shapes)
	}
	return n
}
