package models

// CellRange represents the cells a shape is anchored to.
type CellRange struct {
	// R1 is the start row (1-based).
	R1 int `json:"r1"`
	// C1 is the start column (1-based).
	C1 int `json:"c1"`
	// R2 is the end row (1-based, inclusive).
	R2 int `json:"r2"`
	// C2 is the end column (1-based, inclusive).
	C2 int `json:"c2"`
	// Ref is the range in A1 notation, e.g. "B2:D8".
	Ref string `json:"ref"`
}

// Overlaps reports whether r and o share at least one cell.
func (r CellRange) Overlaps(o CellRange) bool {
	return r.R1 <= o.R2 && o.R1 <= r.R2 && r.C1 <= o.C2 && o.C1 <= r.C2
}
