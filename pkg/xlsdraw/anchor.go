package xlsdraw

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/xlsdraw-go/pkg/xlsdraw/escher"
	"github.com/ukaji3/xlsdraw-go/pkg/xlsdraw/models"
)

// shapeRange returns the cell range of a shape's ClientAnchor record, or nil
// when the shape has none (shapes inside a group use a ChildAnchor).
func shapeRange(shape *escher.Container) *models.CellRange {
	anchor, err := escher.ParseSheetAnchor(shape.Atom(escher.ClientAnchor))
	if err != nil {
		return nil
	}
	r, err := newCellRange(int(anchor.Row1)+1, int(anchor.Col1)+1, int(anchor.Row2)+1, int(anchor.Col2)+1)
	if err != nil {
		return nil
	}
	return r
}

func newCellRange(r1, c1, r2, c2 int) (*models.CellRange, error) {
	start, err := excelize.CoordinatesToCellName(c1, r1)
	if err != nil {
		return nil, err
	}
	end, err := excelize.CoordinatesToCellName(c2, r2)
	if err != nil {
		return nil, err
	}
	return &models.CellRange{R1: r1, C1: c1, R2: r2, C2: c2, Ref: start + ":" + end}, nil
}

// ParseCellRange parses a range in A1 notation such as "B2:D8" or "$A$1:$F$20".
// A single cell is a one-cell range.
func ParseCellRange(ref string) (*models.CellRange, error) {
	ref = strings.ReplaceAll(strings.TrimSpace(ref), "$", "")
	parts := strings.Split(ref, ":")
	if len(parts) == 1 {
		parts = append(parts, parts[0])
	}
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid cell range: %q", ref)
	}

	c1, r1, err := excelize.CellNameToCoordinates(parts[0])
	if err != nil {
		return nil, fmt.Errorf("invalid cell range %q: %w", ref, err)
	}
	c2, r2, err := excelize.CellNameToCoordinates(parts[1])
	if err != nil {
		return nil, fmt.Errorf("invalid cell range %q: %w", ref, err)
	}
	return newCellRange(min(r1, r2), min(c1, c2), max(r1, r2), max(c1, c2))
}
