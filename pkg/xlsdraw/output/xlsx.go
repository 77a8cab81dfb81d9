package output

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/xlsdraw-go/pkg/xlsdraw/models"
)

// Report sheet names.
const (
	SummarySheet = "Summary"
	ShapesSheet  = "Shapes"
)

var (
	summaryHeader = []any{"Book", "Sheet", "Drawing", "Shapes", "Notes", "Payload", "Records", "Stable", "Error"}
	shapesHeader  = []any{"Book", "Sheet", "Drawing", "Shape", "Type", "Anchor", "Flags", "Descriptors"}
)

// WriteWorkbook writes one or more workbook reports to an xlsx file: a
// Summary sheet with one row per sheet drawing and a Shapes sheet with one
// row per shape.
func WriteWorkbook(path string, books ...*models.WorkbookDrawings) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(ShapesSheet); err != nil {
		return err
	}

	if err := f.SetSheetRow(SummarySheet, "A1", &summaryHeader); err != nil {
		return err
	}
	if err := f.SetSheetRow(ShapesSheet, "A1", &shapesHeader); err != nil {
		return err
	}

	summaryRow, shapeRow := 2, 2
	for _, wb := range books {
		for _, sheet := range wb.Sheets {
			row := []any{
				wb.BookName, sheetLabel(sheet), sheet.DrawingID, len(sheet.Shapes),
				sheet.TailRecords, sheet.PayloadSize, sheet.Records, stableLabel(sheet.Verify), sheet.Error,
			}
			if err := setRow(f, SummarySheet, summaryRow, row); err != nil {
				return err
			}
			summaryRow++

			for _, shape := range sheet.Shapes {
				row := []any{
					wb.BookName, sheetLabel(sheet), sheet.DrawingID, shape.ID, shape.Type, anchorLabel(shape.Anchor),
					strings.Join(shape.Flags, " "), strings.Join(shape.Descriptors, " "),
				}
				if err := setRow(f, ShapesSheet, shapeRow, row); err != nil {
					return err
				}
				shapeRow++
			}
		}
	}

	return f.SaveAs(path)
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func sheetLabel(s models.SheetDrawing) string {
	if s.Name != "" {
		return s.Name
	}
	return fmt.Sprintf("#%d", s.Index)
}

func anchorLabel(r *models.CellRange) string {
	if r == nil {
		return ""
	}
	return r.Ref
}

func stableLabel(v *models.VerifyResult) string {
	switch {
	case v == nil:
		return ""
	case v.Stable:
		return "yes"
	default:
		return "no"
	}
}
