// Package output serializes inspection reports.
package output

import (
	"encoding/json"

	"github.com/ukaji3/xlsdraw-go/pkg/xlsdraw/models"
)

// ToJSON serializes a workbook report to JSON.
func ToJSON(wb *models.WorkbookDrawings, pretty bool) ([]byte, error) {
	return marshal(wb, pretty)
}

// SheetToJSON serializes a single sheet drawing to JSON.
func SheetToJSON(sheet *models.SheetDrawing, pretty bool) ([]byte, error) {
	return marshal(sheet, pretty)
}

func marshal(v any, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}
