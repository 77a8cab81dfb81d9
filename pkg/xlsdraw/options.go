// Package xlsdraw inspects the drawing layer of legacy .xls workbooks.
package xlsdraw

import (
	"github.com/ukaji3/xlsdraw-go/pkg/xlsdraw/aggregate"
	"github.com/ukaji3/xlsdraw-go/pkg/xlsdraw/models"
)

// Options configures inspection behavior.
type Options struct {
	// Verify re-serializes every drawing and checks that it parses back to
	// the same bytes.
	Verify bool
	// Placement is the descriptor placement used when verifying.
	Placement aggregate.Placement
	// Strict aborts on the first drawing that fails to parse instead of
	// recording the error in the sheet's report. It also rejects an
	// unreadable SummaryInformation stream.
	Strict bool
	// Range limits the reported shapes to those anchored over these cells.
	// Shapes without a ClientAnchor are dropped when set.
	Range *models.CellRange
	// IncludeProperties specifies whether to read SummaryInformation.
	// If nil, defaults to true.
	IncludeProperties *bool
}

// DefaultOptions returns default inspection options.
func DefaultOptions() Options {
	return Options{
		Placement: aggregate.PlacementAppended,
	}
}

// ShouldIncludeProperties returns whether to read document properties.
func (o Options) ShouldIncludeProperties() bool {
	if o.IncludeProperties != nil {
		return *o.IncludeProperties
	}
	return true
}

// SerializeOptions returns the aggregate options used for verification.
func (o Options) SerializeOptions() aggregate.SerializeOptions {
	opts := aggregate.DefaultSerializeOptions()
	opts.Placement = o.Placement
	return opts
}
