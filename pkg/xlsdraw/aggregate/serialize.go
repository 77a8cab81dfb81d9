package aggregate

import (
	"fmt"

	"github.com/ukaji3/xlsdraw-go/pkg/xlsdraw/biff"
	"github.com/ukaji3/xlsdraw-go/pkg/xlsdraw/escher"
)

// Placement selects where descriptor records are written relative to the
// drawing records.
type Placement int

const (
	// PlacementAppended writes the whole Escher payload first, then every
	// shape's descriptor records in shape order.
	PlacementAppended Placement = iota
	// PlacementInterleaved cuts the payload after each ClientData or
	// ClientTextbox record and writes the matching OBJ or TXO record right
	// behind it, the layout spreadsheet applications produce. A shape with
	// neither record is cut after its container.
	PlacementInterleaved
)

// String returns the placement name used in configuration.
func (p Placement) String() string {
	switch p {
	case PlacementAppended:
		return "appended"
	case PlacementInterleaved:
		return "interleaved"
	default:
		return fmt.Sprintf("Placement(%d)", int(p))
	}
}

// ParsePlacement parses a placement name.
func ParsePlacement(s string) (Placement, error) {
	switch s {
	case "", "appended":
		return PlacementAppended, nil
	case "interleaved":
		return PlacementInterleaved, nil
	default:
		return PlacementAppended, fmt.Errorf("invalid placement: %q (expected appended or interleaved)", s)
	}
}

// SerializeOptions controls Serialize.
type SerializeOptions struct {
	// Placement of the descriptor records.
	Placement Placement
	// Ceiling is the maximum data size of one host record. Zero means
	// biff.MaxRecordData.
	Ceiling int
}

// DefaultSerializeOptions returns appended placement at the host ceiling.
func DefaultSerializeOptions() SerializeOptions {
	return SerializeOptions{Placement: PlacementAppended, Ceiling: biff.MaxRecordData}
}

// Chunk splits payload into host records of at most ceiling bytes. The first
// record has the given sid and the rest are CONTINUE records. An empty
// payload yields no records.
func Chunk(payload []byte, sid uint16, ceiling int) []biff.Record {
	if ceiling <= 0 {
		ceiling = biff.MaxRecordData
	}
	records := make([]biff.Record, 0, (len(payload)+ceiling-1)/ceiling)
	for pos := 0; pos < len(payload); pos += ceiling {
		end := min(pos+ceiling, len(payload))
		data := make([]byte, end-pos)
		copy(data, payload[pos:end])
		recSid := biff.Continue
		if pos == 0 {
			recSid = sid
		}
		records = append(records, biff.Record{Sid: recSid, Data: data})
	}
	return records
}

// Serialize encodes the aggregate back into host records. Lengths are
// recomputed from the tree; nothing read from the input is trusted.
//
// Descriptor records must stay pairable on the next Parse: a shape's
// descriptor groups (an OBJ or TXO record with its CONTINUE records) may not
// outnumber its anchors, and once a shape leaves anchors without descriptors
// no later shape may have any.
func (a *Aggregate) Serialize(opts SerializeOptions) ([]biff.Record, error) {
	payload, err := escher.EncodeAll(a.Nodes)
	if err != nil {
		return nil, fmt.Errorf("aggregate: encode drawing: %w", err)
	}
	shapes, anchors := a.layout()
	groups, err := a.descriptorGroups(shapes, anchors)
	if err != nil {
		return nil, err
	}

	var out []biff.Record
	switch opts.Placement {
	case PlacementAppended:
		out = Chunk(payload, biff.MsoDrawing, opts.Ceiling)
		for _, s := range shapes {
			if records, ok := a.Shapes.Get(s.ID); ok {
				out = append(out, records...)
			}
		}
	case PlacementInterleaved:
		prev := 0
		for k, group := range groups {
			end := anchors[k].end
			out = append(out, Chunk(payload[prev:end], biff.MsoDrawing, opts.Ceiling)...)
			out = append(out, group...)
			prev = end
		}
		out = append(out, Chunk(payload[prev:], biff.MsoDrawing, opts.Ceiling)...)
	default:
		return nil, fmt.Errorf("aggregate: unknown placement %v", opts.Placement)
	}

	return append(out, a.Tail...), nil
}

// descriptorGroups returns the descriptor groups in anchor order, checking
// that they pair back with the same shapes on Parse.
func (a *Aggregate) descriptorGroups(shapes []Shape, anchors []anchor) ([][]biff.Record, error) {
	if err := checkUniqueIDs(shapes); err != nil {
		return nil, err
	}
	present := make(map[uint32]bool, len(shapes))
	for _, s := range shapes {
		present[s.ID] = true
	}
	for _, id := range a.Shapes.IDs() {
		if !present[id] {
			return nil, fmt.Errorf("aggregate: %w: descriptor records for missing shape %d", escher.ErrStructuralMismatch, id)
		}
	}

	perShape := make([]int, len(shapes))
	for _, an := range anchors {
		perShape[an.shape]++
	}

	var result [][]biff.Record
	gap := -1
	for i, s := range shapes {
		records, _ := a.Shapes.Get(s.ID)
		groups := splitGroups(records)
		if len(groups) > 0 && gap >= 0 {
			return nil, mismatch(s.Offset, "shape %d has descriptor records after undescribed shape %d", s.ID, shapes[gap].ID)
		}
		if len(groups) > perShape[i] {
			return nil, mismatch(s.Offset, "shape %d has %d descriptor groups for %d anchors", s.ID, len(groups), perShape[i])
		}
		if len(groups) < perShape[i] {
			gap = i
		}
		result = append(result, groups...)
	}
	return result, nil
}

// splitGroups splits descriptor records at each OBJ or TXO record.
func splitGroups(records []biff.Record) [][]biff.Record {
	var groups [][]biff.Record
	for _, r := range records {
		if r.Sid != biff.Continue || len(groups) == 0 {
			groups = append(groups, nil)
		}
		groups[len(groups)-1] = append(groups[len(groups)-1], r)
	}
	return groups
}
