package aggregate

import (
	"fmt"

	"github.com/ukaji3/xlsdraw-go/pkg/xlsdraw/biff"
	"github.com/ukaji3/xlsdraw-go/pkg/xlsdraw/drawing"
	"github.com/ukaji3/xlsdraw-go/pkg/xlsdraw/escher"
)

// ParseGroup reads the workbook drawing group stored in MSODRAWINGGROUP and
// its CONTINUE records starting at records[start]. It returns the
// DggContainer and the number of records consumed, or (nil, 0, nil) when
// records[start] is not an MSODRAWINGGROUP record.
func ParseGroup(records []biff.Record, start int) (*escher.Container, int, error) {
	if start >= len(records) || records[start].Sid != biff.MsoDrawingGroup {
		return nil, 0, nil
	}
	buf := append([]byte(nil), records[start].Data...)
	i := start + 1
	for ; i < len(records) && records[i].Sid == biff.Continue; i++ {
		buf = append(buf, records[i].Data...)
	}

	nodes, err := escher.DecodeAll(buf)
	if err != nil {
		return nil, 0, fmt.Errorf("aggregate: decode drawing group: %w", err)
	}
	if len(nodes) == 0 {
		return nil, 0, mismatch(0, "empty drawing group")
	}
	dgg, ok := nodes[0].(*escher.Container)
	if !ok || dgg.RecordID != escher.DggContainer {
		return nil, 0, mismatch(0, "drawing group starts with %s", escher.RecordName(nodes[0].RecordHeader().RecordID))
	}
	return dgg, i - start, nil
}

// SerializeGroup encodes the DggContainer into MSODRAWINGGROUP and CONTINUE
// records of at most ceiling bytes each.
func SerializeGroup(dgg *escher.Container, ceiling int) ([]biff.Record, error) {
	payload, err := escher.Encode(dgg)
	if err != nil {
		return nil, fmt.Errorf("aggregate: encode drawing group: %w", err)
	}
	return Chunk(payload, biff.MsoDrawingGroup, ceiling), nil
}

// LoadGroup builds the identifier allocator from the Dgg record of a
// DggContainer.
func LoadGroup(dgg *escher.Container) (*drawing.Group, error) {
	atom, err := escher.ParseDgg(dgg.Atom(escher.Dgg))
	if err != nil {
		return nil, fmt.Errorf("aggregate: drawing group: %w", err)
	}
	return drawing.LoadGroup(atom)
}

// SyncGroup rewrites the Dgg record of a DggContainer from g.
func SyncGroup(dgg *escher.Container, g *drawing.Group) error {
	atom, err := g.Atom().Atom()
	if err != nil {
		return err
	}
	for i, child := range dgg.Children {
		if a, ok := child.(*escher.Atom); ok && a.RecordID == escher.Dgg {
			dgg.Children[i] = atom
			return nil
		}
	}
	dgg.Children = append([]escher.Node{atom}, dgg.Children...)
	return nil
}
