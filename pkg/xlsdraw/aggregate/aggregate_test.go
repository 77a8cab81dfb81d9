package aggregate

import (
	"bytes"
	"errors"
	"testing"

	"github.com/ukaji3/xlsdraw-go/pkg/xlsdraw/biff"
	"github.com/ukaji3/xlsdraw-go/pkg/xlsdraw/escher"
)

const textBoxType = 202

func shape(id uint32) *escher.Container {
	return escher.NewContainer(escher.SpContainer,
		escher.SpAtom{ShapeType: textBoxType, ShapeID: id, Flags: escher.SpHaveAnchor | escher.SpHaveSpt}.Atom(),
		escher.NewAtom(escher.ClientAnchor, 0, 0, make([]byte, 18)),
		escher.NewAtom(escher.ClientData, 0, 0, nil),
	)
}

// anchoredShape carries no ClientData or ClientTextbox record.
func anchoredShape(id uint32) *escher.Container {
	return escher.NewContainer(escher.SpContainer,
		escher.SpAtom{ShapeType: textBoxType, ShapeID: id, Flags: escher.SpHaveAnchor | escher.SpHaveSpt}.Atom(),
		escher.NewAtom(escher.ClientAnchor, 0, 0, make([]byte, 18)),
	)
}

func textShape(id uint32) *escher.Container {
	c := shape(id)
	c.Append(escher.NewAtom(escher.ClientTextbox, 0, 0, nil))
	return c
}

func sheetDrawing(shapes ...*escher.Container) *escher.Container {
	patriarch := escher.NewContainer(escher.SpContainer,
		escher.NewSpgrAtom(0, 0, 1023, 255),
		escher.SpAtom{ShapeID: 1024, Flags: escher.SpGroup | escher.SpPatriarch}.Atom(),
	)
	spgr := escher.NewContainer(escher.SpgrContainer, patriarch)
	for _, s := range shapes {
		spgr.Append(s)
	}
	dg := escher.DgAtom{DrawingID: 1, NumShapes: uint32(len(shapes) + 1), LastShapeID: int32(1024 + len(shapes))}
	return escher.NewContainer(escher.DgContainer, dg.Atom(), spgr)
}

func objRecord(tag byte) biff.Record {
	return biff.Record{Sid: biff.Obj, Data: []byte{0x15, 0x00, 0x12, 0x00, tag}}
}

func txoRecord(tag byte) biff.Record {
	return biff.Record{Sid: biff.TextObject, Data: []byte{0x12, 0x02, tag}}
}

func mustEncode(t *testing.T, n escher.Node) []byte {
	t.Helper()
	payload, err := escher.Encode(n)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	return payload
}

func sids(records []biff.Record) []uint16 {
	result := make([]uint16, len(records))
	for i, r := range records {
		result[i] = r.Sid
	}
	return result
}

func equalSids(a, b []uint16) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestChunk(t *testing.T) {
	tests := []struct {
		name     string
		size     int
		expected []int
	}{
		{"empty", 0, nil},
		{"single", 100, []int{100}},
		{"exact ceiling", biff.MaxRecordData, []int{biff.MaxRecordData}},
		{"three records", 20000, []int{8224, 8224, 3552}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := bytes.Repeat([]byte{0x5A}, tt.size)
			records := Chunk(payload, biff.MsoDrawing, biff.MaxRecordData)
			if len(records) != len(tt.expected) {
				t.Fatalf("records = %d, expected %d", len(records), len(tt.expected))
			}
			var joined []byte
			for i, r := range records {
				if len(r.Data) != tt.expected[i] {
					t.Errorf("record %d size = %d, expected %d", i, len(r.Data), tt.expected[i])
				}
				expectedSid := biff.Continue
				if i == 0 {
					expectedSid = biff.MsoDrawing
				}
				if r.Sid != expectedSid {
					t.Errorf("record %d = %s, expected %s", i, r.Name(), biff.SidName(expectedSid))
				}
				joined = append(joined, r.Data...)
			}
			if !bytes.Equal(joined, payload) {
				t.Error("chunks do not reassemble to the payload")
			}
		})
	}
}

func TestParseCorrelatesDescriptors(t *testing.T) {
	dgc := sheetDrawing(shape(1025), shape(1026))
	payload := mustEncode(t, dgc)
	first := shape(1025)
	cut := len(payload) - escher.Size(first)

	records := []biff.Record{
		{Sid: biff.MsoDrawing, Data: payload[:cut]},
		objRecord(1),
		{Sid: biff.MsoDrawing, Data: payload[cut:]},
		txoRecord(2),
		{Sid: biff.Window2},
	}

	agg, consumed, err := Parse(records, 0)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if consumed != 4 {
		t.Errorf("consumed = %d, expected 4", consumed)
	}
	if agg.Shapes.Len() != 2 {
		t.Fatalf("entries = %d, expected 2", agg.Shapes.Len())
	}
	if ids := agg.Shapes.IDs(); ids[0] != 1025 || ids[1] != 1026 {
		t.Errorf("ids = %v, expected [1025 1026]", ids)
	}
	if recs, _ := agg.Shapes.Get(1025); len(recs) != 1 || recs[0].Sid != biff.Obj {
		t.Errorf("shape 1025 descriptors = %v", sids(recs))
	}
	if recs, _ := agg.Shapes.Get(1026); len(recs) != 1 || recs[0].Sid != biff.TextObject {
		t.Errorf("shape 1026 descriptors = %v", sids(recs))
	}
	if len(agg.Nodes) != 1 || !escher.Equal(agg.Nodes[0], dgc) {
		t.Error("decoded tree differs from the source tree")
	}
}

func TestParseShapesWithoutClientRecords(t *testing.T) {
	dgc := sheetDrawing(anchoredShape(1025), anchoredShape(1026))
	payload := mustEncode(t, dgc)
	cut := len(payload) - escher.Size(anchoredShape(1026))

	records := []biff.Record{
		{Sid: biff.MsoDrawing, Data: payload[:cut]},
		objRecord(1),
		{Sid: biff.MsoDrawing, Data: payload[cut:]},
		txoRecord(2),
	}

	agg, consumed, err := Parse(records, 0)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if consumed != len(records) {
		t.Errorf("consumed = %d, expected %d", consumed, len(records))
	}
	if agg.Shapes.Len() != 2 {
		t.Fatalf("entries = %d, expected 2", agg.Shapes.Len())
	}
	if recs, _ := agg.Shapes.Get(1025); len(recs) != 1 || recs[0].Sid != biff.Obj {
		t.Errorf("shape 1025 descriptors = %v", sids(recs))
	}
	if recs, _ := agg.Shapes.Get(1026); len(recs) != 1 || recs[0].Sid != biff.TextObject {
		t.Errorf("shape 1026 descriptors = %v", sids(recs))
	}

	tests := []struct {
		placement Placement
		expected  []uint16
	}{
		{PlacementAppended, []uint16{biff.MsoDrawing, biff.Obj, biff.TextObject}},
		{PlacementInterleaved, []uint16{biff.MsoDrawing, biff.Obj, biff.MsoDrawing, biff.TextObject}},
	}
	for _, tt := range tests {
		t.Run(tt.placement.String(), func(t *testing.T) {
			out, err := agg.Serialize(SerializeOptions{Placement: tt.placement})
			if err != nil {
				t.Fatalf("Serialize failed: %v", err)
			}
			if !equalSids(sids(out), tt.expected) {
				t.Fatalf("records = %v, expected %v", sids(out), tt.expected)
			}
			if tt.placement == PlacementInterleaved && !bytes.Equal(out[0].Data, payload[:cut]) {
				t.Errorf("first drawing record is not cut at the end of shape 1025")
			}

			back, _, err := Parse(out, 0)
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if !escher.Equal(back.Nodes[0], dgc) {
				t.Error("tree changed across Serialize/Parse")
			}
			if back.Shapes.Len() != 2 {
				t.Errorf("entries = %d, expected 2", back.Shapes.Len())
			}
		})
	}

	// A third descriptor has no shape left to pair with.
	extra := append(records[:len(records):len(records)], objRecord(3))
	if _, _, err := Parse(extra, 0); !errors.Is(err, escher.ErrStructuralMismatch) {
		t.Errorf("err = %v, expected ErrStructuralMismatch", err)
	}
}

func TestParseTextContinuation(t *testing.T) {
	payload := mustEncode(t, sheetDrawing(shape(1025)))
	records := []biff.Record{
		{Sid: biff.MsoDrawing, Data: payload},
		txoRecord(1),
		{Sid: biff.Continue, Data: []byte("\x00hello")},
		{Sid: biff.Continue, Data: make([]byte, 16)},
		{Sid: biff.Note, Data: []byte{1, 2}},
	}

	agg, consumed, err := Parse(records, 0)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if consumed != len(records) {
		t.Errorf("consumed = %d, expected %d", consumed, len(records))
	}
	recs, ok := agg.Shapes.Get(1025)
	if !ok {
		t.Fatal("shape 1025 has no descriptors")
	}
	expected := []uint16{biff.TextObject, biff.Continue, biff.Continue}
	if !equalSids(sids(recs), expected) {
		t.Errorf("descriptors = %v, expected %v", sids(recs), expected)
	}
	if len(agg.Tail) != 1 || agg.Tail[0].Sid != biff.Note {
		t.Errorf("tail = %v, expected one NOTE", sids(agg.Tail))
	}
}

func TestParseNoAggregate(t *testing.T) {
	tests := []struct {
		name    string
		records []biff.Record
	}{
		{"foreign record", []biff.Record{{Sid: biff.Window2}}},
		{"notes only", []biff.Record{{Sid: biff.Note}, {Sid: biff.Window2}}},
		{"end of stream", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg, consumed, err := Parse(tt.records, 0)
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if agg != nil || consumed != 0 {
				t.Errorf("Parse = (%v, %d), expected (nil, 0)", agg, consumed)
			}
		})
	}
}

func TestParseStructuralMismatch(t *testing.T) {
	payload := mustEncode(t, sheetDrawing(shape(1025)))

	tests := []struct {
		name    string
		records []biff.Record
		offset  int
	}{
		{
			name:    "more descriptors than shapes",
			records: []biff.Record{{Sid: biff.MsoDrawing, Data: payload}, objRecord(1), objRecord(2)},
			offset:  len(payload),
		},
		{
			name:    "descriptor before its shape",
			records: []biff.Record{objRecord(1), {Sid: biff.MsoDrawing, Data: payload}},
			offset:  0,
		},
		{
			name:    "continuation opens the span",
			records: []biff.Record{{Sid: biff.Continue, Data: payload}},
			offset:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Parse(tt.records, 0)
			if !errors.Is(err, escher.ErrStructuralMismatch) {
				t.Fatalf("err = %v, expected ErrStructuralMismatch", err)
			}
			var offErr *escher.OffsetError
			if !errors.As(err, &offErr) {
				t.Fatalf("err = %T, expected *escher.OffsetError", err)
			}
			if offErr.Offset != tt.offset {
				t.Errorf("offset = %d, expected %d", offErr.Offset, tt.offset)
			}
		})
	}
}

func TestParseTruncatedDrawing(t *testing.T) {
	payload := mustEncode(t, sheetDrawing(shape(1025)))
	payload = append(payload, 0x0F, 0x00, 0x04)

	_, _, err := Parse([]biff.Record{{Sid: biff.MsoDrawing, Data: payload}}, 0)
	if !errors.Is(err, escher.ErrStructuralMismatch) {
		t.Errorf("err = %v, expected ErrStructuralMismatch", err)
	}
}

func TestSerializePlacement(t *testing.T) {
	build := func() *Aggregate {
		agg := &Aggregate{
			Nodes:  []escher.Node{sheetDrawing(shape(1025), textShape(1026), shape(1027))},
			Shapes: NewShapeObjMap(),
			Tail:   []biff.Record{{Sid: biff.Note, Data: []byte{9}}},
		}
		agg.Shapes.Set(1025, []biff.Record{objRecord(1)})
		agg.Shapes.Set(1026, []biff.Record{objRecord(2), txoRecord(2), {Sid: biff.Continue, Data: []byte{0}}})
		return agg
	}

	tests := []struct {
		name      string
		placement Placement
		expected  []uint16
	}{
		{
			name:      "appended",
			placement: PlacementAppended,
			expected:  []uint16{biff.MsoDrawing, biff.Obj, biff.Obj, biff.TextObject, biff.Continue, biff.Note},
		},
		{
			name:      "interleaved",
			placement: PlacementInterleaved,
			expected:  []uint16{
				biff.MsoDrawing, biff.Obj,
				biff.MsoDrawing, biff.Obj,
				biff.MsoDrawing, biff.TextObject, biff.Continue,
				biff.MsoDrawing, biff.Note,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := build()
			records, err := src.Serialize(SerializeOptions{Placement: tt.placement})
			if err != nil {
				t.Fatalf("Serialize failed: %v", err)
			}
			if !equalSids(sids(records), tt.expected) {
				t.Fatalf("records = %v, expected %v", sids(records), tt.expected)
			}

			agg, consumed, err := Parse(records, 0)
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if consumed != len(records) {
				t.Errorf("consumed = %d, expected %d", consumed, len(records))
			}
			if !escher.Equal(agg.Nodes[0], src.Nodes[0]) {
				t.Error("tree changed across Serialize/Parse")
			}
			for _, id := range src.Shapes.IDs() {
				want, _ := src.Shapes.Get(id)
				got, ok := agg.Shapes.Get(id)
				if !ok || !equalSids(sids(got), sids(want)) {
					t.Errorf("shape %d descriptors = %v, expected %v", id, sids(got), sids(want))
				}
			}
			if len(agg.Tail) != 1 {
				t.Errorf("tail = %d records, expected 1", len(agg.Tail))
			}

			again, err := agg.Serialize(SerializeOptions{Placement: tt.placement})
			if err != nil {
				t.Fatalf("second Serialize failed: %v", err)
			}
			if len(again) != len(records) {
				t.Fatalf("second Serialize = %d records, expected %d", len(again), len(records))
			}
			for i := range records {
				if again[i].Sid != records[i].Sid || !bytes.Equal(again[i].Data, records[i].Data) {
					t.Errorf("record %d changed on second Serialize", i)
				}
			}
		})
	}
}

func TestSerializeLargeDrawing(t *testing.T) {
	dgc := sheetDrawing(shape(1025))
	big := escher.NewAtom(escher.Opt, 3, 0, bytes.Repeat([]byte{0x11}, 20000))
	spgr := dgc.Containers(escher.SpgrContainer)[0]
	sp := spgr.Containers(escher.SpContainer)[1]
	sp.Append(big)

	agg := &Aggregate{Nodes: []escher.Node{dgc}, Shapes: NewShapeObjMap()}
	agg.Shapes.Set(1025, []biff.Record{objRecord(1)})

	records, err := agg.Serialize(DefaultSerializeOptions())
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	size := agg.PayloadSize()
	chunks := (size + biff.MaxRecordData - 1) / biff.MaxRecordData
	if len(records) != chunks+1 {
		t.Errorf("records = %d, expected %d chunks and one OBJ", len(records), chunks)
	}
	for i, r := range records {
		if len(r.Data) > biff.MaxRecordData {
			t.Errorf("record %d has %d bytes", i, len(r.Data))
		}
	}

	back, _, err := Parse(records, 0)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if !escher.Equal(back.Nodes[0], dgc) {
		t.Error("large tree changed across Serialize/Parse")
	}
}

func TestSerializeRejectsOrphanDescriptors(t *testing.T) {
	agg := &Aggregate{Nodes: []escher.Node{sheetDrawing(shape(1025))}, Shapes: NewShapeObjMap()}
	agg.Shapes.Set(4242, []biff.Record{objRecord(1)})

	if _, err := agg.Serialize(DefaultSerializeOptions()); !errors.Is(err, escher.ErrStructuralMismatch) {
		t.Errorf("err = %v, expected ErrStructuralMismatch", err)
	}
}

func TestSerializeRejectsUnpairableDescriptors(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*ShapeObjMap)
	}{
		{
			name: "described shape after undescribed one",
			setup: func(m *ShapeObjMap) {
				m.Set(1026, []biff.Record{objRecord(2)})
			},
		},
		{
			name: "more groups than anchors",
			setup: func(m *ShapeObjMap) {
				m.Set(1025, []biff.Record{objRecord(1), txoRecord(1)})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := &Aggregate{Nodes: []escher.Node{sheetDrawing(shape(1025), shape(1026))}, Shapes: NewShapeObjMap()}
			tt.setup(agg.Shapes)
			if _, err := agg.Serialize(DefaultSerializeOptions()); !errors.Is(err, escher.ErrStructuralMismatch) {
				t.Errorf("err = %v, expected ErrStructuralMismatch", err)
			}
		})
	}
}

func TestShapeList(t *testing.T) {
	agg := &Aggregate{Nodes: []escher.Node{sheetDrawing(shape(1025), shape(1026))}, Shapes: NewShapeObjMap()}

	shapes := agg.ShapeList()
	if len(shapes) != 2 {
		t.Fatalf("shapes = %d, expected 2", len(shapes))
	}
	for i, id := range []uint32{1025, 1026} {
		if shapes[i].ID != id || shapes[i].Type != textBoxType {
			t.Errorf("shape %d = {%d %d}, expected {%d %d}", i, shapes[i].ID, shapes[i].Type, id, textBoxType)
		}
	}
	if shapes[0].Offset >= shapes[1].Offset {
		t.Errorf("offsets not increasing: %d, %d", shapes[0].Offset, shapes[1].Offset)
	}
}

func TestParsePlacement(t *testing.T) {
	tests := []struct {
		in       string
		expected Placement
		wantErr  bool
	}{
		{"", PlacementAppended, false},
		{"appended", PlacementAppended, false},
		{"interleaved", PlacementInterleaved, false},
		{"sideways", PlacementAppended, true},
	}

	for _, tt := range tests {
		got, err := ParsePlacement(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParsePlacement(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.expected {
			t.Errorf("ParsePlacement(%q) = %v, expected %v", tt.in, got, tt.expected)
		}
	}
}
