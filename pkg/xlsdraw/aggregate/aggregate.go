// Package aggregate joins the drawing records of a sheet into one Escher tree
// and splits the tree back into host records on save.
//
// In the host stream a sheet drawing is a run of MSODRAWING records, their
// CONTINUE records, the OBJ/TXO records describing each shape and the NOTE
// records of comments. The Escher bytes of the MSODRAWING records and their
// continuations form one logical buffer. OBJ/TXO records pair positionally
// with the ClientData/ClientTextbox records of the shapes decoded from it,
// and the map keeps them under the owning shape's id.
package aggregate

import (
	"fmt"

	"github.com/ukaji3/xlsdraw-go/pkg/xlsdraw/biff"
	"github.com/ukaji3/xlsdraw-go/pkg/xlsdraw/escher"
)

// Aggregate is one sheet drawing: its Escher forest, the descriptor records
// of its shapes and the tail records stored after all shapes.
type Aggregate struct {
	// Nodes is the decoded Escher forest, normally a single DgContainer.
	Nodes []escher.Node
	// Shapes maps shape ids to their OBJ/TXO records.
	Shapes *ShapeObjMap
	// Tail holds the NOTE records in encounter order.
	Tail []biff.Record
}

// Shape is a shape node located in the Escher forest.
type Shape struct {
	// ID is the shape identifier from the Sp atom.
	ID uint32
	// Type is the shape type (Sp instance).
	Type uint16
	// Flags is the Sp flags word.
	Flags uint32
	// Offset is the shape container's byte offset in the encoded forest.
	Offset int
	// Node is the SpContainer.
	Node *escher.Container
}

// IsSpanRecord reports whether a host record belongs to a drawing span.
func IsSpanRecord(sid uint16) bool {
	switch sid {
	case biff.MsoDrawing, biff.Continue, biff.Obj, biff.TextObject, biff.Note:
		return true
	}
	return false
}

type recordKind int

const (
	kindNone recordKind = iota
	kindEscher
	kindDescriptor
	kindNote
)

type pendingDescriptor struct {
	offset  int
	records []biff.Record
}

// span is the result of scanning a drawing span.
type span struct {
	buf         []byte
	descriptors []pendingDescriptor
	tail        []biff.Record
	sawDrawing  bool
	consumed    int
}

func scan(records []biff.Record, start int) (*span, error) {
	sp := &span{}
	last := kindNone

	i := start
loop:
	for ; i < len(records); i++ {
		rec := records[i]
		switch rec.Sid {
		case biff.MsoDrawing:
			sp.buf = append(sp.buf, rec.Data...)
			sp.sawDrawing = true
			last = kindEscher
		case biff.Continue:
			switch last {
			case kindEscher:
				sp.buf = append(sp.buf, rec.Data...)
			case kindDescriptor:
				// Text and formatting runs of the preceding TXO.
				d := &sp.descriptors[len(sp.descriptors)-1]
				d.records = append(d.records, rec)
			case kindNote:
				sp.tail = append(sp.tail, rec)
			default:
				return nil, mismatch(len(sp.buf), "CONTINUE record %d opens the drawing span", i)
			}
		case biff.Obj, biff.TextObject:
			sp.descriptors = append(sp.descriptors, pendingDescriptor{offset: len(sp.buf), records: []biff.Record{rec}})
			last = kindDescriptor
		case biff.Note:
			sp.tail = append(sp.tail, rec)
			last = kindNote
		default:
			break loop
		}
	}
	sp.consumed = i - start
	return sp, nil
}

// Payload returns the reassembled Escher bytes of the drawing span starting
// at records[start], without decoding them.
func Payload(records []biff.Record, start int) ([]byte, error) {
	sp, err := scan(records, start)
	if err != nil {
		return nil, err
	}
	return sp.buf, nil
}

// Parse reads the drawing span that starts at records[start]. It returns the
// aggregate and the number of records consumed. When the span holds no
// MSODRAWING record there is no aggregate and Parse returns (nil, 0, nil).
func Parse(records []biff.Record, start int) (*Aggregate, int, error) {
	sp, err := scan(records, start)
	if err != nil {
		return nil, 0, err
	}
	if !sp.sawDrawing {
		return nil, 0, nil
	}
	buf, descriptors, tail := sp.buf, sp.descriptors, sp.tail

	nodes, err := escher.DecodeAll(buf)
	if err != nil {
		return nil, 0, fmt.Errorf("aggregate: decode drawing at record %d: %w", start, err)
	}

	agg := &Aggregate{Nodes: nodes, Shapes: NewShapeObjMap(), Tail: tail}
	shapes, anchors := agg.layout()
	if err := checkUniqueIDs(shapes); err != nil {
		return nil, 0, err
	}
	if len(descriptors) > len(anchors) {
		d := descriptors[len(anchors)]
		return nil, 0, mismatch(d.offset, "%s record has no shape (%d descriptors, %d anchors)", d.records[0].Name(), len(descriptors), len(anchors))
	}
	for k, d := range descriptors {
		an := anchors[k]
		s := shapes[an.shape]
		if an.offset >= d.offset {
			return nil, 0, mismatch(d.offset, "%s record precedes its shape %d at offset %d", d.records[0].Name(), s.ID, an.offset)
		}
		existing, _ := agg.Shapes.Get(s.ID)
		agg.Shapes.Set(s.ID, append(existing, d.records...))
	}

	return agg, sp.consumed, nil
}

func mismatch(offset int, format string, args ...any) error {
	return &escher.OffsetError{
		Offset: offset,
		Err:    fmt.Errorf("%w: "+format, append([]any{escher.ErrStructuralMismatch}, args...)...),
	}
}

// ShapeList returns the shapes of the forest in document order. The
// patriarch (the drawing's top-level group) is not a shape.
func (a *Aggregate) ShapeList() []Shape {
	shapes, _ := a.layout()
	return shapes
}

// anchor is a ClientData or ClientTextbox record inside a shape. Descriptor
// records pair with anchors in document order: OBJ with ClientData, TXO
// with ClientTextbox. A shape without either record is one anchor that ends
// with its container.
type anchor struct {
	shape  int
	offset int
	end    int
}

func (a *Aggregate) layout() ([]Shape, []anchor) {
	var (
		shapes  []Shape
		client  [][]anchor
		current = -1
	)
	escher.Walk(a.Nodes, func(n escher.Node, offset int) bool {
		switch v := n.(type) {
		case *escher.Container:
			current = -1
			if v.RecordID != escher.SpContainer {
				return true
			}
			if sp, ok := escher.ShapeOf(v); ok && !sp.IsPatriarch() {
				current = len(shapes)
				shapes = append(shapes, Shape{
					ID:     sp.ShapeID,
					Type:   sp.ShapeType,
					Flags:  sp.Flags,
					Offset: offset,
					Node:   v,
				})
				client = append(client, nil)
			}
			return true
		case *escher.Atom:
			if current >= 0 && (v.RecordID == escher.ClientData || v.RecordID == escher.ClientTextbox) {
				client[current] = append(client[current], anchor{shape: current, offset: offset, end: offset + escher.Size(v)})
			}
		}
		return false
	})

	var anchors []anchor
	for i, s := range shapes {
		if len(client[i]) == 0 {
			anchors = append(anchors, anchor{shape: i, offset: s.Offset, end: s.Offset + escher.Size(s.Node)})
			continue
		}
		anchors = append(anchors, client[i]...)
	}
	return shapes, anchors
}

func checkUniqueIDs(shapes []Shape) error {
	seen := make(map[uint32]bool, len(shapes))
	for _, s := range shapes {
		if seen[s.ID] {
			return mismatch(s.Offset, "shape id %d appears twice", s.ID)
		}
		seen[s.ID] = true
	}
	return nil
}

// DrawingContainer returns the DgContainer of the aggregate.
func (a *Aggregate) DrawingContainer() *escher.Container {
	for _, n := range a.Nodes {
		if c, ok := n.(*escher.Container); ok && c.RecordID == escher.DgContainer {
			return c
		}
	}
	return nil
}

// DrawingAtom returns the Dg record of the aggregate.
func (a *Aggregate) DrawingAtom() (escher.DgAtom, bool) {
	dgc := a.DrawingContainer()
	if dgc == nil {
		return escher.DgAtom{}, false
	}
	dg, err := escher.ParseDg(dgc.Atom(escher.Dg))
	if err != nil {
		return escher.DgAtom{}, false
	}
	return dg, true
}

// PayloadSize returns the size of the encoded Escher forest.
func (a *Aggregate) PayloadSize() int {
	total := 0
	for _, n := range a.Nodes {
		total += escher.Size(n)
	}
	return total
}

// Clone returns a deep copy of the aggregate.
func (a *Aggregate) Clone() (*Aggregate, error) {
	out := &Aggregate{Shapes: NewShapeObjMap()}
	for _, n := range a.Nodes {
		c, err := escher.Clone(n)
		if err != nil {
			return nil, err
		}
		out.Nodes = append(out.Nodes, c)
	}
	for _, id := range a.Shapes.IDs() {
		records, _ := a.Shapes.Get(id)
		out.Shapes.Set(id, cloneRecords(records))
	}
	out.Tail = cloneRecords(a.Tail)
	return out, nil
}

func cloneRecords(records []biff.Record) []biff.Record {
	if records == nil {
		return nil
	}
	out := make([]biff.Record, len(records))
	for i, r := range records {
		out[i] = biff.Record{Sid: r.Sid, Data: append([]byte(nil), r.Data...)}
	}
	return out
}
