package escher

import (
	"encoding/binary"
	"fmt"

	"fortio.org/safecast"
)

// Sp atom flags.
const (
	SpGroup      uint32 = 0x0001
	SpChild      uint32 = 0x0002
	SpPatriarch  uint32 = 0x0004
	SpDeleted    uint32 = 0x0008
	SpOleShape   uint32 = 0x0010
	SpHaveMaster uint32 = 0x0020
	SpFlipH      uint32 = 0x0040
	SpFlipV      uint32 = 0x0080
	SpConnector  uint32 = 0x0100
	SpHaveAnchor uint32 = 0x0200
	SpBackground uint32 = 0x0400
	SpHaveSpt    uint32 = 0x0800
)

var spFlagNames = []struct {
	flag uint32
	name string
}{
	{SpGroup, "Group"},
	{SpChild, "Child"},
	{SpPatriarch, "Patriarch"},
	{SpDeleted, "Deleted"},
	{SpOleShape, "OleShape"},
	{SpHaveMaster, "HaveMaster"},
	{SpFlipH, "FlipH"},
	{SpFlipV, "FlipV"},
	{SpConnector, "Connector"},
	{SpHaveAnchor, "HaveAnchor"},
	{SpBackground, "Background"},
	{SpHaveSpt, "HaveSpt"},
}

// SpFlagNames returns the names of the flags set in an Sp flags word.
func SpFlagNames(flags uint32) []string {
	var names []string
	for _, f := range spFlagNames {
		if flags&f.flag != 0 {
			names = append(names, f.name)
		}
	}
	return names
}

// SpAtom is the typed view of an Sp record: the shape identifier and flags.
type SpAtom struct {
	// ShapeType is the instance field (0 for groups, 202 for text boxes, ...).
	ShapeType uint16
	// ShapeID is the document-wide shape identifier.
	ShapeID uint32
	// Flags is a combination of the Sp* flag constants.
	Flags uint32
}

// ParseSp reads an Sp atom.
func ParseSp(a *Atom) (SpAtom, error) {
	if a == nil || a.RecordID != Sp {
		return SpAtom{}, fmt.Errorf("escher: not an Sp record")
	}
	if len(a.Payload) < 8 {
		return SpAtom{}, fmt.Errorf("%w: Sp needs 8 bytes, has %d", ErrShortPayload, len(a.Payload))
	}
	return SpAtom{
		ShapeType: a.Instance,
		ShapeID:   binary.LittleEndian.Uint32(a.Payload[0:]),
		Flags:     binary.LittleEndian.Uint32(a.Payload[4:]),
	}, nil
}

// Atom builds an Sp record.
func (s SpAtom) Atom() *Atom {
	payload := make([]byte, 8)
	binary.LittleEndian.PutUint32(payload[0:], s.ShapeID)
	binary.LittleEndian.PutUint32(payload[4:], s.Flags)
	return NewAtom(Sp, 2, s.ShapeType, payload)
}

// IsPatriarch reports whether the shape is the top-level group of a drawing.
func (s SpAtom) IsPatriarch() bool {
	return s.Flags&SpPatriarch != 0
}

// SetShapeID rewrites the shape id of an Sp atom in place.
func SetShapeID(a *Atom, id uint32) error {
	if _, err := ParseSp(a); err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(a.Payload[0:], id)
	return nil
}

// ShapeOf returns the Sp view of a shape container.
func ShapeOf(c *Container) (SpAtom, bool) {
	if c == nil || c.RecordID != SpContainer {
		return SpAtom{}, false
	}
	sp, err := ParseSp(c.Atom(Sp))
	if err != nil {
		return SpAtom{}, false
	}
	return sp, true
}

// SheetAnchor is the typed view of a sheet ClientAnchor record: the cells
// holding the shape's top-left and bottom-right corners, with offsets inside
// those cells in 1/1024 of the column width and 1/256 of the row height.
// Columns and rows are zero-based.
type SheetAnchor struct {
	Flags uint16
	Col1  uint16
	Dx1   uint16
	Row1  uint16
	Dy1   uint16
	Col2  uint16
	Dx2   uint16
	Row2  uint16
	Dy2   uint16
}

// ParseSheetAnchor reads an 18-byte sheet ClientAnchor record.
func ParseSheetAnchor(a *Atom) (SheetAnchor, error) {
	if a == nil || a.RecordID != ClientAnchor {
		return SheetAnchor{}, fmt.Errorf("escher: not a ClientAnchor record")
	}
	if len(a.Payload) < 18 {
		return SheetAnchor{}, fmt.Errorf("%w: ClientAnchor needs 18 bytes, has %d", ErrShortPayload, len(a.Payload))
	}
	u := func(i int) uint16 { return binary.LittleEndian.Uint16(a.Payload[i*2:]) }
	return SheetAnchor{
		Flags: u(0),
		Col1:  u(1),
		Dx1:   u(2),
		Row1:  u(3),
		Dy1:   u(4),
		Col2:  u(5),
		Dx2:   u(6),
		Row2:  u(7),
		Dy2:   u(8),
	}, nil
}

// Atom builds a ClientAnchor record.
func (s SheetAnchor) Atom() *Atom {
	payload := make([]byte, 18)
	for i, v := range []uint16{s.Flags, s.Col1, s.Dx1, s.Row1, s.Dy1, s.Col2, s.Dx2, s.Row2, s.Dy2} {
		binary.LittleEndian.PutUint16(payload[i*2:], v)
	}
	return NewAtom(ClientAnchor, 0, 0, payload)
}

// NewSpgrAtom builds an Spgr record with the given group bounds.
func NewSpgrAtom(x1, y1, x2, y2 int32) *Atom {
	payload := make([]byte, 16)
	binary.LittleEndian.PutUint32(payload[0:], uint32(x1))
	binary.LittleEndian.PutUint32(payload[4:], uint32(y1))
	binary.LittleEndian.PutUint32(payload[8:], uint32(x2))
	binary.LittleEndian.PutUint32(payload[12:], uint32(y2))
	return NewAtom(Spgr, 1, 0, payload)
}

// DgAtom is the typed view of a Dg record: per-drawing shape bookkeeping.
type DgAtom struct {
	// DrawingID is the instance field.
	DrawingID uint16
	// NumShapes is the number of shapes in the drawing.
	NumShapes uint32
	// LastShapeID is the last shape id allocated, -1 when none.
	LastShapeID int32
}

// ParseDg reads a Dg atom.
func ParseDg(a *Atom) (DgAtom, error) {
	if a == nil || a.RecordID != Dg {
		return DgAtom{}, fmt.Errorf("escher: not a Dg record")
	}
	if len(a.Payload) < 8 {
		return DgAtom{}, fmt.Errorf("%w: Dg needs 8 bytes, has %d", ErrShortPayload, len(a.Payload))
	}
	return DgAtom{
		DrawingID:   a.Instance,
		NumShapes:   binary.LittleEndian.Uint32(a.Payload[0:]),
		LastShapeID: int32(binary.LittleEndian.Uint32(a.Payload[4:])),
	}, nil
}

// Atom builds a Dg record.
func (d DgAtom) Atom() *Atom {
	payload := make([]byte, 8)
	binary.LittleEndian.PutUint32(payload[0:], d.NumShapes)
	binary.LittleEndian.PutUint32(payload[4:], uint32(d.LastShapeID))
	return NewAtom(Dg, 0, d.DrawingID, payload)
}

// FileIDCluster is one entry of the Dgg cluster table.
type FileIDCluster struct {
	DrawingGroupID  uint32
	NumShapeIDsUsed uint32
}

// DggAtom is the typed view of a Dgg record: document-wide id bookkeeping.
type DggAtom struct {
	ShapeIDMax     uint32
	NumShapesSaved uint32
	DrawingsSaved  uint32
	Clusters       []FileIDCluster
}

const dggFixedSize = 16

// ParseDgg reads a Dgg atom. The cluster count is taken from the payload size;
// the stored cidcl field is recomputed on encode.
func ParseDgg(a *Atom) (DggAtom, error) {
	if a == nil || a.RecordID != Dgg {
		return DggAtom{}, fmt.Errorf("escher: not a Dgg record")
	}
	if len(a.Payload) < dggFixedSize {
		return DggAtom{}, fmt.Errorf("%w: Dgg needs %d bytes, has %d", ErrShortPayload, dggFixedSize, len(a.Payload))
	}
	p := a.Payload
	d := DggAtom{
		ShapeIDMax:     binary.LittleEndian.Uint32(p[0:]),
		NumShapesSaved: binary.LittleEndian.Uint32(p[8:]),
		DrawingsSaved:  binary.LittleEndian.Uint32(p[12:]),
	}
	for pos := dggFixedSize; pos+8 <= len(p); pos += 8 {
		d.Clusters = append(d.Clusters, FileIDCluster{
			DrawingGroupID:  binary.LittleEndian.Uint32(p[pos:]),
			NumShapeIDsUsed: binary.LittleEndian.Uint32(p[pos+4:]),
		})
	}
	return d, nil
}

// Atom builds a Dgg record.
func (d DggAtom) Atom() (*Atom, error) {
	cidcl, err := safecast.Conv[uint32](len(d.Clusters) + 1)
	if err != nil {
		return nil, fmt.Errorf("escher: too many clusters: %w", err)
	}
	payload := make([]byte, dggFixedSize+8*len(d.Clusters))
	binary.LittleEndian.PutUint32(payload[0:], d.ShapeIDMax)
	binary.LittleEndian.PutUint32(payload[4:], cidcl)
	binary.LittleEndian.PutUint32(payload[8:], d.NumShapesSaved)
	binary.LittleEndian.PutUint32(payload[12:], d.DrawingsSaved)
	for i, c := range d.Clusters {
		pos := dggFixedSize + 8*i
		binary.LittleEndian.PutUint32(payload[pos:], c.DrawingGroupID)
		binary.LittleEndian.PutUint32(payload[pos+4:], c.NumShapeIDsUsed)
	}
	return NewAtom(Dgg, 0, 0, payload), nil
}
