// Package biff reads and writes the BIFF8 record framing of a workbook stream.
package biff

import "fmt"

// Record ids (sids) of the BIFF8 records the drawing layer looks at.
const (
	// ── Substream framing ─────────────────────────────────────────────────────
	BOF uint16 = 0x0809
	EOF uint16 = 0x000A

	// ── Drawing layer ─────────────────────────────────────────────────────────
	MsoDrawingGroup     uint16 = 0x00EB
	MsoDrawing          uint16 = 0x00EC
	MsoDrawingSelection uint16 = 0x00ED
	Continue            uint16 = 0x003C
	Obj                 uint16 = 0x005D
	TextObject          uint16 = 0x01B6
	Note                uint16 = 0x001C

	// ── Sheet metadata ────────────────────────────────────────────────────────
	BoundSheet uint16 = 0x0085
	Window2    uint16 = 0x023E
)

// BOF substream types.
const (
	SubstreamGlobals   uint16 = 0x0005
	SubstreamVBModule  uint16 = 0x0006
	SubstreamWorksheet uint16 = 0x0010
	SubstreamChart     uint16 = 0x0020
	SubstreamMacro     uint16 = 0x0040
	SubstreamWorkspace uint16 = 0x0100
)

// MaxRecordData is the largest data size of one physical BIFF8 record.
const MaxRecordData = 8224

// HeaderSize is the size of a BIFF record header (sid + length).
const HeaderSize = 4

// Record is one physical host record.
type Record struct {
	Sid  uint16
	Data []byte
}

var recordNames = map[uint16]string{
	BOF:                 "BOF",
	EOF:                 "EOF",
	MsoDrawingGroup:     "MSODRAWINGGROUP",
	MsoDrawing:          "MSODRAWING",
	MsoDrawingSelection: "MSODRAWINGSELECTION",
	Continue:            "CONTINUE",
	Obj:                 "OBJ",
	TextObject:          "TXO",
	Note:                "NOTE",
	BoundSheet:          "BOUNDSHEET",
	Window2:             "WINDOW2",
}

// Name returns the record's mnemonic, or its sid in hex when unknown.
func (r Record) Name() string {
	return SidName(r.Sid)
}

// SidName returns the mnemonic for a sid.
func SidName(sid uint16) string {
	if name, ok := recordNames[sid]; ok {
		return name
	}
	return fmt.Sprintf("0x%04X", sid)
}
