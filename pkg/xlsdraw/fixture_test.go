package xlsdraw

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"unicode/utf16"

	"github.com/ukaji3/xlsdraw-go/pkg/xlsdraw/aggregate"
	"github.com/ukaji3/xlsdraw-go/pkg/xlsdraw/biff"
	"github.com/ukaji3/xlsdraw-go/pkg/xlsdraw/drawing"
	"github.com/ukaji3/xlsdraw-go/pkg/xlsdraw/escher"
)

// Compound file constants for a version 3 file with 512-byte sectors.
const (
	cfbSector     = 512
	cfbMinStream  = 4096
	cfbFatSect    = 0xFFFFFFFD
	cfbEndOfChain = 0xFFFFFFFE
	cfbFree       = 0xFFFFFFFF
	cfbNoStream   = 0xFFFFFFFF
)

type cfbStream struct {
	name string
	data []byte
}

// compoundFile builds a minimal compound file holding up to three streams.
// Streams are padded to the mini-stream cutoff so they live in regular sectors.
func compoundFile(t *testing.T, streams ...cfbStream) []byte {
	t.Helper()
	if len(streams) > 3 {
		t.Fatalf("compoundFile supports 3 streams, got %d", len(streams))
	}
	le := binary.LittleEndian

	fat := []uint32{cfbFatSect, cfbEndOfChain}
	starts := make([]uint32, len(streams))
	sizes := make([]uint32, len(streams))
	var body bytes.Buffer
	next := uint32(2)
	for i, s := range streams {
		data := append([]byte(nil), s.data...)
		if len(data) < cfbMinStream {
			data = append(data, make([]byte, cfbMinStream-len(data))...)
		}
		if rem := len(data) % cfbSector; rem != 0 {
			data = append(data, make([]byte, cfbSector-rem)...)
		}
		n := uint32(len(data) / cfbSector)
		starts[i] = next
		sizes[i] = uint32(len(data))
		for k := uint32(1); k < n; k++ {
			fat = append(fat, next+k)
		}
		fat = append(fat, cfbEndOfChain)
		next += n
		body.Write(data)
	}
	if len(fat) > cfbSector/4 {
		t.Fatalf("streams need %d sectors, one FAT sector covers %d", len(fat), cfbSector/4)
	}
	for len(fat) < cfbSector/4 {
		fat = append(fat, cfbFree)
	}

	header := make([]byte, cfbSector)
	copy(header, []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1})
	le.PutUint16(header[24:], 0x003E)
	le.PutUint16(header[26:], 0x0003)
	le.PutUint16(header[28:], 0xFFFE)
	le.PutUint16(header[30:], 0x0009)
	le.PutUint16(header[32:], 0x0006)
	le.PutUint32(header[44:], 1)
	le.PutUint32(header[48:], 1)
	le.PutUint32(header[56:], cfbMinStream)
	le.PutUint32(header[60:], cfbEndOfChain)
	le.PutUint32(header[68:], cfbEndOfChain)
	le.PutUint32(header[76:], 0)
	for i := 1; i < 109; i++ {
		le.PutUint32(header[76+i*4:], cfbFree)
	}

	fatSector := make([]byte, cfbSector)
	for i, v := range fat {
		le.PutUint32(fatSector[i*4:], v)
	}

	dir := make([]byte, cfbSector)
	for i := range 4 {
		e := dir[i*128:]
		le.PutUint32(e[68:], cfbNoStream)
		le.PutUint32(e[72:], cfbNoStream)
		le.PutUint32(e[76:], cfbNoStream)
	}
	rootChild := uint32(cfbNoStream)
	if len(streams) > 0 {
		rootChild = 1
	}
	putDirEntry(dir[0:], "Root Entry", 5, cfbNoStream, rootChild, cfbEndOfChain, 0)
	for i, s := range streams {
		right := uint32(cfbNoStream)
		if i+1 < len(streams) {
			right = uint32(i + 2)
		}
		putDirEntry(dir[(i+1)*128:], s.name, 2, right, cfbNoStream, starts[i], sizes[i])
	}

	var out bytes.Buffer
	out.Write(header)
	out.Write(fatSector)
	out.Write(dir)
	out.Write(body.Bytes())
	return out.Bytes()
}

func putDirEntry(e []byte, name string, objectType byte, right, child, start, size uint32) {
	le := binary.LittleEndian
	units := utf16.Encode([]rune(name))
	for i, u := range units {
		le.PutUint16(e[i*2:], u)
	}
	le.PutUint16(e[64:], uint16((len(units)+1)*2))
	e[66] = objectType
	e[67] = 1
	le.PutUint32(e[68:], cfbNoStream)
	le.PutUint32(e[72:], right)
	le.PutUint32(e[76:], child)
	le.PutUint32(e[116:], start)
	le.PutUint32(e[120:], size)
}

// summaryInformation builds a SummaryInformation property set with a code
// page, a title and an author.
func summaryInformation(title, author string) []byte {
	le := binary.LittleEndian
	lpstr := func(s string) []byte {
		b := make([]byte, 8, 8+len(s)+4)
		le.PutUint16(b[0:], 0x001E)
		le.PutUint32(b[4:], uint32(len(s)+1))
		b = append(b, s...)
		b = append(b, 0)
		for len(b)%4 != 0 {
			b = append(b, 0)
		}
		return b
	}
	codePage := []byte{0x02, 0x00, 0x00, 0x00, 0xE4, 0x04, 0x00, 0x00}

	props := []struct {
		id    uint32
		value []byte
	}{
		{1, codePage},
		{2, lpstr(title)},
		{4, lpstr(author)},
	}

	headerLen := 8 + 8*len(props)
	set := make([]byte, headerLen)
	var values []byte
	for i, p := range props {
		le.PutUint32(set[8+i*8:], p.id)
		le.PutUint32(set[12+i*8:], uint32(headerLen+len(values)))
		values = append(values, p.value...)
	}
	le.PutUint32(set[0:], uint32(headerLen+len(values)))
	le.PutUint32(set[4:], uint32(len(props)))

	stream := make([]byte, 48)
	le.PutUint16(stream[0:], 0xFFFE)
	le.PutUint32(stream[24:], 1)
	// FMTID_SummaryInformation {F29F85E0-4FF9-1068-AB91-08002B27B3D9}
	copy(stream[28:], []byte{0xE0, 0x85, 0x9F, 0xF2, 0xF9, 0x4F, 0x68, 0x10, 0xAB, 0x91, 0x08, 0x00, 0x2B, 0x27, 0xB3, 0xD9})
	le.PutUint32(stream[44:], 48)
	stream = append(stream, set...)
	return append(stream, values...)
}

func bofRecord(substreamType uint16) biff.Record {
	data := make([]byte, 16)
	binary.LittleEndian.PutUint16(data[0:], 0x0600)
	binary.LittleEndian.PutUint16(data[2:], substreamType)
	return biff.Record{Sid: biff.BOF, Data: data}
}

func boundSheet(name string) biff.Record {
	data := []byte{0, 0, 0, 0, 0, 0, byte(len(name)), 0}
	return biff.Record{Sid: biff.BoundSheet, Data: append(data, name...)}
}

func textBox() *escher.Container {
	return escher.NewContainer(escher.SpContainer,
		escher.SpAtom{ShapeType: 202, Flags: escher.SpHaveAnchor | escher.SpHaveSpt}.Atom(),
		escher.SheetAnchor{Col1: 1, Row1: 1, Col2: 3, Row2: 7}.Atom(),
		escher.NewAtom(escher.ClientData, 0, 0, nil),
		escher.NewAtom(escher.ClientTextbox, 0, 0, nil),
	)
}

// workbookRecords builds a workbook stream with two sheets: "Data" carries a
// text box with an embedded chart substream inside its drawing span, "Empty"
// has no drawing.
func workbookRecords(t *testing.T) []biff.Record {
	t.Helper()
	g := drawing.NewGroup()
	agg, _, err := aggregate.New(g)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	_, err = agg.AddShape(g, textBox(),
		biff.Record{Sid: biff.Obj, Data: []byte{0x15, 0x00, 0x12, 0x00, 0x06, 0x00}},
		biff.Record{Sid: biff.TextObject, Data: make([]byte, 18)},
		biff.Record{Sid: biff.Continue, Data: []byte("\x00note")},
	)
	if err != nil {
		t.Fatalf("AddShape failed: %v", err)
	}
	drawingRecords, err := agg.Serialize(aggregate.SerializeOptions{Placement: aggregate.PlacementInterleaved})
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	dgg := escher.NewContainer(escher.DggContainer)
	if err := aggregate.SyncGroup(dgg, g); err != nil {
		t.Fatalf("SyncGroup failed: %v", err)
	}
	groupRecords, err := aggregate.SerializeGroup(dgg, biff.MaxRecordData)
	if err != nil {
		t.Fatalf("SerializeGroup failed: %v", err)
	}

	records := []biff.Record{bofRecord(biff.SubstreamGlobals), boundSheet("Data"), boundSheet("Empty")}
	records = append(records, groupRecords...)
	records = append(records, biff.Record{Sid: biff.EOF})

	records = append(records, bofRecord(biff.SubstreamWorksheet))
	// Embedded chart right after the OBJ record, as spreadsheet applications write it.
	records = append(records, drawingRecords[:2]...)
	records = append(records, bofRecord(biff.SubstreamChart), biff.Record{Sid: 0x1002, Data: make([]byte, 16)}, biff.Record{Sid: biff.EOF})
	records = append(records, drawingRecords[2:]...)
	records = append(records, biff.Record{Sid: biff.Window2, Data: make([]byte, 18)}, biff.Record{Sid: biff.EOF})

	records = append(records, bofRecord(biff.SubstreamWorksheet), biff.Record{Sid: biff.Window2, Data: make([]byte, 18)}, biff.Record{Sid: biff.EOF})
	return records
}

func writeStream(t *testing.T, records []biff.Record) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := biff.Write(&buf, records); err != nil {
		t.Fatalf("biff.Write failed: %v", err)
	}
	return buf.Bytes()
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
	return path
}
