package biff

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"fortio.org/safecast"
)

// ErrTruncatedRecord indicates a record header or body cut short by the end of the stream.
var ErrTruncatedRecord = errors.New("truncated BIFF record")

// ErrRecordTooLarge indicates record data over MaxRecordData bytes.
var ErrRecordTooLarge = errors.New("BIFF record too large")

// Parse splits a workbook stream into records. Trailing zero padding after
// the last EOF record, as left by compound-file sector rounding, is ignored.
func Parse(mem []byte) ([]Record, error) {
	var records []Record
	pos := 0
	for pos < len(mem) {
		if len(mem)-pos < HeaderSize {
			if allZero(mem[pos:]) {
				break
			}
			return records, fmt.Errorf("%w: header at offset %d", ErrTruncatedRecord, pos)
		}
		sid := binary.LittleEndian.Uint16(mem[pos:])
		length := int(binary.LittleEndian.Uint16(mem[pos+2:]))
		if sid == 0 && length == 0 && allZero(mem[pos:]) {
			break
		}
		pos += HeaderSize
		if len(mem)-pos < length {
			return records, fmt.Errorf("%w: %s at offset %d needs %d bytes, has %d", ErrTruncatedRecord, SidName(sid), pos-HeaderSize, length, len(mem)-pos)
		}
		data := make([]byte, length)
		copy(data, mem[pos:pos+length])
		records = append(records, Record{Sid: sid, Data: data})
		pos += length
	}
	return records, nil
}

// Read reads every record from r.
func Read(r io.Reader) ([]Record, error) {
	mem, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Parse(mem)
}

// Write writes records to w with their BIFF headers.
func Write(w io.Writer, records []Record) error {
	var hdr [HeaderSize]byte
	for _, rec := range records {
		length, err := safecast.Conv[uint16](len(rec.Data))
		if err != nil || length > MaxRecordData {
			return fmt.Errorf("%w: %s has %d bytes", ErrRecordTooLarge, rec.Name(), len(rec.Data))
		}
		binary.LittleEndian.PutUint16(hdr[0:], rec.Sid)
		binary.LittleEndian.PutUint16(hdr[2:], length)
		if _, err := w.Write(hdr[:]); err != nil {
			return err
		}
		if _, err := w.Write(rec.Data); err != nil {
			return err
		}
	}
	return nil
}

func allZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

// Substream is one BOF..EOF section of a workbook stream.
type Substream struct {
	// Type is the BOF substream type (SubstreamGlobals, SubstreamWorksheet, ...).
	Type uint16
	// Start is the index of the BOF record.
	Start int
	// End is the index one past the EOF record.
	End int
}

// Substreams returns the top-level BOF..EOF sections. Nested substreams
// (charts embedded in a sheet) are kept inside their parent.
func Substreams(records []Record) []Substream {
	var result []Substream
	depth := 0
	var current Substream
	for i, rec := range records {
		switch rec.Sid {
		case BOF:
			if depth == 0 {
				current = Substream{Start: i}
				if len(rec.Data) >= 4 {
					current.Type = binary.LittleEndian.Uint16(rec.Data[2:])
				}
			}
			depth++
		case EOF:
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 {
				current.End = i + 1
				result = append(result, current)
			}
		}
	}
	return result
}
