package biff

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// SheetEntry is the sheet entry a BOUNDSHEET record stores in the globals substream.
type SheetEntry struct {
	// Offset is the stream position of the sheet's BOF record.
	Offset uint32
	// Hidden is the visibility state (0 visible, 1 hidden, 2 very hidden).
	Hidden uint8
	// Type is the sheet type (0 worksheet, 1 macro sheet, 2 chart, 6 VBA module).
	Type uint8
	// Name is the sheet name.
	Name string
}

// ParseBoundSheet reads a BOUNDSHEET record.
func ParseBoundSheet(rec Record) (SheetEntry, error) {
	if rec.Sid != BoundSheet {
		return SheetEntry{}, fmt.Errorf("biff: %s is not a BOUNDSHEET record", rec.Name())
	}
	d := rec.Data
	if len(d) < 8 {
		return SheetEntry{}, fmt.Errorf("%w: BOUNDSHEET has %d bytes", ErrTruncatedRecord, len(d))
	}
	name, err := shortString(d[6:])
	if err != nil {
		return SheetEntry{}, err
	}
	return SheetEntry{
		Offset: binary.LittleEndian.Uint32(d[0:]),
		Hidden: d[4] & 0x03,
		Type:   d[5],
		Name:   name,
	}, nil
}

// shortString decodes a ShortXLUnicodeString: a character count, an option
// byte whose low bit selects UTF-16LE over compressed Latin-1, then the characters.
func shortString(b []byte) (string, error) {
	if len(b) < 2 {
		return "", fmt.Errorf("%w: string header", ErrTruncatedRecord)
	}
	count := int(b[0])
	wide := b[1]&0x01 != 0
	chars := b[2:]

	var enc encoding.Encoding = charmap.ISO8859_1
	size := count
	if wide {
		enc = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
		size = count * 2
	}
	if len(chars) < size {
		return "", fmt.Errorf("%w: string needs %d bytes, has %d", ErrTruncatedRecord, size, len(chars))
	}
	out, err := enc.NewDecoder().Bytes(chars[:size])
	if err != nil {
		return "", fmt.Errorf("biff: decode string: %w", err)
	}
	return string(out), nil
}

// SheetNames returns the sheet names listed by the BOUNDSHEET records of the
// globals substream, in order.
func SheetNames(records []Record) ([]string, error) {
	var names []string
	for _, rec := range records {
		if rec.Sid != BoundSheet {
			continue
		}
		bs, err := ParseBoundSheet(rec)
		if err != nil {
			return names, err
		}
		names = append(names, bs.Name)
	}
	return names, nil
}
