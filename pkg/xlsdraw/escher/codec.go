package escher

import (
	"encoding/binary"
	"fmt"

	"fortio.org/safecast"
)

// Decode reads one record starting at offset. It returns the node and the
// number of bytes consumed, which is less than the declared size when the
// record's length overstates the bytes left in buf.
func Decode(buf []byte, offset int) (Node, int, error) {
	if offset < 0 || len(buf)-offset < HeaderSize {
		return nil, 0, &OffsetError{Offset: offset, Err: ErrTruncatedHeader}
	}

	options := binary.LittleEndian.Uint16(buf[offset:])
	recordID := binary.LittleEndian.Uint16(buf[offset+2:])
	declared := binary.LittleEndian.Uint32(buf[offset+4:])
	h := headerFromOptions(options, recordID)

	start := offset + HeaderSize
	bodyLen := len(buf) - start
	if uint64(declared) < uint64(bodyLen) {
		bodyLen = int(declared)
	}
	end := start + bodyLen

	if !h.IsContainer() {
		payload := make([]byte, bodyLen)
		copy(payload, buf[start:end])
		return &Atom{Header: h, Payload: payload}, HeaderSize + bodyLen, nil
	}

	c := &Container{Header: h}
	// Children are decoded against buf[:end] so error offsets stay absolute.
	for pos := start; pos < end; {
		child, n, err := Decode(buf[:end], pos)
		if err != nil {
			return nil, 0, err
		}
		c.Children = append(c.Children, child)
		pos += n
	}
	return c, HeaderSize + bodyLen, nil
}

// DecodeAll decodes consecutive top-level records until buf is exhausted.
// Every top-level record must be a container.
func DecodeAll(buf []byte) ([]Node, error) {
	var nodes []Node
	for pos := 0; pos < len(buf); {
		if len(buf)-pos < HeaderSize {
			return nil, &OffsetError{
				Offset: pos,
				Err:    fmt.Errorf("%w: %d trailing bytes do not form a record", ErrStructuralMismatch, len(buf)-pos),
			}
		}
		n, size, err := Decode(buf, pos)
		if err != nil {
			return nil, err
		}
		if _, ok := n.(*Container); !ok {
			return nil, &OffsetError{
				Offset: pos,
				Err:    fmt.Errorf("%w: top-level record %s is not a container", ErrStructuralMismatch, RecordName(n.RecordHeader().RecordID)),
			}
		}
		nodes = append(nodes, n)
		pos += size
	}
	return nodes, nil
}

// Size returns the encoded size of n in bytes, header included.
func Size(n Node) int {
	switch v := n.(type) {
	case *Container:
		size := HeaderSize
		for _, child := range v.Children {
			size += Size(child)
		}
		return size
	case *Atom:
		return HeaderSize + len(v.Payload)
	default:
		return 0
	}
}

// Encode serializes n. Length fields are computed from the encoded children
// and payloads; nothing is carried over from a previous decode.
func Encode(n Node) ([]byte, error) {
	return AppendEncode(make([]byte, 0, Size(n)), n)
}

// EncodeAll serializes a forest of top-level records back to back.
func EncodeAll(nodes []Node) ([]byte, error) {
	total := 0
	for _, n := range nodes {
		total += Size(n)
	}
	buf := make([]byte, 0, total)
	for _, n := range nodes {
		var err error
		if buf, err = AppendEncode(buf, n); err != nil {
			return nil, err
		}
	}
	return buf, nil
}

// AppendEncode appends the encoding of n to dst.
func AppendEncode(dst []byte, n Node) ([]byte, error) {
	start := len(dst)
	dst = append(dst, make([]byte, HeaderSize)...)

	var h Header
	switch v := n.(type) {
	case *Container:
		h = v.Header
		for _, child := range v.Children {
			var err error
			if dst, err = AppendEncode(dst, child); err != nil {
				return nil, err
			}
		}
	case *Atom:
		h = v.Header
		dst = append(dst, v.Payload...)
	default:
		return nil, fmt.Errorf("escher: cannot encode node of type %T", n)
	}

	length, err := safecast.Conv[uint32](len(dst) - start - HeaderSize)
	if err != nil {
		return nil, fmt.Errorf("escher: record %s too large: %w", RecordName(h.RecordID), err)
	}
	binary.LittleEndian.PutUint16(dst[start:], h.Options())
	binary.LittleEndian.PutUint16(dst[start+2:], h.RecordID)
	binary.LittleEndian.PutUint32(dst[start+4:], length)
	return dst, nil
}
