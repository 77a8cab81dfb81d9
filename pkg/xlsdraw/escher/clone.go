package escher

import (
	"bytes"
	"fmt"

	"github.com/tiendc/go-deepcopy"
)

// Clone returns a deep copy of n that shares no slices with the original.
func Clone(n Node) (Node, error) {
	switch v := n.(type) {
	case *Container:
		var dst Container
		if err := deepcopy.Copy(&dst, v); err != nil {
			return nil, fmt.Errorf("escher: clone %s: %w", RecordName(v.RecordID), err)
		}
		return &dst, nil
	case *Atom:
		var dst Atom
		if err := deepcopy.Copy(&dst, v); err != nil {
			return nil, fmt.Errorf("escher: clone %s: %w", RecordName(v.RecordID), err)
		}
		return &dst, nil
	default:
		return nil, fmt.Errorf("escher: cannot clone node of type %T", n)
	}
}

// Equal reports whether a and b have the same headers and payload bytes at
// every node.
func Equal(a, b Node) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.RecordHeader() != b.RecordHeader() {
		return false
	}
	switch av := a.(type) {
	case *Container:
		bv, ok := b.(*Container)
		if !ok || len(av.Children) != len(bv.Children) {
			return false
		}
		for i := range av.Children {
			if !Equal(av.Children[i], bv.Children[i]) {
				return false
			}
		}
		return true
	case *Atom:
		bv, ok := b.(*Atom)
		return ok && bytes.Equal(av.Payload, bv.Payload)
	}
	return false
}
