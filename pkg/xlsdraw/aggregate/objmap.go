package aggregate

import (
	"slices"

	"github.com/ukaji3/xlsdraw-go/pkg/xlsdraw/biff"
)

// ShapeObjMap maps shape ids to the descriptor records (OBJ, TXO and their
// CONTINUE records) that belong to the shape. Insertion order is kept.
type ShapeObjMap struct {
	order   []uint32
	entries map[uint32][]biff.Record
}

// NewShapeObjMap returns an empty map.
func NewShapeObjMap() *ShapeObjMap {
	return &ShapeObjMap{entries: make(map[uint32][]biff.Record)}
}

// Set stores the descriptor records for a shape, replacing any previous ones.
func (m *ShapeObjMap) Set(shapeID uint32, records []biff.Record) {
	if _, ok := m.entries[shapeID]; !ok {
		m.order = append(m.order, shapeID)
	}
	m.entries[shapeID] = records
}

// Get returns the descriptor records of a shape.
func (m *ShapeObjMap) Get(shapeID uint32) ([]biff.Record, bool) {
	records, ok := m.entries[shapeID]
	return records, ok
}

// Delete removes a shape's entry. It reports whether the entry existed.
func (m *ShapeObjMap) Delete(shapeID uint32) bool {
	if _, ok := m.entries[shapeID]; !ok {
		return false
	}
	delete(m.entries, shapeID)
	m.order = slices.DeleteFunc(m.order, func(id uint32) bool { return id == shapeID })
	return true
}

// Len returns the number of entries.
func (m *ShapeObjMap) Len() int {
	return len(m.entries)
}

// IDs returns the shape ids in insertion order.
func (m *ShapeObjMap) IDs() []uint32 {
	return slices.Clone(m.order)
}
