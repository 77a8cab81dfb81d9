// Package drawing allocates drawing and shape identifiers for a workbook.
//
// A workbook has one Group (the Dgg record) and one Drawing (a Dg record) per
// sheet that carries shapes. Shape ids are handed out from clusters of 1024
// ids; the i-th cluster in the table covers ids (i+1)*1024 .. (i+1)*1024+1023.
// A Group is not safe for concurrent use: one Group belongs to one open
// document and is mutated from a single goroutine.
package drawing

import (
	"fmt"
	"math"
	"slices"

	"fortio.org/safecast"

	"github.com/ukaji3/xlsdraw-go/pkg/xlsdraw/escher"
)

// ClusterSize is the number of shape ids in one cluster.
const ClusterSize = 1024

// ReservedShapeIDs is the ShapeIDMax of a fresh group; ids below it are never handed out.
const ReservedShapeIDs = 1024

// Cluster is a block of ClusterSize shape ids owned by one drawing.
type Cluster struct {
	// DrawingGroupID is the owning drawing, 0 once the drawing has been removed.
	DrawingGroupID uint16
	// NumShapeIDsUsed is the number of ids handed out from this cluster (0..1024).
	NumShapeIDsUsed uint32
}

// Drawing is the per-sheet identifier bookkeeping (the Dg record).
type Drawing struct {
	// DrawingGroupID identifies the drawing within the workbook.
	DrawingGroupID uint16
	// LastShapeID is the last shape id allocated to this drawing, -1 when none.
	LastShapeID int32
	// NumShapes is the number of shape ids allocated to this drawing.
	NumShapes uint32
}

// Atom returns the Dg record view of the drawing.
func (d *Drawing) Atom() escher.DgAtom {
	return escher.DgAtom{
		DrawingID:   d.DrawingGroupID,
		NumShapes:   d.NumShapes,
		LastShapeID: d.LastShapeID,
	}
}

// Group is the workbook-wide identifier registry (the Dgg record).
type Group struct {
	// ShapeIDMax is one more than the highest shape id handed out. It never decreases.
	ShapeIDMax uint32
	// NumShapesSaved is the number of shape ids handed out.
	NumShapesSaved uint32
	// DrawingsSaved is the number of drawings registered.
	DrawingsSaved uint32
	// Clusters is the cluster table in creation order.
	Clusters []Cluster

	drawings map[uint16]*Drawing
}

// NewGroup returns an empty group.
func NewGroup() *Group {
	return &Group{
		ShapeIDMax: ReservedShapeIDs,
		drawings:   make(map[uint16]*Drawing),
	}
}

// LoadGroup rebuilds a group from a decoded Dgg record. Drawings are attached
// afterwards with AttachDrawing as their Dg records are read.
func LoadGroup(dgg escher.DggAtom) (*Group, error) {
	g := &Group{
		ShapeIDMax:     dgg.ShapeIDMax,
		NumShapesSaved: dgg.NumShapesSaved,
		DrawingsSaved:  dgg.DrawingsSaved,
		Clusters:       make([]Cluster, 0, len(dgg.Clusters)),
		drawings:       make(map[uint16]*Drawing),
	}
	for i, c := range dgg.Clusters {
		id, err := safecast.Conv[uint16](c.DrawingGroupID)
		if err != nil {
			return nil, fmt.Errorf("%w: cluster %d drawing id %d: %v", ErrInconsistentState, i, c.DrawingGroupID, err)
		}
		g.Clusters = append(g.Clusters, Cluster{DrawingGroupID: id, NumShapeIDsUsed: c.NumShapeIDsUsed})
	}
	return g, nil
}

// Atom returns the Dgg record view of the group.
func (g *Group) Atom() escher.DggAtom {
	dgg := escher.DggAtom{
		ShapeIDMax:     g.ShapeIDMax,
		NumShapesSaved: g.NumShapesSaved,
		DrawingsSaved:  g.DrawingsSaved,
		Clusters:       make([]escher.FileIDCluster, len(g.Clusters)),
	}
	for i, c := range g.Clusters {
		dgg.Clusters[i] = escher.FileIDCluster{
			DrawingGroupID:  uint32(c.DrawingGroupID),
			NumShapeIDsUsed: c.NumShapeIDsUsed,
		}
	}
	return dgg
}

// AttachDrawing registers a drawing read from a Dg record.
func (g *Group) AttachDrawing(dg escher.DgAtom) (*Drawing, error) {
	if _, ok := g.drawings[dg.DrawingID]; ok {
		return nil, fmt.Errorf("%w: %d", ErrDuplicateDrawing, dg.DrawingID)
	}
	d := &Drawing{
		DrawingGroupID: dg.DrawingID,
		LastShapeID:    dg.LastShapeID,
		NumShapes:      dg.NumShapes,
	}
	g.drawings[dg.DrawingID] = d
	return d, nil
}

// Drawing returns the registered drawing with the given id.
func (g *Group) Drawing(id uint16) (*Drawing, bool) {
	d, ok := g.drawings[id]
	return d, ok
}

// Drawings returns the registered drawings ordered by id.
func (g *Group) Drawings() []*Drawing {
	result := make([]*Drawing, 0, len(g.drawings))
	for _, d := range g.drawings {
		result = append(result, d)
	}
	slices.SortFunc(result, func(a, b *Drawing) int {
		return int(a.DrawingGroupID) - int(b.DrawingGroupID)
	})
	return result
}

// DrawingGroupExists reports whether any cluster is owned by id. Owner 0
// marks a cluster left behind by RemoveDrawing, so id 0 never exists.
func (g *Group) DrawingGroupExists(id uint16) bool {
	if id == 0 {
		return false
	}
	for _, c := range g.Clusters {
		if c.DrawingGroupID == id {
			return true
		}
	}
	return false
}

// ClusterBase returns the first shape id covered by the i-th cluster.
func ClusterBase(i int) uint32 {
	return uint32(i+1) * ClusterSize
}

// CreateDrawing registers a new drawing under the smallest unused positive id,
// reserving an empty cluster for it.
func (g *Group) CreateDrawing() (*Drawing, error) {
	id, err := g.findNewDrawingGroupID()
	if err != nil {
		return nil, err
	}

	g.Clusters = append(g.Clusters, Cluster{DrawingGroupID: id})
	g.DrawingsSaved++

	d := &Drawing{DrawingGroupID: id, LastShapeID: -1}
	g.drawings[id] = d
	return d, nil
}

func (g *Group) findNewDrawingGroupID() (uint16, error) {
	for id := 1; id <= math.MaxUint16; id++ {
		candidate := uint16(id)
		if _, registered := g.drawings[candidate]; registered {
			continue
		}
		if !g.DrawingGroupExists(candidate) {
			return candidate, nil
		}
	}
	return 0, fmt.Errorf("%w: no drawing group id left", ErrIDSpaceExhausted)
}

// RemoveDrawing unregisters a drawing. Its clusters stay in the table so the
// ids it used are never handed out again, but they lose their owner so the
// drawing group id becomes free for CreateDrawing.
func (g *Group) RemoveDrawing(id uint16) error {
	if _, ok := g.drawings[id]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownDrawing, id)
	}
	delete(g.drawings, id)
	for i := range g.Clusters {
		if g.Clusters[i].DrawingGroupID == id {
			g.Clusters[i].DrawingGroupID = 0
		}
	}
	if g.DrawingsSaved > 0 {
		g.DrawingsSaved--
	}
	return nil
}
