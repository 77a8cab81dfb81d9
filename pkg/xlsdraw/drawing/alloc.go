package drawing

import (
	"fmt"
	"math"

	"fortio.org/safecast"
)

// AllocateShapeID hands out the next shape id for a drawing.
//
// Ids come from the most recently created cluster owned by the drawing while
// it has room. Otherwise a new cluster is appended whose base is the next
// multiple of ClusterSize strictly above ShapeIDMax; the base is never
// below the one implied by the cluster's position in the table, and empty
// clusters owned by the same drawing pad the table when the two differ.
func (g *Group) AllocateShapeID(drawingGroupID uint16) (uint32, error) {
	d, ok := g.drawings[drawingGroupID]
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrUnknownDrawing, drawingGroupID)
	}

	if i := g.lastCluster(drawingGroupID); i >= 0 && g.Clusters[i].NumShapeIDsUsed < ClusterSize {
		id := ClusterBase(i) + g.Clusters[i].NumShapeIDsUsed
		if err := g.commit(d, id); err != nil {
			return 0, err
		}
		g.Clusters[i].NumShapeIDsUsed++
		return id, nil
	}

	base, err := g.nextClusterBase()
	if err != nil {
		return 0, err
	}
	if err := g.commit(d, base); err != nil {
		return 0, err
	}
	for uint64(ClusterBase(len(g.Clusters))) < uint64(base) {
		g.Clusters = append(g.Clusters, Cluster{DrawingGroupID: drawingGroupID})
	}
	g.Clusters = append(g.Clusters, Cluster{DrawingGroupID: drawingGroupID, NumShapeIDsUsed: 1})
	return base, nil
}

// lastCluster returns the index of the most recently created cluster owned by id, or -1.
func (g *Group) lastCluster(id uint16) int {
	for i := len(g.Clusters) - 1; i >= 0; i-- {
		if g.Clusters[i].DrawingGroupID == id {
			return i
		}
	}
	return -1
}

// nextClusterBase returns the base of the cluster appended next.
func (g *Group) nextClusterBase() (uint32, error) {
	next := (uint64(g.ShapeIDMax)/ClusterSize + 1) * ClusterSize
	positional := uint64(len(g.Clusters)+1) * ClusterSize
	next = max(next, positional)
	if next+ClusterSize > math.MaxUint32 {
		return 0, fmt.Errorf("%w: no shape id cluster left above %d", ErrIDSpaceExhausted, g.ShapeIDMax)
	}
	return uint32(next), nil
}

// commit records id as allocated to d.
func (g *Group) commit(d *Drawing, id uint32) error {
	last, err := safecast.Conv[int32](id)
	if err != nil {
		return fmt.Errorf("%w: shape id %d: %v", ErrIDSpaceExhausted, id, err)
	}
	if id+1 > g.ShapeIDMax {
		g.ShapeIDMax = id + 1
	}
	g.NumShapesSaved++
	d.LastShapeID = last
	d.NumShapes++
	return nil
}

// Validate checks the invariants of a loaded group: cluster usage within
// bounds and ShapeIDMax above every id the clusters account for.
func (g *Group) Validate() error {
	for i, c := range g.Clusters {
		if c.NumShapeIDsUsed > ClusterSize {
			return fmt.Errorf("%w: cluster %d uses %d ids", ErrInconsistentState, i, c.NumShapeIDsUsed)
		}
		if c.NumShapeIDsUsed == 0 {
			continue
		}
		highest := uint64(ClusterBase(i)) + uint64(c.NumShapeIDsUsed) - 1
		if highest >= uint64(g.ShapeIDMax) {
			return fmt.Errorf("%w: cluster %d reaches id %d but shapeIdMax is %d", ErrInconsistentState, i, highest, g.ShapeIDMax)
		}
	}
	for id, d := range g.drawings {
		if d.DrawingGroupID != id {
			return fmt.Errorf("%w: drawing registered as %d carries id %d", ErrInconsistentState, id, d.DrawingGroupID)
		}
		if d.LastShapeID >= 0 && uint32(d.LastShapeID) >= g.ShapeIDMax {
			return fmt.Errorf("%w: drawing %d last shape id %d not below shapeIdMax %d", ErrInconsistentState, id, d.LastShapeID, g.ShapeIDMax)
		}
	}
	return nil
}
