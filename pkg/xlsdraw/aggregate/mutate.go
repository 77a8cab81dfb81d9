package aggregate

import (
	"errors"
	"fmt"

	"github.com/ukaji3/xlsdraw-go/pkg/xlsdraw/biff"
	"github.com/ukaji3/xlsdraw-go/pkg/xlsdraw/drawing"
	"github.com/ukaji3/xlsdraw-go/pkg/xlsdraw/escher"
)

// ErrNoDrawingContainer indicates an aggregate without a DgContainer.
var ErrNoDrawingContainer = errors.New("aggregate has no DgContainer")

// Default patriarch group rectangle.
const (
	patriarchWidth  = 1023
	patriarchHeight = 255
)

// New creates an empty drawing for a sheet: a fresh drawing registered in g,
// and an aggregate holding its DgContainer with the patriarch group.
func New(g *drawing.Group) (*Aggregate, *drawing.Drawing, error) {
	d, err := g.CreateDrawing()
	if err != nil {
		return nil, nil, err
	}
	patriarchID, err := g.AllocateShapeID(d.DrawingGroupID)
	if err != nil {
		return nil, nil, err
	}

	patriarch := escher.NewContainer(escher.SpContainer,
		escher.NewSpgrAtom(0, 0, patriarchWidth, patriarchHeight),
		escher.SpAtom{ShapeID: patriarchID, Flags: escher.SpGroup | escher.SpPatriarch}.Atom(),
	)
	dgc := escher.NewContainer(escher.DgContainer,
		d.Atom().Atom(),
		escher.NewContainer(escher.SpgrContainer, patriarch),
	)
	return &Aggregate{Nodes: []escher.Node{dgc}, Shapes: NewShapeObjMap()}, d, nil
}

// AddShape allocates a shape id from g, stamps it into the shape's Sp atom
// (adding one when missing), appends the shape to the patriarch group and
// stores its descriptor records. It returns the new shape id.
func (a *Aggregate) AddShape(g *drawing.Group, shape *escher.Container, descriptors ...biff.Record) (uint32, error) {
	if shape == nil || shape.RecordID != escher.SpContainer {
		return 0, fmt.Errorf("aggregate: %w: shape must be an SpContainer", escher.ErrStructuralMismatch)
	}
	dgc := a.DrawingContainer()
	if dgc == nil {
		return 0, ErrNoDrawingContainer
	}
	dg, ok := a.DrawingAtom()
	if !ok {
		return 0, fmt.Errorf("aggregate: %w: DgContainer has no Dg record", escher.ErrStructuralMismatch)
	}
	groups := dgc.Containers(escher.SpgrContainer)
	if len(groups) == 0 {
		return 0, fmt.Errorf("aggregate: %w: DgContainer has no SpgrContainer", escher.ErrStructuralMismatch)
	}

	id, err := g.AllocateShapeID(dg.DrawingID)
	if err != nil {
		return 0, err
	}
	if sp := shape.Atom(escher.Sp); sp != nil {
		if err := escher.SetShapeID(sp, id); err != nil {
			return 0, err
		}
	} else {
		shape.Children = append([]escher.Node{escher.SpAtom{ShapeID: id, Flags: escher.SpHaveAnchor}.Atom()}, shape.Children...)
	}

	groups[0].Append(shape)
	if len(descriptors) > 0 {
		a.Shapes.Set(id, descriptors)
	}

	if d, ok := g.Drawing(dg.DrawingID); ok {
		if err := a.SyncDrawing(d); err != nil {
			return 0, err
		}
	}
	return id, nil
}

// RemoveShape removes the shape with the given id from the tree along with
// its descriptor records. The id itself stays reserved. It reports whether
// the shape was found.
func (a *Aggregate) RemoveShape(shapeID uint32) bool {
	removed := false
	for _, n := range a.Nodes {
		c, ok := n.(*escher.Container)
		if !ok {
			continue
		}
		if removeShape(c, shapeID) {
			removed = true
			break
		}
	}
	if a.Shapes.Delete(shapeID) {
		removed = true
	}
	return removed
}

func removeShape(parent *escher.Container, shapeID uint32) bool {
	for _, child := range parent.Children {
		c, ok := child.(*escher.Container)
		if !ok {
			continue
		}
		if sp, ok := escher.ShapeOf(c); ok && sp.ShapeID == shapeID && !sp.IsPatriarch() {
			return parent.Remove(c)
		}
		if removeShape(c, shapeID) {
			return true
		}
	}
	return false
}

// SyncDrawing rewrites the aggregate's Dg record from d.
func (a *Aggregate) SyncDrawing(d *drawing.Drawing) error {
	dgc := a.DrawingContainer()
	if dgc == nil {
		return ErrNoDrawingContainer
	}
	for i, child := range dgc.Children {
		if atom, ok := child.(*escher.Atom); ok && atom.RecordID == escher.Dg {
			dgc.Children[i] = d.Atom().Atom()
			return nil
		}
	}
	dgc.Children = append([]escher.Node{d.Atom().Atom()}, dgc.Children...)
	return nil
}
