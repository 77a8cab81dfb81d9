package escher

// HeaderSize is the size in bytes of every record header.
const HeaderSize = 8

// Header holds the identifying fields of a record. The length field is not
// kept: it is recomputed on every encode.
type Header struct {
	// RecordID is the record type (0xF000-0xFFFF for drawing records).
	RecordID uint16
	// Version is the low 4 bits of the options word.
	Version uint8
	// Instance is the high 12 bits of the options word.
	Instance uint16
}

// RecordHeader returns the header itself. It is promoted to Container and Atom.
func (h Header) RecordHeader() Header {
	return h
}

// Options packs version and instance into the on-disk options word.
func (h Header) Options() uint16 {
	return uint16(h.Version&0x0F) | h.Instance<<4
}

// IsContainer reports whether the header describes a container record.
func (h Header) IsContainer() bool {
	return IsContainerID(h.RecordID) || h.Version&0x0F == ContainerVersion
}

func headerFromOptions(options, recordID uint16) Header {
	return Header{
		RecordID: recordID,
		Version:  uint8(options & 0x0F),
		Instance: options >> 4,
	}
}

// Node is either a *Container or an *Atom.
type Node interface {
	RecordHeader() Header
	isNode()
}

// Container is a record whose body is a sequence of child records.
type Container struct {
	Header
	Children []Node
}

// Atom is a record whose body is an opaque payload.
type Atom struct {
	Header
	Payload []byte
}

func (*Container) isNode() {}
func (*Atom) isNode()      {}

// NewContainer creates a container record with version 0xF.
func NewContainer(recordID uint16, children ...Node) *Container {
	return &Container{
		Header:   Header{RecordID: recordID, Version: ContainerVersion},
		Children: children,
	}
}

// NewAtom creates an atom record.
func NewAtom(recordID uint16, version uint8, instance uint16, payload []byte) *Atom {
	return &Atom{
		Header:  Header{RecordID: recordID, Version: version, Instance: instance},
		Payload: payload,
	}
}

// Child returns the first direct child with the given record id.
func (c *Container) Child(recordID uint16) Node {
	for _, child := range c.Children {
		if child.RecordHeader().RecordID == recordID {
			return child
		}
	}
	return nil
}

// Atom returns the first direct child atom with the given record id.
func (c *Container) Atom(recordID uint16) *Atom {
	for _, child := range c.Children {
		if a, ok := child.(*Atom); ok && a.RecordID == recordID {
			return a
		}
	}
	return nil
}

// Containers returns the direct child containers with the given record id.
func (c *Container) Containers(recordID uint16) []*Container {
	var result []*Container
	for _, child := range c.Children {
		if cc, ok := child.(*Container); ok && cc.RecordID == recordID {
			result = append(result, cc)
		}
	}
	return result
}

// Append adds children at the end of the container.
func (c *Container) Append(children ...Node) {
	c.Children = append(c.Children, children...)
}

// Remove deletes the direct child n. It reports whether n was found.
func (c *Container) Remove(n Node) bool {
	for i, child := range c.Children {
		if child == n {
			c.Children = append(c.Children[:i], c.Children[i+1:]...)
			return true
		}
	}
	return false
}

// Find returns the first node with the given record id in document order,
// searching n itself and all of its descendants.
func Find(n Node, recordID uint16) Node {
	var found Node
	Walk([]Node{n}, func(v Node, _ int) bool {
		if found != nil {
			return false
		}
		if v.RecordHeader().RecordID == recordID {
			found = v
			return false
		}
		return true
	})
	return found
}

// VisitFunc is called for each node with its byte offset relative to the
// start of the encoded forest. Returning false skips the node's children.
type VisitFunc func(n Node, offset int) bool

// Walk visits nodes and their descendants in document order.
func Walk(nodes []Node, fn VisitFunc) {
	offset := 0
	for _, n := range nodes {
		walk(n, offset, fn)
		offset += Size(n)
	}
}

func walk(n Node, offset int, fn VisitFunc) {
	if !fn(n, offset) {
		return
	}
	c, ok := n.(*Container)
	if !ok {
		return
	}
	pos := offset + HeaderSize
	for _, child := range c.Children {
		walk(child, pos, fn)
		pos += Size(child)
	}
}
