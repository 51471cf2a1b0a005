package toast

import (
	"github.com/jmylchreest/toastui/internal/dom"
)

// Registry maps positions to their container elements. A container exists
// while it holds at least one notification.
type Registry struct {
	doc        *dom.Document
	containers map[Position]*dom.Element
}

// NewRegistry creates an empty registry for doc.
func NewRegistry(doc *dom.Document) *Registry {
	return &Registry{
		doc:        doc,
		containers: make(map[Position]*dom.Element),
	}
}

// Resolve returns the container for pos, creating and attaching one to the
// document body when none exists.
func (r *Registry) Resolve(pos Position) *dom.Element {
	if c, ok := r.containers[pos]; ok {
		return c
	}
	c := r.doc.CreateElement("div")
	c.AddClass(ClassContainer)
	c.SetData(DataPosition, string(pos))
	r.doc.Body().Append(c)
	r.containers[pos] = c
	return c
}

// Lookup returns the container for pos if one exists.
func (r *Registry) Lookup(pos Position) (*dom.Element, bool) {
	c, ok := r.containers[pos]
	return c, ok
}

// Release detaches and forgets container if it has no children. It
// reports whether the container was destroyed.
func (r *Registry) Release(container *dom.Element) bool {
	if container == nil || container.HasChildNodes() {
		return false
	}
	pos := Position(container.Data(DataPosition))
	if r.containers[pos] != container {
		return false
	}
	container.Remove()
	delete(r.containers, pos)
	return true
}

// Len returns the number of live containers.
func (r *Registry) Len() int { return len(r.containers) }

// Positions returns the positions that currently have a container, in
// Positions() order.
func (r *Registry) Positions() []Position {
	var out []Position
	for _, p := range Positions() {
		if _, ok := r.containers[p]; ok {
			out = append(out, p)
		}
	}
	return out
}
