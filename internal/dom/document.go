package dom

import (
	"github.com/oklog/ulid/v2"
)

// Visibility is the document visibility state.
type Visibility string

const (
	VisibilityVisible Visibility = "visible"
	VisibilityHidden  Visibility = "hidden"
)

// Document owns the element tree and document-level listeners.
type Document struct {
	body       *Element
	visibility Visibility
	listeners  listenerSet
}

// NewDocument creates a visible document with an empty body.
func NewDocument() *Document {
	d := &Document{visibility: VisibilityVisible}
	d.body = d.CreateElement("body")
	return d
}

// Body returns the document body.
func (d *Document) Body() *Element { return d.body }

// CreateElement creates a detached element with a fresh ULID.
func (d *Document) CreateElement(tag string) *Element {
	return &Element{
		id:  ulid.Make().String(),
		tag: tag,
		doc: d,
	}
}

// ElementByID searches the body subtree for an element.
func (d *Document) ElementByID(id string) *Element {
	var walk func(e *Element) *Element
	walk = func(e *Element) *Element {
		if e.id == id {
			return e
		}
		for _, c := range e.children {
			if found := walk(c); found != nil {
				return found
			}
		}
		return nil
	}
	return walk(d.body)
}

// Visibility returns the current visibility state.
func (d *Document) Visibility() Visibility { return d.visibility }

// SetVisibility updates the visibility state and dispatches
// visibilitychange when it changes.
func (d *Document) SetVisibility(v Visibility) {
	if v == d.visibility {
		return
	}
	d.visibility = v
	d.listeners.dispatch(Event{Type: EventVisibilityChange})
}

// AddEventListener registers a document-level listener.
func (d *Document) AddEventListener(eventType string, fn Listener) ListenerID {
	return d.listeners.add(eventType, fn, false)
}

// RemoveEventListener removes a document-level listener.
func (d *Document) RemoveEventListener(eventType string, id ListenerID) bool {
	return d.listeners.remove(eventType, id)
}

// ListenerCount returns the number of document-level listeners for eventType.
func (d *Document) ListenerCount(eventType string) int {
	return d.listeners.count(eventType)
}
