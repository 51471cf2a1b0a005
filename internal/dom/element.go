package dom

import (
	"slices"
	"sort"
	"strconv"
)

// Element is a node in the document tree.
type Element struct {
	id       string
	tag      string
	doc      *Document
	parent   *Element
	children []*Element

	classes []string
	style   map[string]string
	dataset map[string]string
	text    string

	listeners listenerSet
}

// ID returns the element's unique identifier.
func (e *Element) ID() string { return e.id }

// Tag returns the element's tag name.
func (e *Element) Tag() string { return e.tag }

// Document returns the document that created the element.
func (e *Element) Document() *Document { return e.doc }

// Parent returns the parent element, or nil when detached.
func (e *Element) Parent() *Element { return e.parent }

// Children returns a copy of the element's children.
func (e *Element) Children() []*Element {
	return append([]*Element(nil), e.children...)
}

// HasChildNodes reports whether the element has any children.
func (e *Element) HasChildNodes() bool { return len(e.children) > 0 }

// Append moves child to the end of e's children, detaching it from its
// previous parent first.
func (e *Element) Append(child *Element) {
	if child == nil || child == e {
		return
	}
	child.Remove()
	child.parent = e
	e.children = append(e.children, child)
}

// Remove detaches the element from its parent. It is a no-op for detached
// elements.
func (e *Element) Remove() {
	p := e.parent
	if p == nil {
		return
	}
	if i := slices.Index(p.children, e); i >= 0 {
		p.children = slices.Delete(p.children, i, i+1)
	}
	e.parent = nil
}

// Connected reports whether the element is attached to its document's body.
func (e *Element) Connected() bool {
	if e.doc == nil {
		return false
	}
	for n := e; n != nil; n = n.parent {
		if n == e.doc.body {
			return true
		}
	}
	return false
}

// AddClass adds a class if not already present.
func (e *Element) AddClass(name string) {
	if name == "" || e.HasClass(name) {
		return
	}
	e.classes = append(e.classes, name)
}

// RemoveClass removes a class if present.
func (e *Element) RemoveClass(name string) {
	if i := slices.Index(e.classes, name); i >= 0 {
		e.classes = slices.Delete(e.classes, i, i+1)
	}
}

// ToggleClass adds the class when force is true and removes it otherwise.
func (e *Element) ToggleClass(name string, force bool) {
	if force {
		e.AddClass(name)
	} else {
		e.RemoveClass(name)
	}
}

// HasClass reports whether the class is present.
func (e *Element) HasClass(name string) bool {
	return slices.Contains(e.classes, name)
}

// Classes returns the element's classes in insertion order.
func (e *Element) Classes() []string {
	return append([]string(nil), e.classes...)
}

// SetStyle sets an inline style property. Values are stored verbatim.
func (e *Element) SetStyle(property, value string) {
	if e.style == nil {
		e.style = make(map[string]string)
	}
	e.style[property] = value
}

// Style returns an inline style property.
func (e *Element) Style(property string) (string, bool) {
	v, ok := e.style[property]
	return v, ok
}

// RemoveStyle deletes an inline style property.
func (e *Element) RemoveStyle(property string) {
	delete(e.style, property)
}

// StyleProperties returns the names of all inline style properties, sorted.
func (e *Element) StyleProperties() []string {
	names := make([]string, 0, len(e.style))
	for k := range e.style {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// SetProperty writes a numeric custom property such as "--progress".
func (e *Element) SetProperty(name string, value float64) {
	e.SetStyle(name, strconv.FormatFloat(value, 'f', -1, 64))
}

// Property reads a numeric custom property.
func (e *Element) Property(name string) (float64, bool) {
	v, ok := e.style[name]
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// SetData sets a dataset marker.
func (e *Element) SetData(key, value string) {
	if e.dataset == nil {
		e.dataset = make(map[string]string)
	}
	e.dataset[key] = value
}

// Data returns a dataset marker.
func (e *Element) Data(key string) string {
	return e.dataset[key]
}

// SetText replaces the element's text content.
func (e *Element) SetText(text string) { e.text = text }

// Text returns the element's text content.
func (e *Element) Text() string { return e.text }

// AddEventListener registers fn for eventType.
func (e *Element) AddEventListener(eventType string, fn Listener) ListenerID {
	return e.listeners.add(eventType, fn, false)
}

// AddEventListenerOnce registers fn to run on the next eventType dispatch only.
func (e *Element) AddEventListenerOnce(eventType string, fn Listener) ListenerID {
	return e.listeners.add(eventType, fn, true)
}

// RemoveEventListener removes a listener. It reports whether it was found.
func (e *Element) RemoveEventListener(eventType string, id ListenerID) bool {
	return e.listeners.remove(eventType, id)
}

// ListenerCount returns the number of listeners for eventType.
func (e *Element) ListenerCount(eventType string) int {
	return e.listeners.count(eventType)
}

// Dispatch delivers an event of the given type to the element's listeners.
func (e *Element) Dispatch(eventType string) {
	e.listeners.dispatch(Event{Type: eventType, Target: e})
}
