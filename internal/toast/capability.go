package toast

import (
	"github.com/jmylchreest/toastui/internal/dom"
)

// eventTarget is implemented by *dom.Element and *dom.Document.
type eventTarget interface {
	AddEventListener(eventType string, fn dom.Listener) dom.ListenerID
	RemoveEventListener(eventType string, id dom.ListenerID) bool
}

type binding struct {
	event string
	fn    dom.Listener
	id    dom.ListenerID
}

// capability is a toggleable behaviour: a set of listeners on a target plus
// a class on the notification element marking it as enabled.
type capability struct {
	el       *dom.Element
	target   eventTarget
	class    string
	bindings []binding
	enabled  bool
	onOff    func(enabled bool)
}

func newCapability(el *dom.Element, target eventTarget, class string) *capability {
	return &capability{el: el, target: target, class: class}
}

func (c *capability) on(event string, fn dom.Listener) *capability {
	c.bindings = append(c.bindings, binding{event: event, fn: fn})
	return c
}

// Set enables or disables the capability. Repeated calls with the same
// value are no-ops, so listeners are never registered twice.
func (c *capability) Set(enabled bool) {
	if enabled {
		c.Enable()
	} else {
		c.Disable()
	}
}

func (c *capability) Enable() {
	c.el.AddClass(c.class)
	if c.enabled {
		return
	}
	for i := range c.bindings {
		c.bindings[i].id = c.target.AddEventListener(c.bindings[i].event, c.bindings[i].fn)
	}
	c.enabled = true
	if c.onOff != nil {
		c.onOff(true)
	}
}

func (c *capability) Disable() {
	c.el.RemoveClass(c.class)
	if !c.enabled {
		return
	}
	for i := range c.bindings {
		c.target.RemoveEventListener(c.bindings[i].event, c.bindings[i].id)
		c.bindings[i].id = 0
	}
	c.enabled = false
	if c.onOff != nil {
		c.onOff(false)
	}
}

func (c *capability) Enabled() bool { return c.enabled }
