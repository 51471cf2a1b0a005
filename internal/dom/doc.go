// Package dom provides the in-process document that toast widgets are
// mounted into: an element tree with classes, inline style, dataset
// markers and event listeners, plus document visibility.
//
// The document is not safe for concurrent use. All access happens on the
// goroutine that drives the frame scheduler.
package dom
