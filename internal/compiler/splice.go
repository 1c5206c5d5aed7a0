package compiler

import "github.com/beevik/etree"

// insertionPoint returns the index of the first fallback node, or len(nodes).
func insertionPoint(nodes []*etree.Element) int {
	for i, n := range nodes {
		if n.Tag == tagNode && isFallback(n) {
			return i
		}
	}
	return len(nodes)
}

// splice returns a new slice with inserted placed at index at.
func splice(nodes []*etree.Element, at int, inserted []*etree.Element) []*etree.Element {
	out := make([]*etree.Element, 0, len(nodes)+len(inserted))
	out = append(out, nodes[:at]...)
	out = append(out, inserted...)
	return append(out, nodes[at:]...)
}

// appendBeforeCatchAll appends extra after nodes but ahead of the trailing
// run of catch-all nodes, which must stay last.
func appendBeforeCatchAll(nodes []*etree.Element, extra []*etree.Element) []*etree.Element {
	at := len(nodes)
	for at > 0 && isCatchAll(nodes[at-1]) {
		at--
	}
	return splice(nodes, at, extra)
}
