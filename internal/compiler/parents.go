package compiler

import "github.com/beevik/etree"

// ParentMap maps each structural node to the structural node owning it.
// Top-level nodes have no entry.
type ParentMap map[*etree.Element]*etree.Element

// Index records every structural node below el, with owner as the owner of
// the nearest ones. Settings templates are skipped.
func (p ParentMap) Index(el, owner *etree.Element) {
	for _, c := range el.ChildElements() {
		if c.Tag == tagAutogenerate {
			continue
		}
		if isStructural(c) {
			if owner != nil {
				p[c] = owner
			}
			p.Index(c, c)
			continue
		}
		p.Index(c, owner)
	}
}

// Parent returns the owner of el.
func (p ParentMap) Parent(el *etree.Element) (*etree.Element, bool) {
	if el == nil {
		return nil, false
	}
	owner, ok := p[el]
	return owner, ok
}
