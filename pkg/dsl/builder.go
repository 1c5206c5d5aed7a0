package dsl

import (
	"io"

	"github.com/beevik/etree"

	"github.com/aretw0/arbor/pkg/domain"
)

// Goto selectors.
const (
	SelectorUserInput = domain.SelectorUserInput
	SelectorBody      = domain.SelectorBody
	SelectorCondition = domain.SelectorCondition
)

// Builder manages the dialog tree construction.
type Builder struct {
	doc   *etree.Document
	root  *etree.Element
	nodes map[string]*NodeBuilder
}

// New creates an empty dialog with a <nodes> root.
func New() *Builder {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	return &Builder{
		doc:   doc,
		root:  doc.CreateElement("nodes"),
		nodes: make(map[string]*NodeBuilder),
	}
}

// Node appends a top-level node.
// If a node with that name was already added anywhere, its builder is returned.
func (b *Builder) Node(name string) *NodeBuilder {
	return b.add(b.root, name)
}

// Settings appends a settings block (abort, again, back, repeat, generic or
// any other autogenerate type) to the top-level scope.
func (b *Builder) Settings(typ string, attrs map[string]string) *Builder {
	addSettings(b.root, typ, attrs)
	return b
}

func (b *Builder) add(parent *etree.Element, name string) *NodeBuilder {
	if nb, ok := b.nodes[name]; ok {
		return nb
	}
	el := parent.CreateElement("node")
	el.CreateAttr("name", name)
	nb := &NodeBuilder{el: el, builder: b}
	b.nodes[name] = nb
	return nb
}

// Build returns a copy of the dialog document, so the builder can keep
// growing without affecting documents already handed out.
func (b *Builder) Build() *etree.Document {
	return b.doc.Copy()
}

// WriteTo writes the indented XML of the dialog to w.
func (b *Builder) WriteTo(w io.Writer) (int64, error) {
	doc := b.Build()
	doc.Indent(4)
	return doc.WriteTo(w)
}

func addSettings(parent *etree.Element, typ string, attrs map[string]string) {
	el := parent.CreateElement("autogenerate")
	el.CreateAttr("type", typ)
	for _, k := range sortedKeys(attrs) {
		el.CreateAttr(k, attrs[k])
	}
}
