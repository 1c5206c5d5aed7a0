package dsl

import (
	"sort"

	"github.com/beevik/etree"
)

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	el      *etree.Element
	builder *Builder
}

// Name returns the name the node was created with.
func (n *NodeBuilder) Name() string {
	return n.el.SelectAttrValue("name", "")
}

// Condition sets the condition of the node.
func (n *NodeBuilder) Condition(expr string) *NodeBuilder {
	n.replace("condition").SetText(expr)
	return n
}

// Type sets the node type (yes, no, default, frame or a custom value).
func (n *NodeBuilder) Type(typ string) *NodeBuilder {
	n.replace("type").SetText(typ)
	return n
}

// Text sets the text output of the node. Several values become alternatives.
func (n *NodeBuilder) Text(values ...string) *NodeBuilder {
	output := n.output()
	for _, c := range output.SelectElements("textValues") {
		output.RemoveChild(c)
	}
	output.SetText("")
	if len(values) == 1 {
		output.SetText(values[0])
		return n
	}
	tv := output.CreateElement("textValues")
	for _, v := range values {
		tv.CreateElement("values").SetText(v)
	}
	return n
}

// Output sets a non-text output field such as a channel payload.
func (n *NodeBuilder) Output(key, value string) *NodeBuilder {
	setField(n.output(), key, value)
	return n
}

// Context sets a context variable.
func (n *NodeBuilder) Context(key, value string) *NodeBuilder {
	ctx := n.el.SelectElement("context")
	if ctx == nil {
		ctx = n.el.CreateElement("context")
	}
	setField(ctx, key, value)
	return n
}

// Goto adds a jump to target. An empty selector means user_input.
func (n *NodeBuilder) Goto(target, selector string) *NodeBuilder {
	g := n.replace("goto")
	g.CreateElement("target").SetText(target)
	if selector != "" {
		g.CreateElement("selector").SetText(selector)
	}
	return n
}

// Response adds a conditional response branch inside the output.
func (n *NodeBuilder) Response(name, condition, text string) *NodeBuilder {
	r := n.output().CreateElement("response")
	r.CreateAttr("name", name)
	if condition != "" {
		r.CreateElement("condition").SetText(condition)
	}
	r.CreateElement("output").SetText(text)
	return n
}

// Slot adds a slot filling variable when condition matches.
func (n *NodeBuilder) Slot(name, variable, condition string) *NodeBuilder {
	slots := n.el.SelectElement("slots")
	if slots == nil {
		slots = n.el.CreateElement("slots")
	}
	s := slots.CreateElement("slot")
	s.CreateAttr("name", name)
	s.CreateAttr("variable", variable)
	s.CreateElement("condition").SetText(condition)
	return n
}

// Settings adds a settings block to the scope of this node's children.
func (n *NodeBuilder) Settings(typ string, attrs map[string]string) *NodeBuilder {
	addSettings(n.children(), typ, attrs)
	return n
}

// Child appends a child node and lets configure populate it.
func (n *NodeBuilder) Child(name string, configure func(*NodeBuilder)) *NodeBuilder {
	child := n.builder.add(n.children(), name)
	if configure != nil {
		configure(child)
	}
	return n
}

// Element returns the underlying element for anything the builder does not cover.
func (n *NodeBuilder) Element() *etree.Element {
	return n.el
}

func (n *NodeBuilder) output() *etree.Element {
	if o := n.el.SelectElement("output"); o != nil {
		return o
	}
	return n.el.CreateElement("output")
}

func (n *NodeBuilder) children() *etree.Element {
	if c := n.el.SelectElement("nodes"); c != nil {
		return c
	}
	return n.el.CreateElement("nodes")
}

// replace drops any existing child with tag and creates a fresh one.
func (n *NodeBuilder) replace(tag string) *etree.Element {
	if old := n.el.SelectElement(tag); old != nil {
		n.el.RemoveChild(old)
	}
	return n.el.CreateElement(tag)
}

func setField(parent *etree.Element, key, value string) {
	el := parent.SelectElement(key)
	if el == nil {
		el = parent.CreateElement(key)
	}
	el.SetText(value)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
