package compiler

import (
	"strings"

	"github.com/beevik/etree"

	"github.com/aretw0/arbor/pkg/domain"
)

// Element tags of the authoring tree.
const (
	tagNode         = "node"
	tagSlot         = "slot"
	tagHandler      = "handler"
	tagResponse     = "response"
	tagNodes        = "nodes"
	tagSlots        = "slots"
	tagHandlers     = "handlers"
	tagName         = "name"
	tagCondition    = "condition"
	tagType         = "type"
	tagOutput       = "output"
	tagContext      = "context"
	tagActions      = "actions"
	tagAction       = "action"
	tagGoto         = "goto"
	tagTarget       = "target"
	tagSelector     = "selector"
	tagText         = "text"
	tagTextValues   = "textValues"
	tagAutogenerate = "autogenerate"
	tagImport       = "import"
	tagImportText   = "importText"
	tagReplace      = "replace"
)

func isStructural(el *etree.Element) bool {
	switch el.Tag {
	case tagNode, tagSlot, tagHandler, tagResponse:
		return true
	}
	return false
}

// childText returns the trimmed text of the first child with the given tag.
func childText(el *etree.Element, tag string) (string, bool) {
	c := el.SelectElement(tag)
	if c == nil {
		return "", false
	}
	return strings.TrimSpace(c.Text()), true
}

func nameOf(el *etree.Element) string {
	s, _ := childText(el, tagName)
	return s
}

// kindOf derives the node kind. Later markers override earlier ones: <type>,
// then <slots>, then the eventName and variable attributes, then the
// response tag. raw is the declared type text.
func kindOf(el *etree.Element) (kind domain.Kind, raw string) {
	if t, ok := childText(el, tagType); ok {
		raw = t
		kind = domain.ParseKind(t)
	} else if el.SelectElement(tagSlots) != nil {
		kind = domain.KindFrame
	}
	if el.SelectAttr("eventName") != nil {
		kind = domain.KindEventHandler
	}
	if el.SelectAttr("variable") != nil {
		kind = domain.KindSlot
	}
	if el.Tag == tagResponse {
		kind = domain.KindResponseCondition
	}
	return kind, raw
}

// effectiveCondition is the declared condition or the default of the kind.
func effectiveCondition(el *etree.Element) (string, bool) {
	if cond, ok := childText(el, tagCondition); ok {
		return cond, true
	}
	kind, _ := kindOf(el)
	return kind.DefaultCondition()
}

// isCatchAll reports whether the node matches anything.
func isCatchAll(el *etree.Element) bool {
	cond, ok := effectiveCondition(el)
	return ok && cond == domain.ConditionAnythingElse
}

// isFallback reports whether control nodes must be inserted before el.
func isFallback(el *etree.Element) bool {
	cond, ok := effectiveCondition(el)
	if !ok {
		return false
	}
	return cond == "" ||
		strings.HasPrefix(cond, domain.ConditionAnythingElse) ||
		strings.HasPrefix(cond, domain.ConditionTriesPrefix)
}

func elementsByTag(el *etree.Element, tag string) []*etree.Element {
	var out []*etree.Element
	for _, c := range el.ChildElements() {
		if c.Tag == tag {
			out = append(out, c)
		}
	}
	return out
}

func firstByTag(list []*etree.Element, tag string) *etree.Element {
	for _, el := range list {
		if el.Tag == tag {
			return el
		}
	}
	return nil
}

// textElement builds <tag>text</tag>.
func textElement(tag, text string) *etree.Element {
	el := etree.NewElement(tag)
	el.SetText(text)
	return el
}

func gotoElement(target, selector string) *etree.Element {
	g := etree.NewElement(tagGoto)
	g.AddChild(textElement(tagTarget, target))
	if selector != "" {
		g.AddChild(textElement(tagSelector, selector))
	}
	return g
}

// replaceWithText swaps el for a character data token holding text, then
// joins it with neighbouring character data so Text() sees one run.
func replaceWithText(el *etree.Element, text string) {
	parent := el.Parent()
	if parent == nil {
		return
	}
	idx := el.Index()
	parent.RemoveChildAt(idx)
	parent.InsertChildAt(idx, etree.NewText(text))
	mergeCharData(parent)
}

func mergeCharData(el *etree.Element) {
	for i := 1; i < len(el.Child); {
		prev, ok1 := el.Child[i-1].(*etree.CharData)
		cur, ok2 := el.Child[i].(*etree.CharData)
		if ok1 && ok2 {
			prev.Data += cur.Data
			el.RemoveChildAt(i)
			continue
		}
		i++
	}
}

// stripComments removes every comment below el.
func stripComments(el *etree.Element) {
	for i := 0; i < len(el.Child); {
		switch t := el.Child[i].(type) {
		case *etree.Comment:
			el.RemoveChildAt(i)
			continue
		case *etree.Element:
			stripComments(t)
		}
		i++
	}
	mergeCharData(el)
}

// setNodes rewrites the <node> children of scope so they appear in the given
// order. Other children keep their relative position before them.
func setNodes(scope *etree.Element, nodes []*etree.Element) {
	for _, old := range elementsByTag(scope, tagNode) {
		scope.RemoveChild(old)
	}
	for _, n := range nodes {
		scope.AddChild(n)
	}
}

// structuralNodes returns the <node> children of a scope.
func structuralNodes(scope *etree.Element) []*etree.Element {
	return elementsByTag(scope, tagNode)
}
