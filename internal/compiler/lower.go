package compiler

import (
	"strings"

	"github.com/beevik/etree"

	"github.com/aretw0/arbor/pkg/domain"
)

// Lower flattens the structural elements of list, and everything below them,
// into records in pre-order. parent is the owning node, nil at the root.
func (c *CompilationContext) Lower(list []*etree.Element, parent *etree.Element, out []domain.Record) ([]domain.Record, error) {
	var prev *etree.Element
	for _, el := range list {
		if !isStructural(el) {
			continue
		}
		name, err := c.ensureName(el)
		if err != nil {
			return nil, err
		}

		rec := domain.Record{DialogNode: name}
		kind := c.lowerKind(el, &rec)
		if cond, ok := childText(el, tagCondition); ok {
			rec.Conditions = cond
		} else if cond, ok := kind.DefaultCondition(); ok {
			rec.Conditions = cond
		}

		var children []*etree.Element
		if output := el.SelectElement(tagOutput); output != nil {
			children = append(children, c.prepareOutput(output)...)
			rec.Output = c.convert(output, name)
		}
		if ctxEl := el.SelectElement(tagContext); ctxEl != nil {
			rec.Context = c.convert(ctxEl, name)
		}
		if actions := el.SelectElement(tagActions); actions != nil {
			for _, a := range elementsByTag(actions, tagAction) {
				rec.Actions = append(rec.Actions, c.convert(a, name))
			}
		}
		if g := el.SelectElement(tagGoto); g != nil {
			jump, err := c.lowerGoto(g, name, list)
			if err != nil {
				return nil, err
			}
			rec.GoTo = jump
		}
		if parent != nil {
			rec.Parent = nameOf(parent)
		}
		if prev != nil {
			rec.PreviousSibling = nameOf(prev)
		}
		prev = el
		out = append(out, rec)

		for _, container := range []string{tagNodes, tagSlots, tagHandlers} {
			if sub := el.SelectElement(container); sub != nil {
				children = append(children, sub.ChildElements()...)
			}
		}
		if len(children) > 0 {
			if out, err = c.Lower(children, el, out); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// lowerKind fills the type, event and variable fields and returns the kind.
func (c *CompilationContext) lowerKind(el *etree.Element, rec *domain.Record) domain.Kind {
	kind, raw := kindOf(el)
	if ev := el.SelectAttr("eventName"); ev != nil {
		rec.EventName = ev.Value
	}
	if v := el.SelectAttr("variable"); v != nil {
		rec.Variable = v.Value
	}

	switch kind {
	case domain.KindNone:
	case domain.KindOther:
		rec.Type = raw
	case domain.KindDefault, domain.KindYes, domain.KindNo, domain.KindSlot,
		domain.KindEventHandler, domain.KindResponseCondition, domain.KindFrame, domain.KindStandard:
		rec.Type = kind.String()
	}
	return kind
}

// prepareOutput detaches inline <response> branches, wraps free text in a
// <text> child and renames <textValues> to <text>. It returns the responses.
func (c *CompilationContext) prepareOutput(output *etree.Element) []*etree.Element {
	responses := elementsByTag(output, tagResponse)
	for _, r := range responses {
		output.RemoveChild(r)
	}

	if text := output.Text(); text != "" {
		output.SetText("")
		if strings.TrimSpace(text) != "" {
			output.AddChild(textElement(tagText, text))
		}
	}
	if tv := output.SelectElement(tagTextValues); tv != nil {
		tv.Tag = tagText
	}
	return responses
}

func (c *CompilationContext) lowerGoto(g *etree.Element, node string, siblings []*etree.Element) (*domain.GoTo, error) {
	target, ok := childText(g, tagTarget)
	if !ok || target == "" {
		c.Warn(domain.StageLower, node, "missing goto target")
		return nil, nil
	}
	if target == domain.TargetFirstSibling {
		first := firstByTag(siblings, tagNode)
		if first == nil {
			c.Warn(domain.StageLower, node, "goto %s has no sibling node", domain.TargetFirstSibling)
			return nil, nil
		}
		name, err := c.ensureName(first)
		if err != nil {
			return nil, err
		}
		target = name
	}

	selector, ok := childText(g, tagSelector)
	if !ok || selector == "" {
		selector = g.SelectAttrValue(tagSelector, domain.SelectorUserInput)
	}
	return &domain.GoTo{DialogNode: target, Selector: selector}, nil
}

func (c *CompilationContext) convert(el *etree.Element, node string) any {
	return convert(el, func(leaf *etree.Element, text string) {
		c.Warn(domain.StageConvert, node, "<%s> is not a number: %q", leaf.Tag, text)
	})
}
