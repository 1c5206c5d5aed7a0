package compiler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/aretw0/arbor/pkg/domain"
)

// Generate synthesizes the control nodes of scope and of every nested scope.
// owner is the node whose <nodes> container scope is, nil at the root.
func (c *CompilationContext) Generate(scope, owner *etree.Element, inherited Directives) error {
	ownerName := "root"
	if owner != nil {
		ownerName = nameOf(owner)
	}

	nodes := structuralNodes(scope)
	for _, n := range nodes {
		if _, err := c.Allocate(n, ""); err != nil {
			return err
		}
	}
	c.logger.Debug("generating control nodes", "scope", ownerName, "nodes", len(nodes))

	res := c.Resolve(scope, ownerName, inherited)
	first := firstByTag(nodes, tagNode)

	var control []*etree.Element
	copies := make(map[*etree.Element]bool)
	if res.Active[DirectiveAbort] {
		n, err := c.abortNode(owner, res.Settings[DirectiveAbort])
		if err != nil {
			return err
		}
		control = append(control, n)
	}
	if res.Active[DirectiveAgain] {
		n, err := c.againNode(ownerName, first, res.Settings[DirectiveAgain])
		if err != nil {
			return err
		}
		control = append(control, n)
	}
	if res.Active[DirectiveBack] {
		n, err := c.backNode(owner, res.Settings[DirectiveBack])
		if err != nil {
			return err
		}
		control = append(control, n)
	}
	if res.Active[DirectiveGeneric] {
		for _, tmpl := range res.Settings[DirectiveGeneric].Children() {
			n := tmpl.Copy()
			if _, err := c.Allocate(n, PrefixGeneric); err != nil {
				return err
			}
			if err := c.prefixTemplateNames(n); err != nil {
				return err
			}
			copies[n] = true
			if owner != nil {
				c.parents[n] = owner
			}
			c.parents.Index(n, n)
			control = append(control, n)
		}
	}
	nodes = splice(nodes, insertionPoint(nodes), control)

	if res.Active[DirectiveRepeat] && owner != nil {
		repeat, err := c.repeatNodes(owner, first, res.Settings[DirectiveRepeat])
		if err != nil {
			return err
		}
		nodes = appendBeforeCatchAll(nodes, repeat)
	}
	setNodes(scope, nodes)

	for _, n := range nodes {
		children := n.SelectElement(tagNodes)
		if children == nil {
			continue
		}
		inherited := res.Propagated
		if copies[n] {
			// A copy must not receive itself again.
			inherited[DirectiveGeneric] = nil
		}
		if err := c.Generate(children, n, inherited); err != nil {
			return err
		}
	}
	return nil
}

// prefixTemplateNames renames every declared node below a generic copy the
// way the copy itself is named, so copies in several scopes stay unique.
func (c *CompilationContext) prefixTemplateNames(el *etree.Element) error {
	for _, child := range el.ChildElements() {
		if child.Tag == tagAutogenerate {
			continue
		}
		if isStructural(child) && declaredName(child) != "" {
			if _, err := c.Allocate(child, PrefixGeneric); err != nil {
				return err
			}
		}
		if err := c.prefixTemplateNames(child); err != nil {
			return err
		}
	}
	return nil
}

func withConfidence(cond string, s *Settings) string {
	if v, ok := s.Attr("confidence"); ok {
		return cond + " and intent.confidence >" + v
	}
	return cond
}

func (c *CompilationContext) controlNode(prefix, condition, output string) (*etree.Element, error) {
	n := etree.NewElement(tagNode)
	if _, err := c.Allocate(n, prefix); err != nil {
		return nil, err
	}
	n.AddChild(textElement(tagCondition, condition))
	n.AddChild(textElement(tagOutput, output))
	return n, nil
}

func (c *CompilationContext) abortNode(owner *etree.Element, s *Settings) (*etree.Element, error) {
	msg := s.TextOr("message", DefaultAbortMessage)
	if owner == nil {
		msg = s.TextOr("message_cannot", DefaultAbortMessageCannot)
	}
	n, err := c.controlNode(PrefixAbort, withConfidence(domain.ConditionAbort, s), msg)
	if err != nil {
		return nil, err
	}
	if g := s.Child(tagGoto); g != nil {
		n.AddChild(g.Copy())
	}
	return n, nil
}

func (c *CompilationContext) againNode(ownerName string, first *etree.Element, s *Settings) (*etree.Element, error) {
	n, err := c.controlNode(PrefixAgain, withConfidence(domain.ConditionAgain, s), domain.AgainMessage)
	if err != nil {
		return nil, err
	}
	if first == nil {
		c.Warn(domain.StageGenerate, ownerName, "again node %s has no step to repeat", nameOf(n))
		return n, nil
	}
	n.AddChild(gotoElement(nameOf(first), ""))
	return n, nil
}

// backNode jumps to the node owning owner. Top-level owners return to the main
// menu, and at the root there is nowhere to go back to.
func (c *CompilationContext) backNode(owner *etree.Element, s *Settings) (*etree.Element, error) {
	cond := withConfidence(domain.ConditionBack, s)
	if owner == nil {
		return c.controlNode(PrefixBack, cond, s.TextOr("message_cannot", DefaultBackMessageCannot))
	}
	grand, ok := c.parents.Parent(owner)
	if !ok {
		return c.controlNode(PrefixBack, cond, s.TextOr("message_to_main", DefaultBackMessageToMain))
	}
	n, err := c.controlNode(PrefixBack, cond, s.TextOr("message", DefaultBackMessage))
	if err != nil {
		return nil, err
	}
	n.AddChild(gotoElement(nameOf(grand), domain.SelectorBody))
	return n, nil
}

// repeatNodes builds the retry ladder of a node-owned scope. The nodes come
// out final first, then the middle steps in descending order, then the entry
// step; the runtime picks the first matching condition.
func (c *CompilationContext) repeatNodes(owner, first *etree.Element, s *Settings) ([]*etree.Element, error) {
	ownerName := nameOf(owner)
	if first == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrRepeatWithoutTarget, ownerName)
	}
	v := "attempts_" + strings.ReplaceAll(ownerName, "-", "")

	ctxEl := owner.SelectElement(tagContext)
	if ctxEl == nil {
		ctxEl = owner.CreateElement(tagContext)
	}
	counter := ctxEl.CreateElement(v)
	counter.CreateAttr("type", "number")
	counter.SetText("0")

	attempts := DefaultRepeatAttempts
	if raw, ok := s.Text("attempts"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil || n < 1 {
			c.Warn(domain.StageGenerate, ownerName, "invalid repeat attempts %q, using %d", raw, DefaultRepeatAttempts)
		} else {
			attempts = n
		}
	}

	var outputs []*etree.Element
	if o := s.Child("outputs"); o != nil {
		outputs = elementsByTag(o, tagOutput)
	}
	if len(outputs) == 0 {
		set, _ := s.Attr("templates")
		outputs = defaultRepeatOutputs(set)
	}

	loop := gotoElement(nameOf(first), "")
	c.logger.Debug("generating repeat nodes", "scope", ownerName, "attempts", attempts, "outputs", len(outputs))

	var out []*etree.Element
	final, err := c.repeatNode(v, attempts-1, "0", true, outputs[len(outputs)-1], s.Child(tagGoto))
	if err != nil {
		return nil, err
	}
	out = append(out, final)

	for i := min(attempts-1, len(outputs)-1) - 1; i > 0; i-- {
		n, err := c.repeatNode(v, i, "<?$"+v+" + 1?>", false, outputs[i], loop)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}

	entry, err := c.repeatNode(v, 0, "<? $"+v+" == null ? 0 : $"+v+" + 1 ?>", false, outputs[0], loop)
	if err != nil {
		return nil, err
	}
	return append(out, entry), nil
}

func (c *CompilationContext) repeatNode(v string, attempt int, value string, number bool, output, jump *etree.Element) (*etree.Element, error) {
	n := etree.NewElement(tagNode)
	if _, err := c.Allocate(n, PrefixRepeat); err != nil {
		return nil, err
	}

	cond := "$" + v + " >= " + strconv.Itoa(attempt)
	if attempt == 0 {
		cond = "$" + v + " == null or " + cond
	}
	n.AddChild(textElement(tagCondition, cond))

	ctxEl := n.CreateElement(tagContext)
	assign := ctxEl.CreateElement(v)
	assign.SetText(value)
	if number {
		assign.CreateAttr("type", "number")
	}

	n.AddChild(output.Copy())
	if jump != nil {
		n.AddChild(jump.Copy())
	}
	return n, nil
}
