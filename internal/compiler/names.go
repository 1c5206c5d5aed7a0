package compiler

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/aretw0/arbor/pkg/domain"
)

var namePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Prefixes of synthesized node names.
const (
	PrefixAbort   = "ABORT_"
	PrefixAgain   = "AGAIN_"
	PrefixBack    = "BACK_"
	PrefixRepeat  = "REPEAT_"
	PrefixGeneric = "GENERIC_"
)

// ValidateName returns a *domain.NameError when name has illegal characters.
func ValidateName(name string) error {
	if !namePattern.MatchString(name) {
		return &domain.NameError{Name: name}
	}
	return nil
}

// Namespace is the set of identifiers taken in one compilation.
type Namespace struct {
	names   map[string]struct{}
	counter int
}

// NewNamespace returns an empty namespace.
func NewNamespace() *Namespace {
	return &Namespace{names: make(map[string]struct{})}
}

// Has reports whether name is taken.
func (n *Namespace) Has(name string) bool {
	_, ok := n.names[name]
	return ok
}

// Add marks name as taken.
func (n *Namespace) Add(name string) {
	n.names[name] = struct{}{}
}

// Len returns the number of taken names.
func (n *Namespace) Len() int {
	return len(n.names)
}

// Next returns the first free node_<n>, advancing the counter past it.
func (n *Namespace) Next() string {
	for {
		name := "node_" + strconv.Itoa(n.counter)
		n.counter++
		if !n.Has(name) {
			return name
		}
	}
}

// Unique returns name, or name_<n> for the smallest n that is free.
func (n *Namespace) Unique(name string) string {
	if !n.Has(name) {
		return name
	}
	for i := 1; ; i++ {
		candidate := name + "_" + strconv.Itoa(i)
		if !n.Has(candidate) {
			return candidate
		}
	}
}

// CollectNames registers every declared identifier below root. Settings
// templates are skipped since they are copied, not compiled, in place.
// A name declared twice yields domain.ErrDuplicateName.
func CollectNames(root *etree.Element, ns *Namespace) error {
	for _, el := range root.ChildElements() {
		if el.Tag == tagAutogenerate {
			continue
		}
		if isStructural(el) {
			if name := declaredName(el); name != "" {
				if ns.Has(name) {
					return fmt.Errorf("%w: %s", domain.ErrDuplicateName, name)
				}
				ns.Add(name)
			}
		}
		if err := CollectNames(el, ns); err != nil {
			return err
		}
	}
	return nil
}

// declaredName is the <name> child of el, or its name attribute.
func declaredName(el *etree.Element) string {
	if name, ok := childText(el, tagName); ok {
		return name
	}
	return el.SelectAttrValue(tagName, "")
}

// Allocate gives el a <name> child and returns it. An existing <name> is kept,
// then the name attribute is used, then a fresh node_<n>. A non-empty prefix is
// prepended and the result made unique so synthesized nodes never take over a
// declared identifier.
func (c *CompilationContext) Allocate(el *etree.Element, prefix string) (string, error) {
	nameEl := el.SelectElement(tagName)
	var name string
	switch {
	case nameEl != nil:
		name = strings.TrimSpace(nameEl.Text())
	case el.SelectAttr(tagName) != nil:
		name = el.SelectAttrValue(tagName, "")
	default:
		name = c.names.Next()
	}

	if prefix != "" {
		name = c.names.Unique(prefix + name)
	}
	if err := ValidateName(name); err != nil {
		return "", err
	}

	if nameEl == nil {
		nameEl = el.CreateElement(tagName)
	}
	nameEl.SetText(name)
	c.names.Add(name)
	return name, nil
}

// ensureName validates an existing <name> or allocates one.
func (c *CompilationContext) ensureName(el *etree.Element) (string, error) {
	if el.SelectElement(tagName) == nil {
		return c.Allocate(el, "")
	}
	name := nameOf(el)
	if err := ValidateName(name); err != nil {
		return "", err
	}
	c.names.Add(name)
	return name, nil
}
