package compiler

import (
	"strings"

	"github.com/beevik/etree"

	"github.com/aretw0/arbor/pkg/domain"
)

// Directive identifies one of the autogenerate kinds.
type Directive int

const (
	DirectiveAbort Directive = iota
	DirectiveAgain
	DirectiveBack
	DirectiveGeneric
	DirectiveRepeat
	directiveCount
)

var directiveNames = [directiveCount]string{"abort", "again", "back", "generic", "repeat"}

func (d Directive) String() string {
	if d < 0 || d >= directiveCount {
		return "unknown"
	}
	return directiveNames[d]
}

// ParseDirective maps an autogenerate type attribute to its Directive.
func ParseDirective(s string) (Directive, bool) {
	for i, name := range directiveNames {
		if name == s {
			return Directive(i), true
		}
	}
	return 0, false
}

// Directives holds one optional settings record per kind.
type Directives [directiveCount]*Settings

// Settings is an immutable autogenerate record: attributes plus child elements.
type Settings struct {
	attrs    map[string]string
	keys     []string
	children []*etree.Element
}

// SettingsFromElement snapshots an <autogenerate> element. The element is
// copied so later tree rewrites cannot change the record.
func SettingsFromElement(el *etree.Element) *Settings {
	s := &Settings{attrs: make(map[string]string)}
	for _, a := range el.Attr {
		if a.Key == "type" {
			continue
		}
		s.setAttr(a.Key, a.Value)
	}
	for _, c := range el.ChildElements() {
		s.children = append(s.children, c.Copy())
	}
	return s
}

func (s *Settings) setAttr(key, value string) {
	if _, ok := s.attrs[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.attrs[key] = value
}

// Attr returns an attribute value.
func (s *Settings) Attr(key string) (string, bool) {
	v, ok := s.attrs[key]
	return v, ok
}

// Child returns the first child with the given tag, or nil.
func (s *Settings) Child(tag string) *etree.Element {
	for _, c := range s.children {
		if c.Tag == tag {
			return c
		}
	}
	return nil
}

// Text returns the raw text of the first child with the given tag.
func (s *Settings) Text(tag string) (string, bool) {
	c := s.Child(tag)
	if c == nil {
		return "", false
	}
	return c.Text(), true
}

// TextOr returns Text(tag) or fallback when the child is missing.
func (s *Settings) TextOr(tag, fallback string) string {
	if v, ok := s.Text(tag); ok {
		return v
	}
	return fallback
}

// Children returns all child elements in declaration order.
func (s *Settings) Children() []*etree.Element {
	return s.children
}

// Merge returns declared completed with the fields of inherited: attributes
// by key and child elements by tag. Neither input is modified.
func Merge(declared, inherited *Settings) *Settings {
	if declared == nil {
		return inherited
	}
	if inherited == nil {
		return declared
	}
	out := &Settings{attrs: make(map[string]string)}
	for _, k := range declared.keys {
		out.setAttr(k, declared.attrs[k])
	}
	for _, k := range inherited.keys {
		if _, ok := out.attrs[k]; !ok {
			out.setAttr(k, inherited.attrs[k])
		}
	}

	tags := make(map[string]bool)
	for _, c := range declared.children {
		tags[c.Tag] = true
		out.children = append(out.children, c)
	}
	for _, c := range inherited.children {
		if !tags[c.Tag] {
			out.children = append(out.children, c)
		}
	}
	return out
}

// Resolution is the outcome of settings inheritance for one scope.
type Resolution struct {
	Settings   Directives
	Active     [directiveCount]bool
	Propagated Directives
}

// Resolve merges the directives declared directly in scope over the inherited
// ones and decides which are active here and which reach child scopes.
func (c *CompilationContext) Resolve(scope *etree.Element, owner string, inherited Directives) Resolution {
	var declared Directives
	for _, el := range elementsByTag(scope, tagAutogenerate) {
		typ := el.SelectAttrValue("type", "")
		d, ok := ParseDirective(typ)
		if !ok {
			c.Warn(domain.StageSettings, owner, "unknown autogenerate type %q", typ)
			continue
		}
		if declared[d] != nil {
			c.Warn(domain.StageSettings, owner, "%s settings declared more than once, the last one wins", d)
		}
		declared[d] = SettingsFromElement(el)
	}

	var res Resolution
	for d := Directive(0); d < directiveCount; d++ {
		s := Merge(declared[d], inherited[d])
		res.Settings[d] = s
		if s == nil {
			continue
		}
		res.Active[d] = !c.isFalse(s, "on", owner)
		if !c.isFalse(s, "propagate", owner) {
			res.Propagated[d] = s
		}
	}
	return res
}

// isFalse reports whether a flag attribute is explicitly "false". Other
// values than true/false are reported and treated as absent.
func (c *CompilationContext) isFalse(s *Settings, flag, owner string) bool {
	v, ok := s.Attr(flag)
	if !ok {
		return false
	}
	switch strings.TrimSpace(v) {
	case "false":
		return true
	case "true":
		return false
	default:
		c.Warn(domain.StageSettings, owner, "unknown value of '%s' flag: %q", flag, v)
		return false
	}
}
