package compiler

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Object is the ordered JSON object produced by Convert.
type Object struct {
	*orderedmap.OrderedMap[string, any]
}

func newObject() *Object {
	return &Object{OrderedMap: orderedmap.New[string, any]()}
}

// MarshalJSON writes the fields in insertion order without escaping HTML, so
// markup such as <express-as> reaches the output verbatim.
func (o *Object) MarshalJSON() ([]byte, error) {
	if o == nil || o.OrderedMap == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for pair := o.Oldest(); pair != nil; pair = pair.Next() {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		key, err := marshalNoEscape(pair.Key)
		if err != nil {
			return nil, err
		}
		value, err := marshalNoEscape(pair.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// NumberWarning is called when a type="number" leaf does not parse.
type NumberWarning func(el *etree.Element, text string)

// Convert maps an element to nil, string, float64, []any or *Object.
//
// Leaves become their trimmed text, with "null" mapped to nil and
// type="number" parsed as float64. Children are grouped by tag in
// first-seen order; a tag seen once becomes a field, a repeated tag (or one
// marked structure="listItem") becomes a list.
func Convert(el *etree.Element) any {
	return convert(el, nil)
}

func convert(el *etree.Element, warn NumberWarning) any {
	children := el.ChildElements()
	if len(children) == 0 {
		return convertLeaf(el, warn)
	}

	var order []string
	groups := make(map[string][]*etree.Element)
	for _, c := range children {
		if _, seen := groups[c.Tag]; !seen {
			order = append(order, c.Tag)
		}
		groups[c.Tag] = append(groups[c.Tag], c)
	}

	obj := newObject()
	for _, tag := range order {
		group := groups[tag]
		if len(group) == 1 && group[0].SelectAttrValue("structure", "") != "listItem" {
			obj.Set(tag, convert(group[0], warn))
			continue
		}
		list := make([]any, 0, len(group))
		for _, c := range group {
			list = append(list, convert(c, warn))
		}
		obj.Set(tag, list)
	}
	return obj
}

func convertLeaf(el *etree.Element, warn NumberWarning) any {
	raw := el.Text()
	if raw == "" {
		return nil
	}
	text := strings.TrimSpace(raw)
	if strings.EqualFold(text, "null") {
		return nil
	}
	if el.SelectAttrValue("type", "") == "number" {
		f, err := strconv.ParseFloat(text, 64)
		if err == nil {
			return f
		}
		if warn != nil {
			warn(el, text)
		}
	}
	return text
}
