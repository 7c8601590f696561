// Package xmlio implements the schema-aware element tree this library reads
// and writes DCP XML through: namespace binding, ordered child
// serialization, and enveloped XML digital signature production/
// verification (component C2).
//
// Every schema this library emits (CPL, PKL, asset map, KDM) has a fixed,
// mandated child order, so the tree here is built explicitly in that order
// by each higher-level package rather than reconstructed from a generic
// map — Element.Children is an ordered slice, not a map, and stays that way
// end to end.
package xmlio

import "strings"

// Attr is a single XML attribute.
type Attr struct {
	Name  string
	Value string
}

// Element is a single XML element: a local name (with an optional explicit
// namespace prefix), attributes in the order they should be written,
// either child elements or a plain text body (never both — this library
// has no mixed-content schemas to represent), and namespace declarations
// to emit on this element specifically.
type Element struct {
	Prefix   string
	Local    string
	Attrs    []Attr
	Xmlns    []Attr // namespace declarations: Name is the declared prefix ("" for default), Value is the URI
	Text     string
	Children []*Element
}

// NewElement creates an unprefixed element with the given local name.
func NewElement(local string) *Element {
	return &Element{Local: local}
}

// NewPrefixedElement creates an element qualified by an explicit namespace prefix.
func NewPrefixedElement(prefix, local string) *Element {
	return &Element{Prefix: prefix, Local: local}
}

// Name returns the element's qualified name as it appears on the wire.
func (e *Element) Name() string {
	if e.Prefix == "" {
		return e.Local
	}
	return e.Prefix + ":" + e.Local
}

// SetAttr sets an unprefixed attribute, replacing any existing prior value.
func (e *Element) SetAttr(name, value string) *Element {
	for i := range e.Attrs {
		if e.Attrs[i].Name == name {
			e.Attrs[i].Value = value
			return e
		}
	}
	e.Attrs = append(e.Attrs, Attr{Name: name, Value: value})
	return e
}

// Attr returns the value of an attribute and whether it was present.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// DeclareXmlns adds a namespace declaration to be written on this element;
// prefix == "" declares the default namespace.
func (e *Element) DeclareXmlns(prefix, uri string) *Element {
	e.Xmlns = append(e.Xmlns, Attr{Name: prefix, Value: uri})
	return e
}

// SetText sets the element's text body. An element with children must not
// also carry text; callers only ever set one or the other.
func (e *Element) SetText(text string) *Element {
	e.Text = text
	return e
}

// AddChild appends a child element and returns it, so callers can chain
// AddChild(...).SetText(...).
func (e *Element) AddChild(child *Element) *Element {
	e.Children = append(e.Children, child)
	return child
}

// Child returns the first direct child with the given local name.
func (e *Element) Child(local string) *Element {
	for _, c := range e.Children {
		if c.Local == local {
			return c
		}
	}
	return nil
}

// ChildrenNamed returns all direct children with the given local name, in
// document order.
func (e *Element) ChildrenNamed(local string) []*Element {
	var out []*Element
	for _, c := range e.Children {
		if c.Local == local {
			out = append(out, c)
		}
	}
	return out
}

// Find performs a depth-first search for the first descendant (including e
// itself) with the given local name.
func (e *Element) Find(local string) *Element {
	if e.Local == local {
		return e
	}
	for _, c := range e.Children {
		if found := c.Find(local); found != nil {
			return found
		}
	}
	return nil
}

// TrimmedText returns the element's text with surrounding whitespace removed.
func (e *Element) TrimmedText() string {
	return strings.TrimSpace(e.Text)
}
