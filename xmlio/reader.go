package xmlio

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// Parse reads a complete XML document into an Element tree, preserving
// document order and splitting each element's qualified name into
// Prefix/Local exactly as it appeared on the wire (namespace URIs are not
// resolved here; callers match on prefix the way the schemas in this
// library fix it by convention).
func Parse(data []byte) (*Element, error) {
	dec := xml.NewDecoder(strings.NewReader(string(data)))
	dec.Strict = true

	var root *Element
	var stack []*Element

	for {
		tok, err := dec.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			el := &Element{Prefix: t.Name.Space, Local: t.Name.Local}
			for _, a := range t.Attr {
				if a.Name.Space == "xmlns" || (a.Name.Space == "" && a.Name.Local == "xmlns") {
					prefix := a.Name.Local
					if prefix == "xmlns" {
						prefix = ""
					}
					el.Xmlns = append(el.Xmlns, Attr{Name: prefix, Value: a.Value})
					continue
				}
				name := a.Name.Local
				if a.Name.Space != "" {
					name = a.Name.Space + ":" + a.Name.Local
				}
				el.Attrs = append(el.Attrs, Attr{Name: name, Value: a.Value})
			}
			if root == nil {
				root = el
			} else if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, el)
			}
			stack = append(stack, el)
		case xml.EndElement:
			if len(stack) == 0 {
				return nil, fmt.Errorf("parse xml: unbalanced end element %q", t.Name.Local)
			}
			top := stack[len(stack)-1]
			if t.Name.Space != top.Prefix || t.Name.Local != top.Local {
				return nil, fmt.Errorf("parse xml: end element %q does not match start element %q", t.Name.Local, top.Local)
			}
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].Text += string(t)
			}
		}
	}
	if len(stack) > 0 {
		return nil, fmt.Errorf("parse xml: unclosed element %q", stack[len(stack)-1].Local)
	}
	if root == nil {
		return nil, fmt.Errorf("parse xml: empty document")
	}
	return root, nil
}

// DocumentFrom is Parse under a name that reads better at call sites that
// are reparsing output this package itself wrote (e.g. re-reading a just
// signed document to verify it).
func DocumentFrom(data []byte) (*Element, error) {
	return Parse(data)
}
