package xmlio

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
)

// xmlEscapeText escapes '&', '<' and '>' plus CR, LF and tab as character
// references in XML text content; xmlEscapeAttr does the same for attribute
// values and also escapes '"'. encoding/xml's own escaper is unexported for
// fine-grained use, so this mirrors it rather than round-tripping through
// xml.Marshal, which would fight the explicit child ordering above.
func xmlEscapeText(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '&':
			b.WriteString("&amp;")
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '\r':
			b.WriteString("&#13;")
		case '\n':
			b.WriteString("&#10;")
		case '\t':
			b.WriteString("&#9;")
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func xmlEscapeAttr(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '&':
			b.WriteString("&amp;")
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '"':
			b.WriteString("&quot;")
		case '\r':
			b.WriteString("&#13;")
		case '\n':
			b.WriteString("&#10;")
		case '\t':
			b.WriteString("&#9;")
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// WriteDocument serializes root as a complete XML document, with the
// standard declaration, in exactly the child order supplied by the caller.
func WriteDocument(root *Element) []byte {
	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	writeElement(&buf, root)
	return buf.Bytes()
}

// Serialize writes an element subtree without the document declaration,
// the form the enveloped signature's digest is computed over.
func Serialize(e *Element) []byte {
	var buf bytes.Buffer
	writeElement(&buf, e)
	return buf.Bytes()
}

func writeElement(buf *bytes.Buffer, e *Element) {
	name := e.Name()
	buf.WriteByte('<')
	buf.WriteString(name)

	// Namespace declarations are written in a stable, sorted order so that
	// documents this library produces are byte-reproducible.
	xmlns := append([]Attr(nil), e.Xmlns...)
	sort.Slice(xmlns, func(i, j int) bool { return xmlns[i].Name < xmlns[j].Name })
	for _, ns := range xmlns {
		if ns.Name == "" {
			fmt.Fprintf(buf, ` xmlns="%s"`, xmlEscapeAttr(ns.Value))
		} else {
			fmt.Fprintf(buf, ` xmlns:%s="%s"`, ns.Name, xmlEscapeAttr(ns.Value))
		}
	}
	for _, a := range e.Attrs {
		fmt.Fprintf(buf, ` %s="%s"`, a.Name, xmlEscapeAttr(a.Value))
	}

	hasChildren := len(e.Children) > 0
	hasText := e.Text != ""
	if !hasChildren && !hasText {
		buf.WriteString("/>")
		return
	}
	buf.WriteByte('>')
	if hasText {
		buf.WriteString(xmlEscapeText(e.Text))
	}
	for _, c := range e.Children {
		writeElement(buf, c)
	}
	buf.WriteString("</")
	buf.WriteString(name)
	buf.WriteByte('>')
}
