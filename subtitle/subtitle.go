// Package subtitle implements component C9: the shared in-memory model of
// timed text runs and image cues, and the two on-disk dialects — Interop
// (a standalone <DCSubtitle> XML file with sibling font/PNG files) and
// SMPTE (the same logical content packaged inside an MXF essence). Reading
// and writing Interop XML is grounded on the teacher repository's
// internal/ffmpeg/imf_cpl_analyzer.go token-walking approach, reused via
// the xmlio package rather than re-implemented here.
package subtitle

import (
	"github.com/rendiffdev/dcp/dcperr"
	"github.com/rendiffdev/dcp/ids"
	"github.com/rendiffdev/dcp/xmlio"
)

// Dialect discriminates the two on-disk subtitle packagings.
type Dialect int

const (
	DialectInterop Dialect = iota
	DialectSMPTE
)

// VAlign is a text cue's vertical anchor.
type VAlign string

const (
	VAlignTop    VAlign = "top"
	VAlignCenter VAlign = "center"
	VAlignBottom VAlign = "bottom"
)

// Timing is the [Start, End) interval a cue is visible for, expressed in
// the dialect's native tick rate (250 for Interop, the declared
// TimeCodeRate for SMPTE).
type Timing struct {
	Start ids.Time
	End   ids.Time
}

// Cue is one subtitle event: either rendered text or a reference to an
// external image (Interop PNG cues only).
type Cue struct {
	Timing Timing
	Region string
	VAlign VAlign
	HPos   float64 // fraction of screen width, 0 = left
	VPos   float64 // fraction of screen height, 0 = top
	Text   string  // "" for image cues
	Image  string  // referenced PNG asset id; "" for text cues
}

// IsImage reports whether this cue references an external image rather
// than rendering text.
func (c Cue) IsImage() bool { return c.Image != "" }

// Subtitle is the dialect-independent model: a reel's full set of cues
// plus the font/image resources it references.
type Subtitle struct {
	Dialect  Dialect
	ID       ids.Identifier // SMPTE: asset id; Interop: the <SubtitleID>
	Language string
	Cues     []Cue
	Fonts    map[string][]byte // keyed by font resource id; ttf bytes
	Images   map[string][]byte // keyed by image id; png bytes (Interop only)
}

// New builds an empty Subtitle for the given dialect.
func New(dialect Dialect, id ids.Identifier, language string) *Subtitle {
	return &Subtitle{
		Dialect:  dialect,
		ID:       id,
		Language: language,
		Fonts:    make(map[string][]byte),
		Images:   make(map[string][]byte),
	}
}

// AddCue appends a cue in document order.
func (s *Subtitle) AddCue(c Cue) { s.Cues = append(s.Cues, c) }

// ParseInteropXML parses a <DCSubtitle> document, the Interop subtitle
// asset dialect.
func ParseInteropXML(data []byte) (*Subtitle, error) {
	root, err := xmlio.Parse(data)
	if err != nil {
		return nil, dcperr.XMLError("parse DCSubtitle document", err)
	}
	if root.Local != "DCSubtitle" {
		return nil, dcperr.XMLError("expected DCSubtitle root element, got "+root.Local, nil)
	}

	idEl := root.Child("SubtitleID")
	var id ids.Identifier
	if idEl != nil {
		id, err = ids.Parse(idEl.TrimmedText())
		if err != nil {
			return nil, dcperr.XMLError("DCSubtitle SubtitleID is malformed", err)
		}
	}
	s := New(DialectInterop, id, "")
	if lang := root.Child("Language"); lang != nil {
		s.Language = lang.TrimmedText()
	}

	for _, fontEl := range root.ChildrenNamed("LoadFont") {
		fontID, _ := fontEl.Attr("Id")
		if fontID != "" {
			s.Fonts[fontID] = nil // bytes loaded separately from the sibling file
		}
	}

	for _, subEl := range root.ChildrenNamed("Subtitle") {
		cue := Cue{}
		if inTC, ok := subEl.Attr("TimeIn"); ok {
			start, err := ids.ParseInterop(inTC)
			if err != nil {
				return nil, dcperr.XMLError("Subtitle TimeIn is malformed", err)
			}
			cue.Timing.Start = start
		}
		if outTC, ok := subEl.Attr("TimeOut"); ok {
			end, err := ids.ParseInterop(outTC)
			if err != nil {
				return nil, dcperr.XMLError("Subtitle TimeOut is malformed", err)
			}
			cue.Timing.End = end
		}
		if v, ok := subEl.Attr("VAlign"); ok {
			cue.VAlign = VAlign(v)
		}
		cue.Text = subEl.TrimmedText()
		s.AddCue(cue)
	}
	return s, nil
}

// ToInteropXML serializes the shared model back to a <DCSubtitle> document.
func (s *Subtitle) ToInteropXML() *xmlio.Element {
	root := xmlio.NewElement("DCSubtitle")
	root.SetAttr("Version", "1.0")
	root.AddChild(xmlio.NewElement("SubtitleID")).SetText(s.ID.URN())
	if s.Language != "" {
		root.AddChild(xmlio.NewElement("Language")).SetText(s.Language)
	}
	for fontID := range s.Fonts {
		fontEl := root.AddChild(xmlio.NewElement("LoadFont"))
		fontEl.SetAttr("Id", fontID)
	}
	for _, cue := range s.Cues {
		subEl := root.AddChild(xmlio.NewElement("Subtitle"))
		subEl.SetAttr("TimeIn", cue.Timing.Start.FormatInterop())
		subEl.SetAttr("TimeOut", cue.Timing.End.FormatInterop())
		if cue.VAlign != "" {
			subEl.SetAttr("VAlign", string(cue.VAlign))
		}
		subEl.SetText(cue.Text)
	}
	return root
}
