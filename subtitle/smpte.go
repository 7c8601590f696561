package subtitle

import (
	"github.com/rendiffdev/dcp/assets"
	"github.com/rendiffdev/dcp/dcperr"
	"github.com/rendiffdev/dcp/ids"
	"github.com/rendiffdev/dcp/internal/mxfkit"
	"github.com/rendiffdev/dcp/xmlio"
)

// smpteSubtitleReelRoot is the SMPTE timed-text XML root element name,
// embedded verbatim inside the MXF essence. This package
// models a pragmatic subset of SMPTE ST 428-7's SubtitleReel schema — the
// cues, timing, and resource-id fields this toolkit's invariants actually
// depend on — rather than the complete third-party schema; the library
// only ever round-trips its own writer's output, never arbitrary SMPTE
// subtitle files from other vendors.
const smpteSubtitleReelRoot = "SubtitleReel"

// LoadSMPTE reads the embedded XML resource and font attachments from an
// SMPTE timed-text MXF essence and builds the shared Subtitle model,
// enforcing the id-triple invariant (id != resource_id,
// resource_id == xml_id).
func LoadSMPTE(assetID ids.Identifier, r mxfkit.TimedTextReader, language string) (*Subtitle, error) {
	header := r.Header()
	if assetID.Equal(header.ResourceID) {
		return nil, dcperr.ReadError("SMPTE timed-text asset id must differ from its resource id", nil)
	}

	xmlBytes, err := r.ResourceXML()
	if err != nil {
		return nil, dcperr.ReadError("read SMPTE timed-text XML resource", err)
	}
	root, err := xmlio.Parse(xmlBytes)
	if err != nil {
		return nil, dcperr.XMLError("parse SubtitleReel document", err)
	}
	if root.Local != smpteSubtitleReelRoot {
		return nil, dcperr.XMLError("expected SubtitleReel root element, got "+root.Local, nil)
	}

	idEl := root.Child("Id")
	if idEl == nil {
		return nil, dcperr.XMLError("SubtitleReel missing Id", nil)
	}
	xmlID, err := ids.Parse(idEl.TrimmedText())
	if err != nil {
		return nil, dcperr.XMLError("SubtitleReel Id is malformed", err)
	}
	if !header.ResourceID.Equal(xmlID) {
		return nil, dcperr.ReadError("SMPTE timed-text resource id must equal the embedded xml id", nil)
	}

	s := New(DialectSMPTE, assetID, language)
	for _, subEl := range root.ChildrenNamed("Subtitle") {
		cue := Cue{}
		if inTC, ok := subEl.Attr("TimeIn"); ok {
			start, err := ids.ParseSMPTE(inTC, header.EditRate.Numerator)
			if err != nil {
				return nil, dcperr.XMLError("Subtitle TimeIn is malformed", err)
			}
			cue.Timing.Start = start
		}
		if outTC, ok := subEl.Attr("TimeOut"); ok {
			end, err := ids.ParseSMPTE(outTC, header.EditRate.Numerator)
			if err != nil {
				return nil, dcperr.XMLError("Subtitle TimeOut is malformed", err)
			}
			cue.Timing.End = end
		}
		cue.Text = subEl.TrimmedText()
		s.AddCue(cue)
	}

	fonts, err := r.Fonts()
	if err != nil {
		return nil, dcperr.ReadError("read SMPTE timed-text font attachments", err)
	}
	s.Fonts = fonts
	return s, nil
}

// WriteSMPTE serializes the shared model to a SubtitleReel XML document and
// writes it, plus every attached font, through an MXF essence writer. The
// caller supplies resourceID/xmlID already validated by ValidateIDTriple.
func (s *Subtitle) WriteSMPTE(w mxfkit.TimedTextWriter, resourceID ids.Identifier) error {
	root := xmlio.NewElement(smpteSubtitleReelRoot)
	root.AddChild(xmlio.NewElement("Id")).SetText(resourceID.URN())
	if s.Language != "" {
		root.AddChild(xmlio.NewElement("Language")).SetText(s.Language)
	}
	for _, cue := range s.Cues {
		subEl := root.AddChild(xmlio.NewElement("Subtitle"))
		subEl.SetAttr("TimeIn", cue.Timing.Start.FormatSMPTE())
		subEl.SetAttr("TimeOut", cue.Timing.End.FormatSMPTE())
		subEl.SetText(cue.Text)
	}

	if err := w.WriteResource(xmlio.WriteDocument(root)); err != nil {
		return dcperr.FileError("write SubtitleReel resource", err)
	}
	for id, data := range s.Fonts {
		if err := w.WriteFont(id, data); err != nil {
			return dcperr.FileError("write subtitle font "+id, err)
		}
	}
	return w.Finalize()
}

// ValidateIDTriple checks the SMPTE timed-text identity
// invariant against the TimedTextAsset this subtitle belongs to.
func ValidateIDTriple(asset *assets.TimedTextAsset) error {
	return asset.ValidateIDTriple()
}
