// Package pkl implements the packing list and asset map data models of
// component C6: the packing list enumerating every in-package file with
// its hash and MIME-style type, and the asset map enumerating on-disk
// paths keyed by id.
package pkl

import (
	"fmt"

	"github.com/rendiffdev/dcp/assets"
	"github.com/rendiffdev/dcp/dcperr"
	"github.com/rendiffdev/dcp/ids"
	"github.com/rendiffdev/dcp/xmlio"
)

// Entry is one packing-list row: an asset id, its base64(SHA-1) hash, its
// size in bytes, and its PKL-type string.
type Entry struct {
	AssetID ids.Identifier
	Hash    string
	Size    int64
	Type    string // e.g. "application/mxf", "text/xml;asdcpKind=CPL"
}

// PKL is a packing list: an id, optional annotation text, issue date,
// issuer, creator, and its entries in insertion order.
type PKL struct {
	ID             ids.Identifier
	AnnotationText string
	IssueDate      ids.LocalTime
	Issuer         string
	Creator        string
	Entries        []Entry
}

// New builds an empty PKL.
func New(id ids.Identifier, issuer, creator string, issueDate ids.LocalTime) *PKL {
	return &PKL{ID: id, Issuer: issuer, Creator: creator, IssueDate: issueDate}
}

// Add appends an entry, erroring if the asset id is already present:
// every PKL asset has exactly one entry.
func (p *PKL) Add(entry Entry) error {
	for _, e := range p.Entries {
		if e.AssetID.Equal(entry.AssetID) {
			return dcperr.DuplicateIdError(entry.AssetID.String())
		}
	}
	p.Entries = append(p.Entries, entry)
	return nil
}

// Find returns the entry for an asset id, if present.
func (p *PKL) Find(id ids.Identifier) (Entry, bool) {
	for _, e := range p.Entries {
		if e.AssetID.Equal(id) {
			return e, true
		}
	}
	return Entry{}, false
}

// stripTypeParam strips a ";param=value" suffix from a PKL type string for
// comparison purposes.
func stripTypeParam(t string) string {
	for i, r := range t {
		if r == ';' {
			return t[:i]
		}
	}
	return t
}

// TypesMatch reports whether two PKL type strings refer to the same
// underlying content type, ignoring any ";parameter" suffix.
func TypesMatch(a, b string) bool {
	return stripTypeParam(a) == stripTypeParam(b)
}

// StripTypeParam strips a ";param=value" suffix from a PKL type string,
// for callers (e.g. the dcp loader) that need the bare MIME-style type for
// dispatch rather than a pairwise comparison.
func StripTypeParam(t string) string {
	return stripTypeParam(t)
}

// ToXML serializes the PKL in SMPTE ST 429-8 child order:
// Id, AnnotationText?, IssueDate, Issuer, Creator, AssetList.
func (p *PKL) ToXML(std assets.Standard) *xmlio.Element {
	root := xmlio.NewElement("PackingList")
	if std == assets.StandardSMPTE {
		root.DeclareXmlns("", "http://www.smpte-ra.org/schemas/429-8/2007/PKL")
	} else {
		root.DeclareXmlns("", "http://www.digicine.com/PROTO-ASDCP-PKL-20040311#")
	}
	root.AddChild(xmlio.NewElement("Id")).SetText(p.ID.URN())
	if p.AnnotationText != "" {
		root.AddChild(xmlio.NewElement("AnnotationText")).SetText(p.AnnotationText)
	}
	root.AddChild(xmlio.NewElement("IssueDate")).SetText(p.IssueDate.String())
	root.AddChild(xmlio.NewElement("Issuer")).SetText(p.Issuer)
	root.AddChild(xmlio.NewElement("Creator")).SetText(p.Creator)

	assetList := root.AddChild(xmlio.NewElement("AssetList"))
	for _, e := range p.Entries {
		assetEl := assetList.AddChild(xmlio.NewElement("Asset"))
		assetEl.AddChild(xmlio.NewElement("Id")).SetText(e.AssetID.URN())
		assetEl.AddChild(xmlio.NewElement("Hash")).SetText(e.Hash)
		assetEl.AddChild(xmlio.NewElement("Size")).SetText(fmt.Sprintf("%d", e.Size))
		assetEl.AddChild(xmlio.NewElement("Type")).SetText(e.Type)
	}
	return root
}

// FromXML parses a PKL document previously produced by ToXML (or a
// conformant third-party writer using the same element names).
func FromXML(root *xmlio.Element) (*PKL, error) {
	idEl := root.Child("Id")
	if idEl == nil {
		return nil, dcperr.XMLError("PackingList missing Id element", nil)
	}
	id, err := ids.Parse(idEl.TrimmedText())
	if err != nil {
		return nil, dcperr.XMLError("PackingList Id is not a valid identifier", err)
	}

	p := &PKL{ID: id}
	if ann := root.Child("AnnotationText"); ann != nil {
		p.AnnotationText = ann.TrimmedText()
	}
	if issueDate := root.Child("IssueDate"); issueDate != nil {
		lt, err := ids.ParseLocalTime(issueDate.TrimmedText())
		if err != nil {
			return nil, dcperr.XMLError("PackingList IssueDate is malformed", err)
		}
		p.IssueDate = lt
	}
	if issuer := root.Child("Issuer"); issuer != nil {
		p.Issuer = issuer.TrimmedText()
	}
	if creator := root.Child("Creator"); creator != nil {
		p.Creator = creator.TrimmedText()
	}

	assetList := root.Child("AssetList")
	if assetList == nil {
		return nil, dcperr.XMLError("PackingList missing AssetList", nil)
	}
	for _, assetEl := range assetList.ChildrenNamed("Asset") {
		idChild := assetEl.Child("Id")
		if idChild == nil {
			return nil, dcperr.XMLError("PackingList Asset missing Id", nil)
		}
		assetID, err := ids.Parse(idChild.TrimmedText())
		if err != nil {
			return nil, dcperr.XMLError("PackingList Asset Id is malformed", err)
		}
		entry := Entry{AssetID: assetID}
		if hash := assetEl.Child("Hash"); hash != nil {
			entry.Hash = hash.TrimmedText()
		}
		if size := assetEl.Child("Size"); size != nil {
			fmt.Sscanf(size.TrimmedText(), "%d", &entry.Size)
		}
		if typ := assetEl.Child("Type"); typ != nil {
			entry.Type = typ.TrimmedText()
		}
		if err := p.Add(entry); err != nil {
			return nil, err
		}
	}
	return p, nil
}
