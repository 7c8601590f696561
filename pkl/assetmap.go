package pkl

import (
	"strconv"

	"github.com/rendiffdev/dcp/assets"
	"github.com/rendiffdev/dcp/dcperr"
	"github.com/rendiffdev/dcp/ids"
	"github.com/rendiffdev/dcp/xmlio"
)

// AssetMapEntry is one row of the asset map: an id, the relative on-disk
// path of the file, and whether SMPTE marks it as a packing list.
type AssetMapEntry struct {
	AssetID      ids.Identifier
	Path         string // relative to the DCP directory
	IsPackingList bool
}

// AssetMap lists every file in a DCP directory keyed by id.
type AssetMap struct {
	ID        ids.Identifier
	Creator   string
	IssueDate ids.LocalTime
	Issuer    string
	VolumeCount int
	Entries   []AssetMapEntry
}

// NewAssetMap builds an empty AssetMap.
func NewAssetMap(id ids.Identifier, issuer, creator string, issueDate ids.LocalTime) *AssetMap {
	return &AssetMap{ID: id, Issuer: issuer, Creator: creator, IssueDate: issueDate, VolumeCount: 1}
}

// Add appends an entry, erroring on a duplicate id.
func (m *AssetMap) Add(entry AssetMapEntry) error {
	for _, e := range m.Entries {
		if e.AssetID.Equal(entry.AssetID) {
			return dcperr.DuplicateIdError(entry.AssetID.String())
		}
	}
	m.Entries = append(m.Entries, entry)
	return nil
}

// Find returns the entry for an asset id, if present.
func (m *AssetMap) Find(id ids.Identifier) (AssetMapEntry, bool) {
	for _, e := range m.Entries {
		if e.AssetID.Equal(id) {
			return e, true
		}
	}
	return AssetMapEntry{}, false
}

// ToXML serializes the asset map: Id, Creator?, VolumeCount, IssueDate,
// Issuer, AssetList.
func (m *AssetMap) ToXML(std assets.Standard) *xmlio.Element {
	root := xmlio.NewElement("AssetMap")
	if std == assets.StandardSMPTE {
		root.DeclareXmlns("", "http://www.smpte-ra.org/schemas/429-9/2007/AM")
	} else {
		root.DeclareXmlns("", "http://www.digicine.com/PROTO-ASDCP-AM-20040311#")
	}
	root.AddChild(xmlio.NewElement("Id")).SetText(m.ID.URN())
	if m.Creator != "" {
		root.AddChild(xmlio.NewElement("Creator")).SetText(m.Creator)
	}
	root.AddChild(xmlio.NewElement("VolumeCount")).SetText(strconv.Itoa(m.VolumeCount))
	root.AddChild(xmlio.NewElement("IssueDate")).SetText(m.IssueDate.String())
	root.AddChild(xmlio.NewElement("Issuer")).SetText(m.Issuer)

	assetList := root.AddChild(xmlio.NewElement("AssetList"))
	for _, e := range m.Entries {
		assetEl := assetList.AddChild(xmlio.NewElement("Asset"))
		assetEl.AddChild(xmlio.NewElement("Id")).SetText(e.AssetID.URN())
		chunkList := assetEl.AddChild(xmlio.NewElement("ChunkList"))
		chunk := chunkList.AddChild(xmlio.NewElement("Chunk"))
		chunk.AddChild(xmlio.NewElement("Path")).SetText(e.Path)
		chunk.AddChild(xmlio.NewElement("VolumeIndex")).SetText("1")
		chunk.AddChild(xmlio.NewElement("Offset")).SetText("0")
		if std == assets.StandardSMPTE && e.IsPackingList {
			assetEl.AddChild(xmlio.NewElement("PackingList")).SetText("true")
		} else if std == assets.StandardInterop && e.IsPackingList {
			assetEl.AddChild(xmlio.NewElement("PackingList"))
		}
	}
	return root
}

// FromXML parses an asset map document.
func FromXML(root *xmlio.Element, std assets.Standard) (*AssetMap, error) {
	idEl := root.Child("Id")
	if idEl == nil {
		return nil, dcperr.XMLError("AssetMap missing Id element", nil)
	}
	id, err := ids.Parse(idEl.TrimmedText())
	if err != nil {
		return nil, dcperr.XMLError("AssetMap Id is not a valid identifier", err)
	}

	m := &AssetMap{ID: id, VolumeCount: 1}
	if creator := root.Child("Creator"); creator != nil {
		m.Creator = creator.TrimmedText()
	}
	if issueDate := root.Child("IssueDate"); issueDate != nil {
		lt, err := ids.ParseLocalTime(issueDate.TrimmedText())
		if err != nil {
			return nil, dcperr.XMLError("AssetMap IssueDate is malformed", err)
		}
		m.IssueDate = lt
	}
	if issuer := root.Child("Issuer"); issuer != nil {
		m.Issuer = issuer.TrimmedText()
	}

	assetList := root.Child("AssetList")
	if assetList == nil {
		return nil, dcperr.XMLError("AssetMap missing AssetList", nil)
	}
	for _, assetEl := range assetList.ChildrenNamed("Asset") {
		idChild := assetEl.Child("Id")
		if idChild == nil {
			return nil, dcperr.XMLError("AssetMap Asset missing Id", nil)
		}
		assetID, err := ids.Parse(idChild.TrimmedText())
		if err != nil {
			return nil, dcperr.XMLError("AssetMap Asset Id is malformed", err)
		}
		entry := AssetMapEntry{AssetID: assetID}
		if chunkList := assetEl.Child("ChunkList"); chunkList != nil {
			if chunk := chunkList.Child("Chunk"); chunk != nil {
				if path := chunk.Child("Path"); path != nil {
					entry.Path = path.TrimmedText()
				}
			}
		}
		if pkl := assetEl.Child("PackingList"); pkl != nil {
			if std == assets.StandardSMPTE {
				entry.IsPackingList = pkl.TrimmedText() == "true"
			} else {
				entry.IsPackingList = true
			}
		}
		if err := m.Add(entry); err != nil {
			return nil, err
		}
	}
	return m, nil
}
