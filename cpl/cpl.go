package cpl

import (
	"fmt"

	"github.com/rendiffdev/dcp/assets"
	"github.com/rendiffdev/dcp/dcperr"
	"github.com/rendiffdev/dcp/ids"
	"github.com/rendiffdev/dcp/xmlio"
)

// DefaultContentKindScope is the scope URI whose presence on a ContentKind
// element is elided on write.
const DefaultContentKindScope = "http://www.smpte-ra.org/schemas/429-7/2014/CPL-Metadata#scope/content-kind"

// ContentKind names the CPL's content classification (feature, trailer,
// teaser, ...), with an optional non-default scope URI.
type ContentKind struct {
	Name  string
	Scope string // "" or DefaultContentKindScope both serialize with the attribute omitted
}

// CPL is a composition playlist: an ordered list of reels plus the
// mandated metadata block.
type CPL struct {
	ID               ids.Identifier
	AnnotationText   string
	IssueDate        ids.LocalTime
	Issuer           string
	Creator          string
	ContentTitleText string
	ContentKind      ContentKind
	ContentVersions  []ContentVersion
	Ratings          []Rating
	Reels            []*Reel
	Standard         assets.Standard

	ReleaseTerritory      string
	SignLanguageVideoLang string
	Distributor           string
	Facility              string
	Chain                 string
	Status                string
}

// New builds an empty CPL requiring at least one content version.
func New(id ids.Identifier, std assets.Standard) *CPL {
	return &CPL{ID: id, Standard: std}
}

// AddReel appends a reel in playback order.
func (c *CPL) AddReel(r *Reel) { c.Reels = append(c.Reels, r) }

// Summary returns a one-line human-readable description (title, duration,
// standard), used by report exporters and verifier progress logging.
// Grounded on libdcp's cpl_summary/bias_to_string test fixtures.
func (c *CPL) Summary() string {
	std := "SMPTE"
	if c.Standard == assets.StandardInterop {
		std = "Interop"
	}
	var total int64
	for _, r := range c.Reels {
		total += r.Duration()
	}
	return fmt.Sprintf("%s (%s, %d reel(s), %d frames)", c.ContentTitleText, std, len(c.Reels), total)
}

// ResolveRefs hands every reel reference in this CPL the flat asset list so
// each can look up its id and either record a concrete pointer or remain
// unresolved. Calling this twice leaves references
// unchanged (idempotent), since lookups always overwrite with
// the same result for a fixed asset list.
func (c *CPL) ResolveRefs(pool []assets.Asset) {
	byID := make(map[ids.Identifier]assets.Asset, len(pool))
	for _, a := range pool {
		byID[a.AssetID()] = a
	}
	for _, reel := range c.Reels {
		for _, ref := range reel.AllReferences() {
			if a, ok := byID[ref.AssetID]; ok {
				ref.SetResolved(a)
			}
		}
	}
}

// Add installs symmetric content keys from a decrypted KDM onto this CPL's
// essence assets: for each reel, for each supplied key, match the key id
// against each essence reference's key id and install it on the resolved
// asset.
func (c *CPL) Add(keys map[ids.Identifier][16]byte) {
	for _, reel := range c.Reels {
		for _, ref := range reel.AllReferences() {
			if !ref.HasKeyID {
				continue
			}
			key, ok := keys[ref.KeyID]
			if !ok {
				continue
			}
			resolved, ok := ref.Resolved()
			if !ok {
				continue
			}
			if mxfAsset, ok := resolved.(assets.MXFAsset); ok {
				mxfAsset.SetContentKey(key)
			}
		}
	}
}

// Equal compares two CPLs under opts: annotation texts
// (configurable), content kind, and pairwise reel equality delegating into
// asset equality.
func (c *CPL) Equal(other *CPL, opts assets.EqualityOptions) (bool, error) {
	if !opts.AllowAnnotationsDiffer && c.AnnotationText != other.AnnotationText {
		return false, nil
	}
	if c.ContentKind != other.ContentKind {
		return false, nil
	}
	if len(c.Reels) != len(other.Reels) {
		return false, nil
	}
	for i := range c.Reels {
		eq, err := reelsEqual(c.Reels[i], other.Reels[i], opts)
		if err != nil {
			return false, err
		}
		if !eq {
			return false, nil
		}
	}
	return true, nil
}

func reelsEqual(a, b *Reel, opts assets.EqualityOptions) (bool, error) {
	pairs := [][2]*Reference{
		{a.MainPicture, b.MainPicture},
		{a.MainSound, b.MainSound},
		{a.MainSubtitle, b.MainSubtitle},
		{a.MainMarkers, b.MainMarkers},
		{a.AuxData, b.AuxData},
	}
	for _, pair := range pairs {
		eq, err := referencesEqual(pair[0], pair[1], opts)
		if err != nil {
			return false, err
		}
		if !eq {
			return false, nil
		}
	}
	if len(a.ClosedCaptions) != len(b.ClosedCaptions) {
		return false, nil
	}
	for i := range a.ClosedCaptions {
		eq, err := referencesEqual(a.ClosedCaptions[i], b.ClosedCaptions[i], opts)
		if err != nil {
			return false, err
		}
		if !eq {
			return false, nil
		}
	}
	return true, nil
}

func referencesEqual(a, b *Reference, opts assets.EqualityOptions) (bool, error) {
	if (a == nil) != (b == nil) {
		return false, nil
	}
	if a == nil {
		return true, nil
	}
	if !a.AssetID.Equal(b.AssetID) {
		return false, nil
	}
	if !opts.AllowHashesToDiffer && a.Hash != b.Hash {
		return false, nil
	}
	resolvedA, okA := a.Resolved()
	resolvedB, okB := b.Resolved()
	if okA && okB {
		return assets.Equal(resolvedA, resolvedB, opts)
	}
	return okA == okB, nil
}

// ToXML serializes the CPL in the exact child order mandated by SMPTE ST
// 429-7: Id, AnnotationText?, IssueDate, Issuer, Creator,
// ContentTitleText, ContentKind, ContentVersion, RatingList, ReelList.
// Signing (appending Signer/Signature) is the caller's responsibility via
// xmlio.Signer, applied after this call.
func (c *CPL) ToXML() (*xmlio.Element, error) {
	if len(c.ContentVersions) == 0 {
		return nil, dcperr.MiscError("CPL must have at least one content version", nil)
	}

	root := xmlio.NewElement("CompositionPlaylist")
	if c.Standard == assets.StandardSMPTE {
		root.DeclareXmlns("", "http://www.smpte-ra.org/schemas/429-7/2006/CPL")
		root.DeclareXmlns("meta", "http://www.smpte-ra.org/schemas/429-16/2014/CPL-Metadata")
	} else {
		root.DeclareXmlns("", "http://www.digicine.com/PROTO-ASDCP-CPL-20040511#")
	}

	root.AddChild(xmlio.NewElement("Id")).SetText(c.ID.URN())
	if c.AnnotationText != "" {
		root.AddChild(xmlio.NewElement("AnnotationText")).SetText(c.AnnotationText)
	}
	root.AddChild(xmlio.NewElement("IssueDate")).SetText(c.IssueDate.String())
	root.AddChild(xmlio.NewElement("Issuer")).SetText(c.Issuer)
	root.AddChild(xmlio.NewElement("Creator")).SetText(c.Creator)
	root.AddChild(xmlio.NewElement("ContentTitleText")).SetText(c.ContentTitleText)

	ckEl := root.AddChild(xmlio.NewElement("ContentKind"))
	ckEl.SetText(c.ContentKind.Name)
	if c.ContentKind.Scope != "" && c.ContentKind.Scope != DefaultContentKindScope {
		ckEl.SetAttr("scope", c.ContentKind.Scope)
	}

	cvList := root.AddChild(xmlio.NewElement("ContentVersionList"))
	for _, cv := range c.ContentVersions {
		cve := cvList.AddChild(xmlio.NewElement("ContentVersion"))
		cve.AddChild(xmlio.NewElement("Id")).SetText(cv.ID.URN())
		cve.AddChild(xmlio.NewElement("LabelText")).SetText(cv.Label)
	}

	if len(c.Ratings) > 0 {
		rList := root.AddChild(xmlio.NewElement("RatingList"))
		for _, r := range c.Ratings {
			re := rList.AddChild(xmlio.NewElement("Rating"))
			re.AddChild(xmlio.NewElement("Agency")).SetText(r.Agency)
			re.AddChild(xmlio.NewElement("Label")).SetText(r.Label)
		}
	}

	reelList := root.AddChild(xmlio.NewElement("ReelList"))
	for i, reel := range c.Reels {
		reelEl := reelList.AddChild(xmlio.NewElement("Reel"))
		reelEl.AddChild(xmlio.NewElement("Id")).SetText(reel.ID.URN())
		assetList := reelEl.AddChild(xmlio.NewElement("AssetList"))

		if i == 0 && reel.CompositionMetadata != nil {
			cmaEl := assetList.AddChild(xmlio.NewPrefixedElement("meta", "CompositionMetadataAsset"))
			reel.CompositionMetadata.writeInOrder(cmaEl)
		}
		writeReelAssetList(assetList, reel)
	}

	return root, nil
}

func writeReelAssetList(assetList *xmlio.Element, reel *Reel) {
	writeRef := func(name string, ref *Reference) {
		if ref == nil {
			return
		}
		refEl := assetList.AddChild(xmlio.NewElement(name))
		refEl.AddChild(xmlio.NewElement("Id")).SetText(ref.AssetID.URN())
		if ref.HasHash() {
			refEl.AddChild(xmlio.NewElement("Hash")).SetText(ref.Hash)
		}
		refEl.AddChild(xmlio.NewElement("IntrinsicDuration")).SetText(fmt.Sprintf("%d", ref.IntrinsicDuration))
		refEl.AddChild(xmlio.NewElement("EntryPoint")).SetText(fmt.Sprintf("%d", ref.EntryPoint))
		refEl.AddChild(xmlio.NewElement("Duration")).SetText(fmt.Sprintf("%d", ref.Duration))
	}
	writeRef("MainPicture", reel.MainPicture)
	writeRef("MainSound", reel.MainSound)
	writeRef("MainSubtitle", reel.MainSubtitle)
	for _, cc := range reel.ClosedCaptions {
		writeRef("ClosedCaption", cc)
	}
	writeRef("MainMarkers", reel.MainMarkers)
	writeRef("AuxData", reel.AuxData)
}
