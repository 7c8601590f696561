// Package cpl implements the reel and composition playlist data model of
// components C5: ordered reels referencing at most one picture, sound,
// subtitle, marker, and auxiliary track plus any number of closed captions,
// the CPL metadata block, and SMPTE ST 429-7/429-16 serialization in their
// mandated child order.
package cpl

import (
	"github.com/rendiffdev/dcp/assets"
	"github.com/rendiffdev/dcp/ids"
)

// Reference is a reel's pointer to an essence asset: an id with optional
// hash and timing fields, which may be unresolved (asset not present in
// this package — the supplemental/VF case) until ResolveRefs runs.
type Reference struct {
	AssetID           ids.Identifier
	EntryPoint        int64
	Duration          int64
	IntrinsicDuration int64
	Hash              string // "" if not recorded in the CPL
	KeyID             ids.Identifier
	HasKeyID          bool

	resolved assets.Asset
}

// HasHash reports whether the CPL recorded a hash for this reference.
func (r *Reference) HasHash() bool { return r.Hash != "" }

// Resolved returns the concrete asset this reference points to, if
// ResolveRefs has found one in the owning DCP's asset list.
func (r *Reference) Resolved() (assets.Asset, bool) { return r.resolved, r.resolved != nil }

// SetResolved attaches the concrete asset a ResolveRefs pass found.
func (r *Reference) SetResolved(a assets.Asset) { r.resolved = a }

// Reel groups the essence references that play together: at most one
// main picture, one main sound, one main subtitle, one markers track, one
// auxiliary (Atmos) track, plus any number of closed captions.
type Reel struct {
	ID ids.Identifier

	MainPicture    *Reference // may represent mono or stereo; Stereo field on resolved asset disambiguates
	MainSound      *Reference
	MainSubtitle   *Reference
	MainMarkers    *Reference
	AuxData        *Reference
	ClosedCaptions []*Reference

	// CompositionMetadata is populated only on reel 0 of an SMPTE CPL.
	CompositionMetadata *CompositionMetadataAsset
}

// NewReel builds an empty reel with the given id.
func NewReel(id ids.Identifier) *Reel {
	return &Reel{ID: id}
}

// AllReferences returns every non-nil reference in document order
// (picture, sound, subtitle, markers, aux, then closed captions).
func (r *Reel) AllReferences() []*Reference {
	var out []*Reference
	for _, ref := range []*Reference{r.MainPicture, r.MainSound, r.MainSubtitle, r.MainMarkers, r.AuxData} {
		if ref != nil {
			out = append(out, ref)
		}
	}
	out = append(out, r.ClosedCaptions...)
	return out
}

// Duration returns the main picture reference's duration in that
// reference's edit units, or 0 if the reel has no main picture.
func (r *Reel) Duration() int64 {
	if r.MainPicture == nil {
		return 0
	}
	return r.MainPicture.Duration
}
