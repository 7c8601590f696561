package dcp

import (
	"strings"

	"github.com/rendiffdev/dcp/dcperr"
	"github.com/rendiffdev/dcp/ids"
	"github.com/rendiffdev/dcp/pkl"
)

// Combine merges several already-loaded DCPs that share one package
// standard into a single in-memory graph, without copying any essence
// file: the VF/OV split case where a supplemental package's CPL references
// picture or sound assets that only exist in an original version package,
// grounded on libdcp's combine_test.cc. The result's
// CPLs have their references re-resolved against the union of every input's
// asset pool, so a VF CPL that pointed at an OV-only asset resolves once
// both are present in the same call.
func Combine(dcps ...*DCP) (*DCP, error) {
	if len(dcps) == 0 {
		return nil, dcperr.MiscError("combine requires at least one DCP", nil)
	}
	std := dcps[0].Standard
	for _, d := range dcps[1:] {
		if d.Standard != std {
			return nil, dcperr.MiscError("cannot combine DCPs of different package standards", nil)
		}
	}

	combined := &DCP{Standard: std}
	seenAssets := make(map[ids.Identifier]bool)
	seenCPLs := make(map[ids.Identifier]bool)

	for _, d := range dcps {
		for _, a := range d.Assets {
			if seenAssets[a.AssetID()] {
				continue
			}
			seenAssets[a.AssetID()] = true
			combined.Assets = append(combined.Assets, a)
		}
		for _, c := range d.CPLs {
			if seenCPLs[c.ID] {
				continue
			}
			seenCPLs[c.ID] = true
			combined.CPLs = append(combined.CPLs, c)
		}
		combined.Subtitles = append(combined.Subtitles, d.Subtitles...)
	}

	for _, c := range combined.CPLs {
		c.ResolveRefs(combined.Assets)
	}
	return combined, nil
}

// recoverKindTag derives the FormatName "{t}" tag a missing asset map entry
// would have been written with, from its PKL type string, when the exact
// tag the original writer used cannot be recovered from the PKL alone.
func recoverKindTag(pklType string) string {
	base := pkl.StripTypeParam(pklType)
	if i := strings.LastIndex(base, "/"); i >= 0 {
		return base[i+1:]
	}
	return base
}

// Recover re-associates packing-list entries left orphaned by a write that
// crashed after the packing list was flushed but before the asset map was:
// Write flushes the asset map last, so it is the file a crash tears. For
// every entry present in one of pkls but absent
// from am, Recover adds a row pointing at the path nameFormat would have
// produced for that id, and reports how many rows it added. Callers that
// wrote with a non-default WriteOptions.NameFormat must pass the same
// format here, or the recovered paths will not match the files on disk.
func Recover(pkls []*pkl.PKL, am *pkl.AssetMap, nameFormat string) (int, error) {
	recovered := 0
	for _, p := range pkls {
		if _, ok := am.Find(p.ID); !ok {
			name := FormatName(nameFormat, "pkl", p.ID.String())
			if err := am.Add(pkl.AssetMapEntry{AssetID: p.ID, Path: name, IsPackingList: true}); err != nil {
				return recovered, err
			}
			recovered++
		}
		for _, entry := range p.Entries {
			if _, ok := am.Find(entry.AssetID); ok {
				continue
			}
			name := FormatName(nameFormat, recoverKindTag(entry.Type), entry.AssetID.String())
			if err := am.Add(pkl.AssetMapEntry{AssetID: entry.AssetID, Path: name}); err != nil {
				return recovered, err
			}
			recovered++
		}
	}
	return recovered, nil
}
