package dcp

import (
	"testing"

	"github.com/rendiffdev/dcp/assets"
	"github.com/rendiffdev/dcp/cpl"
	"github.com/rendiffdev/dcp/ids"
	"github.com/rendiffdev/dcp/internal/mxfkit"
	"github.com/rendiffdev/dcp/pkl"
)

func TestCombineMergesAssetPoolsAndResolvesCrossPackageRefs(t *testing.T) {
	src := ids.NewDeterministic()

	pictureID := src.New()
	picture := assets.NewPictureAsset(pictureID, "/ov/picture.mxf", mxfkit.PictureHeader{})
	ov := &DCP{Standard: assets.StandardSMPTE, Assets: []assets.Asset{picture}}

	vfCPL := cpl.New(src.New(), assets.StandardSMPTE)
	vfCPL.ContentVersions = []cpl.ContentVersion{{ID: src.New(), Label: "VF"}}
	reel := cpl.NewReel(src.New())
	reel.MainPicture = &cpl.Reference{AssetID: pictureID, Duration: 24, IntrinsicDuration: 24}
	vfCPL.AddReel(reel)
	vf := &DCP{Standard: assets.StandardSMPTE, CPLs: []*cpl.CPL{vfCPL}}

	combined, err := Combine(ov, vf)
	if err != nil {
		t.Fatalf("Combine failed: %v", err)
	}
	if len(combined.Assets) != 1 || len(combined.CPLs) != 1 {
		t.Fatalf("expected 1 asset and 1 CPL, got %d assets %d CPLs", len(combined.Assets), len(combined.CPLs))
	}
	resolved, ok := combined.CPLs[0].Reels[0].MainPicture.Resolved()
	if !ok {
		t.Fatal("expected the VF CPL's picture reference to resolve against the OV asset pool")
	}
	if !resolved.AssetID().Equal(pictureID) {
		t.Fatal("resolved asset id mismatch")
	}
}

func TestCombineRejectsMixedStandards(t *testing.T) {
	a := &DCP{Standard: assets.StandardSMPTE}
	b := &DCP{Standard: assets.StandardInterop}
	if _, err := Combine(a, b); err == nil {
		t.Fatal("expected an error combining DCPs of different standards")
	}
}

func TestRecoverReassociatesOrphanedPKLEntries(t *testing.T) {
	src := ids.NewDeterministic()
	p := pkl.New(src.New(), "issuer", "creator", ids.Now(0))
	assetID := src.New()
	if err := p.Add(pkl.Entry{AssetID: assetID, Hash: "abc", Size: 10, Type: "application/mxf"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	am := pkl.NewAssetMap(src.New(), "issuer", "creator", ids.Now(0))

	n, err := Recover([]*pkl.PKL{p}, am, "{id}_{t}.xml")
	if err != nil {
		t.Fatalf("Recover failed: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 recovered entries (the PKL itself and its one asset), got %d", n)
	}
	if _, ok := am.Find(p.ID); !ok {
		t.Fatal("expected the packing list itself to be recovered into the asset map")
	}
	entry, ok := am.Find(assetID)
	if !ok {
		t.Fatal("expected the orphaned asset entry to be recovered")
	}
	if entry.Path != assetID.String()+"_mxf.xml" {
		t.Fatalf("unexpected recovered path: %q", entry.Path)
	}
}

func TestRecoverIsNoopWhenAssetMapAlreadyComplete(t *testing.T) {
	src := ids.NewDeterministic()
	p := pkl.New(src.New(), "issuer", "creator", ids.Now(0))
	assetID := src.New()
	if err := p.Add(pkl.Entry{AssetID: assetID, Hash: "abc", Size: 10, Type: "application/mxf"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	am := pkl.NewAssetMap(src.New(), "issuer", "creator", ids.Now(0))
	if err := am.Add(pkl.AssetMapEntry{AssetID: p.ID, Path: "pkl.xml", IsPackingList: true}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := am.Add(pkl.AssetMapEntry{AssetID: assetID, Path: "asset.mxf"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	n, err := Recover([]*pkl.PKL{p}, am, "{id}_{t}.xml")
	if err != nil {
		t.Fatalf("Recover failed: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected no recovered entries, got %d", n)
	}
}
