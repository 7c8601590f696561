package dcp

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rendiffdev/dcp/assets"
	"github.com/rendiffdev/dcp/cpl"
	"github.com/rendiffdev/dcp/ids"
	"github.com/rendiffdev/dcp/internal/mxfkit"
	"github.com/rendiffdev/dcp/notes"
)

// buildWrittenDCP writes a minimal single-reel, single-picture SMPTE DCP to
// a fresh temp directory and returns its path plus the ids it used.
func buildWrittenDCP(t *testing.T) (dir string, pictureID ids.Identifier) {
	t.Helper()
	dir = t.TempDir()

	src := ids.NewDeterministic()
	picturePath := filepath.Join(dir, "picture.mxf")
	if err := os.WriteFile(picturePath, []byte("fake picture essence"), 0o644); err != nil {
		t.Fatalf("write fake essence: %v", err)
	}

	pictureID = src.New()
	picture := assets.NewPictureAsset(pictureID, picturePath, mxfkit.PictureHeader{})

	c := cpl.New(src.New(), assets.StandardSMPTE)
	c.ContentTitleText = "TEST-FEATURE_FTR-1_F_XX-XX_51_2K_20260101_ABC_SMPTE_OV"
	c.ContentKind = cpl.ContentKind{Name: "feature"}
	c.ContentVersions = []cpl.ContentVersion{{ID: src.New(), Label: "TEST-FEATURE_1"}}

	reel := cpl.NewReel(src.New())
	reel.MainPicture = &cpl.Reference{AssetID: pictureID, Duration: 24, IntrinsicDuration: 24}
	c.AddReel(reel)

	d := &DCP{Root: dir, Standard: assets.StandardSMPTE, CPLs: []*cpl.CPL{c}, Assets: []assets.Asset{picture}}

	opts := WriteOptions{
		Issuer:    "dcp-test",
		Creator:   "dcp-test",
		IssueDate: ids.Now(0),
		IDSource:  src,
	}
	if err := Write(d, dir, opts); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	return dir, pictureID
}

func TestWriteThenLoadRoundTrips(t *testing.T) {
	dir, pictureID := buildWrittenDCP(t)

	prober := mxfkit.NewFakeProber()
	prober.Kinds[filepath.Join(dir, "picture.mxf")] = mxfkit.EssencePicture
	prober.Pictures[filepath.Join(dir, "picture.mxf")] = mxfkit.PictureHeader{}

	sink := notes.NewCollector()
	loaded, err := Load(dir, prober, sink)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded.CPLs) != 1 {
		t.Fatalf("expected 1 CPL, got %d", len(loaded.CPLs))
	}
	if len(loaded.Assets) != 1 {
		t.Fatalf("expected 1 asset, got %d", len(loaded.Assets))
	}
	if !loaded.Assets[0].AssetID().Equal(pictureID) {
		t.Fatal("expected loaded picture asset id to match what was written")
	}
	reel := loaded.CPLs[0].Reels[0]
	if reel.MainPicture == nil {
		t.Fatal("expected main picture reference to survive round trip")
	}
	resolved, ok := reel.MainPicture.Resolved()
	if !ok {
		t.Fatal("expected main picture reference to resolve against loaded assets")
	}
	if !resolved.AssetID().Equal(pictureID) {
		t.Fatal("resolved asset id mismatch")
	}
	for _, n := range sink.All() {
		if n.Severity >= notes.SeverityError {
			t.Fatalf("unexpected error-severity note on a clean round trip: %s", n)
		}
	}
}

func TestLoadEmitsMissingAssetNoteForDanglingAssetMapEntry(t *testing.T) {
	dir, _ := buildWrittenDCP(t)
	if err := os.Remove(filepath.Join(dir, "picture.mxf")); err != nil {
		t.Fatalf("remove essence file: %v", err)
	}

	prober := mxfkit.NewFakeProber()
	sink := notes.NewCollector()
	if _, err := Load(dir, prober, sink); err != nil {
		t.Fatalf("Load should tolerate a missing essence file, got error: %v", err)
	}

	counts := sink.CountByCode()
	if counts[notes.CodeMissingAsset] == 0 {
		t.Fatalf("expected a %s note, got %+v", notes.CodeMissingAsset, counts)
	}
}

func TestLoadRejectsMissingAssetMap(t *testing.T) {
	dir := t.TempDir()
	prober := mxfkit.NewFakeProber()
	sink := notes.NewCollector()
	if _, err := Load(dir, prober, sink); err == nil {
		t.Fatal("expected an error loading a directory with no asset map")
	}
}

func TestWriteRejectsEmptyDCP(t *testing.T) {
	dir := t.TempDir()
	d := &DCP{Root: dir, Standard: assets.StandardSMPTE}
	opts := WriteOptions{IDSource: ids.NewDeterministic(), IssueDate: ids.Now(0)}
	if err := Write(d, dir, opts); err == nil {
		t.Fatal("expected an error writing a DCP with no CPLs")
	}
}

func TestWriteRejectsMixedStandards(t *testing.T) {
	dir := t.TempDir()
	src := ids.NewDeterministic()
	smpte := cpl.New(src.New(), assets.StandardSMPTE)
	smpte.ContentVersions = []cpl.ContentVersion{{ID: src.New(), Label: "A"}}
	interop := cpl.New(src.New(), assets.StandardInterop)
	interop.ContentVersions = []cpl.ContentVersion{{ID: src.New(), Label: "B"}}

	d := &DCP{Root: dir, CPLs: []*cpl.CPL{smpte, interop}}
	opts := WriteOptions{IDSource: src, IssueDate: ids.Now(0)}
	if err := Write(d, dir, opts); err == nil {
		t.Fatal("expected an error writing CPLs of mixed standards together")
	}
}
