package assets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rendiffdev/dcp/ids"
	"github.com/rendiffdev/dcp/internal/mxfkit"
)

func TestBaseHashIsCachedAfterFirstCompute(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "asset.mxf")
	if err := os.WriteFile(path, []byte("hello world"), 0o644); err != nil {
		t.Fatalf("write test file: %v", err)
	}

	id := ids.NewDeterministic().New()
	base := NewBase(id, path)

	h1, err := base.Hash()
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if h1 == "" {
		t.Fatal("expected non-empty hash")
	}

	// Mutate the underlying file; the cached hash must not change.
	if err := os.WriteFile(path, []byte("goodbye"), 0o644); err != nil {
		t.Fatalf("rewrite test file: %v", err)
	}
	h2, err := base.Hash()
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if h1 != h2 {
		t.Fatal("expected cached hash to be stable across file mutation")
	}
}

func TestPKLTypeDiffersBetweenInteropAndSMPTE(t *testing.T) {
	interopPicture := PKLType(KindMonoPicture, StandardInterop)
	smptePicture := PKLType(KindMonoPicture, StandardSMPTE)
	if interopPicture == smptePicture {
		t.Fatal("expected Interop and SMPTE picture PKL types to differ")
	}
	if interopPicture != "application/mxf;asdcpKind=Picture" {
		t.Errorf("got %s", interopPicture)
	}
}

func TestPictureAssetKindReflectsStereoFlag(t *testing.T) {
	id := ids.NewDeterministic().New()
	rate, _ := ids.NewFraction(24, 1)
	mono := NewPictureAsset(id, "", mxfkit.PictureHeader{Width: 2048, Height: 858, FrameRate: rate})
	if mono.Kind() != KindMonoPicture {
		t.Fatalf("expected mono kind, got %v", mono.Kind())
	}

	stereo := NewPictureAsset(id, "", mxfkit.PictureHeader{
		Header: mxfkit.Header{Stereoscopic: true},
		Width:  2048, Height: 858, FrameRate: rate,
	})
	if stereo.Kind() != KindStereoPicture {
		t.Fatalf("expected stereo kind, got %v", stereo.Kind())
	}
}

func TestTimedTextValidateIDTripleRejectsViolations(t *testing.T) {
	src := ids.NewDeterministic()
	id, resourceID, xmlID := src.New(), src.New(), src.New()

	t1 := NewSMPTETimedTextAsset(id, "", mxfkit.TimedTextHeader{ResourceID: resourceID, XMLID: resourceID}, "en")
	if err := t1.ValidateIDTriple(); err != nil {
		t.Fatalf("expected valid id triple, got %v", err)
	}

	t2 := NewSMPTETimedTextAsset(id, "", mxfkit.TimedTextHeader{ResourceID: id, XMLID: id}, "en")
	if err := t2.ValidateIDTriple(); err == nil {
		t.Fatal("expected error when asset id equals resource id")
	}

	t3 := NewSMPTETimedTextAsset(id, "", mxfkit.TimedTextHeader{ResourceID: resourceID, XMLID: xmlID}, "en")
	if err := t3.ValidateIDTriple(); err == nil {
		t.Fatal("expected error when resource id differs from xml id")
	}
}

func TestEqualDetectsKindMismatch(t *testing.T) {
	id := ids.NewDeterministic().New()
	picture := NewPictureAsset(id, "", mxfkit.PictureHeader{})
	font := NewFontAsset(id, "")

	eq, err := Equal(picture, font, DefaultEqualityOptions())
	if err != nil {
		t.Fatalf("Equal failed: %v", err)
	}
	if eq {
		t.Fatal("expected assets of different kinds to be unequal")
	}
}

func TestSoundEqualToleratesSampleRateWithinBound(t *testing.T) {
	id := ids.NewDeterministic().New()
	a := NewSoundAsset(id, "", mxfkit.SoundHeader{ChannelCount: 6, SampleRate: 48000, Language: "en"})
	b := NewSoundAsset(id, "", mxfkit.SoundHeader{ChannelCount: 6, SampleRate: 48010, Language: "en"})

	opts := EqualityOptions{MaxAudioSampleError: 20, AllowHashesToDiffer: true}
	eq := soundEqual(a, b, opts)
	if !eq {
		t.Fatal("expected sample rates within tolerance to compare equal")
	}

	opts.MaxAudioSampleError = 5
	if soundEqual(a, b, opts) {
		t.Fatal("expected sample rates outside tolerance to compare unequal")
	}
}
