package verify

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rendiffdev/dcp/assets"
	"github.com/rendiffdev/dcp/certs"
	"github.com/rendiffdev/dcp/cpl"
	"github.com/rendiffdev/dcp/dcp"
	"github.com/rendiffdev/dcp/ids"
	"github.com/rendiffdev/dcp/internal/mxfkit"
	"github.com/rendiffdev/dcp/notes"
	"github.com/rendiffdev/dcp/subtitle"
	"github.com/rendiffdev/dcp/xmlio"
)

// buildDCP writes a minimal single-reel, single-picture, single-sound
// SMPTE DCP to a fresh temp directory and loads it back, for tests that
// want a realistic *dcp.DCP graph without a real MXF backend.
func buildDCP(t *testing.T, customize func(c *cpl.CPL, reel *cpl.Reel, picturePath, soundPath string)) *dcp.DCP {
	t.Helper()
	dir := t.TempDir()
	src := ids.NewDeterministic()

	picturePath := filepath.Join(dir, "picture.mxf")
	soundPath := filepath.Join(dir, "sound.mxf")
	if err := os.WriteFile(picturePath, []byte("fake picture essence"), 0o644); err != nil {
		t.Fatalf("write fake picture essence: %v", err)
	}
	if err := os.WriteFile(soundPath, []byte("fake sound essence"), 0o644); err != nil {
		t.Fatalf("write fake sound essence: %v", err)
	}

	pictureID := src.New()
	soundID := src.New()
	editRate, _ := ids.NewFraction(24, 1)
	picture := assets.NewPictureAsset(pictureID, picturePath, mxfkit.PictureHeader{
		Header:    mxfkit.Header{EditRate: editRate, IntrinsicDuration: 24},
		Width:     1998,
		Height:    1080,
		FrameRate: editRate,
	})
	sound := assets.NewSoundAsset(soundID, soundPath, mxfkit.SoundHeader{
		Header:       mxfkit.Header{EditRate: editRate, IntrinsicDuration: 24},
		ChannelCount: 2,
		SampleRate:   48000,
		Language:     "en",
	})

	c := cpl.New(src.New(), assets.StandardSMPTE)
	c.ContentTitleText = "TEST-FEATURE_FTR-1_F_XX-XX_51_2K_20260101_ABC_SMPTE_OV"
	c.AnnotationText = c.ContentTitleText
	c.ContentKind = cpl.ContentKind{Name: "feature"}
	c.ContentVersions = []cpl.ContentVersion{{ID: src.New(), Label: "TEST-FEATURE_1"}}

	reel := cpl.NewReel(src.New())
	reel.MainPicture = &cpl.Reference{AssetID: pictureID, Duration: 24, IntrinsicDuration: 24, Hash: "x"}
	reel.MainSound = &cpl.Reference{AssetID: soundID, Duration: 24, IntrinsicDuration: 24, Hash: "y"}
	c.AddReel(reel)

	if customize != nil {
		customize(c, reel, picturePath, soundPath)
	}

	d := &dcp.DCP{
		Root:     dir,
		Standard: assets.StandardSMPTE,
		CPLs:     []*cpl.CPL{c},
		Assets:   []assets.Asset{picture, sound},
	}

	opts := dcp.WriteOptions{
		Issuer:    "verify-test",
		Creator:   "verify-test",
		IssueDate: ids.Now(0),
		IDSource:  src,
	}
	if err := dcp.Write(d, dir, opts); err != nil {
		t.Fatalf("dcp.Write failed: %v", err)
	}

	prober := mxfkit.NewFakeProber()
	prober.Kinds[picturePath] = mxfkit.EssencePicture
	prober.Pictures[picturePath] = mxfkit.PictureHeader{
		Header:    mxfkit.Header{EditRate: editRate, IntrinsicDuration: 24},
		Width:     1998,
		Height:    1080,
		FrameRate: editRate,
	}
	prober.Kinds[soundPath] = mxfkit.EssenceSound
	prober.Sounds[soundPath] = mxfkit.SoundHeader{
		Header:       mxfkit.Header{EditRate: editRate, IntrinsicDuration: 24},
		ChannelCount: 2,
		SampleRate:   48000,
		Language:     "en",
	}

	sink := notes.NewCollector()
	loaded, err := dcp.Load(dir, prober, sink)
	if err != nil {
		t.Fatalf("dcp.Load failed: %v", err)
	}
	return loaded
}

func TestVerifyDCPCleanPackageHasNoErrorNotes(t *testing.T) {
	d := buildDCP(t, nil)
	sink := notes.NewCollector()
	VerifyDCP(d, Options{}, sink)
	for _, n := range sink.All() {
		if n.Severity == notes.SeverityError {
			t.Fatalf("unexpected error-severity note on a clean package: %s", n)
		}
	}
}

func TestVerifyDCPFlagsMissingAnnotationText(t *testing.T) {
	d := buildDCP(t, func(c *cpl.CPL, reel *cpl.Reel, picturePath, soundPath string) {
		c.AnnotationText = ""
	})
	sink := notes.NewCollector()
	VerifyDCP(d, Options{}, sink)
	assertHasVerifyCode(t, sink.All(), notes.CodeMissingCPLAnnotationText)
}

func TestVerifyDCPFlagsInvalidSoundSampleRate(t *testing.T) {
	d := buildDCP(t, nil)
	// Force the loaded sound asset's sample rate to an invalid value,
	// since the probed header is fixed by buildDCP's FakeProber setup.
	for _, a := range d.Assets {
		if s, ok := a.(*assets.SoundAsset); ok {
			s.SampleRate = 44100
		}
	}
	sink := notes.NewCollector()
	VerifyDCP(d, Options{}, sink)
	assertHasVerifyCode(t, sink.All(), notes.CodeInvalidSoundFrameRate)
}

func TestVerifyDCPFlagsInvalidPictureSize(t *testing.T) {
	d := buildDCP(t, nil)
	for _, a := range d.Assets {
		if p, ok := a.(*assets.PictureAsset); ok {
			p.Width, p.Height = 1920, 1080
		}
	}
	sink := notes.NewCollector()
	VerifyDCP(d, Options{}, sink)
	assertHasVerifyCode(t, sink.All(), notes.CodeInvalidPictureSizeInPixels)
}

func TestVerifyDCPFlags4KStereoPicture(t *testing.T) {
	d := buildDCP(t, nil)
	for _, a := range d.Assets {
		if p, ok := a.(*assets.PictureAsset); ok {
			p.Width, p.Height = 4096, 1716
			p.Stereo = true
		}
	}
	sink := notes.NewCollector()
	VerifyDCP(d, Options{}, sink)
	assertHasVerifyCode(t, sink.All(), notes.CodeInvalidPictureAssetResolutionFor3D)
}

func TestVerifyDCPFlagsMismatchedCPLHash(t *testing.T) {
	d := buildDCP(t, nil)
	// Corrupt the CPL file in place so its content no longer matches the
	// hash the PKL recorded at write time.
	amEntry, ok := d.AssetMap.Find(d.CPLs[0].ID)
	if !ok {
		t.Fatal("expected an asset map entry for the CPL")
	}
	cplPath := filepath.Join(d.Root, amEntry.Path)
	data, err := os.ReadFile(cplPath)
	if err != nil {
		t.Fatalf("read CPL file: %v", err)
	}
	if err := os.WriteFile(cplPath, append(data, []byte("<!-- tampered -->")...), 0o644); err != nil {
		t.Fatalf("rewrite CPL file: %v", err)
	}
	sink := notes.NewCollector()
	VerifyDCP(d, Options{}, sink)
	assertHasVerifyCode(t, sink.All(), notes.CodeMismatchedCPLHashes)
}

func TestVerifyDCPFlagsMalformedReleaseTerritory(t *testing.T) {
	d := buildDCP(t, func(c *cpl.CPL, reel *cpl.Reel, picturePath, soundPath string) {
		c.ReleaseTerritory = "NOTAREGION"
	})
	sink := notes.NewCollector()
	VerifyDCP(d, Options{}, sink)
	assertHasVerifyCode(t, sink.All(), notes.CodeInvalidLanguage)
}

func TestRunWithLoadErrorsReportsFailedReadAndError(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "does-not-exist")
	found, err := RunWithLoadErrors([]string{missing}, Options{})
	if err == nil {
		t.Fatal("expected a load error for a missing directory")
	}
	assertHasVerifyCode(t, found, notes.CodeFailedRead)
}

func TestRunWithLoadErrorsContinuesPastAFailedDirectory(t *testing.T) {
	missingA := filepath.Join(t.TempDir(), "does-not-exist-a")
	missingB := filepath.Join(t.TempDir(), "does-not-exist-b")
	found, err := RunWithLoadErrors([]string{missingA, missingB}, Options{})
	if err == nil {
		t.Fatal("expected a load error from both missing directories")
	}
	failedReads := 0
	for _, n := range found {
		if n.Code == notes.CodeFailedRead {
			failedReads++
		}
	}
	if failedReads != 2 {
		t.Fatalf("expected 2 FAILED_READ notes, one per directory, got %d (%v)", failedReads, found)
	}
}

func TestVerifyDCPFlagsInteropStandard(t *testing.T) {
	d := buildDCP(t, nil)
	d.Standard = assets.StandardInterop
	sink := notes.NewCollector()
	VerifyDCP(d, Options{}, sink)
	assertHasVerifyCode(t, sink.All(), notes.CodeInvalidStandard)
}

func TestVerifyDCPFlagsMissingMarkersInFeatureReel(t *testing.T) {
	d := buildDCP(t, nil)
	sink := notes.NewCollector()
	VerifyDCP(d, Options{}, sink)
	assertHasVerifyCode(t, sink.All(), notes.CodeMissingFFECInFeature)
	assertHasVerifyCode(t, sink.All(), notes.CodeMissingFFMCInFeature)
}

func TestVerifyDCPFlagsMissingCompositionMetadata(t *testing.T) {
	d := buildDCP(t, nil)
	sink := notes.NewCollector()
	VerifyDCP(d, Options{}, sink)
	assertHasVerifyCode(t, sink.All(), notes.CodeMissingCPLMetadata)
}

func TestVerifyDCPFlagsMissingHash(t *testing.T) {
	d := buildDCP(t, func(c *cpl.CPL, reel *cpl.Reel, picturePath, soundPath string) {
		reel.MainPicture.Hash = ""
	})
	sink := notes.NewCollector()
	VerifyDCP(d, Options{}, sink)
	assertHasVerifyCode(t, sink.All(), notes.CodeMissingHash)
}

func TestVerifyDCPFlagsInvalidReferenceDuration(t *testing.T) {
	d := buildDCP(t, func(c *cpl.CPL, reel *cpl.Reel, picturePath, soundPath string) {
		reel.MainPicture.Duration = 12
		reel.MainPicture.IntrinsicDuration = 12
	})
	sink := notes.NewCollector()
	VerifyDCP(d, Options{}, sink)
	assertHasVerifyCode(t, sink.All(), notes.CodeInvalidDuration)
	assertHasVerifyCode(t, sink.All(), notes.CodeInvalidIntrinsicDuration)
}

func TestVerifyDCPFlagsInvalidPictureFrameRateFor4K(t *testing.T) {
	d := buildDCP(t, nil)
	for _, a := range d.Assets {
		if p, ok := a.(*assets.PictureAsset); ok {
			p.Width, p.Height = 4096, 1716
			p.FrameRate, _ = ids.NewFraction(48, 1)
		}
	}
	sink := notes.NewCollector()
	VerifyDCP(d, Options{}, sink)
	assertHasVerifyCode(t, sink.All(), notes.CodeInvalidPictureFrameRateFor4K)
}

// buildEncryptedDCP writes and loads a single-reel SMPTE DCP whose picture
// asset's header declares encryption, signing the CPL with signer when one
// is supplied.
func buildEncryptedDCP(t *testing.T, signer *xmlio.Signer) *dcp.DCP {
	t.Helper()
	dir := t.TempDir()
	src := ids.NewDeterministic()

	picturePath := filepath.Join(dir, "picture.mxf")
	soundPath := filepath.Join(dir, "sound.mxf")
	if err := os.WriteFile(picturePath, []byte("fake picture essence"), 0o644); err != nil {
		t.Fatalf("write fake picture essence: %v", err)
	}
	if err := os.WriteFile(soundPath, []byte("fake sound essence"), 0o644); err != nil {
		t.Fatalf("write fake sound essence: %v", err)
	}

	pictureID := src.New()
	soundID := src.New()
	editRate, _ := ids.NewFraction(24, 1)
	pictureHeader := mxfkit.PictureHeader{
		Header:    mxfkit.Header{EditRate: editRate, IntrinsicDuration: 24, Encrypted: true, KeyID: src.New()},
		Width:     1998,
		Height:    1080,
		FrameRate: editRate,
	}
	soundHeader := mxfkit.SoundHeader{
		Header:       mxfkit.Header{EditRate: editRate, IntrinsicDuration: 24},
		ChannelCount: 2,
		SampleRate:   48000,
		Language:     "en",
	}
	picture := assets.NewPictureAsset(pictureID, picturePath, pictureHeader)
	sound := assets.NewSoundAsset(soundID, soundPath, soundHeader)

	c := cpl.New(src.New(), assets.StandardSMPTE)
	c.ContentTitleText = "TEST-FEATURE_FTR-1_F_XX-XX_51_2K_20260101_ABC_SMPTE_OV"
	c.AnnotationText = c.ContentTitleText
	c.ContentKind = cpl.ContentKind{Name: "feature"}

	reel := cpl.NewReel(src.New())
	reel.MainPicture = &cpl.Reference{AssetID: pictureID, Duration: 24, IntrinsicDuration: 24, Hash: "x"}
	reel.MainSound = &cpl.Reference{AssetID: soundID, Duration: 24, IntrinsicDuration: 24, Hash: "y"}
	c.AddReel(reel)

	d := &dcp.DCP{
		Root:     dir,
		Standard: assets.StandardSMPTE,
		CPLs:     []*cpl.CPL{c},
		Assets:   []assets.Asset{picture, sound},
	}

	opts := dcp.WriteOptions{
		Signer:    signer,
		Issuer:    "verify-test",
		Creator:   "verify-test",
		IssueDate: ids.Now(0),
		IDSource:  src,
	}
	if err := dcp.Write(d, dir, opts); err != nil {
		t.Fatalf("dcp.Write failed: %v", err)
	}

	prober := mxfkit.NewFakeProber()
	prober.Kinds[picturePath] = mxfkit.EssencePicture
	prober.Pictures[picturePath] = pictureHeader
	prober.Kinds[soundPath] = mxfkit.EssenceSound
	prober.Sounds[soundPath] = soundHeader

	sink := notes.NewCollector()
	loaded, err := dcp.Load(dir, prober, sink)
	if err != nil {
		t.Fatalf("dcp.Load failed: %v", err)
	}
	return loaded
}

// testSigningChain builds a self-signed RSA certificate chain suitable for
// xmlio.NewSigner, the same way xmlio's own signature round-trip test does.
func testSigningChain(t *testing.T) *certs.Chain {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	template := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "Test Signer"},
		NotBefore:             time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		NotAfter:              time.Date(2040, 1, 1, 0, 0, 0, 0, time.UTC),
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageDigitalSignature,
		BasicConstraintsValid: true,
		IsCA:                  true,
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("create certificate: %v", err)
	}
	cert, err := certs.Parse(der)
	if err != nil {
		t.Fatalf("parse certificate: %v", err)
	}
	chain := certs.NewChain(cert)
	chain.SetKey(key)
	return chain
}

func TestVerifyDCPFlagsUnsignedEncryptedCPL(t *testing.T) {
	d := buildEncryptedDCP(t, nil)
	sink := notes.NewCollector()
	VerifyDCP(d, Options{}, sink)
	assertHasVerifyCode(t, sink.All(), notes.CodeUnsignedCPLWithEncryptedContent)
	assertHasVerifyCode(t, sink.All(), notes.CodeUnsignedPKLWithEncryptedContent)
}

func TestVerifyDCPAcceptsSignedEncryptedCPLAgainstTrustedRoot(t *testing.T) {
	chain := testSigningChain(t)
	signer, err := xmlio.NewSigner(chain)
	if err != nil {
		t.Fatalf("NewSigner failed: %v", err)
	}
	d := buildEncryptedDCP(t, signer)

	sink := notes.NewCollector()
	VerifyDCP(d, Options{TrustedRoots: chain.Certificates()}, sink)

	for _, n := range sink.All() {
		if n.Code == notes.CodeUnsignedCPLWithEncryptedContent {
			t.Fatalf("unexpected %s on a signed CPL", n.Code)
		}
		if n.Severity == notes.SeverityError && n.Code == notes.CodeInvalidXML {
			t.Fatalf("unexpected signature verification failure: %s", n)
		}
	}
}

func TestVerifyDCPFlagsSignatureNotMatchingTrustedRoot(t *testing.T) {
	chain := testSigningChain(t)
	signer, err := xmlio.NewSigner(chain)
	if err != nil {
		t.Fatalf("NewSigner failed: %v", err)
	}
	d := buildEncryptedDCP(t, signer)

	untrusted := testSigningChain(t)
	sink := notes.NewCollector()
	VerifyDCP(d, Options{TrustedRoots: untrusted.Certificates()}, sink)
	assertHasVerifyCode(t, sink.All(), notes.CodeInvalidXML)
}

func mustInteropTime(t *testing.T, seconds float64) ids.Time {
	t.Helper()
	totalTicks := int64(seconds * ids.InteropTicksPerSecond)
	hours := int(totalTicks / (3600 * ids.InteropTicksPerSecond))
	rem := totalTicks % (3600 * ids.InteropTicksPerSecond)
	minutes := int(rem / (60 * ids.InteropTicksPerSecond))
	rem %= 60 * ids.InteropTicksPerSecond
	secs := int(rem / ids.InteropTicksPerSecond)
	ticks := int(rem % ids.InteropTicksPerSecond)
	tm, err := ids.New(hours, minutes, secs, ticks, ids.InteropTicksPerSecond)
	if err != nil {
		t.Fatalf("build interop time: %v", err)
	}
	return tm
}

func TestCheckSubtitleLeadInAndSpacingFlagsEarlyFirstText(t *testing.T) {
	sub := subtitle.New(subtitle.DialectInterop, ids.NewDeterministic().New(), "en")
	sub.Cues = []subtitle.Cue{
		{Timing: subtitle.Timing{Start: mustInteropTime(t, 1), End: mustInteropTime(t, 3)}, Region: "bottom", Text: "early line"},
	}
	sink := notes.NewCollector()
	checkSubtitleLeadInAndSpacing(sub, "subtitle.xml", sink)
	assertHasVerifyCode(t, sink.All(), notes.CodeInvalidSubtitleFirstTextTime)
}

func TestCheckSubtitleLeadInAndSpacingFlagsShortDurationAndTightSpacing(t *testing.T) {
	sub := subtitle.New(subtitle.DialectInterop, ids.NewDeterministic().New(), "en")
	sub.Cues = []subtitle.Cue{
		{Timing: subtitle.Timing{Start: mustInteropTime(t, 5), End: mustInteropTime(t, 5.1)}, Region: "bottom", Text: "short cue"},
		{Timing: subtitle.Timing{Start: mustInteropTime(t, 5.11), End: mustInteropTime(t, 6)}, Region: "bottom", Text: "tight gap"},
	}
	sink := notes.NewCollector()
	checkSubtitleLeadInAndSpacing(sub, "subtitle.xml", sink)
	assertHasVerifyCode(t, sink.All(), notes.CodeInvalidSubtitleDuration)
	assertHasVerifyCode(t, sink.All(), notes.CodeInvalidSubtitleSpacing)
}

func TestCheckSubtitleCuesFlagsOverlongLine(t *testing.T) {
	sub := subtitle.New(subtitle.DialectInterop, ids.NewDeterministic().New(), "en")
	sub.Cues = []subtitle.Cue{
		{
			Timing: subtitle.Timing{Start: mustInteropTime(t, 5), End: mustInteropTime(t, 8)},
			Region: "bottom",
			Text:   "this subtitle line is deliberately much too long to fit on one line of a cinema screen",
		},
	}
	sink := notes.NewCollector()
	checkSubtitleCues(sub, "subtitle.xml", sink)
	assertHasVerifyCode(t, sink.All(), notes.CodeInvalidSubtitleLineLength)
}

func TestCheckSubtitleCuesFlagsTooManySimultaneousLinesInOneRegion(t *testing.T) {
	sub := subtitle.New(subtitle.DialectInterop, ids.NewDeterministic().New(), "en")
	for i := 0; i < 4; i++ {
		start := 5.0 + float64(i)*0.1
		sub.Cues = append(sub.Cues, subtitle.Cue{
			Timing: subtitle.Timing{Start: mustInteropTime(t, start), End: mustInteropTime(t, start+3)},
			Region: "bottom",
			Text:   "line",
		})
	}
	sink := notes.NewCollector()
	checkSubtitleCues(sub, "subtitle.xml", sink)
	assertHasVerifyCode(t, sink.All(), notes.CodeInvalidSubtitleLineCount)
}

func TestCheckSubtitleLeadInAndSpacingFlagsMissingLanguage(t *testing.T) {
	sub := subtitle.New(subtitle.DialectInterop, ids.NewDeterministic().New(), "")
	sink := notes.NewCollector()
	checkSubtitleLeadInAndSpacing(sub, "subtitle.xml", sink)
	assertHasVerifyCode(t, sink.All(), notes.CodeMissingSubtitleLanguage)
}

func TestCheckSubtitleCuesAcceptsALineUnderTheWarningThreshold(t *testing.T) {
	sub := subtitle.New(subtitle.DialectInterop, ids.NewDeterministic().New(), "en")
	sub.Cues = []subtitle.Cue{
		{
			Timing: subtitle.Timing{Start: mustInteropTime(t, 5), End: mustInteropTime(t, 8)},
			Region: "bottom",
			// 47 characters: under the 52-character warning threshold.
			Text: "a subtitle line of entirely unremarkable length",
		},
	}
	sink := notes.NewCollector()
	checkSubtitleCues(sub, "subtitle.xml", sink)
	for _, n := range sink.All() {
		if n.Code == notes.CodeInvalidSubtitleLineLength || n.Code == notes.CodeNearlyInvalidSubtitleLineLength {
			t.Fatalf("unexpected line-length note for a 47-character line: %v", n)
		}
	}
}

func TestCheckSubtitleCuesDoesNotFlagSequentialCuesSharingARegion(t *testing.T) {
	sub := subtitle.New(subtitle.DialectInterop, ids.NewDeterministic().New(), "en")
	for i := 0; i < 4; i++ {
		start := 5.0 + float64(i)*10
		sub.Cues = append(sub.Cues, subtitle.Cue{
			Timing: subtitle.Timing{Start: mustInteropTime(t, start), End: mustInteropTime(t, start+3)},
			Region: "bottom",
			Text:   "line",
		})
	}
	sink := notes.NewCollector()
	checkSubtitleCues(sub, "subtitle.xml", sink)
	for _, n := range sink.All() {
		if n.Code == notes.CodeInvalidSubtitleLineCount {
			t.Fatalf("unexpected line-count note for 4 sequential, non-overlapping cues: %v", n)
		}
	}
}

func TestCheckClosedCaptionCuesUsesTheThirtyTwoCharacterThreshold(t *testing.T) {
	sub := subtitle.New(subtitle.DialectInterop, ids.NewDeterministic().New(), "en")
	sub.Cues = []subtitle.Cue{
		{
			Timing: subtitle.Timing{Start: mustInteropTime(t, 5), End: mustInteropTime(t, 8)},
			Region: "bottom",
			// 34 characters: over the closed-caption limit, but under the
			// 52-character main-subtitle warning threshold.
			Text: "a line just over the caption limit",
		},
	}
	sink := notes.NewCollector()
	checkClosedCaptionCues(sub, "cc.xml", sink)
	assertHasVerifyCode(t, sink.All(), notes.CodeInvalidClosedCaptionLineLength)
}

func TestVerifyPKLsAndAssetMapFlagsMismatchedAnnotationAgainstContentTitle(t *testing.T) {
	d := buildDCP(t, nil)
	d.PKLs[0].AnnotationText = "a different title entirely"
	sink := notes.NewCollector()
	verifyPKLsAndAssetMap(d, sink)
	assertHasVerifyCode(t, sink.All(), notes.CodeMismatchedPKLAnnotationTextWithCPL)
}

func TestVerifyPKLsAndAssetMapAcceptsAgreementWithContentTitle(t *testing.T) {
	d := buildDCP(t, nil)
	d.PKLs[0].AnnotationText = d.CPLs[0].ContentTitleText
	sink := notes.NewCollector()
	verifyPKLsAndAssetMap(d, sink)
	for _, n := range sink.All() {
		if n.Code == notes.CodeMismatchedPKLAnnotationTextWithCPL {
			t.Fatalf("unexpected mismatch note when PKL annotation agrees with CPL content title: %v", n)
		}
	}
}

func TestCheckReelAssetDurationsFlagsMismatch(t *testing.T) {
	c := cpl.New(ids.NewDeterministic().New(), assets.StandardSMPTE)
	reel := cpl.NewReel(ids.NewDeterministic().New())
	picture := assets.NewPictureAsset(ids.NewDeterministic().New(), "picture.mxf", mxfkit.PictureHeader{})
	sound := assets.NewSoundAsset(ids.NewDeterministic().New(), "sound.mxf", mxfkit.SoundHeader{})
	reel.MainPicture = &cpl.Reference{Duration: 100}
	reel.MainPicture.SetResolved(picture)
	reel.MainSound = &cpl.Reference{Duration: 90}
	reel.MainSound.SetResolved(sound)
	c.AddReel(reel)

	sink := notes.NewCollector()
	checkReelAssetDurations(c, reel, sink)
	assertHasVerifyCode(t, sink.All(), notes.CodeMismatchedAssetDuration)
}

func TestCheckReelAssetDurationsIgnoresInteropCPLs(t *testing.T) {
	c := cpl.New(ids.NewDeterministic().New(), assets.StandardInterop)
	reel := cpl.NewReel(ids.NewDeterministic().New())
	picture := assets.NewPictureAsset(ids.NewDeterministic().New(), "picture.mxf", mxfkit.PictureHeader{})
	sound := assets.NewSoundAsset(ids.NewDeterministic().New(), "sound.mxf", mxfkit.SoundHeader{})
	reel.MainPicture = &cpl.Reference{Duration: 100}
	reel.MainPicture.SetResolved(picture)
	reel.MainSound = &cpl.Reference{Duration: 90}
	reel.MainSound.SetResolved(sound)
	c.AddReel(reel)

	sink := notes.NewCollector()
	checkReelAssetDurations(c, reel, sink)
	for _, n := range sink.All() {
		if n.Code == notes.CodeMismatchedAssetDuration {
			t.Fatalf("Interop CPLs should not be held to the shared-duration invariant: %v", n)
		}
	}
}

func TestCheckPictureFlagsNonIntegerFrameRate(t *testing.T) {
	rate, err := ids.NewFraction(24000, 1001)
	if err != nil {
		t.Fatalf("build fraction: %v", err)
	}
	p := assets.NewPictureAsset(ids.NewDeterministic().New(), "picture.mxf", mxfkit.PictureHeader{
		Width: 1998, Height: 1080, FrameRate: rate,
	})
	sink := notes.NewCollector()
	checkPicture(p, Options{}, sink)
	assertHasVerifyCode(t, sink.All(), notes.CodeInvalidPictureFrameRate)
}

func TestCheckPictureAcceptsAStandardFrameRate(t *testing.T) {
	rate, _ := ids.NewFraction(24, 1)
	p := assets.NewPictureAsset(ids.NewDeterministic().New(), "picture.mxf", mxfkit.PictureHeader{
		Width: 1998, Height: 1080, FrameRate: rate,
	})
	sink := notes.NewCollector()
	checkPicture(p, Options{}, sink)
	for _, n := range sink.All() {
		if n.Code == notes.CodeInvalidPictureFrameRate {
			t.Fatalf("unexpected frame-rate note for a standard 24fps picture: %v", n)
		}
	}
}

func timedTextAssetForTest(t *testing.T, language string, size int64) *assets.TimedTextAsset {
	t.Helper()
	path := filepath.Join(t.TempDir(), "subtitle.xml")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create fake timed-text file: %v", err)
	}
	defer f.Close()
	if err := f.Truncate(size); err != nil {
		t.Fatalf("size fake timed-text file: %v", err)
	}
	return assets.NewInteropSubtitleAsset(ids.NewDeterministic().New(), path, language)
}

func TestCheckTimedTextReferenceFlagsNonZeroEntryPoint(t *testing.T) {
	tt := timedTextAssetForTest(t, "en", 16)
	ref := &cpl.Reference{AssetID: tt.AssetID(), EntryPoint: 7}
	ref.SetResolved(tt)
	sink := notes.NewCollector()
	checkTimedTextReference(ref, false, sink)
	assertHasVerifyCode(t, sink.All(), notes.CodeIncorrectSubtitleEntryPoint)
}

func TestCheckTimedTextReferenceAcceptsAZeroEntryPoint(t *testing.T) {
	tt := timedTextAssetForTest(t, "en", 16)
	ref := &cpl.Reference{AssetID: tt.AssetID(), EntryPoint: 0}
	ref.SetResolved(tt)
	sink := notes.NewCollector()
	checkTimedTextReference(ref, false, sink)
	for _, n := range sink.All() {
		if n.Code == notes.CodeIncorrectSubtitleEntryPoint {
			t.Fatalf("unexpected entry-point note for a zero entry point: %v", n)
		}
	}
}

func TestCheckTimedTextReferenceFlagsOversizeFile(t *testing.T) {
	tt := timedTextAssetForTest(t, "en", maxTimedTextBytes+1)
	ref := &cpl.Reference{AssetID: tt.AssetID()}
	ref.SetResolved(tt)
	sink := notes.NewCollector()
	checkTimedTextReference(ref, false, sink)
	assertHasVerifyCode(t, sink.All(), notes.CodeInvalidTimedTextSizeInBytes)
}

func TestCheckMainSubtitleConsistencyFlagsMissingFromSomeReels(t *testing.T) {
	c := cpl.New(ids.NewDeterministic().New(), assets.StandardSMPTE)
	withSub := cpl.NewReel(ids.NewDeterministic().New())
	withSub.MainSubtitle = &cpl.Reference{}
	withSub.MainSubtitle.SetResolved(assets.NewInteropSubtitleAsset(ids.NewDeterministic().New(), "a.xml", "en"))
	withoutSub := cpl.NewReel(ids.NewDeterministic().New())
	c.AddReel(withSub)
	c.AddReel(withoutSub)

	sink := notes.NewCollector()
	checkMainSubtitleConsistency(c, sink)
	assertHasVerifyCode(t, sink.All(), notes.CodeMissingMainSubtitleFromSomeReels)
}

func TestCheckMainSubtitleConsistencyFlagsMismatchedLanguages(t *testing.T) {
	c := cpl.New(ids.NewDeterministic().New(), assets.StandardSMPTE)
	reelEN := cpl.NewReel(ids.NewDeterministic().New())
	reelEN.MainSubtitle = &cpl.Reference{}
	reelEN.MainSubtitle.SetResolved(assets.NewInteropSubtitleAsset(ids.NewDeterministic().New(), "en.xml", "en"))
	reelFR := cpl.NewReel(ids.NewDeterministic().New())
	reelFR.MainSubtitle = &cpl.Reference{}
	reelFR.MainSubtitle.SetResolved(assets.NewInteropSubtitleAsset(ids.NewDeterministic().New(), "fr.xml", "fr"))
	c.AddReel(reelEN)
	c.AddReel(reelFR)

	sink := notes.NewCollector()
	checkMainSubtitleConsistency(c, sink)
	assertHasVerifyCode(t, sink.All(), notes.CodeMismatchedSubtitleLanguages)
}

func TestCheckClosedCaptionAssetCountsFlagsMismatch(t *testing.T) {
	c := cpl.New(ids.NewDeterministic().New(), assets.StandardSMPTE)
	reelOne := cpl.NewReel(ids.NewDeterministic().New())
	reelOne.ClosedCaptions = []*cpl.Reference{{}, {}}
	reelTwo := cpl.NewReel(ids.NewDeterministic().New())
	reelTwo.ClosedCaptions = []*cpl.Reference{{}}
	c.AddReel(reelOne)
	c.AddReel(reelTwo)

	sink := notes.NewCollector()
	checkClosedCaptionAssetCounts(c, sink)
	assertHasVerifyCode(t, sink.All(), notes.CodeMismatchedClosedCaptionAssetCounts)
}

func TestCheckSubtitleOverlapsReelBoundaryFlagsACueRunningPastTheReel(t *testing.T) {
	sub := subtitle.New(subtitle.DialectInterop, ids.NewDeterministic().New(), "en")
	sub.Cues = []subtitle.Cue{
		{Timing: subtitle.Timing{Start: mustInteropTime(t, 1), End: mustInteropTime(t, 20)}, Region: "bottom", Text: "runs long"},
	}
	// A 10-second reel (the 250 ticks/sec Interop rate times 10 seconds,
	// 2500 ticks) is shorter than the cue's 20-second end.
	sink := notes.NewCollector()
	checkSubtitleOverlapsReelBoundary(sub, int64(10*ids.InteropTicksPerSecond), "reel-0", sink)
	assertHasVerifyCode(t, sink.All(), notes.CodeSubtitleOverlapsReelBoundary)
}

func TestCheckSubtitleOverlapsReelBoundaryAcceptsACueWithinTheReel(t *testing.T) {
	sub := subtitle.New(subtitle.DialectInterop, ids.NewDeterministic().New(), "en")
	sub.Cues = []subtitle.Cue{
		{Timing: subtitle.Timing{Start: mustInteropTime(t, 1), End: mustInteropTime(t, 5)}, Region: "bottom", Text: "fits"},
	}
	sink := notes.NewCollector()
	checkSubtitleOverlapsReelBoundary(sub, int64(10*ids.InteropTicksPerSecond), "reel-0", sink)
	for _, n := range sink.All() {
		if n.Code == notes.CodeSubtitleOverlapsReelBoundary {
			t.Fatalf("unexpected boundary-overlap note for a cue that fits within its reel: %v", n)
		}
	}
}

func assertHasVerifyCode(t *testing.T, found []notes.Note, code string) {
	t.Helper()
	for _, n := range found {
		if n.Code == code {
			return
		}
	}
	t.Fatalf("expected a %s note, got %v", code, found)
}
