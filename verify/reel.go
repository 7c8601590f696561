package verify

import (
	"github.com/rendiffdev/dcp/assets"
	"github.com/rendiffdev/dcp/cpl"
	"github.com/rendiffdev/dcp/ids"
	"github.com/rendiffdev/dcp/jp2k"
	"github.com/rendiffdev/dcp/notes"
)

// Picture sizes and their allowed frame rates per the DCI profile:
// 1998x1080, 2048x858, 3996x2160, and 4096x1716.
var allowedPictureSizes = map[[2]int][]int{
	{1998, 1080}: {24, 25, 48},
	{2048, 858}:  {24, 25, 48},
	{3996, 2160}: {24},
	{4096, 1716}: {24},
}

const (
	minDurationSeconds        = 1
	soundSampleRate           = 48000
	peakPictureBitsPerSecond  = 250_000_000
	warnPictureBitsPerSecond  = 230_000_000
)

// validPictureFrameRates is the DCI profile's general frame-rate validity
// set, checked independently of whether a given picture size permits that
// rate at all (checkPicture's per-size check).
var validPictureFrameRates = map[int]bool{24: true, 25: true, 30: true, 48: true, 50: true, 60: true, 96: true}

// verifyReel runs stage 4: the checks applying to one reel
// and its resolved essence assets.
func verifyReel(c *cpl.CPL, reel *cpl.Reel, opts Options, sink notes.Sink) {
	for _, ref := range reel.AllReferences() {
		resolved, ok := ref.Resolved()
		if !ok {
			continue
		}
		if !ref.HasHash() {
			sink.Add(notes.Note{
				Code:     notes.CodeMissingHash,
				Severity: notes.SeverityWarning,
				Message:  "reel reference has no recorded hash",
				Path:     resolved.FilePath(),
			})
		}
		checkDuration(ref, resolved, sink)
	}

	checkReelAssetDurations(c, reel, sink)

	if pic := mainPictureAsset(reel); pic != nil {
		checkPicture(pic, opts, sink)
	}
	if snd := mainSoundAsset(reel); snd != nil {
		checkSound(snd, sink)
	}
}

// checkReelAssetDurations enforces SMPTE's "one reel, one duration"
// invariant: every resolved essence reference within a SMPTE reel must
// carry the same Duration. Interop carries no such requirement.
func checkReelAssetDurations(c *cpl.CPL, reel *cpl.Reel, sink notes.Sink) {
	if c.Standard != assets.StandardSMPTE {
		return
	}
	var want int64
	haveWant := false
	for _, ref := range reel.AllReferences() {
		if _, ok := ref.Resolved(); !ok {
			continue
		}
		if !haveWant {
			want = ref.Duration
			haveWant = true
			continue
		}
		if ref.Duration != want {
			sink.Add(notes.Note{
				Code:     notes.CodeMismatchedAssetDuration,
				Severity: notes.SeverityBv21Error,
				Message:  "reel's assets do not share the same duration",
				Path:     reel.ID.String(),
			})
			return
		}
	}
}

func mainPictureAsset(reel *cpl.Reel) *assets.PictureAsset {
	if reel.MainPicture == nil {
		return nil
	}
	resolved, ok := reel.MainPicture.Resolved()
	if !ok {
		return nil
	}
	pic, _ := resolved.(*assets.PictureAsset)
	return pic
}

func mainSoundAsset(reel *cpl.Reel) *assets.SoundAsset {
	if reel.MainSound == nil {
		return nil
	}
	resolved, ok := reel.MainSound.Resolved()
	if !ok {
		return nil
	}
	snd, _ := resolved.(*assets.SoundAsset)
	return snd
}

// checkDuration enforces the >=1 second floor on both a reference's
// recorded duration and its resolved asset's intrinsic duration, against
// whatever edit rate the asset itself declares.
func checkDuration(ref *cpl.Reference, resolved assets.Asset, sink notes.Sink) {
	editRate, ok := assetEditRate(resolved)
	if !ok || editRate.Denominator == 0 {
		return
	}
	fps := editRate.AsFloat()
	if fps <= 0 {
		return
	}
	if float64(ref.Duration) < fps*minDurationSeconds {
		sink.Add(notes.Note{
			Code:     notes.CodeInvalidDuration,
			Severity: notes.SeverityError,
			Message:  "reel reference duration is under one second",
			Path:     resolved.FilePath(),
		})
	}
	if ref.IntrinsicDuration != 0 && float64(ref.IntrinsicDuration) < fps*minDurationSeconds {
		sink.Add(notes.Note{
			Code:     notes.CodeInvalidIntrinsicDuration,
			Severity: notes.SeverityError,
			Message:  "asset intrinsic duration is under one second",
			Path:     resolved.FilePath(),
		})
	}
}

func assetEditRate(a assets.Asset) (ids.Fraction, bool) {
	switch v := a.(type) {
	case *assets.PictureAsset:
		return v.EditRate, true
	case *assets.SoundAsset:
		return v.EditRate, true
	case *assets.TimedTextAsset:
		return v.EditRate, true
	case *assets.AuxAsset:
		return v.EditRate, true
	default:
		return ids.Fraction{}, false
	}
}

// checkPicture enforces stage 4's picture constraints: size,
// frame rate, 2K/4K-vs-3D, and (when a FrameOpener was supplied) a
// per-frame jp2k.Validate pass plus the peak/warn byte-size caps.
func checkPicture(p *assets.PictureAsset, opts Options, sink notes.Sink) {
	key := [2]int{p.Width, p.Height}
	allowedRates, sizeOK := allowedPictureSizes[key]
	if !sizeOK {
		sink.Add(notes.Note{
			Code:     notes.CodeInvalidPictureSizeInPixels,
			Severity: notes.SeverityError,
			Message:  "picture size is not one of the DCI-mandated resolutions",
			Path:     p.FilePath(),
		})
	}

	fourK := p.Width > 2048
	if fourK && p.Stereo {
		sink.Add(notes.Note{
			Code:     notes.CodeInvalidPictureAssetResolutionFor3D,
			Severity: notes.SeverityError,
			Message:  "4K stereoscopic picture is not permitted",
			Path:     p.FilePath(),
		})
	}

	fps := int(p.FrameRate.AsFloat())
	if p.FrameRate.Denominator != 1 || !validPictureFrameRates[fps] {
		sink.Add(notes.Note{
			Code:     notes.CodeInvalidPictureFrameRate,
			Severity: notes.SeverityError,
			Message:  "picture frame rate is not one of the DCI-permitted rates",
			Path:     p.FilePath(),
		})
	}

	rateAllowedForSize := !sizeOK
	for _, r := range allowedRates {
		if r == fps {
			rateAllowedForSize = true
			break
		}
	}
	if sizeOK && !rateAllowedForSize {
		code := notes.CodeInvalidPictureFrameRateFor2K
		if fourK {
			code = notes.CodeInvalidPictureFrameRateFor4K
		}
		sink.Add(notes.Note{
			Code:     code,
			Severity: notes.SeverityError,
			Message:  "frame rate is not permitted for this picture's resolution",
			Path:     p.FilePath(),
		})
	}

	if opts.FrameOpener == nil || p.FrameRate.AsFloat() <= 0 {
		return
	}
	reader, err := opts.FrameOpener.OpenPicture(p.FilePath())
	if err != nil {
		return
	}
	defer reader.Close()

	peakBytes := int64(peakPictureBitsPerSecond / 8 / p.FrameRate.AsFloat())
	warnBytes := int64(warnPictureBitsPerSecond / 8 / p.FrameRate.AsFloat())

	for i := int64(0); i < p.IntrinsicDuration; i++ {
		frame, err := reader.ReadFrame(i)
		if err != nil {
			break
		}
		frameNotes, _ := jp2k.Validate(frame, p.FilePath())
		for _, n := range frameNotes {
			sink.Add(n)
		}
		size := int64(len(frame))
		switch {
		case size > peakBytes:
			sink.Add(notes.Note{
				Code:     notes.CodeInvalidPictureFrameSizeInBytes,
				Severity: notes.SeverityError,
				Message:  "frame exceeds the peak bitrate size cap",
				Path:     p.FilePath(),
				Line:     notes.Line(int(i)),
			})
		case size > warnBytes:
			sink.Add(notes.Note{
				Code:     notes.CodeNearlyInvalidPictureFrameSizeBytes,
				Severity: notes.SeverityWarning,
				Message:  "frame is close to the peak bitrate size cap",
				Path:     p.FilePath(),
				Line:     notes.Line(int(i)),
			})
		}
	}
}

// checkSound enforces the sound sample-rate invariant: sound sample rate
// must equal 48000.
func checkSound(s *assets.SoundAsset, sink notes.Sink) {
	if s.SampleRate != soundSampleRate {
		sink.Add(notes.Note{
			Code:     notes.CodeInvalidSoundFrameRate,
			Severity: notes.SeverityError,
			Message:  "sound sample rate is not 48000",
			Path:     s.FilePath(),
		})
	}
}

// verifyMarkers runs a pragmatic subset of stage 5, markers: this
// library has no marker-track reader (internal/mxfkit exposes picture,
// sound, and timed-text readers, but no frame-content marker API), so
// FFEC/FFMC/FFOC/LFOC frame values cannot be introspected. Feature CPLs
// missing a markers reference entirely are still flagged; a documented
// limitation, not a silent skip (see DESIGN.md).
func verifyMarkers(c *cpl.CPL, sink notes.Sink) {
	if c.ContentKind.Name != "feature" {
		return
	}
	for _, reel := range c.Reels {
		if reel.MainMarkers == nil {
			sink.Add(notes.Note{
				Code:     notes.CodeMissingFFECInFeature,
				Severity: notes.SeverityWarning,
				Message:  "feature reel has no markers track",
				Path:     reel.ID.String(),
			})
			sink.Add(notes.Note{
				Code:     notes.CodeMissingFFMCInFeature,
				Severity: notes.SeverityWarning,
				Message:  "feature reel has no markers track",
				Path:     reel.ID.String(),
			})
		}
	}
}
