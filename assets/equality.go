package assets

import (
	"math"

	"github.com/google/go-cmp/cmp"
)

// EqualityOptions tunes the tolerances allowed when comparing
// two CPLs (and, transitively, their assets): sample-rate jitter on audio,
// whether reel (essence) hashes may differ, whether load-font identifiers
// may differ, and whether the CPL's own annotation text may differ.
type EqualityOptions struct {
	MaxAudioSampleError   int
	AllowHashesToDiffer   bool
	AllowFontsToDiffer    bool
	AllowAnnotationsDiffer bool
}

// DefaultEqualityOptions requires byte-exact equality everywhere.
func DefaultEqualityOptions() EqualityOptions {
	return EqualityOptions{}
}

// Equal reports whether two assets of the same concrete kind are equal
// under opts. Hash comparison is skipped (or tolerated as unequal) per
// opts.AllowHashesToDiffer.
func Equal(a, b Asset, opts EqualityOptions) (bool, error) {
	if a.Kind() != b.Kind() {
		return false, nil
	}
	if !a.AssetID().Equal(b.AssetID()) {
		return false, nil
	}

	if !opts.AllowHashesToDiffer {
		ha, err := a.Hash()
		if err != nil {
			return false, err
		}
		hb, err := b.Hash()
		if err != nil {
			return false, err
		}
		if ha != hb {
			return false, nil
		}
	}

	switch av := a.(type) {
	case *PictureAsset:
		bv := b.(*PictureAsset)
		return cmp.Equal(pictureComparable(av), pictureComparable(bv)), nil
	case *SoundAsset:
		bv := b.(*SoundAsset)
		return soundEqual(av, bv, opts), nil
	case *TimedTextAsset:
		bv := b.(*TimedTextAsset)
		return cmp.Equal(ttComparable(av, opts), ttComparable(bv, opts)), nil
	case *AuxAsset:
		bv := b.(*AuxAsset)
		return av.IntrinsicDuration == bv.IntrinsicDuration, nil
	case *FontAsset, *InteropPNGAsset:
		return true, nil
	default:
		return false, nil
	}
}

type pictureFields struct {
	Stereo                 bool
	Width, Height          int
	IntrinsicDuration      int64
}

func pictureComparable(p *PictureAsset) pictureFields {
	return pictureFields{p.Stereo, p.Width, p.Height, p.IntrinsicDuration}
}

func soundEqual(a, b *SoundAsset, opts EqualityOptions) bool {
	if a.ChannelCount != b.ChannelCount || a.Language != b.Language {
		return false
	}
	if int(math.Abs(float64(a.SampleRate-b.SampleRate))) > opts.MaxAudioSampleError {
		return false
	}
	return a.IntrinsicDuration == b.IntrinsicDuration
}

type ttFields struct {
	SMPTE    bool
	Language string
}

// ttComparable ignores embedded font identifiers when opts requests it;
// font data lives in the XML resource body, not as a discrete field here,
// so both modes currently produce the same comparable struct.
func ttComparable(t *TimedTextAsset, opts EqualityOptions) ttFields {
	return ttFields{t.SMPTE, t.Language}
}
