package assets

import (
	"github.com/rendiffdev/dcp/ids"
	"github.com/rendiffdev/dcp/internal/mxfkit"
)

// Asset is the common interface every asset subtype satisfies: id, file,
// hash, kind and pkl type. Comparison with caller-tunable tolerances is the
// package-level Equal, not a method of this interface.
type Asset interface {
	AssetID() ids.Identifier
	FilePath() string
	Hash() (string, error)
	Kind() Kind
	PKLType(std Standard) string
}

// MXFAsset is the subset of Asset backed by an MXF essence container
// (picture, sound, SMPTE timed text, aux): it additionally carries an
// optional symmetric content key and reports whether the container header
// itself declares encryption, independent of whether a key has been
// installed.
type MXFAsset interface {
	Asset
	Encrypted() bool
	KeyID() (ids.Identifier, bool)
	SetContentKey(key [16]byte)
	ContentKey() (key [16]byte, ok bool)
}

type contentKeyState struct {
	key      [16]byte
	haveKey  bool
	keyID    ids.Identifier
	haveKeyID bool
}

func (c *contentKeyState) SetContentKey(key [16]byte) {
	c.key = key
	c.haveKey = true
}

func (c *contentKeyState) ContentKey() ([16]byte, bool) { return c.key, c.haveKey }

func (c *contentKeyState) KeyID() (ids.Identifier, bool) { return c.keyID, c.haveKeyID }

// PictureAsset models a mono or stereo picture essence.
type PictureAsset struct {
	Base
	contentKeyState

	Stereo            bool
	Width, Height     int
	EditRate          ids.Fraction
	FrameRate         ids.Fraction
	IntrinsicDuration int64
	encrypted         bool
}

// NewPictureAsset builds a PictureAsset from a probed MXF header.
func NewPictureAsset(id ids.Identifier, path string, h mxfkit.PictureHeader) *PictureAsset {
	p := &PictureAsset{
		Base:              NewBase(id, path),
		Stereo:            h.Stereoscopic,
		Width:             h.Width,
		Height:            h.Height,
		EditRate:          h.EditRate,
		FrameRate:         h.FrameRate,
		IntrinsicDuration: h.IntrinsicDuration,
		encrypted:         h.Encrypted,
	}
	if h.Encrypted {
		p.keyID = h.KeyID
		p.haveKeyID = true
	}
	return p
}

func (p *PictureAsset) AssetID() ids.Identifier { return p.ID }
func (p *PictureAsset) FilePath() string        { return p.Path }
func (p *PictureAsset) Hash() (string, error)   { return p.Base.Hash() }
func (p *PictureAsset) Encrypted() bool         { return p.encrypted }

func (p *PictureAsset) Kind() Kind {
	if p.Stereo {
		return KindStereoPicture
	}
	return KindMonoPicture
}

func (p *PictureAsset) PKLType(std Standard) string { return PKLType(p.Kind(), std) }

// AspectRatio returns the screen aspect ratio width/height.
func (p *PictureAsset) AspectRatio() float64 {
	if p.Height == 0 {
		return 0
	}
	return float64(p.Width) / float64(p.Height)
}

// SoundAsset models a PCM sound essence.
type SoundAsset struct {
	Base
	contentKeyState

	ChannelCount      int
	SampleRate        int
	Language          string
	EditRate          ids.Fraction
	IntrinsicDuration int64
	encrypted         bool
}

// NewSoundAsset builds a SoundAsset from a probed MXF header.
func NewSoundAsset(id ids.Identifier, path string, h mxfkit.SoundHeader) *SoundAsset {
	s := &SoundAsset{
		Base:              NewBase(id, path),
		ChannelCount:      h.ChannelCount,
		SampleRate:        h.SampleRate,
		Language:          h.Language,
		EditRate:          h.EditRate,
		IntrinsicDuration: h.IntrinsicDuration,
		encrypted:         h.Encrypted,
	}
	if h.Encrypted {
		s.keyID = h.KeyID
		s.haveKeyID = true
	}
	return s
}

func (s *SoundAsset) AssetID() ids.Identifier   { return s.ID }
func (s *SoundAsset) FilePath() string          { return s.Path }
func (s *SoundAsset) Hash() (string, error)     { return s.Base.Hash() }
func (s *SoundAsset) Encrypted() bool           { return s.encrypted }
func (s *SoundAsset) Kind() Kind                { return KindSound }
func (s *SoundAsset) PKLType(std Standard) string { return PKLType(KindSound, std) }

// TimedTextAsset models the shared properties of both timed-text dialects;
// Interop carries a plain XML body with sibling font files on disk, SMPTE
// packages the same logical content inside an MXF essence. ResourceID and
// XMLID are used by the SMPTE dialect only.
type TimedTextAsset struct {
	Base
	contentKeyState

	SMPTE             bool
	ResourceID        ids.Identifier // SMPTE only
	XMLID             ids.Identifier // SMPTE only
	Language          string
	EditRate          ids.Fraction
	IntrinsicDuration int64
	encrypted         bool
}

// NewInteropSubtitleAsset builds the Interop dialect (file-backed XML, no
// MXF wrapper, never encrypted at the container level).
func NewInteropSubtitleAsset(id ids.Identifier, path string, language string) *TimedTextAsset {
	return &TimedTextAsset{Base: NewBase(id, path), Language: language}
}

// NewSMPTETimedTextAsset builds the SMPTE dialect from a probed MXF header.
func NewSMPTETimedTextAsset(id ids.Identifier, path string, h mxfkit.TimedTextHeader, language string) *TimedTextAsset {
	t := &TimedTextAsset{
		Base:              NewBase(id, path),
		SMPTE:             true,
		ResourceID:        h.ResourceID,
		XMLID:             h.XMLID,
		Language:          language,
		EditRate:          h.EditRate,
		IntrinsicDuration: h.IntrinsicDuration,
		encrypted:         h.Encrypted,
	}
	if h.Encrypted {
		t.keyID = h.KeyID
		t.haveKeyID = true
	}
	return t
}

func (t *TimedTextAsset) AssetID() ids.Identifier { return t.ID }
func (t *TimedTextAsset) FilePath() string        { return t.Path }
func (t *TimedTextAsset) Hash() (string, error)   { return t.Base.Hash() }
func (t *TimedTextAsset) Encrypted() bool         { return t.encrypted }

func (t *TimedTextAsset) Kind() Kind {
	if t.SMPTE {
		return KindSMPTESubtitle
	}
	return KindInteropSubtitle
}

func (t *TimedTextAsset) PKLType(std Standard) string { return PKLType(t.Kind(), std) }

// ValidateIDTriple enforces the SMPTE timed-text identity invariant: id !=
// resource_id, resource_id == xml_id. Only meaningful for the SMPTE dialect.
func (t *TimedTextAsset) ValidateIDTriple() error {
	if !t.SMPTE {
		return nil
	}
	if t.ID.Equal(t.ResourceID) {
		return errIDTriple("asset id must differ from resource id")
	}
	if !t.ResourceID.Equal(t.XMLID) {
		return errIDTriple("resource id must equal xml id")
	}
	return nil
}

// AuxAsset models an auxiliary data essence (e.g. an Atmos track).
type AuxAsset struct {
	Base
	contentKeyState

	EditRate          ids.Fraction
	IntrinsicDuration int64
	encrypted         bool
}

// NewAuxAsset builds an AuxAsset from a probed MXF header.
func NewAuxAsset(id ids.Identifier, path string, h mxfkit.Header) *AuxAsset {
	a := &AuxAsset{
		Base:              NewBase(id, path),
		EditRate:          h.EditRate,
		IntrinsicDuration: h.IntrinsicDuration,
		encrypted:         h.Encrypted,
	}
	if h.Encrypted {
		a.keyID = h.KeyID
		a.haveKeyID = true
	}
	return a
}

func (a *AuxAsset) AssetID() ids.Identifier   { return a.ID }
func (a *AuxAsset) FilePath() string          { return a.Path }
func (a *AuxAsset) Hash() (string, error)     { return a.Base.Hash() }
func (a *AuxAsset) Encrypted() bool           { return a.encrypted }
func (a *AuxAsset) Kind() Kind                { return KindAux }
func (a *AuxAsset) PKLType(std Standard) string { return PKLType(KindAux, std) }

// FontAsset models a raw TrueType font file (Interop only; SMPTE embeds
// fonts inside the timed-text MXF essence).
type FontAsset struct {
	Base
}

// NewFontAsset builds a FontAsset.
func NewFontAsset(id ids.Identifier, path string) *FontAsset {
	return &FontAsset{Base: NewBase(id, path)}
}

func (f *FontAsset) AssetID() ids.Identifier     { return f.ID }
func (f *FontAsset) FilePath() string            { return f.Path }
func (f *FontAsset) Hash() (string, error)       { return f.Base.Hash() }
func (f *FontAsset) Kind() Kind                  { return KindFont }
func (f *FontAsset) PKLType(std Standard) string { return PKLType(KindFont, std) }

// InteropPNGAsset models a PNG subtitle image referenced from Interop
// subtitle XML. It carries no independent CPL reference of its own.
type InteropPNGAsset struct {
	Base
}

// NewInteropPNGAsset builds an InteropPNGAsset.
func NewInteropPNGAsset(id ids.Identifier, path string) *InteropPNGAsset {
	return &InteropPNGAsset{Base: NewBase(id, path)}
}

func (p *InteropPNGAsset) AssetID() ids.Identifier     { return p.ID }
func (p *InteropPNGAsset) FilePath() string            { return p.Path }
func (p *InteropPNGAsset) Hash() (string, error)       { return p.Base.Hash() }
func (p *InteropPNGAsset) Kind() Kind                  { return KindInteropPNG }
func (p *InteropPNGAsset) PKLType(std Standard) string { return PKLType(KindInteropPNG, std) }

type idTripleError string

func (e idTripleError) Error() string { return string(e) }
func errIDTriple(msg string) error    { return idTripleError(msg) }
