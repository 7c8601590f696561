package mxfkit

// Prober probes an on-disk MXF essence file for its header metadata without
// fully decoding it, the dispatch point the DCP loader (component C7) uses
// to decide which concrete asset subtype to construct for a PKL entry whose
// PKL type is "application/mxf". The real bitstream probe is
// out of scope here; callers inject a concrete implementation, with
// FakeProber standing in for tests.
type Prober interface {
	// ProbeKind reports which essence kind path's container header
	// declares, the dispatch a SMPTE-standard DCP's loader needs since
	// every SMPTE MXF essence shares the single PKL type "application/mxf".
	ProbeKind(path string) (EssenceKind, error)
	ProbePicture(path string) (PictureHeader, error)
	ProbeSound(path string) (SoundHeader, error)
	ProbeTimedText(path string) (TimedTextHeader, error)
	ProbeAux(path string) (Header, error)
}

// FakeProber returns canned headers keyed by path, for tests that exercise
// the loader without a real MXF backend.
type FakeProber struct {
	Kinds      map[string]EssenceKind
	Pictures   map[string]PictureHeader
	Sounds     map[string]SoundHeader
	TimedTexts map[string]TimedTextHeader
	Auxes      map[string]Header
}

// NewFakeProber builds an empty FakeProber.
func NewFakeProber() *FakeProber {
	return &FakeProber{
		Kinds:      make(map[string]EssenceKind),
		Pictures:   make(map[string]PictureHeader),
		Sounds:     make(map[string]SoundHeader),
		TimedTexts: make(map[string]TimedTextHeader),
		Auxes:      make(map[string]Header),
	}
}

func (p *FakeProber) ProbeKind(path string) (EssenceKind, error) {
	k, ok := p.Kinds[path]
	if !ok {
		return 0, ErrNotImplemented
	}
	return k, nil
}

func (p *FakeProber) ProbePicture(path string) (PictureHeader, error) {
	h, ok := p.Pictures[path]
	if !ok {
		return PictureHeader{}, ErrNotImplemented
	}
	return h, nil
}

func (p *FakeProber) ProbeSound(path string) (SoundHeader, error) {
	h, ok := p.Sounds[path]
	if !ok {
		return SoundHeader{}, ErrNotImplemented
	}
	return h, nil
}

func (p *FakeProber) ProbeTimedText(path string) (TimedTextHeader, error) {
	h, ok := p.TimedTexts[path]
	if !ok {
		return TimedTextHeader{}, ErrNotImplemented
	}
	return h, nil
}

func (p *FakeProber) ProbeAux(path string) (Header, error) {
	h, ok := p.Auxes[path]
	if !ok {
		return Header{}, ErrNotImplemented
	}
	return h, nil
}
