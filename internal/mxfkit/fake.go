package mxfkit

import (
	"fmt"
	"sync"
)

// FakePictureContainer is an in-memory stand-in for a real MXF picture
// essence file, used by package tests that need a PictureReader/Writer
// without decoding an actual container.
type FakePictureContainer struct {
	mu     sync.Mutex
	header PictureHeader
	frames [][]byte
}

// NewFakePictureContainer builds an empty fake container with the given header.
func NewFakePictureContainer(header PictureHeader) *FakePictureContainer {
	return &FakePictureContainer{header: header}
}

// Writer returns a PictureWriter appending frames to this container.
func (f *FakePictureContainer) Writer() PictureWriter { return &fakePictureWriter{c: f} }

// Reader returns a PictureReader over the frames written so far.
func (f *FakePictureContainer) Reader() PictureReader { return &fakePictureReader{c: f} }

type fakePictureWriter struct{ c *FakePictureContainer }

func (w *fakePictureWriter) WriteFrame(data []byte) error {
	w.c.mu.Lock()
	defer w.c.mu.Unlock()
	w.c.frames = append(w.c.frames, append([]byte(nil), data...))
	return nil
}

func (w *fakePictureWriter) Finalize() error {
	w.c.mu.Lock()
	defer w.c.mu.Unlock()
	w.c.header.IntrinsicDuration = int64(len(w.c.frames))
	return nil
}

type fakePictureReader struct{ c *FakePictureContainer }

func (r *fakePictureReader) Header() PictureHeader { return r.c.header }

func (r *fakePictureReader) ReadFrame(index int64) ([]byte, error) {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()
	if index < 0 || int(index) >= len(r.c.frames) {
		return nil, fmt.Errorf("mxfkit: frame index %d out of range [0,%d)", index, len(r.c.frames))
	}
	return r.c.frames[index], nil
}

func (r *fakePictureReader) Close() error { return nil }

// FakeSoundContainer is an in-memory stand-in for a real MXF sound essence
// file.
type FakeSoundContainer struct {
	mu     sync.Mutex
	header SoundHeader
	frames [][][]byte
}

// NewFakeSoundContainer builds an empty fake container with the given header.
func NewFakeSoundContainer(header SoundHeader) *FakeSoundContainer {
	return &FakeSoundContainer{header: header}
}

func (f *FakeSoundContainer) Writer() SoundWriter { return &fakeSoundWriter{c: f} }
func (f *FakeSoundContainer) Reader() SoundReader { return &fakeSoundReader{c: f} }

type fakeSoundWriter struct{ c *FakeSoundContainer }

func (w *fakeSoundWriter) WriteFrame(channels [][]byte) error {
	w.c.mu.Lock()
	defer w.c.mu.Unlock()

	padded := make([][]byte, w.c.header.ChannelCount)
	for i := range padded {
		if i < len(channels) {
			padded[i] = append([]byte(nil), channels[i]...)
		} else if len(channels) > 0 {
			padded[i] = make([]byte, len(channels[0]))
		}
	}
	w.c.frames = append(w.c.frames, padded)
	return nil
}

func (w *fakeSoundWriter) Finalize() error {
	w.c.mu.Lock()
	defer w.c.mu.Unlock()
	w.c.header.IntrinsicDuration = int64(len(w.c.frames))
	return nil
}

type fakeSoundReader struct{ c *FakeSoundContainer }

func (r *fakeSoundReader) Header() SoundHeader { return r.c.header }

func (r *fakeSoundReader) ReadFrame(index int64) ([][]byte, error) {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()
	if index < 0 || int(index) >= len(r.c.frames) {
		return nil, fmt.Errorf("mxfkit: frame index %d out of range [0,%d)", index, len(r.c.frames))
	}
	return r.c.frames[index], nil
}

func (r *fakeSoundReader) Close() error { return nil }

// FakeTimedTextContainer is an in-memory stand-in for an SMPTE timed-text
// MXF essence file.
type FakeTimedTextContainer struct {
	mu       sync.Mutex
	header   TimedTextHeader
	resource []byte
	fonts    map[string][]byte
}

// NewFakeTimedTextContainer builds an empty fake container with the given header.
func NewFakeTimedTextContainer(header TimedTextHeader) *FakeTimedTextContainer {
	return &FakeTimedTextContainer{header: header, fonts: make(map[string][]byte)}
}

func (f *FakeTimedTextContainer) Writer() TimedTextWriter { return &fakeTTWriter{c: f} }
func (f *FakeTimedTextContainer) Reader() TimedTextReader { return &fakeTTReader{c: f} }

type fakeTTWriter struct{ c *FakeTimedTextContainer }

func (w *fakeTTWriter) WriteResource(xmlBody []byte) error {
	w.c.mu.Lock()
	defer w.c.mu.Unlock()
	w.c.resource = append([]byte(nil), xmlBody...)
	return nil
}

func (w *fakeTTWriter) WriteFont(id string, data []byte) error {
	w.c.mu.Lock()
	defer w.c.mu.Unlock()
	w.c.fonts[id] = append([]byte(nil), data...)
	return nil
}

func (w *fakeTTWriter) Finalize() error { return nil }

type fakeTTReader struct{ c *FakeTimedTextContainer }

func (r *fakeTTReader) Header() TimedTextHeader { return r.c.header }

func (r *fakeTTReader) ResourceXML() ([]byte, error) {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()
	return r.c.resource, nil
}

func (r *fakeTTReader) Fonts() (map[string][]byte, error) {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()
	out := make(map[string][]byte, len(r.c.fonts))
	for k, v := range r.c.fonts {
		out[k] = v
	}
	return out, nil
}

func (r *fakeTTReader) Close() error { return nil }
