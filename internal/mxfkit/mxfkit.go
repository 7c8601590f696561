// Package mxfkit specifies the per-essence-kind reader/writer contract a
// concrete MXF container implementation must expose, and ships an in-memory
// fake that satisfies it for tests. The real MXF bitstream (KLV packing,
// partition layout, AES-CTR essence encryption) is explicitly out of
// scope: this package is specified only by the per-essence API it must
// expose.
//
// Grounded on the teacher repository's internal/ffmpeg essence-probe pattern
// (internal/ffmpeg/imf_analyzer.go): a narrow interface the rest of the
// toolkit probes for metadata, with the concrete decode delegated out.
package mxfkit

import (
	"fmt"

	"github.com/rendiffdev/dcp/ids"
)

// EssenceKind discriminates the four MXF essence container types this
// toolkit exchanges keys and metadata with.
type EssenceKind int

const (
	EssencePicture EssenceKind = iota
	EssenceSound
	EssenceTimedText
	EssenceAux
)

func (k EssenceKind) String() string {
	switch k {
	case EssencePicture:
		return "picture"
	case EssenceSound:
		return "sound"
	case EssenceTimedText:
		return "timed-text"
	case EssenceAux:
		return "aux"
	default:
		return "unknown"
	}
}

// Header is the essence-agnostic metadata every MXF container header
// exposes, probed before a full picture/sound/text-specific header is read.
type Header struct {
	Kind              EssenceKind
	Encrypted         bool
	KeyID             ids.Identifier
	EditRate          ids.Fraction
	IntrinsicDuration int64
	Stereoscopic      bool // picture only; true if the container carries left+right eye frames
}

// PictureHeader extends Header with picture-specific fields needed to
// validate against the DCI profile constraints.
type PictureHeader struct {
	Header
	Width, Height int
	FrameRate     ids.Fraction
}

// SoundHeader extends Header with sound-specific fields.
type SoundHeader struct {
	Header
	ChannelCount int
	SampleRate   int
	Language     string
}

// TimedTextHeader extends Header with the SMPTE timed-text id triple
// invariant (id != resource_id, resource_id == xml_id).
type TimedTextHeader struct {
	Header
	ResourceID ids.Identifier
	XMLID      ids.Identifier
}

// PictureReader is a random-access per-frame reader, decrypting each frame
// with an installed symmetric key if the header reports encryption.
type PictureReader interface {
	Header() PictureHeader
	ReadFrame(index int64) ([]byte, error)
	Close() error
}

// PictureWriter is a frame-at-a-time writer handle; Finalize must be called
// exactly once, closing the container and flushing its index table.
type PictureWriter interface {
	WriteFrame(data []byte) error
	Finalize() error
}

// SoundReader is a random-access per-frame (edit-unit) PCM reader.
type SoundReader interface {
	Header() SoundHeader
	ReadFrame(index int64) ([][]byte, error) // one buffer per channel
	Close() error
}

// SoundWriter accepts one buffer per channel per edit unit; buffers shorter
// than the asset's declared channel count are zero-padded on write.
type SoundWriter interface {
	WriteFrame(channels [][]byte) error
	Finalize() error
}

// TimedTextReader exposes the embedded XML resource and any attached font
// resources of an SMPTE timed-text MXF essence.
type TimedTextReader interface {
	Header() TimedTextHeader
	ResourceXML() ([]byte, error)
	Fonts() (map[string][]byte, error) // keyed by font resource id
	Close() error
}

// TimedTextWriter writes a single XML resource plus any font attachments.
type TimedTextWriter interface {
	WriteResource(xmlBody []byte) error
	WriteFont(id string, data []byte) error
	Finalize() error
}

// ErrNotImplemented is returned by any operation this interface package
// does not itself implement; concrete essence I/O is supplied by the
// caller's chosen MXF backend.
var ErrNotImplemented = fmt.Errorf("mxfkit: no concrete MXF backend installed")
