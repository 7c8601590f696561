// Package assets implements the asset object model of component C4: the
// common identity/hash/path fields every DCP asset shares, and the
// picture/sound/timed-text/font/auxiliary subtypes layered on top with
// their MXF-backed or file-backed metadata.
package assets

import (
	"crypto/sha1" //nolint:gosec // PKL/KDM hashes are mandated SHA-1.
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/rendiffdev/dcp/dcperr"
	"github.com/rendiffdev/dcp/ids"
)

// Standard discriminates the Interop and SMPTE package dialects; assets,
// PKLs, CPLs, and the asset map all carry one.
type Standard int

const (
	StandardSMPTE Standard = iota
	StandardInterop
)

// Kind discriminates the asset subtypes this package models, a tagged
// union in place of an abstract-base-class hierarchy, the way idiomatic Go
// models closed sets.
type Kind int

const (
	KindMonoPicture Kind = iota
	KindStereoPicture
	KindSound
	KindInteropSubtitle
	KindSMPTESubtitle
	KindAux
	KindFont
	KindInteropPNG
	KindUnknown
)

// Base holds the fields every asset kind shares: an opaque identifier, an
// optional absolute file path (unset for assets referenced but not present
// in this package — the supplemental/VF case), and a lazily computed,
// cached base64(SHA-1(file)) hash.
type Base struct {
	ID   ids.Identifier
	Path string // absolute; "" if unresolved

	mu       sync.Mutex
	hash     string
	haveHash bool
}

// NewBase constructs a Base with the given id and optional path.
func NewBase(id ids.Identifier, path string) Base {
	return Base{ID: id, Path: path}
}

// Hash computes base64(SHA-1(file)) on first call and caches it. Returns an
// error if no path is set or the file cannot be read.
func (b *Base) Hash() (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.haveHash {
		return b.hash, nil
	}
	if b.Path == "" {
		return "", dcperr.MiscError(fmt.Sprintf("cannot hash asset %s: no file path set", b.ID), nil)
	}
	f, err := os.Open(b.Path)
	if err != nil {
		return "", dcperr.FileError(fmt.Sprintf("open %s", b.Path), err)
	}
	defer f.Close()

	h := sha1.New() //nolint:gosec // mandated digest, see package doc.
	if _, err := io.Copy(h, f); err != nil {
		return "", dcperr.ReadError(fmt.Sprintf("hash %s", b.Path), err)
	}
	b.hash = base64.StdEncoding.EncodeToString(h.Sum(nil))
	b.haveHash = true
	return b.hash, nil
}

// InvalidateHash clears the cached hash, used only when a test or tool
// rewrites the underlying file in place.
func (b *Base) InvalidateHash() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.haveHash = false
	b.hash = ""
}

// PKLType returns the MIME-like PKL type string for an asset kind under a
// given standard. Comparison of these strings elsewhere
// strips any ";parameter" suffix.
func PKLType(kind Kind, std Standard) string {
	switch kind {
	case KindMonoPicture, KindStereoPicture:
		if std == StandardInterop {
			return "application/mxf;asdcpKind=Picture"
		}
		return "application/mxf"
	case KindSound:
		if std == StandardInterop {
			return "application/mxf;asdcpKind=Sound"
		}
		return "application/mxf"
	case KindInteropSubtitle:
		return "text/xml;asdcpKind=Subtitle"
	case KindSMPTESubtitle:
		return "application/mxf"
	case KindAux:
		return "application/mxf"
	case KindInteropPNG:
		return "image/png"
	case KindFont:
		return "application/ttf"
	default:
		return ""
	}
}

// CPLPKLType returns the PKL type string for a CPL XML file itself.
func CPLPKLType(std Standard) string {
	if std == StandardInterop {
		return "text/xml;asdcpKind=CPL"
	}
	return "text/xml"
}
