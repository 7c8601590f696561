// Package ids holds the identifier and time primitives shared by every
// other package in the DCP toolkit: opaque 128-bit ids, edit-rate
// fractions, frame-tick times, and timezone-aware local times.
package ids

import (
	"strings"

	"github.com/google/uuid"
)

// Identifier is a 128-bit value. Two identifiers compare equal iff their
// 128 bits match; the `urn:uuid:` wire prefix is stripped on ingest and
// re-applied by String/URN depending on context.
type Identifier struct {
	raw uuid.UUID
}

// Nil is the zero-value identifier; IsZero reports whether an Identifier
// was never assigned.
var Nil Identifier

// IsZero reports whether id is the zero value.
func (id Identifier) IsZero() bool { return id.raw == uuid.Nil }

// String renders the canonical lower-case hyphenated form, no prefix —
// the form used inside hash/index maps.
func (id Identifier) String() string { return id.raw.String() }

// URN renders the `urn:uuid:`-prefixed wire form used in most XML contexts.
func (id Identifier) URN() string { return "urn:uuid:" + id.raw.String() }

// Equal reports whether two identifiers hold the same 128 bits.
func (id Identifier) Equal(other Identifier) bool { return id.raw == other.raw }

// Parse accepts either the bare or `urn:uuid:`-prefixed form.
func Parse(s string) (Identifier, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(s), "urn:uuid:")
	u, err := uuid.Parse(trimmed)
	if err != nil {
		return Identifier{}, err
	}
	return Identifier{raw: u}, nil
}

// MustParse is Parse but panics on error; useful for constant test ids.
func MustParse(s string) Identifier {
	id, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return id
}

// FromUUID wraps an existing uuid.UUID.
func FromUUID(u uuid.UUID) Identifier { return Identifier{raw: u} }

// Bytes returns the identifier's raw 16 bytes, for binary contexts that
// pack an id directly rather than through its textual form (the KDM
// plaintext block's cpl id and key id fields).
func (id Identifier) Bytes() [16]byte { return [16]byte(id.raw) }

// IdentifierFromBytes rebuilds an Identifier from its raw 16 bytes, the
// inverse of Bytes.
func IdentifierFromBytes(b [16]byte) Identifier { return Identifier{raw: uuid.UUID(b)} }

// Source produces new identifiers. Production code uses RandomSource; test
// code that needs byte-exact round-trip output injects a Deterministic
// source instead of relying on process-global state.
type Source interface {
	New() Identifier
}

// RandomSource generates version-4 (random) UUIDs via google/uuid.
type RandomSource struct{}

// New returns a fresh random identifier.
func (RandomSource) New() Identifier { return Identifier{raw: uuid.New()} }

// Deterministic generates a reproducible sequence of identifiers seeded
// from a fixed byte pattern, used by golden-file round-trip tests that
// need byte-for-byte stable output.
type Deterministic struct {
	counter uint64
}

// NewDeterministic returns a Source that produces a reproducible sequence
// of identifiers starting from counter 0.
func NewDeterministic() *Deterministic { return &Deterministic{} }

// New returns the next identifier in the deterministic sequence. The
// first 8 bytes hold the big-endian counter; the rest are zero, with the
// UUID version/variant bits forced so the result is a well-formed v4 UUID.
func (d *Deterministic) New() Identifier {
	var b [16]byte
	c := d.counter
	for i := 7; i >= 0; i-- {
		b[i] = byte(c)
		c >>= 8
	}
	d.counter++
	b[6] = (b[6] & 0x0f) | 0x40
	b[8] = (b[8] & 0x3f) | 0x80
	u, _ := uuid.FromBytes(b[:])
	return Identifier{raw: u}
}
