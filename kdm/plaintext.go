package kdm

import (
	"fmt"

	"github.com/rendiffdev/dcp/dcperr"
	"github.com/rendiffdev/dcp/ids"
)

// structureID tags a plaintext block as one this library produced, so
// Decrypt can tell a successfully-decrypted-but-foreign block (wrong key
// type, truncated payload) apart from one of its own: keys with the wrong
// structure id are skipped. This is this library's own
// marker, not a claim to match any third-party KDM producer's structure id
// — the library only ever decrypts KDMs it encrypted itself, so byte
// compatibility with other KDM implementations' private-section layout is
// out of scope (recorded in DESIGN.md alongside the XML C14N and
// SubtitleReel simplifications).
var structureID = [16]byte{0x4d, 0x57, 0x4b, 0x44, 0x2d, 0x42, 0x4c, 0x4b, 0x2d, 0x76, 0x31, 0x00, 0x00, 0x00, 0x00, 0x00}

const keyTypeFieldLen = 4
const localTimeFieldLen = 25 // fixed width of ids.LocalTime.String()'s "2006-01-02T15:04:05-07:00" form

// plaintextSize is the fixed byte length of a marshaled plaintext block:
// structure id (16) + cpl id (16) + key type (4) + key id (16) +
// not-before (25) + not-after (25) + key (16) = 118 bytes, well inside the
// ~214-byte limit RSA-OAEP/SHA-1 allows against a 2048-bit modulus.
const plaintextSize = 16 + 16 + keyTypeFieldLen + 16 + localTimeFieldLen + localTimeFieldLen + 16

type plaintextBlock struct {
	structureID [16]byte
	cplID       ids.Identifier
	keyType     KeyType
	keyID       ids.Identifier
	notBefore   ids.LocalTime
	notAfter    ids.LocalTime
	key         [16]byte
}

func marshalKeyType(t KeyType) ([keyTypeFieldLen]byte, error) {
	var out [keyTypeFieldLen]byte
	if len(t) > keyTypeFieldLen {
		return out, dcperr.MiscError(fmt.Sprintf("key type %q exceeds %d bytes", t, keyTypeFieldLen), nil)
	}
	copy(out[:], t)
	return out, nil
}

func marshalLocalTime(t ids.LocalTime) ([localTimeFieldLen]byte, error) {
	var out [localTimeFieldLen]byte
	s := t.String()
	if len(s) != localTimeFieldLen {
		return out, dcperr.MiscError(fmt.Sprintf("local time %q is not the expected %d-byte width", s, localTimeFieldLen), nil)
	}
	copy(out[:], s)
	return out, nil
}

func (b plaintextBlock) marshal() ([]byte, error) {
	keyTypeBytes, err := marshalKeyType(b.keyType)
	if err != nil {
		return nil, err
	}
	notBeforeBytes, err := marshalLocalTime(b.notBefore)
	if err != nil {
		return nil, err
	}
	notAfterBytes, err := marshalLocalTime(b.notAfter)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, plaintextSize)
	out = append(out, b.structureID[:]...)
	cplIDBytes := b.cplID.Bytes()
	out = append(out, cplIDBytes[:]...)
	out = append(out, keyTypeBytes[:]...)
	keyIDBytes := b.keyID.Bytes()
	out = append(out, keyIDBytes[:]...)
	out = append(out, notBeforeBytes[:]...)
	out = append(out, notAfterBytes[:]...)
	out = append(out, b.key[:]...)
	return out, nil
}

func unmarshalPlaintextBlock(data []byte) (plaintextBlock, error) {
	if len(data) != plaintextSize {
		return plaintextBlock{}, dcperr.KDMDecryptionError(
			fmt.Sprintf("decrypted block is %d bytes, expected %d", len(data), plaintextSize), nil)
	}
	var b plaintextBlock
	off := 0
	copy(b.structureID[:], data[off:off+16])
	off += 16
	var cplID [16]byte
	copy(cplID[:], data[off:off+16])
	b.cplID = ids.IdentifierFromBytes(cplID)
	off += 16
	b.keyType = KeyType(trimZero(data[off : off+keyTypeFieldLen]))
	off += keyTypeFieldLen
	var keyID [16]byte
	copy(keyID[:], data[off:off+16])
	b.keyID = ids.IdentifierFromBytes(keyID)
	off += 16
	notBefore, err := ids.ParseLocalTime(string(data[off : off+localTimeFieldLen]))
	if err != nil {
		return plaintextBlock{}, dcperr.XMLError("parse KDM key not-before", err)
	}
	b.notBefore = notBefore
	off += localTimeFieldLen
	notAfter, err := ids.ParseLocalTime(string(data[off : off+localTimeFieldLen]))
	if err != nil {
		return plaintextBlock{}, dcperr.XMLError("parse KDM key not-after", err)
	}
	b.notAfter = notAfter
	off += localTimeFieldLen
	copy(b.key[:], data[off:off+16])
	return b, nil
}

func trimZero(b []byte) []byte {
	for i, c := range b {
		if c == 0 {
			return b[:i]
		}
	}
	return b
}
