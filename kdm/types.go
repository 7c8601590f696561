// Package kdm implements component C8: the Key Delivery Message that
// carries a CPL's symmetric content keys, RSA-OAEP-encrypted to a single
// recipient certificate, signed by an issuing facility's certificate
// chain. Grounded on certs.Chain for the signer/recipient identity model
// and xmlio.Signer for the enveloped signature this package reuses
// unchanged.
package kdm

import "github.com/rendiffdev/dcp/ids"

// KeyType discriminates which essence track a content key belongs to, the
// 4-character code SMPTE KDMs carry in each KeyIdList entry.
type KeyType string

const (
	KeyTypePicture  KeyType = "MDIK"
	KeyTypeSound    KeyType = "MDAK"
	KeyTypeSubtitle KeyType = "MDSK"
	KeyTypeAux      KeyType = "MDAX"
)

// RecipientInfo identifies a certificate by its SHA-1 thumbprint plus its
// X.509 issuer name and serial number, the reference form a KDM uses for
// both its single Recipient and any AuthorizedDeviceInfo entries.
type RecipientInfo struct {
	Thumbprint   []byte
	IssuerName   string
	SerialNumber string
}

// ForensicMarkFlags records a KDM's picture/audio forensic-marking
// decisions. DisableAudioAboveChannel follows a
// three-way convention: nil leaves audio marked, a
// pointer to 0 disables marking on every channel, and a pointer to n>0
// disables marking above channel n.
type ForensicMarkFlags struct {
	DisablePicture           bool
	DisableAudioAboveChannel *int
}

// IsZero reports whether no forensic-mark flag is actually set, in which
// case the whole ForensicMarkFlagList element is omitted on write.
func (f *ForensicMarkFlags) IsZero() bool {
	return f == nil || (!f.DisablePicture && f.DisableAudioAboveChannel == nil)
}

// DecryptedKey is one content key in cleartext: its type, id, validity
// window, and the raw 128-bit symmetric value.
type DecryptedKey struct {
	Type      KeyType
	ID        ids.Identifier
	NotBefore ids.LocalTime
	NotAfter  ids.LocalTime
	Value     [16]byte
}

// DecryptedKDM is the cleartext form of a KDM: everything an EncryptedKDM
// carries, but with each key's plaintext value instead of an RSA-OAEP
// ciphertext block.
type DecryptedKDM struct {
	CPLID            ids.Identifier
	ContentTitleText string
	NotBefore        ids.LocalTime
	NotAfter         ids.LocalTime
	Keys             []DecryptedKey
}

// EncryptedKeyBlock is one RSA-OAEP-encrypted plaintext block, one per
// content key, each separately decryptable.
type EncryptedKeyBlock struct {
	CipherText []byte
}

// EncryptedKDM is the wire form: public identity and validity fields in
// the clear, content keys individually encrypted, optionally signed.
type EncryptedKDM struct {
	CPLID             ids.Identifier
	ContentTitleText  string
	NotBefore         ids.LocalTime
	NotAfter          ids.LocalTime
	Recipient         RecipientInfo
	AuthorizedDevices []RecipientInfo
	ForensicMarks     *ForensicMarkFlags
	EncryptedKeys     []EncryptedKeyBlock
}
