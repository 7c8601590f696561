package kdm

import (
	"crypto/rsa"
	"crypto/sha1" //nolint:gosec // RSA-OAEP/MGF1 digest mandated for KDM encryption, not a content hash.
	"io"

	"github.com/rendiffdev/dcp/certs"
	"github.com/rendiffdev/dcp/dcperr"
)

func recipientInfoFor(c *certs.Certificate) RecipientInfo {
	return RecipientInfo{
		Thumbprint:   c.Thumbprint(),
		IssuerName:   c.Issuer(),
		SerialNumber: c.SerialNumber(),
	}
}

// Encrypt builds an EncryptedKDM from plain, RSA-OAEP encrypting each
// content key to recipient's public key. rng supplies the OAEP padding's
// randomness — crypto/rand.Reader in production, a fixed deterministic
// reader in golden-file tests that need encrypt(decrypt(k)) == k
// bit-for-bit, following the same injected-randomness
// convention this library uses for id generation. signer
// supplies the leaf certificate whose validity window plain's window must
// fall strictly within; signing the resulting envelope is the caller's
// responsibility via xmlio.Signer, applied to the *xmlio.Element ToXML
// returns, mirroring cpl.CPL's write path.
func Encrypt(rng io.Reader, plain *DecryptedKDM, signer *certs.Chain, recipient *certs.Certificate, extraDevices []*certs.Certificate, marks *ForensicMarkFlags) (*EncryptedKDM, error) {
	leaf, err := signer.Leaf()
	if err != nil {
		return nil, err
	}
	if plain.NotBefore.Before(leaf.NotBefore()) || plain.NotAfter.After(leaf.NotAfter()) {
		return nil, dcperr.BadKDMDateError("KDM validity window is not strictly contained within the signer leaf certificate's validity window")
	}

	recipientPub, err := recipient.PublicKey()
	if err != nil {
		return nil, err
	}

	enc := &EncryptedKDM{
		CPLID:            plain.CPLID,
		ContentTitleText: plain.ContentTitleText,
		NotBefore:        plain.NotBefore,
		NotAfter:         plain.NotAfter,
		Recipient:        recipientInfoFor(recipient),
		ForensicMarks:    marks,
	}
	for _, d := range extraDevices {
		enc.AuthorizedDevices = append(enc.AuthorizedDevices, recipientInfoFor(d))
	}

	for _, k := range plain.Keys {
		block := plaintextBlock{
			structureID: structureID,
			cplID:       plain.CPLID,
			keyType:     k.Type,
			keyID:       k.ID,
			notBefore:   k.NotBefore,
			notAfter:    k.NotAfter,
			key:         k.Value,
		}
		data, err := block.marshal()
		if err != nil {
			return nil, err
		}
		ct, err := rsa.EncryptOAEP(sha1.New(), rng, recipientPub, data, nil) //nolint:gosec // see package doc.
		if err != nil {
			return nil, dcperr.MiscError("RSA-OAEP encrypt KDM key", err)
		}
		enc.EncryptedKeys = append(enc.EncryptedKeys, EncryptedKeyBlock{CipherText: ct})
	}

	return enc, nil
}

// Decrypt recovers a DecryptedKDM from enc using privateKey. Each
// EncryptedKey block is tried independently; a block that fails to decrypt,
// is the wrong length once decrypted, or carries a foreign structure id is
// silently skipped rather than aborting the whole KDM. The
// call fails only if not one single key could be recovered. enc's signature,
// if present, is not checked here — callers needing that must additionally
// call xmlio.Verify on the parsed envelope; the verifier flags an unsigned
// KDM as its own diagnostic note rather than Decrypt failing outright.
func Decrypt(enc *EncryptedKDM, privateKey *rsa.PrivateKey) (*DecryptedKDM, error) {
	plain := &DecryptedKDM{
		CPLID:            enc.CPLID,
		ContentTitleText: enc.ContentTitleText,
		NotBefore:        enc.NotBefore,
		NotAfter:         enc.NotAfter,
	}
	for _, ek := range enc.EncryptedKeys {
		data, err := rsa.DecryptOAEP(sha1.New(), nil, privateKey, ek.CipherText, nil) //nolint:gosec // see package doc.
		if err != nil {
			continue
		}
		block, err := unmarshalPlaintextBlock(data)
		if err != nil {
			continue
		}
		if block.structureID != structureID {
			continue
		}
		plain.Keys = append(plain.Keys, DecryptedKey{
			Type:      block.keyType,
			ID:        block.keyID,
			NotBefore: block.notBefore,
			NotAfter:  block.notAfter,
			Value:     block.key,
		})
	}
	if len(plain.Keys) == 0 {
		return nil, dcperr.KDMDecryptionError("no EncryptedKey block could be decrypted with the supplied private key", nil)
	}
	return plain, nil
}
