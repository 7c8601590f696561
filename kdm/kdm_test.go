package kdm

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	mathrand "math/rand"
	"testing"
	"time"

	"github.com/rendiffdev/dcp/certs"
	"github.com/rendiffdev/dcp/ids"
	"github.com/rendiffdev/dcp/xmlio"
)

// selfSignedCert builds a self-signed RSA certificate valid for the given
// window, for tests that need a certs.Certificate without reading a fixture.
func selfSignedCert(t *testing.T, commonName string, notBefore, notAfter time.Time) (*certs.Certificate, *rsa.PrivateKey) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	template := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: commonName},
		Issuer:       pkix.Name{CommonName: commonName},
		NotBefore:    notBefore,
		NotAfter:     notAfter,
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("create certificate: %v", err)
	}
	c, err := certs.Parse(der)
	if err != nil {
		t.Fatalf("parse certificate: %v", err)
	}
	return c, key
}

func testDecryptedKDM(src *ids.Deterministic) *DecryptedKDM {
	notBefore := ids.NewLocalTime(2026, time.January, 1, 0, 0, 0, 0)
	notAfter := ids.NewLocalTime(2026, time.February, 1, 0, 0, 0, 0)
	return &DecryptedKDM{
		CPLID:            src.New(),
		ContentTitleText: "TEST-FEATURE_FTR-1_F_XX-XX_51_2K_20260101_ABC_SMPTE_OV",
		NotBefore:        notBefore,
		NotAfter:         notAfter,
		Keys: []DecryptedKey{
			{Type: KeyTypePicture, ID: src.New(), NotBefore: notBefore, NotAfter: notAfter, Value: [16]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}},
			{Type: KeyTypeSound, ID: src.New(), NotBefore: notBefore, NotAfter: notAfter, Value: [16]byte{16, 15, 14, 13, 12, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1}},
		},
	}
}

func TestEncryptThenDecryptRecoversOriginalKeys(t *testing.T) {
	src := ids.NewDeterministic()
	signerCert, signerKey := selfSignedCert(t, "signer", time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC))
	signerChain := certs.NewChain(signerCert)
	signerChain.SetKey(signerKey)

	recipientCert, recipientKey := selfSignedCert(t, "recipient", time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC))

	plain := testDecryptedKDM(src)
	enc, err := Encrypt(rand.Reader, plain, signerChain, recipientCert, nil, nil)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	if len(enc.EncryptedKeys) != 2 {
		t.Fatalf("expected 2 encrypted keys, got %d", len(enc.EncryptedKeys))
	}

	decrypted, err := Decrypt(enc, recipientKey)
	if err != nil {
		t.Fatalf("Decrypt failed: %v", err)
	}
	if len(decrypted.Keys) != 2 {
		t.Fatalf("expected 2 decrypted keys, got %d", len(decrypted.Keys))
	}
	for i, k := range decrypted.Keys {
		if !k.ID.Equal(plain.Keys[i].ID) {
			t.Fatalf("key %d id mismatch", i)
		}
		if k.Value != plain.Keys[i].Value {
			t.Fatalf("key %d value mismatch: got %v want %v", i, k.Value, plain.Keys[i].Value)
		}
		if k.Type != plain.Keys[i].Type {
			t.Fatalf("key %d type mismatch: got %v want %v", i, k.Type, plain.Keys[i].Type)
		}
	}
}

func TestEncryptIsDeterministicGivenTheSameRNGSeed(t *testing.T) {
	src := ids.NewDeterministic()
	signerCert, signerKey := selfSignedCert(t, "signer", time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC))
	signerChain := certs.NewChain(signerCert)
	signerChain.SetKey(signerKey)
	recipientCert, _ := selfSignedCert(t, "recipient", time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC))

	plain := testDecryptedKDM(src)

	encA, err := Encrypt(mathrand.New(mathrand.NewSource(42)), plain, signerChain, recipientCert, nil, nil)
	if err != nil {
		t.Fatalf("first Encrypt failed: %v", err)
	}
	encB, err := Encrypt(mathrand.New(mathrand.NewSource(42)), plain, signerChain, recipientCert, nil, nil)
	if err != nil {
		t.Fatalf("second Encrypt failed: %v", err)
	}
	if len(encA.EncryptedKeys) != len(encB.EncryptedKeys) {
		t.Fatal("expected the same number of encrypted keys from both runs")
	}
	for i := range encA.EncryptedKeys {
		if !bytes.Equal(encA.EncryptedKeys[i].CipherText, encB.EncryptedKeys[i].CipherText) {
			t.Fatalf("key %d ciphertext differs between runs seeded identically", i)
		}
	}
}

func TestEncryptRejectsWindowOutsideSignerValidity(t *testing.T) {
	src := ids.NewDeterministic()
	signerCert, signerKey := selfSignedCert(t, "signer", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC))
	signerChain := certs.NewChain(signerCert)
	signerChain.SetKey(signerKey)
	recipientCert, _ := selfSignedCert(t, "recipient", time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC))

	plain := testDecryptedKDM(src) // validity window is January 2026, outside the signer's March-April window

	if _, err := Encrypt(rand.Reader, plain, signerChain, recipientCert, nil, nil); err == nil {
		t.Fatal("expected BadKDMDateError for a window outside the signer's certificate validity")
	}
}

func TestDecryptRejectsWrongPrivateKey(t *testing.T) {
	src := ids.NewDeterministic()
	signerCert, signerKey := selfSignedCert(t, "signer", time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC))
	signerChain := certs.NewChain(signerCert)
	signerChain.SetKey(signerKey)
	recipientCert, _ := selfSignedCert(t, "recipient", time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC))
	_, otherKey := selfSignedCert(t, "other", time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC))

	plain := testDecryptedKDM(src)
	enc, err := Encrypt(rand.Reader, plain, signerChain, recipientCert, nil, nil)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	if _, err := Decrypt(enc, otherKey); err == nil {
		t.Fatal("expected Decrypt to fail against a private key that doesn't match the recipient")
	}
}

func TestToXMLThenFromXMLRoundTrips(t *testing.T) {
	src := ids.NewDeterministic()
	signerCert, signerKey := selfSignedCert(t, "signer", time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC))
	signerChain := certs.NewChain(signerCert)
	signerChain.SetKey(signerKey)
	recipientCert, _ := selfSignedCert(t, "recipient", time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC))

	disableAbove := 2
	marks := &ForensicMarkFlags{DisablePicture: true, DisableAudioAboveChannel: &disableAbove}

	plain := testDecryptedKDM(src)
	enc, err := Encrypt(rand.Reader, plain, signerChain, recipientCert, []*certs.Certificate{recipientCert}, marks)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	root := enc.ToXML()
	data := xmlio.WriteDocument(root)

	parsed, err := xmlio.Parse(data)
	if err != nil {
		t.Fatalf("xmlio.Parse failed: %v", err)
	}
	roundTripped, err := FromXML(parsed)
	if err != nil {
		t.Fatalf("FromXML failed: %v", err)
	}
	if !roundTripped.CPLID.Equal(enc.CPLID) {
		t.Fatal("expected CPL id to round trip")
	}
	if roundTripped.ContentTitleText != enc.ContentTitleText {
		t.Fatal("expected content title to round trip")
	}
	if len(roundTripped.EncryptedKeys) != len(enc.EncryptedKeys) {
		t.Fatalf("expected %d encrypted keys, got %d", len(enc.EncryptedKeys), len(roundTripped.EncryptedKeys))
	}
	for i := range enc.EncryptedKeys {
		if !bytes.Equal(roundTripped.EncryptedKeys[i].CipherText, enc.EncryptedKeys[i].CipherText) {
			t.Fatalf("encrypted key %d did not round trip byte-for-byte", i)
		}
	}
	if roundTripped.ForensicMarks == nil || !roundTripped.ForensicMarks.DisablePicture {
		t.Fatal("expected forensic picture-disable flag to round trip")
	}
	if roundTripped.ForensicMarks.DisableAudioAboveChannel == nil || *roundTripped.ForensicMarks.DisableAudioAboveChannel != 2 {
		t.Fatal("expected forensic audio-disable-above-channel flag to round trip")
	}
	if len(roundTripped.AuthorizedDevices) != 1 {
		t.Fatalf("expected 1 authorized device, got %d", len(roundTripped.AuthorizedDevices))
	}
}

func TestForensicMarkFlagsIsZero(t *testing.T) {
	if !(*ForensicMarkFlags)(nil).IsZero() {
		t.Fatal("expected a nil *ForensicMarkFlags to be zero")
	}
	if !(&ForensicMarkFlags{}).IsZero() {
		t.Fatal("expected an all-false ForensicMarkFlags to be zero")
	}
	if (&ForensicMarkFlags{DisablePicture: true}).IsZero() {
		t.Fatal("expected DisablePicture=true to be non-zero")
	}
}
