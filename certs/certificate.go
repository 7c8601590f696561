// Package certs implements X.509 certificate parsing and certificate-chain
// validation for the signer and recipient identities threaded through
// signed CPLs, PKLs, and KDMs (component C3).
package certs

import (
	"crypto/rsa"
	"crypto/sha1" //nolint:gosec // SHA-1 thumbprints are the SMPTE-mandated digest here, not used for security.
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"os"
	"strings"

	"github.com/rendiffdev/dcp/ids"
)

// Certificate owns a parsed X.509 structure and caches its derived
// public-key digest, computed lazily on first use.
type Certificate struct {
	x509  *x509.Certificate
	pemBytes []byte

	dnQualifier string
	haveDNQ     bool
}

// Parse parses a single DER-encoded certificate.
func Parse(der []byte) (*Certificate, error) {
	c, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, fmt.Errorf("parse certificate: %w", err)
	}
	return &Certificate{x509: c}, nil
}

// ParsePEM parses the first PEM-encoded CERTIFICATE block in data.
func ParsePEM(data []byte) (*Certificate, error) {
	certs, err := ParseAllPEM(data)
	if err != nil {
		return nil, err
	}
	if len(certs) == 0 {
		return nil, fmt.Errorf("no CERTIFICATE block found")
	}
	return certs[0], nil
}

// ParseAllPEM parses every PEM-encoded CERTIFICATE block in data, in order.
func ParseAllPEM(data []byte) ([]*Certificate, error) {
	var out []*Certificate
	rest := data
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			break
		}
		if block.Type != "CERTIFICATE" {
			continue
		}
		c, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("parse certificate: %w", err)
		}
		out = append(out, &Certificate{x509: c, pemBytes: pem.EncodeToMemory(block)})
	}
	return out, nil
}

// ReadPEMFile reads and parses every certificate in a PEM file.
func ReadPEMFile(path string) ([]*Certificate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return ParseAllPEM(data)
}

// PEM re-encodes the certificate as a PEM CERTIFICATE block.
func (c *Certificate) PEM() []byte {
	if c.pemBytes != nil {
		return c.pemBytes
	}
	return pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: c.x509.Raw})
}

// X509 exposes the underlying parsed certificate.
func (c *Certificate) X509() *x509.Certificate { return c.x509 }

// Subject returns the certificate's subject distinguished name string.
func (c *Certificate) Subject() string { return c.x509.Subject.String() }

// Issuer returns the certificate's issuer distinguished name string.
func (c *Certificate) Issuer() string { return c.x509.Issuer.String() }

// SerialNumber returns the certificate's serial number as a decimal string.
func (c *Certificate) SerialNumber() string { return c.x509.SerialNumber.String() }

// NotBefore returns the validity window's start.
func (c *Certificate) NotBefore() ids.LocalTime { return ids.FromTime(c.x509.NotBefore) }

// NotAfter returns the validity window's end.
func (c *Certificate) NotAfter() ids.LocalTime { return ids.FromTime(c.x509.NotAfter) }

// ValidAt reports whether at falls within [NotBefore, NotAfter].
func (c *Certificate) ValidAt(at ids.LocalTime) bool {
	return !at.Before(c.NotBefore()) && !at.After(c.NotAfter())
}

// Thumbprint returns the SHA-1 digest of the certificate's raw (signed)
// body, matching the value used to identify a KDM recipient certificate.
func (c *Certificate) Thumbprint() []byte {
	sum := sha1.Sum(c.x509.Raw) //nolint:gosec // mandated digest, see package doc.
	return sum[:]
}

// ThumbprintBase64 is Thumbprint, base64-std encoded.
func (c *Certificate) ThumbprintBase64() string {
	return base64.StdEncoding.EncodeToString(c.Thumbprint())
}

// IsSelfSigned reports whether the certificate's issuer and subject match
// and its signature verifies against its own public key.
func (c *Certificate) IsSelfSigned() bool {
	if c.x509.Issuer.String() != c.x509.Subject.String() {
		return false
	}
	return c.x509.CheckSignatureFrom(c.x509) == nil
}

// DNQualifier returns the RFC-2253-escaped dnQualifier attribute value
// derived from the base64-encoded SHA-1 digest of the certificate's
// DER-encoded SubjectPublicKeyInfo. SMPTE KDM/CPL certificate
// subjects carry this as their "dnQualifier=" RDN.
func (c *Certificate) DNQualifier() string {
	if c.haveDNQ {
		return c.dnQualifier
	}
	sum := sha1.Sum(c.x509.RawSubjectPublicKeyInfo) //nolint:gosec // mandated digest.
	b64 := base64.StdEncoding.EncodeToString(sum[:])
	c.dnQualifier = escapeDNQualifier(b64)
	c.haveDNQ = true
	return c.dnQualifier
}

// escapeDNQualifier RFC-escapes the characters base64 can produce that are
// significant in an RDN string (',', '+', '"', '\', '<', '>', ';', and the
// '/', '=' that base64 itself introduces are left as-is per the convention
// this library's signer certificates are generated under).
func escapeDNQualifier(s string) string {
	return strings.NewReplacer(`\`, `\\`, ",", `\,`, "+", `\+`, `"`, `\"`, "<", `\<`, ">", `\>`, ";", `\;`).Replace(s)
}

// PublicKey returns the certificate's public key as *rsa.PublicKey,
// erroring if the certificate does not carry an RSA key (every signer and
// recipient certificate in this system is RSA).
func (c *Certificate) PublicKey() (*rsa.PublicKey, error) {
	pub, ok := c.x509.PublicKey.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("certificate public key is not RSA")
	}
	return pub, nil
}
