package certs

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"

	"github.com/rendiffdev/dcp/dcperr"
)

// Chain is an unordered multiset of certificates plus an optional private
// key, the unit embedded in every signed XML artifact this library
// produces.
type Chain struct {
	certs []*Certificate
	key   *rsa.PrivateKey
}

// NewChain builds a Chain from a set of certificates in any order.
func NewChain(certificates ...*Certificate) *Chain {
	return &Chain{certs: append([]*Certificate(nil), certificates...)}
}

// Add appends a certificate to the chain.
func (c *Chain) Add(cert *Certificate) { c.certs = append(c.certs, cert) }

// SetKey attaches a private key, required to produce signatures (not
// required merely to validate a chain's structure).
func (c *Chain) SetKey(key *rsa.PrivateKey) { c.key = key }

// Key returns the attached private key, or nil.
func (c *Chain) Key() *rsa.PrivateKey { return c.key }

// Certificates returns the chain's members in the unordered storage order.
func (c *Chain) Certificates() []*Certificate { return c.certs }

// LoadChainPEM reads every certificate from a concatenated PEM file,
// building an unordered Chain; a private key PEM file, if given, is
// attached as well.
func LoadChainPEM(certPath, keyPath string) (*Chain, error) {
	certificates, err := ReadPEMFile(certPath)
	if err != nil {
		return nil, err
	}
	chain := NewChain(certificates...)
	if keyPath != "" {
		key, err := ReadPrivateKeyPEMFile(keyPath)
		if err != nil {
			return nil, err
		}
		chain.SetKey(key)
	}
	return chain, nil
}

// RootToLeaf returns a deterministic ordering from the self-signed root to
// the leaf certificate, by walking issuer/subject links. It fails if any
// link is missing, duplicated, or more than one self-signed root exists.
func (c *Chain) RootToLeaf() ([]*Certificate, error) {
	if len(c.certs) == 0 {
		return nil, dcperr.CertificateChainError("chain is empty")
	}

	var roots []*Certificate
	bySubject := make(map[string][]*Certificate)
	for _, cert := range c.certs {
		bySubject[cert.Subject()] = append(bySubject[cert.Subject()], cert)
		if cert.IsSelfSigned() {
			roots = append(roots, cert)
		}
	}
	for subject, group := range bySubject {
		if len(group) > 1 {
			return nil, dcperr.CertificateChainError(fmt.Sprintf("duplicate certificate for subject %q", subject))
		}
	}
	if len(roots) == 0 {
		return nil, dcperr.CertificateChainError("no self-signed root certificate in chain")
	}
	if len(roots) > 1 {
		return nil, dcperr.CertificateChainError("multiple self-signed root certificates in chain")
	}

	ordered := []*Certificate{roots[0]}
	visited := map[string]bool{roots[0].Subject(): true}

	for {
		current := ordered[len(ordered)-1]
		var next *Certificate
		for _, cert := range c.certs {
			if visited[cert.Subject()] {
				continue
			}
			if cert.Issuer() == current.Subject() {
				if next != nil {
					return nil, dcperr.CertificateChainError(fmt.Sprintf("multiple certificates issued by %q", current.Subject()))
				}
				next = cert
			}
		}
		if next == nil {
			break
		}
		ordered = append(ordered, next)
		visited[next.Subject()] = true
	}

	if len(ordered) != len(c.certs) {
		return nil, dcperr.CertificateChainError("chain has a missing link: not every certificate connects root to leaf")
	}
	return ordered, nil
}

// Leaf returns the chain's leaf certificate (the last element of
// RootToLeaf).
func (c *Chain) Leaf() (*Certificate, error) {
	ordered, err := c.RootToLeaf()
	if err != nil {
		return nil, err
	}
	return ordered[len(ordered)-1], nil
}

// Valid reports whether every non-root certificate in the chain is signed
// by its stated issuer within the set, and, if a private key is attached,
// that it matches the leaf certificate's public key.
func (c *Chain) Valid() error {
	ordered, err := c.RootToLeaf()
	if err != nil {
		return err
	}

	for i := 1; i < len(ordered); i++ {
		issuer := ordered[i-1]
		subject := ordered[i]
		if err := subject.x509.CheckSignatureFrom(issuer.x509); err != nil {
			return dcperr.CertificateChainError(fmt.Sprintf("%q is not validly signed by issuer %q: %v", subject.Subject(), issuer.Subject(), err))
		}
	}

	if c.key != nil {
		leaf := ordered[len(ordered)-1]
		leafPub, err := leaf.PublicKey()
		if err != nil {
			return dcperr.CertificateChainError(err.Error())
		}
		if leafPub.N.Cmp(c.key.N) != 0 || leafPub.E != c.key.E {
			return dcperr.CertificateChainError("private key does not match leaf certificate's public key")
		}
	}

	return nil
}

// ReadPrivateKeyPEMFile reads a PKCS#1 or PKCS#8 RSA private key.
func ReadPrivateKeyPEMFile(path string) (*rsa.PrivateKey, error) {
	return readPrivateKeyPEM(path)
}

func readPrivateKeyPEM(path string) (*rsa.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("no PEM block found in %s", path)
	}
	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse private key in %s: %w", path, err)
	}
	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("private key in %s is not RSA", path)
	}
	return rsaKey, nil
}
