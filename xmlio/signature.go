package xmlio

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"

	"github.com/rendiffdev/dcp/certs"
	"github.com/rendiffdev/dcp/dcperr"
)

// Namespace URIs this library declares on every signed root element.
const (
	NSDSig = "http://www.w3.org/2000/09/xmldsig#"
)

// canonicalize produces this library's stand-in for W3C Exclusive XML
// Canonicalization: a deterministic, whitespace-free serialization of an
// element subtree. A full C14N implementation has to cope with arbitrary
// third-party XML (comments, mixed content, inherited namespace scoping);
// this library only ever signs and verifies documents it produced itself
// with Serialize, so a stable document-order serialization is sufficient to
// satisfy the "same logical document digests the same way" contract this
// signature scheme needs, without a full xmlsec/C14N binding. This
// simplification is recorded in DESIGN.md.
func canonicalize(e *Element) []byte {
	return Serialize(e)
}

// Signer produces enveloped XML-DSig signatures using a Chain's attached
// private key and certificate list, in the mandated structure:
// a <Signer> element naming the signing certificate, followed by a
// <ds:Signature> computed over the document with that Signature element
// itself excluded.
type Signer struct {
	chain *certs.Chain
}

// NewSigner builds a Signer from a certificate chain carrying a private key.
func NewSigner(chain *certs.Chain) (*Signer, error) {
	if chain.Key() == nil {
		return nil, dcperr.BadSettingError("signing chain has no private key attached")
	}
	return &Signer{chain: chain}, nil
}

// Sign appends a <Signer> and <ds:Signature> element to root as its final
// two children, in place, and returns the digest that was signed (useful
// for tests asserting digest stability).
func (s *Signer) Sign(root *Element) ([]byte, error) {
	leaf, err := s.chain.Leaf()
	if err != nil {
		return nil, err
	}

	signerEl := NewElement("Signer")
	issuerSerial := signerEl.AddChild(NewPrefixedElement("dsig", "X509IssuerSerial"))
	issuerSerial.AddChild(NewPrefixedElement("dsig", "X509IssuerName")).SetText(leaf.Issuer())
	issuerSerial.AddChild(NewPrefixedElement("dsig", "X509SerialNumber")).SetText(leaf.SerialNumber())
	root.AddChild(signerEl)

	digest := sha256.Sum256(canonicalize(root))

	key := s.chain.Key()
	sig, err := rsa.SignPKCS1v15(rand.Reader, key, crypto.SHA256, digest[:])
	if err != nil {
		return nil, dcperr.MiscError("sign digest", err)
	}

	sigEl := NewPrefixedElement("dsig", "Signature")
	sigEl.DeclareXmlns("dsig", NSDSig)
	signedInfo := sigEl.AddChild(NewPrefixedElement("dsig", "SignedInfo"))
	signedInfo.AddChild(NewPrefixedElement("dsig", "CanonicalizationMethod")).
		SetAttr("Algorithm", "http://www.w3.org/2001/10/xml-exc-c14n#")
	signedInfo.AddChild(NewPrefixedElement("dsig", "SignatureMethod")).
		SetAttr("Algorithm", "http://www.w3.org/2001/04/xmldsig-more#rsa-sha256")
	digestValue := base64.StdEncoding.EncodeToString(digest[:])
	signedInfo.AddChild(NewPrefixedElement("dsig", "Reference")).
		AddChild(NewPrefixedElement("dsig", "DigestValue")).SetText(digestValue)
	sigEl.AddChild(NewPrefixedElement("dsig", "SignatureValue")).
		SetText(base64.StdEncoding.EncodeToString(sig))

	keyInfo := sigEl.AddChild(NewPrefixedElement("dsig", "KeyInfo"))
	x509Data := keyInfo.AddChild(NewPrefixedElement("dsig", "X509Data"))
	for _, c := range s.chain.Certificates() {
		x509Data.AddChild(NewPrefixedElement("dsig", "X509Certificate")).
			SetText(base64.StdEncoding.EncodeToString(c.X509().Raw))
	}

	root.AddChild(sigEl)
	return digest[:], nil
}

// Verify checks the enveloped signature on root: it recomputes the digest
// over the document with <ds:Signature> removed, verifies the
// RSA-PKCS1v15/SHA-256 signature against the certificate embedded in
// <ds:KeyInfo>, and confirms that certificate chains to a trusted root
// among trustedRoots (none required if trustedRoots is empty — callers
// needing trust-anchor enforcement pass the applicable root set).
func Verify(root *Element, trustedRoots []*certs.Certificate) error {
	sigEl := root.Find("Signature")
	if sigEl == nil {
		return dcperr.XMLError("document has no ds:Signature element", nil)
	}
	signerEl := root.Find("Signer")
	if signerEl == nil {
		return dcperr.XMLError("document has no Signer element", nil)
	}

	keyInfo := sigEl.Find("KeyInfo")
	if keyInfo == nil {
		return dcperr.XMLError("Signature has no KeyInfo", nil)
	}
	x509Data := keyInfo.Find("X509Data")
	if x509Data == nil {
		return dcperr.XMLError("KeyInfo has no X509Data", nil)
	}
	certEls := x509Data.ChildrenNamed("X509Certificate")
	if len(certEls) == 0 {
		return dcperr.XMLError("X509Data has no X509Certificate entries", nil)
	}

	var chainCerts []*certs.Certificate
	for _, ce := range certEls {
		der, err := base64.StdEncoding.DecodeString(ce.TrimmedText())
		if err != nil {
			return dcperr.XMLError("decode X509Certificate", err)
		}
		c, err := certs.Parse(der)
		if err != nil {
			return dcperr.CertificateChainError(err.Error())
		}
		chainCerts = append(chainCerts, c)
	}
	leaf := chainCerts[0]
	for _, c := range chainCerts {
		if !c.IsSelfSigned() {
			leaf = c
			break
		}
	}

	sigValueEl := sigEl.Find("SignatureValue")
	if sigValueEl == nil {
		return dcperr.XMLError("Signature has no SignatureValue", nil)
	}
	sigBytes, err := base64.StdEncoding.DecodeString(sigValueEl.TrimmedText())
	if err != nil {
		return dcperr.XMLError("decode SignatureValue", err)
	}

	stripped := withoutSignature(root)
	digest := sha256.Sum256(canonicalize(stripped))

	leafPub, err := leaf.PublicKey()
	if err != nil {
		return dcperr.CertificateChainError(err.Error())
	}
	if err := rsa.VerifyPKCS1v15(leafPub, crypto.SHA256, digest[:], sigBytes); err != nil {
		return dcperr.XMLError("signature verification failed", err)
	}

	if len(trustedRoots) > 0 {
		chain := certs.NewChain(chainCerts...)
		if err := chain.Valid(); err != nil {
			return err
		}
		ordered, _ := chain.RootToLeaf()
		trusted := false
		for _, r := range trustedRoots {
			if r.X509().Equal(ordered[0].X509()) {
				trusted = true
			}
		}
		if !trusted {
			return dcperr.CertificateChainError("signing chain's root is not among the trusted roots")
		}
	}

	return nil
}

// withoutSignature returns a shallow copy of root with its Signature child
// removed. Sign digests the document after appending Signer but before
// appending Signature, so Verify must strip only the latter to reproduce
// the same bytes.
func withoutSignature(root *Element) *Element {
	clone := &Element{
		Prefix: root.Prefix,
		Local:  root.Local,
		Attrs:  root.Attrs,
		Xmlns:  root.Xmlns,
		Text:   root.Text,
	}
	for _, c := range root.Children {
		if c.Local == "Signature" {
			continue
		}
		clone.Children = append(clone.Children, c)
	}
	return clone
}
