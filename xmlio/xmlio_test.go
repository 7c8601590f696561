package xmlio

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/rendiffdev/dcp/certs"
)

func TestWriteDocumentPreservesChildOrder(t *testing.T) {
	root := NewElement("CompositionPlaylist")
	root.DeclareXmlns("", "http://www.smpte-ra.org/schemas/429-7/2006/CPL")
	root.AddChild(NewElement("Id")).SetText("urn:uuid:aaaa")
	root.AddChild(NewElement("ContentTitleText")).SetText("Example & Title")
	root.AddChild(NewElement("ReelList"))

	doc := string(WriteDocument(root))
	idIdx := strings.Index(doc, "<Id>")
	titleIdx := strings.Index(doc, "<ContentTitleText>")
	reelIdx := strings.Index(doc, "<ReelList")
	if !(idIdx < titleIdx && titleIdx < reelIdx) {
		t.Fatalf("expected document order Id < ContentTitleText < ReelList, got %s", doc)
	}
	if !strings.Contains(doc, "Example &amp; Title") {
		t.Fatalf("expected escaped ampersand, got %s", doc)
	}
}

func TestParseRoundTripsSerializedDocument(t *testing.T) {
	root := NewElement("PackingList")
	root.AddChild(NewElement("Id")).SetText("urn:uuid:bbbb")
	assetList := root.AddChild(NewElement("AssetList"))
	assetList.AddChild(NewElement("Asset")).SetAttr("ref", "x")

	data := WriteDocument(root)
	parsed, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if parsed.Local != "PackingList" {
		t.Fatalf("expected root PackingList, got %s", parsed.Local)
	}
	idEl := parsed.Child("Id")
	if idEl == nil || idEl.TrimmedText() != "urn:uuid:bbbb" {
		t.Fatalf("expected Id child with text urn:uuid:bbbb, got %+v", idEl)
	}
}

func testSigningChain(t *testing.T) *certs.Chain {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	template := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "Test Signer"},
		NotBefore:             time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		NotAfter:              time.Date(2040, 1, 1, 0, 0, 0, 0, time.UTC),
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageDigitalSignature,
		BasicConstraintsValid: true,
		IsCA:                  true,
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("create certificate: %v", err)
	}
	cert, err := certs.Parse(der)
	if err != nil {
		t.Fatalf("parse certificate: %v", err)
	}
	chain := certs.NewChain(cert)
	chain.SetKey(key)
	return chain
}

func TestSignAndVerifyRoundTrip(t *testing.T) {
	chain := testSigningChain(t)
	signer, err := NewSigner(chain)
	if err != nil {
		t.Fatalf("NewSigner failed: %v", err)
	}

	root := NewElement("CompositionPlaylist")
	root.AddChild(NewElement("Id")).SetText("urn:uuid:cccc")

	if _, err := signer.Sign(root); err != nil {
		t.Fatalf("Sign failed: %v", err)
	}

	if err := Verify(root, nil); err != nil {
		t.Fatalf("Verify failed on freshly signed document: %v", err)
	}

	// A reparsed round trip through the writer must still verify.
	data := WriteDocument(root)
	parsed, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if err := Verify(parsed, nil); err != nil {
		t.Fatalf("Verify failed after serialize/parse round trip: %v", err)
	}
}

func TestVerifyRejectsTamperedContent(t *testing.T) {
	chain := testSigningChain(t)
	signer, err := NewSigner(chain)
	if err != nil {
		t.Fatalf("NewSigner failed: %v", err)
	}

	root := NewElement("CompositionPlaylist")
	root.AddChild(NewElement("Id")).SetText("urn:uuid:dddd")
	if _, err := signer.Sign(root); err != nil {
		t.Fatalf("Sign failed: %v", err)
	}

	root.Child("Id").SetText("urn:uuid:eeee")

	if err := Verify(root, nil); err == nil {
		t.Fatal("expected verification failure after tampering with signed content")
	}
}
