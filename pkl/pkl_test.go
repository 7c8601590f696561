package pkl

import (
	"testing"

	"github.com/rendiffdev/dcp/assets"
	"github.com/rendiffdev/dcp/ids"
	"github.com/rendiffdev/dcp/xmlio"
)

func TestPKLRejectsDuplicateAssetID(t *testing.T) {
	src := ids.NewDeterministic()
	p := New(src.New(), "issuer", "creator", ids.Now(0))

	assetID := src.New()
	if err := p.Add(Entry{AssetID: assetID, Hash: "abc", Size: 10, Type: "application/mxf"}); err != nil {
		t.Fatalf("first Add failed: %v", err)
	}
	if err := p.Add(Entry{AssetID: assetID, Hash: "def", Size: 20, Type: "application/mxf"}); err == nil {
		t.Fatal("expected error adding duplicate asset id")
	}
}

func TestPKLXMLRoundTrip(t *testing.T) {
	src := ids.NewDeterministic()
	p := New(src.New(), "issuer", "creator", ids.Now(0))
	assetID := src.New()
	if err := p.Add(Entry{AssetID: assetID, Hash: "abc123", Size: 42, Type: "application/mxf"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	doc := p.ToXML(assets.StandardSMPTE)
	data := xmlio.WriteDocument(doc)

	parsed, err := xmlio.Parse(data)
	if err != nil {
		t.Fatalf("xmlio.Parse failed: %v", err)
	}
	roundTripped, err := FromXML(parsed)
	if err != nil {
		t.Fatalf("FromXML failed: %v", err)
	}
	if !roundTripped.ID.Equal(p.ID) {
		t.Fatal("expected PKL id to round trip")
	}
	entry, ok := roundTripped.Find(assetID)
	if !ok {
		t.Fatal("expected asset entry to round trip")
	}
	if entry.Hash != "abc123" || entry.Size != 42 {
		t.Fatalf("entry mismatch: %+v", entry)
	}
}

func TestTypesMatchStripsParameter(t *testing.T) {
	if !TypesMatch("text/xml;asdcpKind=CPL", "text/xml") {
		t.Fatal("expected types to match ignoring parameter")
	}
	if TypesMatch("application/mxf", "text/xml") {
		t.Fatal("expected different base types to mismatch")
	}
}

func TestAssetMapXMLRoundTrip(t *testing.T) {
	src := ids.NewDeterministic()
	m := NewAssetMap(src.New(), "issuer", "creator", ids.Now(0))
	pklID := src.New()
	if err := m.Add(AssetMapEntry{AssetID: pklID, Path: "pkl.xml", IsPackingList: true}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	doc := m.ToXML(assets.StandardSMPTE)
	data := xmlio.WriteDocument(doc)

	parsed, err := xmlio.Parse(data)
	if err != nil {
		t.Fatalf("xmlio.Parse failed: %v", err)
	}
	roundTripped, err := FromXML(parsed, assets.StandardSMPTE)
	if err != nil {
		t.Fatalf("FromXML failed: %v", err)
	}
	entry, ok := roundTripped.Find(pklID)
	if !ok {
		t.Fatal("expected asset map entry to round trip")
	}
	if entry.Path != "pkl.xml" || !entry.IsPackingList {
		t.Fatalf("entry mismatch: %+v", entry)
	}
}
