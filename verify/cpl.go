package verify

import (
	"os"
	"path/filepath"

	"golang.org/x/text/language"

	"github.com/rendiffdev/dcp/assets"
	"github.com/rendiffdev/dcp/cpl"
	"github.com/rendiffdev/dcp/dcp"
	"github.com/rendiffdev/dcp/notes"
	"github.com/rendiffdev/dcp/pkl"
	"github.com/rendiffdev/dcp/xmlio"
)

// verifyCPL runs stage 3, the checks that apply once per
// composition playlist rather than per reel. Structural well-formedness
// (element order, required fields) is not re-checked here: cpl.FromXML
// already enforces this library's schema subset at ingest, and any
// violation severe enough to matter surfaces there as a load failure
// rather than reaching this stage at all.
func verifyCPL(d *dcp.DCP, c *cpl.CPL, sink notes.Sink) {
	if c.AnnotationText == "" {
		sink.Add(notes.Note{
			Code:     notes.CodeMissingCPLAnnotationText,
			Severity: notes.SeverityBv21Error,
			Message:  "SMPTE CPL has no AnnotationText",
			Path:     c.ID.String(),
		})
	} else if len(d.CPLs) == 1 && c.AnnotationText != c.ContentTitleText {
		sink.Add(notes.Note{
			Code:     notes.CodeMismatchedCPLAnnotationText,
			Severity: notes.SeverityWarning,
			Message:  "AnnotationText does not match ContentTitleText",
			Path:     c.ID.String(),
		})
	}

	checkCPLEncryptionConsistency(c, sink)
	checkCPLHashAgainstPKL(d, c, sink)

	for _, lang := range cplLanguages(c) {
		if _, err := language.Parse(lang); err != nil {
			sink.Add(notes.Note{
				Code:     notes.CodeInvalidLanguage,
				Severity: notes.SeverityError,
				Message:  "malformed language tag " + lang,
				Path:     c.ID.String(),
			})
		}
	}
	if c.ReleaseTerritory != "" && c.ReleaseTerritory != "001" {
		if _, err := language.ParseRegion(c.ReleaseTerritory); err != nil {
			sink.Add(notes.Note{
				Code:     notes.CodeInvalidLanguage,
				Severity: notes.SeverityError,
				Message:  "malformed release territory " + c.ReleaseTerritory,
				Path:     c.ID.String(),
			})
		}
	}
}

// cplLanguages collects every language-bearing field this CPL carries:
// its sign-language video language plus each reel's subtitle asset
// language (when resolved).
func cplLanguages(c *cpl.CPL) []string {
	var out []string
	if c.SignLanguageVideoLang != "" {
		out = append(out, c.SignLanguageVideoLang)
	}
	for _, reel := range c.Reels {
		if reel.MainSubtitle == nil {
			continue
		}
		resolved, ok := reel.MainSubtitle.Resolved()
		if !ok {
			continue
		}
		if tt, ok := resolved.(*assets.TimedTextAsset); ok && tt.Language != "" {
			out = append(out, tt.Language)
		}
	}
	return out
}

// checkCPLEncryptionConsistency flags a composition that mixes encrypted
// and cleartext essence across its reels, the partial-KDM
// coverage case: every resolved MXFAsset in every reel must agree on
// whether the content is encrypted.
func checkCPLEncryptionConsistency(c *cpl.CPL, sink notes.Sink) {
	var sawEncrypted, sawCleartext bool
	for _, reel := range c.Reels {
		for _, ref := range reel.AllReferences() {
			resolved, ok := ref.Resolved()
			if !ok {
				continue
			}
			mxfAsset, ok := resolved.(assets.MXFAsset)
			if !ok {
				continue
			}
			if mxfAsset.Encrypted() {
				sawEncrypted = true
			} else {
				sawCleartext = true
			}
		}
	}
	if sawEncrypted && sawCleartext {
		sink.Add(notes.Note{
			Code:     notes.CodePartiallyEncrypted,
			Severity: notes.SeverityWarning,
			Message:  "composition mixes encrypted and cleartext essence",
			Path:     c.ID.String(),
		})
	}
}

// checkCPLHashAgainstPKL compares the CPL's own on-disk file hash against
// its recorded PKL entry: the MISMATCHED_CPL_HASHES finding.
func checkCPLHashAgainstPKL(d *dcp.DCP, c *cpl.CPL, sink notes.Sink) {
	relPath, entry, ok := cplOnDiskEntry(d, c)
	if !ok || entry.Hash == "" {
		return
	}
	actual, err := hashFile(filepath.Join(d.Root, relPath))
	if err != nil {
		return
	}
	if actual != entry.Hash {
		sink.Add(notes.Note{
			Code:     notes.CodeMismatchedCPLHashes,
			Severity: notes.SeverityError,
			Message:  "CPL file hash does not match its PKL entry",
			Path:     relPath,
		})
	}
}

func hashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return base64SHA1(data), nil
}

// verifySignatures runs stage 8, signature checks. An encrypted CPL or PKL that
// carries no <ds:Signature> is itself a finding regardless of whether
// verification of an existing signature succeeds; a present signature is
// additionally checked against opts.TrustedRoots when any were supplied.
//
// Neither cpl.CPL nor pkl.PKL retains the xmlio.Element tree it was parsed
// from, so this stage re-parses the file from disk to look for the
// Signature element rather than reusing an in-memory root.
func verifySignatures(d *dcp.DCP, c *cpl.CPL, opts Options, sink notes.Sink) {
	relPath, _, ok := cplOnDiskEntry(d, c)
	if !ok {
		return
	}
	encrypted := cplHasEncryptedContent(c)
	root, err := parseXMLFile(filepath.Join(d.Root, relPath))
	if err != nil {
		return
	}
	signed := root.Find("Signature") != nil
	if encrypted && !signed {
		sink.Add(notes.Note{
			Code:     notes.CodeUnsignedCPLWithEncryptedContent,
			Severity: notes.SeverityError,
			Message:  "CPL references encrypted content but is not signed",
			Path:     relPath,
		})
	}
	if signed {
		if err := xmlio.Verify(root, opts.TrustedRoots); err != nil {
			sink.Add(notes.Note{
				Code:     notes.CodeInvalidXML,
				Severity: notes.SeverityError,
				Message:  "CPL signature verification failed: " + err.Error(),
				Path:     relPath,
			})
		}
	}
}

func cplHasEncryptedContent(c *cpl.CPL) bool {
	for _, reel := range c.Reels {
		for _, ref := range reel.AllReferences() {
			resolved, ok := ref.Resolved()
			if !ok {
				continue
			}
			if mxfAsset, ok := resolved.(assets.MXFAsset); ok && mxfAsset.Encrypted() {
				return true
			}
		}
	}
	return false
}

func parseXMLFile(path string) (*xmlio.Element, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return xmlio.Parse(data)
}

// verifyPKLsAndAssetMap runs stage 9: cross-checks between a
// PKL and the CPLs it packages that ingest-time schema validation does not
// cover, since it operates purely on field values rather than document
// structure.
func verifyPKLsAndAssetMap(d *dcp.DCP, sink notes.Sink) {
	for _, p := range d.PKLs {
		// A PKL's AnnotationText is only held to a CPL's ContentTitleText
		// when the DCP holds exactly one CPL and this PKL packages it; with
		// more than one CPL, there is no single title the PKL's text could
		// agree with.
		if len(d.CPLs) == 1 {
			c := d.CPLs[0]
			if _, ok := p.Find(c.ID); ok && p.AnnotationText != "" && p.AnnotationText != c.ContentTitleText {
				sink.Add(notes.Note{
					Code:     notes.CodeMismatchedPKLAnnotationTextWithCPL,
					Severity: notes.SeverityBv21Error,
					Message:  "PKL AnnotationText does not match its CPL's ContentTitleText",
					Path:     p.ID.String(),
				})
			}
		}
		if pklHasEncryptedAsset(d, p) {
			amEntry, found := d.AssetMap.Find(p.ID)
			signed := false
			if found {
				if root, err := parseXMLFile(filepath.Join(d.Root, amEntry.Path)); err == nil {
					signed = root.Find("Signature") != nil
				}
			}
			if !signed {
				sink.Add(notes.Note{
					Code:     notes.CodeUnsignedPKLWithEncryptedContent,
					Severity: notes.SeverityError,
					Message:  "PKL packages encrypted content but is not signed",
					Path:     p.ID.String(),
				})
			}
		}
	}
}

// pklHasEncryptedAsset reports whether any asset this PKL lists is a loaded
// MXF asset marked as encrypted.
func pklHasEncryptedAsset(d *dcp.DCP, p *pkl.PKL) bool {
	for _, entry := range p.Entries {
		for _, a := range d.Assets {
			if !a.AssetID().Equal(entry.AssetID) {
				continue
			}
			if mxfAsset, ok := a.(assets.MXFAsset); ok && mxfAsset.Encrypted() {
				return true
			}
		}
	}
	return false
}
