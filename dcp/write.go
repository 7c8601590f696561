package dcp

import (
	"crypto/sha1" //nolint:gosec // mandated digest, matches assets.Base.Hash.
	"encoding/base64"
	"os"
	"path/filepath"

	"github.com/rendiffdev/dcp/assets"
	"github.com/rendiffdev/dcp/dcperr"
	"github.com/rendiffdev/dcp/ids"
	"github.com/rendiffdev/dcp/pkl"
	"github.com/rendiffdev/dcp/xmlio"
)

// hashAndSize computes the same base64(SHA-1) digest assets.Base.Hash uses,
// for in-memory XML documents (CPLs) that have no on-disk file to hash until
// after this call writes them.
func hashAndSize(data []byte) (string, int64, error) {
	h := sha1.New() //nolint:gosec // mandated digest, see assets.Base.Hash.
	if _, err := h.Write(data); err != nil {
		return "", 0, dcperr.MiscError("hash in-memory document", err)
	}
	return base64.StdEncoding.EncodeToString(h.Sum(nil)), int64(len(data)), nil
}

// WriteOptions configures Write. NameFormat follows the "{t}"/"{id}"
// substitution grammar FormatName implements; the default
// produces "<id>_<t>.xml". Issuer/Creator/IssueDate stamp the newly created
// PKL and asset map; IDSource generates their ids (deterministic in test
// mode).
type WriteOptions struct {
	Signer     *xmlio.Signer
	NameFormat string
	Issuer     string
	Creator    string
	IssueDate  ids.LocalTime
	IDSource   ids.Source
}

func (o WriteOptions) nameFormat() string {
	if o.NameFormat != "" {
		return o.NameFormat
	}
	return "{id}_{t}.xml"
}

// Write serializes every CPL in d to dir, builds a packing list covering
// every referenced essence file plus the CPLs themselves, and writes a
// fresh asset map last so a crash mid-write leaves the package unreadable
// rather than silently inconsistent.
func Write(d *DCP, dir string, opts WriteOptions) error {
	if len(d.CPLs) == 0 {
		return dcperr.MiscError("cannot write an empty DCP", nil)
	}
	std := d.CPLs[0].Standard
	for _, c := range d.CPLs {
		if c.Standard != std {
			return dcperr.MiscError("all CPLs written together must share one package standard", nil)
		}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return dcperr.FileError("create DCP directory "+dir, err)
	}

	p := pkl.New(opts.IDSource.New(), opts.Issuer, opts.Creator, opts.IssueDate)
	am := pkl.NewAssetMap(opts.IDSource.New(), opts.Issuer, opts.Creator, opts.IssueDate)

	for _, c := range d.CPLs {
		root, err := c.ToXML()
		if err != nil {
			return err
		}
		if opts.Signer != nil {
			if _, err := opts.Signer.Sign(root); err != nil {
				return err
			}
		}
		data := xmlio.WriteDocument(root)

		name := FormatName(opts.nameFormat(), "cpl", c.ID.String())
		fullPath := filepath.Join(dir, name)
		if err := os.WriteFile(fullPath, data, 0o644); err != nil {
			return dcperr.FileError("write CPL "+fullPath, err)
		}

		hash, size, err := hashAndSize(data)
		if err != nil {
			return err
		}
		if err := p.Add(pkl.Entry{AssetID: c.ID, Hash: hash, Size: size, Type: assets.CPLPKLType(std)}); err != nil {
			return err
		}
		if err := am.Add(pkl.AssetMapEntry{AssetID: c.ID, Path: name}); err != nil {
			return err
		}
	}

	for _, a := range d.Assets {
		path := a.FilePath()
		if path == "" {
			continue
		}
		hash, err := a.Hash()
		if err != nil {
			return err
		}
		info, err := os.Stat(path)
		if err != nil {
			return dcperr.FileError("stat asset "+path, err)
		}
		if err := p.Add(pkl.Entry{AssetID: a.AssetID(), Hash: hash, Size: info.Size(), Type: a.PKLType(std)}); err != nil {
			return err
		}
		if err := am.Add(pkl.AssetMapEntry{AssetID: a.AssetID(), Path: filepath.Base(path)}); err != nil {
			return err
		}
	}

	pklRoot := p.ToXML(std)
	pklData := xmlio.WriteDocument(pklRoot)
	pklName := FormatName(opts.nameFormat(), "pkl", p.ID.String())
	pklPath := filepath.Join(dir, pklName)
	if err := os.WriteFile(pklPath, pklData, 0o644); err != nil {
		return dcperr.FileError("write packing list "+pklPath, err)
	}
	if err := am.Add(pkl.AssetMapEntry{AssetID: p.ID, Path: pklName, IsPackingList: true}); err != nil {
		return err
	}

	volIndexPath := filepath.Join(dir, "VOLINDEX.xml")
	if std == assets.StandardInterop {
		volIndexPath = filepath.Join(dir, "VOLINDEX")
	}
	if err := os.WriteFile(volIndexPath, []byte("<VolumeIndex><Index>1</Index></VolumeIndex>"), 0o644); err != nil {
		return dcperr.FileError("write volume index "+volIndexPath, err)
	}

	amRoot := am.ToXML(std)
	amData := xmlio.WriteDocument(amRoot)
	amName := "ASSETMAP.xml"
	if std == assets.StandardInterop {
		amName = "ASSETMAP"
	}
	amPath := filepath.Join(dir, amName)
	if err := os.WriteFile(amPath, amData, 0o644); err != nil {
		return dcperr.FileError("write asset map "+amPath, err)
	}

	d.PKLs = []*pkl.PKL{p}
	d.AssetMap = am
	return nil
}
