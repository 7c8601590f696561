// Package dcp implements component C7, the top-level container
// orchestrator: reading a directory into a (CPL, PKL, asset map, asset)
// graph, resolving id references across it, and writing the same graph
// back out with deterministic, optionally signed XML. Grounded on the
// teacher's internal/ffmpeg analyzer pattern for structured ingest and
// internal/services for a multi-stage orchestration pass, adapted here
// from probing media files over HTTP to walking a DCP directory tree.
package dcp

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rendiffdev/dcp/assets"
	"github.com/rendiffdev/dcp/cpl"
	"github.com/rendiffdev/dcp/dcperr"
	"github.com/rendiffdev/dcp/ids"
	"github.com/rendiffdev/dcp/internal/mxfkit"
	"github.com/rendiffdev/dcp/internal/pathsafety"
	"github.com/rendiffdev/dcp/notes"
	"github.com/rendiffdev/dcp/pkl"
	"github.com/rendiffdev/dcp/subtitle"
	"github.com/rendiffdev/dcp/xmlio"
)

const (
	smpteAssetMapNamespace   = "http://www.smpte-ra.org/schemas/429-9/2007/AM"
	interopAssetMapNamespace = "http://www.digicine.com/PROTO-ASDCP-AM-20040311#"
)

// DCP is a fully loaded package directory: its standard, asset map, every
// packing list, every composition playlist, and the flat pool of essence
// assets those CPLs reference.
type DCP struct {
	Root     string
	Standard assets.Standard
	AssetMap *pkl.AssetMap
	PKLs     []*pkl.PKL
	CPLs     []*cpl.CPL
	Assets   []assets.Asset
	Subtitles []*subtitle.Subtitle // Interop subtitle XML assets, keyed by position only
}

func findAssetMapPath(dir string) (string, error) {
	for _, name := range []string{"ASSETMAP", "ASSETMAP.xml"} {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", dcperr.MissingAssetmapError(dir)
}

func detectAssetMapStandard(root *xmlio.Element) assets.Standard {
	for _, ns := range root.Xmlns {
		if ns.Name == "" && ns.Value == interopAssetMapNamespace {
			return assets.StandardInterop
		}
	}
	return assets.StandardSMPTE
}

// Load reads dir as a DCP directory: the asset map, every packing list,
// every CPL, and probes essence files via prober, accumulating non-fatal
// findings into sink.
func Load(dir string, prober mxfkit.Prober, sink notes.Sink) (*DCP, error) {
	amPath, err := findAssetMapPath(dir)
	if err != nil {
		return nil, err
	}
	amData, err := os.ReadFile(amPath)
	if err != nil {
		return nil, dcperr.FileError("read asset map "+amPath, err)
	}
	amRoot, err := xmlio.Parse(amData)
	if err != nil {
		return nil, dcperr.XMLError("parse asset map "+amPath, err)
	}
	std := detectAssetMapStandard(amRoot)

	assetMap, err := pkl.FromXML(amRoot, std)
	if err != nil {
		return nil, err
	}

	d := &DCP{Root: dir, Standard: std, AssetMap: assetMap}
	validator := pathsafety.New()

	pklEntries := make(map[ids.Identifier]pkl.Entry)
	for _, amEntry := range assetMap.Entries {
		if !amEntry.IsPackingList {
			continue
		}
		path, ok := d.resolvePath(amEntry, validator, sink)
		if !ok {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, dcperr.FileError("read packing list "+path, err)
		}
		root, err := xmlio.Parse(data)
		if err != nil {
			return nil, dcperr.XMLError("parse packing list "+path, err)
		}
		p, err := pkl.FromXML(root)
		if err != nil {
			return nil, err
		}
		d.PKLs = append(d.PKLs, p)
		for _, entry := range p.Entries {
			pklEntries[entry.AssetID] = entry
		}
	}

	for _, amEntry := range assetMap.Entries {
		if amEntry.IsPackingList {
			continue
		}
		entry, known := pklEntries[amEntry.AssetID]
		path, ok := d.resolvePath(amEntry, validator, sink)
		if !ok {
			continue
		}
		if !known {
			// Present on disk but unreferenced by any PKL: kept out of the
			// graph without comment.
			continue
		}
		asset, c, s, err := d.loadAsset(path, entry, prober, sink)
		if err != nil {
			return nil, err
		}
		if asset != nil {
			d.Assets = append(d.Assets, asset)
		}
		if c != nil {
			if c.Standard != std {
				sink.Add(notes.Note{
					Code:     notes.CodeMismatchedStandard,
					Severity: notes.SeverityError,
					Message:  "CPL " + c.ID.String() + " standard disagrees with the asset map's",
					Path:     path,
				})
			}
			d.CPLs = append(d.CPLs, c)
		}
		if s != nil {
			d.Subtitles = append(d.Subtitles, s)
		}
	}

	for _, c := range d.CPLs {
		c.ResolveRefs(d.Assets)
		for _, reel := range c.Reels {
			for _, ref := range reel.AllReferences() {
				if _, ok := ref.Resolved(); !ok {
					sink.Add(notes.Note{
						Code:     notes.CodeExternalAsset,
						Severity: notes.SeverityInfo,
						Message:  "reference to asset " + ref.AssetID.String() + " not present in this package",
					})
				}
			}
		}
	}

	return d, nil
}

func (d *DCP) resolvePath(entry pkl.AssetMapEntry, validator *pathsafety.PathValidator, sink notes.Sink) (string, bool) {
	if strings.TrimSpace(entry.Path) == "" {
		sink.Add(notes.Note{
			Code:     notes.CodeEmptyAssetPath,
			Severity: notes.SeverityError,
			Message:  "asset map entry " + entry.AssetID.String() + " has an empty path",
		})
		return "", false
	}
	if err := validator.Validate(entry.Path); err != nil {
		sink.Add(notes.Note{
			Code:     notes.CodeMissingAsset,
			Severity: notes.SeverityError,
			Message:  "asset map entry " + entry.AssetID.String() + ": " + err.Error(),
		})
		return "", false
	}
	full := filepath.Join(d.Root, entry.Path)
	if _, err := os.Stat(full); err != nil {
		sink.Add(notes.Note{
			Code:     notes.CodeMissingAsset,
			Severity: notes.SeverityError,
			Message:  "missing file for asset " + entry.AssetID.String() + ": " + full,
			Path:     full,
		})
		return "", false
	}
	return full, true
}

// loadAsset dispatches one PKL entry to a concrete asset, CPL, or Interop
// subtitle, by its recorded PKL-type string.
func (d *DCP) loadAsset(path string, entry pkl.Entry, prober mxfkit.Prober, sink notes.Sink) (assets.Asset, *cpl.CPL, *subtitle.Subtitle, error) {
	typ := pkl.StripTypeParam(entry.Type)

	switch {
	case typ == "text/xml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, nil, nil, dcperr.FileError("read "+path, err)
		}
		root, err := xmlio.Parse(data)
		if err != nil {
			return nil, nil, nil, dcperr.XMLError("parse "+path, err)
		}
		if root.Local == "CompositionPlaylist" {
			c, err := cpl.FromXML(root)
			if err != nil {
				return nil, nil, nil, err
			}
			return nil, c, nil, nil
		}
		if root.Local == "DCSubtitle" {
			s, err := subtitle.ParseInteropXML(data)
			if err != nil {
				return nil, nil, nil, err
			}
			return assets.NewInteropSubtitleAsset(entry.AssetID, path, s.Language), nil, s, nil
		}
		return nil, nil, nil, dcperr.ReadError("unrecognized XML root element "+root.Local+" in "+path, nil)

	case typ == "image/png":
		return assets.NewInteropPNGAsset(entry.AssetID, path), nil, nil, nil

	case typ == "application/ttf":
		return assets.NewFontAsset(entry.AssetID, path), nil, nil, nil

	case typ == "application/mxf":
		return d.loadMXFAsset(path, entry.AssetID, prober, sink)

	default:
		return nil, nil, nil, dcperr.ReadError("unknown PKL asset type "+entry.Type+" for "+path, nil)
	}
}

func (d *DCP) loadMXFAsset(path string, id ids.Identifier, prober mxfkit.Prober, sink notes.Sink) (assets.Asset, *cpl.CPL, *subtitle.Subtitle, error) {
	kind, err := prober.ProbeKind(path)
	if err != nil {
		return nil, nil, nil, dcperr.ReadError("probe essence kind for "+path, err)
	}
	switch kind {
	case mxfkit.EssencePicture:
		h, err := prober.ProbePicture(path)
		if err != nil {
			return nil, nil, nil, dcperr.ReadError("probe picture essence "+path, err)
		}
		return assets.NewPictureAsset(id, path, h), nil, nil, nil
	case mxfkit.EssenceSound:
		h, err := prober.ProbeSound(path)
		if err != nil {
			return nil, nil, nil, dcperr.ReadError("probe sound essence "+path, err)
		}
		return assets.NewSoundAsset(id, path, h), nil, nil, nil
	case mxfkit.EssenceTimedText:
		h, err := prober.ProbeTimedText(path)
		if err != nil {
			return nil, nil, nil, dcperr.ReadError("probe timed-text essence "+path, err)
		}
		return assets.NewSMPTETimedTextAsset(id, path, h, ""), nil, nil, nil
	case mxfkit.EssenceAux:
		h, err := prober.ProbeAux(path)
		if err != nil {
			return nil, nil, nil, dcperr.ReadError("probe aux essence "+path, err)
		}
		return assets.NewAuxAsset(id, path, h), nil, nil, nil
	default:
		return nil, nil, nil, dcperr.ReadError("unrecognized essence kind for "+path, nil)
	}
}
