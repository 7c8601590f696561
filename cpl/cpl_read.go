package cpl

import (
	"strconv"

	"github.com/rendiffdev/dcp/assets"
	"github.com/rendiffdev/dcp/dcperr"
	"github.com/rendiffdev/dcp/ids"
	"github.com/rendiffdev/dcp/xmlio"
)

// interopCPLNamespace and smpteCPLNamespace let FromXML select the package
// standard from the root element's declared namespace.
const (
	interopCPLNamespace = "http://www.digicine.com/PROTO-ASDCP-CPL-20040511#"
	smpteCPLNamespace    = "http://www.smpte-ra.org/schemas/429-7/2006/CPL"
)

// FromXML parses a CPL document previously produced by ToXML (or a
// conformant third-party writer using the same element names).
func FromXML(root *xmlio.Element) (*CPL, error) {
	std := assets.StandardSMPTE
	for _, ns := range root.Xmlns {
		if ns.Name == "" && ns.Value == interopCPLNamespace {
			std = assets.StandardInterop
		}
	}

	idEl := root.Child("Id")
	if idEl == nil {
		return nil, dcperr.XMLError("CompositionPlaylist missing Id", nil)
	}
	id, err := ids.Parse(idEl.TrimmedText())
	if err != nil {
		return nil, dcperr.XMLError("CompositionPlaylist Id is malformed", err)
	}

	c := New(id, std)
	if ann := root.Child("AnnotationText"); ann != nil {
		c.AnnotationText = ann.TrimmedText()
	}
	if issueDate := root.Child("IssueDate"); issueDate != nil {
		lt, err := ids.ParseLocalTime(issueDate.TrimmedText())
		if err != nil {
			return nil, dcperr.XMLError("CompositionPlaylist IssueDate is malformed", err)
		}
		c.IssueDate = lt
	}
	if issuer := root.Child("Issuer"); issuer != nil {
		c.Issuer = issuer.TrimmedText()
	}
	if creator := root.Child("Creator"); creator != nil {
		c.Creator = creator.TrimmedText()
	}
	if ctt := root.Child("ContentTitleText"); ctt != nil {
		c.ContentTitleText = ctt.TrimmedText()
	}
	if ck := root.Child("ContentKind"); ck != nil {
		c.ContentKind.Name = ck.TrimmedText()
		if scope, ok := ck.Attr("scope"); ok {
			c.ContentKind.Scope = scope
		}
	}

	if cvList := root.Child("ContentVersionList"); cvList != nil {
		for _, cve := range cvList.ChildrenNamed("ContentVersion") {
			cv := ContentVersion{}
			if idChild := cve.Child("Id"); idChild != nil {
				cvID, err := ids.Parse(idChild.TrimmedText())
				if err != nil {
					return nil, dcperr.XMLError("ContentVersion Id is malformed", err)
				}
				cv.ID = cvID
			}
			if label := cve.Child("LabelText"); label != nil {
				cv.Label = label.TrimmedText()
			}
			c.ContentVersions = append(c.ContentVersions, cv)
		}
	}

	if rList := root.Child("RatingList"); rList != nil {
		for _, re := range rList.ChildrenNamed("Rating") {
			r := Rating{}
			if agency := re.Child("Agency"); agency != nil {
				r.Agency = agency.TrimmedText()
			}
			if label := re.Child("Label"); label != nil {
				r.Label = label.TrimmedText()
			}
			c.Ratings = append(c.Ratings, r)
		}
	}

	reelList := root.Child("ReelList")
	if reelList == nil {
		return nil, dcperr.XMLError("CompositionPlaylist missing ReelList", nil)
	}
	for _, reelEl := range reelList.ChildrenNamed("Reel") {
		reel, err := parseReel(reelEl)
		if err != nil {
			return nil, err
		}
		c.AddReel(reel)
	}

	return c, nil
}

func parseReel(reelEl *xmlio.Element) (*Reel, error) {
	idEl := reelEl.Child("Id")
	if idEl == nil {
		return nil, dcperr.XMLError("Reel missing Id", nil)
	}
	reelID, err := ids.Parse(idEl.TrimmedText())
	if err != nil {
		return nil, dcperr.XMLError("Reel Id is malformed", err)
	}
	reel := NewReel(reelID)

	assetList := reelEl.Child("AssetList")
	if assetList == nil {
		return nil, dcperr.XMLError("Reel missing AssetList", nil)
	}

	if cma := assetList.Find("CompositionMetadataAsset"); cma != nil {
		meta, err := parseCompositionMetadata(cma)
		if err != nil {
			return nil, err
		}
		reel.CompositionMetadata = meta
	}

	parseRef := func(name string) (*Reference, error) {
		el := assetList.Child(name)
		if el == nil {
			return nil, nil
		}
		return parseReference(el)
	}

	var err2 error
	if reel.MainPicture, err2 = parseRef("MainPicture"); err2 != nil {
		return nil, err2
	}
	if reel.MainSound, err2 = parseRef("MainSound"); err2 != nil {
		return nil, err2
	}
	if reel.MainSubtitle, err2 = parseRef("MainSubtitle"); err2 != nil {
		return nil, err2
	}
	if reel.MainMarkers, err2 = parseRef("MainMarkers"); err2 != nil {
		return nil, err2
	}
	if reel.AuxData, err2 = parseRef("AuxData"); err2 != nil {
		return nil, err2
	}
	for _, ccEl := range assetList.ChildrenNamed("ClosedCaption") {
		ref, err := parseReference(ccEl)
		if err != nil {
			return nil, err
		}
		reel.ClosedCaptions = append(reel.ClosedCaptions, ref)
	}

	return reel, nil
}

func parseReference(el *xmlio.Element) (*Reference, error) {
	idEl := el.Child("Id")
	if idEl == nil {
		return nil, dcperr.XMLError(el.Local+" missing Id", nil)
	}
	assetID, err := ids.Parse(idEl.TrimmedText())
	if err != nil {
		return nil, dcperr.XMLError(el.Local+" Id is malformed", err)
	}
	ref := &Reference{AssetID: assetID}
	if hash := el.Child("Hash"); hash != nil {
		ref.Hash = hash.TrimmedText()
	}
	if dur := el.Child("IntrinsicDuration"); dur != nil {
		ref.IntrinsicDuration, _ = strconv.ParseInt(dur.TrimmedText(), 10, 64)
	}
	if ep := el.Child("EntryPoint"); ep != nil {
		ref.EntryPoint, _ = strconv.ParseInt(ep.TrimmedText(), 10, 64)
	}
	if d := el.Child("Duration"); d != nil {
		ref.Duration, _ = strconv.ParseInt(d.TrimmedText(), 10, 64)
	}
	return ref, nil
}

func parseCompositionMetadata(el *xmlio.Element) (*CompositionMetadataAsset, error) {
	meta := &CompositionMetadataAsset{}
	if idEl := el.Child("Id"); idEl != nil {
		id, err := ids.Parse(idEl.TrimmedText())
		if err != nil {
			return nil, dcperr.XMLError("CompositionMetadataAsset Id is malformed", err)
		}
		meta.ID = id
	}
	if er := el.Child("EditRate"); er != nil {
		rate, err := ids.ParseFraction(er.TrimmedText())
		if err != nil {
			return nil, dcperr.XMLError("CompositionMetadataAsset EditRate is malformed", err)
		}
		meta.EditRate = rate
	}
	if dur := el.Child("IntrinsicDuration"); dur != nil {
		meta.IntrinsicDuration, _ = strconv.ParseInt(dur.TrimmedText(), 10, 64)
	}
	if fctt := el.Child("FullContentTitleText"); fctt != nil {
		meta.FullContentTitleText = fctt.TrimmedText()
		if lang, ok := fctt.Attr("language"); ok {
			meta.FullContentTitleLanguage = lang
		}
	}
	if rt := el.Child("ReleaseTerritory"); rt != nil {
		meta.ReleaseTerritory = rt.TrimmedText()
		if scope, ok := rt.Attr("scope"); ok {
			meta.ReleaseTerritoryScope = scope
		}
	}
	if vn := el.Child("VersionNumber"); vn != nil {
		n, _ := strconv.Atoi(vn.TrimmedText())
		meta.VersionNumber = n
		if status, ok := vn.Attr("status"); ok {
			meta.VersionStatus = status
		}
	}
	if lum := el.Child("Luminance"); lum != nil {
		v, err := strconv.ParseFloat(lum.TrimmedText(), 64)
		if err != nil {
			return nil, dcperr.XMLError("CompositionMetadataAsset Luminance is not a number", err)
		}
		unit, _ := lum.Attr("Unit")
		meta.Luminance = &Luminance{Value: v, Unit: LuminanceUnit(unit)}
	}
	if msc := el.Child("MainSoundConfiguration"); msc != nil {
		cfg, err := ParseMainSoundConfiguration(msc.TrimmedText())
		if err != nil {
			return nil, err
		}
		meta.MainSoundConfiguration = cfg
	}
	if msr := el.Child("MainSoundSampleRate"); msr != nil {
		n, _ := strconv.Atoi(msr.TrimmedText())
		meta.MainSoundSampleRate = n
	}
	if area := el.Child("MainPictureStoredArea"); area != nil {
		meta.MainPictureStoredArea = parseArea(area)
	}
	if area := el.Child("MainPictureActiveArea"); area != nil {
		meta.MainPictureActiveArea = parseArea(area)
	}
	if list := el.Child("MainSubtitleLanguageList"); list != nil {
		for _, lang := range list.ChildrenNamed("Language") {
			meta.MainSubtitleLanguages = append(meta.MainSubtitleLanguages, lang.TrimmedText())
		}
	}
	if extList := el.Child("ExtensionMetadataList"); extList != nil {
		for _, itemEl := range extList.ChildrenNamed("ExtensionMetadata") {
			item := ExtensionMetadataItem{}
			if scope, ok := itemEl.Attr("scope"); ok {
				item.Scope = scope
			}
			if name := itemEl.Child("Name"); name != nil {
				item.Name = name.TrimmedText()
			}
			if propList := itemEl.Child("PropertyList"); propList != nil {
				for _, propEl := range propList.ChildrenNamed("Property") {
					prop := ExtensionMetadataProperty{}
					if name := propEl.Child("Name"); name != nil {
						prop.Name = name.TrimmedText()
					}
					if value := propEl.Child("Value"); value != nil {
						prop.Value = value.TrimmedText()
					}
					item.Properties = append(item.Properties, prop)
				}
			}
			meta.ExtensionMetadataList = append(meta.ExtensionMetadataList, item)
		}
	}
	return meta, nil
}

func parseArea(el *xmlio.Element) Area {
	area := Area{}
	if w := el.Child("Width"); w != nil {
		area.Width, _ = strconv.Atoi(w.TrimmedText())
	}
	if h := el.Child("Height"); h != nil {
		area.Height, _ = strconv.Atoi(h.TrimmedText())
	}
	return area
}
