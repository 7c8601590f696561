package cpl

import (
	"strconv"

	"github.com/rendiffdev/dcp/ids"
	"github.com/rendiffdev/dcp/xmlio"
)

// LuminanceUnit is one of the two units a Luminance value may carry.
type LuminanceUnit string

const (
	LuminanceCandelaPerSquareMetre LuminanceUnit = "candela-per-square-metre"
	LuminanceFootLambert           LuminanceUnit = "foot-lambert"
)

// Luminance is a real value with a unit. Construction enforces
// non-negativity; the read path (FromXML) tolerates negative values so the
// verifier can flag them rather than failing to parse.
type Luminance struct {
	Value float64
	Unit  LuminanceUnit
}

// NewLuminance validates value >= 0.
func NewLuminance(value float64, unit LuminanceUnit) (Luminance, error) {
	if value < 0 {
		return Luminance{}, luminanceRangeError{value}
	}
	return Luminance{Value: value, Unit: unit}, nil
}

type luminanceRangeError struct{ value float64 }

func (e luminanceRangeError) Error() string { return "luminance value must be non-negative" }

// Area is a picture stored or active area in pixels.
type Area struct {
	Width, Height int
}

// ContentVersion pairs a content-version id with its label text. A CPL
// requires at least one content version.
type ContentVersion struct {
	ID    ids.Identifier
	Label string
}

// Rating is one entry of a CPL's optional rating list.
type Rating struct {
	Agency string
	Label  string
}

// ExtensionMetadataProperty is a single Name/Value pair inside an extension
// metadata item.
type ExtensionMetadataProperty struct {
	Name  string
	Value string
}

// ExtensionMetadataItem is one entry of the ExtensionMetadataList. A Bv2.1
// CPL must declare one naming its DCP Constraints Profile, and may
// optionally carry a second for a sign-language video track.
type ExtensionMetadataItem struct {
	Scope      string
	Name       string
	Properties []ExtensionMetadataProperty
}

// BV21ConstraintsProfileItem builds the mandatory "DCP Constraints Profile"
// extension metadata entry every SMPTE CPL with content must carry.
func BV21ConstraintsProfileItem() ExtensionMetadataItem {
	return ExtensionMetadataItem{
		Scope: "http://isdcf.com/ns/cplmd/app",
		Name:  "Application",
		Properties: []ExtensionMetadataProperty{
			{Name: "DCP Constraints Profile", Value: "SMPTE-RDD-52:2020-Bv2.1"},
		},
	}
}

// CompositionMetadataAsset is the SMPTE-only metadata block embedded in the
// first reel's AssetList whenever reel 0 carries one; ToXML does not check
// that the sound configuration, sample rate or picture areas are set. Child order
// on write is fixed and enforced by writeInOrder.
type CompositionMetadataAsset struct {
	ID                         ids.Identifier
	EditRate                   ids.Fraction
	IntrinsicDuration          int64
	FullContentTitleText       string
	FullContentTitleLanguage   string
	ReleaseTerritory           string // ISO region or "001"
	ReleaseTerritoryScope      string
	VersionNumber              int
	VersionStatus              string
	Chain                      string
	Distributor                string
	Facility                   string
	AlternateContentVersions   []ContentVersion
	Luminance                  *Luminance
	MainSoundConfiguration     MainSoundConfiguration
	MainSoundSampleRate        int
	MainPictureStoredArea      Area
	MainPictureActiveArea      Area
	MainSubtitleLanguages      []string // written as given; no entry is elided, including one equal to reel 0's main subtitle language
	ExtensionMetadataList      []ExtensionMetadataItem
	MCA                        *MCASubDescriptors
}

// writeInOrder appends this block's children to el in the mandated sequence,
// consulting an explicit field list rather than emitting fields as they are
// examined.
func (m *CompositionMetadataAsset) writeInOrder(el *xmlio.Element) {
	el.AddChild(xmlio.NewElement("Id")).SetText(m.ID.URN())
	el.AddChild(xmlio.NewElement("EditRate")).SetText(m.EditRate.String())
	el.AddChild(xmlio.NewElement("IntrinsicDuration")).SetText(strconv.FormatInt(m.IntrinsicDuration, 10))

	if m.FullContentTitleText != "" {
		fctt := el.AddChild(xmlio.NewElement("FullContentTitleText"))
		fctt.SetText(m.FullContentTitleText)
		if m.FullContentTitleLanguage != "" {
			fctt.SetAttr("language", m.FullContentTitleLanguage)
		}
	}
	if m.ReleaseTerritory != "" {
		rt := el.AddChild(xmlio.NewElement("ReleaseTerritory"))
		rt.SetText(m.ReleaseTerritory)
		if m.ReleaseTerritoryScope != "" {
			rt.SetAttr("scope", m.ReleaseTerritoryScope)
		}
	}
	if m.VersionNumber != 0 {
		vn := el.AddChild(xmlio.NewElement("VersionNumber"))
		vn.SetText(strconv.FormatInt(int64(m.VersionNumber), 10))
		if m.VersionStatus != "" {
			vn.SetAttr("status", m.VersionStatus)
		}
	}
	if m.Chain != "" {
		el.AddChild(xmlio.NewElement("Chain")).SetText(m.Chain)
	}
	if m.Distributor != "" {
		el.AddChild(xmlio.NewElement("Distributor")).SetText(m.Distributor)
	}
	if m.Facility != "" {
		el.AddChild(xmlio.NewElement("Facility")).SetText(m.Facility)
	}
	if len(m.AlternateContentVersions) > 0 {
		list := el.AddChild(xmlio.NewElement("AlternateContentVersionList"))
		for _, cv := range m.AlternateContentVersions {
			cve := list.AddChild(xmlio.NewElement("ContentVersion"))
			cve.AddChild(xmlio.NewElement("Id")).SetText(cv.ID.URN())
			cve.AddChild(xmlio.NewElement("LabelText")).SetText(cv.Label)
		}
	}
	if m.Luminance != nil {
		lum := el.AddChild(xmlio.NewElement("Luminance"))
		lum.SetAttr("Unit", string(m.Luminance.Unit))
		lum.SetText(strconv.FormatFloat(m.Luminance.Value, 'f', -1, 64))
	}
	if len(m.MainSoundConfiguration.Channels) > 0 {
		el.AddChild(xmlio.NewElement("MainSoundConfiguration")).SetText(m.MainSoundConfiguration.String())
	}
	if m.MainSoundSampleRate != 0 {
		el.AddChild(xmlio.NewElement("MainSoundSampleRate")).SetText(strconv.FormatInt(int64(m.MainSoundSampleRate), 10))
	}
	if m.MainPictureStoredArea != (Area{}) {
		area := el.AddChild(xmlio.NewElement("MainPictureStoredArea"))
		area.AddChild(xmlio.NewElement("Width")).SetText(strconv.FormatInt(int64(m.MainPictureStoredArea.Width), 10))
		area.AddChild(xmlio.NewElement("Height")).SetText(strconv.FormatInt(int64(m.MainPictureStoredArea.Height), 10))
	}
	if m.MainPictureActiveArea != (Area{}) {
		area := el.AddChild(xmlio.NewElement("MainPictureActiveArea"))
		area.AddChild(xmlio.NewElement("Width")).SetText(strconv.FormatInt(int64(m.MainPictureActiveArea.Width), 10))
		area.AddChild(xmlio.NewElement("Height")).SetText(strconv.FormatInt(int64(m.MainPictureActiveArea.Height), 10))
	}
	if len(m.MainSubtitleLanguages) > 0 {
		list := el.AddChild(xmlio.NewElement("MainSubtitleLanguageList"))
		for _, lang := range m.MainSubtitleLanguages {
			list.AddChild(xmlio.NewElement("Language")).SetText(lang)
		}
	}
	extList := el.AddChild(xmlio.NewElement("ExtensionMetadataList"))
	for _, item := range m.ExtensionMetadataList {
		itemEl := extList.AddChild(xmlio.NewElement("ExtensionMetadata"))
		itemEl.SetAttr("scope", item.Scope)
		itemEl.AddChild(xmlio.NewElement("Name")).SetText(item.Name)
		propList := itemEl.AddChild(xmlio.NewElement("PropertyList"))
		for _, p := range item.Properties {
			propEl := propList.AddChild(xmlio.NewElement("Property"))
			propEl.AddChild(xmlio.NewElement("Name")).SetText(p.Name)
			propEl.AddChild(xmlio.NewElement("Value")).SetText(p.Value)
		}
	}

	if m.MCA != nil {
		mcaList := el.AddChild(xmlio.NewPrefixedElement("mca", "MCASubDescriptors"))
		for _, label := range m.MCA.Labels {
			labelEl := mcaList.AddChild(xmlio.NewPrefixedElement("mca", "SoundfieldGroupLabelSubDescriptor"))
			labelEl.AddChild(xmlio.NewPrefixedElement("mca", "MCALabelDictionaryID")).SetText(label.MCALabelDictionaryID)
			labelEl.AddChild(xmlio.NewPrefixedElement("mca", "MCALinkID")).SetText(label.MCALinkID.URN())
			labelEl.AddChild(xmlio.NewPrefixedElement("mca", "MCATagSymbol")).SetText(label.MCATagSymbol)
			if label.MCATagName != "" {
				labelEl.AddChild(xmlio.NewPrefixedElement("mca", "MCATagName")).SetText(label.MCATagName)
			}
			labelEl.AddChild(xmlio.NewPrefixedElement("mca", "MCAChannelID")).SetText(strconv.FormatInt(int64(label.MCAChannelID), 10))
			labelEl.AddChild(xmlio.NewPrefixedElement("mca", "RFC5646SpokenLanguage")).SetText(label.RFC5646SpokenLanguage)
			labelEl.AddChild(xmlio.NewPrefixedElement("mca", "SoundfieldGroupLinkID")).SetText(label.SoundfieldGroupLinkID.URN())
		}
	}
}
