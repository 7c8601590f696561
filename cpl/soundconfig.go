package cpl

import (
	"strings"

	"github.com/rendiffdev/dcp/dcperr"
)

// SoundField discriminates the channel-count family a MainSoundConfiguration
// string declares.
type SoundField string

const (
	SoundField51 SoundField = "51"
	SoundField71 SoundField = "71"
	SoundFieldMC SoundField = "MC"
)

// ChannelLabel is one canonical channel token from the fixed SMPTE
// alphabet. None represents the "-" padding slot.
type ChannelLabel string

const (
	ChannelL       ChannelLabel = "L"
	ChannelR       ChannelLabel = "R"
	ChannelC       ChannelLabel = "C"
	ChannelLFE     ChannelLabel = "LFE"
	ChannelLs      ChannelLabel = "Ls"
	ChannelRs      ChannelLabel = "Rs"
	ChannelLss     ChannelLabel = "Lss"
	ChannelRss     ChannelLabel = "Rss"
	ChannelLrs     ChannelLabel = "Lrs"
	ChannelRrs     ChannelLabel = "Rrs"
	ChannelHI      ChannelLabel = "HI"
	ChannelVIN     ChannelLabel = "VIN"
	ChannelDBOX    ChannelLabel = "DBOX"
	ChannelFSKSync ChannelLabel = "FSKSync"
	ChannelSLVS    ChannelLabel = "SLVS"
	ChannelNone    ChannelLabel = "-"
)

var validChannelLabels = map[ChannelLabel]bool{
	ChannelL: true, ChannelR: true, ChannelC: true, ChannelLFE: true,
	ChannelLs: true, ChannelRs: true, ChannelLss: true, ChannelRss: true,
	ChannelLrs: true, ChannelRrs: true, ChannelHI: true, ChannelVIN: true,
	ChannelDBOX: true, ChannelFSKSync: true, ChannelSLVS: true, ChannelNone: true,
}

// MainSoundConfiguration holds a parsed "<field>/c1,c2,...,cN" string.
type MainSoundConfiguration struct {
	Field    SoundField
	Channels []ChannelLabel
}

// String serializes back to the "<field>/c1,c2,...,cN" form. Every channel
// slot is always emitted, including trailing "-" padding: the count is
// never collapsed.
func (c MainSoundConfiguration) String() string {
	labels := make([]string, len(c.Channels))
	for i, l := range c.Channels {
		labels[i] = string(l)
	}
	return string(c.Field) + "/" + strings.Join(labels, ",")
}

// ParseMainSoundConfiguration parses a MainSoundConfiguration string,
// rejecting unknown fields or channel tokens.
func ParseMainSoundConfiguration(s string) (MainSoundConfiguration, error) {
	parts := strings.SplitN(s, "/", 2)
	if len(parts) != 2 {
		return MainSoundConfiguration{}, dcperr.XMLError("malformed MainSoundConfiguration: missing '/'", nil)
	}
	field := SoundField(parts[0])
	if field != SoundField51 && field != SoundField71 && field != SoundFieldMC {
		return MainSoundConfiguration{}, dcperr.XMLError("unknown MainSoundConfiguration field: "+parts[0], nil)
	}

	tokens := strings.Split(parts[1], ",")
	channels := make([]ChannelLabel, 0, len(tokens))
	for _, tok := range tokens {
		label := ChannelLabel(tok)
		if !validChannelLabels[label] {
			return MainSoundConfiguration{}, dcperr.XMLError("unknown channel token: "+tok, nil)
		}
		channels = append(channels, label)
	}
	return MainSoundConfiguration{Field: field, Channels: channels}, nil
}
