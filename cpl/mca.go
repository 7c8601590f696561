package cpl

import "github.com/rendiffdev/dcp/ids"

// MCASoundfieldGroup is a channel-label sub-descriptor transcribed verbatim
// from the sound essence container's soundfield group into the CPL XML.
// Identifiers and link ids use URN forms on the wire.
type MCASoundfieldGroup struct {
	InstanceID             ids.Identifier
	MCALabelDictionaryID   string // urn:smpte:ul:... form
	MCALinkID              ids.Identifier
	MCATagSymbol           string
	MCATagName             string // optional
	MCAChannelID           int
	RFC5646SpokenLanguage  string
	SoundfieldGroupLinkID  ids.Identifier
}

// MCASubDescriptors is the ordered list of channel labels belonging to one
// reel's main sound soundfield group.
type MCASubDescriptors struct {
	Labels []MCASoundfieldGroup
}
