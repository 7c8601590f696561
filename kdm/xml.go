package kdm

import (
	"encoding/base64"
	"strconv"

	"github.com/rendiffdev/dcp/dcperr"
	"github.com/rendiffdev/dcp/ids"
	"github.com/rendiffdev/dcp/xmlio"
)

const (
	smpteKDMNamespace = "http://www.smpte-ra.org/schemas/430-3/2006/ETM"
	kdmForensicNS     = "http://www.smpte-ra.org/430-1/2006/KDM#"
)

func writeRecipientInfo(parent *xmlio.Element, name string, r RecipientInfo) {
	el := parent.AddChild(xmlio.NewElement(name))
	issuerSerial := el.AddChild(xmlio.NewElement("X509IssuerSerial"))
	issuerSerial.AddChild(xmlio.NewElement("X509IssuerName")).SetText(r.IssuerName)
	issuerSerial.AddChild(xmlio.NewElement("X509SerialNumber")).SetText(r.SerialNumber)
	el.AddChild(xmlio.NewElement("X509Thumbprint")).SetText(base64.StdEncoding.EncodeToString(r.Thumbprint))
}

func readRecipientInfo(el *xmlio.Element) (RecipientInfo, error) {
	var r RecipientInfo
	issuerSerial := el.Child("X509IssuerSerial")
	if issuerSerial == nil {
		return r, dcperr.XMLError(el.Local+" missing X509IssuerSerial", nil)
	}
	if issuer := issuerSerial.Child("X509IssuerName"); issuer != nil {
		r.IssuerName = issuer.TrimmedText()
	}
	if serial := issuerSerial.Child("X509SerialNumber"); serial != nil {
		r.SerialNumber = serial.TrimmedText()
	}
	if thumb := el.Child("X509Thumbprint"); thumb != nil {
		b, err := base64.StdEncoding.DecodeString(thumb.TrimmedText())
		if err != nil {
			return r, dcperr.XMLError(el.Local+" X509Thumbprint is not valid base64", err)
		}
		r.Thumbprint = b
	}
	return r, nil
}

// ToXML serializes the public and private sections in the mandated child
// order. Signing (appending Signer/ds:Signature) is the
// caller's responsibility via xmlio.Signer, as with cpl.CPL.ToXML.
func (e *EncryptedKDM) ToXML() *xmlio.Element {
	root := xmlio.NewElement("DCinemaSecurityMessage")
	root.DeclareXmlns("", smpteKDMNamespace)

	public := root.AddChild(xmlio.NewElement("AuthenticatedPublic"))
	required := public.AddChild(xmlio.NewElement("RequiredExtensions"))
	kdmRequired := required.AddChild(xmlio.NewElement("KDMRequiredExtensions"))

	writeRecipientInfo(kdmRequired, "Recipient", e.Recipient)
	kdmRequired.AddChild(xmlio.NewElement("CompositionPlaylistId")).SetText(e.CPLID.URN())
	kdmRequired.AddChild(xmlio.NewElement("ContentTitleText")).SetText(e.ContentTitleText)
	kdmRequired.AddChild(xmlio.NewElement("ContentKeysNotValidBefore")).SetText(e.NotBefore.String())
	kdmRequired.AddChild(xmlio.NewElement("ContentKeysNotValidAfter")).SetText(e.NotAfter.String())

	deviceInfo := kdmRequired.AddChild(xmlio.NewElement("AuthorizedDeviceInfo"))
	writeRecipientInfo(deviceInfo, "Recipient", e.Recipient)
	for _, d := range e.AuthorizedDevices {
		writeRecipientInfo(deviceInfo, "Device", d)
	}

	// The key id itself lives inside the encrypted block; KeyIdList records
	// only the ordinal position, since recovering the plaintext key id
	// without decrypting would require keeping a second unencrypted copy.
	keyIDList := kdmRequired.AddChild(xmlio.NewElement("KeyIdList"))
	for i := range e.EncryptedKeys {
		typedKeyID := keyIDList.AddChild(xmlio.NewElement("TypedKeyId"))
		typedKeyID.AddChild(xmlio.NewElement("Index")).SetText(strconv.Itoa(i))
	}

	if !e.ForensicMarks.IsZero() {
		flagList := kdmRequired.AddChild(xmlio.NewElement("ForensicMarkFlagList"))
		if e.ForensicMarks.DisablePicture {
			flagList.AddChild(xmlio.NewElement("ForensicMarkFlag")).
				SetText(kdmForensicNS + "mrkflg-picture-disable")
		}
		if e.ForensicMarks.DisableAudioAboveChannel != nil {
			if *e.ForensicMarks.DisableAudioAboveChannel == 0 {
				flagList.AddChild(xmlio.NewElement("ForensicMarkFlag")).
					SetText(kdmForensicNS + "mrkflg-audio-disable")
			} else {
				flagList.AddChild(xmlio.NewElement("ForensicMarkFlag")).
					SetText(kdmForensicNS + "mrkflg-audio-disable-above-channel-" + strconv.Itoa(*e.ForensicMarks.DisableAudioAboveChannel))
			}
		}
	}

	private := root.AddChild(xmlio.NewElement("AuthenticatedPrivate"))
	for _, ek := range e.EncryptedKeys {
		private.AddChild(xmlio.NewElement("EncryptedKey")).
			SetText(base64.StdEncoding.EncodeToString(ek.CipherText))
	}

	return root
}

// FromXML parses an envelope previously produced by ToXML.
func FromXML(root *xmlio.Element) (*EncryptedKDM, error) {
	public := root.Child("AuthenticatedPublic")
	if public == nil {
		return nil, dcperr.XMLError("DCinemaSecurityMessage missing AuthenticatedPublic", nil)
	}
	required := public.Child("RequiredExtensions")
	if required == nil {
		return nil, dcperr.XMLError("AuthenticatedPublic missing RequiredExtensions", nil)
	}
	kdmRequired := required.Child("KDMRequiredExtensions")
	if kdmRequired == nil {
		return nil, dcperr.XMLError("RequiredExtensions missing KDMRequiredExtensions", nil)
	}

	e := &EncryptedKDM{}

	recipientEl := kdmRequired.Child("Recipient")
	if recipientEl == nil {
		return nil, dcperr.XMLError("KDMRequiredExtensions missing Recipient", nil)
	}
	recipient, err := readRecipientInfo(recipientEl)
	if err != nil {
		return nil, err
	}
	e.Recipient = recipient

	cplIDEl := kdmRequired.Child("CompositionPlaylistId")
	if cplIDEl == nil {
		return nil, dcperr.XMLError("KDMRequiredExtensions missing CompositionPlaylistId", nil)
	}
	cplID, err := ids.Parse(cplIDEl.TrimmedText())
	if err != nil {
		return nil, dcperr.XMLError("CompositionPlaylistId is not a valid identifier", err)
	}
	e.CPLID = cplID

	if title := kdmRequired.Child("ContentTitleText"); title != nil {
		e.ContentTitleText = title.TrimmedText()
	}
	if nb := kdmRequired.Child("ContentKeysNotValidBefore"); nb != nil {
		t, err := ids.ParseLocalTime(nb.TrimmedText())
		if err != nil {
			return nil, dcperr.XMLError("ContentKeysNotValidBefore is malformed", err)
		}
		e.NotBefore = t
	}
	if na := kdmRequired.Child("ContentKeysNotValidAfter"); na != nil {
		t, err := ids.ParseLocalTime(na.TrimmedText())
		if err != nil {
			return nil, dcperr.XMLError("ContentKeysNotValidAfter is malformed", err)
		}
		e.NotAfter = t
	}

	if deviceInfo := kdmRequired.Child("AuthorizedDeviceInfo"); deviceInfo != nil {
		for _, d := range deviceInfo.ChildrenNamed("Device") {
			info, err := readRecipientInfo(d)
			if err != nil {
				return nil, err
			}
			e.AuthorizedDevices = append(e.AuthorizedDevices, info)
		}
	}

	if flagList := kdmRequired.Child("ForensicMarkFlagList"); flagList != nil {
		flags := &ForensicMarkFlags{}
		for _, f := range flagList.ChildrenNamed("ForensicMarkFlag") {
			switch uri := f.TrimmedText(); {
			case uri == kdmForensicNS+"mrkflg-picture-disable":
				flags.DisablePicture = true
			case uri == kdmForensicNS+"mrkflg-audio-disable":
				zero := 0
				flags.DisableAudioAboveChannel = &zero
			default:
				if n, ok := parseAudioDisableAboveChannel(uri); ok {
					flags.DisableAudioAboveChannel = &n
				}
			}
		}
		e.ForensicMarks = flags
	}

	private := root.Child("AuthenticatedPrivate")
	if private == nil {
		return nil, dcperr.XMLError("DCinemaSecurityMessage missing AuthenticatedPrivate", nil)
	}
	for _, keyEl := range private.ChildrenNamed("EncryptedKey") {
		ct, err := base64.StdEncoding.DecodeString(keyEl.TrimmedText())
		if err != nil {
			return nil, dcperr.XMLError("EncryptedKey is not valid base64", err)
		}
		e.EncryptedKeys = append(e.EncryptedKeys, EncryptedKeyBlock{CipherText: ct})
	}

	return e, nil
}

func parseAudioDisableAboveChannel(uri string) (int, bool) {
	const prefix = "mrkflg-audio-disable-above-channel-"
	idx := len(kdmForensicNS) + len(prefix)
	if len(uri) <= idx || uri[:len(kdmForensicNS)+len(prefix)] != kdmForensicNS+prefix {
		return 0, false
	}
	n, err := strconv.Atoi(uri[idx:])
	if err != nil {
		return 0, false
	}
	return n, true
}
