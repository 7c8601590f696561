// Package dcperr defines the discriminated error kinds the DCP toolkit's
// library operations fail with. Operations that cannot
// make progress return one of these; they are never recovered from
// silently, and are distinct from the typed verifier notes in the verify
// package, which are accumulated rather than returned as errors.
package dcperr

import "fmt"

// Code discriminates the kind of library-boundary failure.
type Code string

const (
	CodeFile              Code = "FILE"
	CodeRead              Code = "READ"
	CodeXML               Code = "XML"
	CodeMXFFile           Code = "MXF_FILE"
	CodeMissingAssetmap   Code = "MISSING_ASSETMAP"
	CodeMisc              Code = "MISC"
	CodeBadSetting        Code = "BAD_SETTING"
	CodeDuplicateID       Code = "DUPLICATE_ID"
	CodeLanguageTag       Code = "LANGUAGE_TAG"
	CodeBadKDMDate        Code = "BAD_KDM_DATE"
	CodeKDMDecryption     Code = "KDM_DECRYPTION"
	CodeCertificateChain  Code = "CERTIFICATE_CHAIN"
)

// Error is the concrete type returned for every discriminated failure kind.
// It wraps an optional underlying cause and is comparable with errors.Is
// against the sentinel for its Code via Is, and unwraps with errors.As.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is a *Error with the same Code, letting callers
// write errors.Is(err, dcperr.New(dcperr.CodeXML, "", nil)) or, more simply,
// check err.(*dcperr.Error).Code == dcperr.CodeXML directly.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New constructs an Error of the given kind.
func New(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// FileError reports a failure opening, creating, or stat-ing a file.
func FileError(message string, cause error) *Error { return New(CodeFile, message, cause) }

// ReadError reports a failure parsing content once opened (malformed
// essence headers, truncated frames).
func ReadError(message string, cause error) *Error { return New(CodeRead, message, cause) }

// XMLError reports malformed or schema-violating XML encountered anywhere
// in the read/write pipeline.
func XMLError(message string, cause error) *Error { return New(CodeXML, message, cause) }

// MXFFileError wraps an essence container result code.
func MXFFileError(message string, cause error) *Error { return New(CodeMXFFile, message, cause) }

// MissingAssetmapError reports that no ASSETMAP/ASSETMAP.xml exists in a
// directory being loaded as a DCP.
func MissingAssetmapError(path string) *Error {
	return New(CodeMissingAssetmap, "no ASSETMAP or ASSETMAP.xml found in "+path, nil)
}

// MiscError is a catch-all for conditions with no more specific kind, such
// as attempting to write an empty DCP.
func MiscError(message string, cause error) *Error { return New(CodeMisc, message, cause) }

// BadSettingError reports a caller-supplied option that is internally
// inconsistent (e.g. an equality tolerance that can't be satisfied).
func BadSettingError(message string) *Error { return New(CodeBadSetting, message, nil) }

// DuplicateIdError reports two objects sharing an id where uniqueness is
// required (e.g. two PKL entries for the same asset id).
func DuplicateIdError(id string) *Error {
	return New(CodeDuplicateID, "duplicate id: "+id, nil)
}

// LanguageTagError reports a malformed BCP-47 language tag.
func LanguageTagError(tag string, cause error) *Error {
	return New(CodeLanguageTag, "invalid language tag: "+tag, cause)
}

// BadKDMDateError reports a KDM validity window that falls outside the
// signer leaf certificate's [notBefore, notAfter].
func BadKDMDateError(message string) *Error { return New(CodeBadKDMDate, message, nil) }

// KDMDecryptionError reports that none of a KDM's EncryptedKey blocks could
// be decrypted with the supplied private key.
func KDMDecryptionError(message string, cause error) *Error {
	return New(CodeKDMDecryption, message, cause)
}

// CertificateChainError reports a chain that cannot be rooted, has a
// missing/duplicated link, or whose private key does not match its leaf.
func CertificateChainError(message string) *Error {
	return New(CodeCertificateChain, message, nil)
}
