// Package notes defines the structured finding vocabulary shared by the
// DCP loader (component C7, which emits a handful of ingest-time notes) and
// the verifier (component C10, which emits the full catalog). Keeping the
// type here, rather than inside either package, avoids a C7/C10 import
// cycle: the verifier drives a loaded DCP graph, and the loader already
// needs to surface notes of its own during ingest.
package notes

import "fmt"

// Severity ranks a note from purely informational to a hard failure the
// verifier or loader could not route around.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityBv21Error
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityBv21Error:
		return "bv21-error"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Note is one finding: a stable code, a severity, a human-readable note,
// and an optional file/line pointing at the offending location. Line is a
// pointer rather than a sentinel integer: nil means
// "location unknown", never a magic -1.
type Note struct {
	Code     string
	Severity Severity
	Message  string
	Path     string // "" if not file-specific
	Line     *int
}

func (n Note) String() string {
	if n.Path == "" {
		return fmt.Sprintf("[%s] %s: %s", n.Severity, n.Code, n.Message)
	}
	if n.Line != nil {
		return fmt.Sprintf("[%s] %s: %s (%s:%d)", n.Severity, n.Code, n.Message, n.Path, *n.Line)
	}
	return fmt.Sprintf("[%s] %s: %s (%s)", n.Severity, n.Code, n.Message, n.Path)
}

// Line builds a *int for Note.Line from a literal, so callers don't need a
// local variable just to take its address.
func Line(n int) *int { return &n }

// Sink accumulates notes as a loader or verifier pass discovers them.
type Sink interface {
	Add(Note)
}

// Collector is the in-memory Sink every caller in this toolkit uses.
type Collector struct {
	notes []Note
}

// NewCollector returns an empty Collector.
func NewCollector() *Collector { return &Collector{} }

// Add appends a note.
func (c *Collector) Add(n Note) { c.notes = append(c.notes, n) }

// All returns every collected note in discovery order.
func (c *Collector) All() []Note { return c.notes }

// HasSeverity reports whether any note at or above the given severity was
// collected.
func (c *Collector) HasSeverity(min Severity) bool {
	for _, n := range c.notes {
		if n.Severity >= min {
			return true
		}
	}
	return false
}

// CountByCode tallies notes by code, for the XLSX report's summary sheet.
func (c *Collector) CountByCode() map[string]int {
	out := make(map[string]int)
	for _, n := range c.notes {
		out[n.Code]++
	}
	return out
}

// Ingest-time note codes. The loader (component C7) emits
// MISMATCHED_STANDARD, EMPTY_ASSET_PATH, MISSING_ASSET and EXTERNAL_ASSET;
// subtitle.DetectSharedAsset emits DUPLICATE_ASSET_ID_IN_PKL. No pass in
// this module emits THREED_ASSET_MARKED_AS_TWOD or MISSING_CPL_HASH_IN_PKL.
const (
	CodeMismatchedStandard     = "MISMATCHED_STANDARD"
	CodeThreeDAssetMarkedTwoD = "THREED_ASSET_MARKED_AS_TWOD"
	CodeEmptyAssetPath        = "EMPTY_ASSET_PATH"
	CodeMissingAsset          = "MISSING_ASSET"
	CodeExternalAsset         = "EXTERNAL_ASSET"
	CodeDuplicateAssetIDInPKL = "DUPLICATE_ASSET_ID_IN_PKL"
	CodeMissingCPLHashInPKL   = "MISSING_CPL_HASH_IN_PKL"
)
