package dcp

import "strings"

// FormatName expands a caller-supplied filename format string's
// "{t}"/"{id}"-style placeholders, grounded on libdcp's
// src/name_format.h substitution template. Supported placeholders: "{t}"
// (the asset kind tag, e.g. "cpl" or "pkl") and "{id}" (the asset's bare
// UUID, no urn: prefix).
func FormatName(format, kindTag, id string) string {
	r := strings.NewReplacer("{t}", kindTag, "{id}", id)
	return r.Replace(format)
}
