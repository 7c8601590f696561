// Package pathsafety validates relative paths read out of asset maps before
// they are joined onto a DCP's root directory, so a maliciously crafted
// ASSETMAP cannot walk the reader outside the package directory.
package pathsafety

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// AssetExtensions lists the file extensions permitted inside a
// DCP directory.
var AssetExtensions = []string{".mxf", ".xml", ".ttf", ".png"}

// PathValidator checks asset-map relative paths for traversal and
// suspicious characters before they are resolved against a DCP root.
type PathValidator struct {
	allowedExtensions []string
	maxPathLength     int
	blockPatterns     []*regexp.Regexp
}

// New creates a PathValidator configured for DCP essence and metadata files.
func New() *PathValidator {
	return &PathValidator{
		allowedExtensions: AssetExtensions,
		maxPathLength:     4096,
		blockPatterns: []*regexp.Regexp{
			regexp.MustCompile(`\.\.`),     // directory traversal
			regexp.MustCompile(`\x00`),     // null bytes
			regexp.MustCompile(`[<>"|*?]`), // invalid characters
			regexp.MustCompile(`^\s*$`),    // empty paths
		},
	}
}

// Validate checks a relative path from an asset map entry. It does not
// resolve the path; callers join it onto the DCP root themselves after
// validation succeeds.
func (v *PathValidator) Validate(relPath string) error {
	if strings.TrimSpace(relPath) == "" {
		return fmt.Errorf("asset path cannot be empty")
	}
	if len(relPath) > v.maxPathLength {
		return fmt.Errorf("asset path too long: %d > %d", len(relPath), v.maxPathLength)
	}
	if filepath.IsAbs(relPath) {
		return fmt.Errorf("asset path must be relative: %s", relPath)
	}

	clean := filepath.Clean(relPath)
	for _, pattern := range v.blockPatterns {
		if pattern.MatchString(clean) {
			return fmt.Errorf("invalid asset path %q: contains blocked pattern", relPath)
		}
	}

	ext := strings.ToLower(filepath.Ext(clean))
	if ext == "" {
		return nil
	}
	for _, allowed := range v.allowedExtensions {
		if ext == allowed {
			return nil
		}
	}
	return fmt.Errorf("unsupported asset extension %q in %q", ext, relPath)
}

// ValidateSize reports whether size falls within [0, maxSize].
func ValidateSize(size, maxSize int64) error {
	if size < 0 {
		return fmt.Errorf("invalid file size: %d", size)
	}
	if size > maxSize {
		return fmt.Errorf("file size %d exceeds maximum allowed size %d", size, maxSize)
	}
	return nil
}
