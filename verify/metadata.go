package verify

import (
	"github.com/rendiffdev/dcp/cpl"
	"github.com/rendiffdev/dcp/notes"
)

// verifyMetadata runs stage 7: CompositionMetadataAsset
// well-formedness. The block itself is optional per the data model (only
// reel 0 of an SMPTE CPL carries one), but its absence on an SMPTE
// composition with content is itself the finding.
func verifyMetadata(c *cpl.CPL, sink notes.Sink) {
	if len(c.Reels) == 0 {
		return
	}
	meta := c.Reels[0].CompositionMetadata
	if meta == nil {
		sink.Add(notes.Note{
			Code:     notes.CodeMissingCPLMetadata,
			Severity: notes.SeverityBv21Error,
			Message:  "SMPTE CPL has no CompositionMetadataAsset on its first reel",
			Path:     c.ID.String(),
		})
		return
	}
	if meta.VersionNumber == 0 {
		sink.Add(notes.Note{
			Code:     notes.CodeMissingCPLMetadataVersionNum,
			Severity: notes.SeverityBv21Error,
			Message:  "CompositionMetadataAsset has no VersionNumber",
			Path:     c.ID.String(),
		})
	}

	foundConstraintsProfile := false
	for _, item := range meta.ExtensionMetadataList {
		if item.Name == "Application" {
			for _, prop := range item.Properties {
				if prop.Name == "DCP Constraints Profile" {
					foundConstraintsProfile = true
					if prop.Value == "" {
						sink.Add(notes.Note{
							Code:     notes.CodeInvalidExtensionMetadata,
							Severity: notes.SeverityBv21Error,
							Message:  "DCP Constraints Profile extension metadata has an empty value",
							Path:     c.ID.String(),
						})
					}
				}
			}
		}
		if item.Scope == "" || item.Name == "" {
			sink.Add(notes.Note{
				Code:     notes.CodeInvalidExtensionMetadata,
				Severity: notes.SeverityBv21Error,
				Message:  "extension metadata item is missing its scope or name",
				Path:     c.ID.String(),
			})
		}
	}
	if !foundConstraintsProfile {
		sink.Add(notes.Note{
			Code:     notes.CodeMissingExtensionMetadata,
			Severity: notes.SeverityBv21Error,
			Message:  "CompositionMetadataAsset has no DCP Constraints Profile extension metadata",
			Path:     c.ID.String(),
		})
	}
}
