package notes

// Verifier note codes (component C10), covering the
// per-CPL, per-reel, marker, subtitle-timing, metadata, and signature
// validation stages. Ingest-time codes the loader itself emits live above
// in notes.go.
const (
	CodeFailedRead                             = "FAILED_READ"
	CodeInvalidXML                             = "INVALID_XML"
	CodeMissingAssetmap                        = "MISSING_ASSETMAP"
	CodeInvalidStandard                        = "INVALID_STANDARD"
	CodeInvalidLanguage                        = "INVALID_LANGUAGE"
	CodeMismatchedCPLHashes                    = "MISMATCHED_CPL_HASHES"
	CodeMissingHash                            = "MISSING_HASH"
	CodeInvalidIntrinsicDuration               = "INVALID_INTRINSIC_DURATION"
	CodeInvalidDuration                        = "INVALID_DURATION"
	CodeMismatchedAssetDuration                = "MISMATCHED_ASSET_DURATION"

	CodeInvalidPictureFrameRate             = "INVALID_PICTURE_FRAME_RATE"
	CodeInvalidPictureFrameRateFor2K        = "INVALID_PICTURE_FRAME_RATE_FOR_2K"
	CodeInvalidPictureFrameRateFor4K        = "INVALID_PICTURE_FRAME_RATE_FOR_4K"
	CodeIncorrectPictureHash                = "INCORRECT_PICTURE_HASH"
	CodeMismatchedPictureHashes             = "MISMATCHED_PICTURE_HASHES"
	CodeInvalidPictureFrameSizeInBytes      = "INVALID_PICTURE_FRAME_SIZE_IN_BYTES"
	CodeNearlyInvalidPictureFrameSizeBytes  = "NEARLY_INVALID_PICTURE_FRAME_SIZE_IN_BYTES"
	CodeInvalidPictureSizeInPixels          = "INVALID_PICTURE_SIZE_IN_PIXELS"
	CodeInvalidPictureAssetResolutionFor3D  = "INVALID_PICTURE_ASSET_RESOLUTION_FOR_3D"

	CodeIncorrectSoundHash      = "INCORRECT_SOUND_HASH"
	CodeMismatchedSoundHashes   = "MISMATCHED_SOUND_HASHES"
	CodeInvalidSoundFrameRate   = "INVALID_SOUND_FRAME_RATE"

	CodeInvalidClosedCaptionXMLSizeInBytes = "INVALID_CLOSED_CAPTION_XML_SIZE_IN_BYTES"
	CodeInvalidTimedTextSizeInBytes        = "INVALID_TIMED_TEXT_SIZE_IN_BYTES"
	CodeInvalidTimedTextFontSizeInBytes    = "INVALID_TIMED_TEXT_FONT_SIZE_IN_BYTES"
	CodeMismatchedTimedTextResourceID      = "MISMATCHED_TIMED_TEXT_RESOURCE_ID"
	CodeIncorrectTimedTextAssetID          = "INCORRECT_TIMED_TEXT_ASSET_ID"
	CodeMismatchedTimedTextDuration        = "MISMATCHED_TIMED_TEXT_DURATION"

	CodeMissingSubtitleLanguage          = "MISSING_SUBTITLE_LANGUAGE"
	CodeMismatchedSubtitleLanguages      = "MISMATCHED_SUBTITLE_LANGUAGES"
	CodeMissingSubtitleStartTime         = "MISSING_SUBTITLE_START_TIME"
	CodeInvalidSubtitleStartTime         = "INVALID_SUBTITLE_START_TIME"
	CodeInvalidSubtitleFirstTextTime     = "INVALID_SUBTITLE_FIRST_TEXT_TIME"
	CodeInvalidSubtitleDuration          = "INVALID_SUBTITLE_DURATION"
	CodeInvalidSubtitleSpacing           = "INVALID_SUBTITLE_SPACING"
	CodeSubtitleOverlapsReelBoundary     = "SUBTITLE_OVERLAPS_REEL_BOUNDARY"
	CodeInvalidSubtitleLineCount         = "INVALID_SUBTITLE_LINE_COUNT"
	CodeNearlyInvalidSubtitleLineLength  = "NEARLY_INVALID_SUBTITLE_LINE_LENGTH"
	CodeInvalidSubtitleLineLength        = "INVALID_SUBTITLE_LINE_LENGTH"
	CodeInvalidClosedCaptionLineCount    = "INVALID_CLOSED_CAPTION_LINE_COUNT"
	CodeInvalidClosedCaptionLineLength   = "INVALID_CLOSED_CAPTION_LINE_LENGTH"
	CodeMissingMainSubtitleFromSomeReels = "MISSING_MAIN_SUBTITLE_FROM_SOME_REELS"

	CodeMismatchedClosedCaptionAssetCounts = "MISMATCHED_CLOSED_CAPTION_ASSET_COUNTS"
	CodeMissingSubtitleEntryPoint          = "MISSING_SUBTITLE_ENTRY_POINT"
	CodeIncorrectSubtitleEntryPoint        = "INCORRECT_SUBTITLE_ENTRY_POINT"
	CodeMissingClosedCaptionEntryPoint     = "MISSING_CLOSED_CAPTION_ENTRY_POINT"
	CodeIncorrectClosedCaptionEntryPoint   = "INCORRECT_CLOSED_CAPTION_ENTRY_POINT"

	CodeMissingFFECInFeature = "MISSING_FFEC_IN_FEATURE"
	CodeMissingFFMCInFeature = "MISSING_FFMC_IN_FEATURE"
	CodeMissingFFOC          = "MISSING_FFOC"
	CodeMissingLFOC          = "MISSING_LFOC"
	CodeIncorrectFFOC        = "INCORRECT_FFOC"
	CodeIncorrectLFOC        = "INCORRECT_LFOC"

	CodeMissingCPLAnnotationText       = "MISSING_CPL_ANNOTATION_TEXT"
	CodeMismatchedCPLAnnotationText    = "MISMATCHED_CPL_ANNOTATION_TEXT"
	CodeMissingCPLMetadata             = "MISSING_CPL_METADATA"
	CodeMissingCPLMetadataVersionNum   = "MISSING_CPL_METADATA_VERSION_NUMBER"
	CodeMissingExtensionMetadata       = "MISSING_EXTENSION_METADATA"
	CodeInvalidExtensionMetadata       = "INVALID_EXTENSION_METADATA"

	CodeUnsignedCPLWithEncryptedContent       = "UNSIGNED_CPL_WITH_ENCRYPTED_CONTENT"
	CodeUnsignedPKLWithEncryptedContent       = "UNSIGNED_PKL_WITH_ENCRYPTED_CONTENT"
	CodeMismatchedPKLAnnotationTextWithCPL    = "MISMATCHED_PKL_ANNOTATION_TEXT_WITH_CPL"
	CodePartiallyEncrypted                    = "PARTIALLY_ENCRYPTED"
)
