package jp2k

import (
	"encoding/binary"
	"fmt"

	"github.com/rendiffdev/dcp/notes"
)

// Codes this validator emits.
const (
	CodeInvalidCodestream      = "INVALID_JPEG2000_CODESTREAM"
	CodeInvalidTileSize        = "INVALID_JPEG2000_TILE_SIZE"
	CodeInvalidCodeBlockWidth  = "INVALID_JPEG2000_CODE_BLOCK_WIDTH"
	CodeInvalidCodeBlockHeight = "INVALID_JPEG2000_CODE_BLOCK_HEIGHT"
	CodeInvalidGuardBits2K     = "INVALID_JPEG2000_GUARD_BITS_FOR_2K"
	CodeInvalidGuardBits4K     = "INVALID_JPEG2000_GUARD_BITS_FOR_4K"
	CodeIncorrectPOCCount2K    = "INCORRECT_JPEG2000_POC_MARKER_COUNT_FOR_2K"
	CodeIncorrectPOCCount4K    = "INCORRECT_JPEG2000_POC_MARKER_COUNT_FOR_4K"
	CodeInvalidPOCLocation     = "INVALID_JPEG2000_POC_MARKER_LOCATION"
	CodeInvalidTileParts2K     = "INVALID_JPEG2000_TILE_PARTS_FOR_2K"
	CodeInvalidTileParts4K     = "INVALID_JPEG2000_TILE_PARTS_FOR_4K"
	CodeMissingTLM             = "MISSING_JPEG200_TLM_MARKER"
)

const (
	expectedCodeBlockExp = 3 // stored SPcod byte value; actual block size is 1<<(value+2) = 32
	progressionCPRL      = 4
	decompLevels2K       = 5
	decompLevels4K       = 6
	guardBits2K          = 1
	guardBits4K          = 2
	tileParts2K          = 3
	tileParts4K          = 6
	fourKWidthThreshold  = 2048
)

// Info summarizes the image geometry this validator recovered from SIZ, for
// callers (the reel frame-size checks in the verify package) that need the
// fourk flag without re-parsing the codestream themselves.
type Info struct {
	Width, Height  int
	FourK          bool
	ComponentCount int
	PrecisionBits  int
}

// Validate walks a single frame's raw codestream and returns every
// violation note found; a frame may emit more than one. path
// is carried on each note purely for localization, since a codestream has
// no filename of its own once extracted from its MXF frame.
func Validate(data []byte, path string) ([]notes.Note, Info) {
	segments := splitSegments(data)
	if len(segments) == 0 || segments[0].marker != MarkerSOC {
		return []notes.Note{{
			Code:     CodeInvalidCodestream,
			Severity: notes.SeverityError,
			Message:  "codestream does not start with SOC",
			Path:     path,
		}}, Info{}
	}

	var out []notes.Note
	note := func(code string, sev notes.Severity, msg string) {
		out = append(out, notes.Note{Code: code, Severity: sev, Message: msg, Path: path})
	}

	sizPayload, ok := findOnePayload(segments, MarkerSIZ)
	if !ok {
		note(CodeInvalidCodestream, notes.SeverityError, "codestream has no SIZ marker")
		return out, Info{}
	}
	info, tileWidth, tileHeight, err := parseSIZ(sizPayload)
	if err != nil {
		note(CodeInvalidCodestream, notes.SeverityError, "malformed SIZ marker: "+err.Error())
		return out, Info{}
	}

	expectedDecompLevels := decompLevels2K
	expectedPOCCount := 0
	expectedTileParts := tileParts2K
	invalidTilePartsCode := CodeInvalidTileParts2K
	invalidGuardBitsCode := CodeInvalidGuardBits2K
	incorrectPOCCountCode := CodeIncorrectPOCCount2K
	expectedGuardBits := guardBits2K
	if info.FourK {
		expectedDecompLevels = decompLevels4K
		expectedPOCCount = 1
		expectedTileParts = tileParts4K
		invalidTilePartsCode = CodeInvalidTileParts4K
		invalidGuardBitsCode = CodeInvalidGuardBits4K
		incorrectPOCCountCode = CodeIncorrectPOCCount4K
		expectedGuardBits = guardBits4K
	}

	if info.Width != tileWidth || info.Height != tileHeight {
		note(CodeInvalidTileSize, notes.SeverityError, "tile size does not equal image size")
	}

	codPayloads := findAllPayloads(segments, MarkerCOD)
	if len(codPayloads) != 1 {
		note(CodeInvalidCodestream, notes.SeverityError, fmt.Sprintf("expected exactly one COD marker, found %d", len(codPayloads)))
	} else {
		checkCOD(codPayloads[0], expectedDecompLevels, note)
	}

	qcdPayloads := findAllPayloads(segments, MarkerQCD)
	if len(qcdPayloads) != 1 {
		note(CodeInvalidCodestream, notes.SeverityError, fmt.Sprintf("expected exactly one QCD marker, found %d", len(qcdPayloads)))
	} else if len(qcdPayloads[0]) >= 1 {
		guardBits := int(qcdPayloads[0][0]>>5) & 7
		if guardBits != expectedGuardBits {
			note(invalidGuardBitsCode, notes.SeverityError, fmt.Sprintf("guard bits %d, expected %d", guardBits, expectedGuardBits))
		}
	}

	if len(findAllPayloads(segments, MarkerTLM)) == 0 {
		note(CodeMissingTLM, notes.SeverityWarning, "no TLM marker found in main header")
	}

	pocCount, pocAfterSOD := countPOC(segments)
	if pocCount != expectedPOCCount {
		note(incorrectPOCCountCode, notes.SeverityError, fmt.Sprintf("found %d POC markers, expected %d", pocCount, expectedPOCCount))
	}
	if pocAfterSOD {
		note(CodeInvalidPOCLocation, notes.SeverityError, "POC marker found outside the main header")
	}

	sotCount := len(findAllPayloads(segments, MarkerSOT))
	if sotCount != expectedTileParts {
		note(invalidTilePartsCode, notes.SeverityError, fmt.Sprintf("found %d SOT markers, expected %d", sotCount, expectedTileParts))
	}

	return out, info
}

func parseSIZ(payload []byte) (info Info, tileWidth, tileHeight int, err error) {
	if len(payload) < 38 {
		return Info{}, 0, 0, fmt.Errorf("SIZ payload too short: %d bytes", len(payload))
	}
	xsiz := int(binary.BigEndian.Uint32(payload[2:6]))
	ysiz := int(binary.BigEndian.Uint32(payload[6:10]))
	xosiz := int(binary.BigEndian.Uint32(payload[10:14]))
	yosiz := int(binary.BigEndian.Uint32(payload[14:18]))
	xtsiz := int(binary.BigEndian.Uint32(payload[18:22]))
	ytsiz := int(binary.BigEndian.Uint32(payload[22:26]))
	csiz := int(binary.BigEndian.Uint16(payload[34:36]))

	width := xsiz - xosiz
	height := ysiz - yosiz

	info = Info{Width: width, Height: height, FourK: width > fourKWidthThreshold, ComponentCount: csiz}
	if len(payload) > 36 {
		ssiz := payload[36]
		info.PrecisionBits = int(ssiz&0x7F) + 1
	}
	return info, xtsiz, ytsiz, nil
}

func checkCOD(payload []byte, expectedDecompLevels int, note func(code string, sev notes.Severity, msg string)) {
	if len(payload) < 5 {
		note(CodeInvalidCodestream, notes.SeverityError, "malformed COD marker")
		return
	}
	progression := int(payload[1])
	if progression != progressionCPRL {
		note(CodeInvalidCodestream, notes.SeverityError, fmt.Sprintf("progression order %d, expected CPRL (%d)", progression, progressionCPRL))
	}
	const spcodOffset = 5
	if len(payload) <= spcodOffset+2 {
		note(CodeInvalidCodestream, notes.SeverityError, "COD marker missing SPcod fields")
		return
	}
	decompLevels := int(payload[spcodOffset])
	if decompLevels != expectedDecompLevels {
		note(CodeInvalidCodestream, notes.SeverityError, fmt.Sprintf("wavelet decomposition levels %d, expected %d", decompLevels, expectedDecompLevels))
	}
	cbWidthExp := int(payload[spcodOffset+1])
	cbHeightExp := int(payload[spcodOffset+2])
	if cbWidthExp != expectedCodeBlockExp {
		note(CodeInvalidCodeBlockWidth, notes.SeverityError, fmt.Sprintf("code-block width exponent %d (size %d), expected %d (size 32)", cbWidthExp, 1<<(uint(cbWidthExp)+2), expectedCodeBlockExp))
	}
	if cbHeightExp != expectedCodeBlockExp {
		note(CodeInvalidCodeBlockHeight, notes.SeverityError, fmt.Sprintf("code-block height exponent %d (size %d), expected %d (size 32)", cbHeightExp, 1<<(uint(cbHeightExp)+2), expectedCodeBlockExp))
	}
}

func findOnePayload(segments []segment, m Marker) ([]byte, bool) {
	for _, s := range segments {
		if s.marker == m {
			return s.payload, true
		}
	}
	return nil, false
}

func findAllPayloads(segments []segment, m Marker) [][]byte {
	var out [][]byte
	for _, s := range segments {
		if s.marker == m {
			out = append(out, s.payload)
		}
	}
	return out
}

// countPOC reports how many POC markers appear and whether any of them
// appear after SOD (i.e. outside the main header).
func countPOC(segments []segment) (count int, afterSOD bool) {
	sawSOD := false
	for _, s := range segments {
		if s.marker == MarkerSOD {
			sawSOD = true
		}
		if s.marker == MarkerPOC {
			count++
			if sawSOD {
				afterSOD = true
			}
		}
	}
	return count, afterSOD
}
