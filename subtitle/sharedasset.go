package subtitle

import (
	"strconv"

	"github.com/rendiffdev/dcp/cpl"
	"github.com/rendiffdev/dcp/ids"
	"github.com/rendiffdev/dcp/notes"
)

// DetectSharedAsset walks a CPL's reels looking for a subtitle asset id
// referenced by more than one reel, grounded on
// libdcp's test/shared_subtitle_test.cc. A subtitle legitimately spanning
// several reels is common and not itself a defect; what the verifier must
// flag is the asset appearing as more than one *distinct* PKL entry under
// the same id, which is caught upstream by pkl.PKL.Add's duplicate check.
// Here we only classify: which reels share a subtitle id, so the verifier
// can skip re-validating an already-seen asset and instead emit an
// informational note rather than re-flagging timing for each repeat.
func DetectSharedAsset(c *cpl.CPL) []notes.Note {
	firstReelForID := make(map[ids.Identifier]int)
	var out []notes.Note

	for reelIndex, reel := range c.Reels {
		if reel.MainSubtitle == nil {
			continue
		}
		id := reel.MainSubtitle.AssetID
		if first, seen := firstReelForID[id]; seen {
			out = append(out, notes.Note{
				Code:     notes.CodeDuplicateAssetIDInPKL,
				Severity: notes.SeverityInfo,
				Message:  subtitleSharedMessage(id, first, reelIndex),
			})
			continue
		}
		firstReelForID[id] = reelIndex
	}
	return out
}

func subtitleSharedMessage(id ids.Identifier, firstReel, reelIndex int) string {
	return "subtitle asset " + id.String() + " is shared between reel " +
		strconv.Itoa(firstReel) + " and reel " + strconv.Itoa(reelIndex)
}
