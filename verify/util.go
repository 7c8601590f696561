package verify

import (
	"crypto/sha1" //nolint:gosec // PKL/KDM hashes are mandated SHA-1, see assets.Base.Hash.
	"encoding/base64"
)

// base64SHA1 computes the same digest form assets.Base.Hash caches on an
// asset, for verify's own ad-hoc file comparisons (the CPL-vs-PKL hash
// check) that fall outside any single asset's lifecycle.
func base64SHA1(data []byte) string {
	sum := sha1.Sum(data) //nolint:gosec // mandated digest, see package doc.
	return base64.StdEncoding.EncodeToString(sum[:])
}
