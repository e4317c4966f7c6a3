package checksum

import (
	"encoding/hex"

	"github.com/cespare/xxhash/v2"
)

// Sum returns the hex encoded xxhash64 digest of data.
func Sum(data []byte) string {
	digest := xxhash.New()
	digest.Write(data)

	return hex.EncodeToString(digest.Sum(nil))
}

// ETag returns a strong entity tag for a response body.
func ETag(body []byte) string {
	return `"` + Sum(body) + `"`
}
