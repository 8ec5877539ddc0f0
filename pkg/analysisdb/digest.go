package analysisdb

import (
	"encoding/hex"

	"golang.org/x/crypto/sha3"
)

// SourceDigest fingerprints contract source with legacy Keccak-256.
func SourceDigest(src []byte) string {
	h := sha3.NewLegacyKeccak256()
	h.Write(src)
	return hex.EncodeToString(h.Sum(nil))
}
