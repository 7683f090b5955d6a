package canonical

import (
	"encoding/hex"

	"lukechampine.com/blake3"
)

// CryptoHash returns the BLAKE3 digest of a canonical stream as a
// 64-character lowercase hex string (§4.6: "Equal canonical streams →
// equal hashes"). It takes the raw stream, not a Graph, so callers can hash
// bytes received from another instance without re-exporting them first.
func CryptoHash(stream []byte) string {
	sum := blake3.Sum256(stream)
	return hex.EncodeToString(sum[:])
}

// Hash is a convenience that exports g and hashes the result in one step.
func Hash(g Graph) string {
	return CryptoHash(Export(g))
}
