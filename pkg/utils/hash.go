package utils

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

// HashKey combines parts into a hex encoded sha256 digest.
// Each part is length prefixed so that ("ab","c") and ("a","bc") differ.
func HashKey(parts ...[]byte) string {
	hasher := sha256.New()
	for _, p := range parts {
		hasher.Write(binary.LittleEndian.AppendUint64(nil, uint64(len(p))))
		hasher.Write(p)
	}
	return hex.EncodeToString(hasher.Sum(nil))
}
