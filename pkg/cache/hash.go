package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// hashKey builds a cache key as prefix:hash(value). The assembled git
// command is the value for log keys, so any change to the command (format,
// window, range) lands on a different entry.
func hashKey(prefix, value string) string {
	return prefix + ":" + Hash([]byte(value))
}

// Hash returns the SHA-256 of data as a 64 character hex string.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
