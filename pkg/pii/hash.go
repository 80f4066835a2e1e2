package pii

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// NormalizeAndHash trims whitespace, lowercases, and returns the SHA-256
// hex digest of the value. The empty string (or a value that normalizes
// to empty) returns "" so the field can be omitted from payloads instead
// of being sent as a hash of nothing.
func NormalizeAndHash(value string) string {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}
