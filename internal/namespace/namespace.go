// Package namespace derives storage namespaces from account identifiers.
package namespace

import (
	"crypto/sha256"
	"encoding/hex"
)

// Default is the namespace used before any account has signed in.
const Default = "local"

const prefixLen = 12

// Resolve maps an opaque account identifier onto a storage namespace.
// An empty identifier resolves to Default. The result is a fixed-length
// prefix of a SHA-256 digest, so it is deterministic and cannot be reversed
// back to the account identifier.
func Resolve(accountID string) string {
	if accountID == "" {
		return Default
	}
	sum := sha256.Sum256([]byte(accountID))
	return hex.EncodeToString(sum[:])[:prefixLen]
}
