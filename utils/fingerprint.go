package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint identifies a secret in logs and output without revealing it.
func Fingerprint(secret string) string {
	if secret == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(secret))
	return "sha256:" + hex.EncodeToString(sum[:])[:12]
}
