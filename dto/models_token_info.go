package dto

import (
	"time"
)

// TokenInfo is the decoded view of an access token.
type TokenInfo struct {
	AccessToken string
	// TokenType is inferred if not provided (default "Bearer").
	TokenType string
	Subject   string
	IssuedAt  time.Time
	// Expiry time. Optional, empty for opaque tokens.
	Expiry time.Time
}

// IsExpired returns true if the token is close to or past expiry.
func (t *TokenInfo) IsExpired(buffer time.Duration) bool {
	if t.AccessToken == "" {
		return true
	}
	if t.Expiry.IsZero() {
		// Tokens with no expiry are considered indefinitely valid
		return false
	}
	return time.Now().After(t.Expiry.Add(-buffer))
}
