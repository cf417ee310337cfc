package httpclient

import (
	"fmt"
	"strings"
)

// normalizeAuthType ensures proper "Bearer", "Basic", or custom capitalization.
func normalizeAuthType(t string) string {
	switch strings.ToLower(strings.TrimSpace(t)) {
	case "bearer":
		return "Bearer"
	case "basic":
		return "Basic"
	default:
		if t == "" {
			return "Bearer"
		}
		return t
	}
}

// AuthorizationHeader formats a credential, e.g. "Bearer abc123".
func AuthorizationHeader(tokenType, token string) string {
	return fmt.Sprintf("%s %s", normalizeAuthType(tokenType), token)
}

// headerSetter is satisfied by dto.Request and HTTPRequest.
type headerSetter interface {
	SetHeader(k, v string)
}

// AttachBearer sets the Authorization header to "Bearer <token>".
func AttachBearer(r headerSetter, token string) {
	r.SetHeader("Authorization", AuthorizationHeader("Bearer", token))
}
