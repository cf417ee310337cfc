package auth

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/joy-dx/netpipe/dto"
)

// Inspect decodes the claims of a JWT access token without verifying its
// signature. Opaque tokens return an error; callers treat that as "unknown".
func Inspect(token string) (dto.TokenInfo, error) {
	info := dto.TokenInfo{AccessToken: token, TokenType: "Bearer"}

	raw := strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return info, fmt.Errorf("parse token: %w", err)
	}

	if sub, err := claims.GetSubject(); err == nil {
		info.Subject = sub
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		info.IssuedAt = iat.Time
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		info.Expiry = exp.Time
	}
	return info, nil
}
