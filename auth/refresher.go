package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/joy-dx/netpipe/dto"
	"golang.org/x/oauth2"
)

var ErrEmptyToken = errors.New("refresh returned no access token")

// EndpointRefresher posts {"refreshToken": ...} to a refresh endpoint and
// reads the new access token from "token" or "accessToken". It dispatches on
// the bare transport so a 401 from the endpoint never re-enters the pipeline.
type EndpointRefresher struct {
	transport dto.Transport
	path      string
}

func NewEndpointRefresher(transport dto.Transport, path string) *EndpointRefresher {
	return &EndpointRefresher{transport: transport, path: path}
}

func (r *EndpointRefresher) Refresh(ctx context.Context, refreshToken string) (string, error) {
	req := dto.NewRequest(http.MethodPost, r.path).
		WithBody(map[string]string{"refreshToken": refreshToken}).
		WithOptions(dto.RequestOptions{
			SuppressLoadingIndicator:  true,
			SuppressErrorNotification: true,
		})

	resp, err := r.transport.Dispatch(ctx, req)
	if err != nil {
		return "", fmt.Errorf("refresh token: %w", err)
	}

	var payload struct {
		Token       string `json:"token"`
		AccessToken string `json:"accessToken"`
	}
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return "", fmt.Errorf("decode refresh response: %w", err)
	}
	if payload.Token != "" {
		return payload.Token, nil
	}
	if payload.AccessToken != "" {
		return payload.AccessToken, nil
	}
	return "", ErrEmptyToken
}

// OAuth2Refresher exchanges the refresh token through a standard OAuth2
// refresh_token grant.
type OAuth2Refresher struct {
	cfg *oauth2.Config
}

func NewOAuth2Refresher(cfg *oauth2.Config) *OAuth2Refresher {
	return &OAuth2Refresher{cfg: cfg}
}

func (r *OAuth2Refresher) Refresh(ctx context.Context, refreshToken string) (string, error) {
	tok, err := r.cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		return "", fmt.Errorf("oauth2 refresh: %w", err)
	}
	if tok.AccessToken == "" {
		return "", ErrEmptyToken
	}
	return tok.AccessToken, nil
}
