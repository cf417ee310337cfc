package dto

import (
	"context"
)

type PipelineInterface interface {
	Do(ctx context.Context, req *Request) (Response, error)
	Get(ctx context.Context, path string, opts ...RequestOption) (Response, error)
	Post(ctx context.Context, path string, body any, opts ...RequestOption) (Response, error)
	Put(ctx context.Context, path string, body any, opts ...RequestOption) (Response, error)
	Patch(ctx context.Context, path string, body any, opts ...RequestOption) (Response, error)
	Delete(ctx context.Context, path string, opts ...RequestOption) (Response, error)
	State() *PipelineState
}

// Transport dispatches one request against the network.
// Any non-2xx status or transport error is returned as a *RawFailure.
type Transport interface {
	Dispatch(ctx context.Context, req *Request) (Response, error)
}

// CredentialStore holds the access and refresh secrets.
// Get returns an error wrapping ErrCredentialNotFound when the key is absent.
type CredentialStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Refresher exchanges a refresh token for a new access token.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (string, error)
}

// RefreshFunc adapts a plain function to Refresher.
type RefreshFunc func(ctx context.Context, refreshToken string) (string, error)

func (f RefreshFunc) Refresh(ctx context.Context, refreshToken string) (string, error) {
	return f(ctx, refreshToken)
}

// Notifier emits user-facing messages by severity.
type Notifier interface {
	Error(message, description string)
	Warning(message, description string)
	Info(message, description string)
	Success(message, description string)
}

// Navigator sends the user back to the login route.
type Navigator interface {
	CurrentPath() string
	RedirectToLogin()
}
