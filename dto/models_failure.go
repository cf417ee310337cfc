package dto

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// TransportCode classifies failures that happened below HTTP.
type TransportCode string

const (
	TransportNetwork      TransportCode = "NETWORK"
	TransportConnRefused  TransportCode = "CONN_REFUSED"
	TransportHostNotFound TransportCode = "HOST_NOT_FOUND"
	TransportTimeout      TransportCode = "TIMEOUT"
	TransportAborted      TransportCode = "ABORTED"
)

var ErrNoReplay = errors.New("replay not available for this failure")

// ReplayFunc re-enters the pipeline for a remediated request.
type ReplayFunc func(ctx context.Context, req *Request) (Response, error)

// RawFailure is the transport-level failure observed by error hooks. It is
// built once at the transport boundary.
type RawFailure struct {
	// StatusCode is zero when no HTTP response was received.
	StatusCode int
	// Code is empty when the server answered.
	Code    TransportCode
	Message string
	Headers http.Header
	Body    []byte
	Request *Request
	Err     error

	replay ReplayFunc
}

func (f *RawFailure) Error() string {
	if f == nil {
		return "<nil>"
	}
	route := ""
	if f.Request != nil {
		route = f.Request.Route() + ": "
	}
	switch {
	case f.StatusCode != 0:
		return fmt.Sprintf("%sstatus %d", route, f.StatusCode)
	case f.Code != "":
		return fmt.Sprintf("%s%s: %s", route, f.Code, f.Message)
	default:
		return route + f.Message
	}
}

func (f *RawFailure) Unwrap() error { return f.Err }

// HasResponse reports whether the server produced a status code.
func (f *RawFailure) HasResponse() bool { return f.StatusCode != 0 }

// BodyError returns the "error" string of a JSON body, or "".
func (f *RawFailure) BodyError() string {
	if len(f.Body) == 0 {
		return ""
	}
	var payload struct {
		Error any `json:"error"`
	}
	if err := json.Unmarshal(f.Body, &payload); err != nil {
		return ""
	}
	if s, ok := payload.Error.(string); ok {
		return s
	}
	return ""
}

func (f *RawFailure) WithReplay(fn ReplayFunc) *RawFailure {
	f.replay = fn
	return f
}

// Replay redispatches req through the pipeline that produced this failure.
func (f *RawFailure) Replay(ctx context.Context, req *Request) (Response, error) {
	if f.replay == nil {
		return Response{}, ErrNoReplay
	}
	return f.replay(ctx, req)
}
