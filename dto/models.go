package dto

import (
	"errors"
	"net/http"
	"time"
)

// Credential keys shared by every CredentialStore.
const (
	CredentialAccessToken  = "token"
	CredentialRefreshToken = "refreshToken"
)

var ErrCredentialNotFound = errors.New("credential not found")

type RequestStatus string

const (
	SUCCESS   RequestStatus = "success"
	RECOVERED RequestStatus = "recovered"
	FAILED    RequestStatus = "failed"
	ABORTED   RequestStatus = "aborted"
)

type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// RouteStatus is the last settled outcome seen for one "METHOD path" route.
type RouteStatus struct {
	Route      string        `json:"route" yaml:"route"`
	RequestID  string        `json:"request_id" yaml:"request_id"`
	Status     RequestStatus `json:"status" yaml:"status"`
	StatusCode int           `json:"status_code,omitempty" yaml:"status_code,omitempty"`
	Message    string        `json:"message,omitempty" yaml:"message,omitempty"`
	Replayed   bool          `json:"replayed,omitempty" yaml:"replayed,omitempty"`
	Duration   time.Duration `json:"duration" yaml:"duration"`
	UpdatedAt  time.Time     `json:"updated_at" yaml:"updated_at"`
}

type PipelineState struct {
	BaseAddress    string                 `json:"net_base_address" yaml:"net_base_address"`
	RequestTimeout time.Duration          `json:"net_request_timeout" yaml:"net_request_timeout"`
	DefaultHeaders ExtraHeaders           `json:"net_default_headers,omitempty" yaml:"net_default_headers,omitempty"`
	Interceptors   []string               `json:"net_interceptors,omitempty" yaml:"net_interceptors,omitempty"`
	Routes         map[string]RouteStatus `json:"net_routes,omitempty" yaml:"net_routes,omitempty"`
}
