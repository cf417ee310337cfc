package dto

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
)

type RequestOptions struct {
	SuppressLoadingIndicator  bool `json:"suppress_loading_indicator" yaml:"suppress_loading_indicator"`
	SuppressErrorNotification bool `json:"suppress_error_notification" yaml:"suppress_error_notification"`
}

// RequestOption customises a Request built by the verb helpers.
type RequestOption func(r *Request)

// Request describes one call through the pipeline. Callers treat it as
// immutable once handed over; interceptors may only add headers.
type Request struct {
	ID      string            `json:"id" yaml:"id"`
	Method  string            `json:"method" yaml:"method"`
	Path    string            `json:"path" yaml:"path"`
	Params  map[string]string `json:"params,omitempty" yaml:"params,omitempty"`
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Body    any               `json:"body,omitempty" yaml:"body,omitempty"`
	Options RequestOptions    `json:"options" yaml:"options"`

	// retried is owned by the in-flight attempt; a request is replayed at most once.
	retried bool
}

func NewRequest(method, path string) *Request {
	if method == "" {
		method = http.MethodGet
	}
	return &Request{
		ID:      uuid.NewString(),
		Method:  strings.ToUpper(method),
		Path:    path,
		Params:  make(map[string]string),
		Headers: make(map[string]string),
	}
}

func (r *Request) WithParams(params map[string]string) *Request {
	if r.Params == nil {
		r.Params = make(map[string]string, len(params))
	}
	for k, v := range params {
		r.Params[k] = v
	}
	return r
}

func (r *Request) WithHeaders(headers map[string]string) *Request {
	for k, v := range headers {
		r.SetHeader(k, v)
	}
	return r
}

func (r *Request) WithBody(body any) *Request {
	r.Body = body
	return r
}

func (r *Request) WithOptions(opts RequestOptions) *Request {
	r.Options = opts
	return r
}

func (r *Request) Apply(opts ...RequestOption) *Request {
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// SetHeader stores v under the canonical form of k, so "authorization" and
// "Authorization" name the same header.
func (r *Request) SetHeader(k, v string) {
	if r.Headers == nil {
		r.Headers = map[string]string{}
	}
	r.Headers[http.CanonicalHeaderKey(k)] = v
}

func (r *Request) Header(k string) string {
	if r.Headers == nil {
		return ""
	}
	return r.Headers[http.CanonicalHeaderKey(k)]
}

// MarkRetried flags the request as replayed.
func (r *Request) MarkRetried() { r.retried = true }

func (r *Request) Retried() bool { return r.retried }

// Route is the key used for route status tracking, e.g. "GET /users".
func (r *Request) Route() string {
	return r.Method + " " + r.Path
}
