package httpclient

import (
	"net/http"

	"github.com/joy-dx/netpipe/dto"
	"github.com/joy-dx/netpipe/utils"
)

// HTTPRequest is per-call mutable wire state derived from a dto.Request.
type HTTPRequest struct {
	ID      string
	Method  string
	URL     string
	Body    any
	Headers map[string]string
	// Finalized wire body (deterministic for tests and replays)
	BodyBytes   []byte
	ContentType string
}

// newWireRequest merges default headers, request headers and the query into a
// fresh HTTPRequest. The dto.Request is never mutated.
func newWireRequest(baseAddress string, defaults map[string]string, req *dto.Request) (*HTTPRequest, error) {
	target, err := utils.JoinURL(baseAddress, req.Path, req.Params)
	if err != nil {
		return nil, err
	}

	r := &HTTPRequest{
		ID:      req.ID,
		Method:  req.Method,
		URL:     target,
		Body:    req.Body,
		Headers: make(map[string]string, len(defaults)+len(req.Headers)),
	}
	for k, v := range defaults {
		r.Headers[http.CanonicalHeaderKey(k)] = v
	}
	for k, v := range req.Headers {
		r.Headers[http.CanonicalHeaderKey(k)] = v
	}
	return r, nil
}

func (r *HTTPRequest) SetHeader(k, v string) {
	if r.Headers == nil {
		r.Headers = map[string]string{}
	}
	r.Headers[http.CanonicalHeaderKey(k)] = v
}

func (r *HTTPRequest) Header(k string) string {
	if r.Headers == nil {
		return ""
	}
	return r.Headers[http.CanonicalHeaderKey(k)]
}
