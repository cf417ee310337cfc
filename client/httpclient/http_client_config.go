package httpclient

import (
	"context"
	"time"
)

// Middleware mutates the wire request right before it is sent.
// Returning an error aborts the dispatch.
type Middleware func(ctx context.Context, req *HTTPRequest) error

type HTTPClientConfig struct {
	MaxIdleConns        int
	IdleConnTimeout     time.Duration
	TLSHandshakeTimeout time.Duration
	Middlewares         []Middleware
}

func DefaultHTTPClientConfig() HTTPClientConfig {
	return HTTPClientConfig{
		MaxIdleConns:        50,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		Middlewares:         make([]Middleware, 0),
	}
}

func (c *HTTPClientConfig) WithMaxIdleConns(n int) *HTTPClientConfig {
	c.MaxIdleConns = n
	return c
}

func (c *HTTPClientConfig) WithMiddleware(m ...Middleware) *HTTPClientConfig {
	c.Middlewares = append(c.Middlewares, m...)
	return c
}
