package httpclient

import (
	"context"
	"fmt"
)

// StaticHeaderMiddleware injects static headers into every request.
func StaticHeaderMiddleware(headers map[string]string) Middleware {
	return func(ctx context.Context, r *HTTPRequest) error {
		for k, v := range headers {
			r.SetHeader(k, v)
		}
		return nil
	}
}

// RequestIDMiddleware propagates the request id as X-Request-ID.
func RequestIDMiddleware() Middleware {
	return func(ctx context.Context, r *HTTPRequest) error {
		if r.ID != "" && r.Header("X-Request-ID") == "" {
			r.SetHeader("X-Request-ID", r.ID)
		}
		return nil
	}
}

func LoggingMiddleware(logger func(msg string)) Middleware {
	return func(ctx context.Context, r *HTTPRequest) error {
		logger(fmt.Sprintf("[HTTP] %s %s", r.Method, r.URL))
		return nil
	}
}
