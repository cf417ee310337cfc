package netpipe

import "github.com/joy-dx/netpipe/dto"

func WithParams(params map[string]string) dto.RequestOption {
	return func(r *dto.Request) { r.WithParams(params) }
}

func WithHeaders(headers map[string]string) dto.RequestOption {
	return func(r *dto.Request) { r.WithHeaders(headers) }
}

// WithSuppressLoading keeps the request off the loading indicator.
func WithSuppressLoading() dto.RequestOption {
	return func(r *dto.Request) { r.Options.SuppressLoadingIndicator = true }
}

// WithSuppressNotification classifies failures without notifying the user.
func WithSuppressNotification() dto.RequestOption {
	return func(r *dto.Request) { r.Options.SuppressErrorNotification = true }
}
