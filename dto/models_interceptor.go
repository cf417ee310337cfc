package dto

import "context"

// Interceptor is one position in the pipeline. Every hook is optional.
//
// OnResponseError either recovers by returning a response with a nil error,
// which ends the chain, or returns an error that becomes the failure seen by
// the following hooks. OnAbort is called, in reverse order, on interceptors whose
// OnRequest already ran when a later OnRequest fails.
type Interceptor struct {
	Name            string
	OnRequest       func(ctx context.Context, req *Request) (*Request, error)
	OnResponse      func(ctx context.Context, req *Request, resp Response) (Response, error)
	OnResponseError func(ctx context.Context, failure *RawFailure) (Response, error)
	OnAbort         func(ctx context.Context, req *Request, err error)
}
