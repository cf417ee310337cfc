package httpclient

import (
	"fmt"

	"github.com/joy-dx/netpipe/utils"
)

// FinalizeBody prepares BodyBytes and ContentType exactly once per call.
// Rules:
// - If BodyBytes is already set, we respect it.
// - Otherwise we build BodyBytes from Body and the Content-Type header.
// - Without a body the Content-Type header is dropped.
func (r *HTTPRequest) FinalizeBody() error {
	if r.BodyBytes != nil {
		return nil
	}
	if r.Body == nil {
		delete(r.Headers, "Content-Type")
		return nil
	}

	bodyBuf, ct, err := utils.PrepareBody(r.Body, r.Header("Content-Type"))
	if err != nil {
		return fmt.Errorf("prepare body: %w", err)
	}

	r.BodyBytes = bodyBuf
	// Prefer explicit ContentType if some middleware set it.
	if r.ContentType == "" {
		r.ContentType = ct
	}
	return nil
}
