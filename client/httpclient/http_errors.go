package httpclient

import (
	"context"
	"errors"
	"net"
	"net/http"
	"syscall"

	"github.com/joy-dx/netpipe/dto"
)

var ErrNilRequest = errors.New("nil request provided")

// transportCode maps a net/http error onto the transport taxonomy.
func transportCode(err error) dto.TransportCode {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		if dnsErr.IsTimeout {
			return dto.TransportTimeout
		}
		return dto.TransportHostNotFound
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return dto.TransportTimeout
	case errors.Is(err, context.Canceled):
		return dto.TransportAborted
	case errors.Is(err, syscall.ECONNREFUSED):
		return dto.TransportConnRefused
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return dto.TransportTimeout
	}
	return dto.TransportNetwork
}

// NewTransportFailure wraps an error that happened before any response was read.
func NewTransportFailure(req *dto.Request, err error) *dto.RawFailure {
	return &dto.RawFailure{
		Code:    transportCode(err),
		Message: err.Error(),
		Request: req,
		Err:     err,
	}
}

// NewStatusFailure wraps a response whose status is outside 2xx.
func NewStatusFailure(req *dto.Request, resp dto.Response) *dto.RawFailure {
	return &dto.RawFailure{
		StatusCode: resp.StatusCode,
		Message:    http.StatusText(resp.StatusCode),
		Headers:    resp.Headers,
		Body:       resp.Body,
		Request:    req,
	}
}
