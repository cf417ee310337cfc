package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/joy-dx/netpipe/config"
	"github.com/joy-dx/netpipe/dto"
	"github.com/joy-dx/netpipe/utils"
)

// -----------------------------------------------------------------------------
// TRANSPORT IMPLEMENTATION
// -----------------------------------------------------------------------------

// HTTPClient is the pipeline transport: it turns a dto.Request into one
// net/http round trip and reports failures as *dto.RawFailure, so nothing
// above it has to inspect net/http error types.

const NetClientHTTPRef = "net.client.http"

type HTTPClient struct {
	cfg    *HTTPClientConfig
	netCfg *config.PipelineConfig
	client *http.Client
}

func NewHTTPClient(netCfg *config.PipelineConfig, cfg *HTTPClientConfig) *HTTPClient {
	if cfg == nil {
		c := DefaultHTTPClientConfig()
		cfg = &c
	}
	return &HTTPClient{
		cfg:    cfg,
		netCfg: netCfg,
		client: &http.Client{
			Timeout: netCfg.RequestTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        cfg.MaxIdleConns,
				IdleConnTimeout:     cfg.IdleConnTimeout,
				TLSHandshakeTimeout: cfg.TLSHandshakeTimeout,
				DisableKeepAlives:   false,
				Proxy:               http.ProxyFromEnvironment,
			},
		},
	}
}

func (c *HTTPClient) Ref() string {
	return NetClientHTTPRef
}

// -----------------------------------------------------------------------------
// REQUEST EXECUTION
// -----------------------------------------------------------------------------

// Dispatch performs one round trip. A non-2xx answer returns the response
// together with a *dto.RawFailure carrying status, headers and body.
func (c *HTTPClient) Dispatch(ctx context.Context, req *dto.Request) (dto.Response, error) {
	if req == nil {
		return dto.Response{}, ErrNilRequest
	}

	wire, err := newWireRequest(c.netCfg.BaseAddress, c.netCfg.Headers(), req)
	if err != nil {
		return dto.Response{}, fmt.Errorf("build request: %w", err)
	}

	for _, mw := range c.cfg.Middlewares {
		if err := mw(ctx, wire); err != nil {
			return dto.Response{}, fmt.Errorf("middleware aborted: %w", err)
		}
	}

	if err := wire.FinalizeBody(); err != nil {
		return dto.Response{}, err
	}

	var body io.Reader
	if wire.BodyBytes != nil {
		body = bytes.NewReader(wire.BodyBytes)
	}
	httpReq, err := http.NewRequestWithContext(ctx, wire.Method, wire.URL, body)
	if err != nil {
		return dto.Response{}, fmt.Errorf("create request: %w", err)
	}

	httpReq.Header = utils.MapToHeader(wire.Headers)
	if wire.ContentType != "" && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", wire.ContentType)
	}

	// Defensive client.Do handling, httpResp may be non-nil with error
	httpResp, reqErr := c.client.Do(httpReq)
	if httpResp != nil {
		defer func() {
			_, _ = io.Copy(io.Discard, httpResp.Body) // drain fully for connection reuse
			_ = httpResp.Body.Close()
		}()
	}
	if reqErr != nil {
		return dto.Response{}, NewTransportFailure(req, reqErr)
	}

	bodyBytes, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return dto.Response{}, NewTransportFailure(req, fmt.Errorf("read body: %w", err))
	}

	response := dto.Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header.Clone(),
		Body:       bodyBytes,
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return response, NewStatusFailure(req, response)
	}

	return response, nil
}
