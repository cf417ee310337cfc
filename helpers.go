package netpipe

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/joy-dx/netpipe/dto"
	"github.com/joy-dx/netpipe/relays"
)

// publishRequestUpdate records the settled outcome and announces it.
func (p *Pipeline) publishRequestUpdate(req *dto.Request, at *attempt, err error, elapsed time.Duration) {
	status := dto.SUCCESS
	msg := "ok"
	switch {
	case at.aborted:
		status = dto.ABORTED
		msg = err.Error()
	case err != nil:
		status = dto.FAILED
		msg = err.Error()
	case req.Retried():
		status = dto.RECOVERED
		msg = "recovered after replay"
	}

	p.routeState.Set(req.Route(), dto.RouteStatus{
		Route:      req.Route(),
		RequestID:  req.ID,
		Status:     status,
		StatusCode: at.statusCode,
		Message:    msg,
		Replayed:   req.Retried(),
		Duration:   elapsed,
		UpdatedAt:  time.Now(),
	})

	if p.relay == nil {
		return
	}
	evt := relays.RlyNetRequest{
		RequestID:  req.ID,
		Route:      req.Route(),
		Status:     status,
		StatusCode: at.statusCode,
		Replayed:   req.Retried(),
		Duration:   elapsed,
		Msg:        msg,
	}
	if err != nil {
		p.relay.Warn(evt)
		return
	}
	p.relay.Info(evt)
}

func decode[T any](resp dto.Response, err error) (T, error) {
	var out T
	if err != nil {
		return out, err
	}
	if len(resp.Body) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return out, fmt.Errorf("unmarshal response: %w", err)
	}
	return out, nil
}

// GetJSON performs a GET and decodes the payload into T.
func GetJSON[T any](ctx context.Context, p dto.PipelineInterface, path string, opts ...dto.RequestOption) (T, error) {
	return decode[T](p.Get(ctx, path, opts...))
}

func PostJSON[T any](ctx context.Context, p dto.PipelineInterface, path string, body any, opts ...dto.RequestOption) (T, error) {
	return decode[T](p.Post(ctx, path, body, opts...))
}

func PutJSON[T any](ctx context.Context, p dto.PipelineInterface, path string, body any, opts ...dto.RequestOption) (T, error) {
	return decode[T](p.Put(ctx, path, body, opts...))
}

func PatchJSON[T any](ctx context.Context, p dto.PipelineInterface, path string, body any, opts ...dto.RequestOption) (T, error) {
	return decode[T](p.Patch(ctx, path, body, opts...))
}

func DeleteJSON[T any](ctx context.Context, p dto.PipelineInterface, path string, opts ...dto.RequestOption) (T, error) {
	return decode[T](p.Delete(ctx, path, opts...))
}
