package netpipe

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/joy-dx/netpipe/dto"
)

// attempt collects what the route status needs to know about one call,
// including any replay issued on its behalf.
type attempt struct {
	aborted    bool
	statusCode int
}

// Do runs req through the chain. Errors returned by the last hook that touched
// the failure reach the caller unchanged.
func (p *Pipeline) Do(ctx context.Context, req *dto.Request) (dto.Response, error) {
	if req == nil {
		return dto.Response{}, ErrNilRequest
	}

	start := time.Now()
	var at attempt
	resp, err := p.run(ctx, req, -1, &at)
	p.publishRequestUpdate(req, &at, err, time.Since(start))
	return resp, err
}

func (p *Pipeline) Get(ctx context.Context, path string, opts ...dto.RequestOption) (dto.Response, error) {
	return p.Do(ctx, dto.NewRequest(http.MethodGet, path).Apply(opts...))
}

func (p *Pipeline) Post(ctx context.Context, path string, body any, opts ...dto.RequestOption) (dto.Response, error) {
	return p.Do(ctx, dto.NewRequest(http.MethodPost, path).WithBody(body).Apply(opts...))
}

func (p *Pipeline) Put(ctx context.Context, path string, body any, opts ...dto.RequestOption) (dto.Response, error) {
	return p.Do(ctx, dto.NewRequest(http.MethodPut, path).WithBody(body).Apply(opts...))
}

func (p *Pipeline) Patch(ctx context.Context, path string, body any, opts ...dto.RequestOption) (dto.Response, error) {
	return p.Do(ctx, dto.NewRequest(http.MethodPatch, path).WithBody(body).Apply(opts...))
}

func (p *Pipeline) Delete(ctx context.Context, path string, opts ...dto.RequestOption) (dto.Response, error) {
	return p.Do(ctx, dto.NewRequest(http.MethodDelete, path).Apply(opts...))
}

// run executes one pass over the chain. skip is the index of an interceptor
// left out of this pass; replays skip the interceptor that issued them.
func (p *Pipeline) run(ctx context.Context, req *dto.Request, skip int, at *attempt) (dto.Response, error) {
	acquired := make([]int, 0, len(p.interceptors))
	for i, ic := range p.interceptors {
		if i == skip || ic.OnRequest == nil {
			continue
		}
		next, err := ic.OnRequest(ctx, req)
		if err != nil {
			p.abort(ctx, req, acquired, err)
			at.aborted = true
			return dto.Response{}, err
		}
		if next != nil {
			req = next
		}
		acquired = append(acquired, i)
	}

	dispatchCtx := ctx
	if p.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		dispatchCtx, cancel = context.WithTimeout(ctx, p.cfg.RequestTimeout)
		defer cancel()
	}

	resp, err := p.transport.Dispatch(dispatchCtx, req)
	at.statusCode = resp.StatusCode
	if err == nil {
		return p.onSuccess(ctx, req, resp, skip)
	}
	return p.onFailure(ctx, p.asFailure(req, err), skip, at)
}

func (p *Pipeline) onSuccess(ctx context.Context, req *dto.Request, resp dto.Response, skip int) (dto.Response, error) {
	for i, ic := range p.interceptors {
		if i == skip || ic.OnResponse == nil {
			continue
		}
		var err error
		resp, err = ic.OnResponse(ctx, req, resp)
		if err != nil {
			return dto.Response{}, err
		}
	}
	return resp, nil
}

// onFailure walks the error hooks. A hook is only offered the failure this
// attempt dispatched; once a hook returns any other error, even another
// *dto.RawFailure such as a refresh error, the remaining hooks are skipped.
func (p *Pipeline) onFailure(ctx context.Context, failure *dto.RawFailure, skip int, at *attempt) (dto.Response, error) {
	var current error = failure
	for i, ic := range p.interceptors {
		if i == skip || ic.OnResponseError == nil {
			continue
		}
		if current != error(failure) {
			break
		}

		issuer := i
		failure.WithReplay(func(replayCtx context.Context, replayReq *dto.Request) (dto.Response, error) {
			return p.run(replayCtx, replayReq, issuer, at)
		})

		resp, err := ic.OnResponseError(ctx, failure)
		if err == nil {
			return resp, nil
		}
		current = err
	}
	return dto.Response{}, current
}

// abort releases, in reverse order, the interceptors whose OnRequest already ran.
func (p *Pipeline) abort(ctx context.Context, req *dto.Request, acquired []int, cause error) {
	for j := len(acquired) - 1; j >= 0; j-- {
		if release := p.interceptors[acquired[j]].OnAbort; release != nil {
			release(ctx, req, cause)
		}
	}
}

// asFailure makes sure error hooks always receive a tagged failure, even when
// the transport failed before building one.
func (p *Pipeline) asFailure(req *dto.Request, err error) *dto.RawFailure {
	var failure *dto.RawFailure
	if errors.As(err, &failure) {
		if failure.Request == nil {
			failure.Request = req
		}
		return failure
	}
	return &dto.RawFailure{
		Message: err.Error(),
		Err:     err,
		Request: req,
	}
}
