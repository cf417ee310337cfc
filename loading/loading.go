// Package loading keeps a reference-counted busy indicator in sync with the
// number of requests in flight.
package loading

import (
	"context"
	"sync"

	"github.com/joy-dx/netpipe/dto"
)

const InterceptorName = "loading"

// Coordinator calls setVisible(true) on the 0->1 transition and
// setVisible(false) on the 1->0 transition. setVisible runs under the
// coordinator lock and must not call back into it.
type Coordinator struct {
	mu         sync.Mutex
	count      int
	setVisible func(visible bool)
}

func NewCoordinator(setVisible func(visible bool)) *Coordinator {
	if setVisible == nil {
		setVisible = func(bool) {}
	}
	return &Coordinator{setVisible: setVisible}
}

func (c *Coordinator) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.count++
	if c.count == 1 {
		c.setVisible(true)
	}
}

// Stop never drops the counter below zero; extra calls are ignored.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.count == 0 {
		return
	}
	c.count--
	if c.count == 0 {
		c.setVisible(false)
	}
}

// Active returns the number of requests currently holding the indicator.
func (c *Coordinator) Active() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

// Interceptor wraps the coordinator for the pipeline. Requests with
// SuppressLoadingIndicator never touch the counter.
func (c *Coordinator) Interceptor() dto.Interceptor {
	tracked := func(req *dto.Request) bool {
		return req == nil || !req.Options.SuppressLoadingIndicator
	}
	return dto.Interceptor{
		Name: InterceptorName,
		OnRequest: func(ctx context.Context, req *dto.Request) (*dto.Request, error) {
			if tracked(req) {
				c.Start()
			}
			return req, nil
		},
		OnResponse: func(ctx context.Context, req *dto.Request, resp dto.Response) (dto.Response, error) {
			if tracked(req) {
				c.Stop()
			}
			return resp, nil
		},
		OnResponseError: func(ctx context.Context, failure *dto.RawFailure) (dto.Response, error) {
			if tracked(failure.Request) {
				c.Stop()
			}
			return dto.Response{}, failure
		},
		OnAbort: func(ctx context.Context, req *dto.Request, err error) {
			if tracked(req) {
				c.Stop()
			}
		},
	}
}
