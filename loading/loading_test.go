package loading

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/joy-dx/netpipe/dto"
)

type visibilityRecorder struct {
	mu    sync.Mutex
	calls []bool
}

func (r *visibilityRecorder) set(v bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, v)
}

func (r *visibilityRecorder) count(v bool) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c == v {
			n++
		}
	}
	return n
}

func TestCoordinator_Transitions_Golden(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		ops       string // s = start, p = stop
		wantCalls []bool
		wantCount int
	}{
		{name: "single pair", ops: "sp", wantCalls: []bool{true, false}},
		{name: "nested", ops: "sssppp", wantCalls: []bool{true, false}},
		{name: "interleaved", ops: "spsp", wantCalls: []bool{true, false, true, false}},
		{name: "extra stops ignored", ops: "sppp", wantCalls: []bool{true, false}},
		{name: "stop before start", ops: "pps", wantCalls: []bool{true}, wantCount: 1},
		{name: "still active", ops: "ssp", wantCalls: []bool{true}, wantCount: 1},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := &visibilityRecorder{}
			c := NewCoordinator(rec.set)
			for _, op := range tt.ops {
				if op == 's' {
					c.Start()
				} else {
					c.Stop()
				}
			}
			if len(rec.calls) != len(tt.wantCalls) {
				t.Fatalf("calls=%v want %v", rec.calls, tt.wantCalls)
			}
			for i := range rec.calls {
				if rec.calls[i] != tt.wantCalls[i] {
					t.Fatalf("calls=%v want %v", rec.calls, tt.wantCalls)
				}
			}
			if c.Active() != tt.wantCount {
				t.Fatalf("Active()=%d want %d", c.Active(), tt.wantCount)
			}
		})
	}
}

func TestCoordinator_ConcurrentPairs(t *testing.T) {
	t.Parallel()

	rec := &visibilityRecorder{}
	c := NewCoordinator(rec.set)

	const k = 64
	// Hold one reference so the concurrent pairs never cross zero.
	c.Start()
	var wg sync.WaitGroup
	for i := 0; i < k; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Start()
			c.Stop()
		}()
	}
	wg.Wait()
	c.Stop()
	c.Stop()

	if rec.count(true) != 1 || rec.count(false) != 1 {
		t.Fatalf("calls=%v want exactly one true and one false", rec.calls)
	}
	if c.Active() != 0 {
		t.Fatalf("Active()=%d want 0", c.Active())
	}
}

func TestInterceptor_Hooks(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("request then response", func(t *testing.T) {
		rec := &visibilityRecorder{}
		ic := NewCoordinator(rec.set).Interceptor()
		req := dto.NewRequest("GET", "/x")

		if _, err := ic.OnRequest(ctx, req); err != nil {
			t.Fatalf("OnRequest: %v", err)
		}
		if _, err := ic.OnResponse(ctx, req, dto.Response{StatusCode: 200}); err != nil {
			t.Fatalf("OnResponse: %v", err)
		}
		if rec.count(true) != 1 || rec.count(false) != 1 {
			t.Fatalf("calls=%v", rec.calls)
		}
	})

	t.Run("error hook stops and rethrows", func(t *testing.T) {
		rec := &visibilityRecorder{}
		ic := NewCoordinator(rec.set).Interceptor()
		req := dto.NewRequest("GET", "/x")
		failure := &dto.RawFailure{StatusCode: 500, Request: req}

		_, _ = ic.OnRequest(ctx, req)
		_, err := ic.OnResponseError(ctx, failure)
		var got *dto.RawFailure
		if !errors.As(err, &got) || got != failure {
			t.Fatalf("err=%v; want original failure", err)
		}
		if rec.count(false) != 1 {
			t.Fatalf("calls=%v", rec.calls)
		}
	})

	t.Run("abort releases", func(t *testing.T) {
		rec := &visibilityRecorder{}
		c := NewCoordinator(rec.set)
		ic := c.Interceptor()
		req := dto.NewRequest("GET", "/x")

		_, _ = ic.OnRequest(ctx, req)
		ic.OnAbort(ctx, req, errors.New("later hook failed"))
		if c.Active() != 0 || rec.count(false) != 1 {
			t.Fatalf("active=%d calls=%v", c.Active(), rec.calls)
		}
	})

	t.Run("suppressed request never shows indicator", func(t *testing.T) {
		rec := &visibilityRecorder{}
		c := NewCoordinator(rec.set)
		ic := c.Interceptor()
		req := dto.NewRequest("GET", "/x").WithOptions(dto.RequestOptions{SuppressLoadingIndicator: true})

		_, _ = ic.OnRequest(ctx, req)
		_, _ = ic.OnResponse(ctx, req, dto.Response{StatusCode: 200})
		_, _ = ic.OnResponseError(ctx, &dto.RawFailure{StatusCode: 500, Request: req})
		if len(rec.calls) != 0 || c.Active() != 0 {
			t.Fatalf("calls=%v active=%d; want none", rec.calls, c.Active())
		}
	})
}
