package netpipe

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"github.com/joy-dx/netpipe/apierr"
	"github.com/joy-dx/netpipe/credstore"
	"github.com/joy-dx/netpipe/dto"
	"github.com/joy-dx/netpipe/notify"
	"golang.org/x/sync/errgroup"
)

type harness struct {
	sys       *System
	transport *scriptTransport
	notifier  *fakeNotifier
	navigator *notify.RelayNavigator
	vis       *visibility
	store     *credstore.Memory
}

func newHarness(t *testing.T, refresher dto.Refresher, fn func(req *dto.Request, call int) (dto.Response, error)) *harness {
	t.Helper()

	cfg := newTestConfig()
	h := &harness{
		transport: &scriptTransport{fn: fn},
		notifier:  &fakeNotifier{},
		navigator: notify.NewRelayNavigator(&fakeRelay{}, cfg.LoginPath),
		vis:       &visibility{},
		store: credstore.NewMemory(map[string]string{
			dto.CredentialAccessToken:  "oldTok",
			dto.CredentialRefreshToken: "rt1",
		}),
	}
	h.navigator.SetPath("/dashboard")

	sys, err := Provide(context.Background(), cfg, Deps{
		Transport:         h.transport,
		Store:             h.store,
		Refresher:         refresher,
		Notifier:          h.notifier,
		Navigator:         h.navigator,
		SetLoadingVisible: h.vis.set,
	})
	if err != nil {
		t.Fatalf("Provide: %v", err)
	}
	h.sys = sys
	return h
}

// acceptOnly answers 401 unless the request carries "Bearer <token>".
func acceptOnly(token string) func(req *dto.Request, call int) (dto.Response, error) {
	return func(req *dto.Request, call int) (dto.Response, error) {
		if req.Header("Authorization") != "Bearer "+token {
			return respond(req, http.StatusUnauthorized, `{"error":"unauthorized"}`)
		}
		return respond(req, http.StatusOK, `{"ok":true}`)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("condition not met before deadline")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestProvide_ChainOrder(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil, acceptOnly("oldTok"))
	got := h.sys.Pipeline.State().Interceptors
	if !reflect.DeepEqual(got, []string{"loading", "auth", "error"}) {
		t.Fatalf("interceptors=%v; want loading, auth, error", got)
	}
}

func TestScenarioA_ConcurrentRefreshReplaysBoth(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	var gotRT atomic.Value
	started := make(chan struct{})
	release := make(chan struct{})
	refresher := dto.RefreshFunc(func(ctx context.Context, rt string) (string, error) {
		calls.Add(1)
		gotRT.Store(rt)
		close(started)
		<-release
		return "newTok", nil
	})

	h := newHarness(t, refresher, acceptOnly("newTok"))

	g, ctx := errgroup.WithContext(context.Background())
	for _, path := range []string{"/a", "/b"} {
		path := path
		g.Go(func() error {
			out, err := GetJSON[map[string]bool](ctx, h.sys.Pipeline, path)
			if err != nil {
				return err
			}
			if !out["ok"] {
				return errors.New("unexpected payload")
			}
			return nil
		})
	}

	<-started
	waitFor(t, func() bool { return h.sys.Auth.Waiting() == 1 })
	close(release)

	if err := g.Wait(); err != nil {
		t.Fatalf("requests failed: %v", err)
	}
	if calls.Load() != 1 || gotRT.Load() != "rt1" {
		t.Fatalf("refresh calls=%d rt=%v; want 1 with rt1", calls.Load(), gotRT.Load())
	}

	auths := h.transport.authHeaders()
	if len(auths) != 4 {
		t.Fatalf("dispatches=%d; want 4", len(auths))
	}
	replayed := 0
	for _, a := range auths {
		if a == "Bearer newTok" {
			replayed++
		}
	}
	if replayed != 2 {
		t.Fatalf("authorization headers=%v; want two replays with newTok", auths)
	}
	if len(h.notifier.messages()) != 0 {
		t.Fatalf("notifications=%v; want none", h.notifier.messages())
	}
	if h.sys.Loading.Active() != 0 {
		t.Fatalf("loading active=%d; want 0", h.sys.Loading.Active())
	}
	for _, route := range []string{"GET /a", "GET /b"} {
		if status, _ := h.sys.Pipeline.RouteStatus(route); status.Status != dto.RECOVERED {
			t.Fatalf("%s status=%q; want recovered", route, status.Status)
		}
	}
}

func TestScenarioB_RefreshFailureClearsSession(t *testing.T) {
	t.Parallel()

	expired := errors.New("expired")
	refresher := dto.RefreshFunc(func(ctx context.Context, rt string) (string, error) {
		return "", expired
	})
	h := newHarness(t, refresher, acceptOnly("never"))

	_, err := h.sys.Pipeline.Get(context.Background(), "/items")
	if err != expired {
		t.Fatalf("err=%v; want refresh error unchanged", err)
	}
	var domainErr *apierr.DomainError
	if errors.As(err, &domainErr) {
		t.Fatalf("refresh error was classified: %v", domainErr)
	}
	for _, key := range []string{dto.CredentialAccessToken, dto.CredentialRefreshToken} {
		if _, err := h.store.Get(context.Background(), key); !errors.Is(err, credstore.ErrNotFound) {
			t.Fatalf("%s still stored", key)
		}
	}
	if h.navigator.CurrentPath() != "/login" {
		t.Fatalf("path=%q; want /login", h.navigator.CurrentPath())
	}
	if len(h.notifier.messages()) != 0 {
		t.Fatalf("notifications=%v; want none", h.notifier.messages())
	}
	if got := h.vis.snapshot(); !reflect.DeepEqual(got, []bool{true, false}) {
		t.Fatalf("visibility=%v; want [true false]", got)
	}
}

func TestScenarioC_SuppressedLoading(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil, acceptOnly("oldTok"))
	if _, err := h.sys.Pipeline.Get(context.Background(), "/quiet", WithSuppressLoading()); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got := h.vis.snapshot(); len(got) != 0 {
		t.Fatalf("visibility=%v; want no calls", got)
	}
}

func TestScenarioD_ServerErrorClassified_Golden(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		opts        []dto.RequestOption
		wantNotices int
	}{
		{name: "notifies once", wantNotices: 1},
		{name: "suppressed", opts: []dto.RequestOption{WithSuppressNotification()}, wantNotices: 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newHarness(t, nil, func(req *dto.Request, call int) (dto.Response, error) {
				return respond(req, http.StatusInternalServerError, `{}`)
			})

			_, err := h.sys.Pipeline.Get(context.Background(), "/boom", tt.opts...)
			var domainErr *apierr.DomainError
			if !errors.As(err, &domainErr) {
				t.Fatalf("err=%v; want DomainError", err)
			}
			if domainErr.Code != apierr.CodeNetwork || domainErr.Message != "Error interno del servidor" {
				t.Fatalf("domain error=%+v", domainErr)
			}
			notices := h.notifier.messages()
			if len(notices) != tt.wantNotices {
				t.Fatalf("notifications=%v; want %d", notices, tt.wantNotices)
			}
			if tt.wantNotices == 1 && notices[0] != domainErr.Message {
				t.Fatalf("notification=%q; want %q", notices[0], domainErr.Message)
			}
		})
	}
}

func TestFailedReplayNotifiedOnce(t *testing.T) {
	t.Parallel()

	refresher := dto.RefreshFunc(func(ctx context.Context, rt string) (string, error) {
		return "newTok", nil
	})
	h := newHarness(t, refresher, func(req *dto.Request, call int) (dto.Response, error) {
		if call == 1 {
			return respond(req, http.StatusUnauthorized, `{}`)
		}
		return respond(req, http.StatusNotFound, `{"error":"Pedido no existe"}`)
	})

	_, err := h.sys.Pipeline.Get(context.Background(), "/orders/9")
	var domainErr *apierr.DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != apierr.CodeNotFound {
		t.Fatalf("err=%v; want NOT_FOUND DomainError", err)
	}
	if got := h.notifier.messages(); !reflect.DeepEqual(got, []string{"Pedido no existe"}) {
		t.Fatalf("notifications=%v; want exactly one", got)
	}
	if h.sys.Loading.Active() != 0 {
		t.Fatalf("loading active=%d; want 0", h.sys.Loading.Active())
	}
	if h.transport.calls() != 2 {
		t.Fatalf("dispatches=%d; want 2", h.transport.calls())
	}
}

func TestSecond401AfterReplayIsNotRefreshedAgain(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	refresher := dto.RefreshFunc(func(ctx context.Context, rt string) (string, error) {
		calls.Add(1)
		return "stillBad", nil
	})
	h := newHarness(t, refresher, acceptOnly("never"))

	_, err := h.sys.Pipeline.Get(context.Background(), "/items")
	var domainErr *apierr.DomainError
	if !errors.As(err, &domainErr) {
		t.Fatalf("err=%v; want DomainError", err)
	}
	if calls.Load() != 1 || h.transport.calls() != 2 {
		t.Fatalf("refresh calls=%d dispatches=%d; want 1 and 2", calls.Load(), h.transport.calls())
	}
	if len(h.notifier.messages()) != 1 {
		t.Fatalf("notifications=%v; want one", h.notifier.messages())
	}
}

func TestRefreshTransportFailureIsNotClassified(t *testing.T) {
	t.Parallel()

	const n = 8
	release := make(chan struct{})
	var refreshErr error
	var h *harness
	refresher := dto.RefreshFunc(func(ctx context.Context, rt string) (string, error) {
		<-release
		_, err := h.transport.Dispatch(ctx, dto.NewRequest(http.MethodPost, "/auth/refresh"))
		refreshErr = err
		return "", err
	})
	h = newHarness(t, refresher, func(req *dto.Request, call int) (dto.Response, error) {
		return respond(req, http.StatusUnauthorized, `{"error":"unauthorized"}`)
	})

	errs := make([]error, n)
	var g errgroup.Group
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			_, errs[i] = h.sys.Pipeline.Get(context.Background(), "/items")
			return nil
		})
	}

	waitFor(t, func() bool { return h.sys.Auth.Refreshing() && h.sys.Auth.Waiting() == n-1 })
	close(release)
	_ = g.Wait()

	var failure *dto.RawFailure
	if !errors.As(refreshErr, &failure) || failure.Request.Path != "/auth/refresh" {
		t.Fatalf("refresh err=%v; want transport failure on /auth/refresh", refreshErr)
	}
	for i, err := range errs {
		if err != refreshErr {
			t.Fatalf("request %d err=%v; want refresh error unchanged", i, err)
		}
		var domainErr *apierr.DomainError
		if errors.As(err, &domainErr) {
			t.Fatalf("request %d: refresh error was classified: %v", i, domainErr)
		}
	}
	if got := h.notifier.messages(); len(got) != 0 {
		t.Fatalf("notifications=%v; want none", got)
	}
	if h.sys.Loading.Active() != 0 {
		t.Fatalf("loading active=%d; want 0", h.sys.Loading.Active())
	}
	if h.navigator.CurrentPath() != "/login" {
		t.Fatalf("path=%q; want /login", h.navigator.CurrentPath())
	}
}
