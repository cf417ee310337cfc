// Package auth attaches bearer credentials to outgoing requests and, when the
// server answers 401, refreshes the access token once for every request that
// failed while the refresh was outstanding, then replays each of them.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/joy-dx/netpipe/client/httpclient"
	"github.com/joy-dx/netpipe/dto"
	"github.com/joy-dx/netpipe/relays"
	relayDTO "github.com/joy-dx/relay/dto"
)

const InterceptorName = "auth"

type Options struct {
	// LoginPath is the client route; no redirect happens while already on it.
	LoginPath string
	// ExemptPaths are API paths whose 401 answers are passed through untouched,
	// typically the login and refresh endpoints.
	ExemptPaths []string
}

// flight is one outstanding refresh. Fields other than done and waiters are
// written once, under refreshState.mu, before done is closed.
type flight struct {
	done    chan struct{}
	waiters int

	token string
	err   error
	// skipped is set when there was no refresh token to use.
	skipped bool
}

// refreshState is Idle while flight is nil and Refreshing otherwise.
type refreshState struct {
	mu     sync.Mutex
	flight *flight
}

type Coordinator struct {
	store     dto.CredentialStore
	refresher dto.Refresher
	navigator dto.Navigator
	relay     relayDTO.RelayInterface
	opts      Options
	exempt    map[string]struct{}

	state refreshState
}

func NewCoordinator(
	store dto.CredentialStore,
	refresher dto.Refresher,
	navigator dto.Navigator,
	relay relayDTO.RelayInterface,
	opts Options,
) *Coordinator {
	exempt := make(map[string]struct{}, len(opts.ExemptPaths))
	for _, p := range opts.ExemptPaths {
		if p == "" {
			continue
		}
		exempt[routePath(p)] = struct{}{}
	}
	return &Coordinator{
		store:     store,
		refresher: refresher,
		navigator: navigator,
		relay:     relay,
		opts:      opts,
		exempt:    exempt,
	}
}

// Refreshing reports whether a refresh is in flight.
func (c *Coordinator) Refreshing() bool {
	c.state.mu.Lock()
	defer c.state.mu.Unlock()
	return c.state.flight != nil
}

// Waiting returns the number of requests queued behind the current refresh.
func (c *Coordinator) Waiting() int {
	c.state.mu.Lock()
	defer c.state.mu.Unlock()
	if c.state.flight == nil {
		return 0
	}
	return c.state.flight.waiters
}

func (c *Coordinator) Interceptor() dto.Interceptor {
	return dto.Interceptor{
		Name:            InterceptorName,
		OnRequest:       c.attachCredential,
		OnResponseError: c.handleFailure,
	}
}

func (c *Coordinator) attachCredential(ctx context.Context, req *dto.Request) (*dto.Request, error) {
	token, err := c.store.Get(ctx, dto.CredentialAccessToken)
	switch {
	case errors.Is(err, dto.ErrCredentialNotFound):
		return req, nil
	case err != nil:
		c.relay.Warn(relays.RlyNetAuth{
			Stage:     relays.AuthCredentialError,
			RequestID: req.ID,
			Route:     req.Route(),
			Msg:       "read access token: " + err.Error(),
		})
		return req, nil
	}
	if token != "" {
		httpclient.AttachBearer(req, token)
	}
	return req, nil
}

func (c *Coordinator) refreshable(failure *dto.RawFailure) bool {
	if failure.StatusCode != http.StatusUnauthorized || failure.Request == nil {
		return false
	}
	if failure.Request.Retried() {
		return false
	}
	_, exempt := c.exempt[routePath(failure.Request.Path)]
	return !exempt
}

// routePath drops the query and trailing slashes and forces a leading slash,
// so "auth/login/" and "/auth/login" compare equal.
func routePath(p string) string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	p = strings.TrimRight(p, "/")
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

func (c *Coordinator) handleFailure(ctx context.Context, failure *dto.RawFailure) (dto.Response, error) {
	if !c.refreshable(failure) {
		return dto.Response{}, failure
	}

	c.state.mu.Lock()
	if f := c.state.flight; f != nil {
		f.waiters++
		waiters := f.waiters
		c.state.mu.Unlock()
		c.relay.Debug(relays.RlyNetAuth{
			Stage:     relays.AuthRefreshQueued,
			RequestID: failure.Request.ID,
			Route:     failure.Request.Route(),
			Waiters:   waiters,
			Msg:       "waiting for token refresh",
		})
		return c.await(ctx, f, failure)
	}
	f := &flight{done: make(chan struct{})}
	c.state.flight = f
	c.state.mu.Unlock()

	return c.lead(ctx, f, failure)
}

// await blocks a queued request until the leader settles the flight.
func (c *Coordinator) await(ctx context.Context, f *flight, failure *dto.RawFailure) (dto.Response, error) {
	select {
	case <-f.done:
	case <-ctx.Done():
		c.state.mu.Lock()
		if c.state.flight == f {
			f.waiters--
		}
		c.state.mu.Unlock()
		return dto.Response{}, ctx.Err()
	}

	switch {
	case f.skipped:
		return dto.Response{}, failure
	case f.err != nil:
		return dto.Response{}, f.err
	}
	return c.replay(ctx, failure, f.token)
}

// lead performs the refresh for the flight it created.
func (c *Coordinator) lead(ctx context.Context, f *flight, failure *dto.RawFailure) (dto.Response, error) {
	req := failure.Request
	c.relay.Info(relays.RlyNetAuth{
		Stage:     relays.AuthRefreshStarted,
		RequestID: req.ID,
		Route:     req.Route(),
		Msg:       "access token rejected, refreshing",
	})

	refreshToken, err := c.store.Get(ctx, dto.CredentialRefreshToken)
	if err != nil && !errors.Is(err, dto.ErrCredentialNotFound) {
		c.relay.Warn(relays.RlyNetAuth{
			Stage: relays.AuthCredentialError,
			Msg:   "read refresh token: " + err.Error(),
		})
	}
	if refreshToken == "" {
		c.settle(f, "", nil, true)
		return dto.Response{}, failure
	}

	// A cancelled leader must not fail the requests queued behind it.
	token, refreshErr := c.refresher.Refresh(context.WithoutCancel(ctx), refreshToken)
	if refreshErr == nil && token == "" {
		refreshErr = ErrEmptyToken
	}
	if refreshErr != nil {
		waiters := c.settle(f, "", refreshErr, false)
		c.relay.Error(relays.RlyNetAuth{
			Stage:   relays.AuthRefreshFailed,
			Waiters: waiters,
			Msg:     refreshErr.Error(),
		})
		c.clearSession(ctx)
		return dto.Response{}, refreshErr
	}

	if err := c.store.Set(ctx, dto.CredentialAccessToken, token); err != nil {
		c.relay.Warn(relays.RlyNetAuth{
			Stage: relays.AuthCredentialError,
			Msg:   "persist access token: " + err.Error(),
		})
	}
	waiters := c.settle(f, token, nil, false)

	evt := relays.RlyNetAuth{
		Stage:   relays.AuthRefreshSucceeded,
		Waiters: waiters,
		Msg:     "access token refreshed",
	}
	if info, err := Inspect(token); err == nil {
		evt.Expiry = info.Expiry
	}
	c.relay.Info(evt)

	return c.replay(ctx, failure, token)
}

// settle records the outcome and returns the state to Idle before any waiter
// is released. It returns the number of waiters released.
func (c *Coordinator) settle(f *flight, token string, err error, skipped bool) int {
	c.state.mu.Lock()
	f.token = token
	f.err = err
	f.skipped = skipped
	waiters := f.waiters
	c.state.flight = nil
	c.state.mu.Unlock()

	close(f.done)
	return waiters
}

func (c *Coordinator) clearSession(ctx context.Context) {
	for _, key := range []string{dto.CredentialAccessToken, dto.CredentialRefreshToken} {
		if err := c.store.Remove(ctx, key); err != nil {
			c.relay.Warn(relays.RlyNetAuth{
				Stage: relays.AuthCredentialError,
				Msg:   "remove " + key + ": " + err.Error(),
			})
		}
	}
	if c.navigator != nil && c.navigator.CurrentPath() != c.opts.LoginPath {
		c.navigator.RedirectToLogin()
	}
}

func (c *Coordinator) replay(ctx context.Context, failure *dto.RawFailure, token string) (dto.Response, error) {
	req := failure.Request
	req.MarkRetried()
	httpclient.AttachBearer(req, token)

	c.relay.Debug(relays.RlyNetAuth{
		Stage:     relays.AuthReplay,
		RequestID: req.ID,
		Route:     req.Route(),
		Msg:       "replaying with refreshed token",
	})
	return failure.Replay(ctx, req)
}
