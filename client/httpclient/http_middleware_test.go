package httpclient

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/joy-dx/netpipe/dto"
)

func Test_Middlewares_golden(t *testing.T) {
	srv, last := newRecordingServer(t, func(rr recordedRequest, w http.ResponseWriter) {
		w.WriteHeader(200)
		_, _ = w.Write([]byte("ok"))
	})

	var logged []string
	cfg := DefaultHTTPClientConfig()
	cfg.WithMiddleware(
		StaticHeaderMiddleware(map[string]string{
			"X-Static": "1",
		}),
		RequestIDMiddleware(),
		LoggingMiddleware(func(msg string) { logged = append(logged, msg) }),
	)

	c := newTestClient(t, srv.URL, &cfg)

	req := dto.NewRequest(http.MethodPost, "/items").
		WithBody(map[string]any{"orig": "v"}).
		WithHeaders(map[string]string{"X-FromRequest": "1"})

	gotResp, err := c.Dispatch(context.Background(), req)
	if err != nil {
		t.Fatalf("Dispatch error: %v", err)
	}
	if gotResp.StatusCode != 200 {
		t.Fatalf("status=%d; want 200", gotResp.StatusCode)
	}

	wantHeaders := map[string]string{
		"X-Static":      "1",
		"X-Fromrequest": "1",
		"X-Request-Id":  req.ID,
	}
	for k, v := range wantHeaders {
		if got := last.Header.Get(k); got != v {
			t.Fatalf("header %s=%q; want %q", k, got, v)
		}
	}
	if len(logged) != 1 || !strings.HasPrefix(logged[0], "[HTTP] POST "+srv.URL+"/items") {
		t.Fatalf("logged=%v", logged)
	}
}

func Test_Middleware_abortStopsDispatch(t *testing.T) {
	hits := 0
	srv, _ := newRecordingServer(t, func(rr recordedRequest, w http.ResponseWriter) {
		hits++
		w.WriteHeader(200)
	})

	boom := errors.New("boom")
	cfg := DefaultHTTPClientConfig()
	cfg.WithMiddleware(func(ctx context.Context, r *HTTPRequest) error { return boom })

	c := newTestClient(t, srv.URL, &cfg)
	_, err := c.Dispatch(context.Background(), dto.NewRequest(http.MethodGet, "/"))
	if !errors.Is(err, boom) {
		t.Fatalf("err=%v; want boom", err)
	}
	if hits != 0 {
		t.Fatalf("server hits=%d; want 0", hits)
	}
}
