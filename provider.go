package netpipe

import (
	"context"
	"fmt"

	"github.com/joy-dx/netpipe/apierr"
	"github.com/joy-dx/netpipe/auth"
	"github.com/joy-dx/netpipe/client/httpclient"
	"github.com/joy-dx/netpipe/config"
	"github.com/joy-dx/netpipe/credstore"
	"github.com/joy-dx/netpipe/dto"
	"github.com/joy-dx/netpipe/loading"
	"github.com/joy-dx/netpipe/notify"
	"github.com/joy-dx/netpipe/relays"
)

// Deps overrides the collaborators Provide would otherwise build from config.
type Deps struct {
	Transport dto.Transport
	Store     dto.CredentialStore
	Refresher dto.Refresher
	Notifier  dto.Notifier
	Navigator dto.Navigator
	// SetLoadingVisible receives indicator transitions. Defaults to a relay event.
	SetLoadingVisible func(visible bool)
}

// System is a wired pipeline plus the coordinators behind it.
type System struct {
	Pipeline  *Pipeline
	Loading   *loading.Coordinator
	Auth      *auth.Coordinator
	Store     dto.CredentialStore
	Transport dto.Transport
	Navigator dto.Navigator
}

// Provide builds the standard chain Loading -> Auth -> Error. Each call owns
// its own refresh state; nothing is shared between systems.
func Provide(ctx context.Context, cfg *config.PipelineConfig, deps Deps) (*System, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	relay := cfg.Relay()

	transport := deps.Transport
	if transport == nil {
		clientCfg := httpclient.DefaultHTTPClientConfig()
		clientCfg.WithMiddleware(
			httpclient.RequestIDMiddleware(),
			httpclient.LoggingMiddleware(func(msg string) {
				relay.Debug(relays.RlyNetLog{Msg: msg})
			}),
		)
		transport = httpclient.NewHTTPClient(cfg, &clientCfg)
	}

	store := deps.Store
	if store == nil {
		var err error
		store, err = credstore.New(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("credential store: %w", err)
		}
	}

	refresher := deps.Refresher
	if refresher == nil {
		refresher = auth.NewEndpointRefresher(transport, cfg.RefreshPath)
	}

	notifier := deps.Notifier
	if notifier == nil {
		notifier = notify.NewRelayNotifier(relay)
	}

	navigator := deps.Navigator
	if navigator == nil {
		navigator = notify.NewRelayNavigator(relay, cfg.LoginPath)
	}

	setVisible := deps.SetLoadingVisible
	if setVisible == nil {
		setVisible = func(visible bool) {
			if visible {
				relay.Debug(relays.RlyNetLog{Msg: "loading indicator shown"})
				return
			}
			relay.Debug(relays.RlyNetLog{Msg: "loading indicator hidden"})
		}
	}

	loadingCoordinator := loading.NewCoordinator(setVisible)
	authCoordinator := auth.NewCoordinator(store, refresher, navigator, relay, auth.Options{
		LoginPath:   cfg.LoginPath,
		ExemptPaths: []string{cfg.LoginEndpoint, cfg.RefreshPath},
	})

	pipeline, err := New(cfg, transport,
		loadingCoordinator.Interceptor(),
		authCoordinator.Interceptor(),
		apierr.Interceptor(notifier),
	)
	if err != nil {
		return nil, err
	}

	return &System{
		Pipeline:  pipeline,
		Loading:   loadingCoordinator,
		Auth:      authCoordinator,
		Store:     store,
		Transport: transport,
		Navigator: navigator,
	}, nil
}
