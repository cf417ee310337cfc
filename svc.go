// Package netpipe sends HTTP requests through an ordered interceptor chain
// around a single transport. The standard chain, built by Provide, shows a
// loading indicator, refreshes bearer credentials on 401 and turns failures
// into apierr.DomainError values the UI can display.
package netpipe

import (
	"errors"
	"fmt"

	"github.com/joy-dx/lockablemap"
	"github.com/joy-dx/netpipe/config"
	"github.com/joy-dx/netpipe/dto"
	"github.com/joy-dx/netpipe/relays"
	relayDTO "github.com/joy-dx/relay/dto"
)

var ErrNilRequest = errors.New("nil request provided")

// Pipeline owns the transport and the interceptors. Registration order is
// execution order for every hook kind.
type Pipeline struct {
	cfg          *config.PipelineConfig
	relay        relayDTO.RelayInterface
	transport    dto.Transport
	interceptors []dto.Interceptor
	routeState   *lockablemap.LockableMap[string, dto.RouteStatus]
}

var _ dto.PipelineInterface = (*Pipeline)(nil)

func New(cfg *config.PipelineConfig, transport dto.Transport, interceptors ...dto.Interceptor) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if transport == nil {
		return nil, fmt.Errorf("%w: nil transport", config.ErrInvalidConfig)
	}

	p := &Pipeline{
		cfg:          cfg,
		relay:        cfg.Relay(),
		transport:    transport,
		interceptors: append([]dto.Interceptor(nil), interceptors...),
		routeState:   lockablemap.NewLockableMap[string, dto.RouteStatus](),
	}
	p.relay.Debug(relays.RlyNetLog{Msg: fmt.Sprintf("Net pipeline started with %d interceptors", len(p.interceptors))})
	return p, nil
}
