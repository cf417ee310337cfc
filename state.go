package netpipe

import (
	"github.com/joy-dx/netpipe/dto"
)

func (p *Pipeline) State() *dto.PipelineState {
	names := make([]string, 0, len(p.interceptors))
	for _, ic := range p.interceptors {
		names = append(names, ic.Name)
	}

	return &dto.PipelineState{
		BaseAddress:    p.cfg.BaseAddress,
		RequestTimeout: p.cfg.RequestTimeout,
		DefaultHeaders: p.cfg.DefaultHeaders,
		Interceptors:   names,
		Routes:         p.routeState.GetAll(),
	}
}

// RouteStatus returns the last settled outcome for a "METHOD path" route.
func (p *Pipeline) RouteStatus(route string) (dto.RouteStatus, bool) {
	status, ok := p.routeState.GetAll()[route]
	return status, ok
}
