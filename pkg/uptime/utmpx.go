package uptime

import (
	"github.com/erikh/uptime/pkg/probe"
	"github.com/erikh/uptime/pkg/utmpx"
)

func init() {
	register(StrategyUtmpx, func(o Options) Strategy {
		p := probe.New(o.logger())
		p.Boot = utmpx.Database{Path: o.UtmpPath}
		return probeStrategy{probe: p}
	})
}

type probeStrategy struct {
	probe *probe.Probe
}

func (probeStrategy) Name() string {
	return StrategyUtmpx
}

func (ps probeStrategy) Uptime() (float64, bool) {
	return ps.probe.Uptime()
}
