package uptime

import (
	"github.com/shirou/gopsutil/v4/host"
)

func init() {
	register(StrategyGopsutil, func(Options) Strategy {
		return Func(StrategyGopsutil, func() (float64, bool) {
			up, err := host.Uptime()
			if err != nil || up == 0 {
				return 0, false
			}

			return float64(up), true
		})
	})
}
