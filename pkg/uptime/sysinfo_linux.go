package uptime

import (
	"golang.org/x/sys/unix"
)

func init() {
	register(StrategySysinfo, func(Options) Strategy {
		return Func(StrategySysinfo, func() (float64, bool) {
			var info unix.Sysinfo_t
			if err := unix.Sysinfo(&info); err != nil {
				return 0, false
			}

			if info.Uptime < 0 {
				return 0, false
			}

			return float64(info.Uptime), true
		})
	})
}
