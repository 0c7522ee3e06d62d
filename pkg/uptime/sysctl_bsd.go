//go:build darwin || dragonfly || freebsd || netbsd || openbsd

package uptime

import (
	"time"

	"github.com/erikh/uptime/pkg/timeval"
	"golang.org/x/sys/unix"
)

func init() {
	register(StrategySysctl, func(Options) Strategy {
		return Func(StrategySysctl, func() (float64, bool) {
			tv, err := unix.SysctlTimeval("kern.boottime")
			if err != nil {
				return 0, false
			}

			return sysctlUptime(timeval.Timeval{Sec: int64(tv.Sec), Usec: int64(tv.Usec)}, time.Now())
		})
	})
}
