package uptime

import (
	"time"

	"github.com/erikh/uptime/pkg/timeval"
)

// sysctlUptime turns a kern.boottime reading into an uptime. Some OS X
// releases put garbage in the microsecond field, so out-of-range values are
// dropped rather than folded into seconds.
func sysctlUptime(boot timeval.Timeval, now time.Time) (float64, bool) {
	if boot.Usec > 1000000 || boot.Usec < 0 {
		boot.Usec = 0
	}

	elapsed, ok := timeval.FromTime(now).Sub(boot)
	if !ok || elapsed.Seconds() <= 0 {
		return 0, false
	}

	return elapsed.Seconds(), true
}
