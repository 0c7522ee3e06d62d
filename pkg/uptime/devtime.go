package uptime

import (
	"os"
	"strconv"
	"strings"
)

func init() {
	register(StrategyDevTime, func(Options) Strategy {
		return devTime{path: "/dev/time"}
	})
}

// devTime reads the Plan 9 time file: seconds since the epoch, nanoseconds
// since the epoch, clock ticks since boot and ticks per second. See cons(3).
type devTime struct {
	path string
}

func (devTime) Name() string {
	return StrategyDevTime
}

func (d devTime) Uptime() (float64, bool) {
	data, err := os.ReadFile(d.path)
	if err != nil {
		return 0, false
	}

	fields := strings.Fields(string(data))
	if len(fields) != 4 {
		return 0, false
	}

	ticks, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return 0, false
	}

	freq, err := strconv.ParseFloat(fields[3], 64)
	if err != nil || freq <= 0 {
		return 0, false
	}

	return ticks / freq, true
}
