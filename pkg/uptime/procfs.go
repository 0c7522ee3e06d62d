package uptime

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

func init() {
	register(StrategyProcfs, func(o Options) Strategy {
		return procUptime{root: o.procRoot()}
	})
}

// procUptime reads the first field of /proc/uptime. Cygwin and some BSDs with
// linprocfs provide it too, so it is registered everywhere.
type procUptime struct {
	root string
}

func (procUptime) Name() string {
	return StrategyProcfs
}

func (p procUptime) Uptime() (float64, bool) {
	data, err := os.ReadFile(filepath.Join(p.root, "uptime"))
	if err != nil {
		return 0, false
	}

	fields := strings.Fields(string(data))
	if len(fields) == 0 {
		return 0, false
	}

	up, err := strconv.ParseFloat(fields[0], 64)
	if err != nil || up < 0 {
		return 0, false
	}

	return up, true
}
