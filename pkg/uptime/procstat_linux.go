package uptime

import (
	"time"

	"github.com/prometheus/procfs"
)

func init() {
	register(StrategyProcStat, func(o Options) Strategy {
		return procStat{root: o.procRoot(), now: time.Now}
	})
}

// procStat derives uptime from the btime line of /proc/stat, which only has
// second resolution.
type procStat struct {
	root string
	now  func() time.Time
}

func (procStat) Name() string {
	return StrategyProcStat
}

func (p procStat) Uptime() (float64, bool) {
	fs, err := procfs.NewFS(p.root)
	if err != nil {
		return 0, false
	}

	stat, err := fs.Stat()
	if err != nil || stat.BootTime == 0 {
		return 0, false
	}

	up := p.now().Sub(time.Unix(int64(stat.BootTime), 0)).Seconds()
	if up < 0 {
		return 0, false
	}

	return up, true
}
