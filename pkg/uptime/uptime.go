// Package uptime determines how long the system has been running by trying a
// chain of platform strategies until one of them produces a value.
package uptime

import (
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
)

var ErrUnknownStrategy = errors.New("unknown uptime strategy")

// Strategy is one way of finding the uptime. A strategy that cannot answer on
// this system reports ok as false; it never fails loudly.
type Strategy interface {
	Name() string
	Uptime() (float64, bool)
}

type Options struct {
	// ProcRoot is the procfs mount point, /proc if empty.
	ProcRoot string
	// UtmpPath forces the utmpx strategy to read a glibc utmp file.
	UtmpPath string
	Log      logrus.FieldLogger
}

func (o Options) procRoot() string {
	if o.ProcRoot == "" {
		return "/proc"
	}

	return o.ProcRoot
}

func (o Options) logger() logrus.FieldLogger {
	if o.Log == nil {
		return logrus.StandardLogger()
	}

	return o.Log
}

const (
	StrategyProcfs    = "procfs"
	StrategyProcStat  = "procstat"
	StrategySysinfo   = "sysinfo"
	StrategySysctl    = "sysctl"
	StrategyDevTime   = "devtime"
	StrategyTickCount = "tickcount"
	StrategyUtmpx     = "utmpx"
	StrategyGopsutil  = "gopsutil"
)

// fallbackOrder is tried after the platform's preferred strategies.
var fallbackOrder = []string{
	StrategySysctl,
	StrategyDevTime,
	StrategyProcfs,
	StrategySysinfo,
	StrategyProcStat,
	StrategyUtmpx,
	StrategyTickCount,
	StrategyGopsutil,
}

var preferred = map[string][]string{
	"android": {StrategyProcfs, StrategySysinfo},
	"linux":   {StrategyProcfs, StrategySysinfo},
	"darwin":  {StrategySysctl},
	"windows": {StrategyTickCount},
	"plan9":   {StrategyDevTime},
	"solaris": {StrategyUtmpx},
	"illumos": {StrategyUtmpx},
}

type constructor func(Options) Strategy

var registry = map[string]constructor{}

func register(name string, c constructor) {
	registry[name] = c
}

// Known reports whether name is a strategy on any platform.
func Known(name string) bool {
	for _, n := range fallbackOrder {
		if n == name {
			return true
		}
	}

	return false
}

// Names lists the strategies available on this platform, preferred first.
func Names() []string {
	pref, ok := preferred[runtime.GOOS]
	if !ok {
		pref = []string{StrategySysctl}
	}

	seen := map[string]bool{}
	names := []string{}

	for _, name := range append(append([]string{}, pref...), fallbackOrder...) {
		if seen[name] {
			continue
		}
		seen[name] = true

		if _, ok := registry[name]; ok {
			names = append(names, name)
		}
	}

	return names
}

// Func adapts a function to the Strategy interface.
func Func(name string, fn func() (float64, bool)) Strategy {
	return funcStrategy{name: name, fn: fn}
}

type funcStrategy struct {
	name string
	fn   func() (float64, bool)
}

func (fs funcStrategy) Name() string {
	return fs.name
}

func (fs funcStrategy) Uptime() (float64, bool) {
	return fs.fn()
}

type Chain struct {
	Strategies []Strategy
	Log        logrus.FieldLogger
}

// Resolve builds a chain from strategy names. Names that exist only on other
// platforms are skipped, so one configuration file can serve several systems.
func Resolve(names []string, opts Options) (*Chain, error) {
	log := opts.logger()
	chain := &Chain{Log: log}

	for _, name := range names {
		c, ok := registry[name]
		if !ok {
			if !Known(name) {
				return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
			}

			log.WithField("strategy", name).Debug("strategy is not available on this platform, skipping")
			continue
		}

		chain.Strategies = append(chain.Strategies, c(opts))
	}

	return chain, nil
}

// Default returns the chain of every strategy available on this platform.
func Default(opts Options) *Chain {
	// every name from Names is registered, so this cannot fail.
	chain, _ := Resolve(Names(), opts)
	return chain
}

// Uptime returns the first value any strategy produces and the name of the
// strategy that produced it.
func (c *Chain) Uptime() (float64, string, bool) {
	log := c.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	for _, s := range c.Strategies {
		if up, ok := s.Uptime(); ok {
			return up, s.Name(), true
		}

		log.WithField("strategy", s.Name()).Debug("strategy could not determine uptime")
	}

	return 0, "", false
}

func (c *Chain) BootTime() (time.Time, string, bool) {
	up, name, ok := c.Uptime()
	if !ok {
		return time.Time{}, "", false
	}

	return time.Now().Add(-time.Duration(up * float64(time.Second))), name, true
}
