package uptime

import (
	"golang.org/x/sys/windows"
)

var (
	kernel32           = windows.NewLazySystemDLL("kernel32.dll")
	procGetTickCount64 = kernel32.NewProc("GetTickCount64")
	procGetTickCount   = kernel32.NewProc("GetTickCount")
)

func init() {
	register(StrategyTickCount, func(Options) Strategy {
		return Func(StrategyTickCount, func() (float64, bool) {
			return tickUptime(procGetTickCount64, procGetTickCount)
		})
	})
}
