package uptime

// tickProc is the part of a *windows.LazyProc the tick count strategy uses.
type tickProc interface {
	Find() error
	Call(a ...uintptr) (r1, r2 uintptr, lastErr error)
}

// tickUptime prefers GetTickCount64. Systems older than Vista only have
// GetTickCount, a 32-bit millisecond counter that wraps after 49.7 days.
func tickUptime(tick64, tick32 tickProc) (float64, bool) {
	if tick64.Find() == nil {
		ret, _, _ := tick64.Call()
		return float64(uint64(ret)) / 1000, true
	}

	if tick32.Find() == nil {
		ret, _, _ := tick32.Call()
		return float64(uint32(ret)) / 1000, true
	}

	return 0, false
}
