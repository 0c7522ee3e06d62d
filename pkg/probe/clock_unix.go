//go:build unix

package probe

import (
	"github.com/erikh/uptime/pkg/timeval"
	"golang.org/x/sys/unix"
)

// SystemClock reads the wall clock with gettimeofday(2).
type SystemClock struct{}

func (SystemClock) Now() (timeval.Timeval, error) {
	var tv unix.Timeval
	if err := unix.Gettimeofday(&tv); err != nil {
		return timeval.Timeval{}, err
	}

	return timeval.Timeval{Sec: int64(tv.Sec), Usec: int64(tv.Usec)}, nil
}
