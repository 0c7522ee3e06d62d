//go:build !unix

package probe

import (
	"time"

	"github.com/erikh/uptime/pkg/timeval"
)

// SystemClock reads the wall clock through the runtime.
type SystemClock struct{}

func (SystemClock) Now() (timeval.Timeval, error) {
	return timeval.FromTime(time.Now()), nil
}
