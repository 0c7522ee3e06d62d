// Package probe computes uptime from the boot record in the accounting
// database and the wall clock.
//
// Failures are not errors to the caller: Uptime reports the value as absent
// so that the next strategy in a chain can be tried.
package probe

import (
	"errors"
	"fmt"
	"time"

	"github.com/erikh/uptime/pkg/timeval"
	"github.com/erikh/uptime/pkg/utmpx"
	"github.com/sirupsen/logrus"
)

var (
	ErrClockUnavailable      = errors.New("could not read the wall clock")
	ErrBootRecordUnavailable = errors.New("could not read the boot record")
	ErrBootInFuture          = errors.New("boot record is later than the current time")
)

type Clock interface {
	Now() (timeval.Timeval, error)
}

type BootSource interface {
	BootTimestamp() (timeval.Timeval, error)
}

type Probe struct {
	Clock Clock
	Boot  BootSource
	Log   logrus.FieldLogger
}

// New returns a probe reading the system clock and the platform accounting
// database.
func New(log logrus.FieldLogger) *Probe {
	return &Probe{
		Clock: SystemClock{},
		Boot:  utmpx.Database{},
		Log:   log,
	}
}

// Uptime probes the platform defaults once.
func Uptime() (float64, bool) {
	return New(nil).Uptime()
}

// Uptime returns the number of seconds since boot. ok is false when the clock
// or the boot record could not be read.
func (p *Probe) Uptime() (float64, bool) {
	elapsed, err := p.elapsed()
	if err != nil {
		p.logger().WithError(err).Debug("utmpx probe could not determine uptime")
		return 0, false
	}

	return elapsed.Seconds(), true
}

// BootTime returns the boot time implied by the probe, which is the current
// time less the uptime.
func (p *Probe) BootTime() (time.Time, bool) {
	elapsed, err := p.elapsed()
	if err != nil {
		p.logger().WithError(err).Debug("utmpx probe could not determine boot time")
		return time.Time{}, false
	}

	return time.Now().Add(-elapsed.Duration()), true
}

func (p *Probe) elapsed() (timeval.Timeval, error) {
	clock := p.Clock
	if clock == nil {
		clock = SystemClock{}
	}

	boot := p.Boot
	if boot == nil {
		boot = utmpx.Database{}
	}

	now, err := clock.Now()
	if err != nil {
		return timeval.Timeval{}, errors.Join(ErrClockUnavailable, err)
	}

	bt, err := boot.BootTimestamp()
	if err != nil {
		return timeval.Timeval{}, errors.Join(ErrBootRecordUnavailable, err)
	}

	elapsed, ok := now.Sub(bt)
	if !ok {
		return timeval.Timeval{}, fmt.Errorf("%w: boot at %d.%06d, now %d.%06d", ErrBootInFuture, bt.Sec, bt.Usec, now.Sec, now.Usec)
	}

	return elapsed, nil
}

func (p *Probe) logger() logrus.FieldLogger {
	if p.Log == nil {
		return logrus.StandardLogger()
	}

	return p.Log
}
