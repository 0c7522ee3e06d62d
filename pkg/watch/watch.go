// Package watch samples uptime on an interval and notices reboots, which show
// up as uptime going backwards between two samples.
package watch

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Source is anything that can report uptime, normally an *uptime.Chain.
type Source interface {
	Uptime() (float64, string, bool)
}

type Sample struct {
	Time      time.Time
	Available bool
	Uptime    float64
	Strategy  string
}

func (s Sample) BootTime() time.Time {
	return s.Time.Add(-time.Duration(s.Uptime * float64(time.Second)))
}

type Watcher struct {
	Source   Source
	OnSample func(Sample)
	OnReboot func(previous, current Sample)
	Log      logrus.FieldLogger

	interval   time.Duration
	last       *Sample
	mutex      sync.Mutex
	cancelFunc context.CancelFunc
	done       chan struct{}
}

func Init(source Source, interval time.Duration) *Watcher {
	return &Watcher{
		Source:   source,
		interval: interval,
	}
}

func (w *Watcher) logger() logrus.FieldLogger {
	if w.Log == nil {
		return logrus.StandardLogger()
	}

	return w.Log
}

// Check takes one sample and fires the callbacks for it.
func (w *Watcher) Check() Sample {
	up, strategy, ok := w.Source.Uptime()
	sample := Sample{Time: time.Now(), Available: ok, Uptime: up, Strategy: strategy}

	if !ok {
		w.logger().Warn("no strategy could determine uptime")
	}

	w.mutex.Lock()
	previous := w.last
	if ok {
		w.last = &sample
	}
	w.mutex.Unlock()

	if w.OnSample != nil {
		w.OnSample(sample)
	}

	if ok && previous != nil && sample.Uptime < previous.Uptime {
		w.logger().WithFields(logrus.Fields{
			"previous_uptime": previous.Uptime,
			"uptime":          sample.Uptime,
			"strategy":        sample.Strategy,
		}).Info("system rebooted")

		if w.OnReboot != nil {
			w.OnReboot(*previous, sample)
		}
	}

	return sample
}

// Last returns the most recent sample that had a value.
func (w *Watcher) Last() (Sample, bool) {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if w.last == nil {
		return Sample{}, false
	}

	return *w.last, true
}

func (w *Watcher) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	w.cancelFunc = cancel
	w.done = make(chan struct{})

	go w.run(ctx)
}

// Shutdown stops the watcher and waits for an in-flight sample to finish. It
// does nothing if the watcher was never started.
func (w *Watcher) Shutdown() {
	if w.cancelFunc == nil {
		return
	}

	w.cancelFunc()
	<-w.done
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.done)

	timer := time.NewTicker(w.interval)
	defer timer.Stop()

	for {
		w.Check()

		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
	}
}
