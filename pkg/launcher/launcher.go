// Package launcher starts the long running parts of uptime serve together.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/erikh/uptime/pkg/config"
	"github.com/erikh/uptime/pkg/server"
	"github.com/erikh/uptime/pkg/watch"
	"github.com/sirupsen/logrus"
)

// Source satisfies both server.Source and watch.Source.
type Source interface {
	Uptime() (float64, string, bool)
}

type Server struct {
	control *server.Server
	watcher *watch.Watcher
}

// Launch starts the uptime exchange on listen, or c.Listen when listen is
// empty, and a watcher that logs reboots at c.Watch.Interval.
func (s *Server) Launch(listen string, c *config.Config, source Source, log logrus.FieldLogger) error {
	if c.AuthKey == nil {
		return errors.New("configuration has no auth_key; run uptime keygen first")
	}

	if listen == "" {
		listen = c.Listen
	}

	if log == nil {
		log = logrus.StandardLogger()
	}

	cs, err := server.Start(listen, c.AuthKey, source, log)
	if err != nil {
		return err
	}

	w := watch.Init(source, time.Duration(c.Watch.Interval))
	w.Log = log.WithField("component", "watch")
	w.Start()

	s.control = cs
	s.watcher = w

	return nil
}

func (s *Server) Addr() net.Addr {
	return s.control.Addr()
}

// Last returns the watcher's most recent sample.
func (s *Server) Last() (watch.Sample, bool) {
	return s.watcher.Last()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.watcher.Shutdown()

	if err := s.control.Shutdown(ctx); err != nil {
		return fmt.Errorf("While terminating uptime server: %w", err)
	}

	return nil
}
