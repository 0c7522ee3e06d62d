// Package server answers uptime requests from peers. Every request carries a
// single-use nonce handed out by the server, and everything on the wire is a
// JWE under the shared key.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/erikh/uptime/pkg/api"
	"github.com/go-jose/go-jose/v3"
	"github.com/sirupsen/logrus"
)

const nonceExpiration = 30 * time.Second

var (
	ErrNonceMissing = errors.New("nonce provided does not exist")
	ErrNonceExpired = errors.New("nonce has expired")
)

// Source is anything that can report uptime, normally an *uptime.Chain.
type Source interface {
	Uptime() (float64, string, bool)
}

type Server struct {
	server   *http.Server
	listener net.Listener
	authKey  *jose.JSONWebKey
	source   Source
	hostname string
	log      logrus.FieldLogger

	nonces     map[string]time.Time
	nonceMutex sync.RWMutex

	cancelSupervision context.CancelFunc
}

// Start the server in the background. The listener is bound before Start
// returns, so Addr is usable immediately.
func Start(listenSpec string, authKey *jose.JSONWebKey, source Source, log logrus.FieldLogger) (*Server, error) {
	if authKey == nil {
		return nil, errors.New("an auth key is required to serve uptime")
	}

	if log == nil {
		log = logrus.StandardLogger()
	}

	l, err := net.Listen("tcp", listenSpec)
	if err != nil {
		return nil, fmt.Errorf("Could not listen on %q: %w", listenSpec, err)
	}

	hostname, err := os.Hostname()
	if err != nil {
		log.WithError(err).Warn("could not determine hostname")
	}

	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		listener:          l,
		authKey:           authKey,
		source:            source,
		hostname:          hostname,
		log:               log,
		nonces:            map[string]time.Time{},
		cancelSupervision: cancel,
	}

	s.server = &http.Server{Handler: s.configureMux()}

	go s.expireNonces(ctx)
	go func() {
		if err := s.server.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("uptime server terminated")
		}
	}()

	log.WithField("listen", l.Addr().String()).Info("uptime server started")

	return s, nil
}

func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Shutdown the server. Accept a context for timing out the shutdown process.
func (s *Server) Shutdown(ctx context.Context) error {
	defer s.cancelSupervision()
	return s.server.Shutdown(ctx)
}

func (s *Server) expireNonces(ctx context.Context) {
	ticker := time.NewTicker(nonceExpiration)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		s.nonceMutex.Lock()
		for n, t := range s.nonces {
			if t.Before(time.Now().Add(-nonceExpiration)) {
				delete(s.nonces, n)
			}
		}
		s.nonceMutex.Unlock()
	}
}

func (s *Server) configureMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/"+api.PathNonce, s.handleNonce)
	mux.HandleFunc("/"+api.PathUptime, s.handleUptime)
	return mux
}

func (s *Server) validateNonce(nonce string) error {
	s.nonceMutex.Lock()
	defer s.nonceMutex.Unlock()

	t, ok := s.nonces[nonce]
	if !ok {
		return ErrNonceMissing
	}

	// single use, whether or not it is still valid
	delete(s.nonces, nonce)

	if t.Before(time.Now().Add(-nonceExpiration)) {
		return ErrNonceExpired
	}

	return nil
}

func (s *Server) uptimeResponse() *api.UptimeResponse {
	resp := &api.UptimeResponse{Hostname: s.hostname}

	up, strategy, ok := s.source.Uptime()
	if !ok {
		return resp
	}

	resp.Available = true
	resp.Uptime = up
	resp.Strategy = strategy
	resp.BootTime = time.Now().Add(-resp.Duration()).UTC()

	return resp
}
