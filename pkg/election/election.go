// Package election asks a set of peers for their uptime and picks the one
// that has been running the longest.
package election

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/erikh/uptime/pkg/api"
	"github.com/sirupsen/logrus"
)

var ErrNoCandidates = errors.New("no peer reported its uptime")

// Peer is normally a *client.Client.
type Peer interface {
	Uptime(context.Context) (*api.UptimeResponse, error)
}

type Election struct {
	peers       map[string]Peer
	log         logrus.FieldLogger
	uptimes     map[string]*api.UptimeResponse
	uptimeMutex sync.RWMutex
}

func NewElection(peers map[string]Peer, log logrus.FieldLogger) *Election {
	if log == nil {
		log = logrus.StandardLogger()
	}

	return &Election{
		peers:   peers,
		log:     log,
		uptimes: map[string]*api.UptimeResponse{},
	}
}

// Vote gathers uptimes and returns the name and answer of the oldest peer.
// Ties go to the name that sorts first.
func (e *Election) Vote(ctx context.Context) (string, *api.UptimeResponse, error) {
	e.gatherUptimes(ctx)

	e.uptimeMutex.RLock()
	defer e.uptimeMutex.RUnlock()

	names := make([]string, 0, len(e.uptimes))
	for name := range e.uptimes {
		names = append(names, name)
	}
	sort.Strings(names)

	var (
		oldestPeer   string
		oldestUptime *api.UptimeResponse
	)

	for _, name := range names {
		resp := e.uptimes[name]
		if oldestUptime == nil || resp.Uptime > oldestUptime.Uptime {
			oldestPeer = name
			oldestUptime = resp
		}
	}

	if oldestUptime == nil {
		return "", nil, ErrNoCandidates
	}

	return oldestPeer, oldestUptime, nil
}

// Uptimes returns the answers from the last vote, keyed by peer name.
func (e *Election) Uptimes() map[string]*api.UptimeResponse {
	e.uptimeMutex.RLock()
	defer e.uptimeMutex.RUnlock()

	res := make(map[string]*api.UptimeResponse, len(e.uptimes))
	for name, resp := range e.uptimes {
		res[name] = resp
	}

	return res
}

func (e *Election) getUptime(ctx context.Context, name string, peer Peer) error {
	resp, err := peer.Uptime(ctx)
	if err != nil {
		return err
	}

	if !resp.Available {
		return errors.New("peer could not determine its uptime")
	}

	e.uptimeMutex.Lock()
	defer e.uptimeMutex.Unlock()
	e.uptimes[name] = resp

	return nil
}

func (e *Election) gatherUptimes(ctx context.Context) {
	e.uptimeMutex.Lock()
	e.uptimes = map[string]*api.UptimeResponse{}
	e.uptimeMutex.Unlock()

	wg := &sync.WaitGroup{}
	wg.Add(len(e.peers))

	for name, peer := range e.peers {
		go func(name string, peer Peer) {
			defer wg.Done()
			if err := e.getUptime(ctx, name, peer); err != nil {
				e.log.WithField("peer", name).Warnf("Peer could not be reached, skipping: %v", err)
			}
		}(name, peer)
	}

	wg.Wait()
}
