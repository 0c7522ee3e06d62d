package server

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/erikh/uptime/pkg/api"
)

// encrypts a nonce with the key. for authentication challenges, it is expected
// that this nonce will be repeated back to a request.
func (s *Server) handleNonce(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Invalid HTTP Method for Request", http.StatusMethodNotAllowed)
		return
	}

	byt := make([]byte, api.NonceSize)

	ok := true
	var nonce string

	// XXX potential to infinite loop; just seems really unlikely.
	for ok {
		if n, err := rand.Read(byt); err != nil || n != api.NonceSize {
			http.Error(w, fmt.Sprintf("Invalid entropy read (size: %d, error: %v)", n, err), http.StatusInternalServerError)
			return
		}

		nonce = string(byt)

		s.nonceMutex.RLock()
		_, ok = s.nonces[nonce]
		s.nonceMutex.RUnlock()
	}

	s.nonceMutex.Lock()
	s.nonces[nonce] = time.Now()
	s.nonceMutex.Unlock()

	out, err := api.EncryptBytes(s.authKey, byt)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Write(out)
}

// handlePut deserializes a JWE request, which should be serviced via the PUT HTTP verb.
func (s *Server) handlePut(r *http.Request) ([]byte, error) {
	if r.Method != http.MethodPut {
		return nil, errors.New("Invalid HTTP Method for Request")
	}

	byt, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("Could not read body: %w", err)
	}

	return api.Decrypt(s.authKey, byt)
}

func (s *Server) handleValidateNonce(r *http.Request, req api.Request) (int, error) {
	byt, err := s.handlePut(r)
	if err != nil {
		return http.StatusBadRequest, fmt.Errorf("Invalid Request: %w", err)
	}

	if err := req.Unmarshal(byt); err != nil {
		return http.StatusBadRequest, fmt.Errorf("Couldn't unmarshal: %w", err)
	}

	if err := s.validateNonce(req.Nonce()); err != nil {
		return http.StatusForbidden, fmt.Errorf("Invalid Request: %w", err)
	}

	return http.StatusOK, nil
}

func (s *Server) handleUptime(w http.ResponseWriter, r *http.Request) {
	var req api.UptimeRequest

	if code, err := s.handleValidateNonce(r, &req); err != nil {
		s.log.WithError(err).WithField("remote", r.RemoteAddr).Warn("rejected uptime request")
		http.Error(w, fmt.Sprintf("Nonce validation failed: %v", err), code)
		return
	}

	resp := s.uptimeResponse()
	if !resp.Available {
		s.log.WithField("remote", r.RemoteAddr).Warn("no strategy could determine uptime for a peer")
	}

	out, err := api.Encrypt(s.authKey, resp)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Write(out)
}
