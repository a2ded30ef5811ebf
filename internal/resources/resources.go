// Package resources keeps local, in-memory mirrors of backend resources.
//
// Every resource follows the same cycle: an operation clears the previous
// error and enters loading; when the backend answers the cache is merged from
// the returned object and the error is cleared, or the error message is stored
// and the cache is left as it was. Concurrent operations are allowed and are
// not ordered: whichever settles last decides the cache and the error.
package resources

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/spigell/talentmatch/internal/backend"
	"github.com/spigell/talentmatch/internal/logger"
)

// ErrInvalidResponse is returned when a success payload lacks the expected object.
var ErrInvalidResponse = errors.New("invalid server response")

// state holds the loading flag and the last error of a resource.
type state struct {
	mu       sync.Mutex
	inflight int
	err      string
}

// Loading reports whether any operation of the resource is still waiting on the backend.
func (s *state) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inflight > 0
}

// LastError returns the message of the last failed operation, empty after a success.
func (s *state) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *state) begin() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight++
	s.err = ""
}

// settle leaves loading, runs merge under the lock and records err.
func (s *state) settle(err error, merge func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inflight > 0 {
		s.inflight--
	}

	if merge != nil {
		merge()
	}

	s.err = ""
	if err != nil {
		s.err = err.Error()
	}

	return err
}

// caller carries what every resource needs to reach the backend. The token is
// captured by value when the resource is built.
type caller struct {
	client *backend.Client
	token  string
	logger *zap.Logger
}

func newCaller(client *backend.Client, token string, log *zap.Logger, resource string) caller {
	return caller{
		client: client,
		token:  token,
		logger: logger.WithFields(log, zap.String("resource", resource)),
	}
}

func (c caller) options() backend.Options {
	return backend.Options{Token: c.token}
}

// check turns HTTP failures into errors. The response is kept whenever the
// backend answered.
func (c caller) check(resp *backend.Response, err error) (*backend.Response, error) {
	if err != nil {
		c.logger.Debug("backend call failed", zap.Error(err))
		return nil, err
	}

	if err := resp.Err(); err != nil {
		c.logger.Debug("backend rejected call", zap.Int("status", resp.Status), zap.Error(err))
		return resp, err
	}

	return resp, nil
}

// decodeField decodes a required object from a success payload.
func decodeField(resp *backend.Response, key string, target any) error {
	found, err := resp.DecodeField(key, target)
	if err != nil {
		return invalid(err)
	}

	if !found {
		return ErrInvalidResponse
	}

	return nil
}

func invalid(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidResponse, err)
}
