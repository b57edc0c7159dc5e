package browser

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	custom_errors "repo-browser/internal/errors"
)

// ErrEmptyName is returned when a detail is requested without a repository name.
var ErrEmptyName = errors.New("repository name is required")

// DetailState is the detail view of the most recently selected repository.
type DetailState struct {
	Name   string  `json:"name"`
	Status Status  `json:"status"`
	Detail *Detail `json:"detail,omitempty"`
	Error  string  `json:"error,omitempty"`
}

// DetailSession tracks the currently selected repository. A selection that
// is superseded before its fetch resolves never reaches the session state.
type DetailSession struct {
	svc    *Service
	logger *slog.Logger

	mu    sync.Mutex
	gen   uint64
	state DetailState
}

// NewDetailSession creates an idle detail session.
func NewDetailSession(svc *Service, logger *slog.Logger) *DetailSession {
	return &DetailSession{
		svc:    svc,
		logger: logger,
		state:  DetailState{Status: StatusIdle},
	}
}

// Select makes name the current repository and fetches its detail. The fetched
// detail is always returned to the caller, but only recorded as the session
// state when no newer Select started meanwhile.
func (s *DetailSession) Select(ctx context.Context, name string) (Detail, error) {
	if name == "" {
		return Detail{}, ErrEmptyName
	}

	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.state = DetailState{Name: name, Status: StatusLoading}
	s.mu.Unlock()

	d, err := s.svc.FetchDetail(ctx, name)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		s.logger.Debug("Discarding stale repository detail", "repo", name, "current", s.state.Name)
		return d, err
	}
	if err != nil {
		s.state = DetailState{Name: name, Status: StatusFailed, Error: custom_errors.Message(err)}
		return d, err
	}
	s.state = DetailState{Name: name, Status: StatusReady, Detail: &d}
	return d, nil
}

// State returns the current detail state.
func (s *DetailSession) State() DetailState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}
