package browser

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"repo-browser/internal/cache"
	custom_errors "repo-browser/internal/errors"
	"repo-browser/internal/model"
	"repo-browser/internal/query"
)

// Status is the loading state of a session.
type Status string

const (
	StatusIdle        Status = "idle"
	StatusLoading     Status = "loading"
	StatusReady       Status = "ready"
	StatusLoadingMore Status = "loading_more"
	StatusFailed      Status = "failed"
)

// ListMode selects how the listing is fetched.
type ListMode string

const (
	// ListModePaged fetches one page at a time and supports LoadMore.
	ListModePaged ListMode = "paged"
	// ListModeAll fetches every page up front.
	ListModeAll ListMode = "all"
)

// ParseListMode validates a configured list mode.
func ParseListMode(s string) (ListMode, error) {
	switch m := ListMode(s); m {
	case ListModePaged, ListModeAll:
		return m, nil
	default:
		return "", fmt.Errorf("unknown list mode %q, expected %q or %q", s, ListModePaged, ListModeAll)
	}
}

// ListOptions configures a ListSession.
type ListOptions struct {
	Mode     ListMode
	PageSize int
}

// ListState describes where the listing flow currently is.
type ListState struct {
	Status    Status `json:"status"`
	HasMore   bool   `json:"hasMore"`
	Page      int    `json:"page"`
	FromCache bool   `json:"fromCache"`
	Error     string `json:"error,omitempty"`
}

// View is the derived list the presentation layer renders.
type View struct {
	ListState
	SortBy             query.SortKey      `json:"sortBy"`
	Repositories       []model.Repository `json:"repositories"`
	AvailableLanguages []string           `json:"availableLanguages"`
	FilteredCount      int                `json:"filteredCount"`
	Total              int                `json:"total"`
}

// ListSession owns the loaded listing and its state machine:
// idle -> loading -> ready|failed, ready -> loading_more -> ready|failed,
// and any state -> loading on refetch. Each load is tagged with a generation;
// results of a superseded load are dropped.
type ListSession struct {
	svc      *Service
	cache    *cache.Cache
	mode     ListMode
	pageSize int
	logger   *slog.Logger

	mu    sync.Mutex
	gen   uint64
	state ListState
	repos []model.Repository
}

// NewListSession creates an idle session. c may be nil to disable caching.
func NewListSession(svc *Service, c *cache.Cache, opts ListOptions, logger *slog.Logger) *ListSession {
	if opts.Mode == "" {
		opts.Mode = ListModePaged
	}
	return &ListSession{
		svc:      svc,
		cache:    c,
		mode:     opts.Mode,
		pageSize: opts.PageSize,
		logger:   logger.With("list_mode", string(opts.Mode)),
		state:    ListState{Status: StatusIdle},
		repos:    []model.Repository{},
	}
}

// Load enters the loading state and fetches the first page, or the whole
// listing in ListModeAll. Unless force is set a fresh cache entry is used instead.
func (s *ListSession) Load(ctx context.Context, force bool) error {
	s.mu.Lock()
	gen := s.begin()
	s.mu.Unlock()
	return s.load(ctx, gen, force)
}

// EnsureLoaded starts a non-forced Load only when the session is still idle.
func (s *ListSession) EnsureLoaded(ctx context.Context) error {
	s.mu.Lock()
	if s.state.Status != StatusIdle {
		s.mu.Unlock()
		return nil
	}
	gen := s.begin()
	s.mu.Unlock()
	return s.load(ctx, gen, false)
}

// begin must be called with mu held.
func (s *ListSession) begin() uint64 {
	s.gen++
	s.state.Status = StatusLoading
	s.state.Error = ""
	return s.gen
}

func (s *ListSession) load(ctx context.Context, gen uint64, force bool) error {
	if !force && s.cache != nil {
		if entry, ok := s.cache.Get(ctx); ok {
			s.logger.Debug("Serving listing from cache", "count", len(entry.Data))
			s.apply(gen, func() {
				s.repos = entry.Data
				s.state = ListState{
					Status:    StatusReady,
					HasMore:   entry.HasMore,
					Page:      pagesIn(len(entry.Data), s.pageSize),
					FromCache: true,
				}
			})
			return nil
		}
	}

	var (
		repos   []model.Repository
		hasMore bool
		err     error
	)
	if s.mode == ListModeAll {
		repos, err = s.svc.fetchAll(ctx)
	} else {
		repos, hasMore, err = s.svc.fetchPage(ctx, 1, s.pageSize)
	}
	if err != nil {
		s.logger.Error("Failed to load repositories", "error", err)
		s.apply(gen, func() {
			s.state.Status = StatusFailed
			s.state.Error = custom_errors.Message(err)
		})
		return err
	}

	s.apply(gen, func() {
		s.repos = repos
		s.state = ListState{Status: StatusReady, HasMore: hasMore, Page: 1}
		s.writeCache(ctx, repos, hasMore)
	})
	s.logger.Info("Loaded repositories", "count", len(repos), "has_more", hasMore)
	return nil
}

// LoadMore fetches the next page and appends it. It does nothing unless the
// session is ready and the last page came back full.
func (s *ListSession) LoadMore(ctx context.Context) error {
	s.mu.Lock()
	if s.state.Status != StatusReady || !s.state.HasMore {
		s.mu.Unlock()
		return nil
	}
	gen := s.gen
	next := s.state.Page + 1
	s.state.Status = StatusLoadingMore
	s.state.Error = ""
	s.mu.Unlock()

	more, hasMore, err := s.svc.fetchPage(ctx, next, s.pageSize)
	if err != nil {
		s.logger.Error("Failed to load more repositories", "page", next, "error", err)
		s.apply(gen, func() {
			s.state.Status = StatusFailed
			s.state.Error = custom_errors.Message(err)
		})
		return err
	}

	s.apply(gen, func() {
		all := make([]model.Repository, 0, len(s.repos)+len(more))
		all = append(append(all, s.repos...), more...)
		s.repos = all
		s.state = ListState{Status: StatusReady, HasMore: hasMore, Page: next}
		s.writeCache(ctx, all, hasMore)
	})
	return nil
}

// State returns the current state.
func (s *ListSession) State() ListState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// View derives the visible list for q from the loaded repositories.
func (s *ListSession) View(q query.Query) View {
	s.mu.Lock()
	st, repos := s.state, s.repos
	s.mu.Unlock()

	derived := query.Derive(repos, q)
	return View{
		ListState:          st,
		SortBy:             q.SortBy,
		Repositories:       derived,
		AvailableLanguages: query.AvailableLanguages(repos),
		FilteredCount:      len(derived),
		Total:              len(repos),
	}
}

// writeCache must be called with mu held by the current load, so a newer load
// cannot read the slot before a superseded result overwrites it.
func (s *ListSession) writeCache(ctx context.Context, repos []model.Repository, hasMore bool) {
	if s.cache != nil {
		s.cache.Put(ctx, repos, hasMore)
	}
}

// apply runs fn under the lock if gen is still the latest load.
func (s *ListSession) apply(gen uint64, fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		s.logger.Debug("Discarding stale listing result", "generation", gen, "current", s.gen)
		return false
	}
	fn()
	return true
}

// pagesIn reports how many pages of size pageSize n items span, at least one.
func pagesIn(n, pageSize int) int {
	if pageSize <= 0 || n <= pageSize {
		return 1
	}
	return (n + pageSize - 1) / pageSize
}
