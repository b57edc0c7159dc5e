// Package browser composes the API client, the cache and the query engine
// into the list and detail flows the HTTP layer serves.
package browser

import (
	"context"
	"log/slog"

	gogithub "github.com/google/go-github/v62/github"
	"golang.org/x/sync/errgroup"

	"repo-browser/internal/github"
	"repo-browser/internal/model"
	"repo-browser/internal/query"
)

// Fetcher is the upstream API surface the browser needs. *github.Client implements it.
type Fetcher interface {
	ListOrganizationRepositories(ctx context.Context, page, pageSize int) (model.Page, error)
	ListAllOrganizationRepositories(ctx context.Context) ([]*gogithub.Repository, error)
	GetRepository(ctx context.Context, name string) (*gogithub.Repository, error)
	GetLanguageBreakdown(ctx context.Context, name string) (map[string]int, error)
}

// Detail is everything the detail view shows for one repository.
type Detail struct {
	Repository    model.Repository     `json:"repository"`
	Languages     map[string]int       `json:"languages"`
	LanguageStats []model.LanguageStat `json:"languageStats"`
}

// Service runs the fetch-and-transform steps shared by the sessions.
type Service struct {
	fetcher Fetcher
	logger  *slog.Logger
}

// NewService creates a Service reading from fetcher.
func NewService(fetcher Fetcher, logger *slog.Logger) *Service {
	return &Service{fetcher: fetcher, logger: logger}
}

// FetchDetail loads a repository and its language breakdown concurrently.
// If either request fails the whole detail fails and the other result is dropped.
func (s *Service) FetchDetail(ctx context.Context, name string) (Detail, error) {
	var (
		raw   *gogithub.Repository
		langs map[string]int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := s.fetcher.GetRepository(gctx, name)
		if err != nil {
			return err
		}
		raw = r
		return nil
	})
	g.Go(func() error {
		l, err := s.fetcher.GetLanguageBreakdown(gctx, name)
		if err != nil {
			return err
		}
		langs = l
		return nil
	})
	if err := g.Wait(); err != nil {
		s.logger.Debug("Repository detail fetch failed", "repo", name, "error", err)
		return Detail{}, err
	}

	if langs == nil {
		langs = map[string]int{}
	}
	return Detail{
		Repository:    github.TransformRepository(raw),
		Languages:     langs,
		LanguageStats: query.LanguageStats(langs),
	}, nil
}

// fetchPage loads one listing page in display form.
func (s *Service) fetchPage(ctx context.Context, page, pageSize int) ([]model.Repository, bool, error) {
	p, err := s.fetcher.ListOrganizationRepositories(ctx, page, pageSize)
	if err != nil {
		return nil, false, err
	}
	return github.TransformRepositories(p.Repositories), p.HasMore, nil
}

// fetchAll loads the complete listing in display form.
func (s *Service) fetchAll(ctx context.Context) ([]model.Repository, error) {
	raws, err := s.fetcher.ListAllOrganizationRepositories(ctx)
	if err != nil {
		return nil, err
	}
	return github.TransformRepositories(raws), nil
}
