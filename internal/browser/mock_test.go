package browser

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	gogithub "github.com/google/go-github/v62/github"
	"github.com/stretchr/testify/mock"

	"repo-browser/internal/model"
)

// MockFetcher is a mock of the Fetcher interface.
type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) ListOrganizationRepositories(ctx context.Context, page, pageSize int) (model.Page, error) {
	args := m.Called(ctx, page, pageSize)
	return args.Get(0).(model.Page), args.Error(1)
}
func (m *MockFetcher) ListAllOrganizationRepositories(ctx context.Context) ([]*gogithub.Repository, error) {
	args := m.Called(ctx)
	repos, _ := args.Get(0).([]*gogithub.Repository)
	return repos, args.Error(1)
}
func (m *MockFetcher) GetRepository(ctx context.Context, name string) (*gogithub.Repository, error) {
	args := m.Called(ctx, name)
	repo, _ := args.Get(0).(*gogithub.Repository)
	return repo, args.Error(1)
}
func (m *MockFetcher) GetLanguageBreakdown(ctx context.Context, name string) (map[string]int, error) {
	args := m.Called(ctx, name)
	langs, _ := args.Get(0).(map[string]int)
	return langs, args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func rawRepo(id int, name string) *gogithub.Repository {
	return &gogithub.Repository{
		ID:   gogithub.Int64(int64(id)),
		Name: gogithub.String(name),
	}
}

func rawRepos(from, count int) []*gogithub.Repository {
	out := make([]*gogithub.Repository, count)
	for i := range out {
		out[i] = rawRepo(from+i, fmt.Sprintf("repo-%d", from+i))
	}
	return out
}
