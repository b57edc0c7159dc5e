// internal/github/client_test.go
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	custom_errors "repo-browser/internal/errors"
)

// setupTestClient creates a httptest server and a Client pointing to it.
func setupTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	client, err := NewClient(server.URL, "test-org", "", logger)
	require.NoError(t, err)
	return client
}

func repoPage(t *testing.T, from, count int) []byte {
	t.Helper()
	repos := make([]map[string]any, count)
	for i := range repos {
		n := from + i
		repos[i] = map[string]any{"id": n, "name": fmt.Sprintf("repo-%d", n)}
	}
	b, err := json.Marshal(repos)
	require.NoError(t, err)
	return b
}

func TestClient_ListOrganizationRepositories(t *testing.T) {
	t.Run("sends listing parameters and reports a full page", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/orgs/test-org/repos", r.URL.Path)
			q := r.URL.Query()
			assert.Equal(t, "2", q.Get("page"))
			assert.Equal(t, "3", q.Get("per_page"))
			assert.Equal(t, "updated", q.Get("sort"))
			assert.Equal(t, "desc", q.Get("direction"))
			assert.Equal(t, "application/vnd.github.v3+json", r.Header.Get("Accept"))
			w.Write(repoPage(t, 4, 3))
		})
		client := setupTestClient(t, handler)

		page, err := client.ListOrganizationRepositories(context.Background(), 2, 3)

		require.NoError(t, err)
		assert.True(t, page.HasMore)
		require.Len(t, page.Repositories, 3)
		assert.Equal(t, "repo-4", page.Repositories[0].GetName())
	})

	t.Run("short page has no more", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write(repoPage(t, 1, 2))
		})
		client := setupTestClient(t, handler)

		page, err := client.ListOrganizationRepositories(context.Background(), 1, 30)

		require.NoError(t, err)
		assert.False(t, page.HasMore)
		assert.Len(t, page.Repositories, 2)
	})

	t.Run("rejects invalid arguments without calling the API", func(t *testing.T) {
		var requestCount int32
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&requestCount, 1)
		})
		client := setupTestClient(t, handler)

		_, err := client.ListOrganizationRepositories(context.Background(), 0, 30)
		var pageErr *custom_errors.ErrInvalidPage
		assert.ErrorAs(t, err, &pageErr)

		_, err = client.ListOrganizationRepositories(context.Background(), 1, 101)
		var sizeErr *custom_errors.ErrInvalidPageSize
		assert.ErrorAs(t, err, &sizeErr)

		_, err = client.ListOrganizationRepositories(context.Background(), 1, 0)
		assert.ErrorAs(t, err, &sizeErr)

		assert.Equal(t, int32(0), atomic.LoadInt32(&requestCount))
	})

	t.Run("does not retry on server error", func(t *testing.T) {
		var requestCount int32
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&requestCount, 1)
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprintln(w, `{"message": "Server Error"}`)
		})
		client := setupTestClient(t, handler)

		_, err := client.ListOrganizationRepositories(context.Background(), 1, 30)

		require.Error(t, err)
		var statusErr *custom_errors.HTTPStatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
		assert.Equal(t, "API Error: 500 - Server Error", err.Error())
		assert.Equal(t, int32(1), atomic.LoadInt32(&requestCount))
	})
}

func TestClient_ListAllOrganizationRepositories(t *testing.T) {
	t.Run("accumulates pages until a short page", func(t *testing.T) {
		var mu sync.Mutex
		var requested []int
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			page, err := strconv.Atoi(r.URL.Query().Get("page"))
			require.NoError(t, err)
			assert.Equal(t, "100", r.URL.Query().Get("per_page"))
			mu.Lock()
			requested = append(requested, page)
			mu.Unlock()
			switch page {
			case 1:
				w.Write(repoPage(t, 1, 100))
			case 2:
				w.Write(repoPage(t, 101, 50))
			default:
				t.Errorf("unexpected page %d", page)
				w.Write([]byte(`[]`))
			}
		})
		client := setupTestClient(t, handler)

		repos, err := client.ListAllOrganizationRepositories(context.Background())

		require.NoError(t, err)
		require.Len(t, repos, 150)
		assert.Equal(t, "repo-1", repos[0].GetName())
		assert.Equal(t, "repo-150", repos[149].GetName())
		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, []int{1, 2}, requested)
	})

	t.Run("exactly full last page triggers one empty fetch", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("page") == "1" {
				w.Write(repoPage(t, 1, 100))
				return
			}
			w.Write([]byte(`[]`))
		})
		client := setupTestClient(t, handler)

		repos, err := client.ListAllOrganizationRepositories(context.Background())

		require.NoError(t, err)
		assert.Len(t, repos, 100)
	})

	t.Run("fails the whole listing when a page fails", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("page") == "1" {
				w.Write(repoPage(t, 1, 100))
				return
			}
			w.WriteHeader(http.StatusBadGateway)
		})
		client := setupTestClient(t, handler)

		repos, err := client.ListAllOrganizationRepositories(context.Background())

		assert.Nil(t, repos)
		var statusErr *custom_errors.HTTPStatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
	})
}

func TestClient_GetRepository(t *testing.T) {
	t.Run("fetches by name", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/repos/test-org/repo", r.URL.Path)
			assert.Equal(t, "application/vnd.github.v3+json", r.Header.Get("Accept"))
			fmt.Fprintln(w, `{"id": 1, "name": "repo", "full_name": "test-org/repo"}`)
		})
		client := setupTestClient(t, handler)

		repo, err := client.GetRepository(context.Background(), "repo")

		require.NoError(t, err)
		assert.Equal(t, "repo", repo.GetName())
		assert.Equal(t, "test-org/repo", repo.GetFullName())
	})

	t.Run("missing repository is not found", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprintln(w, `{"message": "Not Found"}`)
		})
		client := setupTestClient(t, handler)

		_, err := client.GetRepository(context.Background(), "Repo")

		assert.ErrorIs(t, err, custom_errors.ErrNotFound)
		assert.Equal(t, "API Error: 404 - Not Found", err.Error())
	})

	t.Run("rate limit is reported as a status error", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-RateLimit-Remaining", "0")
			w.Header().Set("X-RateLimit-Reset", "1700000000")
			w.WriteHeader(http.StatusForbidden)
			fmt.Fprintln(w, `{"message": "API rate limit exceeded"}`)
		})
		client := setupTestClient(t, handler)

		_, err := client.GetRepository(context.Background(), "repo")

		var statusErr *custom_errors.HTTPStatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, http.StatusForbidden, statusErr.StatusCode)
		assert.Equal(t, "API rate limit exceeded", statusErr.Message)
	})

	t.Run("unreachable server is a network error", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		server.Close()
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		client, err := NewClient(server.URL, "test-org", "", logger)
		require.NoError(t, err)

		_, err = client.GetRepository(context.Background(), "repo")

		var netErr *custom_errors.NetworkError
		assert.ErrorAs(t, err, &netErr)
	})

	t.Run("malformed body is unexpected", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"id": `)
		})
		client := setupTestClient(t, handler)

		_, err := client.GetRepository(context.Background(), "repo")

		var unexpectedErr *custom_errors.UnexpectedError
		assert.ErrorAs(t, err, &unexpectedErr)
	})
}

func TestClient_GetLanguageBreakdown(t *testing.T) {
	t.Run("returns bytes per language", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/repos/test-org/repo/languages", r.URL.Path)
			assert.Equal(t, "application/vnd.github.v3+json", r.Header.Get("Accept"))
			fmt.Fprintln(w, `{"JavaScript": 125000, "CSS": 25000}`)
		})
		client := setupTestClient(t, handler)

		langs, err := client.GetLanguageBreakdown(context.Background(), "repo")

		require.NoError(t, err)
		assert.Equal(t, map[string]int{"JavaScript": 125000, "CSS": 25000}, langs)
	})

	t.Run("no detected code is an empty map", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintln(w, `{}`)
		})
		client := setupTestClient(t, handler)

		langs, err := client.GetLanguageBreakdown(context.Background(), "empty")

		require.NoError(t, err)
		assert.NotNil(t, langs)
		assert.Empty(t, langs)
	})
}

func TestNewClient(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	t.Run("adds the trailing slash go-github requires", func(t *testing.T) {
		client, err := NewClient("http://example.test/api", "org", "", logger)
		require.NoError(t, err)
		assert.Equal(t, "http://example.test/api/", client.gh.BaseURL.String())
		assert.Equal(t, "org", client.Org())
	})

	t.Run("rejects an unparsable base url", func(t *testing.T) {
		_, err := NewClient("http://[::1", "org", "", logger)
		var unexpectedErr *custom_errors.UnexpectedError
		assert.ErrorAs(t, err, &unexpectedErr)
	})

	t.Run("sends the token when configured", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
			assert.Equal(t, "application/vnd.github.v3+json", r.Header.Get("Accept"))
			fmt.Fprintln(w, `{"id": 1, "name": "repo"}`)
		})
		server := httptest.NewServer(handler)
		defer server.Close()

		client, err := NewClient(server.URL, "org", "secret", logger)
		require.NoError(t, err)
		_, err = client.GetRepository(context.Background(), "repo")
		require.NoError(t, err)
	})
}
