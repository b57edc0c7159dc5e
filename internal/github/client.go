// internal/github/client.go
package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"

	custom_errors "repo-browser/internal/errors"
	"repo-browser/internal/model"
)

const (
	requestTimeout = 10 * time.Second

	// mediaType is sent as Accept on every request. go-github swaps in preview
	// media types for some endpoints, so it is pinned at the transport.
	mediaType = "application/vnd.github.v3+json"

	// MaxPageSize is the largest per_page value the API accepts.
	MaxPageSize = 100

	listSort      = "updated"
	listDirection = "desc"
)

// Client is a wrapper around the go-github client bound to a single organization.
type Client struct {
	gh     *github.Client
	org    string
	logger *slog.Logger
}

// NewClient creates and configures a new Client instance.
// An empty baseURL keeps the public API endpoint. When token is non-empty it is
// sent as a static bearer token, which only raises the upstream rate limit.
func NewClient(baseURL, org, token string, logger *slog.Logger) (*Client, error) {
	httpClient := &http.Client{Timeout: requestTimeout}
	if token != "" {
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: token},
		)
		httpClient = oauth2.NewClient(context.Background(), ts)
		httpClient.Timeout = requestTimeout
	}
	httpClient.Transport = &acceptTransport{base: httpClient.Transport}

	gh := github.NewClient(httpClient)
	if baseURL != "" {
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, &custom_errors.UnexpectedError{Err: fmt.Errorf("parse api base url: %w", err)}
		}
		gh.BaseURL = u
	}

	return &Client{
		gh:     gh,
		org:    org,
		logger: logger,
	}, nil
}

// acceptTransport overrides the Accept header before delegating to base.
type acceptTransport struct {
	base http.RoundTripper
}

func (t *acceptTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	r := req.Clone(req.Context())
	r.Header.Set("Accept", mediaType)
	return base.RoundTrip(r)
}

// Org returns the organization the client lists.
func (c *Client) Org() string {
	return c.org
}

// ListOrganizationRepositories fetches one page of the organization's repositories,
// most recently updated first. HasMore is set when the page came back full.
func (c *Client) ListOrganizationRepositories(ctx context.Context, page, pageSize int) (model.Page, error) {
	if page < 1 {
		return model.Page{}, &custom_errors.ErrInvalidPage{Page: page}
	}
	if pageSize < 1 || pageSize > MaxPageSize {
		return model.Page{}, &custom_errors.ErrInvalidPageSize{PageSize: pageSize}
	}

	opts := &github.RepositoryListByOrgOptions{
		Sort:      listSort,
		Direction: listDirection,
		ListOptions: github.ListOptions{
			Page:    page,
			PerPage: pageSize,
		},
	}

	c.logger.Debug("Fetching repositories page", "org", c.org, "page", page, "per_page", pageSize)
	repos, _, err := c.gh.Repositories.ListByOrg(ctx, c.org, opts)
	if err != nil {
		return model.Page{}, classify(err)
	}

	return model.Page{
		Repositories: repos,
		HasMore:      len(repos) == pageSize,
	}, nil
}

// ListAllOrganizationRepositories walks every page in order until a short page
// comes back and returns the concatenated result. Pages are requested one at a time.
func (c *Client) ListAllOrganizationRepositories(ctx context.Context) ([]*github.Repository, error) {
	var all []*github.Repository
	for page := 1; ; page++ {
		p, err := c.ListOrganizationRepositories(ctx, page, MaxPageSize)
		if err != nil {
			return nil, err
		}
		all = append(all, p.Repositories...)
		if !p.HasMore {
			break
		}
	}
	c.logger.Debug("Fetched all repositories", "org", c.org, "count", len(all))
	return all, nil
}

// GetRepository fetches a single repository by its exact name.
// A missing repository yields an error matching custom_errors.ErrNotFound.
func (c *Client) GetRepository(ctx context.Context, name string) (*github.Repository, error) {
	repo, _, err := c.gh.Repositories.Get(ctx, c.org, url.PathEscape(name))
	if err != nil {
		return nil, classify(err)
	}
	return repo, nil
}

// GetLanguageBreakdown returns bytes of code per language. A repository with no
// detected code yields an empty, non-nil map.
func (c *Client) GetLanguageBreakdown(ctx context.Context, name string) (map[string]int, error) {
	langs, _, err := c.gh.Repositories.ListLanguages(ctx, c.org, url.PathEscape(name))
	if err != nil {
		return nil, classify(err)
	}
	if langs == nil {
		langs = map[string]int{}
	}
	return langs, nil
}

// classify maps go-github and transport failures onto the error taxonomy.
func classify(err error) error {
	var rateErr *github.RateLimitError
	var abuseErr *github.AbuseRateLimitError
	var respErr *github.ErrorResponse
	var urlErr *url.Error
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError

	switch {
	case errors.As(err, &rateErr):
		return &custom_errors.HTTPStatusError{StatusCode: statusOf(rateErr.Response), Message: rateErr.Message}
	case errors.As(err, &abuseErr):
		return &custom_errors.HTTPStatusError{StatusCode: statusOf(abuseErr.Response), Message: abuseErr.Message}
	case errors.As(err, &respErr):
		return &custom_errors.HTTPStatusError{StatusCode: statusOf(respErr.Response), Message: respErr.Message}
	case errors.As(err, &urlErr),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return &custom_errors.NetworkError{Err: err}
	case errors.As(err, &syntaxErr), errors.As(err, &typeErr):
		return &custom_errors.UnexpectedError{Err: fmt.Errorf("decode response: %w", err)}
	default:
		return &custom_errors.UnexpectedError{Err: err}
	}
}

func statusOf(resp *http.Response) int {
	if resp == nil {
		return 0
	}
	return resp.StatusCode
}
