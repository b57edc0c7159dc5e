// internal/model/models.go
package model

import (
	"time"

	"github.com/google/go-github/v62/github"
)

// Repository is the display shape of an organization repository.
type Repository struct {
	ID              int64      `json:"id"`
	Name            string     `json:"name"`
	FullName        string     `json:"fullName"`
	Description     *string    `json:"description"`
	HTMLURL         string     `json:"htmlUrl"`
	Language        *string    `json:"language"`
	ForksCount      int        `json:"forksCount"`
	OpenIssuesCount int        `json:"openIssuesCount"`
	WatchersCount   int        `json:"watchersCount"`
	StargazersCount int        `json:"stargazersCount"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
	PushedAt        *time.Time `json:"pushedAt"` // nil for repositories never pushed to
	Size            int        `json:"size"`     // kilobytes
	DefaultBranch   string     `json:"defaultBranch"`
	IsPrivate       bool       `json:"isPrivate"`
	IsArchived      bool       `json:"isArchived"`
	IsDisabled      bool       `json:"isDisabled"`
	Topics          []string   `json:"topics"`
	License         *string    `json:"license"`
}

// LanguageStat is one row of a repository's language composition.
type LanguageStat struct {
	Language   string `json:"language"`
	Bytes      int    `json:"bytes"`
	Percentage string `json:"percentage"`
}

// Page is one page of the organization listing, still in wire form.
type Page struct {
	Repositories []*github.Repository
	HasMore      bool
}
