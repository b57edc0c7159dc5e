package github

import (
	"time"

	"github.com/google/go-github/v62/github"

	"repo-browser/internal/model"
)

// TransformRepository translates a github.Repository into the display model.
// Absent topics become an empty slice; an absent license or push time becomes nil.
func TransformRepository(r *github.Repository) model.Repository {
	if r == nil {
		r = &github.Repository{}
	}

	topics := r.Topics
	if topics == nil {
		topics = []string{}
	} else {
		topics = append([]string(nil), topics...)
	}

	var license *string
	if l := r.GetLicense(); l != nil && l.Name != nil {
		license = cloneString(l.Name)
	}

	var pushedAt *time.Time
	if r.PushedAt != nil {
		t := r.PushedAt.Time
		pushedAt = &t
	}

	return model.Repository{
		ID:              r.GetID(),
		Name:            r.GetName(),
		FullName:        r.GetFullName(),
		Description:     cloneString(r.Description),
		HTMLURL:         r.GetHTMLURL(),
		Language:        cloneString(r.Language),
		ForksCount:      r.GetForksCount(),
		OpenIssuesCount: r.GetOpenIssuesCount(),
		WatchersCount:   r.GetWatchersCount(),
		StargazersCount: r.GetStargazersCount(),
		CreatedAt:       r.GetCreatedAt().Time,
		UpdatedAt:       r.GetUpdatedAt().Time,
		PushedAt:        pushedAt,
		Size:            r.GetSize(),
		DefaultBranch:   r.GetDefaultBranch(),
		IsPrivate:       r.GetPrivate(),
		IsArchived:      r.GetArchived(),
		IsDisabled:      r.GetDisabled(),
		Topics:          topics,
		License:         license,
	}
}

// TransformRepositories applies TransformRepository to every element, keeping order.
func TransformRepositories(repos []*github.Repository) []model.Repository {
	out := make([]model.Repository, 0, len(repos))
	for _, r := range repos {
		out = append(out, TransformRepository(r))
	}
	return out
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
