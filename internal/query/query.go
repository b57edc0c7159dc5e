// Package query derives the visible repository list from the loaded
// collection and the user's search, language filter and sort choice.
package query

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"repo-browser/internal/model"
)

// SortKey selects the ordering of a derived view.
type SortKey string

const (
	SortByName    SortKey = "name"
	SortByStars   SortKey = "stars"
	SortByForks   SortKey = "forks"
	SortByUpdated SortKey = "updated"
	SortByCreated SortKey = "created"
)

// DefaultSort is the ordering used when none was requested.
const DefaultSort = SortByUpdated

// ParseSortKey maps a wire value onto a SortKey. The empty string yields
// DefaultSort. Keys are case-sensitive; unknown values are kept as-is and
// leave the input order untouched.
func ParseSortKey(s string) SortKey {
	if s == "" {
		return DefaultSort
	}
	return SortKey(s)
}

// Known reports whether k has a defined ordering.
func (k SortKey) Known() bool {
	switch k {
	case SortByName, SortByStars, SortByForks, SortByUpdated, SortByCreated:
		return true
	}
	return false
}

// Query is the user-driven part of the list view.
type Query struct {
	SearchTerm     string
	SortBy         SortKey
	FilterLanguage string
}

// Derive filters and sorts repos according to q. The input slice is never
// modified and equal inputs always produce the same order.
func Derive(repos []model.Repository, q Query) []model.Repository {
	term := strings.ToLower(q.SearchTerm)

	out := make([]model.Repository, 0, len(repos))
	for _, r := range repos {
		if term != "" && !matchesTerm(r, term) {
			continue
		}
		if q.FilterLanguage != "" && (r.Language == nil || *r.Language != q.FilterLanguage) {
			continue
		}
		out = append(out, r)
	}

	if less := lessFunc(q.SortBy); less != nil {
		sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	}
	return out
}

func matchesTerm(r model.Repository, term string) bool {
	if strings.Contains(strings.ToLower(r.Name), term) {
		return true
	}
	return r.Description != nil && strings.Contains(strings.ToLower(*r.Description), term)
}

func lessFunc(key SortKey) func(a, b model.Repository) bool {
	switch key {
	case SortByName:
		// A Collator keeps internal buffers, so each derivation gets its own.
		c := collate.New(language.English)
		return func(a, b model.Repository) bool { return c.CompareString(a.Name, b.Name) < 0 }
	case SortByStars:
		return func(a, b model.Repository) bool { return a.StargazersCount > b.StargazersCount }
	case SortByForks:
		return func(a, b model.Repository) bool { return a.ForksCount > b.ForksCount }
	case SortByUpdated:
		return func(a, b model.Repository) bool { return a.UpdatedAt.After(b.UpdatedAt) }
	case SortByCreated:
		return func(a, b model.Repository) bool { return a.CreatedAt.After(b.CreatedAt) }
	default:
		return nil
	}
}

// AvailableLanguages lists the distinct primary languages present in repos,
// ascending. Repositories without a language are skipped.
func AvailableLanguages(repos []model.Repository) []string {
	seen := make(map[string]struct{})
	langs := make([]string, 0)
	for _, r := range repos {
		if r.Language == nil {
			continue
		}
		if _, ok := seen[*r.Language]; ok {
			continue
		}
		seen[*r.Language] = struct{}{}
		langs = append(langs, *r.Language)
	}
	sort.Strings(langs)
	return langs
}

// LanguageStats turns a byte breakdown into percentage rows ordered by
// descending size. Percentages are rounded half up to one decimal place.
func LanguageStats(breakdown map[string]int) []model.LanguageStat {
	total := 0
	for _, b := range breakdown {
		total += b
	}
	stats := make([]model.LanguageStat, 0, len(breakdown))
	if total <= 0 {
		return stats
	}

	for lang, b := range breakdown {
		pct := math.Round(float64(b)/float64(total)*1000) / 10
		stats = append(stats, model.LanguageStat{
			Language:   lang,
			Bytes:      b,
			Percentage: strconv.FormatFloat(pct, 'f', 1, 64),
		})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Bytes != stats[j].Bytes {
			return stats[i].Bytes > stats[j].Bytes
		}
		return stats[i].Language < stats[j].Language
	})
	return stats
}
