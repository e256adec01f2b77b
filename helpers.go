package kndweb

import (
	"net/url"
	"path"
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/kindanddivine/kndweb/api"
)

// Slugify converts a title to a URL-safe slug.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	prev := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prev = false
		default:
			if !prev && b.Len() > 0 {
				b.WriteByte('-')
				prev = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// BuildURL joins a base URL with path segments, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

type searchSource []string

func (s searchSource) String(i int) string { return s[i] }
func (s searchSource) Len() int            { return len(s) }

// Search returns the items whose text fuzzily matches query, in their
// original order. An empty query returns items unchanged.
func Search[T any](items []T, query string, text func(T) string) []T {
	query = strings.TrimSpace(query)
	if query == "" {
		return items
	}
	src := make(searchSource, len(items))
	for i, it := range items {
		src[i] = text(it)
	}
	matches := fuzzy.FindFrom(query, src)
	idx := make([]int, len(matches))
	for i, m := range matches {
		idx[i] = m.Index
	}
	sort.Ints(idx)
	out := make([]T, len(idx))
	for i, j := range idx {
		out[i] = items[j]
	}
	return out
}

func blogText(b api.Blog) string {
	return b.Title + " " + b.Path + " " + b.Summary
}

func solutionText(s api.Solution) string {
	return s.Title + " " + s.Path + " " + s.Description
}

func contactText(c api.Contact) string {
	return c.Name + " " + c.Email + " " + c.Subject + " " + c.Message
}

// findByID returns a pointer to a copy of the item with the given id.
func findByID[T any](items []T, id int, idOf func(T) int) *T {
	for _, it := range items {
		if idOf(it) == id {
			found := it
			return &found
		}
	}
	return nil
}
