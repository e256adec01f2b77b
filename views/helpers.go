package views

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/a-h/templ"
	g "maragu.dev/gomponents"

	"github.com/kindanddivine/kndweb/api"
	"github.com/kindanddivine/kndweb/markdown"
)

// component adapts a gomponents node to the templ.Component contract the
// server renders.
func component(n g.Node) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return n.Render(w)
	})
}

// buildURL joins path segments onto a base URL, ensuring a trailing slash.
func buildURL(base string, pathSegments ...string) string {
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

// BlogURL is the canonical site path for a blog post.
func BlogURL(b api.Blog) string {
	return "/blog/" + url.PathEscape(b.Ref()) + "/"
}

// SolutionURL is the canonical site path for a solution.
func SolutionURL(s api.Solution) string {
	return "/solution/" + url.PathEscape(s.Ref()) + "/"
}

// FormatDate renders t as "Jan 2, 2006", or "" for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("Jan 2, 2006")
}

func formatSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	}
	return fmt.Sprintf("%d B", n)
}

// BlogDescription is the meta description for a post: the meta field,
// the summary, or the content excerpt, truncated to 160 characters.
func BlogDescription(b api.Blog) string {
	switch {
	case strings.TrimSpace(b.MetaDescription) != "":
		return markdown.Truncate(strings.TrimSpace(b.MetaDescription), 160)
	case strings.TrimSpace(b.Summary) != "":
		return markdown.Truncate(strings.TrimSpace(b.Summary), 160)
	}
	return markdown.Excerpt(b.Content, 160)
}

// BlogTitle is the meta title for a post.
func BlogTitle(b api.Blog) string {
	if t := strings.TrimSpace(b.MetaTitle); t != "" {
		return t
	}
	return b.Title
}

func websiteJsonLD(site Site) string {
	data := map[string]any{
		"@context": "https://schema.org",
		"@type":    "Organization",
		"name":     site.Name,
		"url":      buildURL(site.URL),
	}
	if site.Description != "" {
		data["description"] = site.Description
	}
	if site.Email != "" {
		data["email"] = site.Email
	}
	if site.Phone != "" {
		data["telephone"] = site.Phone
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

func blogPostingJsonLD(post api.Blog, site Site) string {
	postURL := buildURL(site.URL, "blog", post.Ref())
	data := map[string]any{
		"@context":    "https://schema.org",
		"@type":       "BlogPosting",
		"headline":    post.Title,
		"description": BlogDescription(post),
		"url":         postURL,
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   postURL,
		},
		"publisher": map[string]string{
			"@type": "Organization",
			"name":  site.Name,
		},
	}
	if !post.CreatedAt.IsZero() {
		data["datePublished"] = post.CreatedAt.Format(time.RFC3339)
	}
	if !post.UpdatedAt.IsZero() {
		data["dateModified"] = post.UpdatedAt.Format(time.RFC3339)
	}
	if post.MetaKeywords != "" {
		data["keywords"] = post.MetaKeywords
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}
