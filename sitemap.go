package kndweb

import (
	"encoding/xml"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/kindanddivine/kndweb/api"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

var staticPages = []struct {
	path, freq, priority string
}{
	{"", "daily", "1.0"},
	{"about", "monthly", "0.8"},
	{"news", "daily", "0.9"},
	{"solution", "weekly", "0.9"},
	{"contact", "monthly", "0.7"},
}

func lastMod(created, updated time.Time) string {
	t := updated
	if t.IsZero() {
		t = created
	}
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02")
}

func (a *App) buildSitemap(blogs []api.Blog, solutions []api.Solution) sitemapURLSet {
	base := a.Config.URL
	urls := make([]sitemapURL, 0, len(staticPages)+len(blogs)+len(solutions))
	for _, p := range staticPages {
		loc := BuildURL(base)
		if p.path != "" {
			loc = BuildURL(base, p.path)
		}
		urls = append(urls, sitemapURL{Loc: loc, ChangeFreq: p.freq, Priority: p.priority})
	}
	for _, b := range blogs {
		urls = append(urls, sitemapURL{
			Loc:        BuildURL(base, "blog", b.Ref()),
			LastMod:    lastMod(b.CreatedAt, b.UpdatedAt),
			ChangeFreq: "weekly",
			Priority:   "0.7",
		})
	}
	for _, s := range solutions {
		urls = append(urls, sitemapURL{
			Loc:        BuildURL(base, "solution", s.Ref()),
			LastMod:    lastMod(s.CreatedAt, s.UpdatedAt),
			ChangeFreq: "weekly",
			Priority:   "0.8",
		})
	}
	return sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
}

// handleSitemap lists the static pages plus every post and solution. A
// backend failure drops the dynamic entries rather than the sitemap.
func (a *App) handleSitemap(c echo.Context) error {
	ctx := c.Request().Context()
	blogs, err := a.Cache.Blogs(ctx)
	if err != nil {
		a.Logger.Warn("sitemap blogs", zap.Error(err))
	}
	solutions, err := a.Cache.Solutions(ctx)
	if err != nil {
		a.Logger.Warn("sitemap solutions", zap.Error(err))
	}
	return writeXML(c, "application/xml; charset=utf-8", a.buildSitemap(blogs, solutions))
}

func writeXML(c echo.Context, contentType string, v any) error {
	c.Response().Header().Set(echo.HeaderContentType, contentType)
	c.Response().WriteHeader(http.StatusOK)
	if _, err := c.Response().Write([]byte(xml.Header)); err != nil {
		return err
	}
	return xml.NewEncoder(c.Response()).Encode(v)
}
