package kndweb

import (
	"encoding/xml"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kindanddivine/kndweb/api"
	"github.com/kindanddivine/kndweb/views"
)

const feedSize = 20

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Language    string    `xml:"language,omitempty"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate,omitempty"`
	GUID        string `xml:"guid"`
}

func (a *App) buildFeed(blogs []api.Blog) rssXML {
	base := a.Config.URL
	if len(blogs) > feedSize {
		blogs = blogs[:feedSize]
	}
	items := make([]rssItem, 0, len(blogs))
	for _, b := range blogs {
		pubDate := ""
		if !b.CreatedAt.IsZero() {
			pubDate = b.CreatedAt.Format(time.RFC1123Z)
		}
		postURL := BuildURL(base, "blog", b.Ref())
		items = append(items, rssItem{
			Title:       b.Title,
			Link:        postURL,
			Description: views.BlogDescription(b),
			PubDate:     pubDate,
			GUID:        postURL,
		})
	}
	return rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       a.Config.Name,
			Link:        BuildURL(base),
			Description: a.Config.Description,
			Language:    "en",
			Items:       items,
		},
	}
}

func (a *App) handleFeed(c echo.Context) error {
	blogs, err := a.Cache.Blogs(c.Request().Context())
	if err != nil {
		return err
	}
	return writeXML(c, "application/rss+xml; charset=utf-8", a.buildFeed(blogs))
}
