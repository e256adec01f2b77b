package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// ContentRef returns the link segment for a blog or solution: the custom
// path when set, otherwise the numeric id.
func ContentRef(path string, id int) string {
	if p := strings.TrimSpace(path); p != "" {
		return p
	}
	return strconv.Itoa(id)
}

// Carousels fetches the carousel records for one position ("top" or
// "bottom"), ordered by sort_order.
func (c *Client) Carousels(ctx context.Context, position string) ([]Carousel, error) {
	return c.CarouselItems().List(ctx, url.Values{"position": {position}})
}

// Categories fetches the news categories.
func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	var cats []Category
	if err := c.doJSON(ctx, http.MethodGet, "/api/categories", Credentials{}, nil, &cats); err != nil {
		return nil, err
	}
	return cats, nil
}

// SubmitContact posts a public contact form message.
func (c *Client) SubmitContact(ctx context.Context, req ContactRequest) error {
	return c.doJSON(ctx, http.MethodPost, "/api/contact", Credentials{}, req, nil)
}

// BlogByRef resolves a blog by custom path, falling back to numeric id.
func (c *Client) BlogByRef(ctx context.Context, ref string) (Blog, error) {
	return byPathOrID(ctx, c.Blogs(), ref)
}

// SolutionByRef resolves a solution by custom path, falling back to numeric id.
func (c *Client) SolutionByRef(ctx context.Context, ref string) (Solution, error) {
	return byPathOrID(ctx, c.Solutions(), ref)
}

// byPathOrID tries /by-path/<ref> first. Only a 404 with a numeric ref
// falls through to the id lookup; other errors are returned as-is.
func byPathOrID[T any](ctx context.Context, r *Resource[T], ref string) (T, error) {
	var item T
	ref = strings.Trim(ref, "/")
	if ref == "" {
		return item, &APIError{Status: http.StatusNotFound, Message: "empty reference"}
	}
	path := r.publicPath() + "/by-path/" + url.PathEscape(ref)
	err := r.client.doJSON(ctx, http.MethodGet, path, Credentials{}, nil, &item)
	if err == nil || !IsNotFound(err) {
		return item, err
	}
	id, convErr := strconv.Atoi(ref)
	if convErr != nil || id <= 0 {
		return item, err
	}
	return r.Get(ctx, id)
}
