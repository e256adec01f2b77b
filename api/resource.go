package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// Resource is the CRUD surface of one named backend collection. Reads go
// to the public /api/<name> routes, writes to /api/admin/<name>.
type Resource[T any] struct {
	client *Client
	name   string
}

// NewResource binds a Resource for the collection name (e.g. "blogs").
func NewResource[T any](c *Client, name string) *Resource[T] {
	return &Resource[T]{client: c, name: name}
}

// Name returns the collection name.
func (r *Resource[T]) Name() string { return r.name }

func (r *Resource[T]) publicPath() string { return "/api/" + r.name }
func (r *Resource[T]) adminPath() string  { return "/api/admin/" + r.name }

// List fetches the public collection. A null body yields an empty slice.
func (r *Resource[T]) List(ctx context.Context, query url.Values) ([]T, error) {
	path := r.publicPath()
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	var items []T
	if err := r.client.doJSON(ctx, http.MethodGet, path, Credentials{}, nil, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// AdminList fetches a collection that is only readable by admins. Only
// contacts have an admin read; the other resources list through List.
func (r *Resource[T]) AdminList(ctx context.Context, creds Credentials) ([]T, error) {
	var items []T
	if err := r.client.doJSON(ctx, http.MethodGet, r.adminPath(), creds, nil, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// Get fetches one item by numeric id.
func (r *Resource[T]) Get(ctx context.Context, id int) (T, error) {
	var item T
	err := r.client.doJSON(ctx, http.MethodGet, r.publicPath()+"/"+strconv.Itoa(id), Credentials{}, nil, &item)
	return item, err
}

// Create posts a new item.
func (r *Resource[T]) Create(ctx context.Context, creds Credentials, item T) error {
	return r.client.doJSON(ctx, http.MethodPost, r.adminPath(), creds, item, nil)
}

// Update replaces the item with the given id.
func (r *Resource[T]) Update(ctx context.Context, creds Credentials, id int, item T) error {
	return r.client.doJSON(ctx, http.MethodPut, r.adminPath()+"/"+strconv.Itoa(id), creds, item, nil)
}

// Delete removes the item with the given id.
func (r *Resource[T]) Delete(ctx context.Context, creds Credentials, id int) error {
	return r.client.doJSON(ctx, http.MethodDelete, r.adminPath()+"/"+strconv.Itoa(id), creds, nil, nil)
}

// Blogs is the blog collection.
func (c *Client) Blogs() *Resource[Blog] { return NewResource[Blog](c, "blogs") }

// Solutions is the solution collection.
func (c *Client) Solutions() *Resource[Solution] { return NewResource[Solution](c, "solutions") }

// CarouselItems is the carousel collection.
func (c *Client) CarouselItems() *Resource[Carousel] { return NewResource[Carousel](c, "carousels") }

// SocialLinks is the footer social link collection.
func (c *Client) SocialLinks() *Resource[SocialLink] { return NewResource[SocialLink](c, "social-links") }

// Contacts is the contact message collection (admin read and delete only).
func (c *Client) Contacts() *Resource[Contact] { return NewResource[Contact](c, "contacts") }
