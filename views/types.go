package views

import (
	"github.com/kindanddivine/kndweb/api"
	"github.com/kindanddivine/kndweb/carousel"
)

// Site holds site-wide settings every page needs. Nothing in the templates
// is hardcoded that belongs here.
type Site struct {
	Name        string
	URL         string
	Description string
	Email       string
	Phone       string
	Address     string
}

// PageMeta carries per-page OpenGraph and SEO metadata into <head>.
type PageMeta struct {
	Title       string
	Description string
	Keywords    string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
	Image       string
}

// Page is the part of every view model the layout renders.
type Page struct {
	Site   Site
	Meta   PageMeta
	Path   string // request path, drives the active nav item
	Social []api.SocialLink
	CSRF   string
}

// StripView is one carousel collection as the template renders it.
type StripView struct {
	Collection carousel.Collection
	Frame      carousel.Frame
}

type HomePage struct {
	Page
	Hero   StripView
	Strip  StripView
	Latest []api.Blog
}

type NewsPage struct {
	Page
	Posts      []api.Blog
	Query      string
	Categories []api.Category
}

type ArticlePage struct {
	Page
	Post   api.Blog
	Recent []api.Blog
}

type SolutionsPage struct {
	Page
	Solutions []api.Solution
	Query     string
}

type SolutionPage struct {
	Page
	Solution api.Solution
	Others   []api.Solution
}

type ContactPage struct {
	Page
	Form   api.ContactRequest
	Errors map[string]string
	Sent   bool
	// Failure is shown above the form when the backend rejected the message.
	Failure string
}

type LoginPage struct {
	Page
	Error string
}

// Admin tab names.
const (
	TabBlogs     = "blogs"
	TabSolutions = "solutions"
	TabCarousels = "carousels"
	TabContacts  = "contacts"
	TabSocial    = "social"
	TabMedia     = "media"
	TabAccount   = "account"
	TabDatabase  = "database"
)

// Tabs lists the admin tabs in display order.
var Tabs = []struct{ Key, Label string }{
	{TabBlogs, "Blogs"},
	{TabSolutions, "Solutions"},
	{TabCarousels, "Carousels"},
	{TabContacts, "Contacts"},
	{TabSocial, "Social Media"},
	{TabMedia, "Media"},
	{TabAccount, "Account"},
	{TabDatabase, "Database"},
}

// MediaImage is an uploaded image in the media library.
type MediaImage struct {
	Filename     string
	URL          string
	OriginalName string
	Width        int
	Height       int
	Size         int
	UploadedAt   string
}

// RestoreReport summarizes a completed restore.
type RestoreReport struct {
	Filename string
	Size     int64
	Tables   []string
	Message  string
}

// AdminPage is the dashboard. Only the fields of the active tab are set.
type AdminPage struct {
	Page
	Username string
	Tab      string
	Message  string
	Error    string
	Query    string

	Blogs       []api.Blog
	Solutions   []api.Solution
	Carousels   []api.Carousel
	Contacts    []api.Contact
	SocialLinks []api.SocialLink
	Images      []MediaImage

	// Editing is the record shown in the tab's form; nil means "new".
	EditBlog     *api.Blog
	EditSolution *api.Solution
	EditCarousel *api.Carousel
	EditSocial   *api.SocialLink

	S3Enabled bool
	Restore   *RestoreReport
}
