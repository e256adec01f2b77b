package kndweb

import (
	"errors"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/kindanddivine/kndweb/api"
	"github.com/kindanddivine/kndweb/carousel"
	"github.com/kindanddivine/kndweb/views"
)

const minPasswordLen = 6

var (
	adminTabs       = mapset.NewSet(views.TabBlogs, views.TabSolutions, views.TabCarousels, views.TabContacts, views.TabSocial, views.TabMedia, views.TabAccount, views.TabDatabase)
	validRotations  = mapset.NewSet(views.Rotations...)
	socialPlatforms = mapset.NewSet("facebook", "twitter", "x", "linkedin", "instagram", "youtube", "github", "wechat", "weibo")
)

// redirectTab sends the admin back to a tab with a flash message or error.
func redirectTab(c echo.Context, tab, msg, errMsg string) error {
	q := url.Values{}
	if msg != "" {
		q.Set("msg", msg)
	}
	if errMsg != "" {
		q.Set("err", errMsg)
	}
	target := "/admin/" + tab + "/"
	if len(q) > 0 {
		target += "?" + q.Encode()
	}
	return c.Redirect(http.StatusSeeOther, target)
}

func (a *App) loginPage(c echo.Context, errMsg string) views.LoginPage {
	return views.LoginPage{Page: a.errorPage(c), Error: errMsg}
}

func (a *App) handleAdmin(c echo.Context) error {
	if !IsAdmin(c) {
		return Render(c, a.Views.AdminLogin(a.loginPage(c, c.QueryParam("err"))))
	}
	return c.Redirect(http.StatusSeeOther, "/admin/"+views.TabBlogs+"/")
}

func (a *App) handleAdminLogin(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		return RenderStatus(c, http.StatusTooManyRequests, a.Views.AdminLogin(a.loginPage(c, "Too many login attempts. Try again later.")))
	}
	username := strings.TrimSpace(c.FormValue("username"))
	password := c.FormValue("password")
	creds, err := a.API.Login(c.Request().Context(), username, password)
	if err != nil {
		a.loginLimiter.Record(ip)
		if api.IsUnauthorized(err) {
			a.Logger.Info("admin login failed", zap.String("ip", ip), zap.String("username", username))
			return RenderStatus(c, http.StatusUnauthorized, a.Views.AdminLogin(a.loginPage(c, "Invalid username or password")))
		}
		a.Logger.Error("admin login", zap.Error(err))
		return RenderStatus(c, http.StatusBadGateway, a.Views.AdminLogin(a.loginPage(c, "Login failed. Please try again.")))
	}
	a.loginLimiter.Reset(ip)
	if err := (sessionCredentials{c}).Store(creds); err != nil {
		return err
	}
	a.Logger.Info("admin signed in", zap.String("username", creds.Username))
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

func (a *App) handleAdminLogout(c echo.Context) error {
	if err := (sessionCredentials{c}).Clear(); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

// handleAdminTab renders one dashboard tab. ?q= filters the list and
// ?edit=<id> loads a record into the tab's form.
func (a *App) handleAdminTab(c echo.Context) error {
	tab := c.Param("tab")
	if !adminTabs.Contains(tab) {
		return echo.ErrNotFound
	}
	return a.renderAdmin(c, tab, nil)
}

func (a *App) renderAdmin(c echo.Context, tab string, restore *views.RestoreReport) error {
	ctx := c.Request().Context()
	creds := Credentials(c)
	q := strings.TrimSpace(c.QueryParam("q"))
	editID, _ := strconv.Atoi(c.QueryParam("edit"))

	p := views.AdminPage{
		Page:     a.errorPage(c),
		Username: creds.Username,
		Tab:      tab,
		Message:  c.QueryParam("msg"),
		Error:    c.QueryParam("err"),
		Query:    q,
		Restore:  restore,
	}
	p.Meta.Title = "Admin"

	switch tab {
	case views.TabBlogs:
		blogs, err := a.API.Blogs().List(ctx, nil)
		if err != nil {
			return a.adminError(c, err)
		}
		sortBlogs(blogs)
		p.EditBlog = findByID(blogs, editID, func(b api.Blog) int { return b.ID })
		p.Blogs = Search(blogs, q, blogText)
	case views.TabSolutions:
		solutions, err := a.API.Solutions().List(ctx, nil)
		if err != nil {
			return a.adminError(c, err)
		}
		p.EditSolution = findByID(solutions, editID, func(s api.Solution) int { return s.ID })
		p.Solutions = Search(solutions, q, solutionText)
		p.Images = a.mediaViews()
	case views.TabCarousels:
		items, err := a.API.CarouselItems().List(ctx, nil)
		if err != nil {
			return a.adminError(c, err)
		}
		p.Carousels = items
		p.EditCarousel = findByID(items, editID, func(it api.Carousel) int { return it.ID })
		p.Images = a.mediaViews()
	case views.TabContacts:
		contacts, err := a.API.Contacts().AdminList(ctx, creds)
		if err != nil {
			return a.adminError(c, err)
		}
		sort.SliceStable(contacts, func(i, j int) bool {
			if !contacts[i].CreatedAt.Equal(contacts[j].CreatedAt) {
				return contacts[i].CreatedAt.After(contacts[j].CreatedAt)
			}
			return contacts[i].ID > contacts[j].ID
		})
		p.Contacts = Search(contacts, q, contactText)
	case views.TabSocial:
		links, err := a.API.SocialLinks().List(ctx, nil)
		if err != nil {
			return a.adminError(c, err)
		}
		sort.SliceStable(links, func(i, j int) bool { return links[i].SortOrder < links[j].SortOrder })
		p.SocialLinks = links
		p.EditSocial = findByID(links, editID, func(l api.SocialLink) int { return l.ID })
	case views.TabMedia:
		p.Images = a.mediaViews()
	case views.TabDatabase:
		p.S3Enabled = a.bucket != nil
	}
	return Render(c, a.Views.Admin(p))
}

// formParser reads one resource from the submitted form. A non-empty
// message rejects the form.
type formParser[T any] func(c echo.Context) (T, string)

// registerCRUD wires create, update, and delete for one backend resource:
//
//	POST /admin/<tab>/             create
//	POST /admin/<tab>/:id/         update
//	POST /admin/<tab>/:id/delete/  delete
func registerCRUD[T any](a *App, g *echo.Group, tab string, res *api.Resource[T], parse formParser[T]) {
	g.POST("/"+tab+"/", func(c echo.Context) error {
		item, msg := parse(c)
		if msg != "" {
			return redirectTab(c, tab, "", msg)
		}
		if err := res.Create(c.Request().Context(), Credentials(c), item); err != nil {
			return a.mutationError(c, tab, err)
		}
		return a.mutated(c, tab, "Created", res.Name())
	})
	g.POST("/"+tab+"/:id/", func(c echo.Context) error {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			return echo.ErrNotFound
		}
		item, msg := parse(c)
		if msg != "" {
			return c.Redirect(http.StatusSeeOther, "/admin/"+tab+"/?edit="+strconv.Itoa(id)+"&err="+url.QueryEscape(msg))
		}
		if err := res.Update(c.Request().Context(), Credentials(c), id, item); err != nil {
			return a.mutationError(c, tab, err)
		}
		return a.mutated(c, tab, "Saved", res.Name())
	})
	g.POST("/"+tab+"/:id/delete/", func(c echo.Context) error {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			return echo.ErrNotFound
		}
		if err := res.Delete(c.Request().Context(), Credentials(c), id); err != nil {
			return a.mutationError(c, tab, err)
		}
		return a.mutated(c, tab, "Deleted", res.Name())
	})
}

func (a *App) mutated(c echo.Context, tab, verb, resource string) error {
	a.Cache.Invalidate(c.Request().Context())
	a.Logger.Info("admin mutation",
		zap.String("resource", resource),
		zap.String("action", strings.ToLower(verb)),
		zap.String("id", c.Param("id")))
	return redirectTab(c, tab, verb, "")
}

// mutationError signs out on a 401, shows backend validation messages on
// the tab, and fails anything else.
func (a *App) mutationError(c echo.Context, tab string, err error) error {
	if api.IsUnauthorized(err) {
		return a.adminError(c, err)
	}
	var apiErr *api.APIError
	if errors.As(err, &apiErr) && apiErr.Status < 500 {
		return redirectTab(c, tab, "", apiErr.Message)
	}
	return err
}

func (a *App) handleContactDelete(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.ErrNotFound
	}
	if err := a.API.Contacts().Delete(c.Request().Context(), Credentials(c), id); err != nil {
		return a.mutationError(c, views.TabContacts, err)
	}
	return a.mutated(c, views.TabContacts, "Deleted", "contacts")
}

func formInt(c echo.Context, name string) (int, bool) {
	raw := strings.TrimSpace(c.FormValue(name))
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	return n, err == nil
}

func metaFromForm(c echo.Context) (title, desc, keywords string) {
	return strings.TrimSpace(c.FormValue("meta_title")),
		strings.TrimSpace(c.FormValue("meta_description")),
		strings.TrimSpace(c.FormValue("meta_keywords"))
}

// contentPath normalizes a custom URL path, deriving it from the title
// when blank.
func contentPath(raw, title string) string {
	if p := Slugify(raw); p != "" {
		return p
	}
	return Slugify(title)
}

func blogFromForm(c echo.Context) (api.Blog, string) {
	b := api.Blog{
		Title:   strings.TrimSpace(c.FormValue("title")),
		Summary: strings.TrimSpace(c.FormValue("summary")),
		Content: c.FormValue("content"),
	}
	if b.Title == "" || strings.TrimSpace(b.Content) == "" {
		return b, "Title and content are required"
	}
	b.Path = contentPath(c.FormValue("path"), b.Title)
	b.MetaTitle, b.MetaDescription, b.MetaKeywords = metaFromForm(c)
	return b, ""
}

func solutionFromForm(c echo.Context) (api.Solution, string) {
	s := api.Solution{
		Title:       strings.TrimSpace(c.FormValue("title")),
		Description: c.FormValue("description"),
		ImageURL:    strings.TrimSpace(c.FormValue("image_url")),
	}
	if s.Title == "" || strings.TrimSpace(s.Description) == "" {
		return s, "Title and description are required"
	}
	s.Path = contentPath(c.FormValue("path"), s.Title)
	s.MetaTitle, s.MetaDescription, s.MetaKeywords = metaFromForm(c)
	return s, ""
}

func carouselFromForm(c echo.Context) (api.Carousel, string) {
	it := api.Carousel{
		Title:       strings.TrimSpace(c.FormValue("title")),
		ImageURL:    strings.TrimSpace(c.FormValue("image_url")),
		AltText:     strings.TrimSpace(c.FormValue("alt_text")),
		Description: strings.TrimSpace(c.FormValue("description")),
	}
	if it.Title == "" || it.ImageURL == "" {
		return it, "Title and image URL are required"
	}
	pos, err := carousel.ParsePosition(c.FormValue("position"))
	if err != nil {
		return it, "Position must be top or bottom"
	}
	it.Position = string(pos)

	var ok bool
	if it.SortOrder, ok = formInt(c, "sort_order"); !ok {
		return it, "Sort order must be a number"
	}
	if it.Rotation, ok = formInt(c, "rotation"); !ok || !validRotations.Contains(it.Rotation) {
		return it, "Rotation must be 0, 90, 180 or 270"
	}
	if it.ImageWidth, ok = formInt(c, "image_width"); !ok || it.ImageWidth < 0 {
		return it, "Image width must be a positive number"
	}
	if it.ImageHeight, ok = formInt(c, "image_height"); !ok || it.ImageHeight < 0 {
		return it, "Image height must be a positive number"
	}
	return it, ""
}

func socialFromForm(c echo.Context) (api.SocialLink, string) {
	l := api.SocialLink{
		Platform: strings.ToLower(strings.TrimSpace(c.FormValue("platform"))),
		URL:      strings.TrimSpace(c.FormValue("url")),
	}
	if !socialPlatforms.Contains(l.Platform) {
		return l, "Unknown platform"
	}
	u, err := url.Parse(l.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return l, "URL must start with http:// or https://"
	}
	var ok bool
	if l.SortOrder, ok = formInt(c, "sort_order"); !ok {
		return l, "Sort order must be a number"
	}
	return l, ""
}

func (a *App) handleAccount(c echo.Context) error {
	current := c.FormValue("current_password")
	upd := api.CredentialsUpdate{
		CurrentPassword: current,
		NewUsername:     strings.TrimSpace(c.FormValue("new_username")),
		NewPassword:     c.FormValue("new_password"),
	}
	switch {
	case current == "":
		return redirectTab(c, views.TabAccount, "", "Current password is required")
	case upd.NewUsername == "" && upd.NewPassword == "":
		return redirectTab(c, views.TabAccount, "", "Enter a new username or password")
	case upd.NewPassword != "" && len(upd.NewPassword) < minPasswordLen:
		return redirectTab(c, views.TabAccount, "", "New password must be at least 6 characters")
	case upd.NewPassword != c.FormValue("confirm_password"):
		return redirectTab(c, views.TabAccount, "", "Passwords do not match")
	}

	next, msg, err := a.API.UpdateCredentials(c.Request().Context(), Credentials(c), upd)
	if err != nil {
		return a.mutationError(c, views.TabAccount, err)
	}
	if err := (sessionCredentials{c}).Store(next); err != nil {
		return err
	}
	if msg == "" {
		msg = "Credentials updated"
	}
	a.Logger.Info("admin credentials changed", zap.String("username", next.Username))
	return redirectTab(c, views.TabAccount, msg, "")
}
