package kndweb

import (
	"context"
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/kindanddivine/kndweb/api"
	"github.com/kindanddivine/kndweb/carousel"
	"github.com/kindanddivine/kndweb/markdown"
	"github.com/kindanddivine/kndweb/views"
)

// ErrInvalidForm is returned when a submitted form fails validation.
var ErrInvalidForm = errors.New("invalid form")

const (
	latestNewsCount  = 3
	maxMessageLength = 5000
	notifyTimeout    = 30 * time.Second
)

func (a *App) site() views.Site {
	return views.Site{
		Name:        a.Config.Name,
		URL:         a.Config.URL,
		Description: a.Config.Description,
		Email:       a.Config.Email,
		Phone:       a.Config.Phone,
		Address:     a.Config.Address,
	}
}

// page builds the layout model shared by every public view. A failure to
// load the footer links never fails the page.
func (a *App) page(c echo.Context, meta views.PageMeta) views.Page {
	path := c.Request().URL.Path
	if meta.URL == "" {
		meta.URL = BuildURL(a.Config.URL, path)
	}
	if meta.Description == "" {
		meta.Description = a.Config.Description
	}
	if meta.OGType == "" {
		meta.OGType = "website"
	}
	social, err := a.Cache.SocialLinks(c.Request().Context())
	if err != nil {
		a.Logger.Warn("load social links", zap.Error(err))
	}
	return views.Page{
		Site:   a.site(),
		Meta:   meta,
		Path:   path,
		Social: social,
		CSRF:   CsrfToken(c),
	}
}

func stripView(col carousel.Collection, opts carousel.Options) views.StripView {
	return views.StripView{Collection: col, Frame: col.Driver(opts).Frame()}
}

func (a *App) handleHome(c echo.Context) error {
	ctx := c.Request().Context()
	cols := a.Loader.Load(ctx)
	blogs, err := a.Cache.Blogs(ctx)
	if err != nil {
		a.Logger.Warn("load latest news", zap.Error(err))
	}
	if len(blogs) > latestNewsCount {
		blogs = blogs[:latestNewsCount]
	}
	opts := a.carouselOptions()
	return Render(c, a.Views.Home(views.HomePage{
		Page:   a.page(c, views.PageMeta{Title: "Home"}),
		Hero:   stripView(cols.Top, opts),
		Strip:  stripView(cols.Bottom, opts),
		Latest: blogs,
	}))
}

func (a *App) handleAbout(c echo.Context) error {
	return Render(c, a.Views.About(a.page(c, views.PageMeta{
		Title:       "About",
		Description: "KIND & DIVINE develops AR precision metal parts, mechanical components and intelligent hardware platforms.",
	})))
}

func (a *App) handleNews(c echo.Context) error {
	ctx := c.Request().Context()
	blogs, err := a.Cache.Blogs(ctx)
	if err != nil {
		return err
	}
	cats, err := a.Cache.Categories(ctx)
	if err != nil {
		a.Logger.Warn("load categories", zap.Error(err))
	}
	q := strings.TrimSpace(c.QueryParam("q"))
	return Render(c, a.Views.News(views.NewsPage{
		Page:       a.page(c, views.PageMeta{Title: "News"}),
		Posts:      Search(blogs, q, blogText),
		Query:      q,
		Categories: cats,
	}))
}

// handleNewsRedirect resolves the legacy /news/:id/ link and redirects to
// the canonical /blog/<path or id>/.
func (a *App) handleNewsRedirect(c echo.Context) error {
	post, err := a.API.BlogByRef(c.Request().Context(), c.Param("id"))
	if err != nil {
		return a.lookupError(c, err)
	}
	return c.Redirect(http.StatusMovedPermanently, views.BlogURL(post))
}

func (a *App) handlePost(c echo.Context) error {
	ctx := c.Request().Context()
	post, err := a.API.BlogByRef(ctx, c.Param("slug"))
	if err != nil {
		return a.lookupError(c, err)
	}
	var recent []api.Blog
	if blogs, err := a.Cache.Blogs(ctx); err == nil {
		for _, b := range blogs {
			if b.ID != post.ID && len(recent) < latestNewsCount {
				recent = append(recent, b)
			}
		}
	}
	return Render(c, a.Views.Post(views.ArticlePage{
		Page: a.page(c, views.PageMeta{
			Title:       views.BlogTitle(post),
			Description: views.BlogDescription(post),
			Keywords:    post.MetaKeywords,
			URL:         BuildURL(a.Config.URL, "blog", post.Ref()),
			OGType:      "article",
		}),
		Post:   post,
		Recent: recent,
	}))
}

func (a *App) handleSolutions(c echo.Context) error {
	solutions, err := a.Cache.Solutions(c.Request().Context())
	if err != nil {
		return err
	}
	q := strings.TrimSpace(c.QueryParam("q"))
	return Render(c, a.Views.Solutions(views.SolutionsPage{
		Page:      a.page(c, views.PageMeta{Title: "Solutions"}),
		Solutions: Search(solutions, q, solutionText),
		Query:     q,
	}))
}

func (a *App) handleSolution(c echo.Context) error {
	ctx := c.Request().Context()
	s, err := a.API.SolutionByRef(ctx, c.Param("slug"))
	if err != nil {
		return a.lookupError(c, err)
	}
	var others []api.Solution
	if all, err := a.Cache.Solutions(ctx); err == nil {
		for _, o := range all {
			if o.ID != s.ID {
				others = append(others, o)
			}
		}
	}
	title := s.MetaTitle
	if title == "" {
		title = s.Title
	}
	desc := s.MetaDescription
	if desc == "" {
		desc = markdown.Excerpt(s.Description, 160)
	}
	return Render(c, a.Views.Solution(views.SolutionPage{
		Page: a.page(c, views.PageMeta{
			Title:       title,
			Description: markdown.Truncate(desc, 160),
			Keywords:    s.MetaKeywords,
			URL:         BuildURL(a.Config.URL, "solution", s.Ref()),
			Image:       s.ImageURL,
		}),
		Solution: s,
		Others:   others,
	}))
}

// lookupError maps a backend not-found to the 404 page.
func (a *App) lookupError(c echo.Context, err error) error {
	if api.IsNotFound(err) {
		return echo.ErrNotFound
	}
	return err
}

func (a *App) handleContact(c echo.Context) error {
	return Render(c, a.Views.Contact(views.ContactPage{
		Page: a.page(c, views.PageMeta{Title: "Contact"}),
		Sent: c.QueryParam("sent") == "1",
	}))
}

// validateContact trims the form and returns per-field messages.
func validateContact(req *api.ContactRequest) (map[string]string, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Subject = strings.TrimSpace(req.Subject)
	req.Message = strings.TrimSpace(req.Message)

	errs := map[string]string{}
	if req.Name == "" {
		errs["name"] = "Please enter your name"
	}
	if req.Email == "" {
		errs["email"] = "Please enter your email"
	} else if addr, err := mail.ParseAddress(req.Email); err != nil || addr.Address != req.Email {
		errs["email"] = "Please enter a valid email"
	}
	if req.Subject == "" {
		errs["subject"] = "Please enter a subject"
	}
	switch {
	case req.Message == "":
		errs["message"] = "Please enter a message"
	case utf8.RuneCountInString(req.Message) > maxMessageLength:
		errs["message"] = "Message is too long"
	}
	if len(errs) > 0 {
		return errs, ErrInvalidForm
	}
	return nil, nil
}

func (a *App) handleContactSubmit(c echo.Context) error {
	req := api.ContactRequest{
		Name:    c.FormValue("name"),
		Email:   c.FormValue("email"),
		Subject: c.FormValue("subject"),
		Message: c.FormValue("message"),
	}
	render := func(code int, errs map[string]string, failure string) error {
		return RenderStatus(c, code, a.Views.Contact(views.ContactPage{
			Page:    a.page(c, views.PageMeta{Title: "Contact"}),
			Form:    req,
			Errors:  errs,
			Failure: failure,
		}))
	}

	if errs, err := validateContact(&req); err != nil {
		return render(http.StatusUnprocessableEntity, errs, "")
	}
	if !a.contactLimiter.Allow(c.RealIP()) {
		return render(http.StatusTooManyRequests, nil, "Too many messages. Please try again later.")
	}
	if err := a.API.SubmitContact(c.Request().Context(), req); err != nil {
		a.Logger.Error("submit contact", zap.Error(err))
		return render(http.StatusBadGateway, nil, "Failed to send message. Please try again.")
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := a.notifier.ContactReceived(ctx, req); err != nil {
			a.Logger.Warn("contact notification failed", zap.String("email", req.Email), zap.Error(err))
		}
	}()
	return c.Redirect(http.StatusSeeOther, "/contact/?sent=1")
}

func (a *App) handleRobots(c echo.Context) error {
	body := "User-agent: *\nAllow: /\nDisallow: /admin\n\nSitemap: " +
		strings.TrimRight(a.Config.URL, "/") + "/sitemap.xml\n"
	return c.Blob(http.StatusOK, "text/plain; charset=utf-8", []byte(body))
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound(a.errorPage(c)))
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		a.Logger.Error("server error",
			zap.String("uri", c.Request().RequestURI),
			zap.Error(err))
		_ = RenderStatus(c, code, a.Views.ServerError(a.errorPage(c)))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}

// errorPage is the layout model for error pages. It skips the backend so a
// backend outage cannot recurse into another error.
func (a *App) errorPage(c echo.Context) views.Page {
	return views.Page{
		Site: a.site(),
		Meta: views.PageMeta{Description: a.Config.Description, OGType: "website"},
		Path: c.Request().URL.Path,
		CSRF: CsrfToken(c),
	}
}
