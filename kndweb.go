// Package kndweb is the KIND & DIVINE company website server built with Go,
// Echo, and templ. It renders the public marketing pages from an external
// REST backend and serves the admin dashboard that edits that backend.
//
// Views are supplied through the ViewFuncs struct; kndweb owns the handler
// logic, middleware, caching, and the carousel engine wiring.
package kndweb

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/kindanddivine/kndweb/api"
	"github.com/kindanddivine/kndweb/backup"
	"github.com/kindanddivine/kndweb/carousel"
	"github.com/kindanddivine/kndweb/notify"
	"github.com/kindanddivine/kndweb/views"
)

// ViewFuncs holds the components the framework calls when rendering pages.
type ViewFuncs struct {
	Home        func(views.HomePage) templ.Component
	About       func(views.Page) templ.Component
	News        func(views.NewsPage) templ.Component
	Post        func(views.ArticlePage) templ.Component
	Solutions   func(views.SolutionsPage) templ.Component
	Solution    func(views.SolutionPage) templ.Component
	Contact     func(views.ContactPage) templ.Component
	AdminLogin  func(views.LoginPage) templ.Component
	Admin       func(views.AdminPage) templ.Component
	NotFound    func(views.Page) templ.Component
	ServerError func(views.Page) templ.Component
}

// DefaultViews returns the stock views package templates.
func DefaultViews() ViewFuncs {
	return ViewFuncs{
		Home:        views.Home,
		About:       views.About,
		News:        views.News,
		Post:        views.Post,
		Solutions:   views.Solutions,
		Solution:    views.Solution,
		Contact:     views.Contact,
		AdminLogin:  views.AdminLogin,
		Admin:       views.Admin,
		NotFound:    views.NotFound,
		ServerError: views.ServerError,
	}
}

// App is the central application. It wires together the backend client,
// cache, carousel engine, handlers, middleware, and templates.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	API    *api.Client
	Cache  *ContentCache
	Media  *MediaStore
	Views  ViewFuncs
	Hub    *carousel.Hub
	Loader *carousel.Loader
	Logger *zap.Logger

	loginLimiter   *RateLimiter
	contactLimiter *RateLimiter
	notifier       notify.Notifier
	bucket         *backup.Bucket
	redis          *redis.Client
	customRoutes   []func(*App)
	staticDir      string
	ready          bool
}

// New creates an App with the given configuration and view functions.
func New(cfg SiteConfig, v ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		Views:     v,
		Hub:       carousel.NewHub(),
		Logger:    zap.NewNop(),
		staticDir: cfg.StaticDir,
	}
	a.Echo.HideBanner = true
	a.Echo.HidePort = true

	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Setup validates the config, connects the backing services, and registers
// middleware and routes. Start calls it; tests call it directly and drive
// a.Echo with httptest.
func (a *App) Setup(ctx context.Context) error {
	if a.ready {
		return nil
	}
	if err := a.Config.Validate(); err != nil {
		return err
	}

	if a.API == nil {
		a.API = api.New(a.Config.APIBaseURL, api.WithLogger(a.Logger))
	}
	a.Loader = carousel.NewLoader(a.API, a.Logger)

	if a.Config.RedisURL != "" {
		opt, err := redis.ParseURL(a.Config.RedisURL)
		if err != nil {
			return fmt.Errorf("kndweb: parse redis url: %w", err)
		}
		a.redis = redis.NewClient(opt)
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err = a.redis.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			a.Logger.Warn("redis unavailable, using in-process cache only", zap.Error(err))
		}
	}
	a.Cache = NewContentCache(a.API, a.Config.CacheTTL, a.redis, a.Logger)

	media, err := NewMediaStore(a.Config.MediaDatabasePath)
	if err != nil {
		return fmt.Errorf("kndweb: init media store: %w", err)
	}
	a.Media = media

	if a.Config.S3.Enabled() {
		bucket, err := backup.NewBucket(ctx, a.Config.S3, a.Logger)
		if err != nil {
			return fmt.Errorf("kndweb: init s3: %w", err)
		}
		a.bucket = bucket
	}

	if a.notifier == nil {
		a.notifier = notify.Noop{}
		if a.Config.SMTP.Enabled() {
			m, err := notify.NewMailer(a.Config.SMTP, a.Config.Name, a.Logger)
			if err != nil {
				return fmt.Errorf("kndweb: init mailer: %w", err)
			}
			a.notifier = m
		}
	}

	a.loginLimiter = NewRateLimiter(5, time.Minute)
	a.contactLimiter = NewRateLimiter(a.Config.ContactLimit, time.Hour)

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
	a.ready = true
	return nil
}

// Start sets the app up and serves until the server is shut down.
func (a *App) Start(ctx context.Context) error {
	if err := a.Setup(ctx); err != nil {
		return err
	}
	a.Logger.Info("listening",
		zap.String("addr", a.Config.Addr),
		zap.String("api", a.Config.APIBaseURL))
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the HTTP server gracefully. Carousel streams never end on
// their own, so the players are stopped first and their handlers return.
func (a *App) Shutdown(ctx context.Context) error {
	a.Hub.Close()
	return a.Echo.Shutdown(ctx)
}

func (a *App) carouselOptions() carousel.Options {
	return carousel.Options{
		MarqueeSpeed:  a.Config.MarqueeSpeed,
		FrameInterval: time.Second / time.Duration(a.Config.FrameRate),
	}
}

func (a *App) setupRoutes() {
	e := a.Echo

	// Framework assets (carousel.js, admin.js, site.css) are served under
	// /public/ ahead of the static dir.
	embeddedFS, _ := fs.Sub(EmbeddedAssets, "embedded")
	embeddedHandler := echo.WrapHandler(http.StripPrefix("/public/", http.FileServer(http.FS(embeddedFS))))
	for _, name := range embeddedNames() {
		e.GET("/public/"+name, embeddedHandler)
	}
	e.Static("/public", a.staticDir)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)

	e.GET("/", a.handleHome)
	e.GET("/about/", a.handleAbout)
	e.GET("/news/", a.handleNews)
	e.GET("/news/:id/", a.handleNewsRedirect)
	e.GET("/blog/:slug/", a.handlePost)
	e.GET("/solution/", a.handleSolutions)
	e.GET("/solution/:slug/", a.handleSolution)
	e.GET("/contact/", a.handleContact)
	e.POST("/contact/", a.handleContactSubmit)

	e.GET("/carousel/stream/", a.handleCarouselStream)
	e.POST("/carousel/:id/:action/", a.handleCarouselAction)

	e.GET("/admin/", a.handleAdmin)
	e.POST("/admin/login/", a.handleAdminLogin)

	adm := e.Group("/admin", a.requireAdmin)
	adm.POST("/logout/", a.handleAdminLogout)
	adm.POST("/account/", a.handleAccount)
	adm.POST("/media/upload/", a.handleMediaUpload)
	adm.POST("/media/:filename/delete/", a.handleMediaDelete)
	adm.GET("/database/backup/", a.handleBackupDownload)
	adm.POST("/database/archive/", a.handleBackupArchive)
	adm.POST("/database/restore/", a.handleRestore)
	adm.POST("/contacts/:id/delete/", a.handleContactDelete)
	registerCRUD(a, adm, views.TabBlogs, a.API.Blogs(), blogFromForm)
	registerCRUD(a, adm, views.TabSolutions, a.API.Solutions(), solutionFromForm)
	registerCRUD(a, adm, views.TabCarousels, a.API.CarouselItems(), carouselFromForm)
	registerCRUD(a, adm, views.TabSocial, a.API.SocialLinks(), socialFromForm)
	adm.GET("/:tab/", a.handleAdminTab)
}

// Close releases the limiters, cache connection, and media database.
func (a *App) Close() error {
	a.Hub.Close()
	if a.loginLimiter != nil {
		a.loginLimiter.Stop()
	}
	if a.contactLimiter != nil {
		a.contactLimiter.Stop()
	}
	var errs []error
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.Media != nil {
		errs = append(errs, a.Media.Close())
	}
	return errors.Join(errs...)
}
