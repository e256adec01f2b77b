package kndweb

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/kindanddivine/kndweb/api"
)

const (
	sessionName = "admin_session"
	sessionTTL  = 60 * 60 * 12

	keyToken    = "token"
	keyUsername = "username"
)

func (a *App) setupMiddleware() {
	e := a.Echo

	e.IPExtractor = echo.ExtractIPFromXFFHeader(
		echo.TrustLoopback(true),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(true),
	)

	e.HTTPErrorHandler = a.httpErrorHandler

	e.Pre(middleware.NonWWWRedirect())

	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		Skipper: func(c echo.Context) bool {
			return strings.HasPrefix(c.Request().URL.Path, "/public/")
		},
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("request_id", v.RequestID),
			}
			if v.Error != nil {
				a.Logger.Error("request", append(fields, zap.Error(v.Error))...)
				return nil
			}
			a.Logger.Info("request", fields...)
			return nil
		},
	}))

	e.Use(middleware.Recover())

	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
		Skipper: func(c echo.Context) bool {
			path := c.Request().URL.Path
			return strings.HasPrefix(path, "/public/") ||
				path == "/carousel/stream/" ||
				path == "/admin/database/backup/"
		},
	}))

	e.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; img-src 'self' https: data:; font-src 'self'; connect-src 'self'",
		HSTSMaxAge:            31536000,
		HSTSExcludeSubdomains: false,
	}))

	e.Use(session.Middleware(a.newSessionStore()))

	e.Use(middleware.CSRFWithConfig(middleware.CSRFConfig{
		ContextKey:     middleware.DefaultCSRFConfig.ContextKey,
		TokenLookup:    "header:X-CSRF-Token,form:_csrf",
		CookieName:     "_csrf",
		CookiePath:     "/",
		CookieSameSite: http.SameSiteLaxMode,
		CookieSecure:   a.Config.CookieSecure,
		ErrorHandler: func(err error, c echo.Context) error {
			return c.String(http.StatusForbidden, "Forbidden")
		},
	}))

	e.Use(middleware.AddTrailingSlashWithConfig(middleware.TrailingSlashConfig{
		RedirectCode: http.StatusMovedPermanently,
		Skipper: func(c echo.Context) bool {
			path := c.Request().URL.Path
			return strings.HasPrefix(path, "/public") ||
				path == "/sitemap.xml" || path == "/feed.xml" || path == "/robots.txt"
		},
	}))

	e.Use(cacheControlMiddleware)
}

func cacheControlMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		path := c.Request().URL.Path
		switch {
		case strings.HasPrefix(path, "/public/uploads/"):
			c.Response().Header().Set("Cache-Control", "public, max-age=86400")
		case strings.HasPrefix(path, "/public/"):
			c.Response().Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		case path == "/sitemap.xml" || path == "/feed.xml" || path == "/robots.txt":
			c.Response().Header().Set("Cache-Control", "public, max-age=86400")
		case strings.HasPrefix(path, "/admin"), strings.HasPrefix(path, "/carousel/"), strings.HasPrefix(path, "/contact"):
			c.Response().Header().Set("Cache-Control", "no-store")
		default:
			c.Response().Header().Set("Cache-Control", "public, max-age=300")
		}
		return next(c)
	}
}

func (a *App) newSessionStore() *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(a.Config.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		MaxAge:   sessionTTL,
		SameSite: http.SameSiteLaxMode,
		Secure:   a.Config.CookieSecure,
	}
	return store
}

// sessionCredentials keeps the admin's backend token in the signed cookie
// session of one request.
type sessionCredentials struct {
	c echo.Context
}

var _ api.CredentialStore = sessionCredentials{}

func (s sessionCredentials) Load() (api.Credentials, error) {
	sess, err := session.Get(sessionName, s.c)
	if err != nil {
		return api.Credentials{}, err
	}
	token, _ := sess.Values[keyToken].(string)
	username, _ := sess.Values[keyUsername].(string)
	return api.Credentials{Token: token, Username: username}, nil
}

func (s sessionCredentials) Store(creds api.Credentials) error {
	sess, err := session.Get(sessionName, s.c)
	if err != nil {
		return err
	}
	sess.Values[keyToken] = creds.Token
	sess.Values[keyUsername] = creds.Username
	return sess.Save(s.c.Request(), s.c.Response())
}

func (s sessionCredentials) Clear() error {
	sess, err := session.Get(sessionName, s.c)
	if err != nil {
		return err
	}
	delete(sess.Values, keyToken)
	delete(sess.Values, keyUsername)
	sess.Options.MaxAge = -1
	return sess.Save(s.c.Request(), s.c.Response())
}

// Credentials returns the admin credentials of the current session, or the
// zero value when nobody is signed in.
func Credentials(c echo.Context) api.Credentials {
	creds, err := sessionCredentials{c}.Load()
	if err != nil {
		return api.Credentials{}
	}
	return creds
}

// IsAdmin checks if the current session holds a backend token.
func IsAdmin(c echo.Context) bool {
	return Credentials(c).Valid()
}

func (a *App) requireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !IsAdmin(c) {
			return c.Redirect(http.StatusSeeOther, "/admin/")
		}
		return next(c)
	}
}

// adminError turns a backend 401 into a sign-out; the token has expired or
// was revoked, so the session is cleared and the login form is shown.
func (a *App) adminError(c echo.Context, err error) error {
	if !api.IsUnauthorized(err) {
		return err
	}
	a.Logger.Info("admin session rejected by backend", zap.String("ip", c.RealIP()))
	if cerr := (sessionCredentials{c}).Clear(); cerr != nil {
		return cerr
	}
	return c.Redirect(http.StatusSeeOther, "/admin/?err="+url.QueryEscape("Your session has expired. Please sign in again."))
}

// CsrfToken extracts the CSRF token from the Echo context.
func CsrfToken(c echo.Context) string {
	token, _ := c.Get(middleware.DefaultCSRFConfig.ContextKey).(string)
	return token
}
