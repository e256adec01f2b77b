package kndweb

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/kindanddivine/kndweb/api"
	"github.com/kindanddivine/kndweb/backup"
	"github.com/kindanddivine/kndweb/notify"
)

// SiteConfig holds all configuration for the site. Keys match the viper
// config file and KND_* environment variables.
type SiteConfig struct {
	Name        string `mapstructure:"name"`
	URL         string `mapstructure:"url"`
	Description string `mapstructure:"description"`
	Email       string `mapstructure:"email"`
	Phone       string `mapstructure:"phone"`
	Address     string `mapstructure:"address"`

	Addr       string `mapstructure:"addr"`
	APIBaseURL string `mapstructure:"api_base_url"`
	StaticDir  string `mapstructure:"static_dir"`

	SessionSecret string `mapstructure:"session_secret"`
	CookieSecure  bool   `mapstructure:"cookie_secure"`

	CacheTTL time.Duration `mapstructure:"cache_ttl"`
	// RedisURL enables the shared content cache, e.g. redis://localhost:6379/0.
	RedisURL string `mapstructure:"redis_url"`

	MediaDatabasePath string `mapstructure:"media_db"`

	MarqueeSpeed float64 `mapstructure:"marquee_speed"`
	FrameRate    int     `mapstructure:"frame_rate"`

	// ContactLimit is the number of contact submissions allowed per IP per hour.
	ContactLimit int `mapstructure:"contact_limit"`

	SMTP notify.SMTPConfig `mapstructure:"smtp"`
	S3   backup.S3Config   `mapstructure:"s3"`
}

const minSecretLen = 32

// Defaults applied by setDefaults; exported for the CLI's viper defaults.
const (
	DefaultName       = "KIND & DIVINE"
	DefaultURL        = "http://localhost:3000"
	DefaultAddr       = ":3000"
	DefaultAPIBaseURL = "http://localhost:8080"
	DefaultCacheTTL   = 5 * time.Minute
	DefaultMediaDB    = "data/media.db"
	DefaultStaticDir  = "public"
)

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = DefaultName
	}
	if c.URL == "" {
		c.URL = DefaultURL
	}
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.APIBaseURL == "" {
		c.APIBaseURL = DefaultAPIBaseURL
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = DefaultCacheTTL
	}
	if c.MediaDatabasePath == "" {
		c.MediaDatabasePath = DefaultMediaDB
	}
	if c.StaticDir == "" {
		c.StaticDir = DefaultStaticDir
	}
	if c.MarqueeSpeed <= 0 {
		c.MarqueeSpeed = 15
	}
	if c.FrameRate <= 0 {
		c.FrameRate = 30
	}
	if c.ContactLimit <= 0 {
		c.ContactLimit = 5
	}
}

// Validate reports the first configuration problem that would prevent the
// server from starting.
func (c SiteConfig) Validate() error {
	if len(c.SessionSecret) < minSecretLen {
		return fmt.Errorf("kndweb: session_secret must be at least %d bytes", minSecretLen)
	}
	if c.APIBaseURL == "" {
		return errors.New("kndweb: api_base_url is required")
	}
	for name, raw := range map[string]string{"url": c.URL, "api_base_url": c.APIBaseURL} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("kndweb: %s %q is not an absolute URL", name, raw)
		}
	}
	return nil
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App after the built-in routes are set up.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for static assets and local uploads.
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

// WithLogger sets the application logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.Logger = l
		}
	}
}

// WithAPIClient replaces the backend client built from APIBaseURL.
func WithAPIClient(c *api.Client) Option {
	return func(a *App) {
		a.API = c
	}
}

// WithNotifier replaces the contact notifier built from the SMTP config.
func WithNotifier(n notify.Notifier) Option {
	return func(a *App) {
		a.notifier = n
	}
}
