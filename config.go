package sitefly

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"

	"github.com/sitefly/sitefly/site"
	"github.com/sitefly/sitefly/views"
)

// Environment names.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// DefaultSecretKey is used when no secret is configured. It is only fit for
// local development.
const DefaultSecretKey = "dev-key-please-change"

// Version is set at build time via ldflags.
var Version = "dev"

// Config holds the runtime configuration of a sitefly process.
type Config struct {
	Env       string // SITE_ENV (default "production")
	SecretKey string // SITE_SECRET_KEY (default DefaultSecretKey)
	Port      int    // PORT (default 8000)
	URL       string // SITE_URL, canonical base for the sitemap (default "http://localhost:<port>")
	Version   string // reported by /health (default Version)

	SiteConfigPath string // SITE_CONFIG (default "site.yaml")
	ContentRoot    string // SITE_CONTENT_ROOT (default "pages")
	StaticDir      string // SITE_STATIC_DIR (default "static")
	HighlightStyle string // SITE_HIGHLIGHT_STYLE, chroma style for code blocks

	AnalyticsEnabled      bool   // SITE_ANALYTICS (default false)
	AnalyticsDatabasePath string // SITE_ANALYTICS_DB (default "data/analytics.db")
	AnalyticsRetention    int    // days of page views kept (default 365)

	CookieSecure    bool          // SITE_COOKIE_SECURE, set true behind HTTPS
	ShutdownTimeout time.Duration // graceful shutdown budget (default 10s)
}

func (c *Config) setDefaults() {
	if c.Env == "" {
		c.Env = EnvProduction
	}
	if c.SecretKey == "" {
		c.SecretKey = DefaultSecretKey
	}
	if c.Port == 0 {
		c.Port = 8000
	}
	if c.URL == "" {
		c.URL = fmt.Sprintf("http://localhost:%d", c.Port)
	}
	if c.Version == "" {
		c.Version = Version
	}
	if c.SiteConfigPath == "" {
		c.SiteConfigPath = "site.yaml"
	}
	if c.ContentRoot == "" {
		c.ContentRoot = "pages"
	}
	if c.StaticDir == "" {
		c.StaticDir = "static"
	}
	if c.AnalyticsDatabasePath == "" {
		c.AnalyticsDatabasePath = "data/analytics.db"
	}
	if c.AnalyticsRetention == 0 {
		c.AnalyticsRetention = 365
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = 10 * time.Second
	}
}

// Debug reports whether the process runs in the development environment.
func (c Config) Debug() bool {
	return c.Env == EnvDevelopment
}

// Addr is the listen address.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// ConfigFromEnv builds a Config from the process environment, after loading
// a .env file from the working directory if one exists.
func ConfigFromEnv() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("sitefly: load .env: %w", err)
	}
	port, err := cast.ToIntE(EnvOr("PORT", "8000"))
	if err != nil {
		return Config{}, fmt.Errorf("sitefly: invalid PORT: %w", err)
	}
	cfg := Config{
		Env:                   EnvOr("SITE_ENV", EnvProduction),
		SecretKey:             os.Getenv("SITE_SECRET_KEY"),
		Port:                  port,
		URL:                   os.Getenv("SITE_URL"),
		SiteConfigPath:        os.Getenv("SITE_CONFIG"),
		ContentRoot:           os.Getenv("SITE_CONTENT_ROOT"),
		StaticDir:             os.Getenv("SITE_STATIC_DIR"),
		HighlightStyle:        os.Getenv("SITE_HIGHLIGHT_STYLE"),
		AnalyticsEnabled:      cast.ToBool(os.Getenv("SITE_ANALYTICS")),
		AnalyticsDatabasePath: os.Getenv("SITE_ANALYTICS_DB"),
		CookieSecure:          cast.ToBool(os.Getenv("SITE_COOKIE_SECURE")),
	}
	cfg.setDefaults()
	return cfg, nil
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback runs after the built-in routes are registered.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithContentFS serves pages from fsys instead of Config.ContentRoot.
// Live reload is unavailable for such an App.
func WithContentFS(fsys fs.FS) Option {
	return func(a *App) {
		a.contentFS = fsys
	}
}

// WithSiteConfig uses cfg instead of loading Config.SiteConfigPath.
func WithSiteConfig(cfg site.Config) Option {
	return func(a *App) {
		a.siteOverride = &cfg
	}
}

// WithFeatures replaces the feature cards shown on the index page.
func WithFeatures(features []views.Feature) Option {
	return func(a *App) {
		a.features = features
	}
}
