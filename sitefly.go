// Package sitefly is a starter for small content-driven sites built with Go
// and Echo. It serves an index page from YAML site metadata, markdown pages
// resolved from a content directory, and a health endpoint for the hosting
// platform's checks.
//
// A site's main.go builds a Config (usually with ConfigFromEnv), calls New,
// and runs Start until its context is cancelled.
package sitefly

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"golang.org/x/sync/errgroup"

	"github.com/sitefly/sitefly/analytics"
	"github.com/sitefly/sitefly/content"
	"github.com/sitefly/sitefly/markdown"
	"github.com/sitefly/sitefly/site"
	"github.com/sitefly/sitefly/views"
)

// App is the central sitefly application. It wires together the site
// configuration, the page resolver, the views, middleware and routes.
type App struct {
	Config Config
	Site   site.Config
	Echo   *echo.Echo
	Pages  *content.Resolver
	Views  *views.Views

	analyticsStore *analytics.Store
	recorder       *analytics.Recorder
	reloader       *LiveReloader
	stylesheet     []byte
	contentFS      fs.FS
	siteOverride   *site.Config
	features       []views.Feature
	customRoutes   []func(*App)
}

// New creates an App ready to serve: the site configuration is loaded,
// templates are parsed and all routes are registered. Nothing listens until
// Start is called.
func New(cfg Config, opts ...Option) (*App, error) {
	cfg.setDefaults()

	a := &App{
		Config:   cfg,
		Echo:     echo.New(),
		features: views.DefaultFeatures,
	}
	for _, opt := range opts {
		opt(a)
	}

	e := a.Echo
	e.HideBanner = true
	e.JSONSerializer = jsonSerializer{}
	if cfg.Debug() {
		e.Debug = true
		e.Logger.SetLevel(log.DEBUG)
	} else {
		e.Logger.SetLevel(log.INFO)
		if cfg.SecretKey == DefaultSecretKey {
			e.Logger.Warnf("SITE_SECRET_KEY is not set; using the development default in %s", cfg.Env)
		}
	}

	if a.siteOverride != nil {
		a.Site = *a.siteOverride
	} else {
		a.Site = site.Load(cfg.SiteConfigPath, func(err error) {
			e.Logger.Debugf("using default site config: %v", err)
		})
	}

	md := markdown.New(cfg.HighlightStyle)
	if a.contentFS != nil {
		a.Pages = content.NewResolver(a.contentFS, md)
	} else {
		a.Pages = content.NewResolver(os.DirFS(cfg.ContentRoot), md)
	}

	v, err := views.New(!cfg.Debug())
	if err != nil {
		return nil, fmt.Errorf("sitefly: %w", err)
	}
	a.Views = v

	a.stylesheet, err = minifiedAsset("sitefly.css", "text/css")
	if err != nil {
		return nil, fmt.Errorf("sitefly: stylesheet: %w", err)
	}

	if cfg.AnalyticsEnabled {
		store, err := analytics.NewStore(cfg.AnalyticsDatabasePath)
		if err != nil {
			return nil, fmt.Errorf("sitefly: init analytics: %w", err)
		}
		if err := store.InitSalt(); err != nil {
			store.Close()
			return nil, fmt.Errorf("sitefly: init analytics salt: %w", err)
		}
		a.analyticsStore = store
		a.recorder = analytics.NewRecorder(store, "/page/")
	}

	if cfg.Debug() && a.contentFS == nil {
		a.reloader = NewLiveReloader()
	}

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}

	e.Logger.Infof("%s initialized in %s mode", a.Site.SiteName, cfg.Env)
	return a, nil
}

// Start serves HTTP on Config.Addr until ctx is cancelled, then shuts the
// server down gracefully. In development it also watches the content root
// and tells connected browsers to reload when a file changes.
func (a *App) Start(ctx context.Context) error {
	if a.analyticsStore != nil {
		stopCleanup := a.analyticsStore.StartCleanupScheduler(a.Config.AnalyticsRetention, 24*time.Hour)
		defer stopCleanup()
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := a.Echo.Start(a.Config.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.ShutdownTimeout)
		defer cancel()
		return a.Echo.Shutdown(shutdownCtx)
	})
	if a.reloader != nil {
		g.Go(func() error {
			return watchContent(ctx, a.Config.ContentRoot, a.reloader.BroadcastReload, a.Echo.Logger)
		})
	}
	return g.Wait()
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.GET("/static/sitefly.css", a.handleStylesheet)
	if a.reloader != nil {
		e.GET("/static/livereload.js", embeddedHandler())
		e.GET("/__reload", echo.WrapHandler(http.HandlerFunc(a.reloader.Handler)))
	}
	e.Static("/static", a.Config.StaticDir)
	e.GET("/favicon.ico", a.handleFavicon)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)

	e.GET("/", a.handleIndex)
	e.GET("/page/*", a.handlePage)
	e.GET("/health", a.handleHealth)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.recorder != nil {
		a.recorder.Close()
	}
	if a.analyticsStore != nil {
		return a.analyticsStore.Close()
	}
	return nil
}
