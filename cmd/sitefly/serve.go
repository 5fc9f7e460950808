package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/sitefly/sitefly"
)

var serveCommand = &cli.Command{
	Name:  "serve",
	Usage: "Serve the site in the current directory",
	Flags: []cli.Flag{
		&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "listen port (overrides PORT)"},
		&cli.StringFlag{Name: "env", Usage: "development or production (overrides SITE_ENV)"},
		&cli.BoolFlag{Name: "dev", Usage: "shorthand for --env development"},
		&cli.StringFlag{Name: "content", Usage: "content root (overrides SITE_CONTENT_ROOT)"},
		&cli.StringFlag{Name: "config", Usage: "site config file (overrides SITE_CONFIG)"},
		&cli.StringFlag{Name: "static", Usage: "static directory (overrides SITE_STATIC_DIR)"},
		&cli.BoolFlag{Name: "analytics", Usage: "record page views (overrides SITE_ANALYTICS)"},
	},
	Action: func(c *cli.Context) error {
		cfg, err := serveConfig(c)
		if err != nil {
			return err
		}
		app, err := sitefly.New(cfg)
		if err != nil {
			return err
		}
		defer app.Close()

		ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
		defer stop()
		return app.Start(ctx)
	},
}

// serveConfig reads the environment and applies the flags that were set.
func serveConfig(c *cli.Context) (sitefly.Config, error) {
	cfg, err := sitefly.ConfigFromEnv()
	if err != nil {
		return cfg, err
	}
	if c.IsSet("port") {
		cfg.Port = c.Int("port")
		if os.Getenv("SITE_URL") == "" {
			cfg.URL = "" // recomputed from the new port
		}
	}
	if c.IsSet("env") {
		cfg.Env = c.String("env")
	}
	if c.Bool("dev") {
		cfg.Env = sitefly.EnvDevelopment
	}
	if c.IsSet("content") {
		cfg.ContentRoot = c.String("content")
	}
	if c.IsSet("config") {
		cfg.SiteConfigPath = c.String("config")
	}
	if c.IsSet("static") {
		cfg.StaticDir = c.String("static")
	}
	if c.IsSet("analytics") {
		cfg.AnalyticsEnabled = c.Bool("analytics")
	}
	return cfg, nil
}
