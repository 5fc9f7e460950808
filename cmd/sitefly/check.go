package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/urfave/cli/v2"

	"github.com/sitefly/sitefly"
	"github.com/sitefly/sitefly/content"
	"github.com/sitefly/sitefly/site"
)

var checkCommand = &cli.Command{
	Name:  "check",
	Usage: "Render every page and validate the site config",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "content", Usage: "content root (default SITE_CONTENT_ROOT or pages)"},
		&cli.StringFlag{Name: "config", Usage: "site config file (default SITE_CONFIG or site.yaml)"},
	},
	Action: func(c *cli.Context) error {
		root := c.String("content")
		if root == "" {
			root = sitefly.EnvOr("SITE_CONTENT_ROOT", "pages")
		}
		cfgPath := c.String("config")
		if cfgPath == "" {
			cfgPath = sitefly.EnvOr("SITE_CONFIG", "site.yaml")
		}
		if !runCheck(c.App.Writer, root, cfgPath) {
			return cli.Exit("some checks failed", 1)
		}
		return nil
	},
}

// runCheck reports on the site config and every markdown file under root.
// A missing or empty config is fine, the server falls back to defaults.
func runCheck(w io.Writer, root, cfgPath string) bool {
	ok := true

	cfg, err := site.Read(cfgPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		fmt.Fprintf(w, "⚠️  %s not found, defaults will be used\n", cfgPath)
	case errors.Is(err, site.ErrEmpty):
		fmt.Fprintf(w, "⚠️  %s is empty, defaults will be used\n", cfgPath)
	case err != nil:
		ok = false
		fmt.Fprintf(w, "❌ %v\n", err)
	default:
		fmt.Fprintf(w, "✅ %s (%s)\n", cfgPath, cfg.SiteName)
	}

	pages := content.Dir(root)
	count := 0
	err = pages.Walk(func(file string) error {
		count++
		page, err := pages.RenderFile(file)
		if err != nil {
			ok = false
			fmt.Fprintf(w, "❌ %s → %v\n", file, err)
			return nil
		}
		switch page.Path {
		case "index", "README":
			fmt.Fprintf(w, "⚠️  /page/%s (%s) is served only there, / is the built-in index\n", page.Path, file)
			return nil
		}
		fmt.Fprintf(w, "✅ /page/%s (%s)\n", page.Path, file)
		return nil
	})
	if err != nil {
		ok = false
		fmt.Fprintf(w, "❌ walk %s: %v\n", root, err)
	}

	switch {
	case !ok:
	case count == 0:
		fmt.Fprintf(w, "⚠️  no markdown files under %s\n", root)
	default:
		fmt.Fprintf(w, "✅ All %d pages rendered successfully.\n", count)
	}
	return ok
}
