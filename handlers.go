package sitefly

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sitefly/sitefly/content"
	"github.com/sitefly/sitefly/views"
)

// HealthStatus is the payload of GET /health.
type HealthStatus struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
	App       string `json:"app"`
	Env       string `json:"env"`
}

func (a *App) layout(title string) views.Layout {
	return views.Layout{
		Site:       a.Site,
		Title:      title,
		LiveReload: a.reloader != nil,
	}
}

func (a *App) handleIndex(c echo.Context) error {
	return Render(c, a.Views.Index(views.IndexData{
		Layout:   a.layout("Welcome to " + a.Site.SiteName),
		Features: a.features,
		LastRead: lastRead(c),
	}))
}

func (a *App) handlePage(c echo.Context) error {
	pagePath := c.Param("*")
	page, err := a.Pages.Resolve(pagePath)
	if errors.Is(err, content.ErrNotFound) {
		return echo.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("page %q: %w", pagePath, err)
	}
	if err := rememberPage(c, page.Path); err != nil {
		c.Logger().Debugf("session save failed: %v", err)
	}
	d := views.PageData{Layout: a.layout(page.Title), Page: page}
	return Render(c, a.Views.Page(d))
}

func (a *App) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthStatus{
		Status:    "operational",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   a.Config.Version,
		App:       a.Site.SiteName,
		Env:       a.Config.Env,
	})
}

func (a *App) handleStylesheet(c echo.Context) error {
	return c.Blob(http.StatusOK, "text/css; charset=utf-8", a.stylesheet)
}

func (a *App) handleFavicon(c echo.Context) error {
	return c.File(filepath.Join(a.Config.StaticDir, "favicon.ico"))
}

// handleRobots generates robots.txt pointing crawlers at the sitemap.
func (a *App) handleRobots(c echo.Context) error {
	body := fmt.Sprintf("User-agent: *\nAllow: /\n\nSitemap: %s\n", BuildURL(a.Config.URL, "sitemap.xml"))
	return c.String(http.StatusOK, body)
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound(views.ErrorData{
			Layout: a.layout("Page Not Found"),
		}))
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		_ = RenderStatus(c, code, a.Views.ServerError(views.ErrorData{
			Layout: a.layout("Server Error"),
		}))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
