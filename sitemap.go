package sitefly

import (
	"encoding/xml"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sitefly/sitefly/content"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc string `xml:"loc"`
}

// handleSitemap lists the index and every markdown page under the content
// root. Pages are discovered on each request, like they are rendered.
func (a *App) handleSitemap(c echo.Context) error {
	base := a.Config.URL
	urls := []sitemapURL{{Loc: BuildURL(base, "/")}}
	seen := make(map[string]bool)
	err := a.Pages.Walk(func(file string) error {
		name := content.PagePath(file)
		if seen[name] {
			return nil
		}
		seen[name] = true
		urls = append(urls, sitemapURL{Loc: PageURL(base, name)})
		return nil
	})
	if err != nil {
		return err
	}
	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	if _, err := c.Response().Write([]byte(xml.Header)); err != nil {
		return err
	}
	return xml.NewEncoder(c.Response()).Encode(sitemap)
}
