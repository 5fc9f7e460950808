package sitefly

import (
	"encoding/xml"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

// feedSection is the content directory published as the RSS feed.
const feedSection = "articles"

const feedLimit = 20

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title   string `xml:"title"`
	Link    string `xml:"link"`
	PubDate string `xml:"pubDate,omitempty"`
	GUID    string `xml:"guid"`

	modTime time.Time
}

// handleFeed publishes the pages under articles/, newest file first.
// Pages that fail to render are left out of the feed.
func (a *App) handleFeed(c echo.Context) error {
	base := a.Config.URL
	var items []rssItem
	err := a.Pages.Walk(func(file string) error {
		if !strings.HasPrefix(file, feedSection+"/") {
			return nil
		}
		page, err := a.Pages.RenderFile(file)
		if err != nil {
			c.Logger().Warnf("feed: %v", err)
			return nil
		}
		u := PageURL(base, page.Path)
		item := rssItem{Title: page.Title, Link: u, GUID: u}
		if mt := a.Pages.ModTime(file); !mt.IsZero() {
			item.modTime = mt
			item.PubDate = mt.UTC().Format(time.RFC1123Z)
		}
		items = append(items, item)
		return nil
	})
	if err != nil {
		return err
	}
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].modTime.Equal(items[j].modTime) {
			return items[i].modTime.After(items[j].modTime)
		}
		return items[i].Link < items[j].Link
	})
	if len(items) > feedLimit {
		items = items[:feedLimit]
	}

	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       a.Site.SiteName,
			Link:        BuildURL(base, "/"),
			Description: a.Site.Description,
			Items:       items,
		},
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	if _, err := c.Response().Write([]byte(xml.Header)); err != nil {
		return err
	}
	return xml.NewEncoder(c.Response()).Encode(feed)
}
