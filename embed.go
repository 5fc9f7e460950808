package sitefly

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sitefly/sitefly/views"
)

// EmbeddedAssets contains static assets shipped with the framework:
// sitefly.css and livereload.js.
//
//go:embed embedded/*
var EmbeddedAssets embed.FS

// embeddedHandler serves files from EmbeddedAssets under /static/.
func embeddedHandler() echo.HandlerFunc {
	sub, _ := fs.Sub(EmbeddedAssets, "embedded")
	return echo.WrapHandler(http.StripPrefix("/static/", http.FileServer(http.FS(sub))))
}

// minifiedAsset reads an embedded asset and minifies it once.
func minifiedAsset(name, mediatype string) ([]byte, error) {
	raw, err := EmbeddedAssets.ReadFile("embedded/" + name)
	if err != nil {
		return nil, err
	}
	return views.NewMinifier().Bytes(mediatype, raw)
}
