package sitefly

import (
	"net/url"
	"path"
	"strings"
)

// BuildURL joins a base URL with path segments. A base that does not parse
// is returned as is.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join("/", u.Path, path.Join(pathSegments...))
	return u.String()
}

// PageURL returns the absolute URL of a content page.
func PageURL(base, pagePath string) string {
	return BuildURL(base, "page", strings.Trim(pagePath, "/"))
}
