// Package views renders the site's HTML pages. Markup lives in embedded
// html/template files; every page is exposed as a templ.Component so
// handlers render it the same way regardless of how it was built.
package views

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"regexp"

	"github.com/Masterminds/sprig/v3"
	"github.com/a-h/templ"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"

	"github.com/sitefly/sitefly/content"
	"github.com/sitefly/sitefly/site"
)

//go:embed templates/*.html
var templateFS embed.FS

// tocMinHeadings is the heading count from which a page gets a table of
// contents.
const tocMinHeadings = 3

// Layout is the data shared by every page.
type Layout struct {
	Site        site.Config
	Title       string
	Description string
	LiveReload  bool
}

// Feature is one card on the index page.
type Feature struct {
	Icon        string
	Title       string
	Description string
}

// IndexData feeds the index page.
type IndexData struct {
	Layout
	Features []Feature
	LastRead string
}

// PageData feeds a rendered content page.
type PageData struct {
	Layout
	Page    content.Page
	ShowTOC bool
}

// ErrorData feeds the 404 and 500 pages.
type ErrorData struct {
	Layout
	Message string
}

// DefaultFeatures are shown on the index page of a fresh site.
var DefaultFeatures = []Feature{
	{Icon: "🚀", Title: "Quick Setup", Description: "Get your site running in minutes"},
	{Icon: "⚙️", Title: "Easy Configuration", Description: "Site metadata in YAML, secrets in the environment"},
	{Icon: "🔄", Title: "Auto Deployment", Description: "Container build and CI pipeline for cloud deployment"},
	{Icon: "📦", Title: "Modular Content", Description: "Markdown pages kept in their own git module"},
}

// Views holds the parsed page templates.
type Views struct {
	pages map[string]*template.Template
	min   *minify.M
}

// New parses the embedded templates. With minifyHTML set, every rendered
// page is passed through the HTML minifier.
func New(minifyHTML bool) (*Views, error) {
	funcs := sprig.FuncMap()
	funcs["safeHTML"] = func(s string) template.HTML { return template.HTML(s) }

	v := &Views{pages: make(map[string]*template.Template)}
	for _, name := range []string{"index", "page", "404", "500"} {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("views: parse %s: %w", name, err)
		}
		v.pages[name] = t
	}
	if minifyHTML {
		v.min = NewMinifier()
	}
	return v, nil
}

// NewMinifier returns a minifier for HTML, CSS and JavaScript.
func NewMinifier() *minify.M {
	m := minify.New()
	m.AddFunc("text/html", html.Minify)
	m.AddFunc("text/css", css.Minify)
	m.AddFuncRegexp(regexp.MustCompile("^(application|text)/(x-)?(java|ecma)script$"), js.Minify)
	return m
}

// Index renders the home page.
func (v *Views) Index(d IndexData) templ.Component { return v.component("index", d) }

// Page renders a markdown content page.
func (v *Views) Page(d PageData) templ.Component {
	d.ShowTOC = len(d.Page.Headings) >= tocMinHeadings
	return v.component("page", d)
}

// NotFound renders the 404 page.
func (v *Views) NotFound(d ErrorData) templ.Component { return v.component("404", d) }

// ServerError renders the 500 page.
func (v *Views) ServerError(d ErrorData) templ.Component { return v.component("500", d) }

func (v *Views) component(name string, data any) templ.Component {
	t := v.pages[name]
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if v.min == nil {
			return t.ExecuteTemplate(w, "layout", data)
		}
		var buf bytes.Buffer
		if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
			return err
		}
		return v.min.Minify("text/html", w, &buf)
	})
}
