// Package content maps logical page paths to markdown files under a content
// root and renders them.
package content

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"
	"syscall"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/sitefly/sitefly/markdown"
)

// ErrNotFound is returned when no candidate file exists for a page path.
var ErrNotFound = errors.New("content: page not found")

// Page is a resolved and rendered content file.
type Page struct {
	Path string // requested page path, without surrounding slashes
	File string // matched candidate, relative to the content root
	markdown.Document
}

// Resolver probes a content root for page files. Every call reads and
// renders from the filesystem; nothing is cached.
type Resolver struct {
	fsys fs.FS
	md   *markdown.Renderer
}

// NewResolver returns a Resolver over fsys.
func NewResolver(fsys fs.FS, md *markdown.Renderer) *Resolver {
	if md == nil {
		md = markdown.New("")
	}
	return &Resolver{fsys: fsys, md: md}
}

// Dir returns a Resolver rooted at the directory root.
func Dir(root string) *Resolver {
	return NewResolver(os.DirFS(root), nil)
}

// Candidates lists the files probed for a page path, in priority order.
func Candidates(name string) []string {
	return []string{
		name + ".md",
		path.Join(name, "index.md"),
		path.Join(name, "README.md"),
	}
}

// Resolve renders the first candidate file that exists for pagePath.
//
// The first existing candidate wins even if reading or rendering it fails:
// the error is returned and later candidates are not tried, so a broken
// file is never reported as a missing page.
func (r *Resolver) Resolve(pagePath string) (Page, error) {
	name := strings.Trim(pagePath, "/")
	if name == "" || !fs.ValidPath(name) {
		return Page{}, ErrNotFound
	}
	for _, candidate := range Candidates(name) {
		info, err := fs.Stat(r.fsys, candidate)
		if isNotExist(err) {
			continue
		}
		if err != nil {
			return Page{}, fmt.Errorf("stat %s: %w", candidate, err)
		}
		if info.IsDir() {
			continue
		}
		return r.render(name, candidate)
	}
	return Page{}, ErrNotFound
}

// RenderFile renders a single file relative to the root, bypassing
// candidate resolution.
func (r *Resolver) RenderFile(file string) (Page, error) {
	return r.render(PagePath(file), file)
}

// PagePath is the inverse of Candidates: it returns the page path a file
// is served under. A root index.md or README.md has no parent page path and
// is served under its own name.
func PagePath(file string) string {
	name := strings.TrimSuffix(file, ".md")
	switch path.Base(name) {
	case "index", "README":
		if dir := path.Dir(name); dir != "." {
			name = dir
		}
	}
	return name
}

// Walk calls fn for every markdown file under the root. A missing root
// has no files.
func (r *Resolver) Walk(fn func(file string) error) error {
	return fs.WalkDir(r.fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == "." && errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			if p != "." && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		if path.Ext(p) != ".md" {
			return nil
		}
		return fn(p)
	})
}

// ModTime returns the modification time of file, or the zero time when it
// cannot be determined.
func (r *Resolver) ModTime(file string) time.Time {
	info, err := fs.Stat(r.fsys, file)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}

func (r *Resolver) render(name, file string) (Page, error) {
	src, err := fs.ReadFile(r.fsys, file)
	if err != nil {
		return Page{}, fmt.Errorf("read %s: %w", file, err)
	}
	doc, err := r.md.Render(src)
	if err != nil {
		return Page{}, fmt.Errorf("render %s: %w", file, err)
	}
	if doc.Title == "" {
		doc.Title = TitleFromPath(name)
	}
	return Page{Path: name, File: file, Document: doc}, nil
}

// TitleFromPath derives a display title from the last path segment:
// "guides/getting-started" becomes "Getting Started".
func TitleFromPath(name string) string {
	base := path.Base(name)
	if base == "." || base == "/" {
		return ""
	}
	words := strings.FieldsFunc(base, func(r rune) bool {
		return r == '-' || r == '_' || r == ' '
	})
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToTitle(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

// isNotExist treats "a path component is a regular file" like a missing
// file: "guide/index.md" cannot exist when "guide" is a file.
func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR)
}
