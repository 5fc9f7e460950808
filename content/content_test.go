package content

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"testing/fstest"
	"unicode/utf8"
)

// brokenFS reports the file named broken as existing but unreadable.
type brokenFS struct {
	fstest.MapFS
	broken string
}

func (b brokenFS) Open(name string) (fs.File, error) {
	if name == b.broken {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrPermission}
	}
	return b.MapFS.Open(name)
}

func (b brokenFS) ReadFile(name string) ([]byte, error) {
	if name == b.broken {
		return nil, &fs.PathError{Op: "read", Path: name, Err: fs.ErrPermission}
	}
	return b.MapFS.ReadFile(name)
}

func file(body string) *fstest.MapFile {
	return &fstest.MapFile{Data: []byte(body), Mode: 0o644}
}

func TestResolveCandidateOrder(t *testing.T) {
	fsys := fstest.MapFS{
		"guide.md":                file("# From guide.md\n"),
		"guide/index.md":          file("# From guide/index.md\n"),
		"guide/README.md":         file("# From guide/README.md\n"),
		"docs/index.md":           file("# Docs index\n"),
		"docs/README.md":          file("# Docs readme\n"),
		"articles/README.md":      file("# Articles readme\n"),
		"articles/first-entry.md": file("first\n"),
	}
	r := NewResolver(fsys, nil)

	tests := []struct {
		path      string
		wantFile  string
		wantTitle string
	}{
		{"guide", "guide.md", "From guide.md"},
		{"docs", "docs/index.md", "Docs index"},
		{"articles", "articles/README.md", "Articles readme"},
		{"/articles/first-entry/", "articles/first-entry.md", "First Entry"},
	}
	for _, tt := range tests {
		page, err := r.Resolve(tt.path)
		if err != nil {
			t.Fatalf("Resolve(%q) error: %v", tt.path, err)
		}
		if page.File != tt.wantFile {
			t.Errorf("Resolve(%q).File = %q, want %q", tt.path, page.File, tt.wantFile)
		}
		if page.Title != tt.wantTitle {
			t.Errorf("Resolve(%q).Title = %q, want %q", tt.path, page.Title, tt.wantTitle)
		}
	}
}

func TestResolveRendersTablesAndCode(t *testing.T) {
	fsys := fstest.MapFS{
		"setup.md": file("# Setup\n\n| Key | Value |\n|---|---|\n| PORT | 8000 |\n\n```sh\nflyctl deploy\n```\n"),
	}
	page, err := NewResolver(fsys, nil).Resolve("setup")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	for _, want := range []string{"<table>", "<td>PORT</td>", "<pre", "flyctl"} {
		if !strings.Contains(page.HTML, want) {
			t.Errorf("rendered page missing %q: %q", want, page.HTML)
		}
	}
}

func TestResolveNotFound(t *testing.T) {
	fsys := fstest.MapFS{
		"guide.md": file("# Guide\n"),
	}
	r := NewResolver(fsys, nil)
	for _, p := range []string{"missing", "guide/deeper", "", "/", "../etc/passwd", "a//b", "guide/../guide"} {
		if _, err := r.Resolve(p); !errors.Is(err, ErrNotFound) {
			t.Errorf("Resolve(%q) error = %v, want ErrNotFound", p, err)
		}
	}
}

func TestResolveSkipsDirectoryCandidate(t *testing.T) {
	fsys := fstest.MapFS{
		"odd.md/placeholder.txt": file("x"),
		"odd/README.md":          file("# Odd readme\n"),
	}
	page, err := NewResolver(fsys, nil).Resolve("odd")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if page.File != "odd/README.md" {
		t.Errorf("File = %q, want odd/README.md", page.File)
	}
}

func TestResolveUnreadableCandidateDoesNotFallThrough(t *testing.T) {
	fsys := brokenFS{
		MapFS: fstest.MapFS{
			"notes.md":       file("# Broken\n"),
			"notes/index.md": file("# Fallback that must not be used\n"),
		},
		broken: "notes.md",
	}
	_, err := NewResolver(fsys, nil).Resolve("notes")
	if err == nil {
		t.Fatal("expected an error for an unreadable candidate")
	}
	if errors.Is(err, ErrNotFound) {
		t.Fatalf("unreadable candidate reported as not found: %v", err)
	}
	if !errors.Is(err, fs.ErrPermission) {
		t.Errorf("error should wrap the read failure, got %v", err)
	}
}

func TestResolveRereadsEveryCall(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "live.md")
	if err := os.WriteFile(path, []byte("first version\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	r := Dir(root)
	page, err := r.Resolve("live")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if !strings.Contains(page.HTML, "first version") {
		t.Fatalf("unexpected HTML: %q", page.HTML)
	}
	if err := os.WriteFile(path, []byte("second version\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	page, err = r.Resolve("live")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if !strings.Contains(page.HTML, "second version") {
		t.Errorf("edit not picked up: %q", page.HTML)
	}
}

func TestResolveFileAsDirectoryComponent(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "plain"), []byte("not markdown"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Dir(root).Resolve("plain"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Resolve(plain) error = %v, want ErrNotFound", err)
	}
}

func TestWalkListsMarkdownFiles(t *testing.T) {
	fsys := fstest.MapFS{
		"README.md":           file("# Pages\n"),
		"docs/index.md":       file("# Docs\n"),
		"docs/logo.png":       file("png"),
		"articles/one.md":     file("one\n"),
		".git/description.md": file("ignored\n"),
	}
	var got []string
	err := NewResolver(fsys, nil).Walk(func(f string) error {
		got = append(got, f)
		return nil
	})
	if err != nil {
		t.Fatalf("Walk error: %v", err)
	}
	sort.Strings(got)
	want := []string{"README.md", "articles/one.md", "docs/index.md"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Walk visited %v, want %v", got, want)
	}
}

func TestRenderFile(t *testing.T) {
	fsys := fstest.MapFS{
		"docs/deploy-guide/index.md": file("Deploying.\n"),
	}
	page, err := NewResolver(fsys, nil).RenderFile("docs/deploy-guide/index.md")
	if err != nil {
		t.Fatalf("RenderFile error: %v", err)
	}
	if page.Path != "docs/deploy-guide" || page.Title != "Deploy Guide" {
		t.Errorf("page = %q / %q", page.Path, page.Title)
	}
}

func TestTitleFromPath(t *testing.T) {
	tests := map[string]string{
		"getting-started":      "Getting Started",
		"guides/how_to_deploy": "How To Deploy",
		"about":                "About",
		"über-uns":             "Über Uns",
		"wiki/été":             "Été",
		".":                    "",
	}
	for in, want := range tests {
		if got := TitleFromPath(in); got != want {
			t.Errorf("TitleFromPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestResolveNonASCIITitle(t *testing.T) {
	fsys := fstest.MapFS{
		"über.md": file("No heading here.\n"),
	}
	page, err := NewResolver(fsys, nil).Resolve("über")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if !utf8.ValidString(page.Title) || page.Title != "Über" {
		t.Errorf("Title = %q, want %q", page.Title, "Über")
	}
}

func TestPagePathResolvesBack(t *testing.T) {
	fsys := fstest.MapFS{
		"README.md":          file("# Pages\n"),
		"index.md":           file("# Home\n"),
		"docs/api/README.md": file("# API\n"),
	}
	r := NewResolver(fsys, nil)
	for f := range fsys {
		page, err := r.Resolve(PagePath(f))
		if err != nil {
			t.Errorf("Resolve(PagePath(%q)) error: %v", f, err)
			continue
		}
		if page.File != f {
			t.Errorf("Resolve(PagePath(%q)) matched %q", f, page.File)
		}
	}
}

func TestPagePath(t *testing.T) {
	tests := map[string]string{
		"guide.md":              "guide",
		"docs/index.md":         "docs",
		"docs/api/README.md":    "docs/api",
		"index.md":              "index",
		"README.md":             "README",
		"articles/first-one.md": "articles/first-one",
	}
	for in, want := range tests {
		if got := PagePath(in); got != want {
			t.Errorf("PagePath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestWalkMissingRoot(t *testing.T) {
	err := Dir(t.TempDir() + "/missing").Walk(func(string) error {
		t.Error("unexpected file")
		return nil
	})
	if err != nil {
		t.Errorf("Walk on missing root = %v, want nil", err)
	}
}
