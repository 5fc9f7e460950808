// Package scaffold holds the embedded project templates used by
// `sitefly new` and renders them into a target directory.
package scaffold

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"text/template"
)

// Templates contains all scaffold template files.
// Files use Go text/template syntax and have a .tmpl suffix.
//
//go:embed all:templates
var Templates embed.FS

const root = "templates"

// Data holds the template variables passed to every scaffold template.
type Data struct {
	ProjectName string // directory and fly app name
	ModuleName  string // Go module path
	SiteName    string // display name written to site.yaml
}

// dotfiles maps template base names to the dotfile they are written as.
// Keeping them undotted in the tree keeps tooling from acting on them.
var dotfiles = map[string]string{
	"dotenv":    ".env.example",
	"gitignore": ".gitignore",
	"gitkeep":   ".gitkeep",
}

// Render executes every template into dst, which must not exist yet.
// created is called with the path of each written file.
func Render(dst string, data Data, created func(string)) error {
	if _, err := os.Stat(dst); err == nil {
		return fmt.Errorf("directory %q already exists", dst)
	}

	return fs.WalkDir(Templates, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		outPath := filepath.Join(dst, filepath.FromSlash(OutputPath(p)))
		if d.IsDir() {
			return os.MkdirAll(outPath, 0o755)
		}

		src, err := Templates.ReadFile(p)
		if err != nil {
			return fmt.Errorf("read %s: %w", p, err)
		}
		tmpl, err := template.New(path.Base(p)).Parse(string(src))
		if err != nil {
			return fmt.Errorf("parse template %s: %w", p, err)
		}

		mode := os.FileMode(0o644)
		if strings.HasPrefix(p, root+"/githooks/") {
			mode = 0o755
		}
		f, err := os.OpenFile(outPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, mode)
		if err != nil {
			return fmt.Errorf("create %s: %w", outPath, err)
		}
		if err := tmpl.Execute(f, data); err != nil {
			f.Close()
			return fmt.Errorf("execute template %s: %w", p, err)
		}
		if err := f.Close(); err != nil {
			return err
		}
		if created != nil {
			created(outPath)
		}
		return nil
	})
}

// OutputPath maps a template path inside Templates to its slash-separated
// path in a generated project.
func OutputPath(p string) string {
	rel := strings.TrimPrefix(strings.TrimPrefix(p, root), "/")
	rel = strings.TrimSuffix(rel, ".tmpl")
	if name, ok := dotfiles[path.Base(rel)]; ok {
		rel = path.Join(path.Dir(rel), name)
	}
	return rel
}
