package scaffold

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestOutputPath(t *testing.T) {
	tests := map[string]string{
		"templates":                                   "",
		"templates/main.go.tmpl":                      "main.go",
		"templates/dotenv.tmpl":                       ".env.example",
		"templates/gitignore.tmpl":                    ".gitignore",
		"templates/pages/gitignore.tmpl":              "pages/.gitignore",
		"templates/static/gitkeep.tmpl":               "static/.gitkeep",
		"templates/.github/workflows/deploy.yml.tmpl": ".github/workflows/deploy.yml",
	}
	for in, want := range tests {
		if got := OutputPath(in); got != want {
			t.Errorf("OutputPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRender(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "mysite")
	var created []string
	err := Render(dst, Data{ProjectName: "mysite", ModuleName: "github.com/me/mysite", SiteName: "Mysite"}, func(p string) {
		created = append(created, p)
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	for _, f := range []string{
		"go.mod", "main.go", "site.yaml", ".env.example", ".gitignore",
		"Dockerfile", "fly.toml", "README.md", ".github/workflows/deploy.yml",
		"githooks/pre-push", "static/.gitkeep",
		"pages/README.md", "pages/.gitignore",
		"pages/docs/index.md", "pages/docs/getting-started.md",
		"pages/articles/index.md", "pages/articles/welcome.md",
		"templates/page.md",
	} {
		if _, err := os.Stat(filepath.Join(dst, f)); err != nil {
			t.Errorf("missing %s: %v", f, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dst, "pages", "templates")); err == nil {
		t.Error("page template must live outside the content root")
	}
	if len(created) < 18 {
		t.Errorf("created callback saw %d files", len(created))
	}

	gomod, _ := os.ReadFile(filepath.Join(dst, "go.mod"))
	if !strings.HasPrefix(string(gomod), "module github.com/me/mysite\n") {
		t.Errorf("go.mod = %q", gomod)
	}
	fly, _ := os.ReadFile(filepath.Join(dst, "fly.toml"))
	if !strings.Contains(string(fly), "app = 'mysite'") {
		t.Errorf("fly.toml missing app name:\n%s", fly)
	}
	wf, _ := os.ReadFile(filepath.Join(dst, ".github/workflows/deploy.yml"))
	if !strings.Contains(string(wf), "${{ secrets.FLY_API_TOKEN }}") {
		t.Errorf("workflow secrets not preserved:\n%s", wf)
	}
	info, err := os.Stat(filepath.Join(dst, "githooks/pre-push"))
	if err == nil && info.Mode().Perm()&0o100 == 0 {
		t.Errorf("pre-push hook not executable: %v", info.Mode())
	}
}

func TestRenderExistingDir(t *testing.T) {
	dst := t.TempDir()
	if err := Render(dst, Data{ProjectName: "x"}, nil); err == nil {
		t.Fatal("expected error for existing directory")
	}
}
