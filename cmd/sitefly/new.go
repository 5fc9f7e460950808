package main

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/sitefly/sitefly/scaffold"
)

var projectNameRe = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_-]*$`)

var newCommand = &cli.Command{
	Name:      "new",
	Usage:     "Create a new sitefly project",
	ArgsUsage: "<name|module-path> [parent-dir]",
	Flags: []cli.Flag{
		&cli.BoolFlag{Name: "no-git", Usage: "do not initialize git repositories"},
		&cli.BoolFlag{Name: "no-tidy", Usage: "do not run go mod tidy"},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() < 1 {
			return cli.Exit("usage: sitefly new <name> [parent-dir]", 1)
		}
		parent := "."
		if c.NArg() > 1 {
			parent = c.Args().Get(1)
		}
		opts := newOptions{
			Git:  !c.Bool("no-git"),
			Tidy: !c.Bool("no-tidy"),
			Out:  c.App.Writer,
			Err:  c.App.ErrWriter,
		}
		if _, err := runNew(c.Args().First(), parent, opts); err != nil {
			return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
		}
		return nil
	},
}

type newOptions struct {
	Git  bool
	Tidy bool
	Out  io.Writer
	Err  io.Writer
}

// runNew scaffolds a project named after the last segment of name inside
// parent and returns its directory. Failing git or go commands are
// reported as warnings: the project is usable without them.
func runNew(name, parent string, opts newOptions) (string, error) {
	dirName := name
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		dirName = name[idx+1:]
	}
	if !projectNameRe.MatchString(dirName) {
		return "", fmt.Errorf("invalid project name %q: must start with a letter and contain only letters, numbers, hyphens, and underscores", dirName)
	}

	dir := filepath.Join(parent, dirName)
	data := scaffold.Data{
		ProjectName: dirName,
		ModuleName:  name,
		SiteName:    toTitle(dirName),
	}

	fmt.Fprintf(opts.Out, "Creating new sitefly project: %s\n\n", dir)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return "", err
	}
	err := scaffold.Render(dir, data, func(p string) {
		fmt.Fprintf(opts.Out, "  created %s\n", p)
	})
	if err != nil {
		return "", err
	}

	if _, err := writeSecretKey(filepath.Join(dir, ".env")); err != nil {
		return "", fmt.Errorf("generate secret key: %w", err)
	}
	fmt.Fprintf(opts.Out, "  created %s (SITE_SECRET_KEY)\n", filepath.Join(dir, ".env"))

	if opts.Git {
		pages := filepath.Join(dir, "pages")
		warn(opts.Err, run(pages, opts, "git", "init", "-q"),
			"could not initialize the pages repository")
		warn(opts.Err, commitAll(pages, opts, "Initial pages module setup"),
			"could not commit the pages module")
		warn(opts.Err, run(dir, opts, "git", "init", "-q"),
			"could not initialize the project repository")
		warn(opts.Err, run(dir, opts, "git", "config", "core.hooksPath", "githooks"),
			"could not install the pre-push hook")
	}

	if opts.Tidy {
		fmt.Fprintln(opts.Out, "\nResolving Go dependencies...")
		if err := run(dir, opts, "go", "mod", "tidy"); err != nil {
			fmt.Fprintf(opts.Err, "\nWarning: go mod tidy failed: %v\n", err)
			fmt.Fprintf(opts.Err, "Run 'cd %s && go mod tidy' manually after fixing.\n", dir)
		}
	}

	fmt.Fprintln(opts.Out)
	fmt.Fprintln(opts.Out, "Done! Next steps:")
	fmt.Fprintln(opts.Out)
	fmt.Fprintf(opts.Out, "  cd %s\n", dir)
	fmt.Fprintln(opts.Out, "  SITE_ENV=development go run .")
	fmt.Fprintln(opts.Out)
	fmt.Fprintln(opts.Out, "Write markdown under pages/ and edit site.yaml to describe your site.")
	fmt.Fprintln(opts.Out, "Review fly.toml, then run 'fly launch' to deploy.")
	return dir, nil
}

func run(dir string, opts newOptions, name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	cmd.Stdout = opts.Out
	cmd.Stderr = opts.Err
	return cmd.Run()
}

// commitAll commits everything in dir with a fixed identity so it works on
// machines without a configured git user.
func commitAll(dir string, opts newOptions, msg string) error {
	if err := run(dir, opts, "git", "add", "."); err != nil {
		return err
	}
	cmd := exec.Command("git", "commit", "-q", "-m", msg)
	cmd.Dir = dir
	cmd.Stdout = opts.Out
	cmd.Stderr = opts.Err
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME=sitefly", "GIT_AUTHOR_EMAIL=sitefly@localhost",
		"GIT_COMMITTER_NAME=sitefly", "GIT_COMMITTER_EMAIL=sitefly@localhost",
	)
	return cmd.Run()
}

func warn(w io.Writer, err error, msg string) {
	if err != nil {
		fmt.Fprintf(w, "Warning: %s: %v\n", msg, err)
	}
}

// toTitle converts a hyphenated or underscored name to a title-case string.
// e.g. "my-site" -> "My Site", "mysite" -> "Mysite"
func toTitle(s string) string {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == '-' || r == '_' })
	for i, p := range parts {
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}
