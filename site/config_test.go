package site

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "site.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadMissingFileUsesDefault(t *testing.T) {
	var reported error
	cfg := Load(filepath.Join(t.TempDir(), "nope.yaml"), func(err error) { reported = err })
	if cfg.SiteName != "Flask Site" {
		t.Fatalf("SiteName = %q, want %q", cfg.SiteName, "Flask Site")
	}
	if !errors.Is(reported, os.ErrNotExist) {
		t.Fatalf("expected not-exist error to be reported, got %v", reported)
	}
}

func TestLoadInvalidYAMLUsesDefault(t *testing.T) {
	path := writeConfig(t, "site_name: [unterminated\n")
	cfg := Load(path, nil)
	if cfg.SiteName != "Flask Site" {
		t.Fatalf("SiteName = %q, want default", cfg.SiteName)
	}
	if len(cfg.SocialLinks) == 0 {
		t.Fatal("default config should carry social links")
	}
}

func TestLoadEmptyFileUsesDefault(t *testing.T) {
	path := writeConfig(t, "")
	if _, err := Read(path); !errors.Is(err, ErrEmpty) {
		t.Fatalf("Read(empty) error = %v, want ErrEmpty", err)
	}
	if cfg := Load(path, nil); cfg.SiteName != "Flask Site" {
		t.Fatalf("SiteName = %q, want default", cfg.SiteName)
	}
}

func TestLoadValidFile(t *testing.T) {
	path := writeConfig(t, `site_name: Field Notes
description: Notes from the field
contact_email: hello@fieldnotes.dev
social_links:
  github: https://github.com/fieldnotes
  mastodon: https://hachyderm.io/@fieldnotes
`)
	cfg := Load(path, func(err error) { t.Fatalf("unexpected error: %v", err) })
	if cfg.SiteName != "Field Notes" {
		t.Errorf("SiteName = %q", cfg.SiteName)
	}
	if cfg.Description != "Notes from the field" {
		t.Errorf("Description = %q", cfg.Description)
	}
	if cfg.ContactEmail != "hello@fieldnotes.dev" {
		t.Errorf("ContactEmail = %q", cfg.ContactEmail)
	}
	if got := cfg.SocialLinks["mastodon"]; got != "https://hachyderm.io/@fieldnotes" {
		t.Errorf("SocialLinks[mastodon] = %q", got)
	}
}

func TestLoadPartialFileFillsMissingKeys(t *testing.T) {
	path := writeConfig(t, "site_name: Only A Name\n")
	cfg := Load(path, nil)
	if cfg.SiteName != "Only A Name" {
		t.Errorf("SiteName = %q", cfg.SiteName)
	}
	d := Default()
	if cfg.Description != d.Description || cfg.ContactEmail != d.ContactEmail {
		t.Errorf("missing keys not defaulted: %+v", cfg)
	}
	if cfg.SocialLinks == nil {
		t.Error("SocialLinks should default when absent")
	}
}
