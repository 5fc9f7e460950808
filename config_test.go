package sitefly

import (
	"testing"
	"time"
)

func TestConfigDefaults(t *testing.T) {
	var c Config
	c.setDefaults()

	if c.Env != EnvProduction || c.Debug() {
		t.Errorf("Env = %q, Debug = %v", c.Env, c.Debug())
	}
	if c.SecretKey != DefaultSecretKey {
		t.Errorf("SecretKey = %q", c.SecretKey)
	}
	if c.Port != 8000 || c.Addr() != ":8000" {
		t.Errorf("Port = %d, Addr = %q", c.Port, c.Addr())
	}
	if c.URL != "http://localhost:8000" {
		t.Errorf("URL = %q", c.URL)
	}
	if c.SiteConfigPath != "site.yaml" || c.ContentRoot != "pages" || c.StaticDir != "static" {
		t.Errorf("paths = %q %q %q", c.SiteConfigPath, c.ContentRoot, c.StaticDir)
	}
	if c.AnalyticsEnabled || c.AnalyticsDatabasePath != "data/analytics.db" || c.AnalyticsRetention != 365 {
		t.Errorf("analytics = %v %q %d", c.AnalyticsEnabled, c.AnalyticsDatabasePath, c.AnalyticsRetention)
	}
	if c.ShutdownTimeout != 10*time.Second {
		t.Errorf("ShutdownTimeout = %v", c.ShutdownTimeout)
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("SITE_ENV", "development")
	t.Setenv("SITE_SECRET_KEY", "s3cret")
	t.Setenv("PORT", "9090")
	t.Setenv("SITE_URL", "")
	t.Setenv("SITE_CONTENT_ROOT", "content")
	t.Setenv("SITE_ANALYTICS", "true")
	t.Setenv("SITE_ANALYTICS_DB", "")
	t.Setenv("SITE_COOKIE_SECURE", "1")

	c, err := ConfigFromEnv()
	if err != nil {
		t.Fatalf("ConfigFromEnv: %v", err)
	}
	if !c.Debug() || c.SecretKey != "s3cret" || c.Port != 9090 {
		t.Errorf("config = %+v", c)
	}
	if c.URL != "http://localhost:9090" {
		t.Errorf("URL = %q", c.URL)
	}
	if c.ContentRoot != "content" {
		t.Errorf("ContentRoot = %q", c.ContentRoot)
	}
	if !c.AnalyticsEnabled || c.AnalyticsDatabasePath != "data/analytics.db" {
		t.Errorf("analytics = %v %q", c.AnalyticsEnabled, c.AnalyticsDatabasePath)
	}
	if !c.CookieSecure {
		t.Error("CookieSecure = false")
	}
}

func TestConfigFromEnvInvalidPort(t *testing.T) {
	t.Setenv("PORT", "eighty")
	if _, err := ConfigFromEnv(); err == nil {
		t.Error("expected error for non-numeric PORT")
	}
}

func TestEnvOr(t *testing.T) {
	t.Setenv("SITEFLY_TEST_VALUE", "")
	if got := EnvOr("SITEFLY_TEST_VALUE", "fallback"); got != "fallback" {
		t.Errorf("EnvOr(empty) = %q", got)
	}
	t.Setenv("SITEFLY_TEST_VALUE", "set")
	if got := EnvOr("SITEFLY_TEST_VALUE", "fallback"); got != "set" {
		t.Errorf("EnvOr(set) = %q", got)
	}
}

func TestBuildURL(t *testing.T) {
	tests := []struct {
		base string
		segs []string
		want string
	}{
		{"https://example.com", []string{"sitemap.xml"}, "https://example.com/sitemap.xml"},
		{"https://example.com/", []string{"/"}, "https://example.com/"},
		{"https://example.com/sub", []string{"page", "guide"}, "https://example.com/sub/page/guide"},
	}
	for _, tt := range tests {
		if got := BuildURL(tt.base, tt.segs...); got != tt.want {
			t.Errorf("BuildURL(%q, %v) = %q, want %q", tt.base, tt.segs, got, tt.want)
		}
	}
	if got := PageURL("https://example.com", "/docs/api/"); got != "https://example.com/page/docs/api" {
		t.Errorf("PageURL = %q", got)
	}
}
