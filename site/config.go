// Package site loads the static metadata describing a deployed site
// instance from an optional YAML file.
package site

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the site configuration. It is loaded once at startup and never
// mutated afterwards.
type Config struct {
	SiteName     string            `yaml:"site_name"`
	Description  string            `yaml:"description"`
	ContactEmail string            `yaml:"contact_email"`
	SocialLinks  map[string]string `yaml:"social_links"`
}

// Default returns the configuration used when no usable file exists.
func Default() Config {
	return Config{
		SiteName:     "Flask Site",
		Description:  "A content-driven site",
		ContactEmail: "contact@example.com",
		SocialLinks: map[string]string{
			"github": "https://github.com/yourusername",
		},
	}
}

// Load reads the YAML file at path. A missing or invalid file yields
// Default(); onErr, when non-nil, is told why.
func Load(path string, onErr func(error)) Config {
	cfg, err := Read(path)
	if err != nil {
		if onErr != nil {
			onErr(err)
		}
		return Default()
	}
	return cfg
}

// Read is the strict variant of Load: it reports read and parse failures
// instead of falling back. Keys missing from the file take their default.
func Read(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read site config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse site config %s: %w", path, err)
	}
	if cfg.isZero() {
		return Config{}, fmt.Errorf("parse site config %s: %w", path, ErrEmpty)
	}
	cfg.fillDefaults()
	return cfg, nil
}

// ErrEmpty is reported for a file that parses to nothing.
var ErrEmpty = errors.New("empty document")

func (c *Config) isZero() bool {
	return c.SiteName == "" && c.Description == "" && c.ContactEmail == "" && c.SocialLinks == nil
}

func (c *Config) fillDefaults() {
	d := Default()
	if c.SiteName == "" {
		c.SiteName = d.SiteName
	}
	if c.Description == "" {
		c.Description = d.Description
	}
	if c.ContactEmail == "" {
		c.ContactEmail = d.ContactEmail
	}
	if c.SocialLinks == nil {
		c.SocialLinks = d.SocialLinks
	}
}
