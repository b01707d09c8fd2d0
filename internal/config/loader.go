package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the name of the site file looked up in the working
// and home directories.
const DefaultConfigFile = ".webscour"

// xdgConfigFile is the site file path relative to the XDG config dirs.
var xdgConfigFile = filepath.Join(AppName, "config.yaml")

// ErrConfigNotFound is returned when the site file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// ErrInvalidSiteConfig is returned for a site file that parses but cannot
// drive a crawl: a malformed host key or a negative budget.
var ErrInvalidSiteConfig = errors.New("invalid site configuration")

// LoadConfigFile reads a site file. Unknown keys are rejected so a typo in
// a budget name does not silently fall back to the global flags. Host keys
// are lowercased to match the crawl scope. An empty file is a valid File.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cf); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	if err := checkBudget("defaults", cf.Defaults); err != nil {
		return nil, err
	}

	sites := make(map[string]SiteConfig, len(cf.Sites))
	for key, site := range cf.Sites {
		host := strings.ToLower(strings.TrimSpace(key))
		if host == "" || strings.ContainsAny(host, "/:") {
			return nil, fmt.Errorf("%w: site key %q must be a bare host name", ErrInvalidSiteConfig, key)
		}
		if _, dup := sites[host]; dup {
			return nil, fmt.Errorf("%w: host %q is listed twice", ErrInvalidSiteConfig, host)
		}
		if err := checkBudget(host, site); err != nil {
			return nil, err
		}
		sites[host] = site
	}
	cf.Sites = sites

	return &cf, nil
}

func checkBudget(name string, site SiteConfig) error {
	if site.MaxPages < 0 {
		return fmt.Errorf("%w: %s: max_pages must be non-negative", ErrInvalidSiteConfig, name)
	}
	if site.Workers < 0 {
		return fmt.Errorf("%w: %s: workers must be non-negative", ErrInvalidSiteConfig, name)
	}
	return nil
}

// FindConfigFile returns the site file to load, or "" if there is none.
// An explicit configPath is used only if it exists. Otherwise the lookup
// order is .webscour in the working directory, webscour/config.yaml in the
// XDG config dirs, then .webscour in the home directory.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if fileExists(configPath) {
			return configPath
		}
		return ""
	}

	if cwd, err := os.Getwd(); err == nil {
		if p := filepath.Join(cwd, DefaultConfigFile); fileExists(p) {
			return p
		}
	}

	if p, err := xdg.SearchConfigFile(xdgConfigFile); err == nil {
		return p
	}

	if home, err := os.UserHomeDir(); err == nil {
		if p := filepath.Join(home, DefaultConfigFile); fileExists(p) {
			return p
		}
	}

	return ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
