package config

// SiteConfig holds per-host crawl settings.
type SiteConfig struct {
	// Cookie is an HTTP cookie sent to this host.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are extra HTTP headers sent to this host.
	Headers map[string]string `yaml:"headers,omitempty"`

	// UserAgent overrides the global User-Agent for this host.
	UserAgent string `yaml:"user_agent,omitempty"`

	// MaxPages overrides the global crawl budget for this host.
	// If zero, the global MaxPages is used.
	MaxPages int `yaml:"max_pages,omitempty"`

	// Workers overrides the global worker count for this host.
	Workers int `yaml:"workers,omitempty"`
}

// File represents the structure of the .webscour configuration file.
type File struct {
	// Sites maps host names (no scheme, no port) to their settings.
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults applies to every host unless overridden in Sites.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the configuration for a host, merging the
// host-specific entry over the defaults. A nil File yields a zero SiteConfig.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	if cf == nil {
		return SiteConfig{}
	}

	result := cf.Defaults

	// Copy so callers never mutate the shared defaults map.
	if len(cf.Defaults.Headers) > 0 {
		result.Headers = make(map[string]string, len(cf.Defaults.Headers))
		for k, v := range cf.Defaults.Headers {
			result.Headers[k] = v
		}
	}

	siteConfig, ok := cf.Sites[host]
	if !ok {
		return result
	}

	if siteConfig.Cookie != "" {
		result.Cookie = siteConfig.Cookie
	}
	if siteConfig.UserAgent != "" {
		result.UserAgent = siteConfig.UserAgent
	}
	if siteConfig.MaxPages != 0 {
		result.MaxPages = siteConfig.MaxPages
	}
	if siteConfig.Workers != 0 {
		result.Workers = siteConfig.Workers
	}
	if len(siteConfig.Headers) > 0 {
		if result.Headers == nil {
			result.Headers = make(map[string]string)
		}
		for k, v := range siteConfig.Headers {
			result.Headers[k] = v
		}
	}

	return result
}

// Budget returns the crawl budget and worker count for host, falling back
// to the given globals when the file does not override them.
func (cf *File) Budget(host string, maxPages, workers int) (int, int) {
	site := cf.GetSiteConfig(host)
	if site.MaxPages > 0 {
		maxPages = site.MaxPages
	}
	if site.Workers > 0 {
		workers = site.Workers
	}
	return maxPages, workers
}
