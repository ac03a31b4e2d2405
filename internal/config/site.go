package config

// SiteConfig holds site-specific configuration for a single domain.
// This allows customizing crawl behavior per site: authenticated
// crawls, extra headers, or a narrower scope.
type SiteConfig struct {
	// Cookie is an HTTP cookie to send when crawling this site.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are custom HTTP headers to include in requests to this
	// site.
	Headers map[string]string `yaml:"headers,omitempty"`

	// Filter is a scope override applied when crawling this site, in
	// the same forms the --filter flag accepts.
	Filter string `yaml:"filter,omitempty"`

	// NoDiscover disables the discovery phase for this site.
	NoDiscover bool `yaml:"noDiscover,omitempty"`
}

// File represents the structure of the .sitegraph configuration file.
type File struct {
	// Sites maps domains to their site-specific configurations. Keys
	// are bare domains without scheme or www (e.g., "example.com").
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults contains default site configuration applied to all
	// sites unless overridden in the site-specific configuration.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the configuration for a specific domain,
// merging the site-specific configuration over the defaults.
func (cf *File) GetSiteConfig(domain string) SiteConfig {
	result := cf.Defaults

	if siteConfig, ok := cf.Sites[domain]; ok {
		if siteConfig.Cookie != "" {
			result.Cookie = siteConfig.Cookie
		}
		if siteConfig.Filter != "" {
			result.Filter = siteConfig.Filter
		}
		if siteConfig.NoDiscover {
			result.NoDiscover = true
		}
		if len(siteConfig.Headers) > 0 {
			// The struct copy above aliases the defaults' map, so merge
			// into a fresh one.
			merged := make(map[string]string, len(result.Headers)+len(siteConfig.Headers))
			for k, v := range result.Headers {
				merged[k] = v
			}
			for k, v := range siteConfig.Headers {
				merged[k] = v
			}
			result.Headers = merged
		}
	}

	return result
}
