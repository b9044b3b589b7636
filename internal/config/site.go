package config

// Selectors configures the CSS-selector extractor for one site.
// Fields maps record field names to selectors evaluated inside each item.
type Selectors struct {
	// Item selects one listing item per record, e.g. ".product_pod".
	Item string `yaml:"item"`

	// Fields maps record field names to field selectors. A selector may
	// carry an attribute suffix "@attr" to read an attribute instead of
	// the element text, e.g. "h3 a@title".
	Fields map[string]string `yaml:"fields"`

	// Next selects the anchor linking to the next page, e.g. ".next a".
	Next string `yaml:"next,omitempty"`
}

// SiteConfig holds per-origin overrides: how to extract records from this
// site and how to talk to it.
type SiteConfig struct {
	// Profile names a built-in extractor profile ("books", "quotes").
	// Ignored when Selectors is set.
	Profile string `yaml:"profile,omitempty"`

	// Selectors configures a custom CSS-selector extractor for this site.
	Selectors *Selectors `yaml:"selectors,omitempty"`

	// PagePattern overrides the path pattern used to build a resume URL
	// from a page index, e.g. "catalogue/page-%d.html".
	PagePattern string `yaml:"pagePattern,omitempty"`

	// Cookie is an HTTP cookie sent with requests to this site.
	// Format: "name=value" or "name1=value1; name2=value2".
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are extra HTTP headers for requests to this site.
	Headers map[string]string `yaml:"headers,omitempty"`

	// MinDelayMS and MaxDelayMS override the politeness delay bounds for
	// this site, in milliseconds.
	MinDelayMS int `yaml:"minDelayMs,omitempty"`
	MaxDelayMS int `yaml:"maxDelayMs,omitempty"`
}

// File represents the .crawlpage site configuration file.
type File struct {
	// Sites maps origin URLs to their site-specific configuration.
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults applies to every origin unless overridden per site.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the configuration for an origin, merging the
// site-specific entry over the defaults.
func (cf *File) GetSiteConfig(origin string) SiteConfig {
	result := cf.Defaults

	// The struct copy above aliases the defaults' Headers map. Merging
	// site headers into it in place would leak them into every other
	// origin's config, so the merged config always gets its own map.
	if len(cf.Defaults.Headers) > 0 {
		result.Headers = make(map[string]string, len(cf.Defaults.Headers))
		for k, v := range cf.Defaults.Headers {
			result.Headers[k] = v
		}
	}

	siteConfig, ok := cf.Sites[origin]
	if !ok {
		return result
	}
	if siteConfig.Profile != "" {
		result.Profile = siteConfig.Profile
	}
	if siteConfig.Selectors != nil {
		result.Selectors = siteConfig.Selectors
	}
	if siteConfig.PagePattern != "" {
		result.PagePattern = siteConfig.PagePattern
	}
	if siteConfig.Cookie != "" {
		result.Cookie = siteConfig.Cookie
	}
	if len(siteConfig.Headers) > 0 {
		if result.Headers == nil {
			result.Headers = make(map[string]string)
		}
		for k, v := range siteConfig.Headers {
			result.Headers[k] = v
		}
	}
	if siteConfig.MinDelayMS > 0 {
		result.MinDelayMS = siteConfig.MinDelayMS
	}
	if siteConfig.MaxDelayMS > 0 {
		result.MaxDelayMS = siteConfig.MaxDelayMS
	}
	return result
}
