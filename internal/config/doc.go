// Package config holds the crawler configuration: defaults, validation,
// XDG paths, and the optional YAML per-site configuration file.
package config
