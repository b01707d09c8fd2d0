// Package config provides configuration structures and utilities for webscour.
// It defines the crawl, index and search settings, their defaults, the
// optional per-host YAML file and the XDG locations of on-disk artifacts.
package config
