// Package config loads, defaults, normalizes, and validates the TOML
// configuration for the Linguo service. Paths are expanded (including ~)
// before use and a .env file can override a small set of deployment keys.
package config
