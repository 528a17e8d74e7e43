// Package config loads, normalizes, and validates ripsharp's TOML
// configuration.
package config
