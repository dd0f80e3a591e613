// Package config loads runtime configuration for the signing tool from
// environment variables, an optional YAML file and CLI flags, with precedence
// CLI flags > YAML config > Environment variables > Defaults.
package config
