// Package config provides the configuration for PaletteVision: request
// defaults for extraction, engine tuning constants, and the HTTP server and
// batch settings. Configuration is read from a YAML file, by default
// $XDG_CONFIG_HOME/palettevision/config.yaml, and may be overridden from the
// environment and by command line flags.
package config
