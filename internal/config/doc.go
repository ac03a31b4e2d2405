// Package config defines the configuration for sitegraph.
// It holds run options populated from CLI flags, loads per-site
// settings from the optional .sitegraph YAML file, and resolves XDG
// directory paths.
package config
