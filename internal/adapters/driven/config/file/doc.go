// Package file provides the TOML-backed ConfigStore.
// Configuration lives in config.toml inside the config directory (~/.vecdocs by default).
package file
