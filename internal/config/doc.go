// Package config loads, validates, and defaults the TOML configuration for
// the anisync daemon and CLI.
//
// Configuration resolves from an explicit path or ~/.config/anisync/
// config.toml; a missing file yields the embedded defaults. Paths are
// expanded and normalized before validation so downstream code never sees a
// tilde or relative path.
package config
