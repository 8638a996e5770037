// Package config loads, normalizes, and validates tonehub configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// TONEHUB_CATALOG_URL and TONEHUB_UNLOCK_KEY. The Config type centralizes every
// knob the CLI and the local API server need: where the catalog lives, how the
// filter engine truncates and classifies, how previews are synthesized, and
// which transfer strategy the deployment uses for remote-storage assets.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths and clear validation errors.
package config
