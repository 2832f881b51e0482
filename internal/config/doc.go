// Package config loads, normalizes, and validates tagger configuration.
//
// It supplies repository defaults, reads TOML files, and clamps values
// into their legal ranges. The Config type centralizes every knob the
// engine reads: per-field comparison weights, similarity thresholds for
// track matching and clustering, completeness-ignore flags, display
// names, and the lookup extras requested from the catalog.
//
// Always obtain settings through this package so downstream code receives
// sanitized values and clear validation errors.
package config
