// Package config loads, normalizes, and validates ozen configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// HF_TOKEN, including values from a .env file in the working directory. The
// Config type centralizes every knob the pipeline and CLI need so the mode,
// model backends and output layout are resolved in one pass.
//
// Command-line overrides are applied on top of a loaded Config and followed by
// Finalize so they receive the same normalization and validation.
package config
