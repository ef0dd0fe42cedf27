// Package main hosts the ozen CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration (file, .env, then explicitly
// set flags), runs dependency and sidecar preflight checks, and hands a wired
// pipeline.Runner the recording to process. Supporting commands scaffold and
// validate configuration, report environment status, and summarize finished
// runs from their metadata.json.
//
// Keep this package lean: new behavior belongs in the internal packages and
// is surfaced here through commands or flags.
package main
