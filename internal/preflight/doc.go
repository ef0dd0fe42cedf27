// Package preflight provides readiness checks for the model sidecars,
// credentials, executables and filesystem paths that ozen depends on.
//
// These checks run in two contexts:
//   - The process command calls RunAll and CheckSystemDeps before touching the
//     input so a missing sidecar or binary fails fast.
//   - The "ozen status" command renders every result as a table.
//
// Each check is gated by the configured mode: a diarize-only run does not
// need a transcription backend, for example.
package preflight
