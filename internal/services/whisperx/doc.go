// Package whisperx transcribes clips by running WhisperX through uvx.
//
// Each clip is transcribed into a scratch directory; the JSON output is read
// back and its segment texts joined into a single line. The device selects
// the package index (CUDA wheels or plain PyPI) and the compute type.
//
// Every clip starts a fresh uvx process, so WhisperX reloads its model once
// per clip. That start-up cost dominates runs with many short clips; the
// http transcription backend keeps the model resident in the sidecar and
// is the better fit for those.
package whisperx
