// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Inspect runs ffprobe and returns the parsed Result. Helper methods report
// the audio stream count, the container duration and whether the input is
// already 16-bit PCM WAV (in which case conversion is skipped).
package ffprobe
