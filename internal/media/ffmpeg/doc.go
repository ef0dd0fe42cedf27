// Package ffmpeg converts arbitrary audio inputs into mono 16-bit PCM WAV
// files that the rest of the pipeline can read in-process.
package ffmpeg
