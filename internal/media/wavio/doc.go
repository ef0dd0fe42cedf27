// Package wavio reads, edits and writes PCM WAV audio in memory.
//
// Audio holds interleaved integer samples as decoded by go-audio/wav. The
// pipeline prepends a silence spacer to the prepared source, slices clips out
// of it by time and writes each clip back to disk.
package wavio
