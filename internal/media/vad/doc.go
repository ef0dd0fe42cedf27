// Package vad segments speech in-process with the WebRTC voice activity
// detector.
//
// The prepared WAV must be mono 16-bit PCM at 8, 16, 32 or 48 kHz. Audio is
// classified in 30 ms frames; a sliding window of frame decisions turns into
// speech regions with onset/offset hysteresis, which are then cleaned with
// timeline.Binarize. Builds without cgo report the backend as unavailable.
package vad
