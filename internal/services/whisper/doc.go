// Package whisper transcribes clips through a faster-whisper HTTP sidecar
// (POST /transcribe, GET /health).
package whisper
