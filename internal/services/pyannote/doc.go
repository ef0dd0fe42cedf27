// Package pyannote is the client for the pyannote.audio model sidecar.
//
// The sidecar loads the gated Hugging Face pipelines and exposes them over
// HTTP on localhost:
//
//	POST /diarize   multipart audio + model, hf_token, num_speakers
//	POST /segment   multipart audio + model, hf_token, onset, offset,
//	                min_duration_on, min_duration_off
//	GET  /health
//
// Both endpoints answer {"segments": [...], "error": "..."} with times in
// seconds.
package pyannote
