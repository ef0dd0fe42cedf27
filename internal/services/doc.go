// Package services defines shared utilities consumed by the pipeline stages and
// the external model integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run identifiers, stage names, and clip
//     indices for logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     into user-fixable (exit 2) and tool failures (exit 1).
//
// The subpackages wrap the external pretrained-model pipelines: pyannote for
// diarization and segmentation, whisperx and a whisper HTTP sidecar for
// transcription.
package services
