// Package pipeline turns one recording into a dataset run.
//
// Runner executes a fixed sequence of stages, skipping the ones the mode
// does not need:
//
//	prepare     probe the input, convert to mono PCM WAV if needed, prepend
//	            the silence spacer, write source.wav
//	diarize     speaker turns from the Diarizer, grouped by speaker
//	segment     speech regions from the Segmenter, binarized and grouped
//	slice       one WAV clip per group under wavs/
//	transcribe  one Transcriber call per clip
//	manifest    train.txt, valid.txt and metadata.json
//
// In auto mode the speech regions are clipped to the diarization groups so
// each clip carries a speaker label. Transcribe-only mode treats the whole
// prepared recording as clip 0.
//
// Model backends, the prober and the converter are interfaces so tests can
// run the full sequence without ffmpeg or model sidecars.
package pipeline
