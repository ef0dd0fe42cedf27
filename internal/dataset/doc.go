// Package dataset owns the on-disk layout of a run.
//
// Every run writes to <output>/<project>/<YYYYMMDD-HHMMSS>/:
//
//	source.wav     prepared audio (spacer prepended)
//	input.<ext>    untouched copy of the recording
//	wavs/          one clip per group, <base>-<idx>.wav
//	train.txt      manifest lines for the training split
//	valid.txt      manifest lines for the validation split
//	metadata.json  run id, settings and per-clip timing
//
// A file lock on <output>/<project>/.ozen.lock keeps two runs from writing
// to the same project at once.
package dataset
