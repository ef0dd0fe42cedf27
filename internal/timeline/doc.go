// Package timeline groups detected time spans into clips.
//
// Diarization turns and speech regions arrive as Spans in seconds. The
// grouping functions are linear scans over spans sorted by start time and
// return Groups numbered from zero; each Group becomes one WAV clip.
package timeline
