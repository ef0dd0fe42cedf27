// Package deps checks for the external executables ozen shells out to
// (ffmpeg, ffprobe, uvx).
package deps
