package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"ozen/internal/media/wavio"
)

// WriteWAV writes a mono 16-bit WAV of the requested length filled with a
// low-amplitude sawtooth so every frame carries non-zero samples.
func WriteWAV(t testing.TB, path string, rate int, seconds float64) {
	t.Helper()

	a := &wavio.Audio{SampleRate: rate, Channels: 1, BitDepth: 16}
	n := int(seconds * float64(rate))
	a.Samples = make([]int, n)
	for i := range a.Samples {
		a.Samples[i] = (i % 64) * 100
	}
	write(t, path, a)
}

// WriteTone writes silence, a square-wave tone, then silence again. The
// durations are in seconds.
func WriteTone(t testing.TB, path string, rate int, silenceBefore, tone, silenceAfter float64) {
	t.Helper()

	a := &wavio.Audio{SampleRate: rate, Channels: 1, BitDepth: 16}
	appendFrames := func(seconds float64, amp int) {
		n := int(seconds * float64(rate))
		for i := 0; i < n; i++ {
			if i%2 == 0 {
				a.Samples = append(a.Samples, amp)
			} else {
				a.Samples = append(a.Samples, -amp)
			}
		}
	}
	appendFrames(silenceBefore, 0)
	appendFrames(tone, 5000)
	appendFrames(silenceAfter, 0)
	write(t, path, a)
}

func write(t testing.TB, path string, a *wavio.Audio) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := a.Write(path); err != nil {
		t.Fatalf("write fixture %s: %v", path, err)
	}
}
