package wavio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const pcmFormat = 1

// Audio is an in-memory PCM recording with interleaved samples.
type Audio struct {
	SampleRate int
	Channels   int
	BitDepth   int
	Samples    []int
}

// Read decodes the WAV file at path.
func Read(path string) (*Audio, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open wav: %w", err)
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("read wav %s: not a valid wav file", path)
	}
	if decoder.WavAudioFormat != pcmFormat {
		return nil, fmt.Errorf("read wav %s: unsupported audio format %d", path, decoder.WavAudioFormat)
	}
	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("read wav %s: %w", path, err)
	}
	a := &Audio{
		SampleRate: buf.Format.SampleRate,
		Channels:   buf.Format.NumChannels,
		BitDepth:   int(decoder.BitDepth),
		Samples:    buf.Data,
	}
	if a.SampleRate <= 0 || a.Channels <= 0 {
		return nil, fmt.Errorf("read wav %s: invalid format (%d Hz, %d channels)", path, a.SampleRate, a.Channels)
	}
	return a, nil
}

// Write encodes the audio to path, replacing any existing file.
func (a *Audio) Write(path string) (err error) {
	if a == nil || a.SampleRate <= 0 || a.Channels <= 0 || a.BitDepth <= 0 {
		return errors.New("write wav: audio format not set")
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create wav: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close wav: %w", closeErr)
		}
	}()

	encoder := wav.NewEncoder(f, a.SampleRate, a.BitDepth, a.Channels, pcmFormat)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: a.Channels, SampleRate: a.SampleRate},
		Data:           a.Samples,
		SourceBitDepth: a.BitDepth,
	}
	if err := encoder.Write(buf); err != nil {
		return fmt.Errorf("encode wav %s: %w", path, err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("finalize wav %s: %w", path, err)
	}
	return nil
}

// Frames returns the number of sample frames (samples per channel).
func (a *Audio) Frames() int {
	if a.Channels <= 0 {
		return 0
	}
	return len(a.Samples) / a.Channels
}

// Duration returns the length of the recording in seconds.
func (a *Audio) Duration() float64 {
	if a.SampleRate <= 0 {
		return 0
	}
	return float64(a.Frames()) / float64(a.SampleRate)
}

// PrependSilence returns a copy of the audio with d of silence at the start.
func (a *Audio) PrependSilence(d time.Duration) *Audio {
	frames := 0
	if d > 0 {
		frames = int(math.Round(d.Seconds() * float64(a.SampleRate)))
	}
	samples := make([]int, frames*a.Channels, frames*a.Channels+len(a.Samples))
	samples = append(samples, a.Samples...)
	return &Audio{SampleRate: a.SampleRate, Channels: a.Channels, BitDepth: a.BitDepth, Samples: samples}
}

// Slice returns the audio between start and end seconds. Bounds are clamped
// to the recording; a range that is empty after clamping is an error.
func (a *Audio) Slice(start, end float64) (*Audio, error) {
	if math.IsNaN(start) || math.IsNaN(end) {
		return nil, errors.New("slice: invalid bounds")
	}
	total := a.Frames()
	first := clampFrame(start, a.SampleRate, total)
	last := clampFrame(end, a.SampleRate, total)
	if last <= first {
		return nil, fmt.Errorf("slice: empty range %.3f-%.3f", start, end)
	}
	samples := make([]int, (last-first)*a.Channels)
	copy(samples, a.Samples[first*a.Channels:last*a.Channels])
	return &Audio{SampleRate: a.SampleRate, Channels: a.Channels, BitDepth: a.BitDepth, Samples: samples}, nil
}

// PCM16 returns the samples as little-endian signed 16-bit bytes. Only mono
// 16-bit audio is accepted.
func (a *Audio) PCM16() ([]byte, error) {
	if a.Channels != 1 || a.BitDepth != 16 {
		return nil, fmt.Errorf("pcm16: need mono 16-bit audio, got %d channels at %d bits", a.Channels, a.BitDepth)
	}
	out := make([]byte, len(a.Samples)*2)
	for i, s := range a.Samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(int16(s)))
	}
	return out, nil
}

func clampFrame(seconds float64, rate, total int) int {
	frame := int(math.Round(seconds * float64(rate)))
	if frame < 0 {
		return 0
	}
	if frame > total {
		return total
	}
	return frame
}
