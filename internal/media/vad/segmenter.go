package vad

import (
	"context"
	"fmt"
	"slices"

	"ozen/internal/config"
	"ozen/internal/media/wavio"
	"ozen/internal/services"
	"ozen/internal/timeline"
)

const (
	frameMillis = 30
	windowSize  = 10
	stage       = "segment"
)

var supportedRates = []int{8000, 16000, 32000, 48000}

type frameClassifier interface {
	Process(sampleRate int, frame []byte) (bool, error)
}

// Segmenter detects speech regions with WebRTC VAD.
type Segmenter struct {
	cfg           config.Segmentation
	newClassifier func(mode int) (frameClassifier, error)
}

// NewSegmenter returns a segmenter using the segmentation thresholds.
func NewSegmenter(cfg config.Segmentation) *Segmenter {
	return &Segmenter{cfg: cfg, newClassifier: newWebRTC}
}

// Segment returns the speech regions of the WAV file at path.
func (s *Segmenter) Segment(ctx context.Context, path string) ([]timeline.Span, error) {
	audio, err := wavio.Read(path)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, stage, "webrtc vad", "read audio", err)
	}
	if !slices.Contains(supportedRates, audio.SampleRate) {
		return nil, services.Wrap(services.ErrValidation, stage, "webrtc vad",
			fmt.Sprintf("sample rate %d not supported (set pipeline.sample_rate to 16000)", audio.SampleRate), nil)
	}
	pcm, err := audio.PCM16()
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, stage, "webrtc vad", "", err)
	}

	classifier, err := s.newClassifier(s.cfg.WebRTCMode)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, stage, "webrtc vad", "init", err)
	}

	frameBytes := audio.SampleRate * frameMillis / 1000 * 2
	decisions := make([]bool, 0, len(pcm)/frameBytes)
	for offset := 0; offset+frameBytes <= len(pcm); offset += frameBytes {
		if len(decisions)%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		voiced, err := classifier.Process(audio.SampleRate, pcm[offset:offset+frameBytes])
		if err != nil {
			return nil, services.Wrap(services.ErrExternalTool, stage, "webrtc vad", "process frame", err)
		}
		decisions = append(decisions, voiced)
	}

	raw := spansFromDecisions(decisions, float64(frameMillis)/1000, s.cfg.Onset, s.cfg.Offset)
	return timeline.Binarize(raw, s.cfg.MinDuration, s.cfg.MinDurationOff), nil
}

// spansFromDecisions applies hysteresis over a sliding window of frame
// decisions. Speech starts once the voiced share of the window reaches onset
// and ends once the unvoiced share reaches offset. A region runs from the
// first voiced frame of the triggering window to the last voiced frame.
func spansFromDecisions(decisions []bool, frameSec, onset, offset float64) []timeline.Span {
	var spans []timeline.Span
	window := make([]bool, 0, windowSize)
	voiced := 0
	inSpeech := false
	start, lastVoiced := 0, 0

	for i, d := range decisions {
		if len(window) == windowSize {
			if window[0] {
				voiced--
			}
			window = window[1:]
		}
		window = append(window, d)
		if d {
			voiced++
			lastVoiced = i
		}

		share := float64(voiced) / windowSize
		unvoicedShare := float64(len(window)-voiced) / windowSize
		switch {
		case !inSpeech && voiced > 0 && share >= onset:
			inSpeech = true
			start = i - len(window) + 1
			for j, w := range window {
				if w {
					start = i - len(window) + 1 + j
					break
				}
			}
		case inSpeech && len(window) == windowSize && unvoicedShare >= offset:
			inSpeech = false
			spans = append(spans, timeline.Span{Start: float64(start) * frameSec, End: float64(lastVoiced+1) * frameSec})
		}
	}
	if inSpeech {
		spans = append(spans, timeline.Span{Start: float64(start) * frameSec, End: float64(lastVoiced+1) * frameSec})
	}
	return spans
}
