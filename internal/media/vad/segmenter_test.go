package vad

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"

	"ozen/internal/config"
	"ozen/internal/services"
	"ozen/internal/testsupport"
	"ozen/internal/timeline"
)

type energyClassifier struct{}

func (energyClassifier) Process(_ int, frame []byte) (bool, error) {
	for i := 0; i+1 < len(frame); i += 2 {
		v := int16(uint16(frame[i]) | uint16(frame[i+1])<<8)
		if v > 1000 || v < -1000 {
			return true, nil
		}
	}
	return false, nil
}

func decisions(pattern ...int) []bool {
	var out []bool
	voiced := false
	for _, n := range pattern {
		for i := 0; i < n; i++ {
			out = append(out, voiced)
		}
		voiced = !voiced
	}
	return out
}

func TestSpansFromDecisions(t *testing.T) {
	tests := []struct {
		name      string
		decisions []bool
		want      []timeline.Span
	}{
		{name: "silence", decisions: decisions(30), want: nil},
		{name: "single burst", decisions: decisions(5, 10, 12), want: []timeline.Span{{Start: 5, End: 15}}},
		{name: "speech to end", decisions: decisions(0, 10), want: []timeline.Span{{Start: 0, End: 10}}},
		{name: "short blip ignored", decisions: decisions(10, 2, 10), want: nil},
		{
			name:      "two bursts",
			decisions: decisions(0, 10, 10, 10),
			want:      []timeline.Span{{Start: 0, End: 10}, {Start: 20, End: 30}},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := spansFromDecisions(tc.decisions, 1, 0.6, 0.9)
			if len(got) != len(tc.want) {
				t.Fatalf("spans = %+v, want %+v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("span %d = %+v, want %+v", i, got[i], tc.want[i])
				}
			}
		})
	}
}

func writeTone(t *testing.T, rate int, silenceBefore, tone, silenceAfter float64) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "source.wav")
	testsupport.WriteTone(t, path, rate, silenceBefore, tone, silenceAfter)
	return path
}

func newTestSegmenter() *Segmenter {
	cfg := config.Default().Segmentation
	cfg.MinDuration = 1
	seg := NewSegmenter(cfg)
	seg.newClassifier = func(int) (frameClassifier, error) { return energyClassifier{}, nil }
	return seg
}

func TestSegmentFindsTone(t *testing.T) {
	path := writeTone(t, 16000, 1, 3, 1)

	spans, err := newTestSegmenter().Segment(context.Background(), path)
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	if len(spans) != 1 {
		t.Fatalf("expected one region, got %+v", spans)
	}
	if math.Abs(spans[0].Start-1) > 0.05 || math.Abs(spans[0].End-4) > 0.05 {
		t.Fatalf("region %+v, want about 1-4s", spans[0])
	}
}

func TestSegmentDropsShortRegions(t *testing.T) {
	path := writeTone(t, 8000, 1, 0.5, 1)

	spans, err := newTestSegmenter().Segment(context.Background(), path)
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	if len(spans) != 0 {
		t.Fatalf("expected short region to be dropped, got %+v", spans)
	}
}

func TestSegmentRejectsUnsupportedRate(t *testing.T) {
	path := writeTone(t, 22050, 0.1, 0.1, 0.1)

	_, err := newTestSegmenter().Segment(context.Background(), path)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
