package pyannote

import (
	"context"
	"strconv"
	"time"

	"ozen/internal/config"
	"ozen/internal/services"
	"ozen/internal/services/sidecar"
	"ozen/internal/timeline"
)

const (
	stageDiarize = "diarize"
	stageSegment = "segment"
)

// Client runs diarization and segmentation through the sidecar.
type Client struct {
	diarization  *sidecar.Client
	segmentation *sidecar.Client
	diarCfg      config.Diarization
	segCfg       config.Segmentation
	token        string
}

// New builds a client from the diarization and segmentation sections.
func New(cfg *config.Config) *Client {
	return &Client{
		diarization: sidecar.New("pyannote", stageDiarize, cfg.Diarization.URL,
			time.Duration(cfg.Diarization.TimeoutSeconds)*time.Second),
		segmentation: sidecar.New("pyannote", stageSegment, cfg.Segmentation.URL,
			time.Duration(cfg.Segmentation.TimeoutSeconds)*time.Second),
		diarCfg: cfg.Diarization,
		segCfg:  cfg.Segmentation,
		token:   cfg.HuggingFace.Token,
	}
}

type response struct {
	Segments    []segment `json:"segments"`
	NumSpeakers int       `json:"num_speakers"`
	Error       string    `json:"error,omitempty"`
}

type segment struct {
	SpeakerID string  `json:"speaker_id"`
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
}

// Diarize returns the speaker turns detected in the WAV file at path.
func (c *Client) Diarize(ctx context.Context, path string) ([]timeline.Span, error) {
	fields := map[string]string{
		"model":    c.diarCfg.Model,
		"hf_token": c.token,
	}
	if c.diarCfg.NumSpeakers > 0 {
		fields["num_speakers"] = strconv.Itoa(c.diarCfg.NumSpeakers)
	}
	var resp response
	if err := c.diarization.PostAudio(ctx, "/diarize", path, fields, &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, services.Wrap(services.ErrExternalTool, stageDiarize, "pyannote /diarize", resp.Error, nil)
	}
	return toSpans(resp.Segments), nil
}

// Segment returns the speech regions detected in the WAV file at path.
func (c *Client) Segment(ctx context.Context, path string) ([]timeline.Span, error) {
	fields := map[string]string{
		"model":            c.segCfg.Model,
		"hf_token":         c.token,
		"onset":            formatFloat(c.segCfg.Onset),
		"offset":           formatFloat(c.segCfg.Offset),
		"min_duration_on":  formatFloat(c.segCfg.MinDuration),
		"min_duration_off": formatFloat(c.segCfg.MinDurationOff),
	}
	var resp response
	if err := c.segmentation.PostAudio(ctx, "/segment", path, fields, &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, services.Wrap(services.ErrExternalTool, stageSegment, "pyannote /segment", resp.Error, nil)
	}
	return toSpans(resp.Segments), nil
}

// Health probes the diarization sidecar.
func (c *Client) Health(ctx context.Context) error {
	return c.diarization.Health(ctx)
}

func toSpans(segments []segment) []timeline.Span {
	spans := make([]timeline.Span, 0, len(segments))
	for _, seg := range segments {
		spans = append(spans, timeline.Span{
			Start:   seg.StartTime,
			End:     seg.EndTime,
			Speaker: seg.SpeakerID,
		})
	}
	return spans
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
