package whisper

import (
	"context"
	"strings"
	"time"

	"ozen/internal/config"
	"ozen/internal/services"
	"ozen/internal/services/sidecar"
)

const stageTranscribe = "transcribe"

// Client transcribes WAV files through the sidecar.
type Client struct {
	sc       *sidecar.Client
	model    string
	language string
	device   string
}

// New builds a client from the transcription section.
func New(cfg *config.Config) *Client {
	return &Client{
		sc: sidecar.New("whisper", stageTranscribe, cfg.Transcription.URL,
			time.Duration(cfg.Transcription.TimeoutSeconds)*time.Second),
		model:    cfg.Transcription.Model,
		language: cfg.Pipeline.Language,
		device:   cfg.Pipeline.Device,
	}
}

// Segment is a timed piece of a transcription.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

type response struct {
	Text     string    `json:"text"`
	Language string    `json:"language"`
	Segments []Segment `json:"segments"`
	Error    string    `json:"error,omitempty"`
}

// Transcribe returns the text spoken in the WAV file at path. When the
// sidecar omits the joined text, segment texts are joined instead.
func (c *Client) Transcribe(ctx context.Context, path string) (string, error) {
	fields := map[string]string{
		"model":    c.model,
		"language": c.language,
		"device":   c.device,
	}
	var resp response
	if err := c.sc.PostAudio(ctx, "/transcribe", path, fields, &resp); err != nil {
		return "", err
	}
	if resp.Error != "" {
		return "", services.Wrap(services.ErrExternalTool, stageTranscribe, "whisper /transcribe", resp.Error, nil)
	}
	if text := strings.TrimSpace(resp.Text); text != "" {
		return text, nil
	}
	parts := make([]string, 0, len(resp.Segments))
	for _, seg := range resp.Segments {
		if text := strings.TrimSpace(seg.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " "), nil
}

// Health probes the sidecar.
func (c *Client) Health(ctx context.Context) error {
	return c.sc.Health(ctx)
}
