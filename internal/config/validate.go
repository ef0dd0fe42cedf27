package config

import (
	"errors"
	"fmt"
	"strings"

	"ozen/internal/language"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePipeline(); err != nil {
		return err
	}
	if err := c.validateSegmentation(); err != nil {
		return err
	}
	if err := c.validateTranscription(); err != nil {
		return err
	}
	if err := c.validateHuggingFace(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
		return nil
	default:
		return fmt.Errorf("logging.format %q is not supported (use console or json)", c.Logging.Format)
	}
}

func (c *Config) validatePipeline() error {
	switch c.Pipeline.Mode {
	case ModeAuto, ModeSegment, ModeDiarize, ModeTranscribe:
	default:
		return fmt.Errorf("pipeline.mode %q is not supported (use auto, %q, diarize, or transcribe)", c.Pipeline.Mode, ModeSegment)
	}
	switch c.Pipeline.Device {
	case "cpu", "cuda":
	default:
		return fmt.Errorf("pipeline.device %q is not supported (use cpu or cuda)", c.Pipeline.Device)
	}
	if c.Pipeline.ValidRatio < 0 || c.Pipeline.ValidRatio >= 1 {
		return errors.New("pipeline.valid_ratio must be >= 0 and < 1")
	}
	if c.Pipeline.SpacerMS < 0 {
		return errors.New("pipeline.spacer_ms must be >= 0")
	}
	if c.Pipeline.SampleRate < 0 {
		return errors.New("pipeline.sample_rate must be >= 0 (0 keeps the source rate)")
	}
	if _, ok := language.Normalize(c.Pipeline.Language); !ok {
		return fmt.Errorf("pipeline.language %q is not a recognized language (use an ISO code such as \"en\" or leave empty to detect)", c.Pipeline.Language)
	}
	if c.Diarization.NumSpeakers < 0 {
		return errors.New("diarization.num_speakers must be >= 0")
	}
	return nil
}

func (c *Config) validateSegmentation() error {
	seg := c.Segmentation
	switch seg.Backend {
	case BackendPyannote, BackendWebRTC:
	default:
		return fmt.Errorf("segmentation.backend %q is not supported (use pyannote or webrtc)", seg.Backend)
	}
	if seg.Onset < 0 || seg.Onset > 1 {
		return errors.New("segmentation.onset must be between 0 and 1")
	}
	if seg.Offset < 0 || seg.Offset > 1 {
		return errors.New("segmentation.offset must be between 0 and 1")
	}
	if seg.MinDuration < 0 {
		return errors.New("segmentation.min_duration must be >= 0")
	}
	if seg.MinDurationOff < 0 {
		return errors.New("segmentation.min_duration_off must be >= 0")
	}
	if seg.WebRTCMode < 0 || seg.WebRTCMode > 3 {
		return errors.New("segmentation.webrtc_mode must be between 0 and 3")
	}
	return nil
}

func (c *Config) validateTranscription() error {
	switch c.Transcription.Backend {
	case BackendWhisperX, BackendHTTP:
	default:
		return fmt.Errorf("transcription.backend %q is not supported (use whisperx or http)", c.Transcription.Backend)
	}
	if c.NeedsTranscription() && strings.TrimSpace(c.Transcription.Model) == "" {
		return errors.New("transcription.model must be set")
	}
	return nil
}

func (c *Config) validateHuggingFace() error {
	if !c.NeedsHuggingFaceToken() || c.HuggingFace.Token != "" {
		return nil
	}
	defaultPath, err := DefaultConfigPath()
	if err != nil {
		defaultPath = "~/.config/ozen/config.toml"
	}
	return fmt.Errorf("huggingface.token is required for pyannote models in mode %q. Set HF_TOKEN, pass --hf-token, or edit %s (create with 'ozen config init')", c.Pipeline.Mode, defaultPath)
}
