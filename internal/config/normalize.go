package config

import (
	"fmt"
	"os"
	"strings"

	"ozen/internal/language"
)

func (c *Config) normalize() error {
	if err := c.normalizeProject(); err != nil {
		return err
	}
	c.normalizePipeline()
	c.normalizeDiarization()
	c.normalizeSegmentation()
	c.normalizeTranscription()
	c.normalizeHuggingFace()
	return c.normalizeLogging()
}

func (c *Config) normalizeProject() error {
	var err error
	c.Project.Name = strings.TrimSpace(c.Project.Name)
	if strings.EqualFold(c.Project.Name, "none") {
		c.Project.Name = ""
	}
	if strings.TrimSpace(c.Project.OutputDir) == "" {
		c.Project.OutputDir = defaultOutputDir
	}
	if c.Project.OutputDir, err = expandPath(strings.TrimSpace(c.Project.OutputDir)); err != nil {
		return fmt.Errorf("project.output_dir: %w", err)
	}
	return nil
}

// NormalizeMode folds mode aliases into their canonical names. Unknown values
// are returned lowercased so validation can report them.
func NormalizeMode(mode string) string {
	mode = strings.Join(strings.Fields(strings.ToLower(mode)), " ")
	switch mode {
	case "":
		return defaultMode
	case "segment", "segment_and_transcribe", "segment-and-transcribe", "segment and transcribe":
		return ModeSegment
	case "diarise", "diarization", "diarize":
		return ModeDiarize
	default:
		return mode
	}
}

func (c *Config) normalizePipeline() {
	c.Pipeline.Mode = NormalizeMode(c.Pipeline.Mode)
	c.Pipeline.Device = strings.ToLower(strings.TrimSpace(c.Pipeline.Device))
	if c.Pipeline.Device == "" {
		c.Pipeline.Device = defaultDevice
	}
	c.Pipeline.Language = strings.ToLower(strings.TrimSpace(c.Pipeline.Language))
	if code, ok := language.Normalize(c.Pipeline.Language); ok {
		c.Pipeline.Language = code
	}
}

func (c *Config) normalizeDiarization() {
	c.Diarization.Model = strings.TrimSpace(c.Diarization.Model)
	if c.Diarization.Model == "" {
		c.Diarization.Model = defaultDiarizationModel
	}
	c.Diarization.URL = strings.TrimRight(strings.TrimSpace(c.Diarization.URL), "/")
	if c.Diarization.URL == "" {
		c.Diarization.URL = defaultPyannoteURL
	}
	if c.Diarization.TimeoutSeconds <= 0 {
		c.Diarization.TimeoutSeconds = defaultSidecarTimeoutSeconds
	}
}

func (c *Config) normalizeSegmentation() {
	c.Segmentation.Backend = strings.ToLower(strings.TrimSpace(c.Segmentation.Backend))
	if c.Segmentation.Backend == "" {
		c.Segmentation.Backend = defaultSegmentationBackend
	}
	c.Segmentation.Model = strings.TrimSpace(c.Segmentation.Model)
	if c.Segmentation.Model == "" {
		c.Segmentation.Model = defaultSegmentationModel
	}
	c.Segmentation.URL = strings.TrimRight(strings.TrimSpace(c.Segmentation.URL), "/")
	if c.Segmentation.URL == "" {
		c.Segmentation.URL = c.Diarization.URL
	}
	if c.Segmentation.TimeoutSeconds <= 0 {
		c.Segmentation.TimeoutSeconds = defaultSidecarTimeoutSeconds
	}
}

func (c *Config) normalizeTranscription() {
	c.Transcription.Backend = strings.ToLower(strings.TrimSpace(c.Transcription.Backend))
	if c.Transcription.Backend == "" {
		c.Transcription.Backend = defaultTranscriptionBackend
	}
	c.Transcription.Model = strings.TrimSpace(c.Transcription.Model)
	if c.Transcription.Model == "" {
		c.Transcription.Model = defaultWhisperModel
	}
	c.Transcription.URL = strings.TrimRight(strings.TrimSpace(c.Transcription.URL), "/")
	if c.Transcription.URL == "" {
		c.Transcription.URL = defaultWhisperURL
	}
	if c.Transcription.TimeoutSeconds <= 0 {
		c.Transcription.TimeoutSeconds = defaultTranscribeTimeoutSecs
	}
}

func (c *Config) normalizeHuggingFace() {
	c.HuggingFace.Token = strings.TrimSpace(c.HuggingFace.Token)
	if c.HuggingFace.Token != "" {
		return
	}
	for _, key := range []string{"HF_TOKEN", "HUGGING_FACE_HUB_TOKEN"} {
		if value := strings.TrimSpace(os.Getenv(key)); value != "" {
			c.HuggingFace.Token = value
			return
		}
	}
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if strings.TrimSpace(c.Logging.Dir) != "" {
		dir, err := expandPath(strings.TrimSpace(c.Logging.Dir))
		if err != nil {
			return fmt.Errorf("logging.dir: %w", err)
		}
		c.Logging.Dir = dir
	}
	return nil
}
