package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Pipeline mode names accepted in config files and on the command line.
const (
	ModeAuto       = "auto"
	ModeSegment    = "segment and transcribe"
	ModeDiarize    = "diarize"
	ModeTranscribe = "transcribe"
)

// Backend names.
const (
	BackendPyannote = "pyannote"
	BackendWebRTC   = "webrtc"
	BackendWhisperX = "whisperx"
	BackendHTTP     = "http"
)

// Project contains the dataset naming and output location.
type Project struct {
	Name      string `toml:"name"`
	OutputDir string `toml:"output_dir"`
}

// Pipeline contains settings shared by every stage.
type Pipeline struct {
	Mode       string  `toml:"mode"`
	Device     string  `toml:"device"`
	ValidRatio float64 `toml:"valid_ratio"`
	SpacerMS   int     `toml:"spacer_ms"`
	Language   string  `toml:"language"`
	SampleRate int     `toml:"sample_rate"`
}

// Diarization contains configuration for the pyannote diarization sidecar.
type Diarization struct {
	Model          string `toml:"model"`
	URL            string `toml:"url"`
	NumSpeakers    int    `toml:"num_speakers"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Segmentation contains configuration for voice activity segmentation.
type Segmentation struct {
	// Backend selects "pyannote" (sidecar) or "webrtc" (in-process, cgo).
	Backend string `toml:"backend"`
	Model   string `toml:"model"`
	URL     string `toml:"url"`
	// Onset and Offset are activation thresholds; speech starts above Onset
	// and ends below Offset.
	Onset  float64 `toml:"onset"`
	Offset float64 `toml:"offset"`
	// MinDuration drops speech regions shorter than this many seconds.
	MinDuration float64 `toml:"min_duration"`
	// MinDurationOff fills non-speech gaps shorter than this many seconds.
	MinDurationOff float64 `toml:"min_duration_off"`
	// WebRTCMode is the WebRTC VAD aggressiveness (0-3).
	WebRTCMode     int `toml:"webrtc_mode"`
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// Transcription contains configuration for the speech-to-text backend.
type Transcription struct {
	Backend        string `toml:"backend"`
	Model          string `toml:"model"`
	URL            string `toml:"url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// HuggingFace holds the access token required by gated pyannote models.
type HuggingFace struct {
	Token string `toml:"token"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	Dir    string `toml:"dir"`
}

// Config encapsulates all configuration values for ozen.
//
// Configuration sections by subsystem:
//   - Project: dataset name and output directory
//   - Pipeline: mode, device, validation split and input preparation
//   - Diarization: pyannote speaker diarization sidecar
//   - Segmentation: voice activity segmentation backend and thresholds
//   - Transcription: whisperx or HTTP whisper sidecar
//   - HuggingFace: token for gated pyannote models
//   - Logging: log format, level, and optional log directory
type Config struct {
	Project       Project       `toml:"project"`
	Pipeline      Pipeline      `toml:"pipeline"`
	Diarization   Diarization   `toml:"diarization"`
	Segmentation  Segmentation  `toml:"segmentation"`
	Transcription Transcription `toml:"transcription"`
	HuggingFace   HuggingFace   `toml:"huggingface"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/ozen/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg, resolvedPath, exists, err := Read(path)
	if err != nil {
		return nil, "", false, err
	}
	if err := cfg.Finalize(); err != nil {
		return nil, "", false, err
	}
	return cfg, resolvedPath, exists, nil
}

// Read locates and parses a configuration file on top of the defaults
// without validating it. Callers apply overrides and then call Finalize.
func Read(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}
	return &cfg, resolvedPath, exists, nil
}

// LoadDefaults returns the repository defaults without reading any config file.
// Environment fallbacks (including a local .env) still apply.
func LoadDefaults() (*Config, error) {
	cfg := Default()
	if err := cfg.Finalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Finalize normalizes and validates the configuration. Call it again after
// applying command-line overrides.
func (c *Config) Finalize() error {
	if err := loadDotEnv(); err != nil {
		return err
	}
	if err := c.normalize(); err != nil {
		return err
	}
	return c.Validate()
}

// loadDotEnv reads ./.env when present. Variables already set in the
// environment take precedence.
func loadDotEnv() error {
	if _, err := os.Stat(".env"); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat .env: %w", err)
	}
	if err := godotenv.Load(".env"); err != nil {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/ozen/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("ozen.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// NeedsDiarization reports whether the configured mode runs speaker diarization.
func (c *Config) NeedsDiarization() bool {
	return c.Pipeline.Mode == ModeAuto || c.Pipeline.Mode == ModeDiarize
}

// NeedsSegmentation reports whether the configured mode runs speech segmentation.
func (c *Config) NeedsSegmentation() bool {
	return c.Pipeline.Mode == ModeAuto || c.Pipeline.Mode == ModeSegment
}

// NeedsTranscription reports whether the configured mode transcribes clips.
func (c *Config) NeedsTranscription() bool {
	return c.Pipeline.Mode != ModeDiarize
}

// NeedsHuggingFaceToken reports whether any selected backend loads gated
// pyannote models.
func (c *Config) NeedsHuggingFaceToken() bool {
	if c.NeedsDiarization() {
		return true
	}
	return c.NeedsSegmentation() && c.Segmentation.Backend == BackendPyannote
}

// FFmpegBinary returns the ffmpeg executable name used for conversion.
func (c *Config) FFmpegBinary() string {
	return "ffmpeg"
}

// FFprobeBinary returns the ffprobe executable name used for input inspection.
func (c *Config) FFprobeBinary() string {
	return "ffprobe"
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
