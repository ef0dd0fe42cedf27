package whisperx

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"ozen/internal/services"
)

const stageTranscribe = "transcribe"

// Service provides WhisperX transcription capabilities.
type Service struct {
	cfg           Config
	commandRunner func(ctx context.Context, name string, args ...string) error
}

// NewService creates a WhisperX service with the given configuration.
func NewService(cfg Config) *Service {
	return &Service{cfg: cfg}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	s.commandRunner = runner
}

// Model returns the WhisperX model name for logging.
func (s *Service) Model() string {
	return ModelName(s.cfg.Model)
}

// run executes a command, using the custom runner if set.
func (s *Service) run(ctx context.Context, name string, args ...string) error {
	if s.commandRunner != nil {
		return s.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec

	// Torch 2.6 changed torch.load default to weights_only=true, breaking WhisperX/pyannote.
	if os.Getenv("TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD") == "" {
		cmd.Env = append(os.Environ(), "TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD=1")
	}

	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// Transcribe returns the text spoken in the WAV file at path. WhisperX
// output goes to a scratch directory that is removed afterwards. Each call
// runs its own uvx process and loads the model again.
func (s *Service) Transcribe(ctx context.Context, path string) (string, error) {
	scratch, err := os.MkdirTemp("", "ozen-whisperx-")
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, stageTranscribe, "whisperx", "create scratch dir", err)
	}
	defer os.RemoveAll(scratch)

	result, err := s.TranscribeFile(ctx, path, scratch)
	if err != nil {
		return "", err
	}
	return result.Text, nil
}

// TranscribeResult contains the result of a transcription.
type TranscribeResult struct {
	// Text is the plain text transcription.
	Text string
	// Segments are the timed segments WhisperX produced.
	Segments []Segment
	// JSONPath is the path to the generated JSON file.
	JSONPath string
}

// TranscribeFile transcribes an audio file into outputDir and returns the
// parsed result.
func (s *Service) TranscribeFile(ctx context.Context, source, outputDir string) (TranscribeResult, error) {
	var result TranscribeResult

	if source == "" {
		return result, services.Wrap(services.ErrValidation, stageTranscribe, "whisperx", "source path required", nil)
	}
	if outputDir == "" {
		outputDir = filepath.Dir(source)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return result, services.Wrap(services.ErrExternalTool, stageTranscribe, "whisperx", "ensure output dir", err)
	}

	if err := s.run(ctx, UVXCommand, s.buildArgs(source, outputDir)...); err != nil {
		return result, services.Wrap(services.ErrExternalTool, stageTranscribe, "whisperx", filepath.Base(source), err)
	}

	baseName := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	result.JSONPath = filepath.Join(outputDir, baseName+".json")
	segments, err := LoadSegments(result.JSONPath)
	if err != nil {
		return result, services.Wrap(services.ErrExternalTool, stageTranscribe, "whisperx", "read output", err)
	}
	result.Segments = segments
	result.Text = joinSegments(segments)
	return result, nil
}

// buildArgs constructs the uvx command arguments for WhisperX.
func (s *Service) buildArgs(source, outputDir string) []string {
	args := make([]string, 0, 32)

	if s.cfg.cudaEnabled() {
		args = append(args,
			"--index-url", CUDAIndexURL,
			"--extra-index-url", PypiIndexURL,
		)
	} else {
		args = append(args, "--index-url", PypiIndexURL)
	}

	args = append(args,
		"whisperx",
		source,
		"--model", ModelName(s.cfg.Model),
		"--batch_size", BatchSize,
		"--output_dir", outputDir,
		"--output_format", OutputFormat,
		"--segment_resolution", SegmentResolution,
		"--beam_size", BeamSize,
		"--temperature", Temperature,
		"--vad_method", VADMethodSilero,
	)

	if lang := strings.ToLower(strings.TrimSpace(s.cfg.Language)); lang != "" {
		args = append(args, "--language", lang)
	}

	if s.cfg.cudaEnabled() {
		args = append(args, "--device", CUDADevice)
	} else {
		args = append(args, "--device", CPUDevice, "--compute_type", CPUComputeType)
	}

	return args
}

// Segment represents a transcribed segment from WhisperX JSON output.
type Segment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

type whisperXPayload struct {
	Segments []Segment `json:"segments"`
}

// LoadSegments loads segments from a WhisperX JSON file.
func LoadSegments(jsonPath string) ([]Segment, error) {
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, err
	}
	var payload whisperXPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parse whisperx json: %w", err)
	}
	return payload.Segments, nil
}

func joinSegments(segments []Segment) string {
	var parts []string
	for _, seg := range segments {
		if text := strings.TrimSpace(seg.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}
