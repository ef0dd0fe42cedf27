package whisperx

import "strings"

// Config captures runtime settings for WhisperX operations.
type Config struct {
	// Model is a WhisperX model name ("large-v3") or a Hugging Face
	// "openai/whisper-*" repo, which is mapped to the bare size name.
	Model string
	// Device is "cuda" or "cpu".
	Device string
	// Language is an ISO code; empty lets WhisperX detect it.
	Language string
}

// WhisperX configuration constants.
const (
	DefaultModel      = "large-v3"
	CUDAIndexURL      = "https://download.pytorch.org/whl/cu128"
	PypiIndexURL      = "https://pypi.org/simple"
	BatchSize         = "4"
	BeamSize          = "5"
	Temperature       = "0.0"
	SegmentResolution = "sentence"
	OutputFormat      = "json"
	CPUDevice         = "cpu"
	CUDADevice        = "cuda"
	CPUComputeType    = "float32"
	VADMethodSilero   = "silero"
)

// UVXCommand is the launcher used to run WhisperX.
const UVXCommand = "uvx"

// ModelName maps a configured model to the name WhisperX expects.
func ModelName(model string) string {
	model = strings.TrimSpace(model)
	if model == "" {
		return DefaultModel
	}
	if rest, ok := strings.CutPrefix(model, "openai/whisper-"); ok && rest != "" {
		return rest
	}
	return model
}

func (c Config) cudaEnabled() bool {
	return strings.EqualFold(strings.TrimSpace(c.Device), CUDADevice)
}
