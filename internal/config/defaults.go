package config

const (
	defaultOutputDir             = "output"
	defaultMode                  = ModeSegment
	defaultDevice                = "cuda"
	defaultValidRatio            = 0.2
	defaultSpacerMS              = 2000
	defaultDiarizationModel      = "pyannote/speaker-diarization"
	defaultSegmentationModel     = "pyannote/segmentation"
	defaultPyannoteURL           = "http://127.0.0.1:8388"
	defaultSidecarTimeoutSeconds = 600
	defaultSegmentationBackend   = BackendPyannote
	defaultSegOnset              = 0.6
	defaultSegOffset             = 0.9
	defaultSegMinDuration        = 2.0
	defaultSegMinDurationOff     = 0.0
	defaultWebRTCMode            = 2
	defaultTranscriptionBackend  = BackendWhisperX
	defaultWhisperModel          = "openai/whisper-large-v3"
	defaultWhisperURL            = "http://127.0.0.1:8387"
	defaultTranscribeTimeoutSecs = 300
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Project: Project{
			OutputDir: defaultOutputDir,
		},
		Pipeline: Pipeline{
			Mode:       defaultMode,
			Device:     defaultDevice,
			ValidRatio: defaultValidRatio,
			SpacerMS:   defaultSpacerMS,
		},
		Diarization: Diarization{
			Model:          defaultDiarizationModel,
			URL:            defaultPyannoteURL,
			TimeoutSeconds: defaultSidecarTimeoutSeconds,
		},
		Segmentation: Segmentation{
			Backend:        defaultSegmentationBackend,
			Model:          defaultSegmentationModel,
			URL:            defaultPyannoteURL,
			Onset:          defaultSegOnset,
			Offset:         defaultSegOffset,
			MinDuration:    defaultSegMinDuration,
			MinDurationOff: defaultSegMinDurationOff,
			WebRTCMode:     defaultWebRTCMode,
			TimeoutSeconds: defaultSidecarTimeoutSeconds,
		},
		Transcription: Transcription{
			Backend:        defaultTranscriptionBackend,
			Model:          defaultWhisperModel,
			URL:            defaultWhisperURL,
			TimeoutSeconds: defaultTranscribeTimeoutSecs,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
