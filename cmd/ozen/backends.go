package main

import (
	"log/slog"

	"ozen/internal/config"
	"ozen/internal/media/ffmpeg"
	"ozen/internal/media/ffprobe"
	"ozen/internal/media/vad"
	"ozen/internal/pipeline"
	"ozen/internal/services/pyannote"
	"ozen/internal/services/whisper"
	"ozen/internal/services/whisperx"
)

// newRunner wires the pipeline with the backends selected by cfg. Stages the
// mode does not run get no backend.
func newRunner(cfg *config.Config, input string, logger *slog.Logger, progress pipeline.Progress) *pipeline.Runner {
	runner := &pipeline.Runner{
		Options:   pipeline.OptionsFromConfig(cfg, input),
		Prober:    ffprobe.Prober{Binary: cfg.FFprobeBinary()},
		Converter: ffmpeg.NewConverter(cfg.FFmpegBinary()),
		Logger:    logger,
		Progress:  progress,
	}

	var annotator *pyannote.Client
	if cfg.NeedsDiarization() || (cfg.NeedsSegmentation() && cfg.Segmentation.Backend == config.BackendPyannote) {
		annotator = pyannote.New(cfg)
	}

	if cfg.NeedsDiarization() {
		runner.Diarizer = annotator
	}
	if cfg.NeedsSegmentation() {
		switch cfg.Segmentation.Backend {
		case config.BackendWebRTC:
			runner.Segmenter = vad.NewSegmenter(cfg.Segmentation)
		default:
			runner.Segmenter = annotator
		}
	}
	if cfg.NeedsTranscription() {
		switch cfg.Transcription.Backend {
		case config.BackendHTTP:
			runner.Transcriber = whisper.New(cfg)
		default:
			runner.Transcriber = whisperx.NewService(whisperx.Config{
				Model:    cfg.Transcription.Model,
				Device:   cfg.Pipeline.Device,
				Language: cfg.Pipeline.Language,
			})
		}
	}
	return runner
}
