package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"ozen/internal/config"
	"ozen/internal/dataset"
	"ozen/internal/logging"
	"ozen/internal/media/ffprobe"
	"ozen/internal/media/wavio"
	"ozen/internal/services"
	"ozen/internal/timeline"
)

// Stage names, also used as the log stage field.
const (
	StagePrepare    = "prepare"
	StageDiarize    = "diarize"
	StageSegment    = "segment"
	StageSlice      = "slice"
	StageTranscribe = "transcribe"
	StageManifest   = "manifest"
)

// Diarizer returns speaker turns for a WAV file.
type Diarizer interface {
	Diarize(ctx context.Context, path string) ([]timeline.Span, error)
}

// Segmenter returns speech regions for a WAV file.
type Segmenter interface {
	Segment(ctx context.Context, path string) ([]timeline.Span, error)
}

// Transcriber returns the text spoken in a WAV file.
type Transcriber interface {
	Transcribe(ctx context.Context, path string) (string, error)
}

// Prober inspects an input file.
type Prober interface {
	Inspect(ctx context.Context, path string) (ffprobe.Result, error)
}

// Converter writes src as mono 16-bit PCM WAV.
type Converter interface {
	ConvertToWAV(ctx context.Context, src, dest string, sampleRate int) error
}

// Runner executes the pipeline for one recording.
type Runner struct {
	Options     Options
	Diarizer    Diarizer
	Segmenter   Segmenter
	Transcriber Transcriber
	Prober      Prober
	Converter   Converter
	Logger      *slog.Logger
	Progress    Progress
}

// Result summarizes a finished run.
type Result struct {
	RunID    string
	Root     string
	Mode     string
	Clips    []dataset.ClipMetadata
	Counts   dataset.Counts
	Audio    float64
	Duration time.Duration
}

// run carries the state passed between stages.
type run struct {
	id     string
	input  string
	base   string
	layout *dataset.Layout
	audio  *wavio.Audio
	groups []timeline.Group
	clips  []dataset.ClipMetadata
	texts  []string
}

// Run processes input and returns the finished run.
func (r *Runner) Run(ctx context.Context, input string) (Result, error) {
	started := time.Now()
	if err := r.Options.Validate(); err != nil {
		return Result{}, err
	}
	if err := r.checkBackends(); err != nil {
		return Result{}, err
	}
	info, err := os.Stat(input)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Result{}, services.Wrap(services.ErrNotFound, StagePrepare, "open input", input, nil)
		}
		return Result{}, services.Wrap(services.ErrValidation, StagePrepare, "open input", input, err)
	}
	if info.IsDir() {
		return Result{}, services.Wrap(services.ErrValidation, StagePrepare, "open input", input+" is a directory", nil)
	}

	st := &run{id: dataset.NewRunID(), input: input, base: dataset.ClipBase(input)}
	ctx = services.WithRequestID(ctx, st.id)
	logger := logging.WithContext(ctx, logging.NewComponentLogger(r.logger(), "pipeline"))

	layout, err := dataset.Create(r.Options.OutputDir, r.Options.Project, r.Options.now())
	if err != nil {
		return Result{}, err
	}
	defer func() {
		if err := layout.Close(); err != nil {
			logger.Warn("failed to release project lock", logging.Error(err))
		}
	}()
	st.layout = layout

	logger.Info("run started",
		logging.String(logging.FieldEventType, "run_start"),
		logging.String("mode", r.Options.Mode),
		logging.String("input", input),
		logging.String("run_dir", layout.Root),
	)

	for _, s := range r.stages() {
		if err := r.runStage(ctx, s.name, st, s.fn); err != nil {
			return Result{}, err
		}
	}

	counts := dataset.Counts{}
	for _, c := range st.clips {
		if c.Split == dataset.SplitTrain {
			counts.Train++
		} else {
			counts.Valid++
		}
	}
	result := Result{
		RunID:    st.id,
		Root:     layout.Root,
		Mode:     r.Options.Mode,
		Clips:    st.clips,
		Counts:   counts,
		Audio:    st.audio.Duration(),
		Duration: time.Since(started),
	}
	logger.Info("run completed",
		logging.String(logging.FieldEventType, "run_complete"),
		logging.Int("clips", len(st.clips)),
		logging.Int("train", counts.Train),
		logging.Int("valid", counts.Valid),
		logging.Duration("elapsed", result.Duration),
	)
	return result, nil
}

type stageFunc func(ctx context.Context, logger *slog.Logger, st *run) error

type stageEntry struct {
	name string
	fn   stageFunc
}

// stages lists the stages the configured mode needs, in order.
func (r *Runner) stages() []stageEntry {
	mode := r.Options.Mode
	list := []stageEntry{{StagePrepare, r.prepare}}
	if mode == config.ModeDiarize || mode == config.ModeAuto {
		list = append(list, stageEntry{StageDiarize, r.diarize})
	}
	if mode == config.ModeSegment || mode == config.ModeAuto {
		list = append(list, stageEntry{StageSegment, r.segment})
	}
	list = append(list, stageEntry{StageSlice, r.slice})
	if mode != config.ModeDiarize {
		list = append(list, stageEntry{StageTranscribe, r.transcribe})
	}
	return append(list, stageEntry{StageManifest, r.manifest})
}

func (r *Runner) runStage(ctx context.Context, name string, st *run, fn stageFunc) error {
	stageCtx := services.WithStage(ctx, name)
	logger := logging.WithContext(stageCtx, logging.NewComponentLogger(r.logger(), "pipeline"))
	started := time.Now()
	logger.Debug("stage started", logging.String(logging.FieldEventType, "stage_start"))

	if err := fn(stageCtx, logger, st); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Debug("stage interrupted")
			return err
		}
		logger.Error("stage failed",
			logging.String(logging.FieldEventType, "stage_failure"),
			logging.Error(err),
		)
		return err
	}
	logger.Info("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.Duration("elapsed", time.Since(started)),
	)
	return nil
}

func (r *Runner) checkBackends() error {
	mode := r.Options.Mode
	missing := func(name string) error {
		return services.Wrap(services.ErrConfiguration, "pipeline", "check backends",
			fmt.Sprintf("mode %q needs a %s", mode, name), nil)
	}
	if (mode == config.ModeDiarize || mode == config.ModeAuto) && r.Diarizer == nil {
		return missing("diarizer")
	}
	if (mode == config.ModeSegment || mode == config.ModeAuto) && r.Segmenter == nil {
		return missing("segmenter")
	}
	if mode != config.ModeDiarize && r.Transcriber == nil {
		return missing("transcriber")
	}
	if r.Prober == nil {
		return missing("prober")
	}
	if r.Converter == nil {
		return missing("converter")
	}
	return nil
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger == nil {
		return logging.NewNop()
	}
	return r.Logger
}

func (r *Runner) progress() Progress {
	if r.Progress == nil {
		return NewLogProgress(r.logger())
	}
	return r.Progress
}
