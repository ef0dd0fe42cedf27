package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"ozen/internal/config"
	"ozen/internal/deps"
	"ozen/internal/logging"
	"ozen/internal/pipeline"
	"ozen/internal/preflight"
	"ozen/internal/services"
)

// processFlags holds raw flag values; only flags the user set are applied.
type processFlags struct {
	outputPath           string
	projectName          string
	mode                 string
	device               string
	whisperModel         string
	diarizationModel     string
	segmentationModel    string
	segOnset             float64
	segOffset            float64
	segMinDuration       float64
	segMinDurationOff    float64
	hfToken              string
	validRatio           float64
	language             string
	spacerMS             int
	sampleRate           int
	numSpeakers          int
	segmentationBackend  string
	transcriptionBackend string
	ignoreConfig         bool
}

func newProcessCommand(ctx *commandContext) *cobra.Command {
	var flags processFlags

	cmd := &cobra.Command{
		Use:         "process <file>",
		Short:       "Build a speech dataset from an audio recording",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := processConfig(ctx, cmd, &flags)
			if err != nil {
				return err
			}
			return runProcess(cmd, cfg, args[0])
		},
	}

	bindProcessFlags(cmd, &flags)
	return cmd
}

func bindProcessFlags(cmd *cobra.Command, flags *processFlags) {
	defaults := config.Default()
	f := cmd.Flags()
	f.StringVarP(&flags.outputPath, "output-path", "o", defaults.Project.OutputDir, "Directory that receives <project>/<timestamp>/ datasets")
	f.StringVarP(&flags.projectName, "project-name", "p", "", "Dataset name (defaults to the input file name)")
	f.StringVarP(&flags.mode, "mode", "m", defaults.Pipeline.Mode, "Pipeline mode: auto, \"segment and transcribe\" (segment), diarize, transcribe")
	f.StringVar(&flags.device, "device", defaults.Pipeline.Device, "Inference device: cpu or cuda")
	f.StringVar(&flags.whisperModel, "whisper-model", defaults.Transcription.Model, "Whisper model used for transcription")
	f.StringVar(&flags.diarizationModel, "diarization-model", defaults.Diarization.Model, "Pyannote diarization pipeline")
	f.StringVar(&flags.segmentationModel, "segmentation-model", defaults.Segmentation.Model, "Pyannote segmentation model")
	f.Float64Var(&flags.segOnset, "seg-onset", defaults.Segmentation.Onset, "Segmentation onset threshold")
	f.Float64Var(&flags.segOffset, "seg-offset", defaults.Segmentation.Offset, "Segmentation offset threshold")
	f.Float64Var(&flags.segMinDuration, "seg-min-duration", defaults.Segmentation.MinDuration, "Drop speech regions shorter than this (seconds)")
	f.Float64Var(&flags.segMinDurationOff, "seg-min-duration-off", defaults.Segmentation.MinDurationOff, "Fill silences shorter than this (seconds)")
	f.StringVar(&flags.hfToken, "hf-token", "", "Hugging Face token for pyannote models")
	f.Float64Var(&flags.validRatio, "valid-ratio", defaults.Pipeline.ValidRatio, "Share of clips written to valid.txt")
	f.StringVarP(&flags.language, "language", "l", "", "Transcription language code (empty to detect)")
	f.IntVar(&flags.spacerMS, "spacer-ms", defaults.Pipeline.SpacerMS, "Leading silence added to the source audio (milliseconds)")
	f.IntVar(&flags.sampleRate, "sample-rate", defaults.Pipeline.SampleRate, "Sample rate for converted inputs (0 keeps the source rate)")
	f.IntVar(&flags.numSpeakers, "num-speakers", defaults.Diarization.NumSpeakers, "Expected speaker count for diarization (0 to estimate)")
	f.StringVar(&flags.segmentationBackend, "segmentation-backend", defaults.Segmentation.Backend, "Segmentation backend: pyannote or webrtc")
	f.StringVar(&flags.transcriptionBackend, "transcription-backend", defaults.Transcription.Backend, "Transcription backend: whisperx or http")
	f.BoolVar(&flags.ignoreConfig, "ignore-config", false, "Ignore the config file and use flags and defaults only")
}

// processConfig resolves the run configuration: the config file (unless
// ignored), then every flag the user set explicitly, then validation.
func processConfig(ctx *commandContext, cmd *cobra.Command, flags *processFlags) (*config.Config, error) {
	var cfg *config.Config
	if flags.ignoreConfig {
		defaults := config.Default()
		cfg = &defaults
	} else {
		read, err := ctx.readConfig()
		if err != nil {
			return nil, err
		}
		cfg = read
	}
	applyProcessFlags(cmd, flags, cfg)
	if err := cfg.Finalize(); err != nil {
		return nil, configError(err)
	}
	return cfg, nil
}

func applyProcessFlags(cmd *cobra.Command, flags *processFlags, cfg *config.Config) {
	changed := cmd.Flags().Changed
	if changed("output-path") {
		cfg.Project.OutputDir = flags.outputPath
	}
	if changed("project-name") {
		cfg.Project.Name = flags.projectName
	}
	if changed("mode") {
		cfg.Pipeline.Mode = flags.mode
	}
	if changed("device") {
		cfg.Pipeline.Device = flags.device
	}
	if changed("whisper-model") {
		cfg.Transcription.Model = flags.whisperModel
	}
	if changed("diarization-model") {
		cfg.Diarization.Model = flags.diarizationModel
	}
	if changed("segmentation-model") {
		cfg.Segmentation.Model = flags.segmentationModel
	}
	if changed("seg-onset") {
		cfg.Segmentation.Onset = flags.segOnset
	}
	if changed("seg-offset") {
		cfg.Segmentation.Offset = flags.segOffset
	}
	if changed("seg-min-duration") {
		cfg.Segmentation.MinDuration = flags.segMinDuration
	}
	if changed("seg-min-duration-off") {
		cfg.Segmentation.MinDurationOff = flags.segMinDurationOff
	}
	if changed("hf-token") {
		cfg.HuggingFace.Token = flags.hfToken
	}
	if changed("valid-ratio") {
		cfg.Pipeline.ValidRatio = flags.validRatio
	}
	if changed("language") {
		cfg.Pipeline.Language = flags.language
	}
	if changed("spacer-ms") {
		cfg.Pipeline.SpacerMS = flags.spacerMS
	}
	if changed("sample-rate") {
		cfg.Pipeline.SampleRate = flags.sampleRate
	}
	if changed("num-speakers") {
		cfg.Diarization.NumSpeakers = flags.numSpeakers
	}
	if changed("segmentation-backend") {
		cfg.Segmentation.Backend = flags.segmentationBackend
	}
	if changed("transcription-backend") {
		cfg.Transcription.Backend = flags.transcriptionBackend
	}
}

func runProcess(cmd *cobra.Command, cfg *config.Config, input string) error {
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger = logging.NewComponentLogger(logger, "cli")

	runCtx := cmd.Context()
	if runCtx == nil {
		runCtx = context.Background()
	}
	if err := checkReadiness(runCtx, cfg, logger); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)
	fmt.Fprintln(out, renderBanner("PROCESSING", input, colorize))

	runner := newRunner(cfg, input, logger, newProgress(cmd.ErrOrStderr(), logger))
	result, err := runner.Run(runCtx, input)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, renderBanner("DONE", result.Root, colorize))
	fmt.Fprintln(out, renderProcessSummary(result))
	return nil
}

// checkReadiness fails fast when a required binary or sidecar is missing,
// before any output directory is created.
func checkReadiness(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if missing := deps.Missing(preflight.CheckSystemDeps(cfg)); len(missing) > 0 {
		names := make([]string, 0, len(missing))
		for _, dep := range missing {
			names = append(names, fmt.Sprintf("%s (%s)", dep.Name, dep.Detail))
		}
		return services.Wrap(services.ErrConfiguration, "preflight", "dependencies", "Missing required binaries: "+strings.Join(names, ", "), nil)
	}

	results := preflight.RunAll(ctx, cfg)
	for _, r := range results {
		if r.Passed {
			logger.Debug("preflight check passed",
				logging.String("check", r.Name),
				logging.String("detail", r.Detail),
			)
		}
	}
	if failed := preflight.Failed(results); len(failed) > 0 {
		details := make([]string, 0, len(failed))
		for _, r := range failed {
			details = append(details, fmt.Sprintf("%s: %s", r.Name, r.Detail))
		}
		return services.Wrap(services.ErrConfiguration, "preflight", "checks", strings.Join(details, "; "), nil)
	}
	return nil
}

func newProgress(w io.Writer, logger *slog.Logger) pipeline.Progress {
	if shouldColorize(w) {
		return pipeline.NewBarProgress(w)
	}
	return pipeline.NewLogProgress(logger)
}

func renderProcessSummary(result pipeline.Result) string {
	rows := [][]string{
		{"Run ID", result.RunID},
		{"Mode", result.Mode},
		{"Clips", fmt.Sprintf("%d", len(result.Clips))},
		{"Train", fmt.Sprintf("%d", result.Counts.Train)},
		{"Valid", fmt.Sprintf("%d", result.Counts.Valid)},
		{"Source audio", formatSeconds(result.Audio)},
		{"Elapsed", result.Duration.Round(time.Millisecond).String()},
		{"Output", result.Root},
	}
	return renderTable([]string{"Field", "Value"}, rows, []columnAlignment{alignLeft, alignLeft})
}
