package pipeline

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"ozen/internal/config"
	"ozen/internal/dataset"
	"ozen/internal/services"
)

// Options are the per-run settings resolved from config and flags.
type Options struct {
	Mode           string  `validate:"required,oneof=auto 'segment and transcribe' diarize transcribe"`
	Project        string  `validate:"required" name:"project"`
	OutputDir      string  `validate:"required" name:"output_dir"`
	ValidRatio     float64 `validate:"gte=0,lt=1" name:"valid_ratio"`
	SpacerMS       int     `validate:"gte=0" name:"spacer_ms"`
	SampleRate     int     `validate:"gte=0" name:"sample_rate"`
	MinDuration    float64 `validate:"gte=0" name:"min_duration"`
	MinDurationOff float64 `validate:"gte=0" name:"min_duration_off"`
	Models         dataset.Models

	// Now stamps the run directory; defaults to time.Now.
	Now func() time.Time
}

// webrtcSampleRate is the prepared-audio rate used for WebRTC VAD when the
// config keeps the source rate; the VAD only accepts 8/16/32/48 kHz.
const webrtcSampleRate = 16000

// OptionsFromConfig builds run options from a finalized config. An empty
// project name falls back to the input file name. WebRTC segmentation with
// sample_rate 0 prepares audio at 16 kHz so unsupported source rates are
// converted up front.
func OptionsFromConfig(cfg *config.Config, input string) Options {
	project := strings.TrimSpace(cfg.Project.Name)
	if project == "" {
		project = dataset.ClipBase(input)
	}
	opts := Options{
		Mode:           cfg.Pipeline.Mode,
		Project:        project,
		OutputDir:      cfg.Project.OutputDir,
		ValidRatio:     cfg.Pipeline.ValidRatio,
		SpacerMS:       cfg.Pipeline.SpacerMS,
		SampleRate:     cfg.Pipeline.SampleRate,
		MinDuration:    cfg.Segmentation.MinDuration,
		MinDurationOff: cfg.Segmentation.MinDurationOff,
	}
	if cfg.NeedsDiarization() {
		opts.Models.Diarization = cfg.Diarization.Model
	}
	if cfg.NeedsSegmentation() {
		opts.Models.Segmentation = cfg.Segmentation.Backend + ":" + cfg.Segmentation.Model
		if cfg.Segmentation.Backend == config.BackendWebRTC {
			opts.Models.Segmentation = fmt.Sprintf("webrtc:mode%d", cfg.Segmentation.WebRTCMode)
			if opts.SampleRate == 0 {
				opts.SampleRate = webrtcSampleRate
			}
		}
	}
	if cfg.NeedsTranscription() {
		opts.Models.Transcription = cfg.Transcription.Backend + ":" + cfg.Transcription.Model
	}
	return opts
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			if name := fld.Tag.Get("name"); name != "" {
				return name
			}
			return strings.ToLower(fld.Name)
		})
	})
	return validate
}

// Validate checks the options and reports every invalid field at once.
func (o Options) Validate() error {
	err := getValidator().Struct(o)
	if err == nil {
		return nil
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return services.Wrap(services.ErrValidation, "pipeline", "validate options", "", err)
	}
	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		messages = append(messages, fe.Field()+": "+describe(fe))
	}
	return services.Wrap(services.ErrValidation, "pipeline", "validate options", strings.Join(messages, "; "), nil)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "gte":
		return "must be at least " + fe.Param()
	case "lt":
		return "must be less than " + fe.Param()
	default:
		return "failed " + fe.Tag()
	}
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}
