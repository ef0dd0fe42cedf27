package pipeline

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/schollz/progressbar/v3"

	"ozen/internal/logging"
)

// Progress reports per-clip progress of the slice and transcribe stages.
type Progress interface {
	Start(stage string, total int)
	Increment()
	Finish()
}

type barProgress struct {
	w   io.Writer
	bar *progressbar.ProgressBar
}

// NewBarProgress draws a progress bar on w. Use it when w is a terminal.
func NewBarProgress(w io.Writer) Progress {
	return &barProgress{w: w}
}

func (p *barProgress) Start(stage string, total int) {
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(p.w),
		progressbar.OptionSetDescription(fmt.Sprintf("%-10s", stage)),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(p.w) }),
	)
}

func (p *barProgress) Increment() {
	if p.bar != nil {
		_ = p.bar.Add(1)
	}
}

func (p *barProgress) Finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
		p.bar = nil
	}
}

type logProgress struct {
	logger  *slog.Logger
	sampler *logging.ProgressSampler
	stage   string
	total   int
	done    int
}

// NewLogProgress logs progress at 25% steps. Use it when output is not a
// terminal.
func NewLogProgress(logger *slog.Logger) Progress {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &logProgress{logger: logger, sampler: logging.NewProgressSampler(25)}
}

func (p *logProgress) Start(stage string, total int) {
	p.stage = stage
	p.total = total
	p.done = 0
	p.sampler.Reset()
}

func (p *logProgress) Increment() {
	p.done++
	if p.total <= 0 {
		return
	}
	percent := float64(p.done) * 100 / float64(p.total)
	if p.sampler.ShouldLog(percent, p.stage) {
		p.logger.Info("clip progress",
			logging.String(logging.FieldStage, p.stage),
			logging.Int("done", p.done),
			logging.Int("total", p.total),
			logging.Float64("percent", percent),
		)
	}
}

func (p *logProgress) Finish() {}
