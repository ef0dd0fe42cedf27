package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"ozen/internal/services"
)

// DefaultBinary is used when no ffmpeg binary is configured.
const DefaultBinary = "ffmpeg"

// CommandRunner executes an external command.
type CommandRunner func(ctx context.Context, name string, args ...string) error

// Converter wraps the ffmpeg binary used for input conversion.
type Converter struct {
	binary        string
	commandRunner CommandRunner
}

// NewConverter returns a converter that shells out to binary.
func NewConverter(binary string) *Converter {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = DefaultBinary
	}
	return &Converter{binary: binary}
}

// WithCommandRunner sets a custom command runner (for testing).
func (c *Converter) WithCommandRunner(runner CommandRunner) {
	c.commandRunner = runner
}

// ConvertToWAV writes src to dest as mono pcm_s16le WAV. A sampleRate of 0
// keeps the source rate.
func (c *Converter) ConvertToWAV(ctx context.Context, src, dest string, sampleRate int) error {
	if strings.TrimSpace(src) == "" || strings.TrimSpace(dest) == "" {
		return services.Wrap(services.ErrValidation, "prepare", "ffmpeg convert", "source and destination required", nil)
	}
	if sampleRate < 0 {
		return services.Wrap(services.ErrValidation, "prepare", "ffmpeg convert", fmt.Sprintf("invalid sample rate %d", sampleRate), nil)
	}
	if err := c.run(ctx, BuildConvertArgs(src, dest, sampleRate)...); err != nil {
		return services.Wrap(services.ErrExternalTool, "prepare", "ffmpeg convert", src, err)
	}
	return nil
}

// BuildConvertArgs returns the ffmpeg arguments used by ConvertToWAV.
func BuildConvertArgs(src, dest string, sampleRate int) []string {
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", src,
		"-map", "0:a:0",
		"-vn",
		"-sn",
		"-dn",
		"-ac", "1",
	}
	if sampleRate > 0 {
		args = append(args, "-ar", strconv.Itoa(sampleRate))
	}
	return append(args, "-c:a", "pcm_s16le", dest)
}

func (c *Converter) run(ctx context.Context, args ...string) error {
	if c.commandRunner != nil {
		return c.commandRunner(ctx, c.binary, args...)
	}
	cmd := exec.CommandContext(ctx, c.binary, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", c.binary, err, strings.TrimSpace(string(output)))
	}
	return nil
}
