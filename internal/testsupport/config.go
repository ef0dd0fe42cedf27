package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"ozen/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Project.OutputDir = filepath.Join(base, "output")
	cfgVal.Logging.Dir = filepath.Join(base, "logs")
	cfgVal.Logging.Level = "error"
	cfgVal.HuggingFace.Token = "hf_test"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithMode sets the pipeline mode on the test config.
func WithMode(mode string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Pipeline.Mode = mode
	}
}

// WithHTTPTranscription points transcription at an HTTP whisper sidecar.
func WithHTTPTranscription(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Transcription.Backend = config.BackendHTTP
		b.cfg.Transcription.URL = url
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, ffmpeg and ffprobe are stubbed
// with scripts that exit 0.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ffmpeg", "ffprobe"}
		}
		scripts := make(map[string]string, len(names))
		for _, name := range names {
			scripts[name] = "#!/bin/sh\nexit 0\n"
		}
		StubBinaries(b.t, filepath.Join(b.baseDir, "bin"), scripts)
	}
}

// StubBinaries writes each script as an executable named by its key into dir
// and prepends dir to PATH for the rest of the test.
func StubBinaries(t testing.TB, dir string, scripts map[string]string) {
	t.Helper()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir bin dir: %v", err)
	}
	for name, script := range scripts {
		target := filepath.Join(dir, name)
		if err := os.WriteFile(target, []byte(script), 0o755); err != nil {
			t.Fatalf("write stub %s: %v", name, err)
		}
	}

	oldPath := os.Getenv("PATH")
	if err := os.Setenv("PATH", dir+string(os.PathListSeparator)+oldPath); err != nil {
		t.Fatalf("set PATH: %v", err)
	}
	t.Cleanup(func() {
		_ = os.Setenv("PATH", oldPath)
	})
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Project.OutputDir)
}
