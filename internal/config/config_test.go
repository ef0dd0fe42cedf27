package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"ozen/internal/config"
)

func isolateEnv(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("HF_TOKEN", "")
	os.Unsetenv("HF_TOKEN")
	t.Setenv("HUGGING_FACE_HUB_TOKEN", "")
	os.Unsetenv("HUGGING_FACE_HUB_TOKEN")
	return home
}

func TestLoadDefaultConfigUsesEnvTokenAndExpandsPaths(t *testing.T) {
	isolateEnv(t)
	t.Setenv("HF_TOKEN", "hf-test")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if !filepath.IsAbs(cfg.Project.OutputDir) {
		t.Fatalf("expected absolute output dir, got %q", cfg.Project.OutputDir)
	}
	if filepath.Base(cfg.Project.OutputDir) != "output" {
		t.Fatalf("unexpected output dir: %q", cfg.Project.OutputDir)
	}
	if cfg.HuggingFace.Token != "hf-test" {
		t.Fatalf("expected token from env, got %q", cfg.HuggingFace.Token)
	}
	if cfg.Pipeline.Mode != config.ModeSegment {
		t.Fatalf("unexpected default mode %q", cfg.Pipeline.Mode)
	}
	if cfg.Pipeline.ValidRatio != 0.2 {
		t.Fatalf("unexpected valid ratio %v", cfg.Pipeline.ValidRatio)
	}
	if cfg.Pipeline.SpacerMS != 2000 {
		t.Fatalf("unexpected spacer %d", cfg.Pipeline.SpacerMS)
	}
	if cfg.Segmentation.Onset != 0.6 || cfg.Segmentation.Offset != 0.9 {
		t.Fatalf("unexpected thresholds %+v", cfg.Segmentation)
	}
	if cfg.Segmentation.MinDuration != 2.0 || cfg.Segmentation.MinDurationOff != 0 {
		t.Fatalf("unexpected durations %+v", cfg.Segmentation)
	}
	if cfg.Segmentation.URL != cfg.Diarization.URL {
		t.Fatalf("expected segmentation url to default to diarization url, got %q", cfg.Segmentation.URL)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults %+v", cfg.Logging)
	}
}

func TestLoadFallsBackToSecondaryTokenEnv(t *testing.T) {
	isolateEnv(t)
	t.Setenv("HUGGING_FACE_HUB_TOKEN", " hub-token ")

	cfg, err := config.LoadDefaults()
	if err != nil {
		t.Fatalf("LoadDefaults: %v", err)
	}
	if cfg.HuggingFace.Token != "hub-token" {
		t.Fatalf("expected trimmed hub token, got %q", cfg.HuggingFace.Token)
	}
}

func TestLoadSkipsEmptyPrimaryTokenEnv(t *testing.T) {
	isolateEnv(t)
	t.Setenv("HF_TOKEN", "  ")
	t.Setenv("HUGGING_FACE_HUB_TOKEN", "hub-token")

	cfg, err := config.LoadDefaults()
	if err != nil {
		t.Fatalf("LoadDefaults: %v", err)
	}
	if cfg.HuggingFace.Token != "hub-token" {
		t.Fatalf("expected fallback to hub token, got %q", cfg.HuggingFace.Token)
	}
}

func TestLogFormatNormalized(t *testing.T) {
	isolateEnv(t)
	t.Setenv("HF_TOKEN", "tok")
	cfg := config.Default()
	cfg.Logging.Format = " JSON "
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("format = %q, want json", cfg.Logging.Format)
	}
}

func TestLoadRequiresTokenForPyannote(t *testing.T) {
	isolateEnv(t)

	_, _, _, err := config.Load("")
	if err == nil {
		t.Fatal("expected error without token")
	}
	if !strings.Contains(err.Error(), "huggingface.token") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTranscribeModeDoesNotRequireToken(t *testing.T) {
	isolateEnv(t)
	cfg := config.Default()
	cfg.Pipeline.Mode = "transcribe"
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if cfg.NeedsDiarization() || cfg.NeedsSegmentation() || !cfg.NeedsTranscription() {
		t.Fatalf("unexpected stage selection for transcribe mode")
	}
}

func TestWebRTCSegmentationDoesNotRequireToken(t *testing.T) {
	isolateEnv(t)
	cfg := config.Default()
	cfg.Segmentation.Backend = "WebRTC"
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if cfg.Segmentation.Backend != config.BackendWebRTC {
		t.Fatalf("expected lowercased backend, got %q", cfg.Segmentation.Backend)
	}
}

func TestLoadCustomConfigFile(t *testing.T) {
	home := isolateEnv(t)
	path := filepath.Join(home, "custom.toml")

	custom := config.Default()
	custom.Project.Name = "narrator"
	custom.Project.OutputDir = "~/datasets"
	custom.Pipeline.Mode = "diarize"
	custom.Pipeline.ValidRatio = 0.1
	custom.HuggingFace.Token = "from-file"
	custom.Diarization.URL = "http://sidecar:9000/"
	custom.Logging.Dir = "~/logs"

	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("unexpected resolution: %q exists=%v", resolved, exists)
	}
	if cfg.Project.OutputDir != filepath.Join(home, "datasets") {
		t.Fatalf("unexpected output dir %q", cfg.Project.OutputDir)
	}
	if cfg.Logging.Dir != filepath.Join(home, "logs") {
		t.Fatalf("unexpected log dir %q", cfg.Logging.Dir)
	}
	if cfg.Diarization.URL != "http://sidecar:9000" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Diarization.URL)
	}
	if cfg.Pipeline.Mode != config.ModeDiarize || cfg.NeedsTranscription() {
		t.Fatalf("unexpected mode handling %q", cfg.Pipeline.Mode)
	}
	if cfg.HuggingFace.Token != "from-file" {
		t.Fatalf("unexpected token %q", cfg.HuggingFace.Token)
	}
}

func TestLoadProjectLocalConfig(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	t.Chdir(dir)

	content := "[pipeline]\nmode = \"transcribe\"\n[transcription]\nbackend = \"http\"\n"
	if err := os.WriteFile("ozen.toml", []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || filepath.Base(resolved) != "ozen.toml" {
		t.Fatalf("expected project config, got %q exists=%v", resolved, exists)
	}
	if cfg.Transcription.Backend != config.BackendHTTP {
		t.Fatalf("unexpected backend %q", cfg.Transcription.Backend)
	}
}

func TestDotEnvSuppliesToken(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.WriteFile(".env", []byte("HF_TOKEN=dotenv-token\n"), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("HF_TOKEN") })

	cfg, err := config.LoadDefaults()
	if err != nil {
		t.Fatalf("LoadDefaults: %v", err)
	}
	if cfg.HuggingFace.Token != "dotenv-token" {
		t.Fatalf("expected token from .env, got %q", cfg.HuggingFace.Token)
	}
}

func TestNormalizeModeAliases(t *testing.T) {
	cases := map[string]string{
		"":                         config.ModeSegment,
		"segment":                  config.ModeSegment,
		"Segment  and  Transcribe": config.ModeSegment,
		"segment-and-transcribe":   config.ModeSegment,
		"DIARIZE":                  config.ModeDiarize,
		"diarization":              config.ModeDiarize,
		"auto":                     config.ModeAuto,
		"transcribe":               config.ModeTranscribe,
		"bogus":                    "bogus",
	}
	for in, want := range cases {
		if got := config.NormalizeMode(in); got != want {
			t.Fatalf("NormalizeMode(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	isolateEnv(t)
	t.Setenv("HF_TOKEN", "tok")

	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"mode", func(c *config.Config) { c.Pipeline.Mode = "train" }, "pipeline.mode"},
		{"device", func(c *config.Config) { c.Pipeline.Device = "tpu" }, "pipeline.device"},
		{"ratio high", func(c *config.Config) { c.Pipeline.ValidRatio = 1 }, "valid_ratio"},
		{"ratio negative", func(c *config.Config) { c.Pipeline.ValidRatio = -0.1 }, "valid_ratio"},
		{"spacer", func(c *config.Config) { c.Pipeline.SpacerMS = -1 }, "spacer_ms"},
		{"language", func(c *config.Config) { c.Pipeline.Language = "elvish" }, "pipeline.language"},
		{"onset", func(c *config.Config) { c.Segmentation.Onset = 1.5 }, "onset"},
		{"offset", func(c *config.Config) { c.Segmentation.Offset = -1 }, "offset"},
		{"min duration", func(c *config.Config) { c.Segmentation.MinDuration = -2 }, "min_duration"},
		{"webrtc mode", func(c *config.Config) { c.Segmentation.WebRTCMode = 4 }, "webrtc_mode"},
		{"seg backend", func(c *config.Config) { c.Segmentation.Backend = "silero" }, "segmentation.backend"},
		{"asr backend", func(c *config.Config) { c.Transcription.Backend = "vosk" }, "transcription.backend"},
		{"log format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
	}
	for _, tc := range cases {
		cfg := config.Default()
		tc.mutate(&cfg)
		err := cfg.Finalize()
		if err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
		if !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%s: error %q does not mention %q", tc.name, err, tc.want)
		}
	}
}

func TestLanguageNormalizedToISO2(t *testing.T) {
	isolateEnv(t)
	t.Setenv("HF_TOKEN", "tok")
	cfg := config.Default()
	cfg.Pipeline.Language = " German "
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if cfg.Pipeline.Language != "de" {
		t.Fatalf("language = %q, want de", cfg.Pipeline.Language)
	}
}

func TestProjectNameNoneIsCleared(t *testing.T) {
	isolateEnv(t)
	t.Setenv("HF_TOKEN", "tok")
	cfg := config.Default()
	cfg.Project.Name = "none"
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if cfg.Project.Name != "" {
		t.Fatalf("expected placeholder project name cleared, got %q", cfg.Project.Name)
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	isolateEnv(t)
	t.Setenv("HF_TOKEN", "tok")
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample file to exist")
	}
	def := config.Default()
	if cfg.Segmentation.Onset != def.Segmentation.Onset || cfg.Transcription.Model != def.Transcription.Model {
		t.Fatalf("sample diverges from defaults: %+v", cfg)
	}
}

func TestReadDefersValidationUntilFinalize(t *testing.T) {
	isolateEnv(t)

	cfg, _, exists, err := config.Read("")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if exists {
		t.Fatal("expected no config file")
	}
	if err := cfg.Finalize(); err == nil {
		t.Fatal("expected Finalize to require a token")
	}

	cfg.HuggingFace.Token = "hf_flag"
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize after override: %v", err)
	}
}
