package main

import (
	"os"
	"path/filepath"
	"testing"

	"ozen/internal/services"
	"ozen/internal/testsupport"
)

func TestConfigInitAndValidate(t *testing.T) {
	isolateHome(t)
	t.Setenv("HF_TOKEN", "hf_env")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err := runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	_, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err == nil {
		t.Fatal("expected second init without --overwrite to fail")
	}
	requireContains(t, err.Error(), "already exists")

	out, _, err = runCLI(t, []string{"config", "validate"}, target)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Config path: "+target)
	requireContains(t, out, "Mode: segment and transcribe")
	requireContains(t, out, "Configuration valid")
}

func TestConfigValidateRequiresTokenForPyannote(t *testing.T) {
	isolateHome(t)

	cfg := testsupport.NewConfig(t)
	path := filepath.Join(testsupport.BaseDir(cfg), "absent.toml")
	out, _, err := runCLI(t, []string{"config", "validate"}, path)
	if err == nil {
		t.Fatalf("expected missing token to fail validation, got %q", out)
	}
	if code := services.ExitCode(err); code != 2 {
		t.Fatalf("exit code = %d, want 2", code)
	}
	requireContains(t, err.Error(), "huggingface.token")
}

func TestConfigValidateTranscribeOnlyNeedsNoToken(t *testing.T) {
	isolateHome(t)

	cfg := testsupport.NewConfig(t, testsupport.WithMode("transcribe"))
	cfg.HuggingFace.Token = ""
	path := filepath.Join(testsupport.BaseDir(cfg), "config.toml")
	writeTestConfig(t, path, cfg)

	out, _, err := runCLI(t, []string{"config", "validate"}, path)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Mode: transcribe")
	requireContains(t, out, "Configuration valid")
}
