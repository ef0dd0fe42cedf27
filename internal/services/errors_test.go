package services_test

import (
	"errors"
	"strings"
	"testing"

	"ozen/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "transcribe", "whisperx", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"transcribe", "whisperx", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapWithoutDetail(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected default marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestExitCodeMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"validation", services.Wrap(services.ErrValidation, "segment", "group", "no speech", nil), 2},
		{"configuration", services.Wrap(services.ErrConfiguration, "config", "load", "bad", nil), 2},
		{"not found", services.Wrap(services.ErrNotFound, "prepare", "stat", "missing", nil), 2},
		{"external", services.Wrap(services.ErrExternalTool, "prepare", "ffmpeg", "exit 1", errors.New("x")), 1},
		{"plain", errors.New("plain"), 1},
	}
	for _, tc := range cases {
		if got := services.ExitCode(tc.err); got != tc.want {
			t.Fatalf("%s: ExitCode = %d, want %d", tc.name, got, tc.want)
		}
	}
}
