package preflight

import (
	"context"

	"ozen/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the checks that apply to the configured mode and backends.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	results = append(results, CheckWritableTarget("Output directory", cfg.Project.OutputDir))

	checked := map[string]bool{}
	sidecar := func(name, url string) {
		if checked[url] {
			return
		}
		checked[url] = true
		results = append(results, CheckSidecar(ctx, name, url))
	}

	if cfg.NeedsDiarization() {
		sidecar("Pyannote sidecar", cfg.Diarization.URL)
	}
	if cfg.NeedsSegmentation() && cfg.Segmentation.Backend == config.BackendPyannote {
		sidecar("Pyannote sidecar", cfg.Segmentation.URL)
	}
	if cfg.NeedsHuggingFaceToken() {
		results = append(results, CheckToken("Hugging Face token", cfg.HuggingFace.Token))
	}
	if cfg.NeedsTranscription() && cfg.Transcription.Backend == config.BackendHTTP {
		sidecar("Whisper sidecar", cfg.Transcription.URL)
	}
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
