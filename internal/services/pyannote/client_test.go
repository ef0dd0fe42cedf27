package pyannote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"ozen/internal/config"
	"ozen/internal/services"
)

func newTestConfig(t *testing.T, url string) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Diarization.URL = url
	cfg.Segmentation.URL = url
	cfg.Diarization.NumSpeakers = 2
	cfg.HuggingFace.Token = "hf_test"
	return &cfg
}

func writeClip(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "source.wav")
	if err := os.WriteFile(path, []byte("RIFF"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDiarize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/diarize" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.FormValue("hf_token") != "hf_test" || r.FormValue("num_speakers") != "2" ||
			r.FormValue("model") != "pyannote/speaker-diarization" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"segments": []map[string]any{
				{"speaker_id": "SPEAKER_00", "start_time": 0.5, "end_time": 2.0},
				{"speaker_id": "SPEAKER_01", "start_time": 2.0, "end_time": 3.5},
			},
			"num_speakers": 2,
		})
	}))
	defer srv.Close()

	client := New(newTestConfig(t, srv.URL))
	spans, err := client.Diarize(context.Background(), writeClip(t))
	if err != nil {
		t.Fatalf("Diarize: %v", err)
	}
	if len(spans) != 2 || spans[1].Speaker != "SPEAKER_01" || spans[1].End != 3.5 {
		t.Fatalf("unexpected spans %+v", spans)
	}
}

func TestSegmentSendsThresholds(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/segment" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.FormValue("onset") != "0.6" || r.FormValue("offset") != "0.9" ||
			r.FormValue("min_duration_on") != "2" || r.FormValue("min_duration_off") != "0" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{"segments":[{"start_time":2.1,"end_time":6.4}]}`))
	}))
	defer srv.Close()

	client := New(newTestConfig(t, srv.URL))
	spans, err := client.Segment(context.Background(), writeClip(t))
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	if len(spans) != 1 || spans[0].Start != 2.1 || spans[0].Speaker != "" {
		t.Fatalf("unexpected spans %+v", spans)
	}
}

func TestErrorPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"segments":[],"error":"gated model: accept the license"}`))
	}))
	defer srv.Close()

	client := New(newTestConfig(t, srv.URL))
	if _, err := client.Diarize(context.Background(), writeClip(t)); !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
	if _, err := client.Segment(context.Background(), writeClip(t)); !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}
