package sidecar

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"ozen/internal/services"
)

func writeAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.wav")
	if err := os.WriteFile(path, []byte("RIFFfake"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestPostAudioSendsMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/echo" || r.Method != http.MethodPost {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		file, header, err := r.FormFile("audio")
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		data, _ := io.ReadAll(file)
		if header.Filename != "clip.wav" || string(data) != "RIFFfake" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if _, ok := r.MultipartForm.Value["empty"]; ok {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"model":"`+r.FormValue("model")+`"}`)
	}))
	defer srv.Close()

	client := New("test", "stage", srv.URL+"/", time.Second)
	var out struct {
		Model string `json:"model"`
	}
	fields := map[string]string{"model": "m1", "empty": ""}
	if err := client.PostAudio(context.Background(), "/echo", writeAudio(t), fields, &out); err != nil {
		t.Fatalf("PostAudio: %v", err)
	}
	if out.Model != "m1" {
		t.Fatalf("model = %q", out.Model)
	}
}

func TestPostAudioErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, "model crashed")
	}))
	defer srv.Close()

	client := New("test", "stage", srv.URL, time.Second)
	var out map[string]any
	err := client.PostAudio(context.Background(), "/x", writeAudio(t), nil, &out)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}

	err = client.PostAudio(context.Background(), "/x", filepath.Join(t.TempDir(), "missing.wav"), nil, &out)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for missing file, got %v", err)
	}
}

func TestHealth(t *testing.T) {
	var status atomic.Int32
	status.Store(http.StatusOK)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(int(status.Load()))
	}))
	defer srv.Close()

	client := New("test", "stage", srv.URL, time.Second)
	if err := client.Health(context.Background()); err != nil {
		t.Fatalf("Health: %v", err)
	}
	status.Store(http.StatusServiceUnavailable)
	if err := client.Health(context.Background()); err == nil {
		t.Fatal("expected unhealthy error")
	}
}

func TestPostAudioTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(300 * time.Millisecond):
		}
		_, _ = io.WriteString(w, `{}`)
	}))
	defer srv.Close()

	client := New("test", "stage", srv.URL, 50*time.Millisecond)
	var out map[string]any
	err := client.PostAudio(context.Background(), "/slow", writeAudio(t), nil, &out)
	if !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("expected timeout error, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = client.PostAudio(ctx, "/slow", writeAudio(t), nil, &out)
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
	if errors.Is(err, services.ErrTimeout) {
		t.Fatalf("cancelled context reported as timeout: %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled in chain, got %v", err)
	}
}
