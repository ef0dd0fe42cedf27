package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"ozen/internal/services"
)

var fixedNow = time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func TestCreateLayout(t *testing.T) {
	out := t.TempDir()
	layout, err := Create(out, "My Voice", fixedNow)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer layout.Close()

	wantRoot := filepath.Join(out, "my_voice", "20240309-140507")
	if layout.Root != wantRoot {
		t.Fatalf("root = %s, want %s", layout.Root, wantRoot)
	}
	if info, err := os.Stat(layout.Wavs); err != nil || !info.IsDir() {
		t.Fatalf("wavs dir missing: %v", err)
	}
	if layout.SourcePath() != filepath.Join(wantRoot, "source.wav") {
		t.Fatalf("source path = %s", layout.SourcePath())
	}
	if got := layout.InputCopyPath("/x/Talk.MP3"); got != filepath.Join(wantRoot, "input.mp3") {
		t.Fatalf("input copy path = %s", got)
	}
}

func TestCreateLockAndCollision(t *testing.T) {
	out := t.TempDir()
	first, err := Create(out, "proj", fixedNow)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := Create(out, "proj", fixedNow); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected lock conflict, got %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	second, err := Create(out, "proj", fixedNow)
	if err != nil {
		t.Fatalf("Create after release: %v", err)
	}
	defer second.Close()
	if second.Timestamp != "20240309-140507-2" {
		t.Fatalf("timestamp = %s, want suffixed run dir", second.Timestamp)
	}
}

func TestSplit(t *testing.T) {
	tests := []struct {
		n     int
		ratio float64
		train int
	}{
		{n: 10, ratio: 0.2, train: 8},
		{n: 5, ratio: 0.2, train: 4},
		{n: 3, ratio: 0.2, train: 3},
		{n: 1, ratio: 0.5, train: 1},
		{n: 4, ratio: 0, train: 4},
		{n: 0, ratio: 0.2, train: 0},
	}
	for _, tc := range tests {
		if got := SplitIndex(tc.n, tc.ratio); got != tc.train {
			t.Fatalf("SplitIndex(%d, %v) = %d, want %d", tc.n, tc.ratio, got, tc.train)
		}
	}
	if SplitOf(7, 10, 0.2) != SplitTrain || SplitOf(8, 10, 0.2) != SplitValid {
		t.Fatal("unexpected split boundary")
	}
}

func TestWriteManifests(t *testing.T) {
	layout, err := Create(t.TempDir(), "proj", fixedNow)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer layout.Close()

	// Stale content must be truncated.
	if err := os.WriteFile(filepath.Join(layout.Root, "train.txt"), []byte("old\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	entries := []Entry{
		{Clip: ClipName("talk", 0), Text: "hello | there\nfriend", Transcribed: true},
		{Clip: ClipName("talk", 1), Text: "", Transcribed: true},
		{Clip: ClipName("talk", 2)},
	}
	counts, err := WriteManifests(layout, entries, 0.3)
	if err != nil {
		t.Fatalf("WriteManifests: %v", err)
	}
	if counts.Train != 3 || counts.Valid != 0 {
		t.Fatalf("counts = %+v", counts)
	}
	train := readFile(t, filepath.Join(layout.Root, "train.txt"))
	want := "wavs/talk-0.wav|hello there friend\nwavs/talk-1.wav|\nwavs/talk-2.wav\n"
	if train != want {
		t.Fatalf("train.txt = %q, want %q", train, want)
	}
	if valid := readFile(t, filepath.Join(layout.Root, "valid.txt")); valid != "" {
		t.Fatalf("valid.txt = %q", valid)
	}

	counts, err = WriteManifests(layout, entries[:2], 0.5)
	if err != nil {
		t.Fatalf("WriteManifests: %v", err)
	}
	if counts.Train != 1 || counts.Valid != 1 {
		t.Fatalf("counts = %+v", counts)
	}
	if valid := readFile(t, filepath.Join(layout.Root, "valid.txt")); !strings.HasPrefix(valid, "wavs/talk-1.wav") {
		t.Fatalf("valid.txt = %q", valid)
	}
}

func TestMetadataRoundTrip(t *testing.T) {
	layout, err := Create(t.TempDir(), "proj", fixedNow)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer layout.Close()

	id := NewRunID()
	meta := Metadata{
		RunID:     id,
		Project:   layout.Project,
		CreatedAt: fixedNow,
		Mode:      "diarize",
		Clips: []ClipMetadata{
			{Index: 0, File: "wavs/talk-0.wav", Start: 2, End: 4.5, Speaker: "SPEAKER_00", Split: SplitTrain},
		},
	}
	if err := WriteMetadata(layout, meta); err != nil {
		t.Fatalf("WriteMetadata: %v", err)
	}
	got, err := ReadMetadata(layout.Root)
	if err != nil {
		t.Fatalf("ReadMetadata: %v", err)
	}
	if got.RunID != id || len(got.Clips) != 1 || got.Clips[0].Speaker != "SPEAKER_00" {
		t.Fatalf("metadata = %+v", got)
	}
}

func TestClipBase(t *testing.T) {
	if got := ClipBase("/audio/My Talk.final.mp3"); got != "My_Talk.final" {
		t.Fatalf("ClipBase = %q", got)
	}
	if got := ClipName("talk", 12); got != "talk-12.wav" {
		t.Fatalf("ClipName = %q", got)
	}
}
