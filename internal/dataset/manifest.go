package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ozen/internal/textutil"
)

// Split names.
const (
	SplitTrain = "train"
	SplitValid = "valid"
)

const (
	trainFileName = "train.txt"
	validFileName = "valid.txt"
)

// Entry is one manifest line.
type Entry struct {
	Clip        string
	Text        string
	Transcribed bool
}

// Counts reports how many entries went into each split.
type Counts struct {
	Train int
	Valid int
}

// IsTrain reports whether clip idx of n belongs to the training split:
// idx < n*(1-validRatio).
func IsTrain(idx, n int, validRatio float64) bool {
	return float64(idx) < float64(n)*(1-validRatio)
}

// SplitOf returns the split name of clip idx of n.
func SplitOf(idx, n int, validRatio float64) string {
	if IsTrain(idx, n, validRatio) {
		return SplitTrain
	}
	return SplitValid
}

// SplitIndex returns the number of training clips out of n.
func SplitIndex(n int, validRatio float64) int {
	count := 0
	for i := 0; i < n; i++ {
		if IsTrain(i, n, validRatio) {
			count++
		}
	}
	return count
}

// ManifestPath returns the manifest-relative path of a clip.
func ManifestPath(clip string) string {
	return wavsDirName + "/" + clip
}

// Line renders the manifest line for an entry, without a trailing newline.
func (e Entry) Line() string {
	if !e.Transcribed {
		return ManifestPath(e.Clip)
	}
	return ManifestPath(e.Clip) + "|" + textutil.CleanTranscript(e.Text)
}

// WriteManifests truncates train.txt and valid.txt and writes entries in
// order, assigning splits by position.
func WriteManifests(l *Layout, entries []Entry, validRatio float64) (Counts, error) {
	var train, valid strings.Builder
	var counts Counts
	for i, e := range entries {
		if IsTrain(i, len(entries), validRatio) {
			train.WriteString(e.Line() + "\n")
			counts.Train++
		} else {
			valid.WriteString(e.Line() + "\n")
			counts.Valid++
		}
	}
	if err := os.WriteFile(filepath.Join(l.Root, trainFileName), []byte(train.String()), 0o644); err != nil {
		return Counts{}, fmt.Errorf("write train manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(l.Root, validFileName), []byte(valid.String()), 0o644); err != nil {
		return Counts{}, fmt.Errorf("write valid manifest: %w", err)
	}
	return counts, nil
}
