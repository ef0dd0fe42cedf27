package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

const metadataFileName = "metadata.json"

// Metadata describes a finished run.
type Metadata struct {
	RunID      string         `json:"run_id"`
	Project    string         `json:"project"`
	CreatedAt  time.Time      `json:"created_at"`
	Mode       string         `json:"mode"`
	Input      string         `json:"input"`
	SampleRate int            `json:"sample_rate"`
	SpacerMS   int            `json:"spacer_ms"`
	ValidRatio float64        `json:"valid_ratio"`
	Models     Models         `json:"models"`
	Clips      []ClipMetadata `json:"clips"`
}

// Models records which model produced each stage's output.
type Models struct {
	Diarization   string `json:"diarization,omitempty"`
	Segmentation  string `json:"segmentation,omitempty"`
	Transcription string `json:"transcription,omitempty"`
}

// ClipMetadata records where a clip came from in the prepared audio.
type ClipMetadata struct {
	Index   int     `json:"index"`
	File    string  `json:"file"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker string  `json:"speaker,omitempty"`
	Split   string  `json:"split"`
	Text    string  `json:"text,omitempty"`
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// WriteMetadata writes metadata.json into the run directory.
func WriteMetadata(l *Layout, m Metadata) error {
	if m.Clips == nil {
		m.Clips = []ClipMetadata{}
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(l.Root, metadataFileName), append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	return nil
}

// ReadMetadata loads metadata.json from a run directory.
func ReadMetadata(root string) (Metadata, error) {
	var m Metadata
	data, err := os.ReadFile(filepath.Join(root, metadataFileName))
	if err != nil {
		return m, fmt.Errorf("read metadata: %w", err)
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("decode metadata: %w", err)
	}
	return m, nil
}
