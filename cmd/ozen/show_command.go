package main

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"ozen/internal/dataset"
	"ozen/internal/services"
)

const showTextWidth = 48

func newShowCommand() *cobra.Command {
	var speaker string
	var split string

	cmd := &cobra.Command{
		Use:         "show <run-dir>",
		Short:       "Show the clips recorded for a finished run",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, err := dataset.ReadMetadata(args[0])
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					return services.Wrap(services.ErrNotFound, "show", "read metadata", fmt.Sprintf("No ozen run at %s", args[0]), err)
				}
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run %s (%s)\n", meta.RunID, meta.Project)
			fmt.Fprintf(out, "Created: %s\n", meta.CreatedAt.Local().Format(time.DateTime))
			fmt.Fprintf(out, "Mode: %s\n", meta.Mode)
			fmt.Fprintf(out, "Input: %s\n", meta.Input)
			if models := describeModels(meta.Models); models != "" {
				fmt.Fprintf(out, "Models: %s\n", models)
			}

			clips := filterClips(meta.Clips, strings.TrimSpace(speaker), strings.TrimSpace(split))
			if len(clips) == 0 {
				fmt.Fprintln(out, "No clips match")
				return nil
			}
			fmt.Fprintln(out, renderClipTable(clips))
			return nil
		},
	}

	cmd.Flags().StringVar(&speaker, "speaker", "", "Only show clips for this speaker")
	cmd.Flags().StringVar(&split, "split", "", "Only show clips in this split (train or valid)")
	return cmd
}

func filterClips(clips []dataset.ClipMetadata, speaker, split string) []dataset.ClipMetadata {
	if speaker == "" && split == "" {
		return clips
	}
	filtered := make([]dataset.ClipMetadata, 0, len(clips))
	for _, clip := range clips {
		if speaker != "" && clip.Speaker != speaker {
			continue
		}
		if split != "" && !strings.EqualFold(clip.Split, split) {
			continue
		}
		filtered = append(filtered, clip)
	}
	return filtered
}

func describeModels(m dataset.Models) string {
	var parts []string
	if m.Diarization != "" {
		parts = append(parts, "diarization="+m.Diarization)
	}
	if m.Segmentation != "" {
		parts = append(parts, "segmentation="+m.Segmentation)
	}
	if m.Transcription != "" {
		parts = append(parts, "transcription="+m.Transcription)
	}
	return strings.Join(parts, ", ")
}

func renderClipTable(clips []dataset.ClipMetadata) string {
	rows := make([][]string, 0, len(clips))
	for _, clip := range clips {
		rows = append(rows, []string{
			fmt.Sprintf("%d", clip.Index),
			clip.File,
			formatSeconds(clip.Start),
			formatSeconds(clip.End - clip.Start),
			clip.Speaker,
			clip.Split,
			truncate(clip.Text, showTextWidth),
		})
	}
	headers := []string{"#", "File", "Start", "Length", "Speaker", "Split", "Text"}
	aligns := []columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignLeft, alignLeft, alignLeft}
	return renderTable(headers, rows, aligns)
}
