package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ozen/internal/config"
	"ozen/internal/dataset"
	"ozen/internal/fileutil"
	"ozen/internal/logging"
	"ozen/internal/media/ffprobe"
	"ozen/internal/media/wavio"
	"ozen/internal/services"
	"ozen/internal/textutil"
	"ozen/internal/timeline"
)

// prepare copies the input into the run, converts it to PCM WAV when
// needed, prepends the spacer and writes source.wav.
func (r *Runner) prepare(ctx context.Context, logger *slog.Logger, st *run) error {
	probe, err := r.Prober.Inspect(ctx, st.input)
	if err != nil {
		return services.Wrap(services.ErrValidation, StagePrepare, "inspect input", st.input, err)
	}
	if probe.AudioStreamCount() == 0 {
		return services.Wrap(services.ErrValidation, StagePrepare, "inspect input", "no audio stream in "+st.input, nil)
	}
	logger.Info("input inspected",
		logging.String("format", probe.Format.FormatName),
		logging.Int("audio_streams", probe.AudioStreamCount()),
		logging.Float64("duration_seconds", probe.DurationSeconds()),
	)

	copyPath := st.layout.InputCopyPath(st.input)
	if err := fileutil.CopyFile(st.input, copyPath); err != nil {
		return services.Wrap(services.ErrExternalTool, StagePrepare, "copy input", copyPath, err)
	}

	audio, err := r.loadAudio(ctx, logger, probe, st)
	if err != nil {
		return err
	}
	spacer := time.Duration(r.Options.SpacerMS) * time.Millisecond
	st.audio = audio.PrependSilence(spacer)
	if err := st.audio.Write(st.layout.SourcePath()); err != nil {
		return services.Wrap(services.ErrExternalTool, StagePrepare, "write source", st.layout.SourcePath(), err)
	}
	logger.Info("source prepared",
		logging.String("path", st.layout.SourcePath()),
		logging.Int("sample_rate", st.audio.SampleRate),
		logging.Duration("spacer", spacer),
		logging.Float64("duration_seconds", st.audio.Duration()),
	)
	return nil
}

func (r *Runner) loadAudio(ctx context.Context, logger *slog.Logger, probe ffprobe.Result, st *run) (*wavio.Audio, error) {
	if readable(probe, r.Options.SampleRate) {
		audio, err := wavio.Read(st.input)
		if err == nil && audio.Channels == 1 && audio.BitDepth == 16 {
			return audio, nil
		}
		logger.Debug("wav input needs conversion", logging.Error(err))
	}

	converted := filepath.Join(st.layout.Root, "converted.wav")
	defer os.Remove(converted)
	if err := r.Converter.ConvertToWAV(ctx, st.input, converted, r.Options.SampleRate); err != nil {
		return nil, err
	}
	audio, err := wavio.Read(converted)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, StagePrepare, "read converted audio", converted, err)
	}
	logger.Info("input converted to wav", logging.Int("sample_rate", audio.SampleRate))
	return audio, nil
}

// readable reports whether the input can be used without conversion.
func readable(probe ffprobe.Result, sampleRate int) bool {
	if !probe.IsPCMWAV() {
		return false
	}
	stream, _ := probe.PrimaryAudio()
	if stream.Channels != 1 {
		return false
	}
	return sampleRate == 0 || stream.SampleRateHz() == sampleRate
}

func (r *Runner) diarize(ctx context.Context, logger *slog.Logger, st *run) error {
	turns, err := r.Diarizer.Diarize(ctx, st.layout.SourcePath())
	if err != nil {
		return err
	}
	st.groups = timeline.GroupDiarization(turns)
	logger.Info("diarization grouped",
		logging.Int("turns", len(turns)),
		logging.Int("groups", len(st.groups)),
		logging.Int("speakers", countSpeakers(st.groups)),
	)
	return nil
}

func (r *Runner) segment(ctx context.Context, logger *slog.Logger, st *run) error {
	raw, err := r.Segmenter.Segment(ctx, st.layout.SourcePath())
	if err != nil {
		return err
	}
	speech := timeline.Binarize(raw, r.Options.MinDuration, r.Options.MinDurationOff)
	if r.Options.Mode == config.ModeAuto {
		turnGroups := len(st.groups)
		st.groups = timeline.Intersect(st.groups, speech)
		logger.Info("speech intersected with speakers",
			logging.Int("regions", len(speech)),
			logging.Int("speaker_groups", turnGroups),
			logging.Int("groups", len(st.groups)),
		)
		return nil
	}
	st.groups = timeline.GroupSegmentation(speech)
	logger.Info("segmentation grouped",
		logging.Int("raw_regions", len(raw)),
		logging.Int("groups", len(st.groups)),
	)
	return nil
}

// slice writes one clip per group. Groups that fall outside the prepared
// audio are skipped; clip indices stay contiguous.
func (r *Runner) slice(_ context.Context, logger *slog.Logger, st *run) error {
	if r.Options.Mode == config.ModeTranscribe {
		st.groups = []timeline.Group{{Spans: []timeline.Span{{Start: 0, End: st.audio.Duration()}}}}
	}
	if len(st.groups) == 0 {
		return services.Wrap(services.ErrValidation, StageSlice, "slice clips",
			"no speech groups detected; nothing to write", nil)
	}

	progress := r.progress()
	progress.Start(StageSlice, len(st.groups))
	defer progress.Finish()

	for _, g := range st.groups {
		clip, err := st.audio.Slice(g.Start(), g.End())
		if err != nil {
			logging.WarnWithContext(logger, "group skipped", "group_skipped",
				logging.String(logging.FieldImpact, "clip omitted from dataset"),
				logging.Int("group", g.Index),
				logging.Error(err),
			)
			progress.Increment()
			continue
		}
		idx := len(st.clips)
		name := dataset.ClipName(st.base, idx)
		if err := clip.Write(st.layout.ClipPath(name)); err != nil {
			return services.Wrap(services.ErrExternalTool, StageSlice, "write clip", name, err)
		}
		st.clips = append(st.clips, dataset.ClipMetadata{
			Index:   idx,
			File:    dataset.ManifestPath(name),
			Start:   round3(g.Start()),
			End:     round3(g.End()),
			Speaker: g.Speaker,
		})
		progress.Increment()
	}
	if len(st.clips) == 0 {
		return services.Wrap(services.ErrValidation, StageSlice, "slice clips", "every group fell outside the audio", nil)
	}
	for i := range st.clips {
		st.clips[i].Split = dataset.SplitOf(i, len(st.clips), r.Options.ValidRatio)
	}
	logger.Info("clips written", logging.Int("clips", len(st.clips)), logging.String("dir", st.layout.Wavs))
	return nil
}

func (r *Runner) transcribe(ctx context.Context, logger *slog.Logger, st *run) error {
	progress := r.progress()
	progress.Start(StageTranscribe, len(st.clips))
	defer progress.Finish()

	st.texts = make([]string, len(st.clips))
	for i, c := range st.clips {
		clipCtx := services.WithClip(ctx, c.Index)
		path := filepath.Join(st.layout.Root, filepath.FromSlash(c.File))
		text, err := r.Transcriber.Transcribe(clipCtx, path)
		if err != nil {
			return fmt.Errorf("clip %d: %w", c.Index, err)
		}
		if strings.TrimSpace(text) == "" {
			logging.WarnWithContext(logging.WithContext(clipCtx, logger), "empty transcription", "transcript_empty",
				logging.String(logging.FieldImpact, "manifest line has no text"),
				logging.String("clip", c.File),
			)
		}
		st.texts[i] = text
		st.clips[i].Text = textutil.CleanTranscript(text)
		logging.WithContext(clipCtx, logger).Debug("clip transcribed", logging.Int("chars", len(text)))
		progress.Increment()
	}
	return nil
}

func (r *Runner) manifest(_ context.Context, logger *slog.Logger, st *run) error {
	entries := make([]dataset.Entry, len(st.clips))
	for i, c := range st.clips {
		entries[i] = dataset.Entry{Clip: filepath.Base(c.File)}
		if st.texts != nil {
			entries[i].Text = st.texts[i]
			entries[i].Transcribed = true
		}
	}
	counts, err := dataset.WriteManifests(st.layout, entries, r.Options.ValidRatio)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, StageManifest, "write manifests", st.layout.Root, err)
	}

	meta := dataset.Metadata{
		RunID:      st.id,
		Project:    st.layout.Project,
		CreatedAt:  r.Options.now().UTC(),
		Mode:       r.Options.Mode,
		Input:      st.input,
		SampleRate: st.audio.SampleRate,
		SpacerMS:   r.Options.SpacerMS,
		ValidRatio: r.Options.ValidRatio,
		Models:     r.Options.Models,
		Clips:      st.clips,
	}
	if err := dataset.WriteMetadata(st.layout, meta); err != nil {
		return services.Wrap(services.ErrExternalTool, StageManifest, "write metadata", st.layout.Root, err)
	}
	logger.Info("manifests written", logging.Int("train", counts.Train), logging.Int("valid", counts.Valid))
	return nil
}

func countSpeakers(groups []timeline.Group) int {
	seen := map[string]struct{}{}
	for _, g := range groups {
		seen[g.Speaker] = struct{}{}
	}
	return len(seen)
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
