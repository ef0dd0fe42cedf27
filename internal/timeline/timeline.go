package timeline

import (
	"cmp"
	"slices"
)

// Span is a labelled time interval in seconds.
type Span struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker string  `json:"speaker,omitempty"`
}

// Duration returns End-Start.
func (s Span) Duration() float64 {
	return s.End - s.Start
}

// Group is a run of spans that is sliced out as a single clip.
type Group struct {
	Index   int
	Speaker string
	Spans   []Span
}

// Start returns the earliest span start.
func (g Group) Start() float64 {
	if len(g.Spans) == 0 {
		return 0
	}
	start := g.Spans[0].Start
	for _, s := range g.Spans[1:] {
		start = min(start, s.Start)
	}
	return start
}

// End returns the latest span end.
func (g Group) End() float64 {
	var end float64
	for i, s := range g.Spans {
		if i == 0 || s.End > end {
			end = s.End
		}
	}
	return end
}

// Duration returns End-Start.
func (g Group) Duration() float64 {
	return g.End() - g.Start()
}

// GroupDiarization groups speaker turns. A group grows while the speaker
// stays the same and starts over on a speaker change. A turn that ends
// inside the running group is absorbed into it and closes the group, so
// overlapped speech never produces a second clip covering the same audio.
// The absorbed turn may belong to another speaker: the group keeps the
// label of the speaker that opened it, while the turn keeps its own
// Speaker inside Group.Spans.
func GroupDiarization(turns []Span) []Group {
	sorted := sortedValid(turns)
	var groups []Group
	var current *Group
	var runEnd float64

	closeCurrent := func() {
		if current != nil {
			groups = append(groups, *current)
			current = nil
		}
	}

	for _, turn := range sorted {
		switch {
		case current == nil:
			current = &Group{Speaker: turn.Speaker, Spans: []Span{turn}}
			runEnd = turn.End
		case turn.End <= runEnd:
			current.Spans = append(current.Spans, turn)
			closeCurrent()
		case turn.Speaker != current.Speaker:
			closeCurrent()
			current = &Group{Speaker: turn.Speaker, Spans: []Span{turn}}
			runEnd = turn.End
		default:
			current.Spans = append(current.Spans, turn)
			runEnd = turn.End
		}
	}
	closeCurrent()
	return renumber(groups)
}

// Binarize cleans up raw speech regions: gaps shorter than minDurationOff
// are filled and regions shorter than minDuration are dropped.
func Binarize(spans []Span, minDuration, minDurationOff float64) []Span {
	merged := mergeSpans(sortedValid(spans), minDurationOff)
	out := merged[:0]
	for _, s := range merged {
		if s.Duration() >= minDuration {
			out = append(out, s)
		}
	}
	return out
}

// GroupSegmentation returns one group per speech region. Overlapping or
// touching regions are merged first.
func GroupSegmentation(spans []Span) []Group {
	merged := mergeSpans(sortedValid(spans), 0)
	groups := make([]Group, 0, len(merged))
	for _, s := range merged {
		groups = append(groups, Group{Speaker: s.Speaker, Spans: []Span{s}})
	}
	return renumber(groups)
}

// Intersect clips speech regions to each diarization group's extent. Each
// non-empty piece becomes a group carrying the diarization speaker.
func Intersect(turnGroups []Group, speech []Span) []Group {
	regions := mergeSpans(sortedValid(speech), 0)
	var groups []Group
	for _, g := range turnGroups {
		gs, ge := g.Start(), g.End()
		for _, r := range regions {
			if r.Start >= ge {
				break
			}
			lo, hi := max(gs, r.Start), min(ge, r.End)
			if hi <= lo {
				continue
			}
			groups = append(groups, Group{
				Speaker: g.Speaker,
				Spans:   []Span{{Start: lo, End: hi, Speaker: g.Speaker}},
			})
		}
	}
	return renumber(groups)
}

// mergeSpans joins spans whose gap is below maxGap. Spans that touch or
// overlap are always joined. Input must be sorted by start.
func mergeSpans(sorted []Span, maxGap float64) []Span {
	var out []Span
	for _, s := range sorted {
		if n := len(out); n > 0 {
			last := &out[n-1]
			gap := s.Start - last.End
			if gap <= 0 || gap < maxGap {
				last.End = max(last.End, s.End)
				continue
			}
		}
		out = append(out, s)
	}
	return out
}

func sortedValid(spans []Span) []Span {
	out := make([]Span, 0, len(spans))
	for _, s := range spans {
		if s.End > s.Start {
			out = append(out, s)
		}
	}
	slices.SortStableFunc(out, func(a, b Span) int {
		return cmp.Compare(a.Start, b.Start)
	})
	return out
}

func renumber(groups []Group) []Group {
	for i := range groups {
		groups[i].Index = i
	}
	return groups
}
