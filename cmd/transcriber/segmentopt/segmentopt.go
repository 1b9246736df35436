// Package segmentopt rewrites a transcription's segment boundaries so they
// land on natural pauses instead of wherever VAD or the speech-to-text
// engine happened to split them: small, composable passes applied in a
// fixed order over the segment slice.
package segmentopt

import (
	"strings"

	"github.com/dusancv22/video-transcriber/cmd/transcriber/config"
	"github.com/dusancv22/video-transcriber/cmd/transcriber/model"
)

// Optimizer applies a fixed-order rule set to a segment slice.
type Optimizer struct {
	opts config.SegmentOptOptions
}

func New(opts config.SegmentOptOptions) *Optimizer {
	opts.SetDefaults()
	return &Optimizer{opts: opts}
}

// Optimize rewrites segment boundaries in place, applying the four rules in
// a fixed order: orphan merge backward, orphan merge forward, pause-split,
// then short-segment stretch.
func (o *Optimizer) Optimize(segments []model.TimedSegment) []model.TimedSegment {
	segments = mergeOrphansBackward(segments, o.opts)
	segments = mergeOrphansForward(segments, o.opts)
	segments = pauseSplit(segments, o.opts)
	segments = stretchShortSegments(segments, o.opts)
	return segments
}

func wordCount(s model.TimedSegment) int {
	if len(s.Words) > 0 {
		return len(s.Words)
	}
	return len(strings.Fields(s.Text))
}

func gapBetween(prev, next model.TimedSegment) float64 {
	return next.StartS - prev.EndS
}

func mergeSegments(a, b model.TimedSegment) model.TimedSegment {
	words := make([]model.Word, 0, len(a.Words)+len(b.Words))
	words = append(words, a.Words...)
	words = append(words, b.Words...)

	text := a.Text
	if b.Text != "" {
		if text != "" {
			text += " "
		}
		text += b.Text
	}

	return model.TimedSegment{
		StartS: a.StartS,
		EndS:   b.EndS,
		Text:   text,
		Words:  words,
	}
}

// mergeOrphansBackward folds any segment with at most OrphanMaxWords words,
// separated from its predecessor by at most OrphanMaxGapS, into that
// predecessor.
func mergeOrphansBackward(segments []model.TimedSegment, opts config.SegmentOptOptions) []model.TimedSegment {
	if len(segments) < 2 {
		return segments
	}

	out := make([]model.TimedSegment, 0, len(segments))
	out = append(out, segments[0])

	for i := 1; i < len(segments); i++ {
		cur := segments[i]
		prev := out[len(out)-1]
		if wordCount(cur) <= opts.OrphanMaxWords && gapBetween(prev, cur) <= opts.OrphanMaxGapS {
			out[len(out)-1] = mergeSegments(prev, cur)
			continue
		}
		out = append(out, cur)
	}

	return out
}

// mergeOrphansForward folds a segment's successor into it when the
// successor is itself an orphan, absorbing it rather than waiting for the
// backward pass to catch it from the other side.
func mergeOrphansForward(segments []model.TimedSegment, opts config.SegmentOptOptions) []model.TimedSegment {
	if len(segments) < 2 {
		return segments
	}

	var out []model.TimedSegment
	i := 0
	for i < len(segments) {
		cur := segments[i]
		for i+1 < len(segments) {
			next := segments[i+1]
			if wordCount(next) <= opts.OrphanMaxWords && gapBetween(cur, next) <= opts.OrphanMaxGapS {
				cur = mergeSegments(cur, next)
				i++
				continue
			}
			break
		}
		out = append(out, cur)
		i++
	}

	return out
}

// pauseSplit splits a segment longer than PauseSplitMinS at an internal word
// gap wider than PauseSplitGapS, provided the gap's midpoint falls within the
// middle 40%-90% of the segment's duration. Only the first qualifying gap in
// a segment is used; a segment that is still long after one split is left
// for the next Optimize call to reconsider.
func pauseSplit(segments []model.TimedSegment, opts config.SegmentOptOptions) []model.TimedSegment {
	out := make([]model.TimedSegment, 0, len(segments))

	for _, seg := range segments {
		if seg.Duration() <= opts.PauseSplitMinS || len(seg.Words) < 2 {
			out = append(out, seg)
			continue
		}

		splitIdx := -1
		for j := 0; j < len(seg.Words)-1; j++ {
			gap := seg.Words[j+1].StartS - seg.Words[j].EndS
			if gap <= opts.PauseSplitGapS {
				continue
			}
			mid := seg.Words[j].EndS + gap/2
			frac := (mid - seg.StartS) / seg.Duration()
			if frac >= 0.40 && frac <= 0.90 {
				splitIdx = j
				break
			}
		}

		if splitIdx < 0 {
			out = append(out, seg)
			continue
		}

		left := model.TimedSegment{
			StartS: seg.StartS,
			EndS:   seg.Words[splitIdx].EndS + 0.1,
			Words:  append([]model.Word{}, seg.Words[:splitIdx+1]...),
		}
		left.Text = joinWordText(left.Words)

		right := model.TimedSegment{
			StartS: seg.Words[splitIdx+1].StartS - 0.1,
			EndS:   seg.EndS,
			Words:  append([]model.Word{}, seg.Words[splitIdx+1:]...),
		}
		right.Text = joinWordText(right.Words)

		out = append(out, left, right)
	}

	return out
}

// stretchShortSegments lengthens a segment under 0.5s to 1.0s, but only if
// doing so would not overlap the next segment's start.
func stretchShortSegments(segments []model.TimedSegment, opts config.SegmentOptOptions) []model.TimedSegment {
	for i := range segments {
		if segments[i].Duration() >= 0.5 {
			continue
		}

		stretchedEnd := segments[i].StartS + 1.0
		if i+1 < len(segments) && stretchedEnd > segments[i+1].StartS {
			continue
		}
		segments[i].EndS = stretchedEnd
	}
	return segments
}

func joinWordText(words []model.Word) string {
	parts := make([]string, len(words))
	for i, w := range words {
		parts[i] = w.Text
	}
	return strings.Join(parts, " ")
}
