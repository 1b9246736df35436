// Package subtitle groups time-stamped words into display-bounded cues
// honoring reading speed, line-length, pause-boundary, and orphan-merge
// rules, then serializes the cue list to SRT, WebVTT, or ASS (and parses
// all three back for verification).
package subtitle

import (
	"strings"

	"github.com/dusancv22/video-transcriber/cmd/transcriber/config"
	"github.com/dusancv22/video-transcriber/cmd/transcriber/model"
)

// Builder assembles cues from a slice of TimedSegments, working off the
// segments' own word timings; the prose normalizer's rewriting never feeds
// back into cue text.
type Builder struct {
	opts config.SubtitleOptions
}

func New(opts config.SubtitleOptions) *Builder {
	opts.SetDefaults()
	return &Builder{opts: opts}
}

// Build runs the orphan-smoothing pre-pass, then groups each (possibly
// merged) segment's words into cues, falling back to the speaking/reading
// rate heuristic for segments with no word-level timing.
func (b *Builder) Build(segments []model.TimedSegment) []model.SubtitleCue {
	segments = smoothOrphanSegments(segments, b.opts)

	var cues []model.SubtitleCue
	prevEnd := -1.0

	for i, seg := range segments {
		nextStart := -1.0
		if i+1 < len(segments) {
			nextStart = segments[i+1].StartS
		}

		var segCues []model.SubtitleCue
		if len(seg.Words) > 0 {
			segCues = b.groupWords(seg.Words, prevEnd, nextStart)
		} else if strings.TrimSpace(seg.Text) != "" {
			segCues = b.fallbackCues(seg, prevEnd, nextStart)
		}

		for _, c := range segCues {
			c.Index = len(cues) + 1
			cues = append(cues, c)
			prevEnd = c.EndS
		}
	}

	return cues
}

// groupWords walks a segment's word stream left to right, starting a new
// cue whenever the max-words, max-duration, max-chars, or pause-gap
// condition is crossed by the next word.
func (b *Builder) groupWords(words []model.Word, prevCueEnd, nextSegStart float64) []model.SubtitleCue {
	var cues []model.SubtitleCue
	var group []model.Word

	flush := func(nextWordStart float64) {
		if len(group) == 0 {
			return
		}
		cues = append(cues, b.cueFromWords(group, prevCueEnd, nextWordStart))
		if len(cues) > 0 {
			prevCueEnd = cues[len(cues)-1].EndS
		}
		group = nil
	}

	for _, w := range words {
		if len(group) == 0 {
			group = append(group, w)
			continue
		}

		joined := joinWordTexts(append(append([]model.Word{}, group...), w))
		gap := w.StartS - group[len(group)-1].EndS

		shouldBreak := len(group) >= b.opts.MaxWords ||
			w.EndS-group[0].StartS > b.opts.MaxCueS ||
			len(joined) > 2*b.opts.MaxCharsPerLine ||
			gap > b.opts.WordGapS

		if shouldBreak {
			flush(w.StartS)
		}

		group = append(group, w)
	}

	nextStart := nextSegStart
	flush(nextStart)

	return cues
}

func (b *Builder) cueFromWords(group []model.Word, prevCueEnd, nextBoundaryStart float64) model.SubtitleCue {
	start := group[0].StartS - b.opts.CueStartPadS
	if prevCueEnd >= 0 && start < prevCueEnd+b.opts.MinCueGapS {
		start = prevCueEnd + b.opts.MinCueGapS
	}
	if start < 0 {
		start = 0
	}

	end := group[len(group)-1].EndS + b.opts.CueEndPadS
	if nextBoundaryStart >= 0 && end > nextBoundaryStart-b.opts.MinCueGapS {
		end = nextBoundaryStart - b.opts.MinCueGapS
	}
	if end <= start {
		end = start + 0.01
	}

	text := joinWordTexts(group)
	return model.SubtitleCue{
		StartS: start,
		EndS:   end,
		Lines:  layoutLines(text, b.opts.MaxCharsPerLine),
	}
}

// fallbackCues estimates cue durations from speaking/reading rates when a
// segment has no word-level timestamps. The segment's
// text is chunked to at most two lines per cue; each chunk's duration
// extends (never contracts) to the larger of speaking time, reading time,
// and the configured minimum, and never overlaps the next segment's start.
func (b *Builder) fallbackCues(seg model.TimedSegment, prevCueEnd, nextSegStart float64) []model.SubtitleCue {
	chunks := chunkText(seg.Text, 2*b.opts.MaxCharsPerLine)
	if len(chunks) == 0 {
		return nil
	}

	var cues []model.SubtitleCue
	cueStart := seg.StartS
	if prevCueEnd >= 0 && cueStart < prevCueEnd+b.opts.MinCueGapS {
		cueStart = prevCueEnd + b.opts.MinCueGapS
	}

	for _, chunk := range chunks {
		lines := layoutLines(chunk, b.opts.MaxCharsPerLine)
		words := len(strings.Fields(chunk))

		speakingTime := float64(words) / b.opts.SpeakingWPM * 60
		readingTime := float64(words) / b.opts.ReadingWPM * 60
		if len(lines) == 2 {
			readingTime = readingTime*1.4 + 0.6
		}

		dur := speakingTime
		if readingTime > dur {
			dur = readingTime
		}
		if b.opts.MinCueDuration > dur {
			dur = b.opts.MinCueDuration
		}

		end := cueStart + dur
		if nextSegStart >= 0 && end > nextSegStart-0.1 {
			end = nextSegStart - 0.1
		}
		if end <= cueStart {
			end = cueStart + 0.01
		}

		cues = append(cues, model.SubtitleCue{StartS: cueStart, EndS: end, Lines: lines})
		cueStart = end
	}

	return cues
}

// smoothOrphanSegments merges a ≤OrphanMaxWords-word segment into its
// predecessor when the gap is under OrphanBackGapS, or into its successor
// when the gap is under OrphanForwardGapS. This mirrors segmentopt's orphan
// merge but at the cue-assembly boundary, for word streams that were
// reassembled from multi-region input and never passed through the
// optimizer as a single contiguous list.
func smoothOrphanSegments(segments []model.TimedSegment, opts config.SubtitleOptions) []model.TimedSegment {
	if len(segments) < 2 {
		return segments
	}

	out := make([]model.TimedSegment, 0, len(segments))
	out = append(out, segments[0])

	for i := 1; i < len(segments); i++ {
		cur := segments[i]
		prev := out[len(out)-1]
		if wordCount(cur) <= opts.OrphanMaxWords && cur.StartS-prev.EndS < opts.OrphanBackGapS {
			out[len(out)-1] = mergeSegments(prev, cur)
			continue
		}
		out = append(out, cur)
	}

	merged := make([]model.TimedSegment, 0, len(out))
	i := 0
	for i < len(out) {
		cur := out[i]
		for i+1 < len(out) {
			next := out[i+1]
			if wordCount(next) <= opts.OrphanMaxWords && next.StartS-cur.EndS < opts.OrphanForwardGapS {
				cur = mergeSegments(cur, next)
				i++
				continue
			}
			break
		}
		merged = append(merged, cur)
		i++
	}

	return merged
}

func wordCount(s model.TimedSegment) int {
	if len(s.Words) > 0 {
		return len(s.Words)
	}
	return len(strings.Fields(s.Text))
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

	return model.TimedSegment{StartS: a.StartS, EndS: b.EndS, Text: text, Words: words}
}

func joinWordTexts(words []model.Word) string {
	parts := make([]string, len(words))
	for i, w := range words {
		parts[i] = w.Text
	}
	return strings.Join(parts, " ")
}

// layoutLines renders text as one line if it already fits, or searches
// word-boundary splits for the two-line layout that minimizes the length
// difference between lines, subject to both lines fitting maxChars. If no
// split keeps both lines within maxChars (a single overlong token), the
// text is kept on one line rather than inventing a mid-word split.
func layoutLines(text string, maxChars int) []string {
	if len(text) <= maxChars {
		return []string{text}
	}

	words := strings.Fields(text)
	if len(words) < 2 {
		return []string{text}
	}

	bestIdx := -1
	bestDiff := -1
	for i := 0; i < len(words)-1; i++ {
		line1 := strings.Join(words[:i+1], " ")
		line2 := strings.Join(words[i+1:], " ")
		if len(line1) > maxChars || len(line2) > maxChars {
			continue
		}
		diff := len(line1) - len(line2)
		if diff < 0 {
			diff = -diff
		}
		if bestIdx < 0 || diff < bestDiff {
			bestIdx = i
			bestDiff = diff
		}
	}

	if bestIdx < 0 {
		return []string{text}
	}

	return []string{
		strings.Join(words[:bestIdx+1], " "),
		strings.Join(words[bestIdx+1:], " "),
	}
}

// chunkText splits text into word-boundary chunks no longer than maxLen,
// used by the no-word-timestamp fallback to decide how many cues a long
// segment needs.
func chunkText(text string, maxLen int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var chunks []string
	var cur []string
	curLen := 0

	flush := func() {
		if len(cur) > 0 {
			chunks = append(chunks, strings.Join(cur, " "))
			cur = nil
			curLen = 0
		}
	}

	for _, w := range words {
		add := len(w)
		if curLen > 0 {
			add++
		}
		if curLen+add > maxLen && curLen > 0 {
			flush()
			add = len(w)
		}
		cur = append(cur, w)
		curLen += add
	}
	flush()

	return chunks
}
