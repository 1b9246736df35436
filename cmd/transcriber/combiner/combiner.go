// Package combiner joins the per-segment transcripts the audio segmenter
// split apart, detecting and dropping the duplicated tail/head introduced
// by the segmenter's deliberate overlap. Candidate overlap lengths slide
// over the tail of the running text and the head of the next segment, each
// scored with a longest-common-subsequence ratio over normalized text; the
// best candidate above the similarity threshold wins.
package combiner

import (
	"regexp"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/dusancv22/video-transcriber/cmd/transcriber/config"
	"github.com/dusancv22/video-transcriber/cmd/transcriber/model"
)

// Stats records the combiner's observability counters.
type Stats struct {
	SegmentsProcessed int
	OverlapsDetected  int
	WordsRemoved      int
	MeanSimilarity    float64
}

// Combiner merges an ordered list of per-segment transcripts into one
// string, removing overlap regions flagged by SplitMetadata.
type Combiner struct {
	opts config.CombinerOptions
}

func New(opts config.CombinerOptions) *Combiner {
	opts.SetDefaults()
	return &Combiner{opts: opts}
}

// Combine joins segments[0..n) in order. meta must have the same length as
// segments; meta[i].HasStartOverlap controls whether overlap detection runs
// before segment i is appended.
func (c *Combiner) Combine(segments []string, meta model.SplitMetadata) (string, Stats) {
	stats := Stats{SegmentsProcessed: len(segments)}

	if len(segments) == 0 {
		return "", stats
	}
	if len(segments) == 1 {
		return segments[0], stats
	}

	ratios := make([]float64, 0, len(segments)-1)
	combined := segments[0]

	for i := 1; i < len(segments); i++ {
		hasOverlap := true
		if i < len(meta.Segments) {
			hasOverlap = meta.Segments[i].HasStartOverlap
		}

		if !hasOverlap {
			combined = appendText(combined, segments[i])
			continue
		}

		merged, removed, ratio, detected := c.mergeWithOverlapRemoval(combined, segments[i], c.opts)
		combined = merged
		if detected {
			stats.OverlapsDetected++
			stats.WordsRemoved += removed
			ratios = append(ratios, ratio)
		}
	}

	if len(ratios) > 0 {
		stats.MeanSimilarity = stat.Mean(ratios, nil)
	}

	return combined, stats
}

func (c *Combiner) mergeWithOverlapRemoval(text1, text2 string, opts config.CombinerOptions) (merged string, wordsRemoved int, bestRatio float64, detected bool) {
	words1 := strings.Fields(text1)
	words2 := strings.Fields(text2)

	maxLen := min(len(words1), len(words2), 50)
	if maxLen < opts.MinOverlapWords {
		return appendText(text1, text2), 0, 0, false
	}

	bestLen := 0
	for l := opts.MinOverlapWords; l <= maxLen; l++ {
		tail := strings.Join(words1[len(words1)-l:], " ")
		head := strings.Join(words2[:l], " ")

		ratio := lcsRatio(normalizeForCompare(tail), normalizeForCompare(head))
		if ratio > opts.SimilarityThreshold && ratio > bestRatio {
			bestRatio = ratio
			bestLen = l
		}
	}

	if bestLen == 0 {
		return appendText(text1, text2), 0, 0, false
	}

	remaining := strings.Join(words2[bestLen:], " ")
	return appendText(text1, remaining), bestLen, bestRatio, true
}

var nonWordRE = regexp.MustCompile(`[^\w\s]`)
var spaceRE = regexp.MustCompile(`\s+`)

func normalizeForCompare(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = spaceRE.ReplaceAllString(s, " ")
	s = nonWordRE.ReplaceAllString(s, "")
	return s
}

// lcsRatio returns 2*L/(len(a)+len(b)) where L is the longest common
// subsequence length between a and b.
func lcsRatio(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}

	la, lb := len(a), len(b)
	prev := make([]int, lb+1)
	cur := make([]int, lb+1)

	for i := 1; i <= la; i++ {
		for j := 1; j <= lb; j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
			} else if prev[j] >= cur[j-1] {
				cur[j] = prev[j]
			} else {
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
	}

	lcsLen := prev[lb]
	return 2 * float64(lcsLen) / float64(la+lb)
}

// CombineSegments is Combine's word-timestamped counterpart: instead
// of a flat string per audio segment, it takes the TimedSegments each audio
// segment decoded into and trims the duplicated leading words a flagged
// overlap introduced, returning one continuous segment list a subtitle
// builder can consume directly. It reuses the same tail/head scan and LCS
// ratio as Combine, just scored over the Word stream's Text fields rather
// than over whitespace-split substrings, so the two entry points agree on
// what counts as an overlap.
func (c *Combiner) CombineSegments(groups [][]model.TimedSegment, meta model.SplitMetadata) ([]model.TimedSegment, Stats) {
	stats := Stats{SegmentsProcessed: len(groups)}

	if len(groups) == 0 {
		return nil, stats
	}

	combined := append([]model.TimedSegment{}, groups[0]...)
	ratios := make([]float64, 0, len(groups)-1)

	for i := 1; i < len(groups); i++ {
		hasOverlap := true
		if i < len(meta.Segments) {
			hasOverlap = meta.Segments[i].HasStartOverlap
		}

		group := groups[i]
		if !hasOverlap || len(group) == 0 {
			combined = append(combined, group...)
			continue
		}

		tail := trailingWords(combined, 50)
		head := leadingWords(group, 50)

		bestLen, bestRatio := c.findWordOverlap(tail, head)
		if bestLen > 0 {
			stats.OverlapsDetected++
			stats.WordsRemoved += bestLen
			ratios = append(ratios, bestRatio)
			group = trimLeadingWords(group, bestLen)
		}

		combined = append(combined, group...)
	}

	if len(ratios) > 0 {
		stats.MeanSimilarity = stat.Mean(ratios, nil)
	}

	return combined, stats
}

// findWordOverlap mirrors mergeWithOverlapRemoval's candidate scan but over
// Word slices instead of strings.Fields output.
func (c *Combiner) findWordOverlap(tail, head []model.Word) (bestLen int, bestRatio float64) {
	maxLen := min(len(tail), len(head), 50)
	if maxLen < c.opts.MinOverlapWords {
		return 0, 0
	}

	for l := c.opts.MinOverlapWords; l <= maxLen; l++ {
		tailText := joinWordText(tail[len(tail)-l:])
		headText := joinWordText(head[:l])

		ratio := lcsRatio(normalizeForCompare(tailText), normalizeForCompare(headText))
		if ratio > c.opts.SimilarityThreshold && ratio > bestRatio {
			bestRatio = ratio
			bestLen = l
		}
	}

	return bestLen, bestRatio
}

func joinWordText(words []model.Word) string {
	texts := make([]string, len(words))
	for i, w := range words {
		texts[i] = w.Text
	}
	return strings.Join(texts, " ")
}

// trailingWords flattens the last n words across segs, reading backward
// from the final segment so it never has to materialize the whole stream.
func trailingWords(segs []model.TimedSegment, n int) []model.Word {
	var out []model.Word
	for i := len(segs) - 1; i >= 0 && len(out) < n; i-- {
		out = append(append([]model.Word{}, segs[i].Words...), out...)
	}
	if len(out) > n {
		out = out[len(out)-n:]
	}
	return out
}

// leadingWords flattens the first n words across segs.
func leadingWords(segs []model.TimedSegment, n int) []model.Word {
	var out []model.Word
	for _, s := range segs {
		out = append(out, s.Words...)
		if len(out) >= n {
			break
		}
	}
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// trimLeadingWords drops the first n words across segs, in order, shrinking
// or dropping segments as needed and re-deriving Text/StartS from the words
// that remain.
func trimLeadingWords(segs []model.TimedSegment, n int) []model.TimedSegment {
	if n <= 0 {
		return segs
	}

	out := make([]model.TimedSegment, 0, len(segs))
	remaining := n

	for _, seg := range segs {
		if remaining == 0 {
			out = append(out, seg)
			continue
		}
		if remaining >= len(seg.Words) {
			remaining -= len(seg.Words)
			continue
		}

		kept := append([]model.Word{}, seg.Words[remaining:]...)
		remaining = 0

		trimmed := seg
		trimmed.Words = kept
		trimmed.Text = joinWordText(kept)
		if len(kept) > 0 {
			trimmed.StartS = kept[0].StartS
		}
		out = append(out, trimmed)
	}

	return out
}

func appendText(a, b string) string {
	a = strings.TrimRight(a, " \t\n")
	b = strings.TrimLeft(b, " \t\n")
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	return a + " " + b
}
