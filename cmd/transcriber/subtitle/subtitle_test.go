package subtitle

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dusancv22/video-transcriber/cmd/transcriber/config"
	"github.com/dusancv22/video-transcriber/cmd/transcriber/model"
)

func newBuilder() *Builder {
	var opts config.SubtitleOptions
	opts.SetDefaults()
	return New(opts)
}

func words(specs ...[3]float64) []model.Word {
	ws := make([]model.Word, len(specs))
	for i, s := range specs {
		ws[i] = model.Word{Text: "w", StartS: s[0], EndS: s[1]}
	}
	return ws
}

func TestBuild_WordAnchoredCueExtension(t *testing.T) {
	b := newBuilder()
	seg := model.TimedSegment{
		StartS: 10.0,
		EndS:   12.0,
		Text:   "hello there",
		Words: []model.Word{
			{Text: "hello", StartS: 10.0, EndS: 10.5},
			{Text: "there", StartS: 12.0, EndS: 12.8},
		},
	}

	cues := b.Build([]model.TimedSegment{seg})
	// The 1.5 s pause between the two words exceeds WordGapS, so each word
	// gets its own cue; the last one is anchored to the final word's end.
	require.Len(t, cues, 2)
	require.GreaterOrEqual(t, cues[1].EndS, 13.1)
}

func TestBuild_TwoLineLayout(t *testing.T) {
	text := "No hay nada mejor que un buen vaso de agua fresquita por la mañana"
	lines := layoutLines(text, 42)
	require.Len(t, lines, 2)
	require.LessOrEqual(t, len(lines[0]), 42)
	require.LessOrEqual(t, len(lines[1]), 42)
}

func TestLayoutLines_OverlongSingleWord(t *testing.T) {
	word := strings.Repeat("x", 60)
	lines := layoutLines(word, 42)
	require.Len(t, lines, 1)
	require.Equal(t, word, lines[0])
}

func TestSmoothOrphanSegments_MergesShortSuccessor(t *testing.T) {
	segs := []model.TimedSegment{
		{
			StartS: 0.0, EndS: 3.0, Text: "al pueblo",
			Words: []model.Word{{Text: "al", StartS: 0.0, EndS: 2.8}, {Text: "pueblo", StartS: 2.8, EndS: 3.0}},
		},
		{
			StartS: 3.2, EndS: 3.6, Text: "pueblo.",
			Words: []model.Word{{Text: "pueblo.", StartS: 3.2, EndS: 3.6}},
		},
	}

	var opts config.SubtitleOptions
	opts.SetDefaults()
	merged := smoothOrphanSegments(segs, opts)

	require.Len(t, merged, 1)
	require.Equal(t, 0.0, merged[0].StartS)
	require.Equal(t, 3.6, merged[0].EndS)
}

func TestBuild_NoWordsUsesFallback(t *testing.T) {
	b := newBuilder()
	seg := model.TimedSegment{StartS: 0, EndS: 2, Text: "hello there friend"}

	cues := b.Build([]model.TimedSegment{seg})
	require.NotEmpty(t, cues)
	require.Greater(t, cues[0].EndS, cues[0].StartS)
}

func TestBuild_NoSegmentsProducesNoCues(t *testing.T) {
	b := newBuilder()
	cues := b.Build(nil)
	require.Empty(t, cues)
}

func TestBuild_CuesAreMonotonic(t *testing.T) {
	b := newBuilder()
	seg := model.TimedSegment{
		StartS: 0, EndS: 20,
		Words: words(
			[3]float64{0.0, 0.4}, [3]float64{0.5, 0.9}, [3]float64{1.0, 1.4},
			[3]float64{5.0, 5.4}, [3]float64{5.5, 5.9}, [3]float64{6.0, 6.4},
		),
	}

	cues := b.Build([]model.TimedSegment{seg})
	require.GreaterOrEqual(t, len(cues), 2)
	for i := 1; i < len(cues); i++ {
		require.GreaterOrEqual(t, cues[i].StartS, cues[i-1].EndS)
	}
}

func TestBuild_SingleWordCueDuration(t *testing.T) {
	b := newBuilder()
	seg := model.TimedSegment{
		StartS: 0, EndS: 1,
		Words: []model.Word{{Text: "hi", StartS: 0.0, EndS: 0.5}},
	}

	cues := b.Build([]model.TimedSegment{seg})
	require.Len(t, cues, 1)
	require.GreaterOrEqual(t, cues[0].EndS-cues[0].StartS, 0.5+0.3-0.2)
}
