package segmentopt

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dusancv22/video-transcriber/cmd/transcriber/config"
	"github.com/dusancv22/video-transcriber/cmd/transcriber/model"
)

func word(text string, start, end float64) model.Word {
	return model.Word{Text: text, StartS: start, EndS: end}
}

func TestMergeOrphansBackward(t *testing.T) {
	segments := []model.TimedSegment{
		{StartS: 0, EndS: 2, Text: "hello there friend", Words: []model.Word{word("hello", 0, 0.5), word("there", 0.5, 1), word("friend", 1, 2)}},
		{StartS: 2.3, EndS: 2.6, Text: "yeah", Words: []model.Word{word("yeah", 2.3, 2.6)}},
	}

	opts := config.SegmentOptOptions{}
	opts.SetDefaults()

	out := mergeOrphansBackward(segments, opts)
	require.Len(t, out, 1)
	require.Equal(t, 0.0, out[0].StartS)
	require.Equal(t, 2.6, out[0].EndS)
	require.Equal(t, "hello there friend yeah", out[0].Text)
}

func TestMergeOrphansForward(t *testing.T) {
	segments := []model.TimedSegment{
		{StartS: 0, EndS: 1, Text: "ok", Words: []model.Word{word("ok", 0, 1)}},
		{StartS: 1.2, EndS: 3, Text: "this is the main point", Words: []model.Word{word("this", 1.2, 1.5)}},
	}

	opts := config.SegmentOptOptions{}
	opts.SetDefaults()

	out := mergeOrphansForward(segments, opts)
	require.Len(t, out, 1)
	require.Equal(t, 3.0, out[0].EndS)
}

func TestPauseSplit(t *testing.T) {
	words := []model.Word{
		word("one", 0, 0.3),
		word("two", 0.3, 0.6),
		word("three", 0.6, 1.0),
		word("four", 3.0, 3.4),
		word("five", 3.4, 3.7),
		word("six", 3.7, 4.2),
	}
	segments := []model.TimedSegment{
		{StartS: 0, EndS: 4.2, Text: "one two three four five six", Words: words},
	}

	opts := config.SegmentOptOptions{}
	opts.SetDefaults()

	out := pauseSplit(segments, opts)
	require.Len(t, out, 2)
	require.InDelta(t, 1.1, out[0].EndS, 0.001)
	require.InDelta(t, 2.9, out[1].StartS, 0.001)
}

func TestStretchShortSegments(t *testing.T) {
	segments := []model.TimedSegment{
		{StartS: 0, EndS: 0.2, Text: "hi"},
		{StartS: 5, EndS: 6, Text: "far away"},
	}

	opts := config.SegmentOptOptions{}
	opts.SetDefaults()

	out := stretchShortSegments(segments, opts)
	require.Equal(t, 1.0, out[0].EndS)

	tight := []model.TimedSegment{
		{StartS: 0, EndS: 0.2, Text: "hi"},
		{StartS: 0.5, EndS: 1.0, Text: "next"},
	}
	out2 := stretchShortSegments(tight, opts)
	require.Equal(t, 0.2, out2[0].EndS)
}

func TestOptimizeNoOverlapInvariant(t *testing.T) {
	segments := []model.TimedSegment{
		{StartS: 0, EndS: 2, Text: "hello there friend", Words: []model.Word{word("hello", 0, 0.5), word("there", 0.5, 1), word("friend", 1, 2)}},
		{StartS: 2.3, EndS: 2.6, Text: "yeah", Words: []model.Word{word("yeah", 2.3, 2.6)}},
		{StartS: 10, EndS: 10.1, Text: "ok", Words: []model.Word{word("ok", 10, 10.1)}},
	}

	opt := New(config.SegmentOptOptions{})
	out := opt.Optimize(segments)

	for i := 1; i < len(out); i++ {
		require.LessOrEqual(t, out[i-1].EndS, out[i].StartS)
	}
}
