package combiner

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dusancv22/video-transcriber/cmd/transcriber/config"
	"github.com/dusancv22/video-transcriber/cmd/transcriber/model"
)

func TestCombineSingleSegmentUnchanged(t *testing.T) {
	c := New(config.CombinerOptions{})
	out, stats := c.Combine([]string{"hello world"}, model.SplitMetadata{})
	require.Equal(t, "hello world", out)
	require.Equal(t, 0, stats.OverlapsDetected)
}

func TestCombineDetectsOverlap(t *testing.T) {
	c := New(config.CombinerOptions{})
	segments := []string{
		"let's get started we will begin the meeting at nine",
		"we will begin the meeting at nine o'clock sharp today",
	}
	meta := model.SplitMetadata{Segments: []model.AudioSegment{
		{Index: 0, HasStartOverlap: false},
		{Index: 1, HasStartOverlap: true},
	}}

	out, stats := c.Combine(segments, meta)
	require.Equal(t, 1, stats.OverlapsDetected)
	require.GreaterOrEqual(t, stats.WordsRemoved, 4)
	require.Contains(t, out, "o'clock sharp today")
	require.NotContains(t, out, "we will begin the meeting at nine we will begin")
}

func TestCombineNoOverlapExpectedSimpleAppend(t *testing.T) {
	c := New(config.CombinerOptions{})
	segments := []string{"first topic entirely", "second unrelated topic"}
	meta := model.SplitMetadata{Segments: []model.AudioSegment{
		{Index: 0, HasStartOverlap: false},
		{Index: 1, HasStartOverlap: false},
	}}

	out, stats := c.Combine(segments, meta)
	require.Equal(t, "first topic entirely second unrelated topic", out)
	require.Equal(t, 0, stats.OverlapsDetected)
}

func TestCombineSegmentsDropsOverlappingWords(t *testing.T) {
	c := New(config.CombinerOptions{})
	mkWords := func(texts []string, start float64) []model.Word {
		ws := make([]model.Word, len(texts))
		t := start
		for i, tok := range texts {
			ws[i] = model.Word{Text: tok, StartS: t, EndS: t + 0.3}
			t += 0.4
		}
		return ws
	}

	firstWords := mkWords(strings.Fields("let's get started we will begin the meeting at nine"), 0)
	secondWords := mkWords(strings.Fields("we will begin the meeting at nine o'clock sharp today"), 9.6)

	groups := [][]model.TimedSegment{
		{{StartS: 0, EndS: 9.6, Text: "let's get started we will begin the meeting at nine", Words: firstWords}},
		{{StartS: 9.6, EndS: 14.0, Text: "we will begin the meeting at nine o'clock sharp today", Words: secondWords}},
	}
	meta := model.SplitMetadata{Segments: []model.AudioSegment{
		{Index: 0, HasStartOverlap: false},
		{Index: 1, HasStartOverlap: true},
	}}

	out, stats := c.CombineSegments(groups, meta)
	require.Equal(t, 1, stats.OverlapsDetected)
	require.GreaterOrEqual(t, stats.WordsRemoved, 4)

	var all []string
	for _, seg := range out {
		for _, w := range seg.Words {
			all = append(all, w.Text)
		}
	}
	require.Equal(t, strings.Join(all, " "), "let's get started we will begin the meeting at nine o'clock sharp today")
}

func TestCombineSegmentsNoOverlapAppendsInOrder(t *testing.T) {
	c := New(config.CombinerOptions{})
	groups := [][]model.TimedSegment{
		{{StartS: 0, EndS: 1, Text: "first", Words: []model.Word{{Text: "first", StartS: 0, EndS: 1}}}},
		{{StartS: 1, EndS: 2, Text: "second", Words: []model.Word{{Text: "second", StartS: 1, EndS: 2}}}},
	}
	meta := model.SplitMetadata{Segments: []model.AudioSegment{
		{Index: 0, HasStartOverlap: false},
		{Index: 1, HasStartOverlap: false},
	}}

	out, stats := c.CombineSegments(groups, meta)
	require.Equal(t, 0, stats.OverlapsDetected)
	require.Len(t, out, 2)
}

func TestLCSRatio(t *testing.T) {
	require.Equal(t, 1.0, lcsRatio("abc", "abc"))
	require.Equal(t, 0.0, lcsRatio("", "abc"))
	require.Greater(t, lcsRatio("hello there", "hello thare"), 0.8)
}
