package subtitle

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dusancv22/video-transcriber/cmd/transcriber/model"
)

func sampleCues() []model.SubtitleCue {
	return []model.SubtitleCue{
		{Index: 1, StartS: 0.5, EndS: 2.25, Lines: []string{"hello there"}},
		{Index: 2, StartS: 2.3, EndS: 5.0, Lines: []string{"a first line", "and a second"}},
	}
}

func TestWriteSRTFormat(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSRT(&buf, sampleCues()))

	want := "1\n" +
		"00:00:00,500 --> 00:00:02,250\n" +
		"hello there\n" +
		"\n" +
		"2\n" +
		"00:00:02,300 --> 00:00:05,000\n" +
		"a first line\nand a second\n" +
		"\n"
	require.Equal(t, want, buf.String())
}

func TestWriteVTTFormat(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteVTT(&buf, sampleCues()))

	out := buf.String()
	require.True(t, strings.HasPrefix(out, "WEBVTT\n\n"))
	require.Contains(t, out, "00:00:00.500 --> 00:00:02.250")
	require.True(t, strings.HasSuffix(out, "\n"))
}

func TestWriteVTTEmptyCuesKeepsHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteVTT(&buf, nil))
	require.Equal(t, "WEBVTT\n\n", buf.String())
}

func TestWriteASSFormat(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteASS(&buf, sampleCues()))

	out := buf.String()
	require.Contains(t, out, "[Script Info]")
	require.Contains(t, out, "[V4+ Styles]")
	require.Contains(t, out, "[Events]")
	require.Contains(t, out, `Dialogue: 0,0:00:00.50,0:00:02.25,Default,,0,0,0,,hello there`)
	require.Contains(t, out, `a first line\Nand a second`)
}

func TestTimestampFormats(t *testing.T) {
	tcs := []struct {
		seconds float64
		srt     string
		vtt     string
		ass     string
	}{
		{0, "00:00:00,000", "00:00:00.000", "0:00:00.00"},
		{1.5, "00:00:01,500", "00:00:01.500", "0:00:01.50"},
		{3661.042, "01:01:01,042", "01:01:01.042", "1:01:01.04"},
		{-2, "00:00:00,000", "00:00:00.000", "0:00:00.00"},
	}

	for _, tc := range tcs {
		require.Equal(t, tc.srt, srtTimestamp(tc.seconds))
		require.Equal(t, tc.vtt, vttTimestamp(tc.seconds))
		require.Equal(t, tc.ass, assTimestamp(tc.seconds))
	}
}

func TestSRTRoundTrip(t *testing.T) {
	cues := sampleCues()

	var buf bytes.Buffer
	require.NoError(t, WriteSRT(&buf, cues))

	parsed, err := ParseSRT(&buf)
	require.NoError(t, err)
	require.Len(t, parsed, len(cues))

	for i := range cues {
		require.Equal(t, cues[i].Index, parsed[i].Index)
		require.InDelta(t, cues[i].StartS, parsed[i].StartS, 0.001)
		require.InDelta(t, cues[i].EndS, parsed[i].EndS, 0.001)
		require.Equal(t, cues[i].Lines, parsed[i].Lines)
	}
}

func TestVTTRoundTrip(t *testing.T) {
	cues := sampleCues()

	var buf bytes.Buffer
	require.NoError(t, WriteVTT(&buf, cues))

	parsed, err := ParseVTT(&buf)
	require.NoError(t, err)
	require.Len(t, parsed, len(cues))

	for i := range cues {
		require.InDelta(t, cues[i].StartS, parsed[i].StartS, 0.001)
		require.InDelta(t, cues[i].EndS, parsed[i].EndS, 0.001)
		require.Equal(t, cues[i].Lines, parsed[i].Lines)
	}
}

func TestASSRoundTrip(t *testing.T) {
	cues := sampleCues()

	var buf bytes.Buffer
	require.NoError(t, WriteASS(&buf, cues))

	parsed, err := ParseASS(&buf)
	require.NoError(t, err)
	require.Len(t, parsed, len(cues))

	// ASS times are centisecond-precision, so the round-trip tolerance is a
	// full centisecond rather than a millisecond.
	for i := range cues {
		require.InDelta(t, cues[i].StartS, parsed[i].StartS, 0.01)
		require.InDelta(t, cues[i].EndS, parsed[i].EndS, 0.01)
		require.Equal(t, cues[i].Lines, parsed[i].Lines)
	}
}

func TestParseASSRejectsMalformedDialogue(t *testing.T) {
	_, err := ParseASS(strings.NewReader("Dialogue: 0,bad\n"))
	require.Error(t, err)
}
