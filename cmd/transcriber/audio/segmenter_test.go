package audio

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dusancv22/video-transcriber/cmd/transcriber/config"
)

func genSamples(sampleRate int, seconds float64) []float32 {
	n := int(float64(sampleRate) * seconds)
	samples := make([]float32, n)
	for i := range samples {
		samples[i] = 0.01
	}
	return samples
}

func TestSegmenterSingleSegmentWhenUnderThreshold(t *testing.T) {
	opts := config.AudioOptions{MaxSegmentBytes: 10 * 1024 * 1024, OverlapS: 2.5}
	s := NewSegmenter(opts)

	samples := genSamples(16000, 5)
	meta, err := s.Split("/tmp/in.wav", samples, 16000, t.TempDir())
	require.NoError(t, err)
	require.Len(t, meta.Segments, 1)
	require.Equal(t, "/tmp/in.wav", meta.Segments[0].Path)
	require.False(t, meta.Segments[0].HasStartOverlap)
	require.False(t, meta.Segments[0].HasEndOverlap)
}

func TestSegmenterSplitsOverThresholdWithOverlap(t *testing.T) {
	sampleRate := 16000
	seconds := 20.0
	// Force a small threshold so the 20s clip must split into multiple
	// segments.
	bytesTotal := int64(seconds*float64(sampleRate)) * bytesPerSample
	opts := config.AudioOptions{MaxSegmentBytes: bytesTotal / 3, OverlapS: 1.0}
	s := NewSegmenter(opts)

	samples := genSamples(sampleRate, seconds)
	outDir := t.TempDir()
	meta, err := s.Split("/tmp/in.wav", samples, sampleRate, outDir)
	require.NoError(t, err)
	require.Greater(t, len(meta.Segments), 1)

	for i, seg := range meta.Segments {
		require.FileExists(t, seg.Path)
		require.Equal(t, i, seg.Index)
		require.Equal(t, i > 0, seg.HasStartOverlap)
		require.Equal(t, i < len(meta.Segments)-1, seg.HasEndOverlap)
		require.Less(t, seg.StartS, seg.EndS)
	}

	// Adjacent overlap invariant: segments[i].end - segments[i+1].start == overlap_s.
	for i := 0; i < len(meta.Segments)-1; i++ {
		got := meta.Segments[i].EndS - meta.Segments[i+1].StartS
		require.InDelta(t, opts.OverlapS, got, 0.001)
	}

	require.Equal(t, 0.0, meta.Segments[0].StartS)
	require.InDelta(t, seconds, meta.Segments[len(meta.Segments)-1].EndS, 0.01)
}
