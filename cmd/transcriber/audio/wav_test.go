package audio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeWAVFullRoundTrips(t *testing.T) {
	samples := []float32{0, 0.25, -0.25, 0.5, -1, 1}
	wav := EncodeWAV(samples, 22050)

	out, sampleRate, err := DecodeWAVFull(wav)
	require.NoError(t, err)
	require.Equal(t, 22050, sampleRate)
	require.Len(t, out, len(samples))
	for i, s := range samples {
		require.InDelta(t, s, out[i], 0.001)
	}
}

func TestDecodeWAVFullRejectsShortBuffer(t *testing.T) {
	_, _, err := DecodeWAVFull([]byte{1, 2, 3})
	require.Error(t, err)
}

func TestReadSegmentSamplesReadsFileFromDisk(t *testing.T) {
	samples := []float32{0.1, 0.2, 0.3, -0.4}
	wav := EncodeWAV(samples, 16000)

	path := filepath.Join(t.TempDir(), "segment-000.wav")
	require.NoError(t, os.WriteFile(path, wav, 0o644))

	out, sampleRate, err := ReadSegmentSamples(path)
	require.NoError(t, err)
	require.Equal(t, 16000, sampleRate)
	require.Len(t, out, len(samples))
}

func TestReadSegmentSamplesMissingFile(t *testing.T) {
	_, _, err := ReadSegmentSamples(filepath.Join(t.TempDir(), "missing.wav"))
	require.Error(t, err)
}
