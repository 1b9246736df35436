package whisper

import (
	"context"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dusancv22/video-transcriber/cmd/transcriber/stt"
)

func getModelPath() string {
	modelsDir := os.Getenv("MODELS_DIR")
	if modelsDir == "" {
		modelsDir = "../../../../models"
	}
	return filepath.Join(modelsDir, "ggml-tiny.bin")
}

func TestConfigIsValid(t *testing.T) {
	tcs := []struct {
		name string
		cfg  Config
		err  string
	}{
		{
			name: "empty config",
			err:  "invalid empty config",
		},
		{
			name: "non existent model file",
			err:  "invalid ModelFile: failed to stat model file: stat /tmp/invalid.ggml: no such file or directory",
			cfg: Config{
				ModelFile: "/tmp/invalid.ggml",
			},
		},
		{
			name: "valid",
			cfg: Config{
				ModelFile:  getModelPath(),
				NumThreads: 1,
			},
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.IsValid()
			if tc.err != "" {
				require.EqualError(t, err, tc.err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestNewContextDestroy(t *testing.T) {
	t.Run("missing model file", func(t *testing.T) {
		ctx, err := NewContext(Config{})
		require.Error(t, err)
		require.Nil(t, ctx)
	})

	t.Run("destroy twice fails the second time", func(t *testing.T) {
		ctx, err := NewContext(Config{NumThreads: 1, ModelFile: getModelPath()})
		require.NoError(t, err)
		require.NotNil(t, ctx)

		require.NoError(t, ctx.Destroy())
		require.EqualError(t, ctx.Destroy(), "context is not initialized")
	})
}

func TestTranscribeAntiRepetitionParams(t *testing.T) {
	ctx, err := NewContext(Config{NumThreads: 1, ModelFile: getModelPath()})
	require.NoError(t, err)
	require.NotNil(t, ctx)
	defer ctx.Destroy()

	data, err := os.ReadFile("../../../../testfiles/sample.pcm")
	require.NoError(t, err)

	samples := make([]float32, 0, len(data)/4)
	for i := 0; i < len(data); i += 4 {
		samples = append(samples, math.Float32frombits(binary.LittleEndian.Uint32(data[i:i+4])))
	}

	result, err := ctx.Transcribe(context.Background(), samples, 16000, stt.TranscribeOptions{
		Beam:                      5,
		Temperature:               0,
		CompressionRatioThreshold: 2.4,
		LogProbThreshold:          -1.0,
		ConditionOnPreviousText:   false,
		SuppressBlank:             true,
		WordTimestamps:            true,
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.Segments)
	require.Equal(t, " This is a test transcription sample.", result.Segments[0].Text)
}
