package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"os/exec"
)

// DefaultSampleRate is the sample rate FFmpegDecoder resamples to, matching
// the input rate the VAD and speech-to-text models expect.
const DefaultSampleRate = 16000

// FFmpegDecoder implements Decoder by invoking the ffmpeg binary and
// reading back raw signed 16-bit little-endian mono PCM on stdout. Args are
// passed as a plain string slice (never through a shell, so there is no
// injection surface even though path is caller-controlled); stderr is
// captured and folded into the returned error.
type FFmpegDecoder struct {
	ffmpegPath string
	sampleRate int
}

// NewFFmpegDecoder builds a decoder that invokes ffmpegPath (or "ffmpeg" off
// PATH, if empty) and resamples everything to DefaultSampleRate mono.
func NewFFmpegDecoder(ffmpegPath string) *FFmpegDecoder {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &FFmpegDecoder{ffmpegPath: ffmpegPath, sampleRate: DefaultSampleRate}
}

// Decode implements audio.Decoder.
func (d *FFmpegDecoder) Decode(ctx context.Context, path string) ([]float32, int, error) {
	args := []string{
		"-y",
		"-i", path,
		"-vn",
		"-f", "s16le",
		"-ac", "1",
		"-ar", fmt.Sprintf("%d", d.sampleRate),
		"-",
	}

	cmd := exec.CommandContext(ctx, d.ffmpegPath, args...) // #nosec G204 -- args passed as argv, not a shell string
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, 0, fmt.Errorf("ffmpeg decode of %s failed: %w: %s", path, err, stderr.String())
	}

	raw := stdout.Bytes()
	if len(raw)%2 != 0 {
		raw = raw[:len(raw)-1]
	}

	samples := make([]float32, len(raw)/2)
	for i := range samples {
		samples[i] = float32(int16(binary.LittleEndian.Uint16(raw[i*2:]))) / 32768.0
	}

	return samples, d.sampleRate, nil
}
