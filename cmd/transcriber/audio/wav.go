package audio

import (
	"encoding/binary"
	"fmt"
	"os"
)

const (
	bitDepth = 16
	channels = 1
	wavHeaderLen = 44
)

// EncodeWAV wraps float32 PCM samples in a 16-bit mono WAV container at the
// given sample rate.
func EncodeWAV(samples []float32, sampleRate int) []byte {
	wav := make([]byte, wavHeaderLen+len(samples)*2)
	pcm := wav[wavHeaderLen:]

	wav[0] = 'R'
	wav[1] = 'I'
	wav[2] = 'F'
	wav[3] = 'F'
	binary.LittleEndian.PutUint32(wav[4:], uint32(len(wav)-8))
	wav[8] = 'W'
	wav[9] = 'A'
	wav[10] = 'V'
	wav[11] = 'E'
	wav[12] = 'f'
	wav[13] = 'm'
	wav[14] = 't'
	wav[15] = ' '
	binary.LittleEndian.PutUint32(wav[16:], 16)
	binary.LittleEndian.PutUint16(wav[20:], 1)
	binary.LittleEndian.PutUint16(wav[22:], channels)
	binary.LittleEndian.PutUint32(wav[24:], uint32(sampleRate))
	binary.LittleEndian.PutUint32(wav[28:], uint32(sampleRate*bitDepth*channels/8))
	binary.LittleEndian.PutUint16(wav[32:], (bitDepth*channels)/8)
	binary.LittleEndian.PutUint16(wav[34:], bitDepth)
	wav[36] = 'd'
	wav[37] = 'a'
	wav[38] = 't'
	wav[39] = 'a'
	binary.LittleEndian.PutUint32(wav[40:], uint32(len(samples)*2))

	for i, s := range samples {
		v := s * 32768.0
		if v > 32767 {
			v = 32767
		} else if v < -32768 {
			v = -32768
		}
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(int16(v)))
	}

	return wav
}

// DecodeWAV extracts int16 PCM samples out of a WAV byte buffer produced by
// EncodeWAV (or any 16-bit mono little-endian WAV of the same header shape).
func DecodeWAV(wavData []byte) ([]int16, error) {
	if len(wavData) < wavHeaderLen {
		return nil, errShortWAV
	}
	data := wavData[wavHeaderLen:]
	if len(data)%2 != 0 {
		return nil, errOddWAV
	}
	samples := make([]int16, len(data)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
	}
	return samples, nil
}

// DecodeWAVFull is DecodeWAV plus the sample rate read back from the fmt
// chunk, and returns float32 PCM in [-1, 1] instead of raw int16 — the
// shape the VAD detector and speech-to-text backends expect. Segment files the
// Segmenter wrote are read back through this, since the only sample rate
// callers otherwise have is the one baked into the WAV header itself.
func DecodeWAVFull(wavData []byte) ([]float32, int, error) {
	if len(wavData) < wavHeaderLen {
		return nil, 0, errShortWAV
	}
	sampleRate := int(binary.LittleEndian.Uint32(wavData[24:28]))

	ints, err := DecodeWAV(wavData)
	if err != nil {
		return nil, 0, err
	}

	out := make([]float32, len(ints))
	for i, v := range ints {
		out[i] = float32(v) / 32768.0
	}
	return out, sampleRate, nil
}

// ReadSegmentSamples loads a WAV file the Segmenter wrote to disk and
// decodes it back into PCM samples and the sample rate it was encoded at.
func ReadSegmentSamples(path string) ([]float32, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read segment file %s: %w", path, err)
	}
	samples, sampleRate, err := DecodeWAVFull(data)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to decode segment file %s: %w", path, err)
	}
	return samples, sampleRate, nil
}
