// Package audio covers the decode-and-segment front of the pipeline: a
// Decoder turns a media container into mono PCM, and the Segmenter splits
// PCM larger than a byte threshold into overlapping segments so a
// downstream transcription call never sees more audio than the model
// comfortably handles. Every split point leaves OverlapS seconds of audio
// present in both neighbors so the text combiner can later dedupe at word
// granularity instead of truncating mid-utterance.
package audio

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/dusancv22/video-transcriber/cmd/transcriber/config"
	"github.com/dusancv22/video-transcriber/cmd/transcriber/model"
)

const bytesPerSample = 2 // 16-bit PCM written by EncodeWAV

// Segmenter splits already-decoded mono PCM into bounded-size segments.
type Segmenter struct {
	opts config.AudioOptions
}

func NewSegmenter(opts config.AudioOptions) *Segmenter {
	return &Segmenter{opts: opts}
}

// Split partitions samples (at sampleRate Hz) into one or more AudioSegment
// files under outDir. If the input fits under MaxSegmentBytes it is returned
// as a single segment referencing inputPath directly, with no rewrite.
func (s *Segmenter) Split(inputPath string, samples []float32, sampleRate int, outDir string) (model.SplitMetadata, error) {
	if len(samples) == 0 {
		return model.SplitMetadata{}, fmt.Errorf("samples should not be empty")
	}

	totalBytes := int64(len(samples)) * bytesPerSample
	duration := float64(len(samples)) / float64(sampleRate)

	if totalBytes <= s.opts.MaxSegmentBytes {
		slog.Debug("input is under the segment size threshold, no splitting needed",
			slog.Int64("bytes", totalBytes))
		return model.SplitMetadata{
			Segments: []model.AudioSegment{{
				Path:   inputPath,
				Index:  0,
				StartS: 0,
				EndS:   duration,
			}},
		}, nil
	}

	meta, err := s.split(samples, sampleRate, duration, totalBytes, outDir)
	if err != nil {
		slog.Warn("failed to split audio, falling back to single segment", slog.String("err", err.Error()))
		return model.SplitMetadata{
			Segments: []model.AudioSegment{{
				Path:   inputPath,
				Index:  0,
				StartS: 0,
				EndS:   duration,
			}},
		}, nil
	}

	return meta, nil
}

func (s *Segmenter) split(samples []float32, sampleRate int, duration float64, totalBytes int64, outDir string) (model.SplitMetadata, error) {
	ovl := s.opts.OverlapS
	n := int(math.Ceil(float64(totalBytes) / float64(s.opts.MaxSegmentBytes)))
	if n < 1 {
		n = 1
	}
	segmentD := duration / float64(n)

	// Each side of a split point gets half the overlap width, so the region
	// shared by two adjacent segments totals exactly OverlapS.
	segments := make([]model.AudioSegment, 0, n)
	for i := 0; i < n; i++ {
		start := float64(i) * segmentD
		if i > 0 {
			start = math.Max(0, start-ovl/2)
		}

		end := float64(i+1) * segmentD
		if i < n-1 {
			end = math.Min(duration, end+ovl/2)
		} else {
			end = duration
		}

		startSample := int(start * float64(sampleRate))
		endSample := int(end * float64(sampleRate))
		if endSample > len(samples) {
			endSample = len(samples)
		}
		if startSample > endSample {
			startSample = endSample
		}

		path := filepath.Join(outDir, fmt.Sprintf("segment_%03d.wav", i))
		if err := os.WriteFile(path, EncodeWAV(samples[startSample:endSample], sampleRate), 0o644); err != nil {
			return model.SplitMetadata{}, fmt.Errorf("failed to write segment file: %w", err)
		}

		segments = append(segments, model.AudioSegment{
			Path:            path,
			Index:           i,
			StartS:          start,
			EndS:            end,
			HasStartOverlap: i > 0,
			HasEndOverlap:   i < n-1,
			OverlapS:        ovl,
		})
	}

	slog.Debug("split audio into segments", slog.Int("numSegments", n))

	return model.SplitMetadata{Segments: segments}, nil
}
