// Package vad discovers speech regions on an audio timeline and folds
// together regions separated by only a short silence.
package vad

import (
	"context"
	"sort"

	"github.com/dusancv22/video-transcriber/cmd/transcriber/model"
)

// DetectOptions carries the detection tunables a Detector call needs.
type DetectOptions struct {
	Threshold    float64
	MinSpeechMs  int
	MinSilenceMs int
	SampleRate   int
}

// Detector is the voice-activity detection contract: it turns mono PCM at
// opts.SampleRate into an ordered list of speech regions, in seconds, on the
// input's own timeline.
type Detector interface {
	Detect(ctx context.Context, samples []float32, opts DetectOptions) ([]model.SpeechRegion, error)
}

// MergeCloseRegions folds together adjacent regions whose inter-gap is no
// larger than maxGapS, run as a second step after raw detection.
func MergeCloseRegions(regions []model.SpeechRegion, maxGapS float64) []model.SpeechRegion {
	if len(regions) < 2 {
		return regions
	}

	sorted := make([]model.SpeechRegion, len(regions))
	copy(sorted, regions)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].StartS < sorted[j].StartS })

	merged := []model.SpeechRegion{sorted[0]}
	for _, r := range sorted[1:] {
		last := &merged[len(merged)-1]
		if r.StartS-last.EndS <= maxGapS {
			if r.EndS > last.EndS {
				last.EndS = r.EndS
			}
			continue
		}
		merged = append(merged, r)
	}

	return merged
}
