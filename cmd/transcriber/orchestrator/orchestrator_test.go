package orchestrator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dusancv22/video-transcriber/cmd/transcriber/config"
	"github.com/dusancv22/video-transcriber/cmd/transcriber/model"
	"github.com/dusancv22/video-transcriber/cmd/transcriber/stt"
	"github.com/dusancv22/video-transcriber/cmd/transcriber/vad"
)

type fakeDetector struct {
	regions []model.SpeechRegion
	err     error
}

func (f fakeDetector) Detect(context.Context, []float32, vad.DetectOptions) ([]model.SpeechRegion, error) {
	return f.regions, f.err
}

type fakeTranscriber struct {
	results []stt.Result
	errs    []error
	calls   int
}

func (f *fakeTranscriber) Destroy() error {
	return nil
}

func (f *fakeTranscriber) Transcribe(context.Context, []float32, int, stt.TranscribeOptions) (stt.Result, error) {
	i := f.calls
	f.calls++
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	if err != nil {
		return stt.Result{}, err
	}
	if i < len(f.results) {
		return f.results[i], nil
	}
	return stt.Result{}, nil
}

func opts() Options {
	return Options{
		VAD: config.VADOptions{
			Threshold:    0.3,
			MinSpeechMs:  100,
			MinSilenceMs: 300,
			MaxGapS:      0.5,
			PaddingS:     0.1,
		},
		Beam: 5,
	}
}

func TestTranscribeSegmentShiftsTimesByRegionAndSegmentOffset(t *testing.T) {
	detector := fakeDetector{regions: []model.SpeechRegion{{StartS: 1, EndS: 2}}}
	transcriber := &fakeTranscriber{results: []stt.Result{{
		Language: "en",
		Segments: []stt.Segment{{
			StartS: 0, EndS: 1, Text: "hi there",
			Words: []stt.Word{{Text: "hi", StartS: 0, EndS: 0.4}, {Text: "there", StartS: 0.4, EndS: 1}},
		}},
	}}}

	o := New(detector, transcriber, opts())
	seg := model.AudioSegment{StartS: 10, EndS: 20}
	samples := make([]float32, 16000*10)

	result, err := o.TranscribeSegment(context.Background(), seg, samples, 16000, "en")
	require.NoError(t, err)
	require.Equal(t, "en", result.Language)
	require.Len(t, result.Segments, 1)

	// offset = region.StartS (1) + seg.StartS (10), regardless of the padding
	// applied to the extracted slice before the STT call.
	require.InDelta(t, 11.0, result.Segments[0].StartS, 0.01)
}

func TestTranscribeSegmentFallsBackToWholeSegmentWhenAllRegionsFail(t *testing.T) {
	detector := fakeDetector{regions: []model.SpeechRegion{{StartS: 0, EndS: 1}}}
	transcriber := &fakeTranscriber{
		errs: []error{errors.New("region failed"), nil},
		results: []stt.Result{{}, {
			Language: "en",
			Segments: []stt.Segment{{StartS: 0, EndS: 1, Text: "fallback", Words: []stt.Word{{Text: "fallback"}}}},
		}},
	}

	o := New(detector, transcriber, opts())
	seg := model.AudioSegment{StartS: 0, EndS: 5}
	samples := make([]float32, 16000*5)

	result, err := o.TranscribeSegment(context.Background(), seg, samples, 16000, "en")
	require.NoError(t, err)
	require.Len(t, result.Segments, 1)
	require.Equal(t, "fallback", result.Segments[0].Text)
}

func TestTranscribeSegmentReturnsEmptyResultWithNoSpeechRegions(t *testing.T) {
	detector := fakeDetector{}
	transcriber := &fakeTranscriber{}

	o := New(detector, transcriber, opts())
	seg := model.AudioSegment{StartS: 0, EndS: 2}
	samples := make([]float32, 16000*2)

	result, err := o.TranscribeSegment(context.Background(), seg, samples, 16000, "en")
	require.NoError(t, err)
	require.Empty(t, result.Segments)
	require.Equal(t, 0, transcriber.calls)
}

func TestTranscribeSegmentSurfacesVADFailure(t *testing.T) {
	detector := fakeDetector{err: errors.New("model not loaded")}
	o := New(detector, &fakeTranscriber{}, opts())

	_, err := o.TranscribeSegment(context.Background(), model.AudioSegment{EndS: 1}, make([]float32, 16000), 16000, "en")
	require.Error(t, err)
}

func TestTranscribeSegmentAppliesRepetitionScrubber(t *testing.T) {
	detector := fakeDetector{regions: []model.SpeechRegion{{StartS: 0, EndS: 1}}}
	repeated := []stt.Word{}
	for i := 0; i < 10; i++ {
		repeated = append(repeated, stt.Word{Text: "no"}, stt.Word{Text: "no"})
	}
	transcriber := &fakeTranscriber{results: []stt.Result{{
		Language: "en",
		Segments: []stt.Segment{{StartS: 0, EndS: 1, Words: repeated}},
	}}}

	o := New(detector, transcriber, opts())
	result, err := o.TranscribeSegment(context.Background(), model.AudioSegment{EndS: 1}, make([]float32, 16000), 16000, "en")
	require.NoError(t, err)
	require.Len(t, result.Segments, 1)
	require.Less(t, len(result.Segments[0].Words), len(repeated))
}
